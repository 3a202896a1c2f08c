// Package scenario generates day-by-day stressed market paths: spot,
// feedback volatility, a three-point rate curve, credit spread and the
// base bid-ask spread.
package scenario

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/naderih/Market-Risk-Dynamic-Hedging/market"
)

// tradingYear converts business-day steps to years for the stochastic walk.
const tradingYear = 252.0

// Scenario is an ordered, read-only sequence of snapshots indexed by day.
type Scenario struct {
	Name      string
	Snapshots []market.Snapshot
	VolBase   float64 // day 0 volatility, the reference for spread widening
}

// Generate validates cfg and produces Horizon+1 snapshots: day 0 holds the
// initial levels, days 1..Horizon carry the shock. Nothing is returned when
// validation fails.
func Generate(cfg Config) (*Scenario, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	dates := market.NewCalendar(cfg.Holidays...).BusinessDays(cfg.StartDate, cfg.Horizon+1)
	g := newGenerator(cfg)

	snaps := make([]market.Snapshot, 0, cfg.Horizon+1)
	for day, date := range dates {
		if day > 0 {
			g.step(day)
		}
		s := market.Snapshot{
			Day:           day,
			Date:          date,
			Spot:          g.spot,
			Volatility:    g.vol,
			OvernightRate: g.overnight,
			ShortRate:     g.short,
			LongRate:      g.long,
			CreditSpread:  g.credit,
			BaseSpreadBps: cfg.BaseSpreadBps,
		}
		if err := checkFinite(s); err != nil {
			return nil, err
		}
		snaps = append(snaps, s)
	}

	return &Scenario{Name: cfg.Name, Snapshots: snaps, VolBase: snaps[0].Volatility}, nil
}

// FromSnapshots wraps an externally built sequence (for example a
// calibrated historical replay). Days must be 0..n-1 with strictly
// increasing dates.
func FromSnapshots(name string, snaps []market.Snapshot) (*Scenario, error) {
	if len(snaps) == 0 {
		return nil, market.Invalid("scenario.snapshots", "is empty")
	}
	for i, s := range snaps {
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("snapshot %d: %w", i, err)
		}
		if s.Day != i {
			return nil, market.Invalid("scenario.snapshots", fmt.Sprintf("day %d at index %d", s.Day, i))
		}
		if i > 0 && !s.Date.After(snaps[i-1].Date) {
			return nil, market.Invalid("scenario.snapshots", fmt.Sprintf("date of day %d does not advance", i))
		}
	}
	out := append([]market.Snapshot(nil), snaps...)
	return &Scenario{Name: name, Snapshots: out, VolBase: out[0].Volatility}, nil
}

// Len is the number of snapshots (Horizon+1 for generated scenarios).
func (s *Scenario) Len() int { return len(s.Snapshots) }

// At returns the snapshot for day.
func (s *Scenario) At(day int) (market.Snapshot, bool) {
	if day < 0 || day >= len(s.Snapshots) {
		return market.Snapshot{}, false
	}
	return s.Snapshots[day], true
}

// CurrentSpreadBps is the liquidity-adjusted spread for a snapshot:
// base spread scaled by vol/VolBase. It is always derived, never stored.
func (s *Scenario) CurrentSpreadBps(snap market.Snapshot) float64 {
	return WidenedSpreadBps(snap.BaseSpreadBps, snap.Volatility, s.VolBase)
}

// WidenedSpreadBps scales a base spread by the ratio of current to base vol.
func WidenedSpreadBps(baseBps, vol, volBase float64) float64 {
	if !(volBase > 0) {
		return baseBps
	}
	return baseBps * vol / volBase
}

// FeedbackVol is the leverage-effect rule: below the starting spot vol rises
// linearly with the drawdown, at or above it vol is damped by rallyFactor.
// The result is non-increasing in spot and never below floor.
func FeedbackVol(volBase, spotBase, spot, feedback, rallyFactor, floor float64) float64 {
	x := spot / spotBase
	v := volBase * rallyFactor
	if x <= 1 {
		v = volBase * (1 + feedback*(1-x))
	}
	return math.Max(v, floor)
}

type generator struct {
	cfg Config
	rng *rand.Rand

	spot, vol              float64
	overnight, short, long float64
	credit                 float64
}

func newGenerator(cfg Config) *generator {
	g := &generator{
		cfg:       cfg,
		spot:      cfg.Spot,
		overnight: cfg.OvernightRate,
		short:     cfg.ShortRate,
		long:      cfg.LongRate,
		credit:    cfg.CreditSpread,
	}
	g.vol = FeedbackVol(cfg.Volatility, cfg.Spot, cfg.Spot, cfg.Feedback, cfg.RallyFactor, cfg.VolFloor)
	if cfg.Shock.Mode == Stochastic {
		g.rng = rand.New(rand.NewPCG(cfg.Shock.Seed, cfg.Shock.Seed^0x9e3779b97f4a7c15))
	}
	return g
}

// step advances the state from day-1 to day. Spot moves first, then vol is
// re-derived from the new spot so a drop is reflected the same day.
func (g *generator) step(day int) {
	sh := g.cfg.Shock
	n := float64(g.cfg.Horizon)
	i := day - 1

	switch sh.Mode {
	case Linear:
		g.spot *= 1 + sh.SpotReturn/n
		g.overnight += sh.OvernightChange / n
		g.short += sh.ShortRateChange / n
		g.long += sh.LongRateChange / n
		g.credit += sh.CreditSpreadChange / n

	case Path:
		g.spot *= 1 + sh.SpotReturns[i]
		g.overnight += at(sh.OvernightChanges, i)
		g.short += at(sh.ShortRateChanges, i)
		g.long += at(sh.LongRateChanges, i)
		g.credit += at(sh.CreditSpreadChanges, i)

	case Stochastic:
		dt := 1 / tradingYear
		z := g.rng.NormFloat64()
		g.spot *= math.Exp((sh.Drift-0.5*g.vol*g.vol)*dt + g.vol*math.Sqrt(dt)*z)

		sd := sh.RateVol * math.Sqrt(dt)
		g.overnight += sh.OvernightChange/n + sd*g.rng.NormFloat64()
		g.short += sh.ShortRateChange/n + sd*g.rng.NormFloat64()
		g.long += sh.LongRateChange/n + sd*g.rng.NormFloat64()
		g.credit += sh.CreditSpreadChange / n
	}

	g.credit = math.Max(g.credit, 0)
	g.vol = FeedbackVol(g.cfg.Volatility, g.cfg.Spot, g.spot, g.cfg.Feedback, g.cfg.RallyFactor, g.cfg.VolFloor)
}

func at(xs []float64, i int) float64 {
	if i < len(xs) {
		return xs[i]
	}
	return 0
}

func checkFinite(s market.Snapshot) error {
	for _, v := range [...]float64{s.Spot, s.Volatility, s.OvernightRate, s.ShortRate, s.LongRate, s.CreditSpread} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("day %d: %w", s.Day, market.ErrNumericDegeneracy)
		}
	}
	if !(s.Spot > 0) || !(s.Volatility > 0) {
		return fmt.Errorf("day %d: spot %g vol %g: %w", s.Day, s.Spot, s.Volatility, market.ErrNumericDegeneracy)
	}
	return nil
}
