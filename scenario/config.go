package scenario

import (
	"fmt"
	"math"
	"time"

	"github.com/naderih/Market-Risk-Dynamic-Hedging/market"
)

// ShockMode selects how spot and rates evolve.
type ShockMode string

const (
	// Linear spreads total moves evenly over the horizon.
	Linear ShockMode = "linear"
	// Path replays explicit day-by-day moves.
	Path ShockMode = "path"
	// Stochastic draws spot from a seeded lognormal walk driven by the
	// current (feedback) volatility.
	Stochastic ShockMode = "stochastic"
)

// Defaults for the volatility feedback rule.
const (
	DefaultRallyFactor = 0.95
	DefaultVolFloor    = 0.05
)

// Shock describes how the state moves away from its initial levels.
type Shock struct {
	Mode ShockMode `json:"mode" yaml:"mode"`

	// Linear totals over the whole horizon. SpotReturn is applied as
	// SpotReturn/Horizon per day, compounded.
	SpotReturn         float64 `json:"spot_return,omitempty" yaml:"spot_return,omitempty"`
	OvernightChange    float64 `json:"overnight_change,omitempty" yaml:"overnight_change,omitempty"`
	ShortRateChange    float64 `json:"short_rate_change,omitempty" yaml:"short_rate_change,omitempty"`
	LongRateChange     float64 `json:"long_rate_change,omitempty" yaml:"long_rate_change,omitempty"`
	CreditSpreadChange float64 `json:"credit_spread_change,omitempty" yaml:"credit_spread_change,omitempty"`

	// Path mode: one entry per shocked day. SpotReturns is required, the
	// rate paths are optional absolute daily changes.
	SpotReturns         []float64 `json:"spot_returns,omitempty" yaml:"spot_returns,omitempty"`
	OvernightChanges    []float64 `json:"overnight_changes,omitempty" yaml:"overnight_changes,omitempty"`
	ShortRateChanges    []float64 `json:"short_rate_changes,omitempty" yaml:"short_rate_changes,omitempty"`
	LongRateChanges     []float64 `json:"long_rate_changes,omitempty" yaml:"long_rate_changes,omitempty"`
	CreditSpreadChanges []float64 `json:"credit_spread_changes,omitempty" yaml:"credit_spread_changes,omitempty"`

	// Stochastic parameters. Drift is annualized; RateVol is the annualized
	// absolute volatility of each rate point (independent draws).
	Drift   float64 `json:"drift,omitempty" yaml:"drift,omitempty"`
	RateVol float64 `json:"rate_vol,omitempty" yaml:"rate_vol,omitempty"`
	Seed    uint64  `json:"seed,omitempty" yaml:"seed,omitempty"`
}

// Config is everything the generator needs. It is a value: generating
// twice from the same Config yields identical sequences.
type Config struct {
	Name      string    `json:"name,omitempty" yaml:"name,omitempty"`
	StartDate time.Time `json:"start_date" yaml:"start_date"`
	Horizon   int       `json:"horizon" yaml:"horizon"` // shocked business days after day 0

	Spot          float64 `json:"spot" yaml:"spot"`
	Volatility    float64 `json:"volatility" yaml:"volatility"`
	OvernightRate float64 `json:"overnight_rate" yaml:"overnight_rate"`
	ShortRate     float64 `json:"short_rate" yaml:"short_rate"`
	LongRate      float64 `json:"long_rate" yaml:"long_rate"`
	CreditSpread  float64 `json:"credit_spread" yaml:"credit_spread"`
	BaseSpreadBps float64 `json:"base_spread_bps" yaml:"base_spread_bps"`

	// Feedback is the vol multiplier per unit of drawdown from the initial spot.
	Feedback    float64 `json:"feedback" yaml:"feedback"`
	RallyFactor float64 `json:"rally_factor,omitempty" yaml:"rally_factor,omitempty"`
	VolFloor    float64 `json:"vol_floor,omitempty" yaml:"vol_floor,omitempty"`

	Holidays []time.Time `json:"holidays,omitempty" yaml:"holidays,omitempty"`

	Shock Shock `json:"shock" yaml:"shock"`
}

// DefaultConfig mirrors a calm starting market: spot 100, vol 20%,
// overnight 4%, short 4%, long 4.25%, credit spread 100bp, 5bp base spread.
func DefaultConfig() Config {
	return Config{
		Name:          "flat",
		StartDate:     time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		Horizon:       20,
		Spot:          100,
		Volatility:    0.20,
		OvernightRate: 0.04,
		ShortRate:     0.04,
		LongRate:      0.0425,
		CreditSpread:  0.01,
		BaseSpreadBps: 5,
		RallyFactor:   DefaultRallyFactor,
		VolFloor:      DefaultVolFloor,
		Shock:         Shock{Mode: Linear},
	}
}

func (c *Config) applyDefaults() {
	if c.RallyFactor == 0 {
		c.RallyFactor = DefaultRallyFactor
	}
	if c.Shock.Mode == "" {
		c.Shock.Mode = Linear
	}
}

// Validate fails fast on anything that would make the first snapshot or
// any later one invalid.
func (c Config) Validate() error {
	c.applyDefaults()

	positive := func(field string, v float64) error {
		if !(v > 0) || math.IsInf(v, 0) {
			return market.Invalid(field, "must be positive")
		}
		return nil
	}
	finite := func(field string, vs ...float64) error {
		for _, v := range vs {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return market.Invalid(field, "must be finite")
			}
		}
		return nil
	}

	if c.Horizon <= 0 {
		return market.Invalid("scenario.horizon", "must be positive")
	}
	if c.StartDate.IsZero() {
		return market.Invalid("scenario.start_date", "is required")
	}
	if err := positive("scenario.spot", c.Spot); err != nil {
		return err
	}
	if err := positive("scenario.volatility", c.Volatility); err != nil {
		return err
	}
	if err := finite("scenario.rates", c.OvernightRate, c.ShortRate, c.LongRate); err != nil {
		return err
	}
	if !(c.CreditSpread >= 0) || math.IsInf(c.CreditSpread, 0) {
		return market.Invalid("scenario.credit_spread", "must be finite and >= 0")
	}
	if !(c.BaseSpreadBps >= 0) || math.IsInf(c.BaseSpreadBps, 0) {
		return market.Invalid("scenario.base_spread_bps", "must be finite and >= 0")
	}
	if c.Feedback < 0 {
		return market.Invalid("scenario.feedback", "must be >= 0")
	}
	if !(c.RallyFactor > 0 && c.RallyFactor <= 1) {
		return market.Invalid("scenario.rally_factor", "must be in (0, 1]")
	}
	if c.VolFloor < 0 {
		return market.Invalid("scenario.vol_floor", "must be >= 0")
	}
	return c.Shock.validate(c.Horizon)
}

func (s Shock) validate(horizon int) error {
	switch s.Mode {
	case Linear:
		if s.SpotReturn/float64(horizon) <= -1 {
			return market.Invalid("scenario.shock.spot_return", "drives spot to zero")
		}
		return nil
	case Path:
		if len(s.SpotReturns) != horizon {
			return market.Invalid("scenario.shock.spot_returns",
				fmt.Sprintf("has %d entries, horizon is %d", len(s.SpotReturns), horizon))
		}
		for i, r := range s.SpotReturns {
			if !(r > -1) || math.IsInf(r, 0) {
				return market.Invalid("scenario.shock.spot_returns",
					fmt.Sprintf("day %d return %g drives spot to zero", i+1, r))
			}
		}
		paths := map[string][]float64{
			"overnight_changes":     s.OvernightChanges,
			"short_rate_changes":    s.ShortRateChanges,
			"long_rate_changes":     s.LongRateChanges,
			"credit_spread_changes": s.CreditSpreadChanges,
		}
		for name, p := range paths {
			if p != nil && len(p) != horizon {
				return market.Invalid("scenario.shock."+name,
					fmt.Sprintf("has %d entries, horizon is %d", len(p), horizon))
			}
		}
		return nil
	case Stochastic:
		if s.RateVol < 0 {
			return market.Invalid("scenario.shock.rate_vol", "must be >= 0")
		}
		return nil
	}
	return market.Invalid("scenario.shock.mode", fmt.Sprintf("unknown %q", s.Mode))
}
