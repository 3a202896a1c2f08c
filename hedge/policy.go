package hedge

import (
	"fmt"
	"math"

	"github.com/naderih/Market-Risk-Dynamic-Hedging/curve"
	"github.com/naderih/Market-Risk-Dynamic-Hedging/instrument"
	"github.com/naderih/Market-Risk-Dynamic-Hedging/market"
	"github.com/naderih/Market-Risk-Dynamic-Hedging/scenario"
)

// Mode is the rebalance trigger. Modes are mutually exclusive.
type Mode string

const (
	// Strict rebalances every day.
	Strict Mode = "strict"
	// Threshold rebalances when |net delta| > DeltaLimit. A limit of +Inf never rebalances.
	Threshold Mode = "threshold"
	// Cadence rebalances every Cadence days, starting on day 0.
	Cadence Mode = "cadence"
)

// Target is the trade sizing convention once triggered.
type Target string

const (
	// TargetZero flattens net delta exactly.
	TargetZero Target = "zero"
	// TargetBand trades net delta back to the nearest edge of ±DeltaLimit.
	TargetBand Target = "band"
)

// Sizing controls the inception trade on day 0.
type Sizing string

const (
	// SizeNone keeps InitialHedgeQuantity and lets the policy decide day 0.
	SizeNone Sizing = "none"
	// SizeDelta runs the full hedge cascade at inception.
	SizeDelta Sizing = "delta"
	// SizeVega sizes the delta-hedge instrument to neutralize liability vega.
	// Threshold mode only; the trigger takes over from day 1.
	SizeVega Sizing = "vega"
)

// DefaultOptionSpreadBps is the base spread charged on option legs.
const DefaultOptionSpreadBps = 100.0

// Policy configures the rebalancing decision and the starting position.
type Policy struct {
	Mode       Mode    `json:"mode" yaml:"mode"`
	DeltaLimit float64 `json:"delta_limit,omitempty" yaml:"delta_limit,omitempty"`
	Cadence    int     `json:"cadence,omitempty" yaml:"cadence,omitempty"`
	Target     Target  `json:"target,omitempty" yaml:"target,omitempty"`

	InitialSizing        Sizing  `json:"initial_sizing,omitempty" yaml:"initial_sizing,omitempty"`
	InitialHedgeQuantity float64 `json:"initial_hedge_quantity,omitempty" yaml:"initial_hedge_quantity,omitempty"`
	InitialCash          float64 `json:"initial_cash,omitempty" yaml:"initial_cash,omitempty"`
	// CashFromPremium adds minus the liability's inception mark to InitialCash.
	CashFromPremium bool `json:"cash_from_premium,omitempty" yaml:"cash_from_premium,omitempty"`

	OptionSpreadBps    float64 `json:"option_spread_bps,omitempty" yaml:"option_spread_bps,omitempty"`
	LiquidateAtHorizon bool    `json:"liquidate_at_horizon,omitempty" yaml:"liquidate_at_horizon,omitempty"`
}

func (p *Policy) applyDefaults() {
	if p.Target == "" {
		p.Target = TargetZero
	}
	if p.InitialSizing == "" {
		p.InitialSizing = SizeNone
	}
	if p.OptionSpreadBps == 0 {
		p.OptionSpreadBps = DefaultOptionSpreadBps
	}
}

// Validate enforces that exactly one trigger is configured.
func (p Policy) Validate() error {
	p.applyDefaults()

	switch p.Mode {
	case Strict:
		if p.DeltaLimit != 0 || p.Cadence != 0 {
			return market.Invalid("policy", "strict mode takes neither delta_limit nor cadence")
		}
	case Threshold:
		if p.DeltaLimit < 0 || math.IsNaN(p.DeltaLimit) {
			return market.Invalid("policy.delta_limit", "must be >= 0")
		}
		if p.Cadence != 0 {
			return market.Invalid("policy", "threshold mode does not take cadence")
		}
	case Cadence:
		if p.Cadence < 1 {
			return market.Invalid("policy.cadence", "must be >= 1")
		}
		if p.DeltaLimit != 0 {
			return market.Invalid("policy", "cadence mode does not take delta_limit")
		}
	default:
		return market.Invalid("policy.mode", fmt.Sprintf("unknown %q", p.Mode))
	}

	switch p.Target {
	case TargetZero:
	case TargetBand:
		if p.Mode != Threshold {
			return market.Invalid("policy.target", "band needs threshold mode")
		}
	default:
		return market.Invalid("policy.target", fmt.Sprintf("unknown %q", p.Target))
	}
	switch p.InitialSizing {
	case SizeNone, SizeDelta:
	case SizeVega:
		// The delta-hedge leg is spent on vega at inception, so day 0 cannot
		// also be flattened as strict and cadence require.
		if p.Mode != Threshold {
			return market.Invalid("policy.initial_sizing", "vega sizing needs threshold mode")
		}
	default:
		return market.Invalid("policy.initial_sizing", fmt.Sprintf("unknown %q", p.InitialSizing))
	}

	for field, v := range map[string]float64{
		"policy.initial_hedge_quantity": p.InitialHedgeQuantity,
		"policy.initial_cash":           p.InitialCash,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return market.Invalid(field, "must be finite")
		}
	}
	if p.OptionSpreadBps < 0 {
		return market.Invalid("policy.option_spread_bps", "must be >= 0")
	}
	return nil
}

func (p Policy) String() string {
	p.applyDefaults()
	var s string
	switch p.Mode {
	case Threshold:
		s = fmt.Sprintf("threshold(%g)", p.DeltaLimit)
		if p.Target == TargetBand {
			s += " band"
		}
	case Cadence:
		s = fmt.Sprintf("cadence(%d)", p.Cadence)
	default:
		s = string(p.Mode)
	}
	if p.InitialSizing != SizeNone {
		s += " size=" + string(p.InitialSizing)
	}
	return s
}

// Triggered reports whether the policy rebalances on day given net delta.
func (p Policy) Triggered(day int, netDelta float64) bool {
	switch p.Mode {
	case Strict:
		return true
	case Threshold:
		return math.Abs(netDelta) > p.DeltaLimit
	case Cadence:
		return day%p.Cadence == 0
	}
	return false
}

// DeltaToRemove is the amount of net delta the delta leg must offset.
func (p Policy) DeltaToRemove(netDelta float64) float64 {
	if p.Target != TargetBand || p.Mode != Threshold {
		return netDelta
	}
	switch {
	case netDelta > p.DeltaLimit:
		return netDelta - p.DeltaLimit
	case netDelta < -p.DeltaLimit:
		return netDelta + p.DeltaLimit
	}
	return 0
}

// Config is one hedging run's instrument set and policy.
type Config struct {
	Liability  instrument.Instrument  `json:"liability" yaml:"liability"`
	DeltaHedge instrument.Instrument  `json:"delta_hedge" yaml:"delta_hedge"`
	VegaHedge  *instrument.Instrument `json:"vega_hedge,omitempty" yaml:"vega_hedge,omitempty"`
	GammaHedge *instrument.Instrument `json:"gamma_hedge,omitempty" yaml:"gamma_hedge,omitempty"`

	Policy Policy `json:"policy" yaml:"policy"`

	Tenors        curve.Tenors        `json:"tenors,omitempty" yaml:"tenors,omitempty"`
	Interpolation curve.Interpolation `json:"interpolation,omitempty" yaml:"interpolation,omitempty"`
}

func (c *Config) applyDefaults() {
	c.Policy.applyDefaults()
	if c.Tenors == (curve.Tenors{}) {
		c.Tenors = curve.DefaultTenors()
	}
	if c.Interpolation == "" {
		c.Interpolation = curve.LinearZero
	}
}

// Validate checks the configuration against the scenario it will run on.
func (c Config) Validate(scn *scenario.Scenario) error {
	c.applyDefaults()

	if scn == nil || scn.Len() < 2 {
		return market.Invalid("scenario", "needs at least two days")
	}
	if err := c.Policy.Validate(); err != nil {
		return err
	}
	if err := c.Tenors.Validate(); err != nil {
		return err
	}

	if !c.Liability.IsOption() {
		return market.Invalid("liability.kind", "must be call or put")
	}
	if err := c.Liability.Validate(); err != nil {
		return err
	}
	last := scn.Snapshots[scn.Len()-1].Date
	if c.Liability.ExpiredAt(last) {
		return market.Invalid("liability.maturity",
			fmt.Sprintf("%s is not after the last simulated day %s",
				c.Liability.Maturity.Format(market.DateLayout), last.Format(market.DateLayout)))
	}

	legs := map[string]*instrument.Instrument{"delta_hedge": &c.DeltaHedge, "vega_hedge": c.VegaHedge, "gamma_hedge": c.GammaHedge}
	for name, leg := range legs {
		if leg == nil {
			continue
		}
		if err := leg.Validate(); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		if leg.Notional == 0 {
			return market.Invalid(name+".notional", "must be non-zero")
		}
		if name != "delta_hedge" && !leg.IsOption() {
			return market.Invalid(name+".kind", "must be call or put")
		}
	}
	if c.Policy.InitialSizing == SizeVega && !c.DeltaHedge.IsOption() {
		return market.Invalid("policy.initial_sizing", "vega sizing needs an option delta hedge")
	}
	return nil
}
