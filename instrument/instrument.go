// Package instrument describes single options (and the underlying itself)
// and prices them in closed form against an explicit market snapshot.
package instrument

import (
	"fmt"
	"math"
	"time"

	"github.com/naderih/Market-Risk-Dynamic-Hedging/market"
)

type Kind string

const (
	Call Kind = "call"
	Put  Kind = "put"
	// Underlying is one unit of spot: delta 1, no maturity, used as a linear delta hedge.
	Underlying Kind = "underlying"
)

// ParseKind accepts the config spellings of a kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case Call, Put, Underlying:
		return Kind(s), nil
	case "spot", "stock":
		return Underlying, nil
	}
	return "", market.Invalid("kind", fmt.Sprintf("unknown instrument kind %q", s))
}

// Instrument is immutable once built. Notional is signed: positive is long.
// Time to maturity is never stored; it is derived from the valuation date.
type Instrument struct {
	Name     string    `json:"name" yaml:"name"`
	Kind     Kind      `json:"kind" yaml:"kind"`
	Strike   float64   `json:"strike" yaml:"strike"`
	Maturity time.Time `json:"maturity" yaml:"maturity"`
	Notional float64   `json:"notional" yaml:"notional"`
}

func (i Instrument) IsOption() bool { return i.Kind == Call || i.Kind == Put }

// Validate checks static fields. It does not look at any market state.
func (i Instrument) Validate() error {
	switch i.Kind {
	case Call, Put:
		if !(i.Strike > 0) {
			return market.Invalid(i.field("strike"), "must be positive")
		}
		if i.Maturity.IsZero() {
			return market.Invalid(i.field("maturity"), "is required")
		}
	case Underlying:
	default:
		return market.Invalid(i.field("kind"), fmt.Sprintf("unknown instrument kind %q", i.Kind))
	}
	if math.IsNaN(i.Notional) || math.IsInf(i.Notional, 0) {
		return market.Invalid(i.field("notional"), "must be finite")
	}
	return nil
}

// ExpiredAt reports whether the instrument is settled on date d.
// Instruments mature at the start of their maturity date.
func (i Instrument) ExpiredAt(d time.Time) bool {
	if !i.IsOption() {
		return false
	}
	return !market.Date(d).Before(market.Date(i.Maturity))
}

// TimeToMaturity is the ACT/365 year fraction from d to maturity.
// Zero for the underlying.
func (i Instrument) TimeToMaturity(d time.Time) float64 {
	if !i.IsOption() {
		return 0
	}
	return market.YearFraction(d, i.Maturity)
}

func (i Instrument) String() string {
	if !i.IsOption() {
		return fmt.Sprintf("%s underlying x%.4g", i.label(), i.Notional)
	}
	return fmt.Sprintf("%s %s K=%.4g exp=%s x%.4g",
		i.label(), i.Kind, i.Strike, i.Maturity.Format(market.DateLayout), i.Notional)
}

func (i Instrument) label() string {
	if i.Name == "" {
		return string(i.Kind)
	}
	return i.Name
}

func (i Instrument) field(f string) string {
	if i.Name == "" {
		return f
	}
	return i.Name + "." + f
}
