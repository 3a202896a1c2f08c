// Package curve holds a discretely sampled zero curve for one day and
// interpolates zero rates and discount factors at arbitrary tenors.
package curve

import (
	"fmt"
	"math"
	"sort"

	"github.com/naderih/Market-Risk-Dynamic-Hedging/market"
)

// Interpolation selects how the curve fills between pillars.
type Interpolation string

const (
	// LinearZero interpolates continuously compounded zero rates linearly in tenor.
	LinearZero Interpolation = "linear_zero"
	// LogLinearDF interpolates log discount factors linearly in tenor
	// (piecewise flat forwards).
	LogLinearDF Interpolation = "log_linear_df"
)

// Default pillar tenors in years.
const (
	OvernightTenor = 1.0 / market.DaysPerYear
	ShortTenor     = 2.0
	LongTenor      = 10.0
)

// Point is a zero rate pillar.
type Point struct {
	Tenor float64 // years
	Rate  float64 // continuously compounded, may be negative
}

// Curve is immutable after construction.
type Curve struct {
	points []Point
	interp Interpolation
}

// New builds a curve from pillars in any order. Duplicate tenors are rejected.
func New(interp Interpolation, points ...Point) (*Curve, error) {
	if len(points) == 0 {
		return nil, market.Invalid("curve", "needs at least one point")
	}
	switch interp {
	case "":
		interp = LinearZero
	case LinearZero, LogLinearDF:
	default:
		return nil, market.Invalid("curve.interpolation", fmt.Sprintf("unknown %q", interp))
	}

	ps := append([]Point(nil), points...)
	sort.Slice(ps, func(i, j int) bool { return ps[i].Tenor < ps[j].Tenor })
	for i, p := range ps {
		if !(p.Tenor > 0) {
			return nil, market.Invalid("curve.tenor", "must be positive")
		}
		if math.IsNaN(p.Rate) || math.IsInf(p.Rate, 0) {
			return nil, market.Invalid("curve.rate", "must be finite")
		}
		if i > 0 && ps[i-1].Tenor == p.Tenor {
			return nil, market.Invalid("curve.tenor", fmt.Sprintf("duplicate pillar %.6f", p.Tenor))
		}
	}
	return &Curve{points: ps, interp: interp}, nil
}

// Tenors are the pillar tenors used to build a curve from a snapshot.
type Tenors struct {
	Overnight float64 `json:"overnight" yaml:"overnight"`
	Short     float64 `json:"short" yaml:"short"`
	Long      float64 `json:"long" yaml:"long"`
}

// DefaultTenors is overnight, 2y and 10y.
func DefaultTenors() Tenors {
	return Tenors{Overnight: OvernightTenor, Short: ShortTenor, Long: LongTenor}
}

// Validate requires strictly increasing positive tenors.
func (t Tenors) Validate() error {
	if !(t.Overnight > 0 && t.Overnight < t.Short && t.Short < t.Long) {
		return market.Invalid("curve.tenors", "must satisfy 0 < overnight < short < long")
	}
	return nil
}

// FromSnapshot builds the day's curve from the snapshot's three rate points.
func FromSnapshot(s market.Snapshot, tenors Tenors, interp Interpolation) (*Curve, error) {
	if err := tenors.Validate(); err != nil {
		return nil, err
	}
	return New(interp,
		Point{Tenor: tenors.Overnight, Rate: s.OvernightRate},
		Point{Tenor: tenors.Short, Rate: s.ShortRate},
		Point{Tenor: tenors.Long, Rate: s.LongRate},
	)
}

// Points returns a copy of the pillars sorted by tenor.
func (c *Curve) Points() []Point {
	return append([]Point(nil), c.points...)
}

// ZeroRate returns the continuously compounded zero rate for tenor tau.
// Extrapolation is flat on both sides.
func (c *Curve) ZeroRate(tau float64) float64 {
	first, last := c.points[0], c.points[len(c.points)-1]
	if tau <= first.Tenor {
		return first.Rate
	}
	if tau >= last.Tenor {
		return last.Rate
	}

	i := sort.Search(len(c.points), func(i int) bool { return c.points[i].Tenor >= tau })
	lo, hi := c.points[i-1], c.points[i]
	if hi.Tenor == tau {
		return hi.Rate
	}

	w := (tau - lo.Tenor) / (hi.Tenor - lo.Tenor)
	switch c.interp {
	case LogLinearDF:
		// ln DF(t) = -r(t) t is linear between pillars
		lnDF := (1-w)*(-lo.Rate*lo.Tenor) + w*(-hi.Rate*hi.Tenor)
		return -lnDF / tau
	default:
		return (1-w)*lo.Rate + w*hi.Rate
	}
}

// DF is the discount factor to tenor tau. DF(0) is 1.
func (c *Curve) DF(tau float64) float64 {
	if tau <= 0 {
		return 1
	}
	return math.Exp(-c.ZeroRate(tau) * tau)
}
