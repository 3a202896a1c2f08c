package instrument

import (
	"fmt"
	"math"
	"time"

	"github.com/naderih/Market-Risk-Dynamic-Hedging/curve"
	"github.com/naderih/Market-Risk-Dynamic-Hedging/market"
)

// MinTimeToMaturity floors tau so vol*sqrt(tau) never divides by zero.
const MinTimeToMaturity = 1e-10

// degenerateStdDev is the total deviation below which the option is priced
// as its discounted forward intrinsic value.
const degenerateStdDev = 1e-12

// Valuation is the output of PriceAndGreeks for one instrument on one day.
type Valuation struct {
	Price  float64 `json:"price" yaml:"price"`
	Greeks Greeks  `json:"greeks" yaml:"greeks"`
	Tau    float64 `json:"tau" yaml:"tau"`
	Rate   float64 `json:"rate" yaml:"rate"` // zero rate used for discounting
}

// PriceAndGreeks values inst against snap on date using closed-form
// Black-Scholes on the discounted forward. The curve supplies the zero rate
// at the residual maturity; when crv is nil it is built from the snapshot
// with default tenors.
//
// It is a pure function. Callers check ExpiredAt before pricing: valuing an
// option on or after its maturity returns ErrExpiredInstrument.
func PriceAndGreeks(inst Instrument, snap market.Snapshot, crv *curve.Curve, date time.Time) (Valuation, error) {
	if err := inst.Validate(); err != nil {
		return Valuation{}, err
	}
	if !(snap.Spot > 0) {
		return Valuation{}, market.Invalid("spot", "must be positive")
	}
	if snap.Volatility < 0 || math.IsNaN(snap.Volatility) {
		return Valuation{}, market.Invalid("volatility", "must be >= 0")
	}

	if inst.Kind == Underlying {
		return Valuation{
			Price:  snap.Spot * inst.Notional,
			Greeks: Greeks{Delta: inst.Notional},
		}, nil
	}

	if inst.ExpiredAt(date) {
		return Valuation{}, fmt.Errorf("%s on %s: %w",
			inst.label(), market.Date(date).Format(market.DateLayout), market.ErrExpiredInstrument)
	}

	if crv == nil {
		var err error
		crv, err = curve.FromSnapshot(snap, curve.DefaultTenors(), curve.LinearZero)
		if err != nil {
			return Valuation{}, err
		}
	}

	tau := math.Max(inst.TimeToMaturity(date), MinTimeToMaturity)
	r := crv.ZeroRate(tau)
	df := crv.DF(tau)

	price, g := blackScholes(inst.Kind, snap.Spot, inst.Strike, tau, r, df, snap.Volatility)

	v := Valuation{
		Price:  price * inst.Notional,
		Greeks: g.Scale(inst.Notional),
		Tau:    tau,
		Rate:   r,
	}
	if math.IsNaN(v.Price) || math.IsInf(v.Price, 0) || !v.Greeks.finite() {
		return Valuation{}, fmt.Errorf("%s: S=%g K=%g tau=%g vol=%g: %w",
			inst.label(), snap.Spot, inst.Strike, tau, snap.Volatility, market.ErrNumericDegeneracy)
	}
	return v, nil
}

// blackScholes returns the per-unit price and Greeks.
func blackScholes(kind Kind, s, k, tau, r, df, vol float64) (float64, Greeks) {
	fwd := s / df
	sqrtT := math.Sqrt(tau)
	stdDev := vol * sqrtT

	if stdDev < degenerateStdDev {
		return intrinsic(kind, s, k, tau, r, df, fwd)
	}

	d1 := (math.Log(fwd/k) + 0.5*stdDev*stdDev) / stdDev
	d2 := d1 - stdDev
	pdf := normPDF(d1)

	g := Greeks{
		Gamma: pdf / (s * stdDev),
		Vega:  s * pdf * sqrtT,
	}
	decay := -s * pdf * vol / (2 * sqrtT)

	var price float64
	if kind == Call {
		nd2 := normCDF(d2)
		price = df * (fwd*normCDF(d1) - k*nd2)
		g.Delta = normCDF(d1)
		g.Theta = decay - r*k*df*nd2
		g.Rho = k * tau * df * nd2
	} else {
		nmd2 := normCDF(-d2)
		price = df * (k*nmd2 - fwd*normCDF(-d1))
		g.Delta = normCDF(d1) - 1
		g.Theta = decay + r*k*df*nmd2
		g.Rho = -k * tau * df * nmd2
	}
	return price, g
}

// intrinsic handles the zero-variance limit.
func intrinsic(kind Kind, s, k, tau, r, df, fwd float64) (float64, Greeks) {
	var g Greeks
	if kind == Call {
		if fwd > k {
			g.Delta = 1
			g.Theta = -r * k * df
			g.Rho = k * tau * df
			return s - k*df, g
		}
		return 0, g
	}
	if fwd < k {
		g.Delta = -1
		g.Theta = r * k * df
		g.Rho = -k * tau * df
		return k*df - s, g
	}
	return 0, g
}

func normCDF(x float64) float64 {
	return 0.5 * math.Erfc(-x/math.Sqrt2)
}

func normPDF(x float64) float64 {
	return math.Exp(-0.5*x*x) / math.Sqrt(2*math.Pi)
}
