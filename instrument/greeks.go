package instrument

import "math"

// Greeks are per position (already multiplied by notional).
// Vega is per 1.00 of volatility, Theta per year of calendar time,
// Rho per 1.00 of the zero rate at the instrument's tenor.
type Greeks struct {
	Delta float64 `json:"delta" yaml:"delta"`
	Gamma float64 `json:"gamma" yaml:"gamma"`
	Vega  float64 `json:"vega" yaml:"vega"`
	Theta float64 `json:"theta" yaml:"theta"`
	Rho   float64 `json:"rho" yaml:"rho"`
}

func (g Greeks) Add(o Greeks) Greeks {
	return Greeks{
		Delta: g.Delta + o.Delta,
		Gamma: g.Gamma + o.Gamma,
		Vega:  g.Vega + o.Vega,
		Theta: g.Theta + o.Theta,
		Rho:   g.Rho + o.Rho,
	}
}

func (g Greeks) Scale(q float64) Greeks {
	return Greeks{
		Delta: g.Delta * q,
		Gamma: g.Gamma * q,
		Vega:  g.Vega * q,
		Theta: g.Theta * q,
		Rho:   g.Rho * q,
	}
}

func (g Greeks) finite() bool {
	for _, v := range [...]float64{g.Delta, g.Gamma, g.Vega, g.Theta, g.Rho} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
