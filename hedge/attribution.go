package hedge

import "github.com/naderih/Market-Risk-Dynamic-Hedging/instrument"

// Attribution decomposes one day's realized P&L.
//
// Total is the change in liability mark + hedge marks + cash. The Taylor
// terms explain the overnight book's mark-to-market; Residual absorbs the
// higher-order and cross-Greek effects so that
//
//	Total = Directional + Gamma + Vega + Theta + Rho + Residual + Funding - TransactionCost
type Attribution struct {
	Directional     float64 `json:"directional" yaml:"directional"`
	Gamma           float64 `json:"gamma" yaml:"gamma"`
	Vega            float64 `json:"vega" yaml:"vega"`
	Theta           float64 `json:"theta" yaml:"theta"`
	Rho             float64 `json:"rho" yaml:"rho"`
	Residual        float64 `json:"residual" yaml:"residual"`
	TransactionCost float64 `json:"transaction_cost" yaml:"transaction_cost"`
	Funding         float64 `json:"funding" yaml:"funding"`
	Total           float64 `json:"total" yaml:"total"`
}

// Taylor is the sum of the Greek terms.
func (a Attribution) Taylor() float64 {
	return a.Directional + a.Gamma + a.Vega + a.Theta + a.Rho
}

// Explain attributes total using the Greeks of the book held over the step.
// dt is in years; rhoPnL is precomputed per position because each
// instrument discounts at its own tenor. cost is positive, funding signed.
func Explain(g instrument.Greeks, dS, dVol, dt, rhoPnL, total, cost, funding float64) Attribution {
	a := Attribution{
		Directional:     g.Delta * dS,
		Gamma:           0.5 * g.Gamma * dS * dS,
		Vega:            g.Vega * dVol,
		Theta:           g.Theta * dt,
		Rho:             rhoPnL,
		TransactionCost: cost,
		Funding:         funding,
		Total:           total,
	}
	a.Residual = total - a.Taylor() - funding + cost
	return a
}

// Totals are running sums over the days recorded so far.
type Totals struct {
	PnL             float64 `json:"pnl" yaml:"pnl"`
	Directional     float64 `json:"directional" yaml:"directional"`
	Gamma           float64 `json:"gamma" yaml:"gamma"`
	Vega            float64 `json:"vega" yaml:"vega"`
	Theta           float64 `json:"theta" yaml:"theta"`
	Rho             float64 `json:"rho" yaml:"rho"`
	Residual        float64 `json:"residual" yaml:"residual"`
	TransactionCost float64 `json:"transaction_cost" yaml:"transaction_cost"`
	Funding         float64 `json:"funding" yaml:"funding"`
	Trades          int     `json:"trades" yaml:"trades"`
}

func (t Totals) add(a Attribution, trades int) Totals {
	t.PnL += a.Total
	t.Directional += a.Directional
	t.Gamma += a.Gamma
	t.Vega += a.Vega
	t.Theta += a.Theta
	t.Rho += a.Rho
	t.Residual += a.Residual
	t.TransactionCost += a.TransactionCost
	t.Funding += a.Funding
	t.Trades += trades
	return t
}
