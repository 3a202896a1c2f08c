package journal

import "github.com/naderih/Market-Risk-Dynamic-Hedging/hedge"

// floatColumn maps a numeric day column to its field in hedge.Row. The CSV
// header, the days table and the scan targets are all built from this list,
// so column order is the same everywhere.
type floatColumn struct {
	name  string
	field func(*hedge.Row) *float64
}

var floatColumns = []floatColumn{
	{"spot", func(r *hedge.Row) *float64 { return &r.Spot }},
	{"volatility", func(r *hedge.Row) *float64 { return &r.Volatility }},
	{"overnight_rate", func(r *hedge.Row) *float64 { return &r.OvernightRate }},
	{"short_rate", func(r *hedge.Row) *float64 { return &r.ShortRate }},
	{"long_rate", func(r *hedge.Row) *float64 { return &r.LongRate }},
	{"credit_spread", func(r *hedge.Row) *float64 { return &r.CreditSpread }},
	{"spread_bps", func(r *hedge.Row) *float64 { return &r.SpreadBps }},

	{"liability_price", func(r *hedge.Row) *float64 { return &r.LiabilityPrice }},
	{"liability_delta", func(r *hedge.Row) *float64 { return &r.LiabilityDelta }},
	{"liability_gamma", func(r *hedge.Row) *float64 { return &r.LiabilityGamma }},
	{"liability_vega", func(r *hedge.Row) *float64 { return &r.LiabilityVega }},
	{"liability_theta", func(r *hedge.Row) *float64 { return &r.LiabilityTheta }},
	{"liability_rho", func(r *hedge.Row) *float64 { return &r.LiabilityRho }},

	{"hedge_price", func(r *hedge.Row) *float64 { return &r.HedgePrice }},
	{"hedge_delta", func(r *hedge.Row) *float64 { return &r.HedgeDelta }},
	{"hedge_gamma", func(r *hedge.Row) *float64 { return &r.HedgeGamma }},
	{"hedge_vega", func(r *hedge.Row) *float64 { return &r.HedgeVega }},
	{"hedge_theta", func(r *hedge.Row) *float64 { return &r.HedgeTheta }},
	{"hedge_rho", func(r *hedge.Row) *float64 { return &r.HedgeRho }},

	{"hedge_quantity", func(r *hedge.Row) *float64 { return &r.HedgeQuantity }},
	{"vega_hedge_quantity", func(r *hedge.Row) *float64 { return &r.VegaHedgeQuantity }},
	{"gamma_hedge_quantity", func(r *hedge.Row) *float64 { return &r.GammaHedgeQuantity }},

	{"net_delta", func(r *hedge.Row) *float64 { return &r.NetDelta }},
	{"net_gamma", func(r *hedge.Row) *float64 { return &r.NetGamma }},
	{"net_vega", func(r *hedge.Row) *float64 { return &r.NetVega }},

	{"trade_quantity", func(r *hedge.Row) *float64 { return &r.TradeQuantity }},
	{"vega_trade_quantity", func(r *hedge.Row) *float64 { return &r.VegaTradeQuantity }},
	{"gamma_trade_quantity", func(r *hedge.Row) *float64 { return &r.GammaTradeQuantity }},
	{"trade_cost", func(r *hedge.Row) *float64 { return &r.TradeCost }},

	{"cash", func(r *hedge.Row) *float64 { return &r.Cash }},
	{"funding", func(r *hedge.Row) *float64 { return &r.Funding }},
	{"value", func(r *hedge.Row) *float64 { return &r.Value }},

	{"pnl_directional", func(r *hedge.Row) *float64 { return &r.PnLDirectional }},
	{"pnl_gamma", func(r *hedge.Row) *float64 { return &r.PnLGamma }},
	{"pnl_vega", func(r *hedge.Row) *float64 { return &r.PnLVega }},
	{"pnl_theta", func(r *hedge.Row) *float64 { return &r.PnLTheta }},
	{"pnl_rho", func(r *hedge.Row) *float64 { return &r.PnLRho }},
	{"pnl_residual", func(r *hedge.Row) *float64 { return &r.PnLResidual }},
	{"pnl_total", func(r *hedge.Row) *float64 { return &r.PnLTotal }},

	{"cum_pnl", func(r *hedge.Row) *float64 { return &r.CumPnL }},
	{"cum_transaction_cost", func(r *hedge.Row) *float64 { return &r.CumTransactionCost }},
	{"cum_funding", func(r *hedge.Row) *float64 { return &r.CumFunding }},
}

// DayColumns is the days table header, in storage order.
func DayColumns() []string {
	cols := []string{"run_id", "day", "date", "traded"}
	for _, c := range floatColumns {
		cols = append(cols, c.name)
	}
	return cols
}
