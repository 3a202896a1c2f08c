package hedge

import (
	"time"

	"github.com/naderih/Market-Risk-Dynamic-Hedging/instrument"
	"github.com/naderih/Market-Risk-Dynamic-Hedging/market"
)

// Status is the terminal state of a run.
type Status string

const (
	Running   Status = "running"
	Completed Status = "completed"
	Halted    Status = "halted"
	Cancelled Status = "cancelled"
)

// Role identifies a hedge leg. Legs are traded in role order.
type Role int

const (
	GammaLeg Role = iota
	VegaLeg
	DeltaLeg
	numLegs
)

func (r Role) String() string {
	switch r {
	case GammaLeg:
		return "gamma_hedge"
	case VegaLeg:
		return "vega_hedge"
	case DeltaLeg:
		return "delta_hedge"
	}
	return "unknown"
}

// Position is the hedge book and cash at the end of a day.
type Position struct {
	HedgeQuantity      float64 `json:"hedge_quantity" yaml:"hedge_quantity"`
	VegaHedgeQuantity  float64 `json:"vega_hedge_quantity" yaml:"vega_hedge_quantity"`
	GammaHedgeQuantity float64 `json:"gamma_hedge_quantity" yaml:"gamma_hedge_quantity"`
	Cash               float64 `json:"cash" yaml:"cash"`
}

func positionOf(qty [numLegs]float64, cash float64) Position {
	return Position{
		HedgeQuantity:      qty[DeltaLeg],
		VegaHedgeQuantity:  qty[VegaLeg],
		GammaHedgeQuantity: qty[GammaLeg],
		Cash:               cash,
	}
}

// Trade is one executed leg trade.
type Trade struct {
	Leg        Role    `json:"leg" yaml:"leg"`
	Instrument string  `json:"instrument" yaml:"instrument"`
	Quantity   float64 `json:"quantity" yaml:"quantity"`
	Price      float64 `json:"price" yaml:"price"` // per unit, at mid
	Notional   float64 `json:"notional" yaml:"notional"`
	SpreadBps  float64 `json:"spread_bps" yaml:"spread_bps"`
	Cost       float64 `json:"cost" yaml:"cost"`
	Reason     string  `json:"reason" yaml:"reason"`
}

// LegMark is the per-unit valuation of a configured hedge leg.
type LegMark struct {
	Leg      Role                 `json:"leg" yaml:"leg"`
	Name     string               `json:"name" yaml:"name"`
	Quantity float64              `json:"quantity" yaml:"quantity"`
	Unit     instrument.Valuation `json:"unit" yaml:"unit"`
}

// Day is everything recorded for one simulated day.
type Day struct {
	Snapshot  market.Snapshot      `json:"snapshot" yaml:"snapshot"`
	SpreadBps float64              `json:"spread_bps" yaml:"spread_bps"` // widened underlying spread
	Liability instrument.Valuation `json:"liability" yaml:"liability"`
	Legs      []LegMark            `json:"legs" yaml:"legs"`

	NetDeltaPreTrade float64           `json:"net_delta_pre_trade" yaml:"net_delta_pre_trade"`
	Net              instrument.Greeks `json:"net" yaml:"net"` // after trades
	Triggered        bool              `json:"triggered" yaml:"triggered"`
	Trades           []Trade           `json:"trades,omitempty" yaml:"trades,omitempty"`

	Position   Position    `json:"position" yaml:"position"`
	Value      float64     `json:"value" yaml:"value"` // liability + hedges + cash
	PnL        Attribution `json:"pnl" yaml:"pnl"`
	Cumulative Totals      `json:"cumulative" yaml:"cumulative"`
}

// Traded reports whether any leg traded that day.
func (d Day) Traded() bool { return len(d.Trades) > 0 }

// TradeCost is the sum of the day's spread costs.
func (d Day) TradeCost() float64 {
	var c float64
	for _, t := range d.Trades {
		c += t.Cost
	}
	return c
}

// TradedQuantity is the net quantity traded on leg.
func (d Day) TradedQuantity(leg Role) float64 {
	var q float64
	for _, t := range d.Trades {
		if t.Leg == leg {
			q += t.Quantity
		}
	}
	return q
}

// Result is the append-only, day-ordered output of one run. It must be
// treated as read-only once Run returns.
type Result struct {
	RunID      string    `json:"run_id" yaml:"run_id"`
	Scenario   string    `json:"scenario" yaml:"scenario"`
	Status     Status    `json:"status" yaml:"status"`
	HaltDay    int       `json:"halt_day,omitempty" yaml:"halt_day,omitempty"`
	HaltReason string    `json:"halt_reason,omitempty" yaml:"halt_reason,omitempty"`
	Started    time.Time `json:"started" yaml:"started"`

	InitialValue float64 `json:"initial_value" yaml:"initial_value"`
	Days         []Day   `json:"days" yaml:"days"`
	Totals       Totals  `json:"totals" yaml:"totals"`
}

// Final is the last recorded day.
func (r *Result) Final() (Day, bool) {
	if len(r.Days) == 0 {
		return Day{}, false
	}
	return r.Days[len(r.Days)-1], true
}

// Row is the flat, serializable view of a Day with stable column semantics.
type Row struct {
	Day  int       `json:"day"`
	Date time.Time `json:"date"`

	Spot          float64 `json:"spot"`
	Volatility    float64 `json:"volatility"`
	OvernightRate float64 `json:"overnight_rate"`
	ShortRate     float64 `json:"short_rate"`
	LongRate      float64 `json:"long_rate"`
	CreditSpread  float64 `json:"credit_spread"`
	SpreadBps     float64 `json:"spread_bps"`

	LiabilityPrice float64 `json:"liability_price"`
	LiabilityDelta float64 `json:"liability_delta"`
	LiabilityGamma float64 `json:"liability_gamma"`
	LiabilityVega  float64 `json:"liability_vega"`
	LiabilityTheta float64 `json:"liability_theta"`
	LiabilityRho   float64 `json:"liability_rho"`

	HedgePrice float64 `json:"hedge_price"`
	HedgeDelta float64 `json:"hedge_delta"`
	HedgeGamma float64 `json:"hedge_gamma"`
	HedgeVega  float64 `json:"hedge_vega"`
	HedgeTheta float64 `json:"hedge_theta"`
	HedgeRho   float64 `json:"hedge_rho"`

	HedgeQuantity      float64 `json:"hedge_quantity"`
	VegaHedgeQuantity  float64 `json:"vega_hedge_quantity"`
	GammaHedgeQuantity float64 `json:"gamma_hedge_quantity"`

	NetDelta float64 `json:"net_delta"`
	NetGamma float64 `json:"net_gamma"`
	NetVega  float64 `json:"net_vega"`

	Traded             bool    `json:"traded"`
	TradeQuantity      float64 `json:"trade_quantity"` // delta leg
	VegaTradeQuantity  float64 `json:"vega_trade_quantity"`
	GammaTradeQuantity float64 `json:"gamma_trade_quantity"`
	TradeCost          float64 `json:"trade_cost"` // all legs

	Cash    float64 `json:"cash"`
	Funding float64 `json:"funding"`
	Value   float64 `json:"value"`

	PnLDirectional float64 `json:"pnl_directional"`
	PnLGamma       float64 `json:"pnl_gamma"`
	PnLVega        float64 `json:"pnl_vega"`
	PnLTheta       float64 `json:"pnl_theta"`
	PnLRho         float64 `json:"pnl_rho"`
	PnLResidual    float64 `json:"pnl_residual"`
	PnLTotal       float64 `json:"pnl_total"`

	CumPnL             float64 `json:"cum_pnl"`
	CumTransactionCost float64 `json:"cum_transaction_cost"`
	CumFunding         float64 `json:"cum_funding"`
}

// RowOf flattens a Day.
func RowOf(d Day) Row {
	s := d.Snapshot
	r := Row{
		Day:           s.Day,
		Date:          s.Date,
		Spot:          s.Spot,
		Volatility:    s.Volatility,
		OvernightRate: s.OvernightRate,
		ShortRate:     s.ShortRate,
		LongRate:      s.LongRate,
		CreditSpread:  s.CreditSpread,
		SpreadBps:     d.SpreadBps,

		LiabilityPrice: d.Liability.Price,
		LiabilityDelta: d.Liability.Greeks.Delta,
		LiabilityGamma: d.Liability.Greeks.Gamma,
		LiabilityVega:  d.Liability.Greeks.Vega,
		LiabilityTheta: d.Liability.Greeks.Theta,
		LiabilityRho:   d.Liability.Greeks.Rho,

		HedgeQuantity:      d.Position.HedgeQuantity,
		VegaHedgeQuantity:  d.Position.VegaHedgeQuantity,
		GammaHedgeQuantity: d.Position.GammaHedgeQuantity,

		NetDelta: d.Net.Delta,
		NetGamma: d.Net.Gamma,
		NetVega:  d.Net.Vega,

		Traded:             d.Traded(),
		TradeQuantity:      d.TradedQuantity(DeltaLeg),
		VegaTradeQuantity:  d.TradedQuantity(VegaLeg),
		GammaTradeQuantity: d.TradedQuantity(GammaLeg),
		TradeCost:          d.TradeCost(),

		Cash:    d.Position.Cash,
		Funding: d.PnL.Funding,
		Value:   d.Value,

		PnLDirectional: d.PnL.Directional,
		PnLGamma:       d.PnL.Gamma,
		PnLVega:        d.PnL.Vega,
		PnLTheta:       d.PnL.Theta,
		PnLRho:         d.PnL.Rho,
		PnLResidual:    d.PnL.Residual,
		PnLTotal:       d.PnL.Total,

		CumPnL:             d.Cumulative.PnL,
		CumTransactionCost: d.Cumulative.TransactionCost,
		CumFunding:         d.Cumulative.Funding,
	}
	for _, l := range d.Legs {
		if l.Leg == DeltaLeg {
			r.HedgePrice = l.Unit.Price
			r.HedgeDelta = l.Unit.Greeks.Delta
			r.HedgeGamma = l.Unit.Greeks.Gamma
			r.HedgeVega = l.Unit.Greeks.Vega
			r.HedgeTheta = l.Unit.Greeks.Theta
			r.HedgeRho = l.Unit.Greeks.Rho
		}
	}
	return r
}

// Rows is the whole result as a plain table, one row per simulated day.
func (r *Result) Rows() []Row {
	out := make([]Row, len(r.Days))
	for i, d := range r.Days {
		out[i] = RowOf(d)
	}
	return out
}

func (r Role) MarshalText() ([]byte, error) { return []byte(r.String()), nil }
