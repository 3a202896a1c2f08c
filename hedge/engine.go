// Package hedge runs the day-by-day re-hedging of a single option liability
// over a scenario and attributes the resulting P&L.
package hedge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/naderih/Market-Risk-Dynamic-Hedging/curve"
	"github.com/naderih/Market-Risk-Dynamic-Hedging/instrument"
	"github.com/naderih/Market-Risk-Dynamic-Hedging/internal/id"
	"github.com/naderih/Market-Risk-Dynamic-Hedging/market"
	"github.com/naderih/Market-Risk-Dynamic-Hedging/scenario"
)

// minUnitGreek is the smallest per-unit sensitivity a leg must have to be
// used for neutralizing that Greek.
const minUnitGreek = 1e-9

// Sink receives each day's row as it is recorded. A failing sink halts the run.
type Sink interface {
	RecordDay(runID string, row Row) error
}

type Option func(*Engine)

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

func WithRunID(runID string) Option {
	return func(e *Engine) { e.runID = runID }
}

func WithSink(s Sink) Option {
	return func(e *Engine) { e.sink = s }
}

// Engine owns one run's mutable state. It is not safe for concurrent use;
// run independent scenarios on independent engines.
type Engine struct {
	cfg   Config
	scn   *scenario.Scenario
	log   *slog.Logger
	runID string
	sink  Sink

	legs [numLegs]*instrument.Instrument

	state State
	day   int
	qty   [numLegs]float64
	cash  float64

	prev     *marks
	prevBook instrument.Greeks
	value    float64

	result *Result
}

// NewEngine validates cfg against scn and prices day 0 so that any
// configuration problem surfaces before a single day runs.
func NewEngine(cfg Config, scn *scenario.Scenario, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(scn); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	e := &Engine{
		cfg:   cfg,
		scn:   scn,
		log:   slog.Default(),
		state: StateInit,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.runID == "" {
		e.runID = id.New()
	}
	e.log = e.log.With("run_id", e.runID, "scenario", scn.Name)

	dh := cfg.DeltaHedge
	e.legs[DeltaLeg] = &dh
	if cfg.VegaHedge != nil {
		vh := *cfg.VegaHedge
		e.legs[VegaLeg] = &vh
	}
	if cfg.GammaHedge != nil {
		gh := *cfg.GammaHedge
		e.legs[GammaLeg] = &gh
	}

	m0, err := e.computeMarks(0)
	if err != nil {
		return nil, fmt.Errorf("inception: %w", err)
	}

	e.qty[DeltaLeg] = cfg.Policy.InitialHedgeQuantity
	e.cash = cfg.Policy.InitialCash
	if cfg.Policy.CashFromPremium {
		e.cash -= m0.liab.Price
	}

	e.result = &Result{
		RunID:    e.runID,
		Scenario: scn.Name,
		Status:   Running,
		Started:  time.Now().UTC(),
	}
	return e, nil
}

// State is the current state machine position.
func (e *Engine) State() State { return e.state }

// Position is the current hedge book and cash.
func (e *Engine) Position() Position { return positionOf(e.qty, e.cash) }

// Result is the result recorded so far.
func (e *Engine) Result() *Result { return e.result }

func (e *Engine) transition(to State) error {
	if !CanTransition(e.state, to) {
		return fmt.Errorf("illegal transition %s -> %s on day %d", e.state, to, e.day)
	}
	e.state = to
	return nil
}

// Run steps through the remaining days in order. On a pricing or numeric
// failure it stops at the offending day and returns the partial result with
// the error. Cancellation is checked between days only.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	if e.state.Terminal() {
		return e.result, fmt.Errorf("run %s is %s", e.runID, e.state)
	}

	for e.day < e.scn.Len() {
		if err := ctx.Err(); err != nil {
			e.state = StateCancelled
			e.result.Status = Cancelled
			e.result.HaltDay = e.day
			e.result.HaltReason = err.Error()
			e.log.Warn("run cancelled", "day", e.day)
			return e.result, err
		}
		if err := e.Step(); err != nil {
			return e.result, err
		}
	}
	return e.result, nil
}

// Step runs exactly one day through the state machine.
func (e *Engine) Step() error {
	if e.state.Terminal() {
		return fmt.Errorf("run %s is %s", e.runID, e.state)
	}
	if err := e.transition(StateComputeMarks); err != nil {
		return err
	}

	m, err := e.computeMarks(e.day)
	if err != nil {
		return e.halt(err)
	}

	startQty, startCash := e.qty, e.cash
	if e.day == 0 {
		e.value = m.value(e.qty, e.cash)
		e.result.InitialValue = e.value
	}

	if err := e.transition(StateEvaluateTrigger); err != nil {
		return err
	}
	netPre := m.book(e.qty)
	orders, triggered := e.plan(m, netPre)

	var trades []Trade
	if len(orders) > 0 {
		if err := e.transition(StateTrade); err != nil {
			return err
		}
		trades = e.execute(m, orders)
	} else if err := e.transition(StateSkip); err != nil {
		return err
	}

	if err := e.transition(StateApplyFunding); err != nil {
		return err
	}
	funding := e.applyFunding(m, startCash)

	if err := e.transition(StateRecordAttribution); err != nil {
		return err
	}
	if err := e.record(m, netPre.Delta, triggered, trades, startQty, funding); err != nil {
		return e.halt(err)
	}

	if err := e.transition(StateAdvance); err != nil {
		return err
	}
	e.day++
	if e.day == e.scn.Len() {
		e.state = StateDone
		e.result.Status = Completed
		e.log.Info("run completed",
			"days", len(e.result.Days),
			"pnl", e.result.Totals.PnL,
			"transaction_cost", e.result.Totals.TransactionCost,
			"funding", e.result.Totals.Funding,
			"trades", e.result.Totals.Trades)
	}
	return nil
}

func (e *Engine) halt(err error) error {
	snap, _ := e.scn.At(e.day)
	err = fmt.Errorf("day %d (%s): %w", e.day, snap.Date.Format(market.DateLayout), err)
	e.state = StateHalted
	e.result.Status = Halted
	e.result.HaltDay = e.day
	e.result.HaltReason = err.Error()
	e.log.Warn("run halted", "day", e.day, "error", err,
		"expired", errors.Is(err, market.ErrExpiredInstrument),
		"numeric", errors.Is(err, market.ErrNumericDegeneracy))
	return err
}

// marks are the day's valuations: the liability as configured and each
// hedge leg per unit of quantity.
type marks struct {
	snap      market.Snapshot
	liab      instrument.Valuation
	unit      [numLegs]instrument.Valuation
	present   [numLegs]bool
	spreadBps float64
}

func (e *Engine) computeMarks(day int) (*marks, error) {
	snap, ok := e.scn.At(day)
	if !ok {
		return nil, fmt.Errorf("no snapshot for day %d", day)
	}
	crv, err := curve.FromSnapshot(snap, e.cfg.Tenors, e.cfg.Interpolation)
	if err != nil {
		return nil, err
	}

	m := &marks{snap: snap, spreadBps: e.scn.CurrentSpreadBps(snap)}
	m.liab, err = instrument.PriceAndGreeks(e.cfg.Liability, snap, crv, snap.Date)
	if err != nil {
		return nil, fmt.Errorf("liability: %w", err)
	}
	for leg, inst := range e.legs {
		if inst == nil {
			continue
		}
		m.unit[leg], err = instrument.PriceAndGreeks(*inst, snap, crv, snap.Date)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", Role(leg), err)
		}
		m.present[leg] = true
	}
	return m, nil
}

func (m *marks) book(qty [numLegs]float64) instrument.Greeks {
	g := m.liab.Greeks
	for leg := range qty {
		if m.present[leg] {
			g = g.Add(m.unit[leg].Greeks.Scale(qty[leg]))
		}
	}
	return g
}

func (m *marks) value(qty [numLegs]float64, cash float64) float64 {
	v := m.liab.Price + cash
	for leg := range qty {
		if m.present[leg] {
			v += qty[leg] * m.unit[leg].Price
		}
	}
	return v
}

type order struct {
	leg    Role
	qty    float64
	reason string
}

// plan decides whether to trade and sizes the orders. Legs are sized in
// cascade order (gamma, vega, delta), each seeing the Greeks left by the
// previous one.
func (e *Engine) plan(m *marks, net instrument.Greeks) ([]order, bool) {
	p := e.cfg.Policy
	last := e.day == e.scn.Len()-1
	inception := e.day == 0 && p.InitialSizing != SizeNone

	switch {
	case last && p.LiquidateAtHorizon:
		var orders []order
		for leg := range e.qty {
			if e.qty[leg] != 0 {
				orders = append(orders, order{leg: Role(leg), qty: -e.qty[leg], reason: "liquidate"})
			}
		}
		return orders, true

	case inception && p.InitialSizing == SizeVega:
		u := m.unit[DeltaLeg].Greeks.Vega
		if math.Abs(u) < minUnitGreek {
			e.log.Warn("vega sizing skipped: hedge has no vega", "day", e.day)
			return nil, true
		}
		return nonZero(order{leg: DeltaLeg, qty: -net.Vega / u, reason: "inception_vega"}), true

	case inception:
		return e.cascade(m, net, "inception"), true

	case p.Triggered(e.day, net.Delta):
		return e.cascade(m, net, "rebalance"), true
	}
	return nil, false
}

func (e *Engine) cascade(m *marks, net instrument.Greeks, reason string) []order {
	var orders []order

	if m.present[GammaLeg] {
		u := m.unit[GammaLeg].Greeks
		if math.Abs(u.Gamma) >= minUnitGreek {
			q := -net.Gamma / u.Gamma
			orders = append(orders, nonZero(order{leg: GammaLeg, qty: q, reason: reason})...)
			net = net.Add(u.Scale(q))
		}
	}
	if m.present[VegaLeg] {
		u := m.unit[VegaLeg].Greeks
		if math.Abs(u.Vega) >= minUnitGreek {
			q := -net.Vega / u.Vega
			orders = append(orders, nonZero(order{leg: VegaLeg, qty: q, reason: reason})...)
			net = net.Add(u.Scale(q))
		}
	}

	u := m.unit[DeltaLeg].Greeks
	if math.Abs(u.Delta) < minUnitGreek {
		e.log.Warn("delta leg has no delta, not traded", "day", e.day)
		return orders
	}
	q := -e.cfg.Policy.DeltaToRemove(net.Delta) / u.Delta
	return append(orders, nonZero(order{leg: DeltaLeg, qty: q, reason: reason})...)
}

func nonZero(o order) []order {
	if o.qty == 0 {
		return nil
	}
	return []order{o}
}

// execute fills orders at mid and charges the vol-widened half spread:
// the underlying's base spread for the underlying, OptionSpreadBps for options.
func (e *Engine) execute(m *marks, orders []order) []Trade {
	trades := make([]Trade, 0, len(orders))
	for _, o := range orders {
		inst := e.legs[o.leg]
		price := m.unit[o.leg].Price
		notional := o.qty * price

		base := m.snap.BaseSpreadBps
		if inst.IsOption() {
			base = e.cfg.Policy.OptionSpreadBps
		}
		cost, spread := halfSpreadCost(notional, base, m.snap.Volatility, e.scn.VolBase)

		e.cash -= notional + cost
		e.qty[o.leg] += o.qty

		t := Trade{
			Leg:        o.leg,
			Instrument: inst.String(),
			Quantity:   o.qty,
			Price:      price,
			Notional:   notional,
			SpreadBps:  spread,
			Cost:       cost,
			Reason:     o.reason,
		}
		trades = append(trades, t)
		e.log.Debug("trade", "day", e.day, "leg", o.leg.String(), "qty", o.qty,
			"price", price, "cost", cost, "reason", o.reason)
	}
	return trades
}

// applyFunding accrues on the start-of-day cash over the calendar days since
// the previous snapshot, using today's overnight rate and credit spread.
func (e *Engine) applyFunding(m *marks, startCash float64) float64 {
	if e.prev == nil {
		return 0
	}
	days := market.DaysBetween(e.prev.snap.Date, m.snap.Date)
	f := FundingAccrual(startCash, m.snap.OvernightRate, m.snap.CreditSpread, days)
	e.cash += f
	return f
}

func (e *Engine) record(m *marks, netPreDelta float64, triggered bool, trades []Trade, startQty [numLegs]float64, funding float64) error {
	v := m.value(e.qty, e.cash)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("portfolio value %g: %w", v, market.ErrNumericDegeneracy)
	}

	var cost float64
	for _, t := range trades {
		cost += t.Cost
	}

	var pnl Attribution
	if e.prev == nil {
		pnl = Explain(instrument.Greeks{}, 0, 0, 0, 0, v-e.value, cost, funding)
	} else {
		p := e.prev
		rho := p.liab.Greeks.Rho * (m.liab.Rate - p.liab.Rate)
		for leg := range startQty {
			if m.present[leg] {
				rho += startQty[leg] * p.unit[leg].Greeks.Rho * (m.unit[leg].Rate - p.unit[leg].Rate)
			}
		}
		pnl = Explain(e.prevBook,
			m.snap.Spot-p.snap.Spot,
			m.snap.Volatility-p.snap.Volatility,
			market.YearFraction(p.snap.Date, m.snap.Date),
			rho, v-e.value, cost, funding)
	}

	net := m.book(e.qty)
	d := Day{
		Snapshot:         m.snap,
		SpreadBps:        m.spreadBps,
		Liability:        m.liab,
		NetDeltaPreTrade: netPreDelta,
		Net:              net,
		Triggered:        triggered,
		Trades:           trades,
		Position:         positionOf(e.qty, e.cash),
		Value:            v,
		PnL:              pnl,
		Cumulative:       e.result.Totals.add(pnl, len(trades)),
	}
	for leg, inst := range e.legs {
		if inst != nil {
			d.Legs = append(d.Legs, LegMark{Leg: Role(leg), Name: inst.String(), Quantity: e.qty[leg], Unit: m.unit[leg]})
		}
	}

	if e.sink != nil {
		if err := e.sink.RecordDay(e.runID, RowOf(d)); err != nil {
			return fmt.Errorf("record day: %w", err)
		}
	}

	e.result.Days = append(e.result.Days, d)
	e.result.Totals = d.Cumulative
	e.prev = m
	e.prevBook = net
	e.value = v
	return nil
}
