package hedge

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/naderih/Market-Risk-Dynamic-Hedging/instrument"
	"github.com/naderih/Market-Risk-Dynamic-Hedging/market"
	"github.com/naderih/Market-Risk-Dynamic-Hedging/scenario"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Tuesday, so one-step scenarios never straddle a weekend.
var start = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func genScenario(t *testing.T, mutate func(*scenario.Config)) *scenario.Scenario {
	t.Helper()
	cfg := scenario.DefaultConfig()
	cfg.StartDate = start
	if mutate != nil {
		mutate(&cfg)
	}
	s, err := scenario.Generate(cfg)
	require.NoError(t, err)
	return s
}

func stochastic(seed uint64, horizon int) func(*scenario.Config) {
	return func(c *scenario.Config) {
		c.Horizon = horizon
		c.Feedback = 0
		c.Shock = scenario.Shock{Mode: scenario.Stochastic, Seed: seed}
	}
}

func shortCall(years int) instrument.Instrument {
	return instrument.Instrument{
		Name:     "liability",
		Kind:     instrument.Call,
		Strike:   100,
		Maturity: start.AddDate(years, 0, 0),
		Notional: -1,
	}
}

func spotHedge() instrument.Instrument {
	return instrument.Instrument{Name: "spot", Kind: instrument.Underlying, Notional: 1}
}

func run(t *testing.T, cfg Config, scn *scenario.Scenario) *Result {
	t.Helper()
	e, err := NewEngine(cfg, scn, WithLogger(quiet))
	require.NoError(t, err)
	res, err := e.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, Completed, res.Status)
	require.Len(t, res.Days, scn.Len())
	return res
}

func TestStrictHedgingFlattensEveryDay(t *testing.T) {
	scn := genScenario(t, stochastic(11, 40))
	res := run(t, Config{
		Liability:  shortCall(1),
		DeltaHedge: spotHedge(),
		Policy:     Policy{Mode: Strict, CashFromPremium: true},
	}, scn)

	for _, d := range res.Days {
		assert.InDelta(t, 0, d.Net.Delta, 1e-9, "day %d", d.Snapshot.Day)
		assert.True(t, d.Triggered)
	}
}

func TestZeroDeltaLimitMatchesStrict(t *testing.T) {
	scn := genScenario(t, stochastic(5, 20))
	strict := run(t, Config{Liability: shortCall(1), DeltaHedge: spotHedge(), Policy: Policy{Mode: Strict}}, scn)
	zero := run(t, Config{Liability: shortCall(1), DeltaHedge: spotHedge(), Policy: Policy{Mode: Threshold, DeltaLimit: 0}}, scn)

	for i := range strict.Days {
		assert.InDelta(t, strict.Days[i].Value, zero.Days[i].Value, 1e-9)
		assert.InDelta(t, 0, zero.Days[i].Net.Delta, 1e-9)
	}
}

func TestTransactionCostGrowsWithRebalanceFrequency(t *testing.T) {
	scn := genScenario(t, stochastic(3, 60))
	cost := func(k int) float64 {
		res := run(t, Config{
			Liability:  shortCall(1),
			DeltaHedge: spotHedge(),
			Policy:     Policy{Mode: Cadence, Cadence: k},
		}, scn)
		return res.Totals.TransactionCost
	}
	daily, weekly, monthly := cost(1), cost(5), cost(20)
	assert.GreaterOrEqual(t, daily, weekly)
	assert.GreaterOrEqual(t, weekly, monthly)
	assert.Greater(t, monthly, 0.0)
}

func TestCadenceTradesOnSchedule(t *testing.T) {
	scn := genScenario(t, stochastic(8, 12))
	res := run(t, Config{Liability: shortCall(1), DeltaHedge: spotHedge(), Policy: Policy{Mode: Cadence, Cadence: 4}}, scn)
	for _, d := range res.Days {
		assert.Equal(t, d.Snapshot.Day%4 == 0, d.Triggered, "day %d", d.Snapshot.Day)
	}
}

func TestNeverRebalanceIsUnhedgedLiability(t *testing.T) {
	scn := genScenario(t, func(c *scenario.Config) {
		c.Horizon = 15
		c.Feedback = 2
		c.Shock = scenario.Shock{Mode: scenario.Linear, SpotReturn: -0.2, CreditSpreadChange: 0.02}
	})
	res := run(t, Config{
		Liability:  shortCall(1),
		DeltaHedge: spotHedge(),
		Policy:     Policy{Mode: Threshold, DeltaLimit: math.Inf(1), CashFromPremium: true},
	}, scn)

	first := res.Days[0]
	last, _ := res.Final()

	var funding float64
	cash := first.Position.Cash
	for _, d := range res.Days {
		assert.False(t, d.Traded())
		assert.Zero(t, d.PnL.TransactionCost)
		if d.Snapshot.Day > 0 {
			want := FundingAccrual(cash, d.Snapshot.OvernightRate, d.Snapshot.CreditSpread,
				market.DaysBetween(res.Days[d.Snapshot.Day-1].Snapshot.Date, d.Snapshot.Date))
			assert.InDelta(t, want, d.PnL.Funding, 1e-12)
		}
		funding += d.PnL.Funding
		cash = d.Position.Cash
	}
	assert.Greater(t, first.Position.Cash, 0.0, "premium received on the short")
	assert.InDelta(t, last.Liability.Price-first.Liability.Price+funding, res.Totals.PnL, 1e-9)
}

func TestInceptionTradeOnlyCostWhenNeverRebalancing(t *testing.T) {
	scn := genScenario(t, stochastic(21, 30))
	res := run(t, Config{
		Liability:  shortCall(1),
		DeltaHedge: spotHedge(),
		Policy:     Policy{Mode: Threshold, DeltaLimit: math.Inf(1), InitialSizing: SizeDelta},
	}, scn)

	require.True(t, res.Days[0].Traded())
	assert.Greater(t, res.Days[0].PnL.TransactionCost, 0.0)
	assert.InDelta(t, 0, res.Days[0].Net.Delta, 1e-12)
	for _, d := range res.Days[1:] {
		assert.Zero(t, d.PnL.TransactionCost)
	}
	assert.Equal(t, res.Days[0].PnL.TransactionCost, res.Totals.TransactionCost)
}

func TestMaturityMismatchVegaSizing(t *testing.T) {
	scn := genScenario(t, func(c *scenario.Config) {
		c.Volatility = 0.05
		c.OvernightRate, c.ShortRate, c.LongRate = 0, 0, 0
		c.CreditSpread = 0
	})
	hedge := instrument.Instrument{Name: "1y", Kind: instrument.Call, Strike: 100, Maturity: start.AddDate(1, 0, 0), Notional: 1}
	liab := shortCall(5)

	e, err := NewEngine(Config{
		Liability:  liab,
		DeltaHedge: hedge,
		Policy:     Policy{Mode: Threshold, DeltaLimit: math.Inf(1), InitialSizing: SizeVega},
	}, scn, WithLogger(quiet))
	require.NoError(t, err)
	require.NoError(t, e.Step())

	multiple := e.Position().HedgeQuantity / math.Abs(liab.Notional)
	assert.InDelta(t, math.Sqrt(5), multiple, 0.01)
	assert.InDelta(t, 0, e.Result().Days[0].Net.Vega, 1e-9)
	assert.Greater(t, math.Abs(e.Result().Days[0].Net.Gamma), 0.0, "short-dated hedge leaves net gamma")
}

func TestFundingAsymmetryInEngine(t *testing.T) {
	scn := genScenario(t, func(c *scenario.Config) {
		c.Horizon = 1
		c.OvernightRate = 0.02
		c.CreditSpread = 0.05
	})
	for _, cash := range []float64{-100, 100} {
		res := run(t, Config{
			Liability:  shortCall(1),
			DeltaHedge: spotHedge(),
			Policy:     Policy{Mode: Threshold, DeltaLimit: math.Inf(1), InitialCash: cash},
		}, scn)

		f := res.Days[1].PnL.Funding
		if cash < 0 {
			assert.InDelta(t, -100*(0.02+0.05)/365, f, 1e-15)
		} else {
			assert.InDelta(t, 100*0.02/365, f, 1e-15)
		}
		assert.Zero(t, res.Days[0].PnL.Funding)
	}
}

func TestFundingAccruesOverWeekend(t *testing.T) {
	scn := genScenario(t, func(c *scenario.Config) {
		c.StartDate = time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC) // Friday
		c.Horizon = 1
	})
	res := run(t, Config{
		Liability:  shortCall(1),
		DeltaHedge: spotHedge(),
		Policy:     Policy{Mode: Threshold, DeltaLimit: math.Inf(1), InitialCash: 1000},
	}, scn)
	assert.InDelta(t, 1000*0.04*3/365, res.Days[1].PnL.Funding, 1e-12)
}

func TestDailyPnLReconciles(t *testing.T) {
	scn := genScenario(t, func(c *scenario.Config) {
		*c = mustPreset(t, "covid_crash_2020", *c)
	})
	res := run(t, Config{
		Liability:  shortCall(1),
		DeltaHedge: spotHedge(),
		Policy:     Policy{Mode: Threshold, DeltaLimit: 0.05, CashFromPremium: true},
	}, scn)

	prev := res.InitialValue
	var cum float64
	for _, d := range res.Days {
		a := d.PnL
		assert.InDelta(t, d.Value-prev, a.Total, 1e-9)
		assert.InDelta(t, a.Total, a.Taylor()+a.Residual+a.Funding-a.TransactionCost, 1e-9)
		assert.InDelta(t, d.TradeCost(), a.TransactionCost, 1e-12)
		cum += a.Total
		assert.InDelta(t, cum, d.Cumulative.PnL, 1e-9)
		prev = d.Value
	}
	last, _ := res.Final()
	assert.InDelta(t, last.Value-res.InitialValue, res.Totals.PnL, 1e-9)
}

func TestOneDayAttributionResidualShrinksWithShock(t *testing.T) {
	// Feedback 5 turns a -1% spot move into a +5% relative vol move.
	dayOne := func(spotReturn float64) Attribution {
		scn := genScenario(t, func(c *scenario.Config) {
			c.Horizon = 1
			c.Feedback = 5
			c.Shock = scenario.Shock{Mode: scenario.Path, SpotReturns: []float64{spotReturn}}
		})
		res := run(t, Config{
			Liability:  shortCall(1),
			DeltaHedge: spotHedge(),
			Policy:     Policy{Mode: Threshold, DeltaLimit: math.Inf(1)},
		}, scn)

		d0, d1 := res.Days[0], res.Days[1]
		require.InDelta(t, 1.05*d0.Snapshot.Volatility, d1.Snapshot.Volatility, 1e-12)
		require.Empty(t, d1.Trades)
		return d1.PnL
	}

	full, half := dayOne(-0.01), dayOne(-0.005)
	for _, a := range []Attribution{full, half} {
		assert.InDelta(t, a.Total, a.Taylor()+a.Residual+a.Funding-a.TransactionCost, 1e-12)
		assert.Zero(t, a.TransactionCost)
		assert.Zero(t, a.Rho, "rates do not move")
		assert.Less(t, math.Abs(a.Residual), 0.01*math.Abs(a.Total))
	}
	assert.Greater(t, math.Abs(full.Vega), 0.0)
	assert.Greater(t, math.Abs(full.Residual), 2*math.Abs(half.Residual),
		"halving the shock more than halves the residual")
}

func TestThresholdBandTarget(t *testing.T) {
	scn := genScenario(t, stochastic(17, 40))
	res := run(t, Config{
		Liability:  shortCall(1),
		DeltaHedge: spotHedge(),
		Policy:     Policy{Mode: Threshold, DeltaLimit: 0.1, Target: TargetBand},
	}, scn)

	traded := 0
	for _, d := range res.Days {
		if d.Traded() {
			traded++
			assert.InDelta(t, 0.1, math.Abs(d.Net.Delta), 1e-9, "day %d", d.Snapshot.Day)
			assert.Greater(t, math.Abs(d.NetDeltaPreTrade), 0.1)
		} else {
			assert.LessOrEqual(t, math.Abs(d.Net.Delta), 0.1+1e-12)
		}
	}
	assert.Greater(t, traded, 0)
}

func TestThresholdZeroTargetFlattensOnTrigger(t *testing.T) {
	scn := genScenario(t, stochastic(17, 40))
	res := run(t, Config{
		Liability:  shortCall(1),
		DeltaHedge: spotHedge(),
		Policy:     Policy{Mode: Threshold, DeltaLimit: 0.1},
	}, scn)
	for _, d := range res.Days {
		if d.Triggered {
			assert.InDelta(t, 0, d.Net.Delta, 1e-9)
		} else {
			assert.LessOrEqual(t, math.Abs(d.NetDeltaPreTrade), 0.1)
		}
	}
}

func TestGammaLegNeutralizesGamma(t *testing.T) {
	scn := genScenario(t, func(c *scenario.Config) {
		*c = mustPreset(t, "taper_tantrum_2013", *c)
	})
	gamma := instrument.Instrument{Name: "3m", Kind: instrument.Put, Strike: 95, Maturity: start.AddDate(0, 3, 0), Notional: 1}

	res := run(t, Config{
		Liability:  shortCall(1),
		DeltaHedge: spotHedge(),
		GammaHedge: &gamma,
		Policy:     Policy{Mode: Strict},
	}, scn)

	for _, d := range res.Days {
		assert.InDelta(t, 0, d.Net.Delta, 1e-8)
		assert.InDelta(t, 0, d.Net.Gamma, 1e-10)
	}
}

func TestHedgeCascadeOrder(t *testing.T) {
	scn := genScenario(t, func(c *scenario.Config) {
		*c = mustPreset(t, "inflation_shock_2022", *c)
	})
	gamma := instrument.Instrument{Name: "3m", Kind: instrument.Put, Strike: 95, Maturity: start.AddDate(0, 3, 0), Notional: 1}
	vega := instrument.Instrument{Name: "2y", Kind: instrument.Call, Strike: 105, Maturity: start.AddDate(2, 0, 0), Notional: 1}

	res := run(t, Config{
		Liability:  shortCall(1),
		DeltaHedge: spotHedge(),
		GammaHedge: &gamma,
		VegaHedge:  &vega,
		Policy:     Policy{Mode: Strict, InitialSizing: SizeDelta},
	}, scn)

	for _, d := range res.Days {
		assert.InDelta(t, 0, d.Net.Delta, 1e-8)
		assert.InDelta(t, 0, d.Net.Vega, 1e-8)
		assert.Len(t, d.Legs, 3)
	}

	trades := res.Days[0].Trades
	require.Len(t, trades, 3)
	assert.Equal(t, []Role{GammaLeg, VegaLeg, DeltaLeg}, []Role{trades[0].Leg, trades[1].Leg, trades[2].Leg})
	for _, tr := range trades {
		if tr.Leg != DeltaLeg {
			assert.InDelta(t, DefaultOptionSpreadBps, tr.SpreadBps, 1e-9, "option legs pay the option spread")
		}
	}

	rows := res.Rows()
	assert.Equal(t, trades[0].Quantity, rows[0].GammaTradeQuantity)
	assert.Equal(t, trades[1].Quantity, rows[0].VegaTradeQuantity)
	assert.Equal(t, trades[2].Quantity, rows[0].TradeQuantity)
	for i := 1; i < len(rows); i++ {
		prev, r := rows[i-1], rows[i]
		assert.InDelta(t, r.HedgeQuantity-prev.HedgeQuantity, r.TradeQuantity, 1e-9)
		assert.InDelta(t, r.VegaHedgeQuantity-prev.VegaHedgeQuantity, r.VegaTradeQuantity, 1e-9)
		assert.InDelta(t, r.GammaHedgeQuantity-prev.GammaHedgeQuantity, r.GammaTradeQuantity, 1e-9)
	}
}

func TestLiquidateAtHorizon(t *testing.T) {
	scn := genScenario(t, stochastic(4, 10))
	res := run(t, Config{
		Liability:  shortCall(1),
		DeltaHedge: spotHedge(),
		Policy:     Policy{Mode: Strict, LiquidateAtHorizon: true},
	}, scn)

	last, _ := res.Final()
	assert.Zero(t, last.Position.HedgeQuantity)
	require.Len(t, last.Trades, 1)
	assert.Equal(t, "liquidate", last.Trades[0].Reason)
	assert.InDelta(t, last.Liability.Greeks.Delta, last.Net.Delta, 1e-12)
}

func TestSpreadWidensWithVol(t *testing.T) {
	scn := genScenario(t, func(c *scenario.Config) {
		c.Horizon = 10
		c.Feedback = 4
		c.Shock = scenario.Shock{Mode: scenario.Linear, SpotReturn: -0.3}
	})
	res := run(t, Config{Liability: shortCall(1), DeltaHedge: spotHedge(), Policy: Policy{Mode: Strict}}, scn)

	for _, d := range res.Days {
		want := d.Snapshot.BaseSpreadBps * d.Snapshot.Volatility / scn.VolBase
		assert.InDelta(t, want, d.SpreadBps, 1e-12)
		for _, tr := range d.Trades {
			assert.InDelta(t, math.Abs(tr.Notional)*want/1e4/2, tr.Cost, 1e-12)
		}
	}
	last, _ := res.Final()
	assert.Greater(t, last.SpreadBps, res.Days[0].SpreadBps)
}

func TestHaltsWhenHedgeExpires(t *testing.T) {
	scn := genScenario(t, func(c *scenario.Config) { c.Horizon = 10 })
	expiry := scn.Snapshots[4].Date
	hedge := instrument.Instrument{Name: "weekly", Kind: instrument.Call, Strike: 100, Maturity: expiry, Notional: 1}

	e, err := NewEngine(Config{Liability: shortCall(1), DeltaHedge: hedge, Policy: Policy{Mode: Strict}}, scn, WithLogger(quiet))
	require.NoError(t, err)

	res, err := e.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, market.ErrExpiredInstrument))
	assert.Equal(t, Halted, res.Status)
	assert.Equal(t, 4, res.HaltDay)
	assert.Len(t, res.Days, 4)
	assert.Equal(t, StateHalted, e.State())
	assert.Contains(t, res.HaltReason, "delta_hedge")

	assert.Error(t, e.Step(), "halted runs accept no more steps")
}

func TestRejectsLiabilityMaturingInsideHorizon(t *testing.T) {
	scn := genScenario(t, func(c *scenario.Config) { c.Horizon = 30 })
	liab := shortCall(1)
	liab.Maturity = scn.Snapshots[30].Date

	_, err := NewEngine(Config{Liability: liab, DeltaHedge: spotHedge(), Policy: Policy{Mode: Strict}}, scn)
	assert.ErrorIs(t, err, market.ErrValidation)
}

func TestNewEngineValidation(t *testing.T) {
	scn := genScenario(t, nil)
	put := instrument.Instrument{Kind: instrument.Put, Strike: 100, Maturity: start.AddDate(1, 0, 0), Notional: 1}

	tests := []struct {
		name string
		cfg  Config
	}{
		{"no mode", Config{Liability: shortCall(1), DeltaHedge: spotHedge()}},
		{"strict with limit", Config{Liability: shortCall(1), DeltaHedge: spotHedge(), Policy: Policy{Mode: Strict, DeltaLimit: 1}}},
		{"threshold with cadence", Config{Liability: shortCall(1), DeltaHedge: spotHedge(), Policy: Policy{Mode: Threshold, DeltaLimit: 1, Cadence: 2}}},
		{"cadence with limit", Config{Liability: shortCall(1), DeltaHedge: spotHedge(), Policy: Policy{Mode: Cadence, Cadence: 2, DeltaLimit: 1}}},
		{"cadence zero", Config{Liability: shortCall(1), DeltaHedge: spotHedge(), Policy: Policy{Mode: Cadence}}},
		{"negative limit", Config{Liability: shortCall(1), DeltaHedge: spotHedge(), Policy: Policy{Mode: Threshold, DeltaLimit: -1}}},
		{"unknown target", Config{Liability: shortCall(1), DeltaHedge: spotHedge(), Policy: Policy{Mode: Strict, Target: "edge"}}},
		{"underlying liability", Config{Liability: spotHedge(), DeltaHedge: spotHedge(), Policy: Policy{Mode: Strict}}},
		{"zero hedge notional", Config{Liability: shortCall(1), DeltaHedge: instrument.Instrument{Kind: instrument.Underlying}, Policy: Policy{Mode: Strict}}},
		{"vega sizing with spot", Config{Liability: shortCall(1), DeltaHedge: spotHedge(), Policy: Policy{Mode: Threshold, DeltaLimit: 1, InitialSizing: SizeVega}}},
		{"vega sizing in strict mode", Config{Liability: shortCall(5), DeltaHedge: put, Policy: Policy{Mode: Strict, InitialSizing: SizeVega}}},
		{"band in cadence mode", Config{Liability: shortCall(1), DeltaHedge: spotHedge(), Policy: Policy{Mode: Cadence, Cadence: 2, Target: TargetBand}}},
		{"underlying vega leg", Config{Liability: shortCall(1), DeltaHedge: put, VegaHedge: ptr(spotHedge()), Policy: Policy{Mode: Strict}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := NewEngine(tt.cfg, scn)
			require.Error(t, err)
			assert.ErrorIs(t, err, market.ErrValidation)
			assert.Nil(t, e)
		})
	}
}

func TestCancelledRunKeepsPartialResult(t *testing.T) {
	scn := genScenario(t, nil)
	cfg := Config{Liability: shortCall(1), DeltaHedge: spotHedge(), Policy: Policy{Mode: Strict}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e, err := NewEngine(cfg, scn, WithLogger(quiet))
	require.NoError(t, err)
	res, err := e.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, Cancelled, res.Status)
	assert.Empty(t, res.Days)

	e, err = NewEngine(cfg, scn, WithLogger(quiet))
	require.NoError(t, err)
	require.NoError(t, e.Step())
	require.NoError(t, e.Step())
	res, err = e.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, Cancelled, res.Status)
	assert.Equal(t, 2, res.HaltDay)
	assert.Len(t, res.Days, 2)
	assert.Equal(t, StateCancelled, e.State())
}

func TestRunResumesAfterStep(t *testing.T) {
	scn := genScenario(t, stochastic(6, 8))
	cfg := Config{Liability: shortCall(1), DeltaHedge: spotHedge(), Policy: Policy{Mode: Strict}}

	whole := run(t, cfg, scn)

	e, err := NewEngine(cfg, scn, WithLogger(quiet))
	require.NoError(t, err)
	require.NoError(t, e.Step())
	res, err := e.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Completed, res.Status)
	assert.InDelta(t, whole.Totals.PnL, res.Totals.PnL, 1e-12)

	_, err = e.Run(context.Background())
	assert.Error(t, err)
}

type recordingSink struct {
	runID string
	rows  []Row
	fail  int
}

func (s *recordingSink) RecordDay(runID string, row Row) error {
	if s.fail > 0 && len(s.rows) == s.fail {
		return errors.New("disk full")
	}
	s.runID = runID
	s.rows = append(s.rows, row)
	return nil
}

func TestSinkReceivesEveryRow(t *testing.T) {
	scn := genScenario(t, stochastic(2, 5))
	sink := &recordingSink{}
	e, err := NewEngine(Config{Liability: shortCall(1), DeltaHedge: spotHedge(), Policy: Policy{Mode: Strict}},
		scn, WithLogger(quiet), WithSink(sink), WithRunID("RUN-1"))
	require.NoError(t, err)
	res, err := e.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "RUN-1", sink.runID)
	assert.Equal(t, res.Rows(), sink.rows)
}

func TestSinkFailureHaltsRun(t *testing.T) {
	scn := genScenario(t, stochastic(2, 5))
	sink := &recordingSink{fail: 2}
	e, err := NewEngine(Config{Liability: shortCall(1), DeltaHedge: spotHedge(), Policy: Policy{Mode: Strict}},
		scn, WithLogger(quiet), WithSink(sink))
	require.NoError(t, err)
	res, err := e.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, Halted, res.Status)
	assert.Equal(t, 2, res.HaltDay)
	assert.Len(t, res.Days, 2)
}

func TestRowsAreFlat(t *testing.T) {
	scn := genScenario(t, stochastic(9, 3))
	res := run(t, Config{Liability: shortCall(1), DeltaHedge: spotHedge(), Policy: Policy{Mode: Strict}}, scn)
	rows := res.Rows()
	require.Len(t, rows, 4)
	for i, r := range rows {
		d := res.Days[i]
		assert.Equal(t, i, r.Day)
		assert.Equal(t, d.Snapshot.Spot, r.Spot)
		assert.Equal(t, d.Position.HedgeQuantity, r.HedgeQuantity)
		assert.Equal(t, 1.0, r.HedgeDelta)
		assert.Zero(t, r.HedgeTheta)
		assert.Zero(t, r.HedgeRho)
		assert.Zero(t, r.VegaTradeQuantity)
		assert.Zero(t, r.GammaTradeQuantity)
		assert.Equal(t, d.Traded(), r.Traded)
		assert.Equal(t, d.Cumulative.PnL, r.CumPnL)
	}
}

func TestStateMachineEdges(t *testing.T) {
	assert.True(t, CanTransition(StateInit, StateComputeMarks))
	assert.True(t, CanTransition(StateEvaluateTrigger, StateSkip))
	assert.True(t, CanTransition(StateAdvance, StateDone))
	assert.False(t, CanTransition(StateComputeMarks, StateTrade))
	assert.False(t, CanTransition(StateTrade, StateRecordAttribution))
	assert.False(t, CanTransition(StateDone, StateComputeMarks))
	assert.True(t, StateHalted.Terminal())
	assert.Equal(t, "apply_funding", StateApplyFunding.String())

	scn := genScenario(t, func(c *scenario.Config) { c.Horizon = 1 })
	e, err := NewEngine(Config{Liability: shortCall(1), DeltaHedge: spotHedge(), Policy: Policy{Mode: Strict}}, scn, WithLogger(quiet))
	require.NoError(t, err)
	assert.Equal(t, StateInit, e.State())
	require.NoError(t, e.Step())
	assert.Equal(t, StateAdvance, e.State())
	require.NoError(t, e.Step())
	assert.Equal(t, StateDone, e.State())
	assert.Error(t, e.Step())
}

func mustPreset(t *testing.T, name string, base scenario.Config) scenario.Config {
	t.Helper()
	cfg, err := scenario.FromPreset(name, base)
	require.NoError(t, err)
	return cfg
}

func ptr[T any](v T) *T { return &v }
