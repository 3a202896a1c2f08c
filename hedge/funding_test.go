package hedge

import (
	"math"
	"testing"
	"time"

	"github.com/naderih/Market-Risk-Dynamic-Hedging/instrument"
	"github.com/naderih/Market-Risk-Dynamic-Hedging/market"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFundingAccrual(t *testing.T) {
	tests := []struct {
		name string
		cash float64
		days int
		want float64
	}{
		{"overdrawn pays overnight plus spread", -100, 1, -100 * 0.07 / 365},
		{"long cash earns overnight only", 100, 1, 100 * 0.02 / 365},
		{"weekend accrues three days", 100, 3, 100 * 0.02 * 3 / 365},
		{"flat cash", 0, 1, 0},
		{"same day", -100, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, FundingAccrual(tt.cash, 0.02, 0.05, tt.days), 1e-15)
		})
	}
}

func TestFundingAccrualNegativeRates(t *testing.T) {
	// Positive cash pays when the overnight rate is below zero.
	assert.Less(t, FundingAccrual(1000, -0.005, 0.01, 1), 0.0)
	assert.InDelta(t, -1000*0.005/365, FundingAccrual(-1000, -0.005, 0.01, 1), 1e-15)
}

func TestSpreadCost(t *testing.T) {
	assert.InDelta(t, 0.025, SpreadCost(100, 5), 1e-15)
	assert.InDelta(t, 0.025, SpreadCost(-100, 5), 1e-15)
	assert.Zero(t, SpreadCost(100, 0))

	cost, bps := halfSpreadCost(-1000, 5, 0.4, 0.2)
	assert.InDelta(t, 10, bps, 1e-12)
	assert.InDelta(t, 0.5, cost, 1e-12)
}

func TestPolicyTriggered(t *testing.T) {
	strict := Policy{Mode: Strict}
	threshold := Policy{Mode: Threshold, DeltaLimit: 0.1}
	never := Policy{Mode: Threshold, DeltaLimit: math.Inf(1)}
	cadence := Policy{Mode: Cadence, Cadence: 5}

	assert.True(t, strict.Triggered(3, 0))
	assert.True(t, threshold.Triggered(1, -0.11))
	assert.False(t, threshold.Triggered(1, 0.1), "limit itself is inside the band")
	assert.False(t, never.Triggered(1, 1e9))
	assert.True(t, cadence.Triggered(0, 0))
	assert.True(t, cadence.Triggered(10, 0))
	assert.False(t, cadence.Triggered(7, 5))
}

func TestPolicyDeltaToRemove(t *testing.T) {
	band := Policy{Mode: Threshold, DeltaLimit: 0.1, Target: TargetBand}
	assert.InDelta(t, 0.2, band.DeltaToRemove(0.3), 1e-15)
	assert.InDelta(t, -0.2, band.DeltaToRemove(-0.3), 1e-15)
	assert.Zero(t, band.DeltaToRemove(0.05))

	zero := Policy{Mode: Threshold, DeltaLimit: 0.1, Target: TargetZero}
	assert.Equal(t, 0.3, zero.DeltaToRemove(0.3))

	// Validate rejects band outside threshold mode; sizing still flattens.
	strict := Policy{Mode: Strict, Target: TargetBand}
	assert.Equal(t, 0.3, strict.DeltaToRemove(0.3))
}

func TestPolicyDefaults(t *testing.T) {
	p := Policy{Mode: Strict}
	require.NoError(t, p.Validate())
	p.applyDefaults()
	assert.Equal(t, TargetZero, p.Target)
	assert.Equal(t, SizeNone, p.InitialSizing)
	assert.Equal(t, DefaultOptionSpreadBps, p.OptionSpreadBps)

	bad := Policy{Mode: Strict, InitialCash: math.NaN()}
	assert.ErrorIs(t, bad.Validate(), market.ErrValidation)
	bad = Policy{Mode: Strict, InitialSizing: "gamma"}
	assert.ErrorIs(t, bad.Validate(), market.ErrValidation)
}

func TestPolicyCombinations(t *testing.T) {
	tests := []struct {
		name  string
		p     Policy
		field string
	}{
		{"band with threshold", Policy{Mode: Threshold, DeltaLimit: 1, Target: TargetBand}, ""},
		{"band with strict", Policy{Mode: Strict, Target: TargetBand}, "policy.target"},
		{"band with cadence", Policy{Mode: Cadence, Cadence: 2, Target: TargetBand}, "policy.target"},
		{"vega sizing with threshold", Policy{Mode: Threshold, DeltaLimit: math.Inf(1), InitialSizing: SizeVega}, ""},
		{"vega sizing with strict", Policy{Mode: Strict, InitialSizing: SizeVega}, "policy.initial_sizing"},
		{"vega sizing with cadence", Policy{Mode: Cadence, Cadence: 5, InitialSizing: SizeVega}, "policy.initial_sizing"},
		{"delta sizing with strict", Policy{Mode: Strict, InitialSizing: SizeDelta}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.p.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var ve *market.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestExplainQuadraticResidual(t *testing.T) {
	date := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	call := instrument.Instrument{Kind: instrument.Call, Strike: 100, Maturity: date.AddDate(1, 0, 0), Notional: 1}
	snap := market.Snapshot{Date: date, Spot: 100, Volatility: 0.2, OvernightRate: 0.03, ShortRate: 0.03, LongRate: 0.03}

	v0, err := instrument.PriceAndGreeks(call, snap, nil, date)
	require.NoError(t, err)

	residual := func(dS float64) float64 {
		bumped := snap
		bumped.Spot += dS
		v1, err := instrument.PriceAndGreeks(call, bumped, nil, date)
		require.NoError(t, err)
		a := Explain(v0.Greeks, dS, 0, 0, 0, v1.Price-v0.Price, 0, 0)
		assert.InDelta(t, a.Total, a.Taylor()+a.Residual, 1e-12)
		return math.Abs(a.Residual)
	}

	big, small := residual(4), residual(2)
	assert.Greater(t, big, 0.0)
	assert.Greater(t, big/small, 3.0, "residual is third order in the move")
	assert.Less(t, big, 0.01*math.Abs(v0.Greeks.Delta*4))
}

func TestExplainIdentity(t *testing.T) {
	g := instrument.Greeks{Delta: 0.5, Gamma: 0.02, Vega: 40, Theta: -6, Rho: 50}
	a := Explain(g, 2, 0.01, 1.0/365, 0.3, 1.5, 0.2, -0.05)

	assert.InDelta(t, 1.0, a.Directional, 1e-15)
	assert.InDelta(t, 0.04, a.Gamma, 1e-15)
	assert.InDelta(t, 0.4, a.Vega, 1e-15)
	assert.InDelta(t, -6.0/365, a.Theta, 1e-15)
	assert.Equal(t, 0.3, a.Rho)
	assert.InDelta(t, a.Total, a.Taylor()+a.Residual+a.Funding-a.TransactionCost, 1e-12)
}

func TestRoleText(t *testing.T) {
	b, err := DeltaLeg.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "delta_hedge", string(b))
	assert.Equal(t, "unknown", numLegs.String())
}
