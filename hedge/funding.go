package hedge

import (
	"math"

	"github.com/naderih/Market-Risk-Dynamic-Hedging/market"
	"github.com/naderih/Market-Risk-Dynamic-Hedging/scenario"
)

// FundingAccrual is the simple ACT/365 interest on a cash balance over
// days calendar days. Positive cash earns the overnight rate; negative cash
// pays overnight plus the credit spread. The result is signed: negative is
// a cost.
func FundingAccrual(cash, overnight, creditSpread float64, days int) float64 {
	rate := overnight
	if cash < 0 {
		rate += creditSpread
	}
	return cash * rate * float64(days) / market.DaysPerYear
}

// SpreadCost is the half-spread paid on a trade of the given notional.
func SpreadCost(notional, spreadBps float64) float64 {
	return math.Abs(notional) * spreadBps / 1e4 / 2
}

// halfSpreadCost widens baseBps with the day's vol before charging it.
func halfSpreadCost(notional, baseBps, vol, volBase float64) (cost, spreadBps float64) {
	spreadBps = scenario.WidenedSpreadBps(baseBps, vol, volBase)
	return SpreadCost(notional, spreadBps), spreadBps
}
