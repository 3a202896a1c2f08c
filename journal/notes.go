package journal

import (
	"fmt"
	"math"

	"github.com/naderih/Market-Risk-Dynamic-Hedging/hedge"
)

// spreadWideningNote is the peak-to-inception spread ratio worth reporting.
const spreadWideningNote = 1.5

// Observations picks out the stress points of a run from its daily rows:
// spread widening, the first day cash went negative and the worst day.
func Observations(rows []hedge.Row) []string {
	if len(rows) < 2 {
		return nil
	}
	var notes []string

	peak := rows[0]
	for _, r := range rows[1:] {
		if r.SpreadBps > peak.SpreadBps {
			peak = r
		}
	}
	if base := rows[0].SpreadBps; base > 0 && peak.SpreadBps >= spreadWideningNote*base {
		notes = append(notes, fmt.Sprintf("spreads widened to %.1f bps on day %d (%.1fx inception)",
			peak.SpreadBps, peak.Day, peak.SpreadBps/base))
	}

	for _, r := range rows {
		if r.Cash < 0 {
			notes = append(notes, fmt.Sprintf("cash turned negative on day %d (%s), funding at overnight plus credit spread",
				r.Day, Money(r.Cash)))
			break
		}
	}

	worst := rows[1]
	for _, r := range rows[2:] {
		if r.PnLTotal < worst.PnLTotal {
			worst = r
		}
	}
	if worst.PnLTotal < 0 {
		note := fmt.Sprintf("worst day %d: P&L %s", worst.Day, Money(worst.PnLTotal))
		if g := worst.PnLGamma; g < 0 && math.Abs(g) >= math.Abs(worst.PnLDirectional) {
			note += fmt.Sprintf(", gamma %s", Money(g))
		}
		notes = append(notes, note)
	}
	return notes
}
