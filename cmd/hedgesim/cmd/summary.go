package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/naderih/Market-Risk-Dynamic-Hedging/hedge"
	"github.com/naderih/Market-Risk-Dynamic-Hedging/journal"
	"github.com/naderih/Market-Risk-Dynamic-Hedging/market"
)

// printRun prints a completed or halted run in the same layout as the
// Org report's attribution table.
func printRun(w io.Writer, r journal.RunRecord) {
	fmt.Fprintf(w, "\nRun %s: %s\n", r.RunID, r.Status)
	fmt.Fprintf(w, "  Scenario:  %s (%d days, %s to %s)\n", r.Scenario, r.Days, formatDate(r.Start), formatDate(r.End))
	fmt.Fprintf(w, "  Liability: %s\n", r.Liability)
	fmt.Fprintf(w, "  Policy:    %s\n", r.Policy)
	if r.HaltReason != "" {
		fmt.Fprintf(w, "  Halted:    day %d: %s\n", r.HaltDay, r.HaltReason)
	}

	fmt.Fprintf(w, "\nP&L Attribution\n")
	fmt.Fprintf(w, "  Directional:      %12s\n", journal.Money(r.Directional))
	fmt.Fprintf(w, "  Gamma:            %12s\n", journal.Money(r.Gamma))
	fmt.Fprintf(w, "  Vega:             %12s\n", journal.Money(r.Vega))
	fmt.Fprintf(w, "  Theta:            %12s\n", journal.Money(r.Theta))
	fmt.Fprintf(w, "  Rho:              %12s\n", journal.Money(r.Rho))
	fmt.Fprintf(w, "  Residual:         %12s\n", journal.Money(r.Residual))
	fmt.Fprintf(w, "  Funding:          %12s\n", journal.Money(r.Funding))
	fmt.Fprintf(w, "  Transaction cost: %12s\n", journal.Money(-r.TransactionCost))
	fmt.Fprintf(w, "  Total:            %12s\n", journal.Money(r.PnL))
	fmt.Fprintf(w, "\n  Trades: %d  Initial value: %s  Final value: %s\n",
		r.Trades, journal.Money(r.InitialValue), journal.Money(r.FinalValue))
}

func printOutcomes(w io.Writer, outcomes []hedge.Outcome) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "JOB\tSTATUS\tP&L\tTXN COST\tFUNDING\tTRADES\t")
	for _, o := range outcomes {
		if o.Result == nil {
			fmt.Fprintf(tw, "%s\trejected\t\t\t\t\t\n", o.Job)
			continue
		}
		t := o.Result.Totals
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t\n", o.Job, o.Result.Status,
			journal.Money(t.PnL), journal.Money(t.TransactionCost), journal.Money(t.Funding), t.Trades)
	}
	tw.Flush()
}

func printSummary(w io.Writer, s hedge.Summary) {
	fmt.Fprintf(w, "\nBatch: %d runs, %d completed, %d failed\n", s.Runs, s.Completed, s.Failed)
	if s.Completed == 0 {
		return
	}
	fmt.Fprintf(w, "  Mean P&L:        %12s\n", journal.Money(s.MeanPnL))
	fmt.Fprintf(w, "  Std dev:         %12s\n", journal.Money(s.StdPnL))
	fmt.Fprintf(w, "  5th percentile:  %12s\n", journal.Money(s.P05PnL))
	fmt.Fprintf(w, "  Median:          %12s\n", journal.Money(s.P50PnL))
	fmt.Fprintf(w, "  95th percentile: %12s\n", journal.Money(s.P95PnL))
	fmt.Fprintf(w, "  Worst:           %12s\n", journal.Money(s.WorstPnL))
	fmt.Fprintf(w, "  Mean txn cost:   %12s\n", journal.Money(s.MeanTransactionCost))
	fmt.Fprintf(w, "  Mean funding:    %12s\n", journal.Money(s.MeanFunding))
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(market.DateLayout)
}
