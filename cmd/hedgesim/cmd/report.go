package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/naderih/Market-Risk-Dynamic-Hedging/hedge"
	"github.com/naderih/Market-Risk-Dynamic-Hedging/journal"
)

var reportCmd = &cobra.Command{
	Use:   "report [run-id]",
	Short: "Render a journaled run as Org-mode",
	Long: `Read runs back from a SQLite journal.

Without a run ID, list the stored runs. With one, print the run summary and
its daily table as an Org-mode block.

Examples:
  hedgesim report --db runs.db
  hedgesim report --db runs.db 01HZY3J4K5M6N7P8Q9R0S1T2V3`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReport,
}

var (
	reportDBPath string
	reportNoDays bool
)

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVarP(&reportDBPath, "db", "d", "./hedgesim.sqlite", "path to SQLite journal DB")
	reportCmd.Flags().BoolVar(&reportNoDays, "no-days", false, "omit the daily table")
}

func runReport(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(reportDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	w := cmd.OutOrStdout()
	if len(args) == 0 {
		ids, err := j.ListRuns()
		if err != nil {
			return fmt.Errorf("list runs: %w", err)
		}
		for _, id := range ids {
			rec, err := j.GetRun(id)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%s  %-22s %-9s %4d days  P&L %s\n",
				rec.RunID, rec.Scenario, rec.Status, rec.Days, journal.Money(rec.PnL))
		}
		return nil
	}

	rec, err := j.GetRun(args[0])
	if err != nil {
		return fmt.Errorf("get run: %w", err)
	}
	var rows []hedge.Row
	if !reportNoDays {
		if rows, err = j.ListDays(rec.RunID); err != nil {
			return fmt.Errorf("list days: %w", err)
		}
		rec.Notes = journal.Observations(rows)
	}
	out, err := journal.FormatRunOrg(rec, rows)
	if err != nil {
		return err
	}
	fmt.Fprint(w, out)
	return nil
}
