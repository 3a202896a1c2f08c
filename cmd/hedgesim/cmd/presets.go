package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/naderih/Market-Risk-Dynamic-Hedging/journal"
	"github.com/naderih/Market-Risk-Dynamic-Hedging/scenario"
)

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List the historical stress presets",
	Long: `List the built-in historical stress scenarios with their total moves.

Use one with:
  hedgesim run --preset covid_crash_2020`,
	Args: cobra.NoArgs,
	RunE: runPresets,
}

func init() {
	rootCmd.AddCommand(presetsCmd)
}

func runPresets(cmd *cobra.Command, args []string) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tDAYS\tFEEDBACK\tSPOT\tON (bp)\t2Y (bp)\t10Y (bp)\tCREDIT (bp)")
	for _, name := range scenario.PresetNames() {
		p := scenario.Presets[name]
		s := p.Shock
		fmt.Fprintf(tw, "%s\t%d\t%.1f\t%+.1f%%\t%s\t%s\t%s\t%s\n",
			p.Name, p.Horizon, p.Feedback, s.SpotReturn*100,
			journal.Bps(s.OvernightChange), journal.Bps(s.ShortRateChange),
			journal.Bps(s.LongRateChange), journal.Bps(s.CreditSpreadChange))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout())
	for _, name := range scenario.PresetNames() {
		fmt.Fprintf(cmd.OutOrStdout(), "  %-22s %s\n", name, scenario.Presets[name].Description)
	}
	return nil
}
