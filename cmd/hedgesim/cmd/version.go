package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

const version = "0.3.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  `Display the current version of the hedgesim CLI.`,
	Run: func(cmd *cobra.Command, args []string) {
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "hedgesim version %s\n", version)
		fmt.Fprintln(w, "Daily re-hedging simulator for option liabilities under market stress")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
