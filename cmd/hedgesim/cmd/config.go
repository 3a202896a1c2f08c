package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/naderih/Market-Risk-Dynamic-Hedging/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Generate or validate configuration files",
	Long: `Manage run configuration files.

Subcommands:
  init     - Generate a default configuration file
  validate - Validate an existing configuration file

Examples:
  hedgesim config init -o run.yaml
  hedgesim config validate -f run.yaml`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate a default configuration file",
	RunE:  runConfigInit,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	RunE:  runConfigValidate,
}

var (
	configInitOutput   string
	configValidatePath string
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configValidateCmd)

	configInitCmd.Flags().StringVarP(&configInitOutput, "output", "o", "hedgesim.yaml", "output config file path")
	configValidateCmd.Flags().StringVarP(&configValidatePath, "file", "f", "", "path to config file (required)")
	configValidateCmd.MarkFlagRequired("file")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if err := cfg.SaveToFile(configInitOutput); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "✓ Created default configuration: %s\n", configInitOutput)
	fmt.Fprintln(w, "\nEdit the file and run with:")
	fmt.Fprintf(w, "  hedgesim run -c %s\n", configInitOutput)
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(configValidatePath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	sc, _ := cfg.ScenarioConfig()
	hc, _ := cfg.HedgeConfig()

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "✓ Configuration valid: %s\n", configValidatePath)
	fmt.Fprintf(w, "  Scenario:  %s (%d days from %s, %s shock)\n",
		sc.Name, sc.Horizon, cfg.Scenario.StartDate, sc.Shock.Mode)
	fmt.Fprintf(w, "  Liability: %s\n", hc.Liability)
	fmt.Fprintf(w, "  Hedge:     %s\n", hc.DeltaHedge)
	fmt.Fprintf(w, "  Policy:    %s\n", hc.Policy)
	fmt.Fprintf(w, "  Journal:   %s\n", cfg.Journal.Type)
	return nil
}
