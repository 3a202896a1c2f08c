package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "hedgesim",
	Short: "Daily re-hedging simulator for option liabilities under market stress",
	Long: `Hedgesim replays a short option liability through a stressed market one
business day at a time, re-hedging it under a configurable policy.

It provides tools for:
  - Generating linear, path and stochastic scenarios with vol feedback
  - Historical stress presets (taper tantrum, covid crash, ...)
  - Strict, threshold and cadence rebalancing with a gamma/vega/delta cascade
  - Spread costs that widen with vol and asymmetric funding
  - Daily P&L attribution (delta, gamma, vega, theta, rho, residual)
  - Monte Carlo batches with CSV/SQLite journals and Prometheus metrics`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		log, err := newLogger(logFormat, logLevel)
		if err != nil {
			return err
		}
		slog.SetDefault(log)
		return nil
	},
}

var (
	logLevel  string
	logFormat string
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text, json)")
}

func newLogger(format, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	opts := &slog.HandlerOptions{Level: lvl}

	switch strings.ToLower(format) {
	case "text", "":
		return slog.New(slog.NewTextHandler(os.Stderr, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(os.Stderr, opts)), nil
	}
	return nil, fmt.Errorf("unknown log format %q (supported: text, json)", format)
}
