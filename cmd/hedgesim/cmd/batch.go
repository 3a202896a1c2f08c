package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/naderih/Market-Risk-Dynamic-Hedging/config"
	"github.com/naderih/Market-Risk-Dynamic-Hedging/hedge"
	"github.com/naderih/Market-Risk-Dynamic-Hedging/journal"
	"github.com/naderih/Market-Risk-Dynamic-Hedging/metrics"
	"github.com/naderih/Market-Risk-Dynamic-Hedging/scenario"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Run many independent simulations in parallel",
	Long: `Batch runs either a Monte Carlo sweep over seeds of a stochastic scenario,
or every historical preset once, and prints P&L statistics.

Examples:
  hedgesim batch -c run.yaml --paths 1000 --workers 8
  hedgesim batch --presets --journal sqlite --journal-path runs.db
  hedgesim batch -c run.yaml --metrics-textfile /var/lib/node_exporter/hedgesim.prom`,
	Args: cobra.NoArgs,
	RunE: runBatch,
}

var (
	batchConfigPath  string
	batchPaths       int
	batchWorkers     int
	batchSeed        uint64
	batchPresets     bool
	batchJournalType string
	batchJournalPath string
	batchTextfile    string
	batchMetricsAddr string
)

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringVarP(&batchConfigPath, "config", "c", "", "path to run config (YAML or JSON)")
	batchCmd.Flags().IntVarP(&batchPaths, "paths", "n", 0, "number of Monte Carlo paths (default from config)")
	batchCmd.Flags().IntVarP(&batchWorkers, "workers", "w", 0, "parallel workers (default GOMAXPROCS)")
	batchCmd.Flags().Uint64Var(&batchSeed, "seed", 0, "first seed; path i uses seed+i (default from config)")
	batchCmd.Flags().BoolVar(&batchPresets, "presets", false, "run every historical preset once instead of Monte Carlo")
	batchCmd.Flags().StringVar(&batchJournalType, "journal", "", "journal type override (none, csv, sqlite)")
	batchCmd.Flags().StringVar(&batchJournalPath, "journal-path", "", "journal directory (csv) or database file (sqlite)")
	batchCmd.Flags().StringVar(&batchTextfile, "metrics-textfile", "", "write Prometheus metrics to this file when done")
	batchCmd.Flags().StringVar(&batchMetricsAddr, "metrics-addr", "", "serve /metrics on this address until interrupted")
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(batchConfigPath)
	if err != nil {
		return err
	}
	if batchPaths > 0 {
		cfg.Batch.Paths = batchPaths
	}
	if batchWorkers > 0 {
		cfg.Batch.Workers = batchWorkers
	}
	if cmd.Flags().Changed("seed") {
		cfg.Batch.Seed = batchSeed
	}
	if batchJournalType != "" {
		cfg.Journal.Type = batchJournalType
	}
	if batchJournalPath != "" {
		cfg.Journal.Path = batchJournalPath
	}
	if batchTextfile != "" {
		cfg.Batch.MetricsTextfile = batchTextfile
	}
	if batchMetricsAddr != "" {
		cfg.Batch.MetricsAddr = batchMetricsAddr
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	jobs, err := batchJobs(cfg, batchPresets)
	if err != nil {
		return err
	}

	j, err := journal.Open(cfg.Journal.Type, cfg.Journal.Path)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer j.Close()

	ctx := cmd.Context()
	rec := metrics.New()
	if cfg.Batch.MetricsAddr != "" {
		srv := serveMetrics(cfg.Batch.MetricsAddr, rec)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	started := time.Now()
	slog.Info("batch started", "jobs", len(jobs), "workers", cfg.Batch.Workers)
	outcomes, err := hedge.RunBatch(ctx, jobs, hedge.BatchOptions{
		Workers:  cfg.Batch.Workers,
		Logger:   slog.Default(),
		Observer: rec,
		Sink:     j,
	})
	if err != nil {
		return err
	}

	hc, _ := cfg.HedgeConfig()
	for _, o := range outcomes {
		if o.Result == nil {
			slog.Warn("job rejected", "job", o.Job, "error", o.Err)
			continue
		}
		if err := j.RecordRun(journal.RunRecordOf(o.Result, hc)); err != nil {
			return fmt.Errorf("record run: %w", err)
		}
	}

	summary := hedge.Summarize(outcomes)
	slog.Info("batch finished", "completed", summary.Completed, "failed", summary.Failed,
		"elapsed", time.Since(started).Round(time.Millisecond))

	w := cmd.OutOrStdout()
	if batchPresets {
		printOutcomes(w, outcomes)
	}
	printSummary(w, summary)

	if cfg.Batch.MetricsTextfile != "" {
		if err := rec.WriteTextfile(cfg.Batch.MetricsTextfile); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	if cfg.Batch.MetricsAddr != "" {
		slog.Info("serving metrics until interrupted", "addr", cfg.Batch.MetricsAddr)
		<-ctx.Done()
	}
	return nil
}

func batchJobs(cfg *config.Config, presets bool) ([]hedge.Job, error) {
	base, err := cfg.ScenarioConfig()
	if err != nil {
		return nil, err
	}
	hc, err := cfg.HedgeConfig()
	if err != nil {
		return nil, err
	}
	if !presets {
		return hedge.MonteCarloJobs(base, hc, cfg.Batch.Paths, cfg.Batch.Seed)
	}

	jobs := make([]hedge.Job, 0, len(scenario.Presets))
	for _, name := range scenario.PresetNames() {
		sc, err := scenario.FromPreset(name, base)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, hedge.Job{Name: name, ScenarioConfig: sc, Config: hc})
	}
	return jobs, nil
}

func serveMetrics(addr string, rec *metrics.Recorder) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", rec.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server", "addr", addr, "error", err)
		}
	}()
	return srv
}
