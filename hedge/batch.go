package hedge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/naderih/Market-Risk-Dynamic-Hedging/market"
	"github.com/naderih/Market-Risk-Dynamic-Hedging/scenario"
)

// Job is one independent run: a scenario (given directly, or generated from
// ScenarioConfig) and a hedging configuration.
type Job struct {
	Name           string
	Scenario       *scenario.Scenario
	ScenarioConfig scenario.Config
	Config         Config
}

// Outcome pairs a job with its result. Err is set for halted or invalid runs;
// the batch keeps going.
type Outcome struct {
	Job     string
	Result  *Result
	Err     error
	Elapsed time.Duration
}

// Observer is told about every finished run, from the worker goroutine.
type Observer interface {
	ObserveRun(job string, r *Result, err error, elapsed time.Duration)
}

// BatchOptions tune RunBatch. Observer and Sink are shared by all workers
// and must be safe for concurrent use.
type BatchOptions struct {
	Workers  int // <= 0 means GOMAXPROCS
	Logger   *slog.Logger
	Observer Observer
	Sink     Sink
}

// RunBatch runs jobs in parallel. Runs share nothing, so each owns its own
// engine and position. Outcomes are returned in job order. Only context
// cancellation aborts the batch; per-run failures land in Outcome.Err.
func RunBatch(ctx context.Context, jobs []Job, opts BatchOptions) ([]Outcome, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	out := make([]Outcome, len(jobs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, job := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			res, err := runJob(ctx, job, log, opts.Sink)
			elapsed := time.Since(start)

			out[i] = Outcome{Job: job.Name, Result: res, Err: err, Elapsed: elapsed}
			if opts.Observer != nil {
				opts.Observer.ObserveRun(job.Name, res, err, elapsed)
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return out, fmt.Errorf("batch: %w", err)
	}
	return out, nil
}

func runJob(ctx context.Context, job Job, log *slog.Logger, sink Sink) (*Result, error) {
	scn := job.Scenario
	if scn == nil {
		var err error
		scn, err = scenario.Generate(job.ScenarioConfig)
		if err != nil {
			return nil, fmt.Errorf("%s: scenario: %w", job.Name, err)
		}
	}
	opts := []Option{WithLogger(log.With("job", job.Name))}
	if sink != nil {
		opts = append(opts, WithSink(sink))
	}
	e, err := NewEngine(job.Config, scn, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", job.Name, err)
	}
	return e.Run(ctx)
}

// MonteCarloJobs builds n jobs from a stochastic base scenario with seeds
// seed, seed+1, ... so every path is reproducible on its own.
func MonteCarloJobs(base scenario.Config, cfg Config, n int, seed uint64) ([]Job, error) {
	if n <= 0 {
		return nil, market.Invalid("batch.paths", "must be positive")
	}
	if base.Shock.Mode != scenario.Stochastic {
		return nil, market.Invalid("scenario.shock.mode", "monte carlo needs a stochastic shock")
	}
	jobs := make([]Job, n)
	for i := range jobs {
		sc := base
		sc.Shock.Seed = seed + uint64(i)
		sc.Name = fmt.Sprintf("%s#%d", base.Name, sc.Shock.Seed)
		jobs[i] = Job{Name: sc.Name, ScenarioConfig: sc, Config: cfg}
	}
	return jobs, nil
}

// Summary aggregates completed runs.
type Summary struct {
	Runs      int `json:"runs"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`

	MeanPnL  float64 `json:"mean_pnl"`
	StdPnL   float64 `json:"std_pnl"`
	P05PnL   float64 `json:"p05_pnl"`
	P50PnL   float64 `json:"p50_pnl"`
	P95PnL   float64 `json:"p95_pnl"`
	WorstPnL float64 `json:"worst_pnl"`

	MeanTransactionCost float64 `json:"mean_transaction_cost"`
	MeanFunding         float64 `json:"mean_funding"`
}

// Summarize computes P&L statistics over completed outcomes.
func Summarize(outcomes []Outcome) Summary {
	s := Summary{Runs: len(outcomes)}
	var pnls []float64
	for _, o := range outcomes {
		if o.Err != nil || o.Result == nil || o.Result.Status != Completed {
			s.Failed++
			continue
		}
		t := o.Result.Totals
		pnls = append(pnls, t.PnL)
		s.MeanTransactionCost += t.TransactionCost
		s.MeanFunding += t.Funding
	}
	s.Completed = len(pnls)
	if s.Completed == 0 {
		return s
	}

	n := float64(s.Completed)
	s.MeanTransactionCost /= n
	s.MeanFunding /= n
	for _, p := range pnls {
		s.MeanPnL += p
	}
	s.MeanPnL /= n
	if s.Completed > 1 {
		var ss float64
		for _, p := range pnls {
			ss += (p - s.MeanPnL) * (p - s.MeanPnL)
		}
		s.StdPnL = math.Sqrt(ss / (n - 1))
	}

	sort.Float64s(pnls)
	s.WorstPnL = pnls[0]
	s.P05PnL = quantile(pnls, 0.05)
	s.P50PnL = quantile(pnls, 0.50)
	s.P95PnL = quantile(pnls, 0.95)
	return s
}

// quantile interpolates linearly between order statistics of sorted xs.
func quantile(xs []float64, q float64) float64 {
	if len(xs) == 1 {
		return xs[0]
	}
	pos := q * float64(len(xs)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	w := pos - float64(lo)
	return xs[lo]*(1-w) + xs[hi]*w
}
