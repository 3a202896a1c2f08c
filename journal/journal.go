// Package journal persists hedging runs: one row per simulated day and one
// summary record per run.
package journal

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/naderih/Market-Risk-Dynamic-Hedging/hedge"
	"github.com/naderih/Market-Risk-Dynamic-Hedging/market"
)

var ErrNotFound = errors.New("not found")

// RunRecord summarizes one run.
type RunRecord struct {
	RunID      string
	Scenario   string
	Status     string
	HaltDay    int
	HaltReason string
	Started    time.Time

	Start time.Time
	End   time.Time
	Days  int

	Liability string
	Policy    string

	InitialValue float64
	FinalValue   float64

	PnL             float64
	Directional     float64
	Gamma           float64
	Vega            float64
	Theta           float64
	Rho             float64
	Residual        float64
	TransactionCost float64
	Funding         float64
	Trades          int

	// Notes are not stored; report derives them again from the days.
	Notes []string
}

// RunRecordOf builds the summary of r as run under cfg.
func RunRecordOf(r *hedge.Result, cfg hedge.Config) RunRecord {
	rec := RunRecord{
		RunID:        r.RunID,
		Scenario:     r.Scenario,
		Status:       string(r.Status),
		HaltDay:      r.HaltDay,
		HaltReason:   r.HaltReason,
		Started:      r.Started,
		Days:         len(r.Days),
		Liability:    cfg.Liability.String(),
		Policy:       cfg.Policy.String(),
		InitialValue: r.InitialValue,
		FinalValue:   r.InitialValue,

		PnL:             r.Totals.PnL,
		Directional:     r.Totals.Directional,
		Gamma:           r.Totals.Gamma,
		Vega:            r.Totals.Vega,
		Theta:           r.Totals.Theta,
		Rho:             r.Totals.Rho,
		Residual:        r.Totals.Residual,
		TransactionCost: r.Totals.TransactionCost,
		Funding:         r.Totals.Funding,
		Trades:          r.Totals.Trades,
	}
	if len(r.Days) > 0 {
		rec.Start = r.Days[0].Snapshot.Date
	}
	if last, ok := r.Final(); ok {
		rec.End = last.Snapshot.Date
		rec.FinalValue = last.Value
	}
	rec.Notes = Observations(r.Rows())
	return rec
}

// Journal records days as they happen and the run summary at the end.
// Implementations are safe for concurrent use by batch workers.
type Journal interface {
	RecordDay(runID string, row hedge.Row) error
	RecordRun(RunRecord) error
	Close() error
}

var _ hedge.Sink = Journal(nil)

// Kinds accepted by Open.
const (
	KindNone   = "none"
	KindCSV    = "csv"
	KindSQLite = "sqlite"
)

// Open returns the journal of the given kind. For csv, path is a directory
// that receives days.csv and runs.csv; for sqlite it is the database file.
func Open(kind, path string) (Journal, error) {
	switch kind {
	case "", KindNone:
		return Discard{}, nil
	case KindCSV:
		return NewCSV(filepath.Join(path, "days.csv"), filepath.Join(path, "runs.csv"))
	case KindSQLite:
		return NewSQLite(path)
	}
	return nil, market.Invalid("journal.kind", fmt.Sprintf("unknown %q", kind))
}

// Discard drops everything.
type Discard struct{}

func (Discard) RecordDay(string, hedge.Row) error { return nil }
func (Discard) RecordRun(RunRecord) error         { return nil }
func (Discard) Close() error                      { return nil }
