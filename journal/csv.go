package journal

import (
	"encoding/csv"
	"errors"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/naderih/Market-Risk-Dynamic-Hedging/hedge"
	"github.com/naderih/Market-Risk-Dynamic-Hedging/market"
)

var runColumns = []string{
	"run_id", "scenario", "status", "halt_day", "halt_reason", "started", "start_date", "end_date", "days",
	"liability", "policy", "initial_value", "final_value", "pnl", "directional", "gamma", "vega", "theta",
	"rho", "residual", "transaction_cost", "funding", "trades",
}

type CSV struct {
	mu     sync.Mutex
	days   *csv.Writer
	runs   *csv.Writer
	df, rf *os.File
}

func NewCSV(daysPath, runsPath string) (*CSV, error) {
	df, err := os.Create(daysPath)
	if err != nil {
		return nil, err
	}
	rf, err := os.Create(runsPath)
	if err != nil {
		_ = df.Close()
		return nil, err
	}

	j := &CSV{days: csv.NewWriter(df), runs: csv.NewWriter(rf), df: df, rf: rf}
	if err := j.write(j.days, DayColumns()); err != nil {
		_ = j.Close()
		return nil, err
	}
	if err := j.write(j.runs, runColumns); err != nil {
		_ = j.Close()
		return nil, err
	}
	return j, nil
}

func (j *CSV) RecordDay(runID string, r hedge.Row) error {
	rec := []string{runID, strconv.Itoa(r.Day), r.Date.Format(market.DateLayout), strconv.FormatBool(r.Traded)}
	for _, c := range floatColumns {
		rec = append(rec, f(*c.field(&r)))
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	return j.write(j.days, rec)
}

func (j *CSV) RecordRun(r RunRecord) error {
	rec := []string{
		r.RunID,
		r.Scenario,
		r.Status,
		strconv.Itoa(r.HaltDay),
		r.HaltReason,
		r.Started.UTC().Format(time.RFC3339),
		formatDate(r.Start),
		formatDate(r.End),
		strconv.Itoa(r.Days),
		r.Liability,
		r.Policy,
		f(r.InitialValue),
		f(r.FinalValue),
		f(r.PnL),
		f(r.Directional),
		f(r.Gamma),
		f(r.Vega),
		f(r.Theta),
		f(r.Rho),
		f(r.Residual),
		f(r.TransactionCost),
		f(r.Funding),
		strconv.Itoa(r.Trades),
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	return j.write(j.runs, rec)
}

func (j *CSV) write(w *csv.Writer, rec []string) error {
	if err := w.Write(rec); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func (j *CSV) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.days.Flush()
	j.runs.Flush()
	return errors.Join(j.days.Error(), j.runs.Error(), j.df.Close(), j.rf.Close())
}

// f keeps full precision; Greeks and per-day funding are often below 1e-6.
func f(x float64) string {
	return strconv.FormatFloat(x, 'g', -1, 64)
}
