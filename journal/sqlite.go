package journal

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/naderih/Market-Risk-Dynamic-Hedging/hedge"
	"github.com/naderih/Market-Risk-Dynamic-Hedging/market"
)

type SQLite struct {
	db         *sql.DB
	insertDay  string
	selectDays string
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	// sqlite allows one writer; batch workers queue on the single connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("journal schema: %w", err)
	}

	cols := DayColumns()
	return &SQLite{
		db: db,
		insertDay: fmt.Sprintf("INSERT OR REPLACE INTO days (%s) VALUES (%s)",
			strings.Join(cols, ", "), strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")),
		selectDays: fmt.Sprintf("SELECT %s FROM days WHERE run_id = ? ORDER BY day ASC",
			strings.Join(cols[1:], ", ")),
	}, nil
}

func (j *SQLite) RecordDay(runID string, r hedge.Row) error {
	args := []any{runID, r.Day, r.Date.Format(market.DateLayout), r.Traded}
	for _, c := range floatColumns {
		args = append(args, *c.field(&r))
	}
	_, err := j.db.Exec(j.insertDay, args...)
	return err
}

func (j *SQLite) RecordRun(r RunRecord) error {
	_, err := j.db.Exec(`
		INSERT OR REPLACE INTO runs
		(run_id, scenario, status, halt_day, halt_reason, started, start_date, end_date, days,
		 liability, policy, initial_value, final_value, pnl, directional, gamma, vega, theta,
		 rho, residual, transaction_cost, funding, trades)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Scenario, r.Status, r.HaltDay, r.HaltReason, r.Started.UTC(),
		formatDate(r.Start), formatDate(r.End), r.Days,
		r.Liability, r.Policy, r.InitialValue, r.FinalValue, r.PnL, r.Directional,
		r.Gamma, r.Vega, r.Theta, r.Rho, r.Residual, r.TransactionCost, r.Funding, r.Trades,
	)
	return err
}

// GetRun returns the summary stored for runID.
func (j *SQLite) GetRun(runID string) (RunRecord, error) {
	var (
		rec        RunRecord
		start, end string
	)
	row := j.db.QueryRow(`
		SELECT run_id, scenario, status, halt_day, halt_reason, started, start_date, end_date, days,
		       liability, policy, initial_value, final_value, pnl, directional, gamma, vega, theta,
		       rho, residual, transaction_cost, funding, trades
		FROM runs
		WHERE run_id = ?`, runID)

	err := row.Scan(
		&rec.RunID, &rec.Scenario, &rec.Status, &rec.HaltDay, &rec.HaltReason, &rec.Started,
		&start, &end, &rec.Days,
		&rec.Liability, &rec.Policy, &rec.InitialValue, &rec.FinalValue, &rec.PnL, &rec.Directional,
		&rec.Gamma, &rec.Vega, &rec.Theta, &rec.Rho, &rec.Residual, &rec.TransactionCost,
		&rec.Funding, &rec.Trades,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return RunRecord{}, fmt.Errorf("run %q: %w", runID, ErrNotFound)
		}
		return RunRecord{}, err
	}
	if rec.Start, err = parseDate(start); err != nil {
		return RunRecord{}, err
	}
	if rec.End, err = parseDate(end); err != nil {
		return RunRecord{}, err
	}
	return rec, nil
}

// ListRuns returns the IDs of every stored run, oldest first. Run IDs are
// ULIDs so lexical order is creation order.
func (j *SQLite) ListRuns() ([]string, error) {
	rows, err := j.db.Query(`SELECT run_id FROM runs ORDER BY run_id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// ListDays returns the day rows of runID in day order.
func (j *SQLite) ListDays(runID string) ([]hedge.Row, error) {
	rows, err := j.db.Query(j.selectDays, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []hedge.Row
	for rows.Next() {
		var (
			r    hedge.Row
			date string
		)
		dest := []any{&r.Day, &date, &r.Traded}
		for _, c := range floatColumns {
			dest = append(dest, c.field(&r))
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		if r.Date, err = market.ParseDate(date); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (j *SQLite) Close() error {
	return j.db.Close()
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(market.DateLayout)
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return market.ParseDate(s)
}
