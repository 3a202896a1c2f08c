package journal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatRunOrg(t *testing.T) {
	t.Parallel()

	rec := RunRecord{
		RunID:           "01HZY3J4K5M6N7P8Q9R0S1T2V3",
		Scenario:        "covid_crash_2020",
		Status:          "completed",
		Started:         time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC),
		Start:           time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		End:             time.Date(2024, 1, 30, 0, 0, 0, 0, time.UTC),
		Days:            21,
		Liability:       "liability call K=100",
		Policy:          "threshold(0.1)",
		PnL:             -1234.565,
		Directional:     10.004,
		TransactionCost: 3.5,
		Funding:         -0.125,
		Trades:          7,
		Notes:           []string{"spreads doubled by day 10"},
	}

	out, err := FormatRunOrg(rec, nil)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "* HEDGE RUN: covid_crash_2020 completed\n"))
	assert.Contains(t, out, ":RUN_ID:      01HZY3J4K5M6N7P8Q9R0S1T2V3")
	assert.Contains(t, out, ":START_DATE:  2024-01-02")
	assert.Contains(t, out, ":END_DATE:    2024-01-30")
	assert.Contains(t, out, ":PNL:         -1234.57")
	assert.Contains(t, out, ":FUNDING:     -0.13")
	assert.Contains(t, out, ":CREATED:     [2024-03-15 Fri 10:30]")
	assert.Contains(t, out, "| Directional      | 10.00 |")
	assert.Contains(t, out, "| Transaction cost | -3.50 |")
	assert.Contains(t, out, "- spreads doubled by day 10")
	assert.NotContains(t, out, "Halted")
	assert.NotContains(t, out, "** Daily")
}

func TestFormatRunOrgWithDays(t *testing.T) {
	t.Parallel()

	res := runInto(t, Discard{}, 9)
	rec := RunRecordOf(res, testConfig())
	rec.HaltReason = "day 4 (2024-01-08): spot: expired"
	rec.HaltDay = 4

	path := filepath.Join(t.TempDir(), "run.org")
	require.NoError(t, WriteRunOrg(path, rec, res.Rows()))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(b)

	assert.Contains(t, out, "Halted on day 4: day 4 (2024-01-08)")
	assert.Contains(t, out, "** Daily")
	assert.Contains(t, out, "| 0 | 2024-01-02 | 100.0000 | 0.2000 | 400.0 |")

	_, daily, _ := strings.Cut(out, "** Daily")
	assert.Equal(t, len(res.Days)+1, strings.Count(daily, "\n| "), "header plus one line per day")
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "1.01", Money(1.005))
	assert.Equal(t, "-2.50", Money(-2.5))
	assert.Equal(t, "0.00", Money(0))
	assert.Equal(t, "25.0", Bps(0.0025))
}
