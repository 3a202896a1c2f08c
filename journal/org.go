package journal

import (
	"bytes"
	"os"
	"text/template"
	"time"

	"github.com/shopspring/decimal"

	"github.com/naderih/Market-Risk-Dynamic-Hedging/hedge"
	"github.com/naderih/Market-Risk-Dynamic-Hedging/market"
)

// Money renders an amount rounded half away from zero to cents.
func Money(x float64) string {
	return decimal.NewFromFloat(x).StringFixed(2)
}

// Bps renders a rate as basis points.
func Bps(rate float64) string {
	return decimal.NewFromFloat(rate).Shift(4).StringFixed(1)
}

var runOrgFuncs = template.FuncMap{
	"money": Money,
	"bps":   Bps,
	"date": func(t time.Time) string {
		if t.IsZero() {
			return "(date?)"
		}
		return t.Format(market.DateLayout)
	},
	"stamp": func(t time.Time) string {
		if t.IsZero() {
			t = time.Now()
		}
		return t.UTC().Format("2006-01-02 Mon 15:04")
	},
	"num": func(x float64) string {
		return decimal.NewFromFloat(x).StringFixed(4)
	},
}

var runOrg = template.Must(template.New("run").Funcs(runOrgFuncs).Parse(RunOrgTemplate))

type orgView struct {
	RunRecord
	Rows []hedge.Row
}

// FormatRunOrg renders a run summary, and the daily table when rows are
// given, as an Org-mode block.
func FormatRunOrg(run RunRecord, rows []hedge.Row) (string, error) {
	var buf bytes.Buffer
	if err := runOrg.Execute(&buf, orgView{RunRecord: run, Rows: rows}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// WriteRunOrg writes FormatRunOrg's output to path.
func WriteRunOrg(path string, run RunRecord, rows []hedge.Row) error {
	s, err := FormatRunOrg(run, rows)
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(s), 0o644)
}

const RunOrgTemplate = `* HEDGE RUN: {{if .Scenario}}{{.Scenario}}{{else}}(scenario?){{end}} {{.Status}}
:PROPERTIES:
:RUN_ID:      {{if .RunID}}{{.RunID}}{{else}}(run-id?){{end}}
:SCENARIO:    {{.Scenario}}
:STATUS:      {{.Status}}
:START_DATE:  {{date .Start}}
:END_DATE:    {{date .End}}
:DAYS:        {{.Days}}
:LIABILITY:   {{.Liability}}
:POLICY:      {{.Policy}}
:PNL:         {{money .PnL}}
:TXN_COST:    {{money .TransactionCost}}
:FUNDING:     {{money .Funding}}
:TRADES:      {{.Trades}}
:CREATED:     [{{stamp .Started}}]
:END:
{{- if .HaltReason }}

Halted on day {{.HaltDay}}: {{.HaltReason}}
{{- end }}

** P&L Attribution
| Component        |      Amount |
|------------------+-------------|
| Directional      | {{money .Directional}} |
| Gamma            | {{money .Gamma}} |
| Vega             | {{money .Vega}} |
| Theta            | {{money .Theta}} |
| Rho              | {{money .Rho}} |
| Residual         | {{money .Residual}} |
| Funding          | {{money .Funding}} |
| Transaction cost | -{{money .TransactionCost}} |
|------------------+-------------|
| Total            | {{money .PnL}} |

- Initial value: *{{money .InitialValue}}*
- Final value:   *{{money .FinalValue}}*
{{- if .Rows }}

** Daily
| Day | Date | Spot | Vol | ON (bps) | Net delta | Hedge qty | Traded | Cost | Funding | P&L | Cum P&L |
|-----+------+------+-----+----------+-----------+-----------+--------+------+---------+-----+---------|
{{- range .Rows }}
| {{.Day}} | {{date .Date}} | {{num .Spot}} | {{num .Volatility}} | {{bps .OvernightRate}} | {{num .NetDelta}} | {{num .HedgeQuantity}} | {{if .Traded}}x{{end}} | {{money .TradeCost}} | {{money .Funding}} | {{money .PnLTotal}} | {{money .CumPnL}} |
{{- end }}
{{- end }}

{{- if .Notes }}

** Observations
{{- range .Notes }}
- {{.}}
{{- end }}
{{- end }}
`
