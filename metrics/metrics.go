// Package metrics exposes batch run statistics in the Prometheus format,
// either scraped over HTTP or written once as a node_exporter textfile.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/naderih/Market-Risk-Dynamic-Hedging/hedge"
	"github.com/naderih/Market-Risk-Dynamic-Hedging/market"
)

const namespace = "hedgesim"

// Recorder owns its own registry so that independent batches (and tests)
// never collide on metric registration.
type Recorder struct {
	reg *prometheus.Registry

	RunsTotal       *prometheus.CounterVec
	HaltsTotal      *prometheus.CounterVec
	DaysSimulated   prometheus.Counter
	TradesTotal     prometheus.Counter
	TransactionCost prometheus.Counter
	Funding         prometheus.Gauge
	PnL             prometheus.Gauge
	RunDuration     prometheus.Histogram
}

func New() *Recorder {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Recorder{
		reg: reg,
		RunsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Finished runs by terminal status",
		}, []string{"status"}),
		HaltsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "halts_total",
			Help:      "Halted or rejected runs by cause",
		}, []string{"cause"}),
		DaysSimulated: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "days_simulated_total",
			Help:      "Simulated days recorded across all runs",
		}),
		TradesTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trades_total",
			Help:      "Hedge leg trades executed across all runs",
		}),
		TransactionCost: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transaction_cost_total",
			Help:      "Spread cost paid across all runs",
		}),
		Funding: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "funding_pnl",
			Help:      "Net funding P&L across all runs",
		}),
		PnL: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pnl",
			Help:      "Net hedged P&L across all runs",
		}),
		RunDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time per run",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
	}
}

// ObserveRun implements hedge.Observer. r may be nil when the run was
// rejected before its first day.
func (m *Recorder) ObserveRun(_ string, r *hedge.Result, err error, elapsed time.Duration) {
	m.RunDuration.Observe(elapsed.Seconds())

	status := string(hedge.Halted)
	if r != nil {
		status = string(r.Status)
	} else if errors.Is(err, market.ErrValidation) {
		status = "rejected"
	}
	m.RunsTotal.WithLabelValues(status).Inc()
	if err != nil {
		m.HaltsTotal.WithLabelValues(cause(err)).Inc()
	}

	if r == nil {
		return
	}
	m.DaysSimulated.Add(float64(len(r.Days)))
	m.TradesTotal.Add(float64(r.Totals.Trades))
	m.TransactionCost.Add(r.Totals.TransactionCost)
	m.Funding.Add(r.Totals.Funding)
	m.PnL.Add(r.Totals.PnL)
}

func cause(err error) string {
	switch {
	case errors.Is(err, market.ErrValidation):
		return "validation"
	case errors.Is(err, market.ErrExpiredInstrument):
		return "expired_instrument"
	case errors.Is(err, market.ErrNumericDegeneracy):
		return "numeric"
	}
	return "other"
}

// Gatherer exposes the registry, e.g. for testutil.
func (m *Recorder) Gatherer() prometheus.Gatherer { return m.reg }

// WriteTextfile writes the current values for node_exporter's textfile collector.
func (m *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.reg)
}

// Handler serves the registry for scraping.
func (m *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

var _ hedge.Observer = (*Recorder)(nil)
