// Package config loads a hedging run description from YAML or JSON and
// turns it into the scenario and engine configurations.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/naderih/Market-Risk-Dynamic-Hedging/curve"
	"github.com/naderih/Market-Risk-Dynamic-Hedging/hedge"
	"github.com/naderih/Market-Risk-Dynamic-Hedging/instrument"
	"github.com/naderih/Market-Risk-Dynamic-Hedging/journal"
	"github.com/naderih/Market-Risk-Dynamic-Hedging/market"
	"github.com/naderih/Market-Risk-Dynamic-Hedging/scenario"
)

// Config represents one complete run description.
type Config struct {
	Scenario  ScenarioConfig   `json:"scenario" yaml:"scenario"`
	Liability InstrumentConfig `json:"liability" yaml:"liability"`
	Hedges    HedgesConfig     `json:"hedges" yaml:"hedges"`
	Policy    hedge.Policy     `json:"policy" yaml:"policy"`
	Curve     CurveConfig      `json:"curve" yaml:"curve"`
	Journal   JournalConfig    `json:"journal" yaml:"journal"`
	Batch     BatchConfig      `json:"batch" yaml:"batch"`
}

// ScenarioConfig holds the initial market levels and the shock. When Preset
// is set, the preset's horizon, feedback and shock replace the ones here.
type ScenarioConfig struct {
	Preset    string `json:"preset,omitempty" yaml:"preset,omitempty"`
	Name      string `json:"name,omitempty" yaml:"name,omitempty"`
	StartDate string `json:"start_date" yaml:"start_date"` // YYYY-MM-DD
	Horizon   int    `json:"horizon" yaml:"horizon"`

	Spot          float64 `json:"spot" yaml:"spot"`
	Volatility    float64 `json:"volatility" yaml:"volatility"`
	OvernightRate float64 `json:"overnight_rate" yaml:"overnight_rate"`
	ShortRate     float64 `json:"short_rate" yaml:"short_rate"`
	LongRate      float64 `json:"long_rate" yaml:"long_rate"`
	CreditSpread  float64 `json:"credit_spread" yaml:"credit_spread"`
	BaseSpreadBps float64 `json:"base_spread_bps" yaml:"base_spread_bps"`

	Feedback    float64 `json:"feedback" yaml:"feedback"`
	RallyFactor float64 `json:"rally_factor,omitempty" yaml:"rally_factor,omitempty"`
	VolFloor    float64 `json:"vol_floor,omitempty" yaml:"vol_floor,omitempty"`

	Holidays []string       `json:"holidays,omitempty" yaml:"holidays,omitempty"`
	Shock    scenario.Shock `json:"shock" yaml:"shock"`
}

// InstrumentConfig describes a liability or hedge leg. Maturity is either
// an absolute date or a tenor (e.g. 3m, 1y, 10d, 2w) from the start date.
type InstrumentConfig struct {
	Name     string  `json:"name,omitempty" yaml:"name,omitempty"`
	Kind     string  `json:"kind" yaml:"kind"`
	Strike   float64 `json:"strike,omitempty" yaml:"strike,omitempty"`
	Maturity string  `json:"maturity,omitempty" yaml:"maturity,omitempty"`
	Tenor    string  `json:"tenor,omitempty" yaml:"tenor,omitempty"`
	Notional float64 `json:"notional" yaml:"notional"`
}

// HedgesConfig lists the hedge legs. Delta is required.
type HedgesConfig struct {
	Delta InstrumentConfig  `json:"delta" yaml:"delta"`
	Vega  *InstrumentConfig `json:"vega,omitempty" yaml:"vega,omitempty"`
	Gamma *InstrumentConfig `json:"gamma,omitempty" yaml:"gamma,omitempty"`
}

type CurveConfig struct {
	Interpolation curve.Interpolation `json:"interpolation,omitempty" yaml:"interpolation,omitempty"`
	Tenors        curve.Tenors        `json:"tenors,omitempty" yaml:"tenors,omitempty"`
}

// JournalConfig contains journaling parameters
type JournalConfig struct {
	Type string `json:"type" yaml:"type"` // "none", "csv" or "sqlite"
	// Path is the output directory for csv and the database file for sqlite.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
	// OrgPath, when set, receives an Org-mode report of each single run.
	OrgPath string `json:"org_path,omitempty" yaml:"org_path,omitempty"`
}

// BatchConfig drives Monte Carlo batches.
type BatchConfig struct {
	Paths           int    `json:"paths" yaml:"paths"`
	Workers         int    `json:"workers,omitempty" yaml:"workers,omitempty"`
	Seed            uint64 `json:"seed" yaml:"seed"`
	MetricsTextfile string `json:"metrics_textfile,omitempty" yaml:"metrics_textfile,omitempty"`
	MetricsAddr     string `json:"metrics_addr,omitempty" yaml:"metrics_addr,omitempty"`
}

// LoadFromFile loads configuration from a file. Keys absent from the file
// keep their Default values, except the policy, which must be given whole:
// its trigger fields are mutually exclusive.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	cfg.Policy = hedge.Policy{}

	// Try YAML first, fall back to JSON
	if err := yaml.Unmarshal(data, cfg); err != nil {
		cfg = Default()
		cfg.Policy = hedge.Policy{}
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile saves configuration as YAML for .yaml/.yml paths, JSON otherwise.
func (c *Config) SaveToFile(path string) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks everything that can be checked without generating the
// scenario. Engine-level checks against the generated days happen in
// hedge.NewEngine.
func (c *Config) Validate() error {
	sc, err := c.ScenarioConfig()
	if err != nil {
		return err
	}
	if err := sc.Validate(); err != nil {
		return err
	}
	hc, err := c.HedgeConfig()
	if err != nil {
		return err
	}
	if err := hc.Policy.Validate(); err != nil {
		return err
	}

	switch c.Journal.Type {
	case "", journal.KindNone:
	case journal.KindCSV, journal.KindSQLite:
		if c.Journal.Path == "" {
			return market.Invalid("journal.path", "required for "+c.Journal.Type)
		}
	default:
		return market.Invalid("journal.type", fmt.Sprintf("must be none, csv or sqlite, got %q", c.Journal.Type))
	}

	if c.Batch.Paths < 0 {
		return market.Invalid("batch.paths", "must be >= 0")
	}
	if c.Batch.Workers < 0 {
		return market.Invalid("batch.workers", "must be >= 0")
	}
	return nil
}

// ScenarioConfig resolves the scenario section, applying the preset if any.
func (c *Config) ScenarioConfig() (scenario.Config, error) {
	s := c.Scenario
	start, err := market.ParseDate(s.StartDate)
	if err != nil {
		return scenario.Config{}, fmt.Errorf("scenario.start_date: %w", err)
	}
	holidays := make([]time.Time, 0, len(s.Holidays))
	for _, h := range s.Holidays {
		d, err := market.ParseDate(h)
		if err != nil {
			return scenario.Config{}, fmt.Errorf("scenario.holidays: %w", err)
		}
		holidays = append(holidays, d)
	}

	sc := scenario.Config{
		Name:          s.Name,
		StartDate:     start,
		Horizon:       s.Horizon,
		Spot:          s.Spot,
		Volatility:    s.Volatility,
		OvernightRate: s.OvernightRate,
		ShortRate:     s.ShortRate,
		LongRate:      s.LongRate,
		CreditSpread:  s.CreditSpread,
		BaseSpreadBps: s.BaseSpreadBps,
		Feedback:      s.Feedback,
		RallyFactor:   s.RallyFactor,
		VolFloor:      s.VolFloor,
		Holidays:      holidays,
		Shock:         s.Shock,
	}
	if s.Preset != "" {
		return scenario.FromPreset(s.Preset, sc)
	}
	if sc.Name == "" {
		sc.Name = "custom"
	}
	return sc, nil
}

// HedgeConfig resolves instruments against the scenario start date.
func (c *Config) HedgeConfig() (hedge.Config, error) {
	start, err := market.ParseDate(c.Scenario.StartDate)
	if err != nil {
		return hedge.Config{}, fmt.Errorf("scenario.start_date: %w", err)
	}

	hc := hedge.Config{
		Policy:        c.Policy,
		Tenors:        c.Curve.Tenors,
		Interpolation: c.Curve.Interpolation,
	}
	if hc.Liability, err = c.Liability.Instrument("liability", start); err != nil {
		return hedge.Config{}, err
	}
	if hc.DeltaHedge, err = c.Hedges.Delta.Instrument("hedges.delta", start); err != nil {
		return hedge.Config{}, err
	}
	if c.Hedges.Vega != nil {
		inst, err := c.Hedges.Vega.Instrument("hedges.vega", start)
		if err != nil {
			return hedge.Config{}, err
		}
		hc.VegaHedge = &inst
	}
	if c.Hedges.Gamma != nil {
		inst, err := c.Hedges.Gamma.Instrument("hedges.gamma", start)
		if err != nil {
			return hedge.Config{}, err
		}
		hc.GammaHedge = &inst
	}
	return hc, nil
}

// Instrument builds the instrument; field prefixes error messages.
func (ic InstrumentConfig) Instrument(field string, start time.Time) (instrument.Instrument, error) {
	kind, err := instrument.ParseKind(ic.Kind)
	if err != nil {
		return instrument.Instrument{}, fmt.Errorf("%s: %w", field, err)
	}
	inst := instrument.Instrument{
		Name:     ic.Name,
		Kind:     kind,
		Strike:   ic.Strike,
		Notional: ic.Notional,
	}
	if inst.Name == "" {
		inst.Name = field[strings.LastIndex(field, ".")+1:]
	}
	if kind == instrument.Underlying {
		return inst, nil
	}

	switch {
	case ic.Maturity != "" && ic.Tenor != "":
		return instrument.Instrument{}, market.Invalid(field+".maturity", "set maturity or tenor, not both")
	case ic.Maturity != "":
		if inst.Maturity, err = market.ParseDate(ic.Maturity); err != nil {
			return instrument.Instrument{}, fmt.Errorf("%s.maturity: %w", field, err)
		}
	case ic.Tenor != "":
		if inst.Maturity, err = AddTenor(start, ic.Tenor); err != nil {
			return instrument.Instrument{}, fmt.Errorf("%s.tenor: %w", field, err)
		}
	default:
		return instrument.Instrument{}, market.Invalid(field+".maturity", "options need a maturity or tenor")
	}
	return inst, nil
}

// AddTenor offsets date by a tenor such as 10d, 2w, 3m or 5y.
func AddTenor(date time.Time, tenor string) (time.Time, error) {
	tenor = strings.TrimSpace(strings.ToLower(tenor))
	if len(tenor) < 2 {
		return time.Time{}, market.Invalid("tenor", fmt.Sprintf("malformed %q", tenor))
	}
	n, err := strconv.Atoi(tenor[:len(tenor)-1])
	if err != nil || n <= 0 {
		return time.Time{}, market.Invalid("tenor", fmt.Sprintf("malformed %q", tenor))
	}
	switch tenor[len(tenor)-1] {
	case 'd':
		return date.AddDate(0, 0, n), nil
	case 'w':
		return date.AddDate(0, 0, 7*n), nil
	case 'm':
		return date.AddDate(0, n, 0), nil
	case 'y':
		return date.AddDate(n, 0, 0), nil
	}
	return time.Time{}, market.Invalid("tenor", fmt.Sprintf("unknown unit in %q", tenor))
}

// Default returns a short ATM 1y call on 100 units hedged in the underlying
// on a calm 20-day path, rebalanced when net delta exceeds 5 units.
func Default() *Config {
	s := scenario.DefaultConfig()
	return &Config{
		Scenario: ScenarioConfig{
			Name:          s.Name,
			StartDate:     s.StartDate.Format(market.DateLayout),
			Horizon:       s.Horizon,
			Spot:          s.Spot,
			Volatility:    s.Volatility,
			OvernightRate: s.OvernightRate,
			ShortRate:     s.ShortRate,
			LongRate:      s.LongRate,
			CreditSpread:  s.CreditSpread,
			BaseSpreadBps: s.BaseSpreadBps,
			Feedback:      1,
			RallyFactor:   s.RallyFactor,
			VolFloor:      s.VolFloor,
			Shock:         s.Shock,
		},
		Liability: InstrumentConfig{
			Name:     "liability",
			Kind:     string(instrument.Call),
			Strike:   s.Spot,
			Tenor:    "1y",
			Notional: -100,
		},
		Hedges: HedgesConfig{
			Delta: InstrumentConfig{Name: "spot", Kind: string(instrument.Underlying), Notional: 1},
		},
		Policy: hedge.Policy{
			Mode:            hedge.Threshold,
			DeltaLimit:      5,
			CashFromPremium: true,
		},
		Curve:   CurveConfig{Interpolation: curve.LinearZero, Tenors: curve.DefaultTenors()},
		Journal: JournalConfig{Type: journal.KindNone},
		Batch:   BatchConfig{Paths: 100, Seed: 1},
	}
}
