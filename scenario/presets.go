package scenario

import (
	"fmt"
	"sort"

	"github.com/naderih/Market-Risk-Dynamic-Hedging/market"
)

// Preset is a pre-calibrated historical stress expressed as linear totals.
type Preset struct {
	Name        string
	Description string
	Horizon     int
	Feedback    float64
	Shock       Shock
}

// Presets is the historical library keyed by name.
var Presets = map[string]Preset{
	"taper_tantrum_2013": {
		Name:        "taper_tantrum_2013",
		Description: "Bear steepener: the front end stays anchored while the long end sells off.",
		Horizon:     20,
		Feedback:    1.5,
		Shock: Shock{
			Mode:               Linear,
			SpotReturn:         -0.05,
			ShortRateChange:    0.0025,
			LongRateChange:     0.0100,
			CreditSpreadChange: 0.0050,
		},
	},
	"trump_reflation_2016": {
		Name:        "trump_reflation_2016",
		Description: "Bullish bear steepener: equities rally, long duration is dumped, spreads tighten.",
		Horizon:     20,
		Feedback:    0,
		Shock: Shock{
			Mode:               Linear,
			SpotReturn:         0.10,
			ShortRateChange:    0.0020,
			LongRateChange:     0.0060,
			CreditSpreadChange: -0.0010,
		},
	},
	"repo_crisis_2019": {
		Name:        "repo_crisis_2019",
		Description: "Plumbing break: overnight funding spikes while the term curve barely moves.",
		Horizon:     5,
		Feedback:    2.0,
		Shock: Shock{
			Mode:               Linear,
			SpotReturn:         -0.02,
			OvernightChange:    0.0500,
			CreditSpreadChange: 0.0300,
		},
	},
	"covid_crash_2020": {
		Name:        "covid_crash_2020",
		Description: "Deflationary bust: dash for cash, equities crash, rates cut to zero, credit blows out.",
		Horizon:     20,
		Feedback:    4.0,
		Shock: Shock{
			Mode:               Linear,
			SpotReturn:         -0.30,
			OvernightChange:    -0.0150,
			ShortRateChange:    -0.0120,
			LongRateChange:     -0.0100,
			CreditSpreadChange: 0.0400,
		},
	},
	"inflation_shock_2022": {
		Name:        "inflation_shock_2022",
		Description: "Bear flattener: hikes lift the front end faster than the long end, growth sells off.",
		Horizon:     20,
		Feedback:    1.5,
		Shock: Shock{
			Mode:               Linear,
			SpotReturn:         -0.15,
			OvernightChange:    0.0150,
			ShortRateChange:    0.0150,
			LongRateChange:     0.0050,
			CreditSpreadChange: 0.0050,
		},
	},
	"liberation_day_2025": {
		Name:        "liberation_day_2025",
		Description: "Tariff stagflation: inflation and rates up, growth down, credit spreads blow out.",
		Horizon:     10,
		Feedback:    2.0,
		Shock: Shock{
			Mode:               Linear,
			SpotReturn:         -0.15,
			OvernightChange:    0.0025,
			LongRateChange:     0.0040,
			CreditSpreadChange: 0.0200,
		},
	},
}

// PresetNames returns the library keys in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(Presets))
	for n := range Presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// FromPreset overlays a preset's horizon, feedback and shock on base, which
// supplies the initial levels and start date.
func FromPreset(name string, base Config) (Config, error) {
	p, ok := Presets[name]
	if !ok {
		return Config{}, market.Invalid("scenario.preset", fmt.Sprintf("unknown preset %q", name))
	}
	base.Name = p.Name
	base.Horizon = p.Horizon
	base.Feedback = p.Feedback
	base.Shock = p.Shock
	return base, nil
}
