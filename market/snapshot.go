package market

import (
	"fmt"
	"math"
	"time"
)

// Snapshot is the market state for one simulated day. Snapshots are
// produced once by the scenario generator and never modified.
//
// The current bid-ask spread is deliberately absent: consumers derive it
// from BaseSpreadBps and the day's volatility.
type Snapshot struct {
	Day  int       `json:"day" yaml:"day"`
	Date time.Time `json:"date" yaml:"date"`

	Spot       float64 `json:"spot" yaml:"spot"`
	Volatility float64 `json:"volatility" yaml:"volatility"`

	OvernightRate float64 `json:"overnight_rate" yaml:"overnight_rate"`
	ShortRate     float64 `json:"short_rate" yaml:"short_rate"`
	LongRate      float64 `json:"long_rate" yaml:"long_rate"`

	CreditSpread  float64 `json:"credit_spread" yaml:"credit_spread"`
	BaseSpreadBps float64 `json:"base_spread_bps" yaml:"base_spread_bps"`
}

// Validate checks the field ranges of a single snapshot.
func (s Snapshot) Validate() error {
	switch {
	case s.Day < 0:
		return Invalid("day", "must be >= 0")
	case s.Date.IsZero():
		return Invalid("date", "is required")
	case !(s.Spot > 0) || math.IsInf(s.Spot, 0):
		return Invalid("spot", "must be positive")
	case !(s.Volatility > 0) || math.IsInf(s.Volatility, 0):
		return Invalid("volatility", "must be positive")
	case !(s.CreditSpread >= 0):
		return Invalid("credit_spread", "must be >= 0")
	case !(s.BaseSpreadBps >= 0):
		return Invalid("base_spread_bps", "must be >= 0")
	}
	for field, v := range map[string]float64{
		"overnight_rate":  s.OvernightRate,
		"short_rate":      s.ShortRate,
		"long_rate":       s.LongRate,
		"credit_spread":   s.CreditSpread,
		"base_spread_bps": s.BaseSpreadBps,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Invalid(field, "must be finite")
		}
	}
	return nil
}

func (s Snapshot) String() string {
	return fmt.Sprintf("day=%d %s S=%.4f vol=%.4f on=%.4f short=%.4f long=%.4f cs=%.4f",
		s.Day, s.Date.Format(DateLayout), s.Spot, s.Volatility,
		s.OvernightRate, s.ShortRate, s.LongRate, s.CreditSpread)
}
