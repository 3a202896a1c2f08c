package market

import "time"

// Calendar is a weekend plus holiday business-day calendar.
type Calendar struct {
	holidays map[string]struct{}
}

// NewCalendar builds a calendar from holiday dates; weekends are always closed.
func NewCalendar(holidays ...time.Time) *Calendar {
	c := &Calendar{holidays: make(map[string]struct{}, len(holidays))}
	for _, h := range holidays {
		c.holidays[Date(h).Format(DateLayout)] = struct{}{}
	}
	return c
}

// IsBusinessDay reports whether t is neither a weekend nor a holiday.
func (c *Calendar) IsBusinessDay(t time.Time) bool {
	if t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
		return false
	}
	if c == nil {
		return true
	}
	_, ok := c.holidays[Date(t).Format(DateLayout)]
	return !ok
}

// Following rolls t forward to the first business day on or after it.
func (c *Calendar) Following(t time.Time) time.Time {
	t = Date(t)
	for !c.IsBusinessDay(t) {
		t = t.AddDate(0, 0, 1)
	}
	return t
}

// BusinessDays returns n consecutive business days starting at start
// (rolled forward when start is not a business day).
func (c *Calendar) BusinessDays(start time.Time, n int) []time.Time {
	if n <= 0 {
		return nil
	}
	out := make([]time.Time, 0, n)
	d := c.Following(start)
	for len(out) < n {
		out = append(out, d)
		d = c.Following(d.AddDate(0, 0, 1))
	}
	return out
}
