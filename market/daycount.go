package market

import "time"

// DateLayout is the calendar date format used in configs and reports.
const DateLayout = "2006-01-02"

// DaysPerYear is the ACT/365 fixed denominator.
const DaysPerYear = 365.0

// Date truncates t to midnight UTC of its calendar day.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string into a UTC date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, Invalid("date", "must be YYYY-MM-DD: "+s)
	}
	return t, nil
}

// DaysBetween is the signed number of calendar days from start to end.
func DaysBetween(start, end time.Time) int {
	return int(Date(end).Sub(Date(start)).Hours() / 24)
}

// YearFraction is the ACT/365 fixed year fraction from start to end.
// Negative when end precedes start.
func YearFraction(start, end time.Time) float64 {
	return float64(DaysBetween(start, end)) / DaysPerYear
}
