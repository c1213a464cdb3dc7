package fatigue

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

// Day truncates t to its calendar date, as midnight UTC.
// All ledger and snapshot dates are expressed this way.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date [%s]: %w", s, err)
	}
	return t, nil
}

func FormatDay(t time.Time) string {
	return t.Format(DateLayout)
}

// Today is the current calendar date in loc.
func Today(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return Day(now.In(loc))
}

func daysBetween(from, to time.Time) float64 {
	return to.Sub(from).Hours() / 24
}
