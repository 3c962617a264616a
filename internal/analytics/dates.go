// Package analytics turns per-day, per-session and per-annotation records
// into derived reading analytics. Every function is a pure transform over
// its arguments; "today" is always passed in.
package analytics

import (
	"strings"
	"time"
)

// Days are handled as civil dates: midnight UTC carrying the year, month
// and day, so that adding days is never affected by DST transitions.

func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func parseDay(s string) (time.Time, bool) {
	d, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

func dayString(d time.Time) string {
	return d.Format(time.DateOnly)
}

func addDays(d time.Time, n int) time.Time {
	return d.AddDate(0, 0, n)
}

// mondayIndex maps a weekday onto 0 for Monday through 6 for Sunday.
func mondayIndex(d time.Time) int {
	return (int(d.Weekday()) + 6) % 7
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	time.DateOnly,
}

// ParseTimestamp parses the loose timestamps found on annotations, e.g.
// "2024-01-05 21:14:03". Times without a zone are read in loc.
func ParseTimestamp(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.UTC
	}
	s = strings.Replace(s, " ", "T", 1)
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t.In(loc), true
		}
	}
	return time.Time{}, false
}
