package analytics

import (
	"sort"

	"github.com/lehigh-university-libraries/readstats/internal/models"
)

// Precedence decides which of the overlapping daily series wins when they
// report the same date.
type Precedence int

const (
	// PreferLongest keeps the 365-day value, then 180, then 90.
	PreferLongest Precedence = iota
	// PreferFreshest keeps the 90-day value, then 180, then 365. Useful
	// when the narrow window is refreshed more often than the wide ones.
	PreferFreshest
)

// ParsePrecedence maps "longest" and "freshest" onto a Precedence. Anything
// else is PreferLongest.
func ParsePrecedence(s string) Precedence {
	if s == "freshest" {
		return PreferFreshest
	}
	return PreferLongest
}

func (p Precedence) String() string {
	if p == PreferFreshest {
		return "freshest"
	}
	return "longest"
}

// DefaultTrendDays is used when no window is requested.
const DefaultTrendDays = 90

// TrendSeriesByDays merges the three overlapping daily series, keeps one
// record per date according to p, sorts ascending and returns the last
// days entries. A zero days means DefaultTrendDays; a negative one keeps a
// single entry. Records with unparsable dates are dropped. The result is
// nil when no record survives.
func TrendSeriesByDays(series models.Series, days int, p Precedence) []models.DailyRecord {
	sources := [][]models.DailyRecord{series.Daily365d, series.Daily180d, series.Daily90d}
	if p == PreferFreshest {
		sources = [][]models.DailyRecord{series.Daily90d, series.Daily180d, series.Daily365d}
	}

	seen := make(map[string]bool)
	var merged []models.DailyRecord
	for _, src := range sources {
		for _, d := range src {
			if _, ok := parseDay(d.Date); !ok || seen[d.Date] {
				continue
			}
			seen[d.Date] = true
			merged = append(merged, d)
		}
	}
	if len(merged) == 0 {
		return nil
	}

	sort.SliceStable(merged, func(i, j int) bool { return merged[i].Date < merged[j].Date })

	take := days
	if take == 0 {
		take = DefaultTrendDays
	}
	if take < 1 {
		take = 1
	}
	if len(merged) > take {
		merged = merged[len(merged)-take:]
	}
	return merged
}

// TrendSummary holds the headline numbers of a trend window.
type TrendSummary struct {
	ActiveDays    int   `json:"active_days" yaml:"active_days"`
	LongestDaySec int64 `json:"longest_day_sec" yaml:"longest_day_sec"`
	TotalSec      int64 `json:"total_sec" yaml:"total_sec"`
}

// Summarize totals a trend window.
func Summarize(trend []models.DailyRecord) TrendSummary {
	var s TrendSummary
	for _, d := range trend {
		if d.DurationSec > 0 {
			s.ActiveDays++
		}
		if d.DurationSec > s.LongestDaySec {
			s.LongestDaySec = d.DurationSec
		}
		s.TotalSec += d.DurationSec
	}
	return s
}
