package analytics

import (
	"sort"
	"time"

	"github.com/lehigh-university-libraries/readstats/internal/models"
)

// maxStreakWalk bounds the backward walk of the current streak.
const maxStreakWalk = 500

// Streaks are runs of consecutive days with reading time.
type Streaks struct {
	Best    int `json:"best" yaml:"best"`
	Current int `json:"current" yaml:"current"`
}

// ComputeStreaks finds the longest run of consecutive active days and the
// run ending today, or yesterday when today has no activity yet. A day
// extends the run only when it falls exactly one day after the previous
// active entry, so a repeated date starts over at 1.
func ComputeStreaks(daily []models.DailyRecord, today time.Time) Streaks {
	active := make([]time.Time, 0, len(daily))
	set := make(map[time.Time]bool, len(daily))
	for _, d := range daily {
		if d.DurationSec <= 0 {
			continue
		}
		day, ok := parseDay(d.Date)
		if !ok {
			continue
		}
		active = append(active, day)
		set[day] = true
	}
	sort.Slice(active, func(i, j int) bool { return active[i].Before(active[j]) })

	var s Streaks
	run := 0
	var prev time.Time
	for i, day := range active {
		switch {
		case i == 0:
			run = 1
		case day.Equal(addDays(prev, 1)):
			run++
		default:
			run = 1
		}
		prev = day
		if run > s.Best {
			s.Best = run
		}
	}

	expected := civil(today)
	if !set[expected] {
		expected = addDays(expected, -1)
	}
	for i := 0; i < maxStreakWalk && set[expected]; i++ {
		s.Current++
		expected = addDays(expected, -1)
	}
	return s
}
