package analytics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lehigh-university-libraries/readstats/internal/models"
)

// Pace compares the two halves of a trend window.
type Pace string

const (
	PaceUp     Pace = "up"
	PaceDown   Pace = "down"
	PaceSteady Pace = "steady"
)

// Insight is a short narrative summary of a trend window.
type Insight struct {
	Pace  Pace     `json:"pace" yaml:"pace"`
	Title string   `json:"title" yaml:"title"`
	Body  string   `json:"body" yaml:"body"`
	Chips []string `json:"chips" yaml:"chips"`
}

// InsightInput is what an insight is derived from. Empty Weekdays or Hours
// fall back to the dashboard's own series.
type InsightInput struct {
	Dashboard models.Dashboard
	TrendDays int
	Trend     []models.DailyRecord
	Weekdays  []models.WeekdayPoint
	Hours     []models.HourlyBucket
}

// TrendPace reports up when the second half of trend exceeds the first by
// more than 15%, down when it falls more than 15% short, and steady
// otherwise or when the first half is empty.
func TrendPace(trend []models.DailyRecord) Pace {
	half := len(trend) / 2
	var first, second int64
	for i, d := range trend {
		if i < half {
			first += d.DurationSec
		} else {
			second += d.DurationSec
		}
	}
	switch {
	case first > 0 && float64(second) > float64(first)*1.15:
		return PaceUp
	case first > 0 && float64(second) < float64(first)*0.85:
		return PaceDown
	default:
		return PaceSteady
	}
}

// Insights builds the reader insight for a trend window.
func Insights(in InsightInput) Insight {
	weekdays := in.Weekdays
	if len(weekdays) == 0 {
		weekdays = in.Dashboard.Series.WeekdayAvg
	}
	hours := in.Hours
	if len(hours) == 0 {
		hours = in.Dashboard.Series.HourlyActivity
	}
	days := in.TrendDays
	if days == 0 {
		days = DefaultTrendDays
	}

	pace := TrendPace(in.Trend)
	insight := Insight{Pace: pace}
	switch pace {
	case PaceUp:
		insight.Title = "Momentum is building"
	case PaceDown:
		insight.Title = "A slower reading week"
	default:
		insight.Title = "Your reading pace is steady"
	}

	body := []string{
		fmt.Sprintf("You logged %s in the selected %d-day range.", FormatDuration(Summarize(in.Trend).TotalSec), days),
	}
	if w, ok := topWeekday(weekdays); ok {
		body = append(body, fmt.Sprintf("%s is your strongest reading day.", w.Weekday))
	} else {
		body = append(body, "No weekday pattern yet.")
	}
	if h, ok := topHour(hours); ok {
		body = append(body, fmt.Sprintf("Most reading happens around %02d:00.", h.Hour))
	} else {
		body = append(body, "Read a few sessions to unlock hourly patterns.")
	}
	if cur := in.Dashboard.Summary.CurrentStreakDays; cur > 0 {
		body = append(body, fmt.Sprintf("Current streak: %d days.", cur))
	} else {
		body = append(body, "No current streak yet.")
	}
	insight.Body = strings.Join(body, " ")

	insight.Chips = []string{
		"7d: " + FormatDuration(in.Dashboard.KPIs.Last7DaysTimeSec),
		"30d avg: " + FormatDuration(in.Dashboard.KPIs.AvgDailyTime30dSec),
		fmt.Sprintf("Best streak: %dd", in.Dashboard.Summary.BestStreakDays),
	}
	return insight
}

// topWeekday returns the weekday with the most reading time; the earliest
// wins ties. A pattern needs some reading time.
func topWeekday(points []models.WeekdayPoint) (models.WeekdayPoint, bool) {
	sorted := append([]models.WeekdayPoint(nil), points...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].DurationSec > sorted[j].DurationSec })
	if len(sorted) == 0 || sorted[0].DurationSec <= 0 {
		return models.WeekdayPoint{}, false
	}
	return sorted[0], true
}

func topHour(buckets []models.HourlyBucket) (models.HourlyBucket, bool) {
	sorted := append([]models.HourlyBucket(nil), buckets...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].DurationSec > sorted[j].DurationSec })
	if len(sorted) == 0 || sorted[0].DurationSec <= 0 {
		return models.HourlyBucket{}, false
	}
	return sorted[0], true
}
