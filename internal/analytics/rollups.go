package analytics

import (
	"sort"

	"github.com/lehigh-university-libraries/readstats/internal/models"
)

// WeekdayNames lists the display order of weekday rollups.
var WeekdayNames = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// MonthlyFromDaily groups daily records by year-month, summing duration
// and counting days with reading time. Months are returned ascending.
func MonthlyFromDaily(daily []models.DailyRecord) []models.MonthlyPoint {
	byMonth := make(map[string]*models.MonthlyPoint)
	for _, d := range daily {
		day, ok := parseDay(d.Date)
		if !ok {
			continue
		}
		ym := day.Format("2006-01")
		slot, ok := byMonth[ym]
		if !ok {
			slot = &models.MonthlyPoint{Month: ym}
			byMonth[ym] = slot
		}
		slot.DurationSec += d.DurationSec
		if d.DurationSec > 0 {
			slot.DaysRead++
		}
	}

	out := make([]models.MonthlyPoint, 0, len(byMonth))
	for _, slot := range byMonth {
		out = append(out, *slot)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

// WeekdayFromDaily averages reading time per weekday, Monday first. The
// mean is floored and taken over every record that falls on the weekday,
// zero-duration records included; a weekday without records yields 0.
func WeekdayFromDaily(daily []models.DailyRecord) []models.WeekdayPoint {
	var total [7]int64
	var count [7]int64
	for _, d := range daily {
		day, ok := parseDay(d.Date)
		if !ok {
			continue
		}
		i := mondayIndex(day)
		total[i] += d.DurationSec
		count[i]++
	}

	out := make([]models.WeekdayPoint, 7)
	for i := range out {
		out[i].Weekday = WeekdayNames[i]
		if count[i] > 0 {
			out[i].DurationSec = floorDiv(total[i], count[i])
		}
	}
	return out
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
