package analytics

import (
	"math"
	"time"

	"github.com/lehigh-university-libraries/readstats/internal/models"
)

// CalendarCell is one day of the month grid.
type CalendarCell struct {
	Date        string           `json:"date" yaml:"date"`
	Day         int              `json:"day" yaml:"day"`
	DurationSec int64            `json:"duration_sec" yaml:"duration_sec"`
	BooksCount  int              `json:"books_count" yaml:"books_count"`
	Intensity   float64          `json:"intensity" yaml:"intensity"`
	Muted       bool             `json:"muted,omitempty" yaml:"muted,omitempty"`
	Today       bool             `json:"today,omitempty" yaml:"today,omitempty"`
	Selected    bool             `json:"selected,omitempty" yaml:"selected,omitempty"`
	Active      bool             `json:"active,omitempty" yaml:"active,omitempty"`
	TopBooks    []models.TopBook `json:"top_books,omitempty" yaml:"top_books,omitempty"`
}

// Calendar is a Monday-first month grid padded to whole weeks with days of
// the neighbouring months.
type Calendar struct {
	Month       string         `json:"month" yaml:"month"` // YYYY-MM
	Label       string         `json:"label" yaml:"label"`
	Start       string         `json:"start" yaml:"start"`
	End         string         `json:"end" yaml:"end"`
	Cells       []CalendarCell `json:"cells" yaml:"cells"`
	ReadDays    int            `json:"read_days" yaml:"read_days"`
	DurationSec int64          `json:"duration_sec" yaml:"duration_sec"`
	Selected    *CalendarCell  `json:"selected,omitempty" yaml:"selected,omitempty"`
	NoData      bool           `json:"no_data" yaml:"no_data"`
}

// CalendarMonth lays out the month containing month. Intensity is
// duration over max90, capped at 1; a zero max90 divides by 1. A later
// record for the same date replaces an earlier one. When selected is
// empty, today is selected if it has reading time.
func CalendarMonth(days []models.DailyRecord, month time.Time, max90 int64, today time.Time, selected string) Calendar {
	byDate := make(map[string]models.DailyRecord, len(days))
	for _, d := range days {
		if _, ok := parseDay(d.Date); !ok {
			continue
		}
		byDate[d.Date] = d
	}

	first := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := addDays(first.AddDate(0, 1, 0), -1)
	start := addDays(first, -mondayIndex(first))
	end := addDays(last, 6-mondayIndex(last))
	todayStr := dayString(civil(today))

	divisor := float64(max90)
	if max90 <= 0 {
		divisor = 1
	}

	if selected == "" && byDate[todayStr].DurationSec > 0 {
		selected = todayStr
	}

	cal := Calendar{
		Month:  first.Format("2006-01"),
		Label:  first.Format("January 2006"),
		Start:  dayString(start),
		End:    dayString(end),
		NoData: len(byDate) == 0,
	}

	for cur := start; !cur.After(end); cur = addDays(cur, 1) {
		ds := dayString(cur)
		info := byDate[ds]
		cell := CalendarCell{
			Date:        ds,
			Day:         cur.Day(),
			DurationSec: info.DurationSec,
			BooksCount:  info.BooksCount,
			Intensity:   math.Min(1, math.Max(0, float64(info.DurationSec)/divisor)),
			Muted:       cur.Month() != first.Month(),
			Today:       ds == todayStr,
			Selected:    ds == selected,
			Active:      info.DurationSec > 0,
			TopBooks:    info.TopBooks,
		}
		if cell.BooksCount == 0 {
			cell.BooksCount = len(info.TopBooks)
		}
		if !cell.Muted && cell.Active {
			cal.ReadDays++
			cal.DurationSec += cell.DurationSec
		}
		cal.Cells = append(cal.Cells, cell)
	}

	for i := range cal.Cells {
		if cal.Cells[i].Selected {
			c := cal.Cells[i]
			cal.Selected = &c
			break
		}
	}
	return cal
}

// ParseMonth reads a YYYY-MM month. An empty string means the month of
// today.
func ParseMonth(s string, today time.Time) (time.Time, bool) {
	if s == "" {
		y, m, _ := today.Date()
		return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC), true
	}
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
