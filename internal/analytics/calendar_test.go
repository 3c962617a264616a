package analytics

import (
	"testing"
	"time"

	"github.com/lehigh-university-libraries/readstats/internal/models"
)

func TestCalendarMonthGrid(t *testing.T) {
	tests := []struct {
		name  string
		month string
		start string
		end   string
		cells int
	}{
		// 2024-02-01 is a Thursday and 2024-02-29 a Thursday
		{name: "leap february", month: "2024-02", start: "2024-01-29", end: "2024-03-03", cells: 35},
		// 2021-03-01 is a Monday
		{name: "month starting monday", month: "2021-03", start: "2021-03-01", end: "2021-04-04", cells: 35},
		// 2021-02-01 is a Monday and 2021-02-28 a Sunday
		{name: "exact four weeks", month: "2021-02", start: "2021-02-01", end: "2021-02-28", cells: 28},
		// 2020-08-01 is a Saturday and 2020-08-31 a Monday
		{name: "six weeks", month: "2020-08", start: "2020-07-27", end: "2020-09-06", cells: 42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			month, ok := ParseMonth(tt.month, time.Now())
			if !ok {
				t.Fatalf("Failed to parse month %s", tt.month)
			}
			cal := CalendarMonth(nil, month, 0, date("2000-01-01"), "")
			if cal.Start != tt.start || cal.End != tt.end {
				t.Errorf("Expected %s..%s, got %s..%s", tt.start, tt.end, cal.Start, cal.End)
			}
			if len(cal.Cells) != tt.cells {
				t.Errorf("Expected %d cells, got %d", tt.cells, len(cal.Cells))
			}
			if len(cal.Cells)%7 != 0 {
				t.Errorf("Cells do not form whole weeks")
			}
			if mondayIndex(date(cal.Cells[0].Date)) != 0 {
				t.Errorf("Grid must start on a Monday, got %s", cal.Cells[0].Date)
			}
			if !cal.NoData {
				t.Error("Expected NoData for an empty input")
			}
		})
	}
}

func TestCalendarMonthIntensity(t *testing.T) {
	days := []models.DailyRecord{
		{Date: "2024-01-30", DurationSec: 600},
		{Date: "2024-02-10", DurationSec: 3600, BooksCount: 2},
		{Date: "2024-02-11", DurationSec: 1800, TopBooks: []models.TopBook{{DurationSec: 1800}}},
		{Date: "2024-02-12", DurationSec: 7200},
		{Date: "bogus", DurationSec: 7200},
	}
	month, _ := ParseMonth("2024-02", time.Now())
	cal := CalendarMonth(days, month, 3600, date("2024-02-11"), "")

	cells := make(map[string]CalendarCell)
	for _, c := range cal.Cells {
		cells[c.Date] = c
	}

	tests := []struct {
		date      string
		intensity float64
		muted     bool
		active    bool
	}{
		{date: "2024-02-10", intensity: 1, active: true},
		{date: "2024-02-11", intensity: 0.5, active: true},
		{date: "2024-02-12", intensity: 1, active: true},
		{date: "2024-02-13", intensity: 0},
		{date: "2024-01-30", intensity: 600.0 / 3600.0, muted: true, active: true},
		{date: "2024-01-29", intensity: 0, muted: true},
	}
	for _, tt := range tests {
		c, ok := cells[tt.date]
		if !ok {
			t.Fatalf("Missing cell %s", tt.date)
		}
		if c.Intensity != tt.intensity {
			t.Errorf("%s: expected intensity %v, got %v", tt.date, tt.intensity, c.Intensity)
		}
		if c.Muted != tt.muted || c.Active != tt.active {
			t.Errorf("%s: unexpected flags %+v", tt.date, c)
		}
	}

	if cal.ReadDays != 3 || cal.DurationSec != 12600 {
		t.Errorf("Expected 3 read days and 12600s, got %d and %d", cal.ReadDays, cal.DurationSec)
	}
	if cal.Selected == nil || cal.Selected.Date != "2024-02-11" {
		t.Errorf("Expected today to be selected, got %+v", cal.Selected)
	}
	if !cells["2024-02-11"].Today {
		t.Error("Expected today flag on 2024-02-11")
	}
	if cells["2024-02-11"].BooksCount != 1 || cells["2024-02-10"].BooksCount != 2 {
		t.Error("Expected books count to fall back to the top books length")
	}
	if cal.Month != "2024-02" || cal.Label != "February 2024" {
		t.Errorf("Unexpected month labels %q %q", cal.Month, cal.Label)
	}
}

func TestCalendarMonthZeroLegend(t *testing.T) {
	month, _ := ParseMonth("2024-02", time.Now())
	cal := CalendarMonth([]models.DailyRecord{{Date: "2024-02-05", DurationSec: 30}}, month, 0, date("2024-03-01"), "2024-02-05")
	for _, c := range cal.Cells {
		if c.Date == "2024-02-05" && c.Intensity != 1 {
			t.Errorf("Expected divisor 1 to cap at 1, got %v", c.Intensity)
		}
	}
	if cal.Selected == nil || cal.Selected.Date != "2024-02-05" {
		t.Errorf("Expected explicit selection, got %+v", cal.Selected)
	}
}

func TestParseMonth(t *testing.T) {
	today := date("2024-05-17")
	got, ok := ParseMonth("", today)
	if !ok || got.Format("2006-01-02") != "2024-05-01" {
		t.Errorf("Expected current month, got %v", got)
	}
	if _, ok := ParseMonth("2024-13", today); ok {
		t.Error("Expected invalid month to fail")
	}
}
