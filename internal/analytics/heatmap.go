package analytics

import (
	"time"

	"github.com/lehigh-university-libraries/readstats/internal/models"
)

const (
	// HeatmapDays is the trailing window of the per-book heatmap.
	HeatmapDays  = 84
	heatmapWeeks = 13
)

// HeatmapCell is one day of the per-book heatmap.
type HeatmapCell struct {
	Date           string  `json:"date" yaml:"date"`
	Week           int     `json:"week" yaml:"week"` // grid column, from 1
	Row            int     `json:"row" yaml:"row"`   // grid row, Monday is 1
	Weekday        int     `json:"weekday" yaml:"weekday"`
	InRange        bool    `json:"in_range" yaml:"in_range"`
	Today          bool    `json:"today,omitempty" yaml:"today,omitempty"`
	DurationSec    int64   `json:"duration_sec" yaml:"duration_sec"`
	Sessions       int     `json:"sessions" yaml:"sessions"`
	Pages          int     `json:"pages" yaml:"pages"`
	Annotations    int     `json:"annotations" yaml:"annotations"`
	Intensity      float64 `json:"intensity" yaml:"intensity"`
	Active         bool    `json:"active,omitempty" yaml:"active,omitempty"`
	AnnotationOnly bool    `json:"annotation_only,omitempty" yaml:"annotation_only,omitempty"`
}

// Heatmap is a 13-week Monday-aligned grid around the trailing window.
type Heatmap struct {
	Start          string        `json:"start" yaml:"start"`
	End            string        `json:"end" yaml:"end"`
	Cells          []HeatmapCell `json:"cells" yaml:"cells"`
	ActiveDays     int           `json:"active_days" yaml:"active_days"`
	TotalDuration  int64         `json:"total_duration_sec" yaml:"total_duration_sec"`
	MaxDurationSec int64         `json:"max_duration_sec" yaml:"max_duration_sec"`
	NoData         bool          `json:"no_data" yaml:"no_data"`
}

type heatSlot struct {
	duration    int64
	sessions    int
	pages       map[int]bool
	pagesCount  int
	annotations int
}

// BookHeatmap buckets one book's activity per day over the 84 days ending
// today. Aggregate rows contribute their page counts, raw session rows the
// number of distinct pages seen. Annotations are counted on the day they
// were made, so a day with notes but no reading still counts as active.
// Intensity is relative to the busiest day inside the window.
func BookHeatmap(rows []models.BookRow, annotations []models.Annotation, today time.Time) Heatmap {
	slots := make(map[string]*heatSlot)
	slot := func(key string) *heatSlot {
		s, ok := slots[key]
		if !ok {
			s = &heatSlot{pages: make(map[int]bool)}
			slots[key] = s
		}
		return s
	}

	for _, row := range rows {
		key := row.Day()
		if key == "" {
			continue
		}
		switch r := row.(type) {
		case models.DailyAggregateRow:
			s := slot(key)
			s.duration += r.DurationSec
			s.sessions += r.Sessions
			s.pagesCount += r.Pages
		case models.RawSessionRow:
			s := slot(key)
			s.duration += r.Duration
			s.sessions++
			if r.Page > 0 {
				s.pages[r.Page] = true
			}
		}
	}

	loc := today.Location()
	for _, a := range annotations {
		t, ok := ParseTimestamp(a.Timestamp(), loc)
		if !ok {
			continue
		}
		slot(dayString(civil(t))).annotations++
	}

	end := civil(today)
	start := addDays(end, -(HeatmapDays - 1))
	gridStart := addDays(start, -mondayIndex(start))

	hm := Heatmap{
		Start:  dayString(start),
		End:    dayString(end),
		Cells:  make([]HeatmapCell, 0, heatmapWeeks*7),
		NoData: len(rows) == 0 && len(annotations) == 0,
	}

	for i := 0; i < heatmapWeeks*7; i++ {
		d := addDays(gridStart, i)
		ds := dayString(d)
		cell := HeatmapCell{
			Date:    ds,
			Week:    i/7 + 1,
			Weekday: mondayIndex(d),
			InRange: !d.Before(start) && !d.After(end),
			Today:   d.Equal(end),
		}
		cell.Row = cell.Weekday + 1
		if s, ok := slots[ds]; ok {
			cell.DurationSec = s.duration
			cell.Sessions = s.sessions
			cell.Annotations = s.annotations
			cell.Pages = len(s.pages)
			if cell.Pages == 0 {
				cell.Pages = s.pagesCount
			}
		}
		cell.Active = cell.DurationSec > 0 || cell.Annotations > 0
		cell.AnnotationOnly = cell.Annotations > 0 && cell.DurationSec <= 0

		if cell.InRange {
			if cell.DurationSec > hm.MaxDurationSec {
				hm.MaxDurationSec = cell.DurationSec
			}
			if cell.Active {
				hm.ActiveDays++
			}
			hm.TotalDuration += cell.DurationSec
		}
		hm.Cells = append(hm.Cells, cell)
	}

	if hm.MaxDurationSec > 0 {
		for i := range hm.Cells {
			if hm.Cells[i].DurationSec <= 0 {
				continue
			}
			v := float64(hm.Cells[i].DurationSec) / float64(hm.MaxDurationSec)
			if v > 1 {
				v = 1
			}
			hm.Cells[i].Intensity = v
		}
	}
	return hm
}
