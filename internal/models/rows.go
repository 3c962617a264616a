package models

import (
	"strings"
	"time"
)

// BookRow is one per-book activity row feeding the per-book heatmap. It is
// either a DailyAggregateRow or a RawSessionRow; the shape is decided once
// when the row is decoded.
type BookRow interface {
	// Day is the calendar day (YYYY-MM-DD) the row belongs to, or "".
	Day() string
	isBookRow()
}

// DailyAggregateRow is a row that has already been rolled up per day.
type DailyAggregateRow struct {
	Date        string `json:"date"`
	DurationSec int64  `json:"duration_sec"`
	Sessions    int    `json:"sessions"`
	Pages       int    `json:"pages"`
}

func (r DailyAggregateRow) Day() string { return r.Date }
func (DailyAggregateRow) isBookRow()    {}

// Record converts the row back into a daily record.
func (r DailyAggregateRow) Record() DailyRecord {
	return DailyRecord{Date: r.Date, DurationSec: r.DurationSec, Sessions: r.Sessions, Pages: r.Pages}
}

// RawSessionRow is a single reading session. Page repeats across rows of
// the same day are expected.
type RawSessionRow struct {
	Date      string `json:"date"`
	StartTime int64  `json:"start_time"`
	Duration  int64  `json:"duration"`
	Page      int    `json:"page"`
}

func (r RawSessionRow) Day() string { return r.Date }
func (RawSessionRow) isBookRow()    {}

// Session converts the row back into a session of book ref.
func (r RawSessionRow) Session(ref string) Session {
	return Session{BookRef: ref, Date: r.Date, StartTime: r.StartTime, Duration: r.Duration, Page: r.Page}
}

// BookRowFromRecord detects the row shape: a non-null duration_sec marks a
// daily aggregate, anything else is a raw session. A raw session without a
// date takes the calendar day of its start_time in loc; with a nil loc the
// date is left for the caller to fill in.
func BookRowFromRecord(r Record, loc *time.Location) BookRow {
	if r.Has("duration_sec") {
		return DailyAggregateRow{
			Date:        strings.TrimSpace(r.String("date")),
			DurationSec: r.Int64("duration_sec"),
			Sessions:    r.Int("sessions"),
			Pages:       r.Int("pages"),
		}
	}
	row := RawSessionRow{
		Date:      strings.TrimSpace(r.String("date")),
		StartTime: r.Int64("start_time"),
		Duration:  r.Int64("duration"),
		Page:      r.Int("page"),
	}
	if row.Date == "" && row.StartTime > 0 && loc != nil {
		row.Date = dayOf(row.StartTime, loc)
	}
	return row
}

// BookRowsFromRecords decodes a whole timeline.
func BookRowsFromRecords(records []Record, loc *time.Location) []BookRow {
	rows := make([]BookRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, BookRowFromRecord(r, loc))
	}
	return rows
}

// Row converts a session into a heatmap row.
func (s Session) Row(loc *time.Location) BookRow {
	row := RawSessionRow{Date: s.Date, StartTime: s.StartTime, Duration: s.Duration, Page: s.Page}
	if row.Date == "" && row.StartTime > 0 {
		row.Date = dayOf(row.StartTime, loc)
	}
	return row
}

// Row converts a daily record into a heatmap row.
func (d DailyRecord) Row() BookRow {
	return DailyAggregateRow{Date: d.Date, DurationSec: d.DurationSec, Sessions: d.Sessions, Pages: d.Pages}
}

func dayOf(epoch int64, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return time.Unix(epoch, 0).In(loc).Format(time.DateOnly)
}
