package models

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// Record is one raw key/value record as received from a source. Any field
// may be missing, null or of an unexpected type; the accessors below never
// fail and fall back to zero values instead.
type Record map[string]any

// String returns the field as a string. Falsy values (nil, false, 0, "")
// yield "".
func (r Record) String(key string) string {
	return looseString(r[key])
}

// Int returns the field as an int, or 0.
func (r Record) Int(key string) int {
	return int(r.Float(key))
}

// Int64 returns the field as an int64, or 0.
func (r Record) Int64(key string) int64 {
	return int64(r.Float(key))
}

// Float returns the field as a float64, or 0. Non-finite values become 0.
func (r Record) Float(key string) float64 {
	f, err := cast.ToFloat64E(r[key])
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// Bool returns the field as a bool using truthiness for non-bool values.
func (r Record) Bool(key string) bool {
	switch v := r[key].(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		b, err := cast.ToBoolE(v)
		if err != nil {
			return v != ""
		}
		return b
	default:
		return r.Float(key) != 0
	}
}

// Has reports whether the field is present with a non-null value.
func (r Record) Has(key string) bool {
	v, ok := r[key]
	return ok && v != nil
}

// Sub returns a nested object field, or an empty record.
func (r Record) Sub(key string) Record {
	if m, ok := asRecord(r[key]); ok {
		return m
	}
	return Record{}
}

// List returns a nested collection field as records. Arrays and objects
// whose values are records are both accepted.
func (r Record) List(key string) []Record {
	return ToRecords(r[key])
}

func looseString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if !t {
			return ""
		}
		return "true"
	case float64:
		if t == 0 || math.IsNaN(t) {
			return ""
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		s, err := cast.ToStringE(v)
		if err != nil || s == "0" {
			return ""
		}
		return s
	}
}

// ToRecords turns a decoded collection into records. Arrays and ordered
// objects keep their order. A plain map has none to keep, so it is read
// with integer-like keys first in numeric order, then the remaining keys in
// lexical order. Entries that are not objects are skipped.
func ToRecords(v any) []Record {
	switch t := v.(type) {
	case []any:
		out := make([]Record, 0, len(t))
		for _, item := range t {
			if m, ok := asRecord(item); ok {
				out = append(out, m)
			}
		}
		return out
	case *object:
		out := make([]Record, 0, t.Len())
		for pair := t.Oldest(); pair != nil; pair = pair.Next() {
			if m, ok := asRecord(pair.Value); ok {
				out = append(out, m)
			}
		}
		return out
	case []map[string]any:
		out := make([]Record, 0, len(t))
		for _, m := range t {
			if m != nil {
				out = append(out, Record(m))
			}
		}
		return out
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sortObjectKeys(keys)
		out := make([]Record, 0, len(keys))
		for _, k := range keys {
			if m, ok := asRecord(t[k]); ok {
				out = append(out, m)
			}
		}
		return out
	default:
		return nil
	}
}

func sortObjectKeys(keys []string) {
	sort.SliceStable(keys, func(i, j int) bool {
		ni, iok := arrayIndex(keys[i])
		nj, jok := arrayIndex(keys[j])
		switch {
		case iok && jok:
			return ni < nj
		case iok != jok:
			return iok
		default:
			return keys[i] < keys[j]
		}
	})
}

func arrayIndex(k string) (uint64, bool) {
	if k == "" || (len(k) > 1 && k[0] == '0') {
		return 0, false
	}
	n, err := strconv.ParseUint(k, 10, 32)
	return n, err == nil
}

// CatalogBookFromRecord decodes a catalog record.
func CatalogBookFromRecord(r Record) CatalogBook {
	return CatalogBook{
		ID:             r.String("id"),
		Title:          r.String("title"),
		Authors:        r.String("authors"),
		MD5:            r.String("md5"),
		Pages:          r.Int("pages"),
		Percent:        r.Float("percent"),
		Highlights:     r.Int("highlights"),
		Notes:          r.Int("notes"),
		LastOpenTS:     r.Int64("last_open_ts"),
		Status:         r.String("status"),
		CoverAvailable: r.Bool("cover_available"),
	}
}

// StatsBookFromRecord decodes a statistics record.
func StatsBookFromRecord(r Record) StatsBook {
	return StatsBook{
		ID:            r.String("id"),
		Title:         r.String("title"),
		Authors:       r.String("authors"),
		MD5:           r.String("md5"),
		Pages:         r.Int("pages"),
		TotalReadTime: r.Int64("total_read_time"),
	}
}

// AnnotationFromRecord decodes an annotation record.
func AnnotationFromRecord(r Record) Annotation {
	return Annotation{
		BookRef:         strings.TrimSpace(r.String("book_ref")),
		BookID:          strings.TrimSpace(r.String("book_id")),
		BookMD5:         r.String("book_md5"),
		BookTitle:       r.String("book_title"),
		BookAuthors:     r.String("book_authors"),
		Text:            r.String("text"),
		Note:            r.String("note"),
		Chapter:         r.String("chapter"),
		PageNo:          r.String("pageno"),
		Page:            r.String("page"),
		Pos0:            r.String("pos0"),
		Pos1:            r.String("pos1"),
		Datetime:        r.String("datetime"),
		DatetimeUpdated: r.String("datetime_updated"),
		Color:           r.String("color"),
		Drawer:          r.String("drawer"),
	}
}

// TopBookFromRecord decodes a ranked book entry.
func TopBookFromRecord(r Record) TopBook {
	return TopBook{
		BookIdentity: BookIdentity{
			BookRef:  strings.TrimSpace(r.String("book_ref")),
			BookID:   strings.TrimSpace(r.String("book_id")),
			MD5:      r.String("md5"),
			Title:    r.String("title"),
			Authors:  r.String("authors"),
			CoverURL: r.String("cover_url"),
		},
		DurationSec: r.Int64("duration_sec"),
		Pages:       r.Int("pages"),
	}
}

// DailyRecordFromRecord decodes a per-day record.
func DailyRecordFromRecord(r Record) DailyRecord {
	d := DailyRecord{
		Date:        strings.TrimSpace(r.String("date")),
		DurationSec: r.Int64("duration_sec"),
		Sessions:    r.Int("sessions"),
		BooksCount:  r.Int("books_count"),
		Pages:       r.Int("pages"),
	}
	for _, tb := range r.List("top_books") {
		d.TopBooks = append(d.TopBooks, TopBookFromRecord(tb))
	}
	return d
}

// SessionFromRecord decodes a reading session.
func SessionFromRecord(r Record) Session {
	return Session{
		BookRef:    strings.TrimSpace(r.String("book_ref")),
		Date:       strings.TrimSpace(r.String("date")),
		StartTime:  r.Int64("start_time"),
		Duration:   r.Int64("duration"),
		Page:       r.Int("page"),
		TotalPages: r.Int("total_pages"),
	}
}

// DashboardFromRecord decodes the analytics payload.
func DashboardFromRecord(r Record) Dashboard {
	s := r.Sub("summary")
	k := r.Sub("kpis")
	series := r.Sub("series")
	cal := r.Sub("calendar")
	top := r.Sub("top_books")

	return Dashboard{
		Summary: Summary{
			TotalBooks:        s.Int("total_books"),
			ReadingBooks:      s.Int("reading_books"),
			FinishedBooks:     s.Int("finished_books"),
			TotalReadTimeSec:  s.Int64("total_read_time_sec"),
			TotalReadPages:    s.Int("total_read_pages"),
			TotalHighlights:   s.Int("total_highlights"),
			TotalNotes:        s.Int("total_notes"),
			ActiveDays90d:     s.Int("active_days_90d"),
			BestStreakDays:    s.Int("best_streak_days"),
			CurrentStreakDays: s.Int("current_streak_days"),
			LastReadDate:      s.String("last_read_date"),
		},
		KPIs: KPIs{
			Last7DaysTimeSec:   k.Int64("last_7_days_time_sec"),
			Last30DaysTimeSec:  k.Int64("last_30_days_time_sec"),
			AvgDailyTime30dSec: k.Int64("avg_daily_time_30d_sec"),
			LongestDaySec:      k.Int64("longest_day_sec"),
			BooksTouched30d:    k.Int("books_touched_30d"),
			BooksTouched90d:    k.Int("books_touched_90d"),
			BooksTouched180d:   k.Int("books_touched_180d"),
			BooksTouched365d:   k.Int("books_touched_365d"),
		},
		Series: Series{
			Daily90d:       dailyList(series, "daily_90d"),
			Daily180d:      dailyList(series, "daily_180d"),
			Daily365d:      dailyList(series, "daily_365d"),
			Monthly12m:     monthlyList(series, "monthly_12m"),
			WeekdayAvg:     weekdayList(series, "weekday_avg"),
			HourlyActivity: hourlyList(series, "hourly_activity"),
			Hourly30d:      hourlyList(series, "hourly_activity_30d"),
			Hourly90d:      hourlyList(series, "hourly_activity_90d"),
			Hourly180d:     hourlyList(series, "hourly_activity_180d"),
			Hourly365d:     hourlyList(series, "hourly_activity_365d"),
		},
		Calendar: CalendarData{
			Days:   dailyList(cal, "days"),
			Legend: CalendarLegend{MaxDailySec90d: cal.Sub("legend").Int64("max_daily_sec_90d")},
		},
		TopBooks: TopBookLists{
			ByTime:      topList(top, "by_time"),
			ByPages:     topList(top, "by_pages"),
			ByTime30d:   topList(top, "by_time_30d"),
			ByTime90d:   topList(top, "by_time_90d"),
			ByTime180d:  topList(top, "by_time_180d"),
			ByTime365d:  topList(top, "by_time_365d"),
			ByPages30d:  topList(top, "by_pages_30d"),
			ByPages90d:  topList(top, "by_pages_90d"),
			ByPages180d: topList(top, "by_pages_180d"),
			ByPages365d: topList(top, "by_pages_365d"),
		},
	}
}

func dailyList(r Record, key string) []DailyRecord {
	var out []DailyRecord
	for _, item := range r.List(key) {
		out = append(out, DailyRecordFromRecord(item))
	}
	return out
}

func monthlyList(r Record, key string) []MonthlyPoint {
	var out []MonthlyPoint
	for _, item := range r.List(key) {
		out = append(out, MonthlyPoint{
			Month:       item.String("month"),
			DurationSec: item.Int64("duration_sec"),
			DaysRead:    item.Int("days_read"),
		})
	}
	return out
}

func weekdayList(r Record, key string) []WeekdayPoint {
	var out []WeekdayPoint
	for _, item := range r.List(key) {
		out = append(out, WeekdayPoint{Weekday: item.String("weekday"), DurationSec: item.Int64("duration_sec")})
	}
	return out
}

func hourlyList(r Record, key string) []HourlyBucket {
	var out []HourlyBucket
	for _, item := range r.List(key) {
		out = append(out, HourlyBucket{
			Hour:        item.Int("hour"),
			DurationSec: item.Int64("duration_sec"),
			Sessions:    item.Int("sessions"),
		})
	}
	return out
}

func topList(r Record, key string) []TopBook {
	var out []TopBook
	for _, item := range r.List(key) {
		out = append(out, TopBookFromRecord(item))
	}
	return out
}
