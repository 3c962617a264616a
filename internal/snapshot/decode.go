package snapshot

import (
	"fmt"

	"github.com/lehigh-university-libraries/readstats/internal/models"
	"github.com/lehigh-university-libraries/readstats/internal/views"
)

// decodeList decodes the collection under key and converts every record.
func decodeList[T any](data []byte, key string, convert func(models.Record) T) ([]T, error) {
	records, err := models.DecodeField(data, key)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(records))
	for _, r := range records {
		out = append(out, convert(r))
	}
	return out, nil
}

// DecodeBooks decodes a catalog payload, either {"books": [...]} or a bare
// collection.
func DecodeBooks(data []byte) ([]models.CatalogBook, error) {
	books, err := decodeList(data, "books", models.CatalogBookFromRecord)
	if err != nil {
		return nil, fmt.Errorf("failed to decode books: %w", err)
	}
	return books, nil
}

// DecodeStats decodes a tracker payload of the form {"books": [...],
// "daily": [...]}.
func DecodeStats(data []byte) ([]models.StatsBook, []models.DailyRecord, error) {
	books, err := decodeList(data, "books", models.StatsBookFromRecord)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode stats books: %w", err)
	}
	obj, err := models.DecodeObject(data)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode stats: %w", err)
	}
	var daily []models.DailyRecord
	for _, r := range obj.List("daily") {
		daily = append(daily, models.DailyRecordFromRecord(r))
	}
	return books, daily, nil
}

// DecodeHighlights decodes an annotation payload, either {"highlights":
// [...]}, {"annotations": [...]} or a bare collection.
func DecodeHighlights(data []byte) ([]models.Annotation, error) {
	obj, err := models.DecodeObject(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode highlights: %w", err)
	}
	key := "highlights"
	if !obj.Has(key) && obj.Has("annotations") {
		key = "annotations"
	}
	items, err := decodeList(data, key, models.AnnotationFromRecord)
	if err != nil {
		return nil, fmt.Errorf("failed to decode highlights: %w", err)
	}
	return items, nil
}

// DecodeDashboard decodes the analytics payload. Missing sections default
// to their zero values.
func DecodeDashboard(data []byte) (models.Dashboard, error) {
	obj, err := models.DecodeObject(data)
	if err != nil {
		return models.Dashboard{}, fmt.Errorf("failed to decode dashboard: %w", err)
	}
	return models.DashboardFromRecord(obj), nil
}

// TimelineFromRecord decodes the timeline payload of book ref. Rows under
// "daily" are sorted by shape: aggregates stay daily records, while raw
// sessions some trackers report there join the session log.
func TimelineFromRecord(ref string, r models.Record) views.BookTimeline {
	var tl views.BookTimeline
	for _, s := range r.List("sessions") {
		tl.Sessions = append(tl.Sessions, models.SessionFromRecord(s))
	}
	for _, row := range models.BookRowsFromRecords(r.List("daily"), nil) {
		switch row := row.(type) {
		case models.DailyAggregateRow:
			tl.Daily = append(tl.Daily, row.Record())
		case models.RawSessionRow:
			tl.Sessions = append(tl.Sessions, row.Session(ref))
		}
	}
	tl.Total = r.Int("total")
	if r.Has("first_session") {
		s := models.SessionFromRecord(r.Sub("first_session"))
		tl.FirstSession = &s
	}
	if r.Has("last_session") {
		s := models.SessionFromRecord(r.Sub("last_session"))
		tl.LastSession = &s
	}
	return tl
}

// DecodeTimeline decodes the timeline payload of book ref.
func DecodeTimeline(ref string, data []byte) (views.BookTimeline, error) {
	obj, err := models.DecodeObject(data)
	if err != nil {
		return views.BookTimeline{}, fmt.Errorf("failed to decode timeline: %w", err)
	}
	return TimelineFromRecord(ref, obj), nil
}

// DecodeTimelines decodes an object of timelines keyed by book reference.
func DecodeTimelines(data []byte) (map[string]views.BookTimeline, error) {
	obj, err := models.DecodeObject(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode timelines: %w", err)
	}
	out := make(map[string]views.BookTimeline, len(obj))
	for ref := range obj {
		out[ref] = TimelineFromRecord(ref, obj.Sub(ref))
	}
	return out, nil
}
