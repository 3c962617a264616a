package views

import (
	"testing"
	"time"

	"github.com/lehigh-university-libraries/readstats/internal/analytics"
	"github.com/lehigh-university-libraries/readstats/internal/covers"
	"github.com/lehigh-university-libraries/readstats/internal/library"
	"github.com/lehigh-university-libraries/readstats/internal/matching"
	"github.com/lehigh-university-libraries/readstats/internal/models"
)

var now = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func options() Options {
	return Options{Now: now, Covers: covers.URLBuilder{Version: 1}}
}

func snapshot() Snapshot {
	return Snapshot{
		Books: []models.CatalogBook{
			{ID: "a", Title: "Dune", Authors: "Frank Herbert", MD5: "m1", Pages: 400, Percent: 50, LastOpenTS: 300},
			{ID: "a-dup", Title: "Dune", Authors: "Frank Herbert", MD5: "m1", LastOpenTS: 100},
			{ID: "b", Title: "Emma", Authors: "Jane Austen", Status: "complete", LastOpenTS: 200},
		},
		StatsBooks: []models.StatsBook{
			{Title: "Dune", Authors: "Frank Herbert", MD5: "m1", TotalReadTime: 3600},
		},
		Annotations: []models.Annotation{
			{BookRef: "a", BookTitle: "Dune", Text: "fear", Datetime: "2024-03-09 10:00:00"},
			{BookTitle: "Dune", BookAuthors: "Frank Herbert", Text: "spice"},
			{BookRef: "b", BookTitle: "Emma", Text: "badly done"},
		},
		Dashboard: models.Dashboard{
			Series: models.Series{
				Daily90d: []models.DailyRecord{
					{Date: "2024-03-08", DurationSec: 600},
					{Date: "2024-03-09", DurationSec: 600},
					{Date: "2024-03-10", DurationSec: 1200},
				},
			},
			Calendar: models.CalendarData{
				Days: []models.DailyRecord{{
					Date:        "2024-03-09",
					DurationSec: 600,
					TopBooks:    []models.TopBook{{BookIdentity: models.BookIdentity{Title: "Dune", MD5: "m1"}, DurationSec: 600}},
				}},
				Legend: models.CalendarLegend{MaxDailySec90d: 1200},
			},
			TopBooks: models.TopBookLists{
				ByTime: []models.TopBook{{BookIdentity: models.BookIdentity{Title: "Emma", Authors: "Jane Austen"}, DurationSec: 50}},
			},
		},
		Sessions: []models.Session{
			{BookRef: "a", StartTime: time.Date(2024, 3, 8, 20, 0, 0, 0, time.UTC).Unix(), Duration: 900, Page: 10},
			{BookRef: "b", StartTime: time.Date(2024, 3, 7, 20, 0, 0, 0, time.UTC).Unix(), Duration: 300, Page: 3},
		},
	}
}

func TestBooks(t *testing.T) {
	view := Books(snapshot(), options())

	if view.Total != 2 || view.Dedupe.Collapsed != 1 {
		t.Errorf("Expected 2 canonical books and 1 collapsed, got total=%d collapsed=%d", view.Total, view.Dedupe.Collapsed)
	}
	if len(view.Books) != 2 {
		t.Fatalf("Expected 2 books, got %d", len(view.Books))
	}

	dune := view.Books[0]
	if dune.ID != "a" {
		t.Errorf("Expected most recently opened book first, got %s", dune.ID)
	}
	if dune.MatchedBy != matching.MethodMD5 || dune.TotalReadTime() != 3600 {
		t.Errorf("Expected md5 match with 3600s, got %s %d", dune.MatchedBy, dune.TotalReadTime())
	}
	if dune.StatusTag != library.StatusReading || dune.PagesRead != 200 {
		t.Errorf("Unexpected status %s or pages read %d", dune.StatusTag, dune.PagesRead)
	}
	if dune.CoverURL != "/api/books/a/cover?v=1" {
		t.Errorf("Unexpected cover %s", dune.CoverURL)
	}

	emma := view.Books[1]
	if emma.Stats != nil || emma.StatusTag != library.StatusFinished {
		t.Errorf("Unexpected emma card %+v", emma)
	}
}

func TestBooksFiltered(t *testing.T) {
	opts := options()
	opts.Books = library.Options{Filter: library.FilterFinished}
	view := Books(snapshot(), opts)
	if len(view.Books) != 1 || view.Books[0].ID != "b" {
		t.Errorf("Expected only the finished book, got %+v", view.Books)
	}
	if view.Total != 2 {
		t.Errorf("Total must count books before filtering, got %d", view.Total)
	}
}

func TestBooksEmpty(t *testing.T) {
	view := Books(Snapshot{}, options())
	if !view.NoData || len(view.Books) != 0 {
		t.Errorf("Expected NoData, got %+v", view)
	}
}

func TestStats(t *testing.T) {
	opts := options()
	opts.TrendDays = 45

	view := Stats(snapshot(), opts)
	if view.TrendDays != 90 {
		t.Errorf("Expected unsupported window to fall back to 90, got %d", view.TrendDays)
	}
	if len(view.Trend) != 3 || view.NoData {
		t.Fatalf("Expected 3 trend days, got %d", len(view.Trend))
	}
	if view.Summary.TotalSec != 2400 || view.Summary.ActiveDays != 3 || view.Summary.LongestDaySec != 1200 {
		t.Errorf("Unexpected summary %+v", view.Summary)
	}
	if view.Streaks.Best != 3 || view.Streaks.Current != 3 {
		t.Errorf("Unexpected streaks %+v", view.Streaks)
	}
	if len(view.Monthly) != 1 || view.Monthly[0].Month != "2024-03" || view.Monthly[0].DaysRead != 3 {
		t.Errorf("Unexpected monthly %+v", view.Monthly)
	}
	if len(view.Weekdays) != 7 {
		t.Errorf("Expected 7 weekdays, got %d", len(view.Weekdays))
	}
	if len(view.TopByTime) != 1 || view.TopByTime[0].BookID != "b" || view.TopByTime[0].CoverURL != "/api/books/b/cover?v=1" {
		t.Errorf("Expected top book resolved against the catalog, got %+v", view.TopByTime)
	}
	if view.Precedence != "longest" {
		t.Errorf("Expected default precedence, got %s", view.Precedence)
	}
}

func TestStatsFallsBackToTrackerDaily(t *testing.T) {
	snap := Snapshot{Daily: []models.DailyRecord{{Date: "2024-03-10", DurationSec: 60}}}
	view := Stats(snap, options())
	if len(view.Trend) != 1 || view.Streaks.Current != 1 {
		t.Errorf("Expected tracker daily to feed the trend, got %+v", view)
	}
}

func TestStatsNoData(t *testing.T) {
	view := Stats(Snapshot{}, options())
	if !view.NoData || view.Trend != nil {
		t.Errorf("Expected NoData, got %+v", view)
	}
}

func TestStatsResolvesToCanonicalBook(t *testing.T) {
	snap := Snapshot{
		Books: []models.CatalogBook{
			{ID: "stale", Title: "Dune", Authors: "Frank Herbert"},
			{ID: "canon", Title: "Dune", Authors: "Frank Herbert", Percent: 40, CoverAvailable: true},
		},
		Dashboard: models.Dashboard{
			Series: models.Series{Daily90d: []models.DailyRecord{{Date: "2024-03-10", DurationSec: 60}}},
			TopBooks: models.TopBookLists{
				ByTime: []models.TopBook{{BookIdentity: models.BookIdentity{Title: "Dune", Authors: "Frank Herbert"}, DurationSec: 60}},
			},
		},
	}

	books := Books(snap, options())
	if len(books.Books) != 1 || books.Books[0].ID != "canon" {
		t.Fatalf("Expected only the canonical book in the library, got %+v", books.Books)
	}

	view := Stats(snap, options())
	if len(view.TopByTime) != 1 || view.TopByTime[0].BookID != "canon" {
		t.Errorf("Expected the top book to resolve to the canonical record, got %+v", view.TopByTime)
	}
}

func TestCalendar(t *testing.T) {
	cal, ok := Calendar(snapshot(), options(), "", "2024-03-09")
	if !ok {
		t.Fatal("Expected the current month to parse")
	}
	if cal.Month != "2024-03" {
		t.Errorf("Expected 2024-03, got %s", cal.Month)
	}
	if cal.Selected == nil || cal.Selected.Date != "2024-03-09" {
		t.Fatalf("Expected 2024-03-09 selected, got %+v", cal.Selected)
	}
	if cal.Selected.Intensity != 0.5 {
		t.Errorf("Expected intensity 0.5, got %f", cal.Selected.Intensity)
	}
	if len(cal.Selected.TopBooks) != 1 || cal.Selected.TopBooks[0].BookID != "a" {
		t.Errorf("Expected the day's top book resolved by md5, got %+v", cal.Selected.TopBooks)
	}

	if _, ok := Calendar(snapshot(), options(), "2024-13", ""); ok {
		t.Error("Expected an invalid month to be rejected")
	}
}

func TestBook(t *testing.T) {
	detail, ok := Book(snapshot(), options(), " a ")
	if !ok {
		t.Fatal("Expected book a to be found")
	}
	if len(detail.Annotations) != 2 {
		t.Errorf("Expected 2 annotations, got %d", len(detail.Annotations))
	}
	if detail.Heatmap.ActiveDays != 2 || detail.Heatmap.TotalDuration != 900 {
		t.Errorf("Unexpected heatmap totals: active=%d total=%d", detail.Heatmap.ActiveDays, detail.Heatmap.TotalDuration)
	}
	if detail.Heatmap.End != "2024-03-10" {
		t.Errorf("Expected heatmap to end today, got %s", detail.Heatmap.End)
	}
	if detail.Timeline.Sessions != 1 || detail.Timeline.Annotations != 2 {
		t.Errorf("Unexpected timeline %+v", detail.Timeline)
	}
	if detail.MatchedBy != matching.MethodMD5 {
		t.Errorf("Expected md5 match, got %s", detail.MatchedBy)
	}

	if _, ok := Book(snapshot(), options(), "missing"); ok {
		t.Error("Expected a missing book to be reported")
	}
}

func TestBookPrefersTimeline(t *testing.T) {
	snap := snapshot()
	snap.Timelines = map[string]BookTimeline{
		"a": {
			Daily: []models.DailyRecord{{Date: "2024-03-01", DurationSec: 1800, Sessions: 2, Pages: 30}},
			Total: 7,
		},
	}
	detail, _ := Book(snap, options(), "a")
	if detail.Heatmap.TotalDuration != 1800 {
		t.Errorf("Expected aggregate rows to feed the heatmap, got %d", detail.Heatmap.TotalDuration)
	}
	if detail.Timeline.Sessions != 7 {
		t.Errorf("Expected reported session total, got %d", detail.Timeline.Sessions)
	}
}

func TestHighlights(t *testing.T) {
	res := Highlights(snapshot(), options())
	if res.Items != 3 || len(res.Groups) != 3 {
		t.Fatalf("Expected 3 items in 3 groups, got %d in %d", res.Items, len(res.Groups))
	}
	for _, g := range res.Groups {
		if g.ID == "dune::frank herbert" && g.CoverURL != "/api/books/a/cover?v=1" {
			t.Errorf("Expected loose group resolved to book a, got %s", g.CoverURL)
		}
	}
}

func TestTrendDays(t *testing.T) {
	for _, days := range analytics.TrendRanges {
		if got := (Options{TrendDays: days}).trendDays(); got != days {
			t.Errorf("Expected %d, got %d", days, got)
		}
	}
	if got := (Options{}).trendDays(); got != analytics.DefaultTrendDays {
		t.Errorf("Expected default, got %d", got)
	}
}
