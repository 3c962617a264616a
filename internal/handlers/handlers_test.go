package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/lehigh-university-libraries/readstats/internal/models"
	"github.com/lehigh-university-libraries/readstats/internal/storage"
	"github.com/lehigh-university-libraries/readstats/internal/views"
)

var fixedNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func testSnapshot() views.Snapshot {
	return views.Snapshot{
		Books: []models.CatalogBook{
			{ID: "a", Title: "Dune", Authors: "Frank Herbert", Percent: 40, LastOpenTS: 200},
			{ID: "b", Title: "Emma", Authors: "Jane Austen", Status: "complete", LastOpenTS: 100},
		},
		Annotations: []models.Annotation{
			{BookRef: "a", BookTitle: "Dune", Text: "fear is the mind-killer", Datetime: "2024-03-09 10:00:00"},
			{BookRef: "b", BookTitle: "Emma", Text: "badly done", Note: "cruel to Miss Bates", Datetime: "2024-03-08 09:00:00"},
		},
		Dashboard: models.Dashboard{
			Series: models.Series{
				Daily90d: []models.DailyRecord{
					{Date: "2024-03-09", DurationSec: 600},
					{Date: "2024-03-10", DurationSec: 1200},
				},
			},
			Calendar: models.CalendarData{
				Days:   []models.DailyRecord{{Date: "2024-03-09", DurationSec: 600}},
				Legend: models.CalendarLegend{MaxDailySec90d: 1200},
			},
		},
	}
}

func newTestHandler(t *testing.T, loaded bool, reload ReloadFunc) http.Handler {
	t.Helper()
	store := storage.New()
	if loaded {
		store.Set(storage.Entry{ID: "snap-1", Snapshot: testSnapshot(), LoadedAt: fixedNow})
	}
	h := New(store, reload, views.Options{Now: fixedNow})
	h.now = func() time.Time { return fixedNow }
	return h.Router()
}

func get(t *testing.T, handler http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthcheck(t *testing.T) {
	rec := get(t, newTestHandler(t, false, nil), "/healthcheck")
	if rec.Code != http.StatusOK || rec.Body.String() != "OK" {
		t.Errorf("Expected 200 OK, got %d %q", rec.Code, rec.Body.String())
	}
}

func TestNoSnapshotLoaded(t *testing.T) {
	handler := newTestHandler(t, false, nil)
	for _, target := range []string{"/api/books", "/api/stats", "/api/calendar", "/api/highlights", "/api/snapshot"} {
		t.Run(target, func(t *testing.T) {
			rec := get(t, handler, target)
			if rec.Code != http.StatusServiceUnavailable {
				t.Errorf("Expected 503, got %d", rec.Code)
			}
		})
	}
}

func TestHandleBooks(t *testing.T) {
	handler := newTestHandler(t, true, nil)

	tests := []struct {
		name     string
		target   string
		expected []string
	}{
		{name: "default order", target: "/api/books", expected: []string{"a", "b"}},
		{name: "finished filter", target: "/api/books?filter=finished", expected: []string{"b"}},
		{name: "search", target: "/api/books?q=herbert", expected: []string{"a"}},
		{name: "title ascending", target: "/api/books?sort=title&dir=asc", expected: []string{"a", "b"}},
		{name: "title descending", target: "/api/books?sort=title&dir=desc", expected: []string{"b", "a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, handler, tt.target)
			if rec.Code != http.StatusOK {
				t.Fatalf("Expected 200, got %d", rec.Code)
			}
			var body struct {
				Books []struct {
					ID string `json:"id"`
				} `json:"books"`
			}
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("Failed to decode: %v", err)
			}
			var got []string
			for _, b := range body.Books {
				got = append(got, b.ID)
			}
			if strings.Join(got, ",") != strings.Join(tt.expected, ",") {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestHandleBook(t *testing.T) {
	handler := newTestHandler(t, true, nil)

	rec := get(t, handler, "/api/books/a")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var detail struct {
		Title       string              `json:"title"`
		Annotations []models.Annotation `json:"annotations"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&detail); err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}
	if detail.Title != "Dune" || len(detail.Annotations) != 1 {
		t.Errorf("Unexpected detail %+v", detail)
	}

	if rec := get(t, handler, "/api/books/missing"); rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rec.Code)
	}
}

func TestHandleStats(t *testing.T) {
	handler := newTestHandler(t, true, nil)

	tests := []struct {
		name       string
		target     string
		days       int
		precedence string
	}{
		{name: "defaults", target: "/api/stats", days: 90, precedence: "longest"},
		{name: "explicit window", target: "/api/stats?days=30", days: 30, precedence: "longest"},
		{name: "unsupported window", target: "/api/stats?days=45", days: 90, precedence: "longest"},
		{name: "garbage window", target: "/api/stats?days=abc", days: 90, precedence: "longest"},
		{name: "freshest", target: "/api/stats?precedence=freshest", days: 90, precedence: "freshest"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, handler, tt.target)
			var body views.StatsView
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("Failed to decode: %v", err)
			}
			if body.TrendDays != tt.days {
				t.Errorf("Expected %d days, got %d", tt.days, body.TrendDays)
			}
			if body.Precedence != tt.precedence {
				t.Errorf("Expected %s, got %s", tt.precedence, body.Precedence)
			}
		})
	}
}

func TestHandleCalendar(t *testing.T) {
	handler := newTestHandler(t, true, nil)

	rec := get(t, handler, "/api/calendar?month=2024-03&date=2024-03-09")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var cal struct {
		Month    string `json:"month"`
		Selected *struct {
			Date        string `json:"date"`
			DurationSec int64  `json:"duration_sec"`
		} `json:"selected"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&cal); err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}
	if cal.Month != "2024-03" || cal.Selected == nil || cal.Selected.DurationSec != 600 {
		t.Errorf("Unexpected calendar %+v", cal)
	}

	if rec := get(t, handler, "/api/calendar?month=March"); rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
}

func TestHandleHighlights(t *testing.T) {
	handler := newTestHandler(t, true, nil)

	tests := []struct {
		name   string
		target string
		groups int
	}{
		{name: "all", target: "/api/highlights", groups: 2},
		{name: "notes only", target: "/api/highlights?kind=note", groups: 1},
		{name: "query", target: "/api/highlights?q=mind-killer", groups: 1},
		{name: "no match", target: "/api/highlights?q=arrakis", groups: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, handler, tt.target)
			var body struct {
				Groups []json.RawMessage `json:"groups"`
			}
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("Failed to decode: %v", err)
			}
			if len(body.Groups) != tt.groups {
				t.Errorf("Expected %d groups, got %d", tt.groups, len(body.Groups))
			}
		})
	}
}

func TestHandleHighlightsExport(t *testing.T) {
	handler := newTestHandler(t, true, nil)

	tests := []struct {
		name        string
		format      string
		code        int
		contentType string
		contains    string
	}{
		{name: "markdown", format: "markdown", code: http.StatusOK, contentType: "text/markdown; charset=utf-8", contains: "# Highlights Export"},
		{name: "default", format: "", code: http.StatusOK, contentType: "text/markdown; charset=utf-8", contains: "# Highlights Export"},
		{name: "json", format: "json", code: http.StatusOK, contentType: "application/json", contains: `"exported_at"`},
		{name: "html", format: "html", code: http.StatusOK, contentType: "text/html; charset=utf-8", contains: "<h1"},
		{name: "unknown", format: "pdf", code: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, handler, "/api/highlights/export?format="+tt.format)
			if rec.Code != tt.code {
				t.Fatalf("Expected %d, got %d", tt.code, rec.Code)
			}
			if tt.code != http.StatusOK {
				return
			}
			if got := rec.Header().Get("Content-Type"); got != tt.contentType {
				t.Errorf("Expected %s, got %s", tt.contentType, got)
			}
			if !strings.Contains(rec.Header().Get("Content-Disposition"), "highlights-2024-03-10") {
				t.Errorf("Unexpected disposition %s", rec.Header().Get("Content-Disposition"))
			}
			if !strings.Contains(rec.Body.String(), tt.contains) {
				t.Errorf("Expected body to contain %s", tt.contains)
			}
		})
	}
}

func TestHandleReload(t *testing.T) {
	t.Run("replaces the snapshot", func(t *testing.T) {
		reload := func(ctx context.Context) (storage.Entry, error) {
			return storage.Entry{ID: "snap-2", Snapshot: views.Snapshot{Books: []models.CatalogBook{{ID: "z"}}}}, nil
		}
		handler := newTestHandler(t, true, reload)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/reload", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", rec.Code)
		}
		var info snapshotInfo
		if err := json.NewDecoder(rec.Body).Decode(&info); err != nil {
			t.Fatalf("Failed to decode: %v", err)
		}
		if info.ID != "snap-2" || info.Books != 1 || len(info.History) != 2 {
			t.Errorf("Unexpected info %+v", info)
		}
		if !info.LoadedAt.Equal(fixedNow) {
			t.Errorf("Expected loaded_at %s, got %s", fixedNow, info.LoadedAt)
		}
	})

	t.Run("failure keeps the previous snapshot", func(t *testing.T) {
		reload := func(ctx context.Context) (storage.Entry, error) {
			return storage.Entry{}, errors.New("upstream down")
		}
		handler := newTestHandler(t, true, reload)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/reload", nil))
		if rec.Code != http.StatusBadGateway {
			t.Errorf("Expected 502, got %d", rec.Code)
		}

		var info snapshotInfo
		if err := json.NewDecoder(get(t, handler, "/api/snapshot").Body).Decode(&info); err != nil {
			t.Fatalf("Failed to decode: %v", err)
		}
		if info.ID != "snap-1" {
			t.Errorf("Expected snap-1 to remain, got %s", info.ID)
		}
	})

	t.Run("not configured", func(t *testing.T) {
		rec := httptest.NewRecorder()
		newTestHandler(t, true, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/reload", nil))
		if rec.Code != http.StatusNotImplemented {
			t.Errorf("Expected 501, got %d", rec.Code)
		}
	})
}
