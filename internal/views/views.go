// Package views assembles the derived views of a snapshot. Every view is
// computed from scratch on each call; nothing is cached between calls.
package views

import (
	"slices"
	"time"

	"github.com/lehigh-university-libraries/readstats/internal/analytics"
	"github.com/lehigh-university-libraries/readstats/internal/covers"
	"github.com/lehigh-university-libraries/readstats/internal/dedupe"
	"github.com/lehigh-university-libraries/readstats/internal/highlights"
	"github.com/lehigh-university-libraries/readstats/internal/library"
	"github.com/lehigh-university-libraries/readstats/internal/models"
)

// BookTimeline is the per-book session log reported by the tracker. Total,
// FirstSession and LastSession are optional.
type BookTimeline struct {
	Sessions     []models.Session     `json:"sessions" yaml:"sessions"`
	Daily        []models.DailyRecord `json:"daily,omitempty" yaml:"daily,omitempty"`
	Total        int                  `json:"total,omitempty" yaml:"total,omitempty"`
	FirstSession *models.Session      `json:"first_session,omitempty" yaml:"first_session,omitempty"`
	LastSession  *models.Session      `json:"last_session,omitempty" yaml:"last_session,omitempty"`
}

// Snapshot is every input collection the views are derived from. Daily is
// the tracker's own daily series, used when the dashboard carries none.
// Timelines is keyed by book reference; books without an entry fall back
// to the matching rows of Sessions.
type Snapshot struct {
	Books       []models.CatalogBook
	StatsBooks  []models.StatsBook
	Daily       []models.DailyRecord
	Annotations []models.Annotation
	Dashboard   models.Dashboard
	Sessions    []models.Session
	Timelines   map[string]BookTimeline
}

// Options is the explicit context of one view request. A zero Now means
// the current time; its location is the local zone of the reader.
type Options struct {
	Now             time.Time
	TrendDays       int
	TrendPrecedence analytics.Precedence
	Books           library.Options
	Highlights      highlights.Options
	Covers          covers.URLBuilder
}

func (o Options) now() time.Time {
	if o.Now.IsZero() {
		return time.Now()
	}
	return o.Now
}

func (o Options) location() *time.Location {
	return o.now().Location()
}

// trendDays clamps the requested window to one the dashboard
// pre-aggregates.
func (o Options) trendDays() int {
	if slices.Contains(analytics.TrendRanges, o.TrendDays) {
		return o.TrendDays
	}
	return analytics.DefaultTrendDays
}

// series returns the dashboard series, falling back to the tracker's daily
// records when the dashboard carries no daily data at all.
func (s Snapshot) series() models.Series {
	series := s.Dashboard.Series
	if len(series.Daily90d) == 0 && len(series.Daily180d) == 0 && len(series.Daily365d) == 0 {
		series.Daily365d = s.Daily
	}
	return series
}

// resolver indexes the canonical catalog, so partial identities never
// resolve to a duplicate the library view has collapsed.
func (s Snapshot) resolver(opts Options) *covers.Resolver {
	return covers.NewResolver(dedupe.Books(s.Books), opts.Covers)
}
