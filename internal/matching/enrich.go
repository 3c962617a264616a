package matching

import "github.com/lehigh-university-libraries/readstats/internal/models"

// EnrichedBook is a catalog book together with its statistics match, if
// any. The catalog record is a copy.
type EnrichedBook struct {
	models.CatalogBook `yaml:",inline"`
	Stats              *models.StatsBook `json:"stats,omitempty" yaml:"stats,omitempty"`
	MatchedBy          Method            `json:"matched_by,omitempty" yaml:"matched_by,omitempty"`
}

// TotalReadTime returns the matched read time in seconds, or 0.
func (b EnrichedBook) TotalReadTime() int64 {
	if b.Stats == nil {
		return 0
	}
	return b.Stats.TotalReadTime
}

// Enrich matches every book against stats using a single shared index.
func Enrich(books []models.CatalogBook, stats []models.StatsBook) []EnrichedBook {
	idx := BuildIndex(stats)
	out := make([]EnrichedBook, 0, len(books))
	for _, b := range books {
		e := EnrichedBook{CatalogBook: b}
		if s, method := match(b, stats, idx); method != MethodNone {
			e.Stats = &s
			e.MatchedBy = method
		}
		out = append(out, e)
	}
	return out
}

// Lookup returns a function resolving the read time of a book, suitable
// for sorting by total_read_time.
func Lookup(stats []models.StatsBook) func(models.CatalogBook) int64 {
	idx := BuildIndex(stats)
	return func(b models.CatalogBook) int64 {
		s, ok := FindBestStatsMatch(b, stats, idx)
		if !ok {
			return 0
		}
		return s.TotalReadTime
	}
}
