// Package matching reconciles catalog books with the reading tracker's
// statistics records, which share no guaranteed identifier with the catalog.
package matching

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/lehigh-university-libraries/readstats/internal/models"
	"github.com/lehigh-university-libraries/readstats/internal/normalize"
)

// Index is a per-call lookup structure over a statistics collection. Each
// key maps to the first record inserted under it.
type Index struct {
	ByMD5         *orderedmap.OrderedMap[string, models.StatsBook]
	ByTitleAuthor *orderedmap.OrderedMap[string, models.StatsBook]
	ByTitle       *orderedmap.OrderedMap[string, models.StatsBook]
}

// BuildIndex indexes stats by md5, loose title+author and plain title.
// Empty records are skipped and the all-empty composite key is never
// inserted.
func BuildIndex(stats []models.StatsBook) *Index {
	idx := &Index{
		ByMD5:         orderedmap.New[string, models.StatsBook](),
		ByTitleAuthor: orderedmap.New[string, models.StatsBook](),
		ByTitle:       orderedmap.New[string, models.StatsBook](),
	}
	for _, s := range stats {
		if s.IsZero() {
			continue
		}
		if s.MD5 != "" {
			insertFirst(idx.ByMD5, s.MD5, s)
		}
		if key := normalize.Title(s.Title); key != "" {
			insertFirst(idx.ByTitle, key, s)
		}
		if key := normalize.TitleAuthorKey(s.Title, s.Authors); key != normalize.EmptyTitleAuthorKey {
			insertFirst(idx.ByTitleAuthor, key, s)
		}
	}
	return idx
}

// insertFirst stores v under key unless the key is already taken.
func insertFirst[V any](m *orderedmap.OrderedMap[string, V], key string, v V) {
	if _, taken := m.Get(key); taken {
		return
	}
	m.Set(key, v)
}

func lookup(m *orderedmap.OrderedMap[string, models.StatsBook], key string) (models.StatsBook, bool) {
	if key == "" || m == nil {
		return models.StatsBook{}, false
	}
	return m.Get(key)
}
