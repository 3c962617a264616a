// Package highlights groups annotations by the book they belong to and
// exports them.
package highlights

import (
	"sort"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/readstats/internal/analytics"
	"github.com/lehigh-university-libraries/readstats/internal/covers"
	"github.com/lehigh-university-libraries/readstats/internal/dedupe"
	"github.com/lehigh-university-libraries/readstats/internal/models"
	"github.com/lehigh-university-libraries/readstats/internal/normalize"
)

type SortMode string

const (
	SortRecent SortMode = "recent"
	SortTitle  SortMode = "title"
	SortCount  SortMode = "count"
)

// Options selects and orders groups. An empty Kind or "all" keeps every
// kind; an empty Sort means SortRecent. Timestamps without a zone are read
// in Location, UTC when nil.
type Options struct {
	Query    string
	Kind     string
	Sort     SortMode
	Location *time.Location
}

// Group is every annotation of one book, newest first.
type Group struct {
	ID        string              `json:"id" yaml:"id"`
	BookRef   string              `json:"book_ref,omitempty" yaml:"book_ref,omitempty"`
	BookMD5   string              `json:"book_md5,omitempty" yaml:"book_md5,omitempty"`
	Title     string              `json:"title" yaml:"title"`
	Authors   string              `json:"authors" yaml:"authors"`
	CoverURL  string              `json:"cover_url,omitempty" yaml:"cover_url,omitempty"`
	Items     []models.Annotation `json:"items" yaml:"items"`
	LastTS    int64               `json:"last_ts" yaml:"last_ts"` // unix millis of the newest item, 0 if undated
	NoteCount int                 `json:"note_count" yaml:"note_count"`
}

// Result is the grouped highlights view.
type Result struct {
	Groups []Group      `json:"groups" yaml:"groups"`
	Items  int          `json:"items" yaml:"items"`
	Dedupe dedupe.Stats `json:"dedupe" yaml:"dedupe"`
	NoData bool         `json:"no_data" yaml:"no_data"`
}

// GroupKey is the identity annotations are grouped under: the book
// reference, then the book id, then loose title and author.
func GroupKey(a models.Annotation) string {
	if ref := strings.TrimSpace(a.BookRef); ref != "" {
		return ref
	}
	if id := strings.TrimSpace(a.BookID); id != "" {
		return id
	}
	return normalize.TitleAuthorKey(a.BookTitle, a.BookAuthors)
}

// Matches reports whether a passes the kind filter and the query, which is
// matched case-insensitively against title, authors, chapter, text and
// note.
func Matches(a models.Annotation, kind, query string) bool {
	if kind != "" && kind != "all" && string(a.Kind()) != kind {
		return false
	}
	q := normalize.Title(query)
	if q == "" {
		return true
	}
	haystack := strings.Join([]string{a.BookTitle, a.BookAuthors, a.Chapter, a.Text, a.Note}, " ")
	return strings.Contains(normalize.Title(haystack), q)
}

// Build deduplicates items, filters them and groups them by book. resolver
// may be nil, in which case groups carry no cover.
func Build(items []models.Annotation, opts Options, resolver *covers.Resolver) Result {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	unique, stats := dedupe.AnnotationsWithStats(items)
	res := Result{Dedupe: stats, NoData: len(items) == 0}

	var order []string
	groups := make(map[string]*Group)
	identities := make(map[string]models.BookIdentity)
	for _, a := range unique {
		if !Matches(a, opts.Kind, opts.Query) {
			continue
		}
		res.Items++
		key := GroupKey(a)
		g, ok := groups[key]
		if !ok {
			ref := strings.TrimSpace(a.BookRef)
			if ref == "" {
				ref = strings.TrimSpace(a.BookID)
			}
			g = &Group{
				ID:      key,
				BookRef: ref,
				BookMD5: strings.TrimSpace(a.BookMD5),
				Title:   a.BookTitle,
				Authors: a.BookAuthors,
			}
			groups[key] = g
			identities[key] = a.Identity()
			order = append(order, key)
		}
		g.Items = append(g.Items, a)
	}

	millis := func(a models.Annotation) int64 {
		t, ok := analytics.ParseTimestamp(a.Timestamp(), loc)
		if !ok {
			return 0
		}
		return t.UnixMilli()
	}

	res.Groups = make([]Group, 0, len(order))
	for _, key := range order {
		g := groups[key]
		sort.SliceStable(g.Items, func(i, j int) bool { return millis(g.Items[i]) > millis(g.Items[j]) })
		g.LastTS = millis(g.Items[0])
		for _, a := range g.Items {
			if a.Kind() == models.KindNote {
				g.NoteCount++
			}
		}
		if resolver != nil {
			id, _ := resolver.Resolve(identities[key])
			g.CoverURL = id.CoverURL
		}
		res.Groups = append(res.Groups, *g)
	}

	sortGroups(res.Groups, opts.Sort)
	return res
}

func sortGroups(groups []Group, mode SortMode) {
	sort.SliceStable(groups, func(i, j int) bool {
		a, b := groups[i], groups[j]
		switch mode {
		case SortTitle:
			return normalize.Title(a.Title) < normalize.Title(b.Title)
		case SortCount:
			if len(a.Items) != len(b.Items) {
				return len(a.Items) > len(b.Items)
			}
			return a.LastTS > b.LastTS
		default:
			if a.LastTS != b.LastTS {
				return a.LastTS > b.LastTS
			}
			return len(a.Items) > len(b.Items)
		}
	})
}
