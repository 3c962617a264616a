package views

import (
	"math"
	"strings"

	"github.com/lehigh-university-libraries/readstats/internal/analytics"
	"github.com/lehigh-university-libraries/readstats/internal/covers"
	"github.com/lehigh-university-libraries/readstats/internal/dedupe"
	"github.com/lehigh-university-libraries/readstats/internal/highlights"
	"github.com/lehigh-university-libraries/readstats/internal/library"
	"github.com/lehigh-university-libraries/readstats/internal/matching"
	"github.com/lehigh-university-libraries/readstats/internal/models"
	"github.com/lehigh-university-libraries/readstats/internal/normalize"
)

// BookCard is one entry of the library view.
type BookCard struct {
	matching.EnrichedBook `yaml:",inline"`
	StatusTag             library.Status `json:"status_tag" yaml:"status_tag"`
	CoverURL              string         `json:"cover_url" yaml:"cover_url"`
	PagesRead             int            `json:"pages_read" yaml:"pages_read"`
}

// BooksView is the filtered, sorted library.
type BooksView struct {
	Books  []BookCard   `json:"books" yaml:"books"`
	Total  int          `json:"total" yaml:"total"` // canonical books before filtering
	Dedupe dedupe.Stats `json:"dedupe" yaml:"dedupe"`
	NoData bool         `json:"no_data" yaml:"no_data"`
}

func pagesRead(b models.CatalogBook) int {
	if b.Pages <= 0 {
		return 0
	}
	return int(math.Round(b.Percent / 100 * float64(b.Pages)))
}

// Books collapses duplicate catalog entries, applies the library options
// and attaches each book's statistics match and cover.
func Books(snap Snapshot, opts Options) BooksView {
	canonical, stats := dedupe.BooksWithStats(snap.Books)
	view := BooksView{Total: len(canonical), Dedupe: stats, NoData: len(snap.Books) == 0}

	resolver := covers.NewResolver(canonical, opts.Covers)
	selected := library.Apply(canonical, opts.Books, matching.Lookup(snap.StatsBooks))
	enriched := matching.Enrich(selected, snap.StatsBooks)

	view.Books = make([]BookCard, 0, len(enriched))
	for _, e := range enriched {
		view.Books = append(view.Books, BookCard{
			EnrichedBook: e,
			StatusTag:    library.StatusTag(e.CatalogBook),
			CoverURL:     resolver.CatalogCover(e.CatalogBook),
			PagesRead:    pagesRead(e.CatalogBook),
		})
	}
	return view
}

// BookDetail is everything known about one catalog book.
type BookDetail struct {
	BookCard    `yaml:",inline"`
	Heatmap     analytics.Heatmap   `json:"heatmap" yaml:"heatmap"`
	Timeline    analytics.Timeline  `json:"timeline" yaml:"timeline"`
	Annotations []models.Annotation `json:"annotations" yaml:"annotations"`
}

// FindBook returns the catalog book whose id is ref.
func FindBook(books []models.CatalogBook, ref string) (models.CatalogBook, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return models.CatalogBook{}, false
	}
	for _, b := range books {
		if strings.TrimSpace(b.ID) == ref {
			return b, true
		}
	}
	return models.CatalogBook{}, false
}

// belongsTo reports whether an annotation points at book. An explicit
// reference decides on its own; otherwise the md5 or the loose title and
// author must agree.
func belongsTo(a models.Annotation, book models.CatalogBook) bool {
	id := strings.TrimSpace(book.ID)
	if ref := strings.TrimSpace(a.BookRef); ref != "" {
		return ref == id
	}
	if bid := strings.TrimSpace(a.BookID); bid != "" {
		return bid == id
	}
	if a.BookMD5 != "" && book.MD5 != "" {
		return a.BookMD5 == book.MD5
	}
	key := normalize.TitleAuthorKey(a.BookTitle, a.BookAuthors)
	return key != normalize.EmptyTitleAuthorKey && key == normalize.TitleAuthorKey(book.Title, book.Authors)
}

func (s Snapshot) timeline(ref string) BookTimeline {
	if tl, ok := s.Timelines[ref]; ok {
		return tl
	}
	var tl BookTimeline
	for _, sess := range s.Sessions {
		if strings.TrimSpace(sess.BookRef) == ref {
			tl.Sessions = append(tl.Sessions, sess)
		}
	}
	return tl
}

// Book builds the detail view of the book whose id is ref. The heatmap
// prefers the per-day aggregate rows of the book's timeline and falls back
// to its raw sessions.
func Book(snap Snapshot, opts Options, ref string) (BookDetail, bool) {
	book, ok := FindBook(snap.Books, ref)
	if !ok {
		return BookDetail{}, false
	}
	ref = strings.TrimSpace(book.ID)
	loc := opts.location()

	var own []models.Annotation
	for _, a := range snap.Annotations {
		if belongsTo(a, book) {
			own = append(own, a)
		}
	}
	own = dedupe.Annotations(own)

	tl := snap.timeline(ref)
	rows := make([]models.BookRow, 0, len(tl.Sessions))
	if len(tl.Daily) > 0 {
		for _, d := range tl.Daily {
			rows = append(rows, d.Row())
		}
	} else {
		for _, s := range tl.Sessions {
			rows = append(rows, s.Row(loc))
		}
	}

	enriched := matching.Enrich([]models.CatalogBook{book}, snap.StatsBooks)[0]
	detail := BookDetail{
		BookCard: BookCard{
			EnrichedBook: enriched,
			StatusTag:    library.StatusTag(book),
			CoverURL:     opts.Covers.URL(ref),
			PagesRead:    pagesRead(book),
		},
		Heatmap: analytics.BookHeatmap(rows, own, opts.now()),
		Timeline: analytics.Milestones(analytics.TimelineInput{
			Sessions:      tl.Sessions,
			Annotations:   own,
			TotalSessions: tl.Total,
			FirstSession:  tl.FirstSession,
			LastSession:   tl.LastSession,
		}, loc),
		Annotations: own,
	}
	return detail, true
}

// Highlights groups the snapshot's annotations by book, resolving covers
// against the catalog.
func Highlights(snap Snapshot, opts Options) highlights.Result {
	hopts := opts.Highlights
	if hopts.Location == nil {
		hopts.Location = opts.location()
	}
	return highlights.Build(snap.Annotations, hopts, snap.resolver(opts))
}
