// Package covers resolves the display identity, and so the cover image, of
// records that only carry part of a book's identifying fields.
package covers

import (
	"net/url"
	"strconv"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/lehigh-university-libraries/readstats/internal/models"
	"github.com/lehigh-university-libraries/readstats/internal/normalize"
)

// URLBuilder builds cover URLs. Version is appended as a cache buster and
// is bumped by callers after covers change.
type URLBuilder struct {
	BaseURL string
	Version int
}

// URL returns the cover URL for a book reference.
func (u URLBuilder) URL(ref string) string {
	ref = strings.TrimSpace(ref)
	return strings.TrimRight(u.BaseURL, "/") + "/api/books/" + url.PathEscape(ref) + "/cover?v=" + strconv.Itoa(u.Version)
}

// Resolver maps partial identities onto catalog books. It is immutable once
// built and safe for concurrent use.
type Resolver struct {
	urls          URLBuilder
	byMD5         *orderedmap.OrderedMap[string, models.CatalogBook]
	byTitleAuthor *orderedmap.OrderedMap[string, models.CatalogBook]
	byTitle       *orderedmap.OrderedMap[string, models.CatalogBook]
}

// NewResolver indexes books by md5, loose title+author and loose title.
// The first book wins for every key.
func NewResolver(books []models.CatalogBook, urls URLBuilder) *Resolver {
	r := &Resolver{
		urls:          urls,
		byMD5:         orderedmap.New[string, models.CatalogBook](),
		byTitleAuthor: orderedmap.New[string, models.CatalogBook](),
		byTitle:       orderedmap.New[string, models.CatalogBook](),
	}
	for _, b := range books {
		if b.MD5 != "" {
			setFirst(r.byMD5, b.MD5, b)
		}
		if key := normalize.TitleAuthorKey(b.Title, b.Authors); key != normalize.EmptyTitleAuthorKey {
			setFirst(r.byTitleAuthor, key, b)
		}
		if key := normalize.LooseTitle(b.Title); key != "" {
			setFirst(r.byTitle, key, b)
		}
	}
	return r
}

func setFirst(m *orderedmap.OrderedMap[string, models.CatalogBook], key string, b models.CatalogBook) {
	if _, ok := m.Get(key); !ok {
		m.Set(key, b)
	}
}

// Resolve returns a copy of id with its cover URL filled in. An explicit
// book reference or id is used directly; otherwise the md5, loose
// title+author and loose title indexes are tried in order. When nothing
// resolves, id is returned unchanged with false.
func (r *Resolver) Resolve(id models.BookIdentity) (models.BookIdentity, bool) {
	if r == nil {
		return id, false
	}
	if ref := strings.TrimSpace(id.BookRef); ref != "" {
		id.CoverURL = r.urls.URL(ref)
		return id, true
	}
	if bid := strings.TrimSpace(id.BookID); bid != "" {
		id.CoverURL = r.urls.URL(bid)
		return id, true
	}

	b, ok := r.find(id)
	if !ok {
		return id, false
	}
	id.BookID = b.ID
	id.CoverURL = r.urls.URL(b.ID)
	return id, true
}

func (r *Resolver) find(id models.BookIdentity) (models.CatalogBook, bool) {
	if id.MD5 != "" {
		if b, ok := r.byMD5.Get(id.MD5); ok {
			return b, true
		}
	}
	if key := normalize.TitleAuthorKey(id.Title, id.Authors); key != normalize.EmptyTitleAuthorKey {
		if b, ok := r.byTitleAuthor.Get(key); ok {
			return b, true
		}
	}
	if key := normalize.LooseTitle(id.Title); key != "" {
		if b, ok := r.byTitle.Get(key); ok {
			return b, true
		}
	}
	return models.CatalogBook{}, false
}

// ResolveTopBooks resolves every entry of a ranked list into a new slice.
func (r *Resolver) ResolveTopBooks(books []models.TopBook) []models.TopBook {
	if books == nil {
		return nil
	}
	out := make([]models.TopBook, len(books))
	for i, b := range books {
		b.BookIdentity, _ = r.Resolve(b.BookIdentity)
		out[i] = b
	}
	return out
}

// CatalogCover returns the cover URL of a catalog book.
func (r *Resolver) CatalogCover(b models.CatalogBook) string {
	if r == nil {
		return ""
	}
	return r.urls.URL(b.ID)
}
