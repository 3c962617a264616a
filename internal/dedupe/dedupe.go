// Package dedupe collapses catalog books and annotations that describe the
// same logical entity into one canonical entry each.
package dedupe

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/lehigh-university-libraries/readstats/internal/models"
	"github.com/lehigh-university-libraries/readstats/internal/normalize"
)

var unknownAuthorRe = regexp.MustCompile(`(?i)unknown author`)

// Stats summarizes one deduplication pass.
type Stats struct {
	Input     int `json:"input" yaml:"input"`
	Output    int `json:"output" yaml:"output"`
	Collapsed int `json:"collapsed" yaml:"collapsed"`
}

func newStats(in, out int) Stats {
	return Stats{Input: in, Output: out, Collapsed: in - out}
}

// BookKey returns the key books are grouped under: the md5 when present,
// otherwise loose title, author and page count. Books without a usable
// title get "" and are never merged.
func BookKey(b models.CatalogBook) string {
	if b.MD5 != "" {
		return "md5:" + b.MD5
	}
	title := normalize.LooseTitle(b.Title)
	if title == "" {
		return ""
	}
	pages := ""
	if b.Pages > 0 {
		pages = strconv.Itoa(b.Pages)
	}
	return "ta:" + title + "::" + normalize.LooseTitle(b.Authors) + "::" + pages
}

// CanonicalScore rates how complete a book record is. Higher is better.
func CanonicalScore(b models.CatalogBook) int {
	score := 0
	if b.MD5 != "" {
		score += 20
	}
	if b.CoverAvailable {
		score += 12
	}
	if b.Authors != "" && !unknownAuthorRe.MatchString(b.Authors) {
		score += 10
	}
	if b.Pages > 0 {
		score += 8
	}
	if b.Percent > 0 {
		score += 6
	}
	if b.Highlights > 0 {
		score += 4
	}
	if b.LastOpenTS > 0 {
		score += int(math.Min(5, math.Floor(float64(b.LastOpenTS)/1e9)))
	}
	return score
}

// Books keeps the highest-scoring book per key. A later book replaces the
// survivor only on a strictly greater score. Output follows the first
// occurrence of each key.
func Books(books []models.CatalogBook) []models.CatalogBook {
	out, _ := BooksWithStats(books)
	return out
}

// BooksWithStats is Books plus a summary of the pass.
func BooksWithStats(books []models.CatalogBook) ([]models.CatalogBook, Stats) {
	type entry struct {
		book  models.CatalogBook
		score int
	}
	best := orderedmap.New[string, entry]()
	unique := 0

	for _, b := range books {
		key := BookKey(b)
		if key == "" {
			// distinct prefix, so never merged with md5: or ta: keys
			key = "unique:" + strconv.Itoa(unique)
			unique++
		}
		score := CanonicalScore(b)
		if prev, ok := best.Get(key); ok && score <= prev.score {
			continue
		}
		best.Set(key, entry{book: b, score: score})
	}

	out := make([]models.CatalogBook, 0, best.Len())
	for pair := best.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value.book)
	}
	return out, newStats(len(books), len(out))
}

// Fingerprint is the identity of an annotation for deduplication: every
// book reference, the derived kind, the trimmed content, its location and
// its timestamp.
func Fingerprint(a models.Annotation) string {
	return strings.Join([]string{
		a.BookRef,
		a.BookMD5,
		a.BookID,
		strings.TrimSpace(a.BookTitle),
		strings.TrimSpace(a.BookAuthors),
		string(a.Kind()),
		strings.TrimSpace(a.Text),
		strings.TrimSpace(a.Note),
		strings.TrimSpace(a.Chapter),
		a.PageNo,
		a.Page,
		a.Pos0,
		a.Pos1,
		strings.TrimSpace(a.Timestamp()),
	}, "||")
}

// Annotations keeps the first annotation per fingerprint, in input order.
func Annotations(items []models.Annotation) []models.Annotation {
	out, _ := AnnotationsWithStats(items)
	return out
}

// AnnotationsWithStats is Annotations plus a summary of the pass.
func AnnotationsWithStats(items []models.Annotation) ([]models.Annotation, Stats) {
	seen := make(map[string]bool, len(items))
	out := make([]models.Annotation, 0, len(items))
	for _, a := range items {
		fp := Fingerprint(a)
		if seen[fp] {
			continue
		}
		seen[fp] = true
		out = append(out, a)
	}
	return out, newStats(len(items), len(out))
}
