package matching

import (
	"strings"

	"github.com/lehigh-university-libraries/readstats/internal/models"
	"github.com/lehigh-university-libraries/readstats/internal/normalize"
)

// Method names the resolution step that produced a match.
type Method string

const (
	MethodNone        Method = ""
	MethodMD5         Method = "md5"
	MethodTitleAuthor Method = "title_author"
	MethodTitle       Method = "title"
	MethodFuzzy       Method = "fuzzy"
)

// Fuzzy scoring weights.
const (
	ScoreTitleEqual     = 100
	ScoreTitleContains  = 55
	ScoreAuthorEqual    = 25
	ScoreAuthorContains = 12
	ScorePagesEqual     = 20

	// MinFuzzyScore is the lowest fuzzy score accepted as a match. Author
	// and page agreement together stay below it.
	MinFuzzyScore = 40
)

// Score is the breakdown of one fuzzy comparison.
type Score struct {
	Title   int `json:"title" yaml:"title"`
	Authors int `json:"authors" yaml:"authors"`
	Pages   int `json:"pages" yaml:"pages"`
}

// Total sums the components.
func (s Score) Total() int {
	return s.Title + s.Authors + s.Pages
}

// FindBestStatsMatch returns the statistics record that best corresponds to
// book. Exact md5, loose title+author and plain title lookups are tried in
// that order before falling back to fuzzy scoring over every candidate. A
// nil idx is built from stats.
func FindBestStatsMatch(book models.CatalogBook, stats []models.StatsBook, idx *Index) (models.StatsBook, bool) {
	s, method := match(book, stats, idx)
	return s, method != MethodNone
}

func match(book models.CatalogBook, stats []models.StatsBook, idx *Index) (models.StatsBook, Method) {
	if idx == nil {
		idx = BuildIndex(stats)
	}

	if book.MD5 != "" {
		if s, ok := lookup(idx.ByMD5, book.MD5); ok {
			return s, MethodMD5
		}
	}
	if key := normalize.TitleAuthorKey(book.Title, book.Authors); key != normalize.EmptyTitleAuthorKey {
		if s, ok := lookup(idx.ByTitleAuthor, key); ok {
			return s, MethodTitleAuthor
		}
	}
	if s, ok := lookup(idx.ByTitle, normalize.Title(book.Title)); ok {
		return s, MethodTitle
	}

	if normalize.LooseTitle(book.Title) == "" {
		return models.StatsBook{}, MethodNone
	}

	var best models.StatsBook
	bestScore := 0
	for _, s := range stats {
		if normalize.LooseTitle(s.Title) == "" {
			continue
		}
		// strictly greater keeps the earliest candidate on ties
		if score := Explain(book, s).Total(); score > bestScore {
			bestScore = score
			best = s
		}
	}
	if bestScore < MinFuzzyScore {
		return models.StatsBook{}, MethodNone
	}
	return best, MethodFuzzy
}

// Explain scores candidate against book using the fuzzy weights. Titles
// and authors are compared in their loose form; authors only count when
// both sides have one.
func Explain(book models.CatalogBook, candidate models.StatsBook) Score {
	var score Score

	bt := normalize.LooseTitle(book.Title)
	st := normalize.LooseTitle(candidate.Title)
	if bt != "" && st != "" {
		switch {
		case bt == st:
			score.Title = ScoreTitleEqual
		case strings.Contains(st, bt) || strings.Contains(bt, st):
			score.Title = ScoreTitleContains
		}
	}

	ba := normalize.LooseTitle(book.Authors)
	sa := normalize.LooseTitle(candidate.Authors)
	if ba != "" && sa != "" {
		switch {
		case ba == sa:
			score.Authors = ScoreAuthorEqual
		case strings.Contains(sa, ba) || strings.Contains(ba, sa):
			score.Authors = ScoreAuthorContains
		}
	}

	if book.Pages > 0 && candidate.Pages > 0 && book.Pages == candidate.Pages {
		score.Pages = ScorePagesEqual
	}
	return score
}
