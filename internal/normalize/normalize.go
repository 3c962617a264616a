// Package normalize canonicalizes free-text titles and authors into keys
// that can be compared across independently sourced book records.
package normalize

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Watermarks are distributor tags that get baked into file-derived titles
// (e.g. "Dune (z-library)") and must not influence matching.
var Watermarks = []string{"z-library", "zlibrary", "1lib.sk", "z-lib.sk"}

var (
	apostropheRe = regexp.MustCompile(`['\x{2018}\x{2019}]`)
	watermarkRe  = buildWatermarkRe(Watermarks)
	parenRe      = regexp.MustCompile(`\([^)]*\)`)
	bracketRe    = regexp.MustCompile(`\[[^\]]*\]`)
	separatorRe  = regexp.MustCompile(`[^\p{L}\p{N}]+`)
)

func buildWatermarkRe(marks []string) *regexp.Regexp {
	quoted := make([]string, 0, len(marks))
	for _, m := range marks {
		quoted = append(quoted, regexp.QuoteMeta(m))
	}
	return regexp.MustCompile(strings.Join(quoted, "|"))
}

// lower applies Unicode lowercasing without any locale-specific rules.
// A Caser keeps internal state, so one is created per call.
func lower(s string) string {
	return cases.Lower(language.Und).String(s)
}

// Title trims and lowercases s. It is the fast "loose equality" key used
// by the title-only index.
func Title(s string) string {
	return lower(strings.TrimSpace(s))
}

// LooseTitle returns the canonical matching key for a title or an author
// string. Watermarks, parenthesized and bracketed asides, and apostrophes
// are removed, every run of characters that is not a letter or digit
// becomes a single space, and the result is trimmed.
//
// Apostrophes are removed before watermarks so that the output can never
// contain a watermark assembled by the removal; this keeps the function
// idempotent.
func LooseTitle(s string) string {
	if s == "" {
		return ""
	}
	s = lower(s)
	s = apostropheRe.ReplaceAllString(s, "")
	s = watermarkRe.ReplaceAllString(s, " ")
	s = parenRe.ReplaceAllString(s, " ")
	s = bracketRe.ReplaceAllString(s, " ")
	s = separatorRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// TitleAuthorKey builds the composite "title::author" key from loose
// normalizations of both fields. An all-empty key is returned as "::" and
// must never be indexed.
func TitleAuthorKey(title, authors string) string {
	return LooseTitle(title) + "::" + LooseTitle(authors)
}

// EmptyTitleAuthorKey is the composite key of a record with neither a
// usable title nor author.
const EmptyTitleAuthorKey = "::"
