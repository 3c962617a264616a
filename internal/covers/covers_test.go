package covers

import (
	"testing"

	"github.com/lehigh-university-libraries/readstats/internal/models"
)

func TestURLBuilder(t *testing.T) {
	tests := []struct {
		name     string
		builder  URLBuilder
		ref      string
		expected string
	}{
		{name: "relative", builder: URLBuilder{}, ref: "42", expected: "/api/books/42/cover?v=0"},
		{name: "base and version", builder: URLBuilder{BaseURL: "http://host:8080/", Version: 3}, ref: "42", expected: "http://host:8080/api/books/42/cover?v=3"},
		{name: "escapes reference", builder: URLBuilder{}, ref: " a/b c ", expected: "/api/books/a%2Fb%20c/cover?v=0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.builder.URL(tt.ref); got != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	books := []models.CatalogBook{
		{ID: "dune", Title: "Dune", Authors: "Frank Herbert", MD5: "m1"},
		{ID: "dune-dup", Title: "Dune", Authors: "Frank Herbert", MD5: "m1"},
		{ID: "emma", Title: "Emma", Authors: "Jane Austen"},
	}
	r := NewResolver(books, URLBuilder{})

	tests := []struct {
		name     string
		input    models.BookIdentity
		ok       bool
		bookID   string
		coverURL string
	}{
		{
			name:     "explicit book ref",
			input:    models.BookIdentity{BookRef: "ref-9", Title: "Dune"},
			ok:       true,
			coverURL: "/api/books/ref-9/cover?v=0",
		},
		{
			name:     "explicit book id",
			input:    models.BookIdentity{BookID: "id-9"},
			ok:       true,
			bookID:   "id-9",
			coverURL: "/api/books/id-9/cover?v=0",
		},
		{
			name:     "md5 first wins",
			input:    models.BookIdentity{MD5: "m1"},
			ok:       true,
			bookID:   "dune",
			coverURL: "/api/books/dune/cover?v=0",
		},
		{
			name:     "title and author without ids",
			input:    models.BookIdentity{Title: "Dune", Authors: "Frank Herbert"},
			ok:       true,
			bookID:   "dune",
			coverURL: "/api/books/dune/cover?v=0",
		},
		{
			name:     "loose title only",
			input:    models.BookIdentity{Title: "EMMA (z-library)", Authors: "Someone Else"},
			ok:       true,
			bookID:   "emma",
			coverURL: "/api/books/emma/cover?v=0",
		},
		{
			name:  "unresolvable",
			input: models.BookIdentity{Title: "Foundation"},
			ok:    false,
		},
		{
			name:  "nothing to go on",
			input: models.BookIdentity{},
			ok:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := r.Resolve(tt.input)
			if ok != tt.ok {
				t.Fatalf("Expected ok=%v, got %v", tt.ok, ok)
			}
			if !ok {
				if got != tt.input {
					t.Errorf("Expected unchanged identity, got %+v", got)
				}
				return
			}
			if got.BookID != tt.bookID {
				t.Errorf("Expected book id %q, got %q", tt.bookID, got.BookID)
			}
			if got.CoverURL != tt.coverURL {
				t.Errorf("Expected cover %q, got %q", tt.coverURL, got.CoverURL)
			}
		})
	}
}

func TestResolveTopBooksDoesNotMutate(t *testing.T) {
	r := NewResolver([]models.CatalogBook{{ID: "dune", Title: "Dune", Authors: "Frank Herbert"}}, URLBuilder{Version: 2})
	in := []models.TopBook{{BookIdentity: models.BookIdentity{Title: "Dune", Authors: "Frank Herbert"}, DurationSec: 60}}

	out := r.ResolveTopBooks(in)
	if in[0].CoverURL != "" {
		t.Error("Input must not be mutated")
	}
	if out[0].CoverURL != "/api/books/dune/cover?v=2" || out[0].DurationSec != 60 {
		t.Errorf("Unexpected resolved entry: %+v", out[0])
	}
}
