// Package library builds the books view: status tags, search, filters and
// sorting over the canonical catalog.
package library

import (
	"sort"
	"strings"

	"github.com/lehigh-university-libraries/readstats/internal/models"
	"github.com/lehigh-university-libraries/readstats/internal/normalize"
)

type Status string

const (
	StatusFinished Status = "finished"
	StatusReading  Status = "reading"
	StatusQueued   Status = "queued"
)

// StatusTag classifies a book: a finished or complete status wins, then any
// progress means reading.
func StatusTag(b models.CatalogBook) Status {
	switch strings.ToLower(b.Status) {
	case "finished", "complete":
		return StatusFinished
	}
	if b.Percent > 0 {
		return StatusReading
	}
	return StatusQueued
}

type Filter string

const (
	FilterAll         Filter = "all"
	FilterReading     Filter = "reading"
	FilterFinished    Filter = "finished"
	FilterHighlighted Filter = "highlighted"
)

type SortKey string

const (
	SortTitle         SortKey = "title"
	SortPercent       SortKey = "percent"
	SortHighlights    SortKey = "highlights"
	SortTotalReadTime SortKey = "total_read_time"
	SortLastOpen      SortKey = "last_open_ts"
)

type SortDir string

const (
	Asc  SortDir = "asc"
	Desc SortDir = "desc"
)

// Options selects and orders the books view. Zero values mean all books,
// most recently opened first.
type Options struct {
	Query   string  `json:"query" yaml:"query"`
	Filter  Filter  `json:"filter" yaml:"filter"`
	SortKey SortKey `json:"sort_key" yaml:"sort_key"`
	SortDir SortDir `json:"sort_dir" yaml:"sort_dir"`
}

// FilterBooks keeps the books matching filter whose title or authors
// contain query, case-insensitively.
func FilterBooks(books []models.CatalogBook, query string, filter Filter) []models.CatalogBook {
	q := normalize.Title(query)
	out := make([]models.CatalogBook, 0, len(books))
	for _, b := range books {
		if q != "" && !strings.Contains(normalize.Title(b.Title+" "+b.Authors), q) {
			continue
		}
		switch filter {
		case FilterReading:
			if StatusTag(b) != StatusReading {
				continue
			}
		case FilterFinished:
			if StatusTag(b) != StatusFinished {
				continue
			}
		case FilterHighlighted:
			if b.Highlights <= 0 {
				continue
			}
		}
		out = append(out, b)
	}
	return out
}

// SortBooks returns a sorted copy of books. readTime resolves the tracked
// reading time of a book and is only consulted for SortTotalReadTime; it
// may be nil. Equal keys keep their input order.
func SortBooks(books []models.CatalogBook, key SortKey, dir SortDir, readTime func(models.CatalogBook) int64) []models.CatalogBook {
	out := append([]models.CatalogBook(nil), books...)
	desc := dir != Asc

	var less func(a, b models.CatalogBook) bool
	switch key {
	case SortTitle:
		less = func(a, b models.CatalogBook) bool { return strings.ToLower(a.Title) < strings.ToLower(b.Title) }
	case SortPercent:
		less = func(a, b models.CatalogBook) bool { return a.Percent < b.Percent }
	case SortHighlights:
		less = func(a, b models.CatalogBook) bool { return a.Highlights < b.Highlights }
	case SortTotalReadTime:
		times := make(map[int]int64, len(out))
		if readTime != nil {
			for i, b := range out {
				times[i] = readTime(b)
			}
		}
		idx := make([]int, len(out))
		for i := range idx {
			idx[i] = i
		}
		sort.SliceStable(idx, func(i, j int) bool {
			if desc {
				return times[idx[i]] > times[idx[j]]
			}
			return times[idx[i]] < times[idx[j]]
		})
		sorted := make([]models.CatalogBook, len(out))
		for i, k := range idx {
			sorted[i] = out[k]
		}
		return sorted
	default:
		less = func(a, b models.CatalogBook) bool { return a.LastOpenTS < b.LastOpenTS }
	}

	sort.SliceStable(out, func(i, j int) bool {
		if desc {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
	return out
}

// Apply filters and sorts books according to opts.
func Apply(books []models.CatalogBook, opts Options, readTime func(models.CatalogBook) int64) []models.CatalogBook {
	return SortBooks(FilterBooks(books, opts.Query, opts.Filter), opts.SortKey, opts.SortDir, readTime)
}
