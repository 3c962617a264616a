package models

import "strings"

// CatalogBook is one book from the primary library source.
type CatalogBook struct {
	ID             string  `json:"id" yaml:"id" parquet:"id"`
	Title          string  `json:"title" yaml:"title" parquet:"title"`
	Authors        string  `json:"authors" yaml:"authors" parquet:"authors"`
	MD5            string  `json:"md5,omitempty" yaml:"md5,omitempty" parquet:"md5,optional"`
	Pages          int     `json:"pages" yaml:"pages" parquet:"pages"`
	Percent        float64 `json:"percent" yaml:"percent" parquet:"percent"` // 0-100
	Highlights     int     `json:"highlights" yaml:"highlights" parquet:"highlights"`
	Notes          int     `json:"notes" yaml:"notes" parquet:"notes"`
	LastOpenTS     int64   `json:"last_open_ts" yaml:"last_open_ts" parquet:"last_open_ts"`
	Status         string  `json:"status" yaml:"status" parquet:"status"`
	CoverAvailable bool    `json:"cover_available" yaml:"cover_available" parquet:"cover_available"`
}

// StatsBook is one book as seen by the reading-activity tracker.
type StatsBook struct {
	ID            string `json:"id,omitempty" yaml:"id,omitempty" parquet:"id,optional"`
	Title         string `json:"title" yaml:"title" parquet:"title"`
	Authors       string `json:"authors" yaml:"authors" parquet:"authors"`
	MD5           string `json:"md5,omitempty" yaml:"md5,omitempty" parquet:"md5,optional"`
	Pages         int    `json:"pages" yaml:"pages" parquet:"pages"`
	TotalReadTime int64  `json:"total_read_time" yaml:"total_read_time" parquet:"total_read_time"` // seconds
}

// IsZero reports whether the record carries no data at all.
func (s StatsBook) IsZero() bool {
	return s == StatsBook{}
}

// AnnotationKind classifies an annotation. It is always derived, never stored.
type AnnotationKind string

const (
	KindNote      AnnotationKind = "note"
	KindHighlight AnnotationKind = "highlight"
	KindBookmark  AnnotationKind = "bookmark"
)

// Annotation is a highlight, note or bookmark attached to a book.
type Annotation struct {
	BookRef         string `json:"book_ref,omitempty" yaml:"book_ref,omitempty"`
	BookID          string `json:"book_id,omitempty" yaml:"book_id,omitempty"`
	BookMD5         string `json:"book_md5,omitempty" yaml:"book_md5,omitempty"`
	BookTitle       string `json:"book_title" yaml:"book_title"`
	BookAuthors     string `json:"book_authors" yaml:"book_authors"`
	Text            string `json:"text,omitempty" yaml:"text,omitempty"`
	Note            string `json:"note,omitempty" yaml:"note,omitempty"`
	Chapter         string `json:"chapter,omitempty" yaml:"chapter,omitempty"`
	PageNo          string `json:"pageno,omitempty" yaml:"pageno,omitempty"`
	Page            string `json:"page,omitempty" yaml:"page,omitempty"`
	Pos0            string `json:"pos0,omitempty" yaml:"pos0,omitempty"`
	Pos1            string `json:"pos1,omitempty" yaml:"pos1,omitempty"`
	Datetime        string `json:"datetime,omitempty" yaml:"datetime,omitempty"`
	DatetimeUpdated string `json:"datetime_updated,omitempty" yaml:"datetime_updated,omitempty"`
	Color           string `json:"color,omitempty" yaml:"color,omitempty"`
	Drawer          string `json:"drawer,omitempty" yaml:"drawer,omitempty"`
}

// Kind derives the annotation kind: text and note make a note, text alone a
// highlight, and anything else a bookmark.
func (a Annotation) Kind() AnnotationKind {
	hasText := strings.TrimSpace(a.Text) != ""
	hasNote := strings.TrimSpace(a.Note) != ""
	switch {
	case hasText && hasNote:
		return KindNote
	case hasText:
		return KindHighlight
	default:
		return KindBookmark
	}
}

// Timestamp returns the creation time string, falling back to the update time.
func (a Annotation) Timestamp() string {
	if a.Datetime != "" {
		return a.Datetime
	}
	return a.DatetimeUpdated
}

// Identity returns the display identity the annotation points at.
func (a Annotation) Identity() BookIdentity {
	return BookIdentity{
		BookRef: a.BookRef,
		BookID:  a.BookID,
		MD5:     a.BookMD5,
		Title:   a.BookTitle,
		Authors: a.BookAuthors,
	}
}

// BookIdentity is the subset of fields any record can carry to identify a
// book for display purposes.
type BookIdentity struct {
	BookRef  string `json:"book_ref,omitempty" yaml:"book_ref,omitempty"`
	BookID   string `json:"book_id,omitempty" yaml:"book_id,omitempty"`
	MD5      string `json:"md5,omitempty" yaml:"md5,omitempty"`
	Title    string `json:"title" yaml:"title"`
	Authors  string `json:"authors" yaml:"authors"`
	CoverURL string `json:"cover_url,omitempty" yaml:"cover_url,omitempty"`
}

// TopBook is one entry of a ranked book list.
type TopBook struct {
	BookIdentity `yaml:",inline"`
	DurationSec  int64 `json:"duration_sec" yaml:"duration_sec"`
	Pages        int   `json:"pages" yaml:"pages"`
}

// DailyRecord holds the reading totals of one calendar day.
type DailyRecord struct {
	Date        string    `json:"date" yaml:"date" parquet:"date"` // YYYY-MM-DD, source-local
	DurationSec int64     `json:"duration_sec" yaml:"duration_sec" parquet:"duration_sec"`
	Sessions    int       `json:"sessions,omitempty" yaml:"sessions,omitempty" parquet:"sessions"`
	BooksCount  int       `json:"books_count,omitempty" yaml:"books_count,omitempty" parquet:"books_count"`
	Pages       int       `json:"pages,omitempty" yaml:"pages,omitempty" parquet:"pages"`
	TopBooks    []TopBook `json:"top_books,omitempty" yaml:"top_books,omitempty" parquet:"-"`
}

// Session is a single reading session.
type Session struct {
	BookRef    string `json:"book_ref,omitempty" yaml:"book_ref,omitempty" parquet:"book_ref,optional"`
	Date       string `json:"date,omitempty" yaml:"date,omitempty" parquet:"date,optional"`
	StartTime  int64  `json:"start_time" yaml:"start_time" parquet:"start_time"` // epoch seconds
	Duration   int64  `json:"duration" yaml:"duration" parquet:"duration"`
	Page       int    `json:"page" yaml:"page" parquet:"page"`
	TotalPages int    `json:"total_pages" yaml:"total_pages" parquet:"total_pages"`
}

// HourlyBucket is the reading time that fell into one hour of the day.
type HourlyBucket struct {
	Hour        int   `json:"hour" yaml:"hour"`
	DurationSec int64 `json:"duration_sec" yaml:"duration_sec"`
	Sessions    int   `json:"sessions" yaml:"sessions"`
}

// WeekdayPoint is the average reading time for one weekday.
type WeekdayPoint struct {
	Weekday     string `json:"weekday" yaml:"weekday"`
	DurationSec int64  `json:"duration_sec" yaml:"duration_sec"`
}

// MonthlyPoint is the reading total for one year-month.
type MonthlyPoint struct {
	Month       string `json:"month" yaml:"month"` // YYYY-MM
	DurationSec int64  `json:"duration_sec" yaml:"duration_sec"`
	DaysRead    int    `json:"days_read" yaml:"days_read"`
}
