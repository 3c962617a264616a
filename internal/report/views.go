package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/readstats/internal/analytics"
	"github.com/lehigh-university-libraries/readstats/internal/dedupe"
	"github.com/lehigh-university-libraries/readstats/internal/highlights"
	"github.com/lehigh-university-libraries/readstats/internal/matching"
	"github.com/lehigh-university-libraries/readstats/internal/models"
	"github.com/lehigh-university-libraries/readstats/internal/views"
)

const titleWidth = 48

func percent(p float64) string {
	return strconv.FormatFloat(p, 'f', 0, 64) + "%"
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

// Books lists the library view.
func Books(v views.BooksView) Report {
	r := Report{
		Title: "Library",
		Summary: []Field{
			{"Books", fmt.Sprintf("%d of %d", len(v.Books), v.Total)},
			{"Duplicates collapsed", itoa(v.Dedupe.Collapsed)},
		},
		Table: Table{Header: []string{"ID", "Title", "Authors", "Status", "Progress", "Highlights", "Read Time"}},
		Data:  v,
	}
	for _, b := range v.Books {
		r.Table.Rows = append(r.Table.Rows, []string{
			b.ID,
			truncate(b.Title, titleWidth),
			truncate(b.Authors, 32),
			string(b.StatusTag),
			percent(b.Percent),
			itoa(b.Highlights),
			analytics.FormatDuration(b.TotalReadTime()),
		})
	}
	return r
}

// DedupeEntry is one canonical book and the key it was grouped under.
type DedupeEntry struct {
	Key   string             `json:"key" yaml:"key"`
	Score int                `json:"score" yaml:"score"`
	Book  models.CatalogBook `json:"book" yaml:"book"`
}

type DedupeResult struct {
	Stats dedupe.Stats  `json:"stats" yaml:"stats"`
	Books []DedupeEntry `json:"books" yaml:"books"`
}

// Dedupe reports the canonical books left after collapsing duplicates.
func Dedupe(books []models.CatalogBook) Report {
	canonical, stats := dedupe.BooksWithStats(books)
	result := DedupeResult{Stats: stats, Books: make([]DedupeEntry, 0, len(canonical))}
	for _, b := range canonical {
		result.Books = append(result.Books, DedupeEntry{Key: dedupe.BookKey(b), Score: dedupe.CanonicalScore(b), Book: b})
	}

	r := Report{
		Title: "Catalog Deduplication",
		Summary: []Field{
			{"Input", itoa(stats.Input)},
			{"Canonical", itoa(stats.Output)},
			{"Collapsed", itoa(stats.Collapsed)},
		},
		Table: Table{Header: []string{"ID", "Title", "Key", "Score"}},
		Data:  result,
	}
	for _, e := range result.Books {
		r.Table.Rows = append(r.Table.Rows, []string{e.Book.ID, truncate(e.Book.Title, titleWidth), e.Key, itoa(e.Score)})
	}
	return r
}

// Match reports which statistics record every catalog book resolved to.
func Match(books []models.CatalogBook, stats []models.StatsBook) Report {
	enriched := matching.Enrich(books, stats)

	matched := 0
	byMethod := map[matching.Method]int{}
	for _, e := range enriched {
		if e.MatchedBy != matching.MethodNone {
			matched++
			byMethod[e.MatchedBy]++
		}
	}

	r := Report{
		Title: "Statistics Matching",
		Summary: []Field{
			{"Books", itoa(len(enriched))},
			{"Matched", itoa(matched)},
		},
		Table: Table{Header: []string{"ID", "Title", "Method", "Stats Title", "Read Time"}},
		Data:  enriched,
	}
	for _, m := range []matching.Method{matching.MethodMD5, matching.MethodTitleAuthor, matching.MethodTitle, matching.MethodFuzzy} {
		r.Summary = append(r.Summary, Field{"By " + string(m), itoa(byMethod[m])})
	}
	for _, e := range enriched {
		statsTitle := ""
		if e.Stats != nil {
			statsTitle = e.Stats.Title
		}
		method := string(e.MatchedBy)
		if method == "" {
			method = "-"
		}
		r.Table.Rows = append(r.Table.Rows, []string{
			e.ID,
			truncate(e.Title, titleWidth),
			method,
			truncate(statsTitle, titleWidth),
			analytics.FormatDuration(e.TotalReadTime()),
		})
	}
	return r
}

// Stats summarizes a trend window and lists its days.
func Stats(v views.StatsView) Report {
	r := Report{
		Title: fmt.Sprintf("Reading Stats (%d days)", v.TrendDays),
		Summary: []Field{
			{"Total", analytics.FormatDuration(v.Summary.TotalSec)},
			{"Active days", itoa(v.Summary.ActiveDays)},
			{"Longest day", analytics.FormatDuration(v.Summary.LongestDaySec)},
			{"Current streak", itoa(v.Streaks.Current)},
			{"Best streak", itoa(v.Streaks.Best)},
			{"Books touched", itoa(v.BooksTouched)},
		},
		Table: Table{Header: []string{"Date", "Duration", "Pages"}},
		Data:  v,
	}
	if len(v.TopByTime) > 0 {
		r.Summary = append(r.Summary, Field{"Top book", fmt.Sprintf("%s (%s)", v.TopByTime[0].Title, analytics.FormatDuration(v.TopByTime[0].DurationSec))})
	}
	if v.Insight.Title != "" {
		r.Summary = append(r.Summary, Field{"Insight", v.Insight.Title + ". " + v.Insight.Body})
	}
	for _, d := range v.Trend {
		r.Table.Rows = append(r.Table.Rows, []string{d.Date, analytics.FormatDuration(d.DurationSec), itoa(d.Pages)})
	}
	return r
}

// Calendar lists the active days of a month.
func Calendar(c analytics.Calendar) Report {
	r := Report{
		Title: "Calendar " + c.Label,
		Summary: []Field{
			{"Read days", itoa(c.ReadDays)},
			{"Total", analytics.FormatDuration(c.DurationSec)},
		},
		Table: Table{Header: []string{"Date", "Duration", "Books", "Intensity", "Top Book"}},
		Data:  c,
	}
	if c.Selected != nil {
		r.Summary = append(r.Summary, Field{"Selected", fmt.Sprintf("%s (%s)", c.Selected.Date, analytics.FormatDurationLong(c.Selected.DurationSec))})
	}
	for _, cell := range c.Cells {
		if cell.Muted || !cell.Active {
			continue
		}
		top := ""
		if len(cell.TopBooks) > 0 {
			top = truncate(cell.TopBooks[0].Title, titleWidth)
		}
		r.Table.Rows = append(r.Table.Rows, []string{
			cell.Date,
			analytics.FormatDuration(cell.DurationSec),
			itoa(cell.BooksCount),
			strconv.FormatFloat(cell.Intensity, 'f', 2, 64),
			top,
		})
	}
	return r
}

// Heatmap reports a book's activity grid and its reading milestones.
func Heatmap(d views.BookDetail) Report {
	r := Report{
		Title: d.Title,
		Summary: []Field{
			{"Authors", d.Authors},
			{"Range", d.Heatmap.Start + " to " + d.Heatmap.End},
			{"Active days", itoa(d.Heatmap.ActiveDays)},
			{"Total", analytics.FormatDuration(d.Heatmap.TotalDuration)},
			{"Sessions", itoa(d.Timeline.Sessions)},
			{"Annotations", itoa(d.Timeline.Annotations)},
		},
		Table: Table{Header: []string{"Date", "Duration", "Sessions", "Pages", "Annotations"}},
		Data:  d,
	}
	for _, m := range d.Timeline.Milestones {
		r.Summary = append(r.Summary, Field{m.Label, strings.TrimSpace(m.At.Format(time.DateTime) + " " + m.Meta)})
	}
	for _, cell := range d.Heatmap.Cells {
		if !cell.InRange || !cell.Active {
			continue
		}
		r.Table.Rows = append(r.Table.Rows, []string{
			cell.Date,
			analytics.FormatDuration(cell.DurationSec),
			itoa(cell.Sessions),
			itoa(cell.Pages),
			itoa(cell.Annotations),
		})
	}
	return r
}

// Highlights lists grouped annotations, one row per item.
func Highlights(res highlights.Result) Report {
	r := Report{
		Title: "Highlights",
		Summary: []Field{
			{"Books", itoa(len(res.Groups))},
			{"Items", itoa(res.Items)},
			{"Duplicates collapsed", itoa(res.Dedupe.Collapsed)},
		},
		Table: Table{Header: []string{"Book", "Kind", "Chapter", "Date", "Text"}},
		Data:  res,
	}
	for _, g := range res.Groups {
		for _, a := range g.Items {
			r.Table.Rows = append(r.Table.Rows, []string{
				truncate(g.Title, 32),
				string(a.Kind()),
				truncate(a.Chapter, 24),
				a.Datetime,
				truncate(strings.Join(strings.Fields(a.Text), " "), 80),
			})
		}
	}
	return r
}
