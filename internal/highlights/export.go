package highlights

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/lehigh-university-libraries/readstats/internal/analytics"
)

const displayTime = "Jan 2, 2006, 03:04 PM"

func oneLine(s string) string {
	return strings.ReplaceAll(s, "\n", " ")
}

// Markdown renders the groups as a markdown document.
func Markdown(groups []Group, exportedAt time.Time) string {
	loc := exportedAt.Location()
	items := 0
	for _, g := range groups {
		items += len(g.Items)
	}

	lines := []string{
		"# Highlights Export",
		"",
		"Exported: " + exportedAt.Format(displayTime),
		fmt.Sprintf("Books: %d", len(groups)),
		fmt.Sprintf("Items: %d", items),
		"",
	}

	for _, g := range groups {
		title := g.Title
		if title == "" {
			title = "Untitled"
		}
		lines = append(lines, "## "+oneLine(title))
		if g.Authors != "" {
			lines = append(lines, "Author: "+oneLine(g.Authors))
		}
		lines = append(lines, "")

		for i, a := range g.Items {
			lines = append(lines, fmt.Sprintf("### %d. %s", i+1, a.Kind()))
			if a.Datetime != "" {
				when := a.Datetime
				if t, ok := analytics.ParseTimestamp(a.Datetime, loc); ok {
					when = t.Format(displayTime)
				}
				lines = append(lines, "- Date: "+when)
			}
			if a.Chapter != "" {
				lines = append(lines, "- Chapter: "+oneLine(a.Chapter))
			}
			if a.PageNo != "" {
				lines = append(lines, "- Page: "+a.PageNo)
			}
			if a.Color != "" {
				lines = append(lines, "- Color: "+a.Color)
			}
			lines = append(lines, "")
			if a.Text != "" {
				lines = append(lines, "> "+strings.ReplaceAll(a.Text, "\n", "\n> "), "")
			}
			if a.Note != "" {
				lines = append(lines, "Note:", a.Note, "")
			}
		}
		lines = append(lines, "")
	}

	return strings.TrimSpace(strings.Join(lines, "\n")) + "\n"
}

// ExportRow is one annotation in the JSON export.
type ExportRow struct {
	BookID      string `json:"book_id"`
	BookRef     string `json:"book_ref"`
	BookMD5     string `json:"book_md5"`
	BookTitle   string `json:"book_title"`
	BookAuthors string `json:"book_authors"`
	Type        string `json:"type"`
	Color       string `json:"color"`
	Chapter     string `json:"chapter"`
	Page        string `json:"page"`
	Datetime    string `json:"datetime"`
	Text        string `json:"text"`
	Note        string `json:"note"`
	Drawer      string `json:"drawer"`
}

// Export is the JSON export document.
type Export struct {
	ExportedAt string      `json:"exported_at"`
	Books      int         `json:"books"`
	Items      int         `json:"items"`
	Rows       []ExportRow `json:"rows"`
}

// NewExport flattens groups into export rows.
func NewExport(groups []Group, exportedAt time.Time) Export {
	exp := Export{
		ExportedAt: exportedAt.UTC().Format(time.RFC3339Nano),
		Books:      len(groups),
		Rows:       []ExportRow{},
	}
	for _, g := range groups {
		for _, a := range g.Items {
			ref := g.BookRef
			if ref == "" {
				ref = a.BookRef
			}
			md5 := g.BookMD5
			if md5 == "" {
				md5 = a.BookMD5
			}
			exp.Rows = append(exp.Rows, ExportRow{
				BookID:      g.ID,
				BookRef:     ref,
				BookMD5:     md5,
				BookTitle:   g.Title,
				BookAuthors: g.Authors,
				Type:        string(a.Kind()),
				Color:       a.Color,
				Chapter:     a.Chapter,
				Page:        a.PageNo,
				Datetime:    a.Timestamp(),
				Text:        a.Text,
				Note:        a.Note,
				Drawer:      a.Drawer,
			})
		}
	}
	exp.Items = len(exp.Rows)
	return exp
}

// JSON renders the groups as an indented JSON export.
func JSON(groups []Group, exportedAt time.Time) ([]byte, error) {
	data, err := json.MarshalIndent(NewExport(groups, exportedAt), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal highlights export: %w", err)
	}
	return data, nil
}

var markdown = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		extension.Typographer,
	),
)

var page = template.Must(template.New("highlights").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{.Title}}</title>
  <style>
    body {
      font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', sans-serif;
      margin: 0 auto;
      padding: 2rem;
      max-width: 900px;
      line-height: 1.7;
    }
    blockquote {
      border-left: 3px solid #d4a72c;
      margin-left: 0;
      padding-left: 1rem;
    }
  </style>
</head>
<body>
  <article>{{.Content}}</article>
</body>
</html>`))

// HTML renders the markdown export as a standalone HTML page. Raw HTML in
// annotation text is escaped.
func HTML(groups []Group, exportedAt time.Time) ([]byte, error) {
	var body bytes.Buffer
	if err := markdown.Convert([]byte(Markdown(groups, exportedAt)), &body); err != nil {
		return nil, fmt.Errorf("failed to convert highlights markdown: %w", err)
	}

	var out bytes.Buffer
	err := page.Execute(&out, struct {
		Title   string
		Content template.HTML
	}{
		Title:   "Highlights Export",
		Content: template.HTML(body.String()),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render highlights page: %w", err)
	}
	return out.Bytes(), nil
}
