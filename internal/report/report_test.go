package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/lehigh-university-libraries/readstats/internal/models"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input    string
		expected Format
		wantErr  bool
	}{
		{input: "", expected: Text},
		{input: "TEXT", expected: Text},
		{input: "json", expected: JSON},
		{input: "yml", expected: YAML},
		{input: "csv", expected: CSV},
		{input: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrUnsupportedFormat) {
					t.Errorf("Expected ErrUnsupportedFormat, got %v", err)
				}
				return
			}
			if err != nil || got != tt.expected {
				t.Errorf("Expected %s, got %s (%v)", tt.expected, got, err)
			}
		})
	}
}

func sampleReport() Report {
	return Report{
		Title:   "Sample",
		Summary: []Field{{"Books", "2"}, {"Longest label", "x"}},
		Table: Table{
			Header: []string{"ID", "Title"},
			Rows:   [][]string{{"a", "Dune"}, {"b", "Emma, or Highbury"}},
		},
		Data: map[string]int{"books": 2},
	}
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, Text, sampleReport()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	expected := strings.Join([]string{
		strings.Repeat("=", 40),
		"Sample",
		strings.Repeat("=", 40),
		"Books:         2",
		"Longest label: x",
		"",
		"ID  Title",
		"a   Dune",
		"b   Emma, or Highbury",
		"",
	}, "\n")
	if buf.String() != expected {
		t.Errorf("Expected:\n%s\ngot:\n%s", expected, buf.String())
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, CSV, sampleReport()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	expected := "ID,Title\na,Dune\nb,\"Emma, or Highbury\"\n"
	if buf.String() != expected {
		t.Errorf("Expected %q, got %q", expected, buf.String())
	}

	buf.Reset()
	summaryOnly := Report{Summary: []Field{{"Books", "2"}}}
	if err := Write(&buf, CSV, summaryOnly); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if buf.String() != "Field,Value\nBooks,2\n" {
		t.Errorf("Unexpected summary CSV %q", buf.String())
	}
}

func TestWriteStructured(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, JSON, sampleReport()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if buf.String() != "{\n  \"books\": 2\n}\n" {
		t.Errorf("Unexpected JSON %q", buf.String())
	}

	buf.Reset()
	if err := Write(&buf, YAML, sampleReport()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if buf.String() != "books: 2\n" {
		t.Errorf("Unexpected YAML %q", buf.String())
	}

	if err := Write(&buf, Format("xml"), sampleReport()); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestDedupe(t *testing.T) {
	books := []models.CatalogBook{
		{ID: "a", Title: "Dune", MD5: "m1", LastOpenTS: 2},
		{ID: "a2", Title: "Dune", MD5: "m1", LastOpenTS: 1},
		{ID: "b", Title: "Emma"},
	}
	r := Dedupe(books)

	result, ok := r.Data.(DedupeResult)
	if !ok {
		t.Fatalf("Unexpected data %T", r.Data)
	}
	if result.Stats.Collapsed != 1 || len(result.Books) != 2 {
		t.Errorf("Unexpected result %+v", result.Stats)
	}
	if result.Books[0].Key != "md5:m1" {
		t.Errorf("Expected md5 key, got %s", result.Books[0].Key)
	}
	if len(r.Table.Rows) != 2 {
		t.Errorf("Expected 2 rows, got %d", len(r.Table.Rows))
	}
}

func TestMatch(t *testing.T) {
	books := []models.CatalogBook{
		{ID: "a", Title: "Dune", MD5: "m1"},
		{ID: "b", Title: "Unread"},
	}
	stats := []models.StatsBook{{Title: "Dune", MD5: "m1", TotalReadTime: 7200}}
	r := Match(books, stats)

	if r.Summary[1].Value != "1" {
		t.Errorf("Expected 1 match, got %s", r.Summary[1].Value)
	}
	if r.Table.Rows[0][2] != "md5" || r.Table.Rows[0][4] != "2h" {
		t.Errorf("Unexpected row %v", r.Table.Rows[0])
	}
	if r.Table.Rows[1][2] != "-" || r.Table.Rows[1][4] != "0m" {
		t.Errorf("Unexpected row %v", r.Table.Rows[1])
	}

	var buf bytes.Buffer
	if err := Write(&buf, YAML, r); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	var decoded []map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Invalid YAML: %v", err)
	}
	if len(decoded) != 2 || decoded[0]["id"] != "a" {
		t.Errorf("Expected inline catalog fields, got %v", decoded)
	}

	buf.Reset()
	if err := Write(&buf, JSON, r); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	var fromJSON []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &fromJSON); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if fromJSON[0]["matched_by"] != "md5" {
		t.Errorf("Expected matched_by md5, got %v", fromJSON[0]["matched_by"])
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		input    string
		max      int
		expected string
	}{
		{input: "short", max: 10, expected: "short"},
		{input: "exactly ten", max: 11, expected: "exactly ten"},
		{input: "much longer title", max: 10, expected: "much lo..."},
		{input: "ééééééé", max: 6, expected: "ééé..."},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := truncate(tt.input, tt.max); got != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, got)
			}
		})
	}
}
