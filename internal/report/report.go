// Package report renders command output as text, JSON, YAML or CSV.
package report

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

type Format string

const (
	Text Format = "text"
	JSON Format = "json"
	YAML Format = "yaml"
	CSV  Format = "csv"
)

var ErrUnsupportedFormat = errors.New("unsupported format")

// ParseFormat accepts text, json, yaml (or yml) and csv. Empty means text.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text":
		return Text, nil
	case "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	case "csv":
		return CSV, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, s)
}

// Field is one labelled summary line.
type Field struct {
	Label string
	Value string
}

type Table struct {
	Header []string
	Rows   [][]string
}

// Report is one command's output. Data is what the structured formats
// encode; Summary and Table make up the text and CSV renderings.
type Report struct {
	Title   string
	Summary []Field
	Table   Table
	Data    any
}

// Write renders r to w in the given format.
func Write(w io.Writer, format Format, r Report) error {
	switch format {
	case Text, "":
		return writeText(w, r)
	case JSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(r.Data)
	case YAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(r.Data); err != nil {
			return fmt.Errorf("failed to marshal YAML: %w", err)
		}
		return encoder.Close()
	case CSV:
		return writeCSV(w, r)
	}
	return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
}

func writeText(w io.Writer, r Report) error {
	rule := strings.Repeat("=", 40)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, r.Title)
	fmt.Fprintln(w, rule)

	width := 0
	for _, f := range r.Summary {
		width = max(width, len(f.Label))
	}
	for _, f := range r.Summary {
		fmt.Fprintf(w, "%-*s %s\n", width+1, f.Label+":", f.Value)
	}

	if len(r.Table.Rows) == 0 {
		return nil
	}
	if len(r.Summary) > 0 {
		fmt.Fprintln(w)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if len(r.Table.Header) > 0 {
		fmt.Fprintln(tw, strings.Join(r.Table.Header, "\t"))
	}
	for _, row := range r.Table.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

// writeCSV writes the table, or the summary as label,value pairs when the
// report has no table.
func writeCSV(w io.Writer, r Report) error {
	writer := csv.NewWriter(w)

	if len(r.Table.Header) == 0 && len(r.Table.Rows) == 0 {
		if err := writer.Write([]string{"Field", "Value"}); err != nil {
			return err
		}
		for _, f := range r.Summary {
			if err := writer.Write([]string{f.Label, f.Value}); err != nil {
				return err
			}
		}
	} else {
		if len(r.Table.Header) > 0 {
			if err := writer.Write(r.Table.Header); err != nil {
				return err
			}
		}
		for _, row := range r.Table.Rows {
			if err := writer.Write(row); err != nil {
				return err
			}
		}
	}

	writer.Flush()
	return writer.Error()
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
