// Package snapshot reads and writes snapshot directories: one file per
// source collection plus a manifest describing where they came from.
package snapshot

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"

	"github.com/lehigh-university-libraries/readstats/internal/models"
	"github.com/lehigh-university-libraries/readstats/internal/views"
)

// ErrNotFound is returned when a snapshot directory or one of its
// components does not exist.
var ErrNotFound = errors.New("snapshot component not found")

// Base names of the snapshot components. Tables may be stored as .parquet,
// .jsonl or .json; the first one found in that order wins.
const (
	BooksFile      = "books"
	StatsFile      = "stats.json"
	StatsBooksFile = "stats_books"
	DailyFile      = "daily"
	HighlightsFile = "highlights"
	DashboardFile  = "dashboard.json"
	SessionsFile   = "sessions"
	TimelinesFile  = "timelines.json"
	ManifestFile   = "manifest.yaml"
)

var tableExts = []string{".parquet", ".jsonl", ".json"}

// Loader loads a snapshot directory
type Loader struct {
	dir string
}

// NewLoader creates a new snapshot loader
func NewLoader(dir string) *Loader {
	return &Loader{dir: dir}
}

// Load reads every component of the snapshot. Missing components are left
// empty; a missing directory is ErrNotFound.
func (l *Loader) Load() (views.Snapshot, error) {
	var snap views.Snapshot

	info, err := os.Stat(l.dir)
	if errors.Is(err, os.ErrNotExist) {
		return snap, fmt.Errorf("%w: %s", ErrNotFound, l.dir)
	}
	if err != nil {
		return snap, fmt.Errorf("failed to stat snapshot directory: %w", err)
	}
	if !info.IsDir() {
		return snap, fmt.Errorf("snapshot path is not a directory: %s", l.dir)
	}

	slog.Debug("Loading snapshot", "dir", l.dir)

	if snap.Books, err = loadTable(l.dir, BooksFile, "books", models.CatalogBookFromRecord); err != nil {
		return snap, err
	}
	if snap.StatsBooks, snap.Daily, err = l.loadStats(); err != nil {
		return snap, err
	}
	if snap.Annotations, err = l.loadHighlights(); err != nil {
		return snap, err
	}
	if snap.Sessions, err = loadTable(l.dir, SessionsFile, "sessions", models.SessionFromRecord); err != nil {
		return snap, err
	}
	if snap.Dashboard, err = loadJSON(l.dir, DashboardFile, DecodeDashboard); err != nil {
		return snap, err
	}
	if snap.Timelines, err = loadJSON(l.dir, TimelinesFile, DecodeTimelines); err != nil {
		return snap, err
	}

	slog.Debug("Loaded snapshot",
		"dir", l.dir,
		"books", len(snap.Books),
		"stats_books", len(snap.StatsBooks),
		"daily", len(snap.Daily),
		"annotations", len(snap.Annotations),
		"sessions", len(snap.Sessions),
		"timelines", len(snap.Timelines))

	return snap, nil
}

// Manifest reads the snapshot manifest.
func (l *Loader) Manifest() (Manifest, error) {
	return ReadManifest(filepath.Join(l.dir, ManifestFile))
}

func (l *Loader) loadStats() ([]models.StatsBook, []models.DailyRecord, error) {
	data, err := os.ReadFile(filepath.Join(l.dir, StatsFile))
	if err == nil {
		return DecodeStats(data)
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, nil, fmt.Errorf("failed to read stats: %w", err)
	}

	books, err := loadTable(l.dir, StatsBooksFile, "books", models.StatsBookFromRecord)
	if err != nil {
		return nil, nil, err
	}
	daily, err := loadTable(l.dir, DailyFile, "daily", models.DailyRecordFromRecord)
	if err != nil {
		return nil, nil, err
	}
	return books, daily, nil
}

func (l *Loader) loadHighlights() ([]models.Annotation, error) {
	path, err := find(l.dir, HighlightsFile, ".jsonl", ".json")
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if filepath.Ext(path) == ".jsonl" {
		return convertJSONL(path, models.AnnotationFromRecord)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read highlights: %w", err)
	}
	return DecodeHighlights(data)
}

// find returns the first existing base+ext in dir.
func find(dir, base string, exts ...string) (string, error) {
	for _, ext := range exts {
		path := filepath.Join(dir, base+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("failed to stat %s: %w", path, err)
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, base)
}

// loadTable reads a table component. Parquet rows decode straight into T;
// JSON and JSONL go through the tolerant record decoders.
func loadTable[T any](dir, base, key string, convert func(models.Record) T) ([]T, error) {
	path, err := find(dir, base, tableExts...)
	if errors.Is(err, ErrNotFound) {
		slog.Debug("Snapshot component missing", "component", base)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	switch filepath.Ext(path) {
	case ".parquet":
		return readParquet[T](path)
	case ".jsonl":
		return convertJSONL(path, convert)
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		out, err := decodeList(data, key, convert)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", path, err)
		}
		return out, nil
	}
}

func loadJSON[T any](dir, name string, decode func([]byte) (T, error)) (T, error) {
	var zero T
	data, err := os.ReadFile(filepath.Join(dir, name))
	if errors.Is(err, os.ErrNotExist) {
		slog.Debug("Snapshot component missing", "component", name)
		return zero, nil
	}
	if err != nil {
		return zero, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return decode(data)
}

func convertJSONL[T any](path string, convert func(models.Record) T) ([]T, error) {
	records, err := readJSONL(path)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(records))
	for _, r := range records {
		out = append(out, convert(r))
	}
	return out, nil
}

// readJSONL reads one JSON object per line. Blank lines are skipped.
func readJSONL(path string) ([]models.Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	var records []models.Record
	scanner := bufio.NewScanner(file)

	// annotations can carry whole passages
	const maxCapacity = 10 * 1024 * 1024
	buf := make([]byte, maxCapacity)
	scanner.Buffer(buf, maxCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := bytes.TrimSpace(scanner.Bytes())

		if len(line) == 0 {
			continue
		}
		if line[0] != '{' {
			return nil, fmt.Errorf("expected a JSON object at %s line %d", filepath.Base(path), lineNum)
		}

		record, err := models.DecodeObject(line)
		if err != nil {
			return nil, fmt.Errorf("failed to parse JSON at %s line %d: %w", filepath.Base(path), lineNum, err)
		}
		records = append(records, record)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading %s: %w", path, err)
	}

	slog.Debug("Finished reading JSONL file", "path", path, "records", len(records), "lines", lineNum)

	return records, nil
}

// readParquet reads every row of a Parquet file in batches.
func readParquet[T any](path string) ([]T, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}

	slog.Debug("Parquet file opened", "path", path, "num_rows", pf.NumRows(), "num_row_groups", len(pf.RowGroups()))

	reader := parquet.NewGenericReader[T](pf)
	defer reader.Close()

	records := make([]T, 0, pf.NumRows())
	rows := make([]T, 128)
	for {
		n, err := reader.Read(rows)
		if n > 0 {
			records = append(records, rows[:n]...)
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read parquet rows: %w", err)
		}
	}

	return records, nil
}
