package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/lehigh-university-libraries/readstats/internal/views"
)

// Save writes snap into dir: the flat tables as Parquet, annotations as
// JSONL and the nested payloads as JSON, followed by a manifest. Empty
// components are not written and replace any earlier save in dir.
func Save(dir string, snap views.Snapshot, source string, now time.Time) (Manifest, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return Manifest{}, fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	if err := clearTables(dir); err != nil {
		return Manifest{}, err
	}

	m := NewManifest(source, now)
	record := func(name string, n int) {
		m.Files = append(m.Files, name)
		m.Counts[name] = n
	}

	if len(snap.Books) > 0 {
		if err := writeParquet(dir, BooksFile+".parquet", snap.Books); err != nil {
			return m, err
		}
		record(BooksFile+".parquet", len(snap.Books))
	}
	if len(snap.StatsBooks) > 0 {
		if err := writeParquet(dir, StatsBooksFile+".parquet", snap.StatsBooks); err != nil {
			return m, err
		}
		record(StatsBooksFile+".parquet", len(snap.StatsBooks))
	}
	if len(snap.Daily) > 0 {
		if err := writeParquet(dir, DailyFile+".parquet", snap.Daily); err != nil {
			return m, err
		}
		record(DailyFile+".parquet", len(snap.Daily))
	}
	if len(snap.Sessions) > 0 {
		if err := writeParquet(dir, SessionsFile+".parquet", snap.Sessions); err != nil {
			return m, err
		}
		record(SessionsFile+".parquet", len(snap.Sessions))
	}
	if len(snap.Annotations) > 0 {
		if err := writeJSONL(filepath.Join(dir, HighlightsFile+".jsonl"), snap.Annotations); err != nil {
			return m, err
		}
		record(HighlightsFile+".jsonl", len(snap.Annotations))
	}
	if err := writeJSON(filepath.Join(dir, DashboardFile), snap.Dashboard); err != nil {
		return m, err
	}
	record(DashboardFile, 1)
	if len(snap.Timelines) > 0 {
		if err := writeJSON(filepath.Join(dir, TimelinesFile), snap.Timelines); err != nil {
			return m, err
		}
		record(TimelinesFile, len(snap.Timelines))
	}

	if err := WriteManifest(filepath.Join(dir, ManifestFile), m); err != nil {
		return m, err
	}

	slog.Info("Saved snapshot", "dir", dir, "id", m.ID, "files", len(m.Files))
	return m, nil
}

// clearTables removes the files of a previous save so components absent
// from this one load as empty.
func clearTables(dir string) error {
	names := []string{StatsFile, DashboardFile, TimelinesFile, ManifestFile}
	for _, base := range []string{BooksFile, StatsBooksFile, DailyFile, HighlightsFile, SessionsFile} {
		for _, ext := range tableExts {
			names = append(names, base+ext)
		}
	}
	for _, name := range names {
		if err := os.Remove(filepath.Join(dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to clear %s: %w", name, err)
		}
	}
	return nil
}

func writeParquet[T any](dir, name string, rows []T) error {
	if err := parquet.WriteFile(filepath.Join(dir, name), rows); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

func writeJSONL[T any](path string, rows []T) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	for i, row := range rows {
		if err := enc.Encode(row); err != nil {
			return fmt.Errorf("failed to write row %d of %s: %w", i, path, err)
		}
	}
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}
