package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/readstats/internal/analytics"
	"github.com/lehigh-university-libraries/readstats/internal/config"
	"github.com/lehigh-university-libraries/readstats/internal/covers"
	"github.com/lehigh-university-libraries/readstats/internal/report"
	"github.com/lehigh-university-libraries/readstats/internal/snapshot"
	"github.com/lehigh-university-libraries/readstats/internal/storage"
	"github.com/lehigh-university-libraries/readstats/internal/views"
)

// app is the state shared by every subcommand once the root has run.
type app struct {
	configPath  string
	snapshotDir string
	verbose     bool
	format      string

	cfg *config.Config
}

func NewRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "readstats",
		Short: "Reading analytics over e-reader library snapshots",
		Long: `Readstats reconciles an e-reader's catalog with its reading statistics
and annotations, and derives library, statistics, calendar and highlight views.

Snapshots are fetched from a reading dashboard API with "fetch" and stored
as Parquet and JSON files; every other command reads the stored snapshot.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			if a.snapshotDir != "" {
				cfg.SnapshotDir = a.snapshotDir
			}
			a.cfg = cfg

			slog.SetDefault(cfg.Logger(os.Stderr, a.verbose))
			slog.Debug("Configuration loaded", "snapshot_dir", cfg.SnapshotDir, "log_level", cfg.Log.Level)
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Path to a YAML config file")
	cmd.PersistentFlags().StringVarP(&a.snapshotDir, "snapshot", "s", "", "Snapshot directory (overrides config)")
	cmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")

	// Add subcommands
	cmd.AddCommand(newFetchCmd(a))
	cmd.AddCommand(newBooksCmd(a))
	cmd.AddCommand(newDedupeCmd(a))
	cmd.AddCommand(newMatchCmd(a))
	cmd.AddCommand(newStatsCmd(a))
	cmd.AddCommand(newCalendarCmd(a))
	cmd.AddCommand(newHeatmapCmd(a))
	cmd.AddCommand(newHighlightsCmd(a))
	cmd.AddCommand(newServeCmd(a))

	return cmd
}

// addFormatFlag registers --format on a command that renders a report.
func (a *app) addFormatFlag(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&a.format, "format", "f", "text", "Output format (text, json, yaml, csv)")
}

// options builds the view options from the configuration, stamped with the
// current time in the configured zone.
func (a *app) options() (views.Options, error) {
	loc, err := a.cfg.Location()
	if err != nil {
		return views.Options{}, err
	}
	return views.Options{
		Now:             time.Now().In(loc),
		TrendDays:       a.cfg.Trend.Days,
		TrendPrecedence: analytics.ParsePrecedence(a.cfg.Trend.Precedence),
		Covers:          covers.URLBuilder{BaseURL: a.cfg.Covers.BaseURL, Version: a.cfg.Covers.Version},
	}, nil
}

// load reads the configured snapshot directory.
func (a *app) load() (views.Snapshot, error) {
	snap, err := snapshot.NewLoader(a.cfg.SnapshotDir).Load()
	if errors.Is(err, snapshot.ErrNotFound) {
		return snap, fmt.Errorf("no snapshot in %s, run \"readstats fetch\" first: %w", a.cfg.SnapshotDir, err)
	}
	if err != nil {
		return snap, fmt.Errorf("failed to load snapshot: %w", err)
	}
	slog.Debug("Snapshot loaded",
		"dir", a.cfg.SnapshotDir,
		"books", len(snap.Books),
		"stats_books", len(snap.StatsBooks),
		"annotations", len(snap.Annotations))
	return snap, nil
}

// loadEntry reads the snapshot directory into a store entry, identified by
// its manifest when one exists.
func (a *app) loadEntry() (storage.Entry, error) {
	snap, err := a.load()
	if err != nil {
		return storage.Entry{}, err
	}
	entry := storage.Entry{ID: a.cfg.SnapshotDir, Snapshot: snap, LoadedAt: time.Now()}
	manifest, err := snapshot.NewLoader(a.cfg.SnapshotDir).Manifest()
	switch {
	case err == nil:
		entry.ID = manifest.ID
	case !errors.Is(err, snapshot.ErrNotFound):
		return storage.Entry{}, err
	}
	return entry, nil
}

func (a *app) write(cmd *cobra.Command, r report.Report) error {
	format, err := report.ParseFormat(a.format)
	if err != nil {
		return err
	}
	return report.Write(cmd.OutOrStdout(), format, r)
}
