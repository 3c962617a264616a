package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/readstats/internal/catalog"
	"github.com/lehigh-university-libraries/readstats/internal/snapshot"
	"github.com/lehigh-university-libraries/readstats/internal/storage"
)

func newFetchCmd(a *app) *cobra.Command {
	var (
		baseURL   string
		timelines bool
	)

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch a snapshot from a reading dashboard API",
		Long: `Fetches books, statistics, highlights and the dashboard from a reading
dashboard's /api endpoints and stores them in the snapshot directory.

Books are required; the other components are stored empty when the
server does not provide them.`,
		Example: `  # Fetch into ./snapshot
  readstats fetch --url http://reader.local:8080

  # Include every book's session timeline
  readstats fetch --url http://reader.local:8080 --timelines`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if baseURL != "" {
				a.cfg.API.BaseURL = baseURL
			}
			if cmd.Flags().Changed("timelines") {
				a.cfg.API.Timelines = timelines
			}
			_, err := a.fetch(cmd.Context())
			return err
		},
	}

	cmd.Flags().StringVar(&baseURL, "url", "", "Dashboard base URL (overrides config)")
	cmd.Flags().BoolVar(&timelines, "timelines", false, "Also fetch every book's session timeline")

	return cmd
}

// fetch pulls a snapshot from the dashboard API and saves it to the
// snapshot directory.
func (a *app) fetch(ctx context.Context) (storage.Entry, error) {
	if a.cfg.API.BaseURL == "" {
		return storage.Entry{}, errors.New("no dashboard URL, set api.base_url or READSTATS_API_URL")
	}

	client := catalog.NewClient(a.cfg.API.BaseURL, a.cfg.API.APIKey, a.cfg.API.RequestsPerSecond)
	start := time.Now()
	snap, err := client.FetchSnapshot(ctx, catalog.FetchOptions{Timelines: a.cfg.API.Timelines})
	if err != nil {
		return storage.Entry{}, fmt.Errorf("failed to fetch snapshot: %w", err)
	}

	manifest, err := snapshot.Save(a.cfg.SnapshotDir, snap, a.cfg.API.BaseURL, time.Now())
	if err != nil {
		return storage.Entry{}, fmt.Errorf("failed to save snapshot: %w", err)
	}
	slog.Info("Snapshot fetched",
		"id", manifest.ID,
		"dir", a.cfg.SnapshotDir,
		"books", len(snap.Books),
		"duration", time.Since(start).Round(time.Millisecond))

	return storage.Entry{ID: manifest.ID, Snapshot: snap, LoadedAt: time.Now()}, nil
}
