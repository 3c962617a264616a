package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/readstats/internal/handlers"
	"github.com/lehigh-university-libraries/readstats/internal/storage"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		port string
		live bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the reading views as a JSON API",
		Long: `Starts a read-only JSON API over the stored snapshot on the specified port.

POST /api/reload re-reads the snapshot directory, or with --live fetches
a fresh snapshot from the dashboard API first.`,
		Example: `  # Start server on default port 8888
  readstats serve

  # Start server on custom port, reloading from the dashboard API
  readstats serve --port 3000 --live`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if port == "" {
				port = a.cfg.Server.Port
			}

			reload := func(ctx context.Context) (storage.Entry, error) {
				if live {
					return a.fetch(ctx)
				}
				return a.loadEntry()
			}

			store := storage.New()
			if entry, err := a.loadEntry(); err != nil {
				slog.Warn("Starting without a snapshot", "err", err)
			} else {
				store.Set(entry)
			}

			defaults, err := a.options()
			if err != nil {
				return err
			}
			handler := handlers.New(store, reload, defaults)

			addr := ":" + port
			server := &http.Server{
				Addr:              addr,
				Handler:           handler.Router(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Readstats API available", "addr", addr, "url", "http://localhost"+addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				// Give server 5 seconds to shut down gracefully
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on (default from config, 8888)")
	cmd.Flags().BoolVar(&live, "live", false, "Reload by fetching from the dashboard API")

	return cmd
}
