// Package catalog fetches snapshots from a reading dashboard's JSON API.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/lehigh-university-libraries/readstats/internal/snapshot"
	"github.com/lehigh-university-libraries/readstats/internal/views"
)

// StatusError is a non-200 response from the dashboard API.
type StatusError struct {
	Path string
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API /%s returned status %d: %s", e.Path, e.Code, e.Body)
}

// IsNotFound reports whether err is a 404 from the dashboard API.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == http.StatusNotFound
}

// Client talks to a dashboard server's /api endpoints
type Client struct {
	BaseURL    string
	APIKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a new dashboard client. requestsPerSecond bounds the
// request rate; zero or less means unlimited.
func NewClient(baseURL, apiKey string, requestsPerSecond float64) *Client {
	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: rate.NewLimiter(limit, 1),
	}
}

// Get fetches /api/<path> and returns the raw body.
func (c *Client) Get(ctx context.Context, path string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/api/"+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch /api/%s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read /api/%s: %w", path, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Path: path, Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return body, nil
}

// optional fetches a component the server may not provide; a 404 yields
// a nil body.
func (c *Client) optional(ctx context.Context, path string) ([]byte, error) {
	body, err := c.Get(ctx, path)
	if IsNotFound(err) {
		slog.Warn("Dashboard component unavailable", "path", path)
		return nil, nil
	}
	return body, err
}

// FetchOptions selects what FetchSnapshot retrieves beyond the core
// collections.
type FetchOptions struct {
	// Timelines fetches every book's session timeline, one request per
	// book.
	Timelines bool
}

// FetchSnapshot retrieves books, stats, highlights and the dashboard.
// Only books are required; the other components are left empty when the
// server does not provide them.
func (c *Client) FetchSnapshot(ctx context.Context, opts FetchOptions) (views.Snapshot, error) {
	var snap views.Snapshot

	body, err := c.Get(ctx, "books")
	if err != nil {
		return snap, err
	}
	if snap.Books, err = snapshot.DecodeBooks(body); err != nil {
		return snap, err
	}
	slog.Info("Fetched books", "count", len(snap.Books))

	if body, err = c.optional(ctx, "stats"); err != nil {
		return snap, err
	}
	if snap.StatsBooks, snap.Daily, err = snapshot.DecodeStats(body); err != nil {
		return snap, err
	}

	if body, err = c.optional(ctx, "highlights"); err != nil {
		return snap, err
	}
	if snap.Annotations, err = snapshot.DecodeHighlights(body); err != nil {
		return snap, err
	}

	if body, err = c.optional(ctx, "dashboard"); err != nil {
		return snap, err
	}
	if snap.Dashboard, err = snapshot.DecodeDashboard(body); err != nil {
		return snap, err
	}

	slog.Info("Fetched tracker data",
		"stats_books", len(snap.StatsBooks),
		"daily", len(snap.Daily),
		"annotations", len(snap.Annotations))

	if !opts.Timelines {
		return snap, nil
	}

	snap.Timelines = make(map[string]views.BookTimeline, len(snap.Books))
	for _, b := range snap.Books {
		ref := strings.TrimSpace(b.ID)
		if ref == "" {
			continue
		}
		body, err := c.optional(ctx, "books/"+url.PathEscape(ref)+"/timeline")
		if err != nil {
			return snap, err
		}
		if body == nil {
			continue
		}
		tl, err := snapshot.DecodeTimeline(ref, body)
		if err != nil {
			return snap, fmt.Errorf("failed to decode timeline of %s: %w", ref, err)
		}
		snap.Timelines[ref] = tl
		for _, s := range tl.Sessions {
			if s.BookRef == "" {
				s.BookRef = ref
			}
			snap.Sessions = append(snap.Sessions, s)
		}
	}
	slog.Info("Fetched timelines", "books", len(snap.Timelines), "sessions", len(snap.Sessions))

	return snap, nil
}
