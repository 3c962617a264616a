package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/readstats/internal/analytics"
	"github.com/lehigh-university-libraries/readstats/internal/highlights"
	"github.com/lehigh-university-libraries/readstats/internal/library"
	"github.com/lehigh-university-libraries/readstats/internal/models"
	"github.com/lehigh-university-libraries/readstats/internal/report"
	"github.com/lehigh-university-libraries/readstats/internal/views"
)

func newBooksCmd(a *app) *cobra.Command {
	var opts library.Options

	cmd := &cobra.Command{
		Use:   "books",
		Short: "List the deduplicated library",
		Example: `  # Finished books, longest read first
  readstats books --filter finished --sort total_read_time --dir desc

  # Search by title or author
  readstats books -q tolkien --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := a.load()
			if err != nil {
				return err
			}
			vo, err := a.options()
			if err != nil {
				return err
			}
			vo.Books = opts
			return a.write(cmd, report.Books(views.Books(snap, vo)))
		},
	}

	cmd.Flags().StringVarP(&opts.Query, "query", "q", "", "Match title or authors")
	cmd.Flags().StringVar((*string)(&opts.Filter), "filter", "all", "all, reading, finished or highlighted")
	cmd.Flags().StringVar((*string)(&opts.SortKey), "sort", "last_open_ts", "title, percent, highlights, total_read_time or last_open_ts")
	cmd.Flags().StringVar((*string)(&opts.SortDir), "dir", "desc", "asc or desc")
	a.addFormatFlag(cmd)

	return cmd
}

func newDedupeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dedupe",
		Short: "Show how duplicate catalog entries collapse",
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := a.load()
			if err != nil {
				return err
			}
			return a.write(cmd, report.Dedupe(snap.Books))
		},
	}
	a.addFormatFlag(cmd)
	return cmd
}

func newMatchCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match",
		Short: "Show which statistics record each book resolves to",
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := a.load()
			if err != nil {
				return err
			}
			vo, err := a.options()
			if err != nil {
				return err
			}
			vo.Books = library.Options{SortKey: library.SortTitle, SortDir: library.Asc}
			books := views.Books(snap, vo)
			canonical := make([]models.CatalogBook, 0, len(books.Books))
			for _, b := range books.Books {
				canonical = append(canonical, b.CatalogBook)
			}
			return a.write(cmd, report.Match(canonical, snap.StatsBooks))
		},
	}
	a.addFormatFlag(cmd)
	return cmd
}

func newStatsCmd(a *app) *cobra.Command {
	var (
		days       int
		precedence string
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Reading statistics for a trend window",
		Example: `  # Last year, preferring the 90-day series where windows overlap
  readstats stats --days 365 --precedence freshest`,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := a.load()
			if err != nil {
				return err
			}
			vo, err := a.options()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("days") {
				vo.TrendDays = days
			}
			if precedence != "" {
				vo.TrendPrecedence = analytics.ParsePrecedence(precedence)
			}
			return a.write(cmd, report.Stats(views.Stats(snap, vo)))
		},
	}

	cmd.Flags().IntVarP(&days, "days", "d", 90, "Trend window: 30, 90, 180 or 365")
	cmd.Flags().StringVar(&precedence, "precedence", "", "longest or freshest (overrides config)")
	a.addFormatFlag(cmd)

	return cmd
}

func newCalendarCmd(a *app) *cobra.Command {
	var month, date string

	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Reading calendar for one month",
		Example: `  readstats calendar --month 2024-03 --date 2024-03-09`,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := a.load()
			if err != nil {
				return err
			}
			vo, err := a.options()
			if err != nil {
				return err
			}
			cal, ok := views.Calendar(snap, vo, month, date)
			if !ok {
				return fmt.Errorf("invalid month %q, expected YYYY-MM", month)
			}
			return a.write(cmd, report.Calendar(cal))
		},
	}

	cmd.Flags().StringVarP(&month, "month", "m", "", "Month as YYYY-MM (default: current month)")
	cmd.Flags().StringVar(&date, "date", "", "Selected day as YYYY-MM-DD")
	a.addFormatFlag(cmd)

	return cmd
}

func newHeatmapCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "heatmap <book-id>",
		Short: "Activity heatmap and milestones of one book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := a.load()
			if err != nil {
				return err
			}
			vo, err := a.options()
			if err != nil {
				return err
			}
			detail, ok := views.Book(snap, vo, args[0])
			if !ok {
				return fmt.Errorf("book %q not found", args[0])
			}
			return a.write(cmd, report.Heatmap(detail))
		},
	}
	a.addFormatFlag(cmd)
	return cmd
}

func newHighlightsCmd(a *app) *cobra.Command {
	var (
		opts   highlights.Options
		export string
		output string
	)

	cmd := &cobra.Command{
		Use:   "highlights",
		Short: "Highlights and notes grouped by book",
		Example: `  # Notes only, most annotated books first
  readstats highlights --kind note --sort count

  # Export everything as Markdown
  readstats highlights --export markdown -o highlights.md`,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := a.load()
			if err != nil {
				return err
			}
			vo, err := a.options()
			if err != nil {
				return err
			}
			opts.Location = vo.Now.Location()
			vo.Highlights = opts
			result := views.Highlights(snap, vo)

			if export == "" {
				return a.write(cmd, report.Highlights(result))
			}

			body, err := exportHighlights(export, result.Groups, vo.Now)
			if err != nil {
				return err
			}
			if output == "" {
				_, err = cmd.OutOrStdout().Write(body)
				return err
			}
			if err := os.WriteFile(output, body, 0644); err != nil {
				return fmt.Errorf("failed to write export: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d highlights to %s\n", result.Items, output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.Query, "query", "q", "", "Match title, authors, chapter, text or note")
	cmd.Flags().StringVar(&opts.Kind, "kind", "all", "all, highlight, note or bookmark")
	cmd.Flags().StringVar((*string)(&opts.Sort), "sort", "recent", "recent, title or count")
	cmd.Flags().StringVar(&export, "export", "", "Export as markdown, json or html instead of a report")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Export file (default: stdout)")
	a.addFormatFlag(cmd)

	return cmd
}

func exportHighlights(format string, groups []highlights.Group, exportedAt time.Time) ([]byte, error) {
	switch format {
	case "markdown", "md":
		return []byte(highlights.Markdown(groups, exportedAt)), nil
	case "json":
		return highlights.JSON(groups, exportedAt)
	case "html":
		return highlights.HTML(groups, exportedAt)
	}
	return nil, fmt.Errorf("unsupported export format: %s", format)
}
