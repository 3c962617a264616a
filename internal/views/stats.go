package views

import (
	"github.com/lehigh-university-libraries/readstats/internal/analytics"
	"github.com/lehigh-university-libraries/readstats/internal/models"
)

// StatsView is the analytics page for one trend window.
type StatsView struct {
	TrendDays    int                    `json:"trend_days" yaml:"trend_days"`
	Precedence   string                 `json:"precedence" yaml:"precedence"`
	Trend        []models.DailyRecord   `json:"trend" yaml:"trend"`
	Summary      analytics.TrendSummary `json:"summary" yaml:"summary"`
	Streaks      analytics.Streaks      `json:"streaks" yaml:"streaks"`
	Monthly      []models.MonthlyPoint  `json:"monthly" yaml:"monthly"`
	Weekdays     []models.WeekdayPoint  `json:"weekdays" yaml:"weekdays"`
	Hourly       []models.HourlyBucket  `json:"hourly" yaml:"hourly"`
	BooksTouched int                    `json:"books_touched" yaml:"books_touched"`
	TopByTime    []models.TopBook       `json:"top_by_time" yaml:"top_by_time"`
	TopByPages   []models.TopBook       `json:"top_by_pages" yaml:"top_by_pages"`
	Insight      analytics.Insight      `json:"insight" yaml:"insight"`
	NoData       bool                   `json:"no_data" yaml:"no_data"`
}

// Stats derives every statistic of the selected trend window. Streaks,
// monthly and weekday rollups are computed over the window itself.
func Stats(snap Snapshot, opts Options) StatsView {
	days := opts.trendDays()
	series := snap.series()
	trend := analytics.TrendSeriesByDays(series, days, opts.TrendPrecedence)
	weekdays := analytics.WeekdayFromDaily(trend)
	hourly := analytics.HourlyByDays(series, days)
	resolver := snap.resolver(opts)

	return StatsView{
		TrendDays:    days,
		Precedence:   opts.TrendPrecedence.String(),
		Trend:        trend,
		Summary:      analytics.Summarize(trend),
		Streaks:      analytics.ComputeStreaks(trend, opts.now()),
		Monthly:      analytics.MonthlyFromDaily(trend),
		Weekdays:     weekdays,
		Hourly:       hourly,
		BooksTouched: analytics.BooksTouchedByDays(snap.Dashboard.KPIs, days),
		TopByTime:    resolver.ResolveTopBooks(analytics.TopBooksByDays(snap.Dashboard.TopBooks, analytics.RankByTime, days)),
		TopByPages:   resolver.ResolveTopBooks(analytics.TopBooksByDays(snap.Dashboard.TopBooks, analytics.RankByPages, days)),
		Insight: analytics.Insights(analytics.InsightInput{
			Dashboard: snap.Dashboard,
			TrendDays: days,
			Trend:     trend,
			Weekdays:  weekdays,
			Hours:     hourly,
		}),
		NoData: len(trend) == 0,
	}
}

// Calendar lays out one month of the dashboard calendar. month is YYYY-MM
// and defaults to the current month; selected is an optional YYYY-MM-DD.
// The second result is false when month cannot be parsed.
func Calendar(snap Snapshot, opts Options, month, selected string) (analytics.Calendar, bool) {
	now := opts.now()
	m, ok := analytics.ParseMonth(month, now)
	if !ok {
		return analytics.Calendar{}, false
	}

	resolver := snap.resolver(opts)
	days := make([]models.DailyRecord, 0, len(snap.Dashboard.Calendar.Days))
	for _, d := range snap.Dashboard.Calendar.Days {
		if d.Date == "" {
			continue
		}
		d.TopBooks = resolver.ResolveTopBooks(d.TopBooks)
		days = append(days, d)
	}
	return analytics.CalendarMonth(days, m, snap.Dashboard.Calendar.Legend.MaxDailySec90d, now, selected), true
}
