package models

// Dashboard is the pre-aggregated analytics payload served by the reading
// tracker. Every section defaults to its zero value when absent.
type Dashboard struct {
	Summary  Summary      `json:"summary" yaml:"summary"`
	KPIs     KPIs         `json:"kpis" yaml:"kpis"`
	Series   Series       `json:"series" yaml:"series"`
	Calendar CalendarData `json:"calendar" yaml:"calendar"`
	TopBooks TopBookLists `json:"top_books" yaml:"top_books"`
}

type Summary struct {
	TotalBooks        int    `json:"total_books" yaml:"total_books"`
	ReadingBooks      int    `json:"reading_books" yaml:"reading_books"`
	FinishedBooks     int    `json:"finished_books" yaml:"finished_books"`
	TotalReadTimeSec  int64  `json:"total_read_time_sec" yaml:"total_read_time_sec"`
	TotalReadPages    int    `json:"total_read_pages" yaml:"total_read_pages"`
	TotalHighlights   int    `json:"total_highlights" yaml:"total_highlights"`
	TotalNotes        int    `json:"total_notes" yaml:"total_notes"`
	ActiveDays90d     int    `json:"active_days_90d" yaml:"active_days_90d"`
	BestStreakDays    int    `json:"best_streak_days" yaml:"best_streak_days"`
	CurrentStreakDays int    `json:"current_streak_days" yaml:"current_streak_days"`
	LastReadDate      string `json:"last_read_date" yaml:"last_read_date"`
}

type KPIs struct {
	Last7DaysTimeSec   int64 `json:"last_7_days_time_sec" yaml:"last_7_days_time_sec"`
	Last30DaysTimeSec  int64 `json:"last_30_days_time_sec" yaml:"last_30_days_time_sec"`
	AvgDailyTime30dSec int64 `json:"avg_daily_time_30d_sec" yaml:"avg_daily_time_30d_sec"`
	LongestDaySec      int64 `json:"longest_day_sec" yaml:"longest_day_sec"`
	BooksTouched30d    int   `json:"books_touched_30d" yaml:"books_touched_30d"`
	BooksTouched90d    int   `json:"books_touched_90d" yaml:"books_touched_90d"`
	BooksTouched180d   int   `json:"books_touched_180d" yaml:"books_touched_180d"`
	BooksTouched365d   int   `json:"books_touched_365d" yaml:"books_touched_365d"`
}

// Series holds the daily arrays for overlapping ranges and the hourly
// buckets keyed by range. HourlyActivity is the legacy un-suffixed key.
type Series struct {
	Daily90d       []DailyRecord  `json:"daily_90d" yaml:"daily_90d"`
	Daily180d      []DailyRecord  `json:"daily_180d" yaml:"daily_180d"`
	Daily365d      []DailyRecord  `json:"daily_365d" yaml:"daily_365d"`
	Monthly12m     []MonthlyPoint `json:"monthly_12m" yaml:"monthly_12m"`
	WeekdayAvg     []WeekdayPoint `json:"weekday_avg" yaml:"weekday_avg"`
	HourlyActivity []HourlyBucket `json:"hourly_activity" yaml:"hourly_activity"`
	Hourly30d      []HourlyBucket `json:"hourly_activity_30d" yaml:"hourly_activity_30d"`
	Hourly90d      []HourlyBucket `json:"hourly_activity_90d" yaml:"hourly_activity_90d"`
	Hourly180d     []HourlyBucket `json:"hourly_activity_180d" yaml:"hourly_activity_180d"`
	Hourly365d     []HourlyBucket `json:"hourly_activity_365d" yaml:"hourly_activity_365d"`
}

type CalendarData struct {
	Days   []DailyRecord  `json:"days" yaml:"days"`
	Legend CalendarLegend `json:"legend" yaml:"legend"`
}

type CalendarLegend struct {
	MaxDailySec90d int64 `json:"max_daily_sec_90d" yaml:"max_daily_sec_90d"`
}

// TopBookLists holds ranked lists by time and by pages. ByTime and ByPages
// are the legacy un-suffixed keys.
type TopBookLists struct {
	ByTime      []TopBook `json:"by_time" yaml:"by_time"`
	ByPages     []TopBook `json:"by_pages" yaml:"by_pages"`
	ByTime30d   []TopBook `json:"by_time_30d" yaml:"by_time_30d"`
	ByTime90d   []TopBook `json:"by_time_90d" yaml:"by_time_90d"`
	ByTime180d  []TopBook `json:"by_time_180d" yaml:"by_time_180d"`
	ByTime365d  []TopBook `json:"by_time_365d" yaml:"by_time_365d"`
	ByPages30d  []TopBook `json:"by_pages_30d" yaml:"by_pages_30d"`
	ByPages90d  []TopBook `json:"by_pages_90d" yaml:"by_pages_90d"`
	ByPages180d []TopBook `json:"by_pages_180d" yaml:"by_pages_180d"`
	ByPages365d []TopBook `json:"by_pages_365d" yaml:"by_pages_365d"`
}
