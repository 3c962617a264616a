package analytics

import "github.com/lehigh-university-libraries/readstats/internal/models"

// RankKind selects a top-books ranking.
type RankKind string

const (
	RankByTime  RankKind = "time"
	RankByPages RankKind = "pages"
)

// TrendRanges are the windows the dashboard pre-aggregates.
var TrendRanges = []int{30, 90, 180, 365}

// HourlyByDays picks the hourly buckets for a window. 30, 180 and 365 map
// onto their own series; anything else uses the 90-day series, falling back
// to the legacy un-suffixed one when it is empty.
func HourlyByDays(series models.Series, days int) []models.HourlyBucket {
	switch days {
	case 30:
		return series.Hourly30d
	case 180:
		return series.Hourly180d
	case 365:
		return series.Hourly365d
	}
	if len(series.Hourly90d) > 0 {
		return series.Hourly90d
	}
	return series.HourlyActivity
}

// BooksTouchedByDays picks the distinct-books count for a window. The
// default window falls back to the 30-day count when the 90-day one is 0.
func BooksTouchedByDays(kpis models.KPIs, days int) int {
	switch days {
	case 30:
		return kpis.BooksTouched30d
	case 180:
		return kpis.BooksTouched180d
	case 365:
		return kpis.BooksTouched365d
	}
	if kpis.BooksTouched90d != 0 {
		return kpis.BooksTouched90d
	}
	return kpis.BooksTouched30d
}

// TopBooksByDays picks a ranked list for a window, falling back to the
// legacy un-suffixed list when the windowed one is empty.
func TopBooksByDays(top models.TopBookLists, kind RankKind, days int) []models.TopBook {
	var windowed, legacy []models.TopBook
	if kind == RankByPages {
		legacy = top.ByPages
		switch days {
		case 30:
			windowed = top.ByPages30d
		case 180:
			windowed = top.ByPages180d
		case 365:
			windowed = top.ByPages365d
		default:
			windowed = top.ByPages90d
		}
	} else {
		legacy = top.ByTime
		switch days {
		case 30:
			windowed = top.ByTime30d
		case 180:
			windowed = top.ByTime180d
		case 365:
			windowed = top.ByTime365d
		default:
			windowed = top.ByTime90d
		}
	}
	if len(windowed) > 0 {
		return windowed
	}
	return legacy
}
