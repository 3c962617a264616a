package analytics

import "fmt"

// FormatDuration renders seconds compactly: "0m", "45m", "2h", "2h 5m".
// Anything under a minute but above zero shows as "1m".
func FormatDuration(secs int64) string {
	if secs <= 0 {
		return "0m"
	}
	h := secs / 3600
	m := (secs % 3600) / 60
	switch {
	case h == 0:
		if m == 0 {
			m = 1
		}
		return fmt.Sprintf("%dm", m)
	case m == 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dh %dm", h, m)
	}
}

// FormatDurationLong renders seconds for sentences and tooltips.
func FormatDurationLong(secs int64) string {
	if secs <= 0 {
		return "No reading yet"
	}
	h := secs / 3600
	m := (secs % 3600) / 60
	switch {
	case h == 0 && m == 0:
		return "Less than a minute"
	case h == 0:
		return fmt.Sprintf("%d minutes", m)
	case m == 0:
		return fmt.Sprintf("%d hours", h)
	default:
		return fmt.Sprintf("%d hours %d minutes", h, m)
	}
}
