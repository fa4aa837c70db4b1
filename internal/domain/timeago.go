package domain

import (
	"fmt"
	"time"
)

// TimeAgo renders a coarse relative timestamp for comment display.
func TimeAgo(t, now time.Time) string {
	minutes := int(now.Sub(t).Minutes())
	if minutes < 1 {
		return "just now"
	}
	if minutes < 60 {
		return fmt.Sprintf("%d minutes ago", minutes)
	}
	hours := minutes / 60
	if hours < 24 {
		return fmt.Sprintf("%d hours ago", hours)
	}
	return fmt.Sprintf("%d days ago", hours/24)
}

// TimeRemaining renders the time left before a poll's end date, or "Ended".
func TimeRemaining(endDate, now time.Time) string {
	if !endDate.After(now) {
		return "Ended"
	}
	d := endDate.Sub(now)
	days := int(d.Hours()) / 24
	if days > 0 {
		return fmt.Sprintf("%dd %dh left", days, int(d.Hours())%24)
	}
	if d.Hours() >= 1 {
		return fmt.Sprintf("%dh %dm left", int(d.Hours()), int(d.Minutes())%60)
	}
	return fmt.Sprintf("%dm left", int(d.Minutes()))
}
