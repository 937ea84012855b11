// Package gate decides whether ordering and cancellation are currently allowed,
// based on the time-of-day windows configured on the backend.
package gate

import (
	"time"

	"momskitchen/internal/models"
)

// FormatHHMM renders t as zero-padded 24-hour "HH:MM"
func FormatHHMM(t time.Time) string {
	return t.Format("15:04")
}

// IsWithinWindow reports whether now falls inside at least one window, bounds
// included. Windows compare as strings, so they must be zero-padded and must not
// wrap past midnight. An empty list is never open.
func IsWithinWindow(now time.Time, windows []models.OrderingWindow) bool {
	hhmm := FormatHHMM(now)
	for _, w := range windows {
		if w.Start <= hhmm && hhmm <= w.End {
			return true
		}
	}
	return false
}
