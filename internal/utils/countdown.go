package utils

import (
	"fmt"
	"time"

	"prompt-server/internal/models"
)

// FormatCountdown renders a duration as zero-padded HH:MM:SS. Negative
// durations clamp to "00:00:00". Hours are not capped at 24: under clock skew
// a remaining time beyond a day keeps growing in the hours field.
func FormatCountdown(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	totalSeconds := int64(d / time.Second)
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}

// Countdown formats the time remaining until expiresAt as seen from now.
func Countdown(expiresAt, now time.Time) string {
	return FormatCountdown(expiresAt.Sub(now))
}

// ResponseLateness reports whether a response at now falls inside the window
// that opens at selectedAt. A response is on time strictly before
// selectedAt+window; otherwise it is late by the overshoot, formatted with
// the countdown rule.
func ResponseLateness(selectedAt, now time.Time, window time.Duration) models.Lateness {
	deadline := selectedAt.Add(window)
	if now.Before(deadline) {
		return models.Lateness{OnTime: true, LateBy: "00:00:00"}
	}
	return models.Lateness{OnTime: false, LateBy: FormatCountdown(now.Sub(deadline))}
}
