// Package timecode converts between compact timecode labels (MM:SS or
// HH:MM:SS) and integer seconds, and formats comment creation times for
// display.
package timecode

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Parse converts a timecode label to seconds. It accepts exactly two
// colon-delimited forms, MM:SS and HH:MM:SS, with non-negative integer
// fields. Anything else yields 0 so downstream arithmetic stays total.
func Parse(label string) int {
	parts := strings.Split(label, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0
	}

	fields := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0
		}
		fields[i] = n
	}

	if len(fields) == 2 {
		return fields[0]*60 + fields[1]
	}
	return fields[0]*3600 + fields[1]*60 + fields[2]
}

// Format renders seconds as the canonical label: HH:MM:SS when there is a
// non-zero hour component, MM:SS otherwise, fields zero-padded to width 2.
// Negative input is clamped to 0.
func Format(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}

	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60

	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%02d:%02d", minutes, secs)
}

// FormatRelative renders a comment creation time relative to now: "just
// now" under five seconds, then seconds/minutes/hours/days ago, and an
// absolute date once the comment is a week old.
func FormatRelative(createdAt, now time.Time) string {
	if createdAt.IsZero() {
		return ""
	}

	diff := now.Sub(createdAt)
	if diff < 0 {
		diff = 0
	}

	days := diff.Hours() / 24
	if days >= 7 {
		return createdAt.Format("Jan 2, 2006")
	}

	switch {
	case diff < 5*time.Second:
		return "just now"
	case diff < time.Minute:
		return plural(int(diff.Seconds()), "second")
	case diff < time.Hour:
		return plural(int(diff.Minutes()), "minute")
	case diff < 24*time.Hour:
		return plural(int(diff.Hours()), "hour")
	default:
		return plural(int(days), "day")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
