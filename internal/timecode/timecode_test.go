package timecode

import (
	"testing"
	"time"
)

func TestParseTwoFieldLabels(t *testing.T) {
	cases := map[string]int{
		"00:00": 0,
		"01:15": 75,
		"10:05": 605,
		"99:59": 5999,
	}
	for label, want := range cases {
		if got := Parse(label); got != want {
			t.Errorf("Parse(%q) = %d, want %d", label, got, want)
		}
	}
}

func TestParseThreeFieldLabels(t *testing.T) {
	cases := map[string]int{
		"00:00:00": 0,
		"01:00:00": 3600,
		"01:02:03": 3723,
	}
	for label, want := range cases {
		if got := Parse(label); got != want {
			t.Errorf("Parse(%q) = %d, want %d", label, got, want)
		}
	}
}

func TestParseMalformedInputYieldsZero(t *testing.T) {
	for _, label := range []string{"", "abc", "1:2:3:4", "12", "aa:bb", "-1:00", "01:", ":30"} {
		if got := Parse(label); got != 0 {
			t.Errorf("Parse(%q) = %d, want 0", label, got)
		}
	}
}

func TestFormat(t *testing.T) {
	cases := map[int]string{
		0:    "00:00",
		75:   "01:15",
		3599: "59:59",
		3600: "01:00:00",
		3723: "01:02:03",
	}
	for seconds, want := range cases {
		if got := Format(seconds); got != want {
			t.Errorf("Format(%d) = %q, want %q", seconds, got, want)
		}
	}
}

func TestFormatClampsNegative(t *testing.T) {
	if got := Format(-5); got != "00:00" {
		t.Errorf("Format(-5) = %q, want 00:00", got)
	}
}

func TestRoundTripFromCanonicalForm(t *testing.T) {
	for _, s := range []int{0, 1, 59, 60, 75, 3599, 3600, 3661, 86399, 360000} {
		if got := Parse(Format(s)); got != s {
			t.Errorf("Parse(Format(%d)) = %d", s, got)
		}
	}
}

func TestFormatRelative(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		createdAt time.Time
		want      string
	}{
		{now.Add(-2 * time.Second), "just now"},
		{now.Add(-30 * time.Second), "30 seconds ago"},
		{now.Add(-time.Minute), "1 minute ago"},
		{now.Add(-45 * time.Minute), "45 minutes ago"},
		{now.Add(-3 * time.Hour), "3 hours ago"},
		{now.Add(-26 * time.Hour), "1 day ago"},
		{now.Add(-6 * 24 * time.Hour), "6 days ago"},
		{now.Add(-8 * 24 * time.Hour), "Jun 7, 2025"},
	}
	for _, tc := range cases {
		if got := FormatRelative(tc.createdAt, now); got != tc.want {
			t.Errorf("FormatRelative(%v) = %q, want %q", tc.createdAt, got, tc.want)
		}
	}
}

func TestFormatRelativeZeroTime(t *testing.T) {
	if got := FormatRelative(time.Time{}, time.Now()); got != "" {
		t.Errorf("expected empty string for zero createdAt, got %q", got)
	}
}
