package provider

import (
	"testing"
	"time"
)

func TestParsePublishedAtRelative(t *testing.T) {
	ref := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	got := ParsePublishedAt("3 hours ago", ref)
	want := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("3 hours ago = %v, want %v", got, want)
	}

	got = ParsePublishedAt("1 day ago", ref)
	want = time.Date(2024, 12, 31, 12, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("1 day ago = %v, want %v", got, want)
	}

	got = ParsePublishedAt("45 minutes ago", ref)
	want = time.Date(2025, 1, 1, 11, 15, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("45 minutes ago = %v, want %v", got, want)
	}
}

func TestParsePublishedAtAbsolute(t *testing.T) {
	ref := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	got := ParsePublishedAt("2024-06-15T08:30:00Z", ref)
	want := time.Date(2024, 6, 15, 8, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("ISO-8601 = %v, want %v", got, want)
	}

	// RSS pubDate style.
	got = ParsePublishedAt("Mon, 02 Jan 2006 15:04:05 GMT", ref)
	if got.Year() != 2006 {
		t.Fatalf("RFC1123 year = %d, want 2006", got.Year())
	}
}

func TestParsePublishedAtFallsBackToNow(t *testing.T) {
	ref := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	for _, raw := range []string{"", "yesterday-ish", "soon", "3 fortnights ago", "-2 hours ago"} {
		if got := ParsePublishedAt(raw, ref); !got.Equal(ref) {
			t.Fatalf("ParsePublishedAt(%q) = %v, want reference time", raw, got)
		}
	}
}

func TestParseRelativeRejectsUnknownUnits(t *testing.T) {
	ref := time.Now()

	// Only minute/hour/day are valid units; anything else must not be
	// silently misread as one of them.
	if _, ok := parseRelative("2 weeks ago", ref); ok {
		t.Fatalf("parseRelative accepted an unknown unit")
	}
	if _, ok := parseRelative("2 hours before", ref); ok {
		t.Fatalf("parseRelative accepted a non-ago suffix")
	}
}
