package provider

import (
	"strconv"
	"strings"
	"time"
)

// absoluteLayouts are tried in order for non-relative date strings. RSS
// sources mostly emit RFC1123 variants, JSON APIs emit RFC3339.
var absoluteLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	time.RFC1123Z,
	time.RFC1123,
	"Mon, 2 Jan 2006 15:04:05 MST",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParsePublishedAt turns the date strings providers actually send into an
// absolute timestamp. Three shapes are recognized: ISO-8601/RFC1123 style
// absolutes, "<n> <unit> ago" relatives with an enumerated unit set, and
// garbage, which maps to now. It never fails.
func ParsePublishedAt(raw string, now time.Time) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return now
	}

	for _, layout := range absoluteLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}

	if t, ok := parseRelative(raw, now); ok {
		return t
	}

	return now
}

// parseRelative handles "3 hours ago" style strings. Units are matched
// explicitly (minute/hour/day only) rather than by loose substring, so a
// string like "3 fortnights ago" falls through to the now fallback instead
// of being silently misread.
func parseRelative(raw string, now time.Time) (time.Time, bool) {
	fields := strings.Fields(strings.ToLower(raw))
	if len(fields) != 3 || fields[2] != "ago" {
		return time.Time{}, false
	}

	n, err := strconv.Atoi(fields[0])
	if err != nil || n < 0 {
		return time.Time{}, false
	}

	var unit time.Duration
	switch strings.TrimSuffix(fields[1], "s") {
	case "minute", "min":
		unit = time.Minute
	case "hour", "hr":
		unit = time.Hour
	case "day":
		unit = 24 * time.Hour
	default:
		return time.Time{}, false
	}

	return now.Add(-time.Duration(n) * unit), true
}
