package lifecycle

import (
	"strconv"
	"strings"
	"time"
)

// fallbackLayouts are tried, in order, for anything that is not a bare
// YYYY-MM-DD calendar date.
var fallbackLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"01/02/2006",
	time.RFC1123Z,
	time.RFC1123,
}

// NormalizeDate turns a loosely typed date value into local midnight in loc.
// The boolean is false for "no date": nil, empty strings, zero times and
// anything that cannot be parsed.
func NormalizeDate(v any, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.Local
	}
	switch val := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		if val.IsZero() {
			return time.Time{}, false
		}
		return StartOfDay(val.In(loc)), true
	case *time.Time:
		if val == nil || val.IsZero() {
			return time.Time{}, false
		}
		return StartOfDay(val.In(loc)), true
	case *string:
		if val == nil {
			return time.Time{}, false
		}
		return parseDateString(*val, loc)
	case string:
		return parseDateString(val, loc)
	default:
		return time.Time{}, false
	}
}

// NormalizeDatePtr is NormalizeDate returning nil for "no date".
func NormalizeDatePtr(v any, loc *time.Location) *time.Time {
	t, ok := NormalizeDate(v, loc)
	if !ok {
		return nil
	}
	return &t
}

func parseDateString(raw string, loc *time.Location) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	if t, ok := parseCalendarDate(raw, loc); ok {
		return t, true
	}
	for _, layout := range fallbackLayouts {
		parsed, err := time.ParseInLocation(layout, raw, loc)
		if err == nil {
			return StartOfDay(parsed.In(loc)), true
		}
	}
	return time.Time{}, false
}

// parseCalendarDate handles the canonical YYYY-MM-DD form by building the
// date from its numeric parts, so the day never shifts across a UTC boundary.
func parseCalendarDate(raw string, loc *time.Location) (time.Time, bool) {
	if len(raw) != len("2006-01-02") || raw[4] != '-' || raw[7] != '-' {
		return time.Time{}, false
	}
	y, err := strconv.Atoi(raw[0:4])
	if err != nil {
		return time.Time{}, false
	}
	m, err := strconv.Atoi(raw[5:7])
	if err != nil || m < 1 || m > 12 {
		return time.Time{}, false
	}
	d, err := strconv.Atoi(raw[8:10])
	if err != nil || d < 1 || d > daysIn(time.Month(m), y) {
		return time.Time{}, false
	}
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, loc), true
}

func daysIn(m time.Month, year int) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// StartOfDay returns local midnight of t's calendar day.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns 23:59:59.999 of t's calendar day.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}

// FormatDate renders a normalized date as YYYY-MM-DD, or nil for no date.
func FormatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format("2006-01-02")
	return &s
}
