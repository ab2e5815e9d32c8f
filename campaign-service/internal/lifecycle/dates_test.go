package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDateCalendarForm(t *testing.T) {
	loc := time.FixedZone("UTC-6", -6*60*60)

	got, ok := NormalizeDate("2025-06-15", loc)
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, time.June, 15, 0, 0, 0, 0, loc), got)

	y, m, d := got.Date()
	assert.Equal(t, 2025, y)
	assert.Equal(t, time.June, m)
	assert.Equal(t, 15, d, "calendar dates must not drift across the UTC boundary")
}

func TestNormalizeDateNoDate(t *testing.T) {
	var nilTime *time.Time
	var nilString *string
	for name, v := range map[string]any{
		"nil":        nil,
		"empty":      "",
		"blank":      "   ",
		"zero time":  time.Time{},
		"nil time":   nilTime,
		"nil string": nilString,
		"garbage":    "not a date",
		"bad month":  "2025-13-01",
		"bad day":    "2025-02-30",
		"number":     20250615,
	} {
		t.Run(name, func(t *testing.T) {
			_, ok := NormalizeDate(v, time.UTC)
			assert.False(t, ok)
		})
	}
}

func TestNormalizeDateFallbackLayouts(t *testing.T) {
	got, ok := NormalizeDate("2025-06-15T10:30:00Z", time.UTC)
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC), got)

	got, ok = NormalizeDate("2025/06/15", time.UTC)
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC), got)

	got, ok = NormalizeDate(" 06/15/2025 ", time.UTC)
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC), got)
}

func TestNormalizeDateZoneSkewIsAccepted(t *testing.T) {
	loc := time.FixedZone("UTC-6", -6*60*60)
	got, ok := NormalizeDate("2025-06-15T02:00:00Z", loc)
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, time.June, 14, 0, 0, 0, 0, loc), got)
}

func TestNormalizeDateNativeTime(t *testing.T) {
	in := time.Date(2025, time.June, 15, 18, 45, 0, 0, time.UTC)
	got, ok := NormalizeDate(in, time.UTC)
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC), got)

	got, ok = NormalizeDate(&in, time.UTC)
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC), got)
}

func TestEndOfDay(t *testing.T) {
	in := time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, time.June, 15, 23, 59, 59, 999000000, time.UTC), EndOfDay(in))
}

func TestFormatDate(t *testing.T) {
	assert.Nil(t, FormatDate(nil))
	d := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	require.NotNil(t, FormatDate(&d))
	assert.Equal(t, "2025-06-01", *FormatDate(&d))
}
