package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var testNow = time.Date(2025, time.March, 3, 12, 0, 0, 0, time.UTC)

func TestCurrentDateTime_UTCDefault(t *testing.T) {
	info := CurrentDateTime(testNow, "")

	assert.Equal(t, "UTC", info.Timezone)
	assert.Equal(t, "Monday", info.DayOfWeek)
	assert.Equal(t, "2025-03-03T12:00:00Z", info.UTCDateTime)
}

func TestCurrentDateTime_InvalidZoneFallsBackToUTC(t *testing.T) {
	info := CurrentDateTime(testNow, "Mars/Olympus_Mons")

	assert.Equal(t, "UTC", info.Timezone)
}

func TestCurrentDateTime_NamedZone(t *testing.T) {
	info := CurrentDateTime(testNow, "Europe/Moscow")

	assert.Equal(t, "Europe/Moscow", info.Timezone)
	// Moscow is UTC+3 year-round.
	assert.Contains(t, info.CurrentDateTime, "15:00:00")
}

func TestFormatDateTimeContext(t *testing.T) {
	ctx := FormatDateTimeContext(testNow, "")

	assert.Contains(t, ctx, "Current date and time:")
	assert.Contains(t, ctx, "Day of the week: Monday")
	assert.Contains(t, ctx, "Timezone: UTC")
	assert.Contains(t, ctx, "UTC time: 2025-03-03T12:00:00Z")
}

func TestIsValidTimezone(t *testing.T) {
	assert.True(t, IsValidTimezone("Europe/London"))
	assert.True(t, IsValidTimezone("UTC"))
	assert.False(t, IsValidTimezone(""))
	assert.False(t, IsValidTimezone("Not/AZone"))
}
