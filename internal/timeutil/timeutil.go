// Package timeutil builds the date/time context strings injected into
// prompts so that "today" in a model answer resolves against the user's
// clock, not the server's.
package timeutil

import (
	"fmt"
	"time"
)

type DateTimeInfo struct {
	CurrentDateTime string
	UTCDateTime     string
	DayOfWeek       string
	Timezone        string
}

// CurrentDateTime resolves now in the given IANA zone. Unknown or empty
// zones fall back to UTC.
func CurrentDateTime(now time.Time, timezone string) DateTimeInfo {
	loc := time.UTC
	resolved := "UTC"
	if timezone != "" {
		if parsed, err := time.LoadLocation(timezone); err == nil {
			loc = parsed
			resolved = timezone
		}
	}

	local := now.In(loc)
	return DateTimeInfo{
		CurrentDateTime: local.Format("January 2, 2006 15:04:05 MST"),
		UTCDateTime:     now.UTC().Format(time.RFC3339),
		DayOfWeek:       local.Weekday().String(),
		Timezone:        resolved,
	}
}

// FormatDateTimeContext renders the block prepended to prompts.
func FormatDateTimeContext(now time.Time, timezone string) string {
	info := CurrentDateTime(now, timezone)
	return fmt.Sprintf(
		"Current date and time: %s\nDay of the week: %s\nTimezone: %s\nUTC time: %s",
		info.CurrentDateTime, info.DayOfWeek, info.Timezone, info.UTCDateTime,
	)
}

// IsValidTimezone reports whether tz names a loadable IANA location.
func IsValidTimezone(tz string) bool {
	if tz == "" {
		return false
	}
	_, err := time.LoadLocation(tz)
	return err == nil
}
