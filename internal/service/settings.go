package service

import (
	"fmt"

	"github.com/DisaAst/chathub-bot/internal/database"
	"github.com/DisaAst/chathub-bot/internal/logger"
	"github.com/DisaAst/chathub-bot/internal/timeutil"
)

// ErrInvalidTimezone is returned when a user submits a timezone name the
// tzdata does not know.
type ErrInvalidTimezone struct {
	Timezone string
}

func (e ErrInvalidTimezone) Error() string {
	return fmt.Sprintf("invalid timezone %q", e.Timezone)
}

// SettingsStore is the slice of the database the settings service needs.
type SettingsStore interface {
	GetUserSettings(userID int64) (*database.UserSettings, error)
	SaveUserSettings(settings database.UserSettings) error
	CountUserSettings() (int, error)
}

// Settings resolves per-user preferences, falling back to configured
// defaults for users who never set anything.
type Settings struct {
	db              SettingsStore
	defaultTimezone string
	defaultLanguage string
	logger          logger.Logger
}

func NewSettings(db SettingsStore, defaultTimezone, defaultLanguage string, log logger.Logger) *Settings {
	return &Settings{
		db:              db,
		defaultTimezone: defaultTimezone,
		defaultLanguage: defaultLanguage,
		logger:          log,
	}
}

// Timezone returns the user's timezone or the default. Lookup failures
// degrade to the default rather than blocking the request.
func (s *Settings) Timezone(userID int64) string {
	settings, err := s.db.GetUserSettings(userID)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Warn("Failed to load user settings")
		return s.defaultTimezone
	}
	if settings == nil || settings.Timezone == "" {
		return s.defaultTimezone
	}
	return settings.Timezone
}

func (s *Settings) Language(userID int64) string {
	settings, err := s.db.GetUserSettings(userID)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Warn("Failed to load user settings")
		return s.defaultLanguage
	}
	if settings == nil || settings.Language == "" {
		return s.defaultLanguage
	}
	return settings.Language
}

// SetTimezone validates and persists a timezone choice.
func (s *Settings) SetTimezone(userID int64, timezone string) error {
	if !timeutil.IsValidTimezone(timezone) {
		return ErrInvalidTimezone{Timezone: timezone}
	}

	current, err := s.db.GetUserSettings(userID)
	if err != nil {
		return err
	}

	settings := database.UserSettings{
		UserID:   userID,
		Timezone: timezone,
		Language: s.defaultLanguage,
	}
	if current != nil && current.Language != "" {
		settings.Language = current.Language
	}

	return s.db.SaveUserSettings(settings)
}

func (s *Settings) SetLanguage(userID int64, language string) error {
	current, err := s.db.GetUserSettings(userID)
	if err != nil {
		return err
	}

	settings := database.UserSettings{
		UserID:   userID,
		Timezone: s.defaultTimezone,
		Language: language,
	}
	if current != nil && current.Timezone != "" {
		settings.Timezone = current.Timezone
	}

	return s.db.SaveUserSettings(settings)
}

// PopularTimezones returns a short list of common IANA names to suggest
// to users picking a timezone.
func (s *Settings) PopularTimezones() []string {
	return []string{
		"Europe/Moscow",
		"Europe/London",
		"America/New_York",
		"America/Los_Angeles",
		"Asia/Tokyo",
		"Asia/Shanghai",
		"Europe/Berlin",
		"Australia/Sydney",
		"UTC",
	}
}

// KnownUsers reports how many users have stored preferences.
func (s *Settings) KnownUsers() int {
	count, err := s.db.CountUserSettings()
	if err != nil {
		s.logger.WithError(err).Warn("Failed to count user settings")
		return 0
	}
	return count
}
