package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DisaAst/chathub-bot/internal/database"
	"github.com/DisaAst/chathub-bot/internal/logger"
)

type memorySettingsStore struct {
	settings map[int64]database.UserSettings
	getErr   error
}

func newMemorySettingsStore() *memorySettingsStore {
	return &memorySettingsStore{settings: make(map[int64]database.UserSettings)}
}

func (m *memorySettingsStore) GetUserSettings(userID int64) (*database.UserSettings, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	s, ok := m.settings[userID]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (m *memorySettingsStore) SaveUserSettings(s database.UserSettings) error {
	m.settings[s.UserID] = s
	return nil
}

func (m *memorySettingsStore) CountUserSettings() (int, error) {
	return len(m.settings), nil
}

func newTestSettings(store SettingsStore) *Settings {
	return NewSettings(store, "UTC", "en", logger.NewTestLogger())
}

func TestSettings_DefaultsForUnknownUser(t *testing.T) {
	s := newTestSettings(newMemorySettingsStore())

	assert.Equal(t, "UTC", s.Timezone(1))
	assert.Equal(t, "en", s.Language(1))
}

func TestSettings_SetTimezone(t *testing.T) {
	store := newMemorySettingsStore()
	s := newTestSettings(store)

	require.NoError(t, s.SetTimezone(1, "Europe/Moscow"))
	assert.Equal(t, "Europe/Moscow", s.Timezone(1))
	assert.Equal(t, 1, s.KnownUsers())
}

func TestSettings_SetTimezoneRejectsUnknownZones(t *testing.T) {
	s := newTestSettings(newMemorySettingsStore())

	err := s.SetTimezone(1, "Mars/Olympus")
	require.Error(t, err)

	var invalidErr ErrInvalidTimezone
	require.ErrorAs(t, err, &invalidErr)
	assert.Equal(t, "Mars/Olympus", invalidErr.Timezone)
	assert.Equal(t, "UTC", s.Timezone(1))
}

func TestSettings_SetTimezonePreservesLanguage(t *testing.T) {
	store := newMemorySettingsStore()
	s := newTestSettings(store)

	require.NoError(t, s.SetLanguage(1, "ru"))
	require.NoError(t, s.SetTimezone(1, "Asia/Tokyo"))

	assert.Equal(t, "ru", s.Language(1))
	assert.Equal(t, "Asia/Tokyo", s.Timezone(1))
}

func TestSettings_LookupFailureDegradesToDefaults(t *testing.T) {
	store := newMemorySettingsStore()
	store.getErr = errors.New("database is locked")
	s := newTestSettings(store)

	assert.Equal(t, "UTC", s.Timezone(1))
	assert.Equal(t, "en", s.Language(1))
}

func TestSettings_PopularTimezonesAreAllValid(t *testing.T) {
	s := newTestSettings(newMemorySettingsStore())

	zones := s.PopularTimezones()
	require.NotEmpty(t, zones)
	for _, tz := range zones {
		assert.NoError(t, s.SetTimezone(1, tz), tz)
	}
}
