package database

import (
	"context"
	"database/sql"
	"time"
)

type Database interface {
	GetDB() *sql.DB

	Exec(query string, args ...any) (sql.Result, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
	Close() error
	ExecWithRetry(ctx context.Context, query string, args ...any) (sql.Result, error)

	GetUserSettings(userID int64) (*UserSettings, error)
	SaveUserSettings(settings UserSettings) error
	CountUserSettings() (int, error)
}

// UserSettings is the only state that survives a restart: per-user
// preferences the bot needs to rebuild prompts correctly.
type UserSettings struct {
	UserID    int64     `json:"user_id"`
	Timezone  string    `json:"timezone"`
	Language  string    `json:"language"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
