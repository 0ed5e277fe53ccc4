package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/nestkey/internal/dbx"
)

const (
	themeKey     = "theme"
	updatedAtKey = "updated_at"
)

// Repository reads and writes preferences.
type Repository interface {
	Theme(ctx context.Context) (Theme, error)
	SetTheme(ctx context.Context, t Theme) error
	UpdatedAt(ctx context.Context) (time.Time, error)
}

// SQLiteRepository stores preferences as key/value rows.
type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db, now: time.Now}
}

func get(ctx context.Context, q dbx.DBTX, key string) (string, bool, error) {
	var value string
	err := q.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get setting[%s]: %w", key, err)
	}
	return value, true, nil
}

func set(ctx context.Context, q dbx.DBTX, key, value string) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set setting[%s]: %w", key, err)
	}
	return nil
}

// Theme returns the stored theme, DefaultTheme when none is stored or the
// stored value is not a known theme.
func (r *SQLiteRepository) Theme(ctx context.Context) (Theme, error) {
	v, ok, err := get(ctx, r.db, themeKey)
	if err != nil {
		return "", err
	}
	if !ok || !Theme(v).Valid() {
		return DefaultTheme, nil
	}
	return Theme(v), nil
}

// SetTheme stores t together with the modification time in one transaction.
// Unknown themes are rejected.
func (r *SQLiteRepository) SetTheme(ctx context.Context, t Theme) error {
	parsed, err := ParseTheme(string(t))
	if err != nil {
		return err
	}

	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := set(ctx, tx, themeKey, string(parsed)); err != nil {
			return err
		}
		return set(ctx, tx, updatedAtKey, strconv.FormatInt(r.now().Unix(), 10))
	})
}

// UpdatedAt returns when preferences were last changed, zero if never.
func (r *SQLiteRepository) UpdatedAt(ctx context.Context) (time.Time, error) {
	v, ok, err := get(ctx, r.db, updatedAtKey)
	if err != nil || !ok {
		return time.Time{}, err
	}
	sec, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse setting[%s]: %w", updatedAtKey, err)
	}
	return time.Unix(sec, 0), nil
}
