package settings

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/nestkey/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestRepo(t *testing.T) (*SQLiteRepository, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.db")
	db, err := OpenDatabase(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewSQLiteRepository(db), path
}

func TestOpenDatabase_CreatesOwnerOnlyFile(t *testing.T) {
	_, path := openTestRepo(t)

	fi, err := os.Stat(path)
	require.NoError(t, err)
	if runtime.GOOS != "windows" {
		assert.Equal(t, os.FileMode(0o600), fi.Mode().Perm())
	}
}

func TestOpenDatabase_MigrationsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.db")
	ctx := context.Background()

	db1, err := OpenDatabase(ctx, path)
	require.NoError(t, err)
	require.NoError(t, NewSQLiteRepository(db1).SetTheme(ctx, ThemeDark))
	require.NoError(t, db1.Close())

	db2, err := OpenDatabase(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db2.Close() })

	got, err := NewSQLiteRepository(db2).Theme(ctx)
	require.NoError(t, err)
	assert.Equal(t, ThemeDark, got)
}

func TestTheme_DefaultsToLight(t *testing.T) {
	repo, _ := openTestRepo(t)

	got, err := repo.Theme(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ThemeLight, got)

	ts, err := repo.UpdatedAt(context.Background())
	require.NoError(t, err)
	assert.True(t, ts.IsZero())
}

func TestSetTheme_PersistsAndStamps(t *testing.T) {
	repo, _ := openTestRepo(t)
	repo.now = func() time.Time { return time.Unix(1_700_000_123, 0) }
	ctx := context.Background()

	require.NoError(t, repo.SetTheme(ctx, ThemeDark))
	got, err := repo.Theme(ctx)
	require.NoError(t, err)
	assert.Equal(t, ThemeDark, got)

	require.NoError(t, repo.SetTheme(ctx, "LIGHT"))
	got, err = repo.Theme(ctx)
	require.NoError(t, err)
	assert.Equal(t, ThemeLight, got)

	ts, err := repo.UpdatedAt(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1_700_000_123), ts.Unix())
}

func TestSetTheme_RejectsUnknown(t *testing.T) {
	repo, _ := openTestRepo(t)
	require.ErrorIs(t, repo.SetTheme(context.Background(), "neon"), common.ErrInvalidTheme)
}

func TestTheme_UnknownStoredValueFallsBack(t *testing.T) {
	repo, _ := openTestRepo(t)
	ctx := context.Background()

	_, err := repo.db.ExecContext(ctx, `INSERT INTO settings(key, value) VALUES ('theme', 'neon')`)
	require.NoError(t, err)

	got, err := repo.Theme(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultTheme, got)
}

func TestTheme_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT value FROM settings WHERE key = \?`).
		WithArgs("theme").
		WillReturnError(errors.New("disk I/O error"))

	_, err = NewSQLiteRepository(db).Theme(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get setting[theme]")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSetTheme_RollsBackOnExecError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO settings`).
		WithArgs("theme", "dark").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO settings`).
		WithArgs("updated_at", sqlmock.AnyArg()).
		WillReturnError(errors.New("database is locked"))
	mock.ExpectRollback()

	err = NewSQLiteRepository(db).SetTheme(context.Background(), ThemeDark)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to set setting[updated_at]")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatedAt_BadValue(t *testing.T) {
	repo, _ := openTestRepo(t)
	ctx := context.Background()

	_, err := repo.db.ExecContext(ctx, `INSERT INTO settings(key, value) VALUES ('updated_at', 'yesterday')`)
	require.NoError(t, err)

	_, err = repo.UpdatedAt(ctx)
	require.Error(t, err)
}
