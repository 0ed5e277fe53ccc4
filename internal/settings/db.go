package settings

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"runtime"

	"github.com/dmitrijs2005/nestkey/internal/filex"
	"github.com/dmitrijs2005/nestkey/internal/settings/migrations"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

// RunMigrations applies the embedded goose migrations to db.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	return goose.UpContext(ctx, db, ".")
}

// OpenDatabase opens (creating if needed) the SQLite file at path, applies
// migrations and restricts the file to its owner.
func OpenDatabase(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open settings db: %w", err)
	}
	// a single connection keeps SQLite writes serialized
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate settings db: %w", err)
	}

	if runtime.GOOS != "windows" {
		if err := os.Chmod(path, filex.FilePerm); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("chmod settings db: %w", err)
		}
	}
	return db, nil
}
