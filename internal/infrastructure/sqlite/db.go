package sqlite

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/sp3dr4/wren/migrations"
)

// Open connects to the database file at path, creating its directory if
// needed, and applies the schema. The pool is capped at one connection so
// writers never race for the file lock.
func Open(path string, logger *slog.Logger) (*sqlx.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := sqlx.Connect("sqlite3", path+"?_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SQLite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := migrations.Up(db.DB, migrations.DialectSQLite, logger); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}
