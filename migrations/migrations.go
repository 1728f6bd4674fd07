// Package migrations embeds the SQL schema for every relational backend and
// applies it with golang-migrate.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed postgres/*.sql sqlite/*.sql
var migrationsFS embed.FS

// Dialects understood by Up. The value doubles as the embedded directory name.
const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

// Up applies all pending migrations for dialect to db.
// It does not close db.
func Up(db *sql.DB, dialect string, logger *slog.Logger) error {
	const op = "migrations.Up"

	var (
		driver database.Driver
		err    error
	)

	switch dialect {
	case DialectPostgres:
		driver, err = postgres.WithInstance(db, &postgres.Config{})
	case DialectSQLite:
		driver, err = sqlite3.WithInstance(db, &sqlite3.Config{})
	default:
		return fmt.Errorf("%s: unsupported dialect: %s", op, dialect)
	}
	if err != nil {
		return fmt.Errorf("%s: failed to create migration driver: %w", op, err)
	}

	source, err := iofs.New(migrationsFS, dialect)
	if err != nil {
		return fmt.Errorf("%s: failed to open embedded migrations: %w", op, err)
	}

	m, err := migrate.NewWithInstance("iofs", source, dialect, driver)
	if err != nil {
		return fmt.Errorf("%s: failed to create migrate instance: %w", op, err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("%s: failed to run migrations: %w", op, err)
	}

	version, _, _ := m.Version()
	logger.Info("Migrations completed successfully", "dialect", dialect, "version", version)
	return nil
}
