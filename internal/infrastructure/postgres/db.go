package postgres

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/sp3dr4/wren/migrations"
)

// Open connects to the database at url and applies the schema.
func Open(url string, logger *slog.Logger) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := migrations.Up(db.DB, migrations.DialectPostgres, logger); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}
