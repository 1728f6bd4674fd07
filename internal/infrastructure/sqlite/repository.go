package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"

	"github.com/sp3dr4/wren/internal/domain"
)

type URLRepository struct {
	db *sqlx.DB
}

func NewURLRepository(db *sqlx.DB) *URLRepository {
	return &URLRepository{db: db}
}

func (r *URLRepository) Insert(ctx context.Context, url *domain.URL) error {
	const op = "sqlite.URLRepository.Insert"

	query := `
		INSERT INTO urls (id, original_url, clicks, created_at)
		VALUES (:id, :original_url, :clicks, :created_at)
	`

	if _, err := r.db.NamedExecContext(ctx, query, url); err != nil {
		return handleSQLiteError(err, op)
	}

	return nil
}

func (r *URLRepository) AssignCode(ctx context.Context, id int64, code string) error {
	const op = "sqlite.URLRepository.AssignCode"

	query := `UPDATE urls SET short_code = ? WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, code, id)
	if err != nil {
		return handleSQLiteError(err, op)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return handleSQLiteError(err, op)
	}
	if rowsAffected == 0 {
		return domain.ErrURLNotFound
	}

	return nil
}

func (r *URLRepository) FindByCode(ctx context.Context, code string) (*domain.URL, error) {
	const op = "sqlite.URLRepository.FindByCode"

	var url domain.URL
	query := `SELECT id, original_url, short_code, clicks, created_at FROM urls WHERE short_code = ?`

	err := r.db.GetContext(ctx, &url, query, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, handleSQLiteError(err, op)
	}

	return &url, nil
}

func (r *URLRepository) AddClicks(ctx context.Context, code string, n int64) error {
	const op = "sqlite.URLRepository.AddClicks"

	query := `UPDATE urls SET clicks = clicks + ? WHERE short_code = ?`

	result, err := r.db.ExecContext(ctx, query, n, code)
	if err != nil {
		return handleSQLiteError(err, op)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return handleSQLiteError(err, op)
	}
	if rowsAffected == 0 {
		return domain.ErrURLNotFound
	}

	return nil
}

func (r *URLRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *URLRepository) HealthCheck(ctx context.Context) error {
	if r.db == nil {
		return errors.New("database connection is nil")
	}
	return r.db.PingContext(ctx)
}

func handleSQLiteError(err error, op string) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique:
			return domain.ErrShortCodeExists
		case sqlite3.ErrConstraintPrimaryKey:
			return fmt.Errorf("%s: duplicate id: %w", op, domain.ErrInternal)
		}
	}

	return fmt.Errorf("%s: %w: %w", op, domain.ErrStorageUnavailable, err)
}
