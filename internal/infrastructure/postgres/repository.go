package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sp3dr4/wren/internal/domain"
)

const (
	shortCodeConstraint  = "urls_short_code_key"
	primaryKeyConstraint = "urls_pkey"
)

type URLRepository struct {
	db *sqlx.DB
}

func NewURLRepository(db *sqlx.DB) *URLRepository {
	return &URLRepository{db: db}
}

func (r *URLRepository) Insert(ctx context.Context, url *domain.URL) error {
	const op = "postgres.URLRepository.Insert"

	query := `
		INSERT INTO urls (id, original_url, clicks, created_at)
		VALUES ($1, $2, $3, $4)
	`

	if _, err := r.db.ExecContext(ctx, query, url.ID, url.OriginalURL, url.Clicks, url.CreatedAt); err != nil {
		return r.handlePostgreSQLError(err, op)
	}

	slog.Debug("URL record created", "id", url.ID)
	return nil
}

func (r *URLRepository) AssignCode(ctx context.Context, id int64, code string) error {
	const op = "postgres.URLRepository.AssignCode"

	query := `UPDATE urls SET short_code = $1 WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, code, id)
	if err != nil {
		return r.handlePostgreSQLError(err, op)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return r.handlePostgreSQLError(err, op)
	}
	if rowsAffected == 0 {
		return domain.ErrURLNotFound
	}

	slog.Debug("Short code assigned", "id", id, "short_code", code)
	return nil
}

func (r *URLRepository) FindByCode(ctx context.Context, code string) (*domain.URL, error) {
	const op = "postgres.URLRepository.FindByCode"

	var url domain.URL
	query := `SELECT id, original_url, short_code, clicks, created_at FROM urls WHERE short_code = $1`

	err := r.db.GetContext(ctx, &url, query, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, r.handlePostgreSQLError(err, op)
	}

	return &url, nil
}

func (r *URLRepository) AddClicks(ctx context.Context, code string, n int64) error {
	const op = "postgres.URLRepository.AddClicks"

	query := `UPDATE urls SET clicks = clicks + $1 WHERE short_code = $2`

	result, err := r.db.ExecContext(ctx, query, n, code)
	if err != nil {
		return r.handlePostgreSQLError(err, op)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return r.handlePostgreSQLError(err, op)
	}
	if rowsAffected == 0 {
		return domain.ErrURLNotFound
	}

	return nil
}

// handlePostgreSQLError converts PostgreSQL-specific errors to domain errors.
// A taken short code is ErrShortCodeExists, any other constraint violation is
// ErrInternal, and everything else is reported as the store being unavailable.
func (r *URLRepository) handlePostgreSQLError(err error, op string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		slog.Error("PostgreSQL error",
			"operation", op,
			"code", pqErr.Code,
			"message", pqErr.Message,
			"detail", pqErr.Detail,
		)

		switch pqErr.Code {
		case "23505": // unique_violation
			switch pqErr.Constraint {
			case shortCodeConstraint:
				return domain.ErrShortCodeExists
			case primaryKeyConstraint:
				return fmt.Errorf("%s: duplicate id: %w: %w", op, domain.ErrInternal, err)
			}
			return fmt.Errorf("%s: unique constraint violation: %w: %w", op, domain.ErrInternal, err)
		case "23502": // not_null_violation
			return fmt.Errorf("%s: required field %s missing: %w: %w", op, pqErr.Column, domain.ErrInternal, err)
		case "23514": // check_violation
			return fmt.Errorf("%s: check constraint violation: %w: %w", op, domain.ErrInternal, err)
		}
	}

	return fmt.Errorf("%s: %w: %w", op, domain.ErrStorageUnavailable, err)
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
