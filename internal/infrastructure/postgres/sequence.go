package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/sp3dr4/wren/internal/domain"
)

// Sequence allocates ids from a row of the sequences table. The upsert
// increments and returns the new value in one statement, so concurrent
// callers never observe the same value.
type Sequence struct {
	db   *sqlx.DB
	name string
}

func NewSequence(db *sqlx.DB, name string) *Sequence {
	return &Sequence{db: db, name: name}
}

func (s *Sequence) Next(ctx context.Context) (int64, error) {
	const op = "postgres.Sequence.Next"

	query := `
		INSERT INTO sequences (name, value) VALUES ($1, 1)
		ON CONFLICT (name) DO UPDATE SET value = sequences.value + 1
		RETURNING value
	`

	var value int64
	if err := s.db.GetContext(ctx, &value, query, s.name); err != nil {
		return 0, fmt.Errorf("%s: %w: %w", op, domain.ErrStorageUnavailable, err)
	}

	return value, nil
}
