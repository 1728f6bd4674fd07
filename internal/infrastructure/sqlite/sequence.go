package sqlite

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/sp3dr4/wren/internal/domain"
)

// Sequence allocates ids with a single upsert ... RETURNING statement.
type Sequence struct {
	db   *sqlx.DB
	name string
}

func NewSequence(db *sqlx.DB, name string) *Sequence {
	return &Sequence{db: db, name: name}
}

func (s *Sequence) Next(ctx context.Context) (int64, error) {
	const op = "sqlite.Sequence.Next"

	query := `
		INSERT INTO sequences (name, value) VALUES (?, 1)
		ON CONFLICT (name) DO UPDATE SET value = sequences.value + 1
		RETURNING value
	`

	var value int64
	if err := s.db.GetContext(ctx, &value, query, s.name); err != nil {
		return 0, fmt.Errorf("%s: %w: %w", op, domain.ErrStorageUnavailable, err)
	}

	return value, nil
}
