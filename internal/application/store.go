package application

import (
	"context"
	"fmt"

	"github.com/sp3dr4/wren/internal/domain"
)

// RecordStore pairs a Sequence with a URLRepository so that every stored
// record gets its id from the allocator.
type RecordStore struct {
	seq  domain.Sequence
	repo domain.URLRepository
}

func NewRecordStore(seq domain.Sequence, repo domain.URLRepository) *RecordStore {
	return &RecordStore{seq: seq, repo: repo}
}

// Create validates originalURL, allocates an id and persists a record
// without a short code. An invalid URL consumes no id.
func (s *RecordStore) Create(ctx context.Context, originalURL string) (*domain.URL, error) {
	if err := domain.ValidateOriginalURL(originalURL); err != nil {
		return nil, err
	}

	id, err := s.seq.Next(ctx)
	if err != nil {
		return nil, fmt.Errorf("allocate id: %w", err)
	}

	url, err := domain.NewURL(id, originalURL)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Insert(ctx, url); err != nil {
		return nil, fmt.Errorf("insert record %d: %w", id, err)
	}

	return url, nil
}

func (s *RecordStore) AssignCode(ctx context.Context, id int64, code string) error {
	return s.repo.AssignCode(ctx, id, code)
}

// FindByCode returns nil, nil when no record carries the code.
func (s *RecordStore) FindByCode(ctx context.Context, code string) (*domain.URL, error) {
	return s.repo.FindByCode(ctx, code)
}
