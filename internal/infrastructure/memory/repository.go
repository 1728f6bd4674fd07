package memory

import (
	"context"
	"sync"

	"github.com/sp3dr4/wren/internal/domain"
)

// URLRepository keeps records in process memory. It enforces the same
// constraints as the SQL schema: unique ids and unique short codes.
type URLRepository struct {
	byID   map[int64]*domain.URL
	byCode map[string]int64
	mu     sync.RWMutex
}

func NewURLRepository() *URLRepository {
	return &URLRepository{
		byID:   make(map[int64]*domain.URL),
		byCode: make(map[string]int64),
	}
}

func (r *URLRepository) Insert(ctx context.Context, url *domain.URL) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[url.ID]; exists {
		return domain.ErrInternal
	}

	stored := *url
	r.byID[url.ID] = &stored
	if stored.ShortCode != "" {
		r.byCode[stored.ShortCode] = stored.ID
	}
	return nil
}

func (r *URLRepository) AssignCode(ctx context.Context, id int64, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	url, exists := r.byID[id]
	if !exists {
		return domain.ErrURLNotFound
	}
	if owner, taken := r.byCode[code]; taken && owner != id {
		return domain.ErrShortCodeExists
	}

	if url.ShortCode != "" {
		delete(r.byCode, url.ShortCode)
	}
	url.ShortCode = code
	r.byCode[code] = id
	return nil
}

func (r *URLRepository) FindByCode(ctx context.Context, code string) (*domain.URL, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, exists := r.byCode[code]
	if !exists {
		return nil, nil
	}

	found := *r.byID[id]
	return &found, nil
}

func (r *URLRepository) AddClicks(ctx context.Context, code string, n int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, exists := r.byCode[code]
	if !exists {
		return domain.ErrURLNotFound
	}

	r.byID[id].Clicks += n
	return nil
}

// Len returns the number of stored records, assigned or not.
func (r *URLRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.byID)
}

func (r *URLRepository) Close() error {
	return nil
}

func (r *URLRepository) HealthCheck(ctx context.Context) error {
	return nil
}
