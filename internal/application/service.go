package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sp3dr4/wren/internal/domain"
	"github.com/sp3dr4/wren/internal/pkg/base62"
	"github.com/sp3dr4/wren/internal/pkg/logging"
	"github.com/sp3dr4/wren/internal/pkg/metrics"
)

// DefaultCacheTTL is how long a resolved mapping stays in the cache.
const DefaultCacheTTL = 24 * time.Hour

type Config struct {
	// BaseURL is prefixed to every code to build the short URL.
	BaseURL  string
	CacheTTL time.Duration
}

type URLService struct {
	store    *RecordStore
	cache    domain.Cache
	clicks   domain.ClickRecorder
	registry metrics.Registry
	baseURL  string
	cacheTTL time.Duration
}

func NewURLService(
	store *RecordStore,
	cache domain.Cache,
	clicks domain.ClickRecorder,
	registry metrics.Registry,
	cfg Config,
) *URLService {
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &URLService{
		store:    store,
		cache:    cache,
		clicks:   clicks,
		registry: registry,
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		cacheTTL: ttl,
	}
}

type ShortenResult struct {
	ShortURL    string
	Code        string
	OriginalURL string
	CreatedAt   time.Time
}

// Shorten stores originalURL under a freshly allocated id and returns the
// short URL built from the base62 encoding of that id.
func (s *URLService) Shorten(ctx context.Context, originalURL string) (*ShortenResult, error) {
	logger := logging.FromContext(ctx)

	url, err := s.store.Create(ctx, originalURL)
	if err != nil {
		return nil, err
	}

	code := base62.Encode(uint64(url.ID))

	if err := s.store.AssignCode(ctx, url.ID, code); err != nil {
		if errors.Is(err, domain.ErrShortCodeExists) {
			logger.Error("encoded short code collides with an existing record",
				"id", url.ID,
				"short_code", code,
			)
			return nil, fmt.Errorf("%w: code %q for id %d already assigned: %w", domain.ErrInternal, code, url.ID, err)
		}
		return nil, fmt.Errorf("assign code to record %d: %w", url.ID, err)
	}
	url.ShortCode = code

	s.cache.Set(ctx, code, url.OriginalURL, s.cacheTTL)
	s.registry.IncURLsShortened()

	logger.Debug("url shortened", "id", url.ID, "short_code", code)

	return &ShortenResult{
		ShortURL:    s.baseURL + "/" + code,
		Code:        code,
		OriginalURL: url.OriginalURL,
		CreatedAt:   url.CreatedAt,
	}, nil
}

// Resolve returns the original URL for code, reading the cache first and
// falling back to the record store on a miss.
func (s *URLService) Resolve(ctx context.Context, code string) (string, error) {
	if !base62.IsValid(code) {
		return "", domain.ErrURLNotFound
	}

	if originalURL, ok := s.cache.Get(ctx, code); ok {
		s.registry.ObserveCacheLookup(true)
		s.resolved(ctx, code)
		return originalURL, nil
	}
	s.registry.ObserveCacheLookup(false)

	url, err := s.store.FindByCode(ctx, code)
	if err != nil {
		return "", err
	}
	if url == nil {
		return "", domain.ErrURLNotFound
	}

	s.cache.Set(ctx, code, url.OriginalURL, s.cacheTTL)
	s.resolved(ctx, code)

	return url.OriginalURL, nil
}

func (s *URLService) resolved(ctx context.Context, code string) {
	s.clicks.Record(ctx, code)
	s.registry.IncURLsResolved()
}

// Readiness is the health of the service's dependencies. A nil field means
// the dependency answered.
type Readiness struct {
	Store error
	Cache error
}

// Ready reports whether the service can take traffic. Only the record store
// counts; a failing cache degrades latency but not correctness.
func (r Readiness) Ready() bool {
	return r.Store == nil
}

func (s *URLService) Readiness(ctx context.Context) Readiness {
	return Readiness{
		Store: s.store.repo.HealthCheck(ctx),
		Cache: s.cache.Ping(ctx),
	}
}
