// Package clicks buffers resolve counts in memory and writes them to the
// record store in batches, so a cached resolve never touches the database.
package clicks

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/sp3dr4/wren/internal/domain"
	"github.com/sp3dr4/wren/internal/pkg/metrics"
)

// Flusher persists accumulated clicks for one short code.
type Flusher interface {
	AddClicks(ctx context.Context, code string, n int64) error
}

type Tracker struct {
	flusher  Flusher
	registry metrics.Registry
	logger   *slog.Logger
	interval time.Duration

	mu      sync.Mutex
	pending map[string]int64

	stop chan struct{}
	done chan struct{}
}

var _ domain.ClickRecorder = (*Tracker)(nil)

func NewTracker(flusher Flusher, interval time.Duration, registry metrics.Registry, logger *slog.Logger) *Tracker {
	if registry == nil {
		registry = metrics.NewNoOpRegistry()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{
		flusher:  flusher,
		registry: registry,
		logger:   logger,
		interval: interval,
		pending:  make(map[string]int64),
	}
}

func (t *Tracker) Record(_ context.Context, code string) {
	t.mu.Lock()
	t.pending[code]++
	t.mu.Unlock()
}

// Pending returns the number of clicks not yet flushed for code.
func (t *Tracker) Pending(code string) int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pending[code]
}

// Start launches the periodic flush loop. Calling Start on a running tracker is a no-op.
func (t *Tracker) Start() {
	t.mu.Lock()
	if t.stop != nil {
		t.mu.Unlock()
		return
	}
	stop, done := make(chan struct{}), make(chan struct{})
	t.stop, t.done = stop, done
	t.mu.Unlock()

	go t.loop(stop, done)
}

func (t *Tracker) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), t.interval)
			t.Flush(ctx)
			cancel()
		case <-stop:
			return
		}
	}
}

// Stop ends the flush loop and writes whatever is still pending.
func (t *Tracker) Stop(ctx context.Context) error {
	t.mu.Lock()
	stop, done := t.stop, t.done
	t.stop = nil
	t.mu.Unlock()

	if stop != nil {
		close(stop)
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	t.Flush(ctx)
	return nil
}

// Flush writes all pending counts. Counts that fail to write are put back
// and retried on the next flush.
func (t *Tracker) Flush(ctx context.Context) {
	t.mu.Lock()
	if len(t.pending) == 0 {
		t.mu.Unlock()
		return
	}
	batch := t.pending
	t.pending = make(map[string]int64, len(batch))
	t.mu.Unlock()

	var flushed int64
	for code, n := range batch {
		if err := t.flusher.AddClicks(ctx, code, n); err != nil {
			if errors.Is(err, domain.ErrURLNotFound) {
				t.logger.Debug("dropping clicks for unknown code", "short_code", code, "clicks", n)
				continue
			}
			t.logger.Warn("failed to flush clicks",
				"short_code", code,
				"clicks", n,
				"error", err,
			)
			t.requeue(code, n)
			continue
		}
		flushed += n
	}

	if flushed > 0 {
		t.registry.AddClicksFlushed(int(flushed))
		t.logger.Debug("flushed clicks", "clicks", flushed, "codes", len(batch))
	}
}

func (t *Tracker) requeue(code string, n int64) {
	t.mu.Lock()
	t.pending[code] += n
	t.mu.Unlock()
}

// NoOpRecorder discards clicks. Used when click counting is disabled.
type NoOpRecorder struct{}

func (NoOpRecorder) Record(context.Context, string) {}
