package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/sp3dr4/wren/internal/domain"
)

// Sequence is a counter held in process memory. Values are lost on restart.
type Sequence struct {
	name  string
	mu    sync.Mutex
	value int64
}

func NewSequence(name string) *Sequence {
	return &Sequence{name: name}
}

// NewSequenceFrom returns a Sequence whose next value is start+1.
func NewSequenceFrom(name string, start int64) *Sequence {
	return &Sequence{name: name, value: start}
}

func (s *Sequence) Next(ctx context.Context) (int64, error) {
	const op = "memory.Sequence.Next"

	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("%s %q: %w: %w", op, s.name, domain.ErrStorageUnavailable, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.value++
	return s.value, nil
}
