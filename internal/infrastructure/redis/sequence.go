package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/sp3dr4/wren/internal/domain"
)

const sequenceKeyPrefix = "seq:"

// Sequence allocates ids with INCR, which is atomic on the Redis server and
// creates the counter at zero on first use.
type Sequence struct {
	client redis.UniversalClient
	key    string
}

func NewSequence(client redis.UniversalClient, name string) *Sequence {
	return &Sequence{
		client: client,
		key:    sequenceKeyPrefix + name,
	}
}

func (s *Sequence) Next(ctx context.Context) (int64, error) {
	const op = "redis.Sequence.Next"

	value, err := s.client.Incr(ctx, s.key).Result()
	if err != nil {
		return 0, fmt.Errorf("%s: %w: %w", op, domain.ErrStorageUnavailable, err)
	}

	return value, nil
}
