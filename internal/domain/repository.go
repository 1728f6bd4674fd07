package domain

import "context"

// URLRepository persists URL records. Ids are allocated by a Sequence before
// Insert is called, so implementations never generate them.
type URLRepository interface {
	Insert(ctx context.Context, url *URL) error
	// AssignCode sets the short code of the record with the given id.
	// It returns ErrURLNotFound for an unknown id and ErrShortCodeExists
	// when the code is already taken.
	AssignCode(ctx context.Context, id int64, code string) error
	// FindByCode returns nil, nil when no record carries the code.
	FindByCode(ctx context.Context, code string) (*URL, error)
	AddClicks(ctx context.Context, code string, n int64) error
	Close() error
	HealthCheck(ctx context.Context) error
}

// Sequence hands out unique, strictly increasing ids for a named counter.
// The increment and the read happen in a single storage operation.
type Sequence interface {
	Next(ctx context.Context) (int64, error)
}

// ClickRecorder counts successful resolves of a short code.
type ClickRecorder interface {
	Record(ctx context.Context, code string)
}
