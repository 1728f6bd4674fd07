package redis

import (
	"time"

	"github.com/redis/go-redis/v9"
)

// ClientOptions is the subset of go-redis options the service exposes.
type ClientOptions struct {
	Addr         string
	Password     string
	DB           int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// NewClient builds a client. No connection is made until the first command.
func NewClient(opts ClientOptions) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  opts.DialTimeout,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
		MaxRetries:   -1,

		ContextTimeoutEnabled: true,
	})
}
