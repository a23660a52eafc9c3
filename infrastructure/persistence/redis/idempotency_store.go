// Package redis deduplicates webhook deliveries across instances with Redis.
package redis

import (
	"context"
	"time"

	backend "github.com/redis/go-redis/v9"

	pkgerrors "plotbot/pkg/errors"
)

const defaultPrefix = "plotbot:event:"

// IdempotencyStore claims keys with SET NX and a TTL.
type IdempotencyStore struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

// Option configures the store.
type Option func(*IdempotencyStore)

// WithPrefix namespaces keys, e.g. per environment.
func WithPrefix(prefix string) Option {
	return func(s *IdempotencyStore) {
		s.prefix = prefix
	}
}

// NewIdempotencyStore creates a store over an existing client.
func NewIdempotencyStore(client *backend.Client, ttl time.Duration, opts ...Option) *IdempotencyStore {
	s := &IdempotencyStore{
		client: client,
		prefix: defaultPrefix,
		ttl:    ttl,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewClient dials addr lazily; go-redis connects on first command.
func NewClient(addr string) *backend.Client {
	return backend.NewClient(&backend.Options{Addr: addr})
}

// Claim implements ports.IdempotencyStore.
func (s *IdempotencyStore) Claim(ctx context.Context, key string) (bool, error) {
	ok, err := s.client.SetNX(ctx, s.prefix+key, time.Now().UTC().Format(time.RFC3339), s.ttl).Result()
	if err != nil {
		return false, pkgerrors.NewStorageError("redis SETNX", err)
	}
	return ok, nil
}

// Ping reports whether Redis is reachable.
func (s *IdempotencyStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return pkgerrors.NewUnavailableError("redis").WithCause(err)
	}
	return nil
}

// Close releases the client's connections.
func (s *IdempotencyStore) Close() error {
	return s.client.Close()
}
