// Package memory provides a process-local webhook deduplication store.
package memory

import (
	"context"
	"sync"
	"time"
)

// IdempotencyStore remembers claimed keys for a TTL. It only deduplicates
// within one process.
type IdempotencyStore struct {
	mu    sync.Mutex
	items map[string]time.Time
	ttl   time.Duration
	now   func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

// NewIdempotencyStore creates a store and starts its janitor, which sweeps
// expired keys every interval until Close.
func NewIdempotencyStore(ttl, interval time.Duration) *IdempotencyStore {
	s := &IdempotencyStore{
		items: make(map[string]time.Time),
		ttl:   ttl,
		now:   time.Now,
		stop:  make(chan struct{}),
	}
	if interval > 0 {
		go s.cleanupExpired(interval)
	}
	return s
}

// Claim implements ports.IdempotencyStore.
func (s *IdempotencyStore) Claim(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if expiresAt, exists := s.items[key]; exists && now.Before(expiresAt) {
		return false, nil
	}
	s.items[key] = now.Add(s.ttl)
	return true, nil
}

// Len is the number of keys currently held, expired or not.
func (s *IdempotencyStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Close stops the janitor.
func (s *IdempotencyStore) Close() error {
	s.stopOnce.Do(func() { close(s.stop) })
	return nil
}

func (s *IdempotencyStore) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, expiresAt := range s.items {
		if !now.Before(expiresAt) {
			delete(s.items, key)
		}
	}
}

func (s *IdempotencyStore) cleanupExpired(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stop:
			return
		}
	}
}
