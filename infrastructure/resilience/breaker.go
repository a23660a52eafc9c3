// Package resilience guards outbound calls with circuit breakers.
package resilience

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"plotbot/application/ports"
	pkgerrors "plotbot/pkg/errors"
)

// BreakerConfig holds configuration for circuit breaker
type BreakerConfig struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultBreakerConfig returns a default configuration for circuit breaker
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:             name,
		MaxRequests:      5,
		Interval:         30 * time.Second,
		Timeout:          60 * time.Second,
		FailureThreshold: 0.8,
		MinRequests:      5,
	}
}

// NewBreaker builds a breaker that trips once at least MinRequests calls were
// made in the interval and the failure ratio reaches FailureThreshold.
// Context cancellation is not counted as a failure of the dependency.
func NewBreaker(cfg BreakerConfig, logger *zap.Logger) *gobreaker.CircuitBreaker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
}

func execute(cb *gobreaker.CircuitBreaker, fn func() (interface{}, error)) (interface{}, error) {
	out, err := cb.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, pkgerrors.NewUnavailableError(cb.Name()).WithCause(err)
	}
	return out, err
}

// ImageStore wraps a ports.ImageStore with a circuit breaker.
type ImageStore struct {
	next ports.ImageStore
	cb   *gobreaker.CircuitBreaker
}

// NewImageStore decorates next.
func NewImageStore(next ports.ImageStore, cb *gobreaker.CircuitBreaker) *ImageStore {
	return &ImageStore{next: next, cb: cb}
}

// Save implements ports.ImageStore.
func (s *ImageStore) Save(ctx context.Context, key string, png []byte) (string, error) {
	out, err := execute(s.cb, func() (interface{}, error) {
		return s.next.Save(ctx, key, png)
	})
	if err != nil {
		return "", err
	}
	return out.(string), nil
}

// Replier wraps a ports.Replier with a circuit breaker.
type Replier struct {
	next ports.Replier
	cb   *gobreaker.CircuitBreaker
}

// NewReplier decorates next.
func NewReplier(next ports.Replier, cb *gobreaker.CircuitBreaker) *Replier {
	return &Replier{next: next, cb: cb}
}

// ReplyText implements ports.Replier.
func (r *Replier) ReplyText(ctx context.Context, replyToken, text string) error {
	_, err := execute(r.cb, func() (interface{}, error) {
		return nil, r.next.ReplyText(ctx, replyToken, text)
	})
	return err
}

// ReplyImage implements ports.Replier.
func (r *Replier) ReplyImage(ctx context.Context, replyToken, originalURL, previewURL string) error {
	_, err := execute(r.cb, func() (interface{}, error) {
		return nil, r.next.ReplyImage(ctx, replyToken, originalURL, previewURL)
	})
	return err
}
