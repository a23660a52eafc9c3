// Package ports declares the collaborators the application layer drives.
// Implementations live under infrastructure/.
package ports

import (
	"context"
	"errors"
	"time"

	"plotbot/domain/events"
	"plotbot/domain/plot"
)

// PlotProcessor turns message text into sampled data.
type PlotProcessor interface {
	Process(ctx context.Context, text string) (*plot.Plot, error)
}

// Renderer draws a plot as a PNG image.
type Renderer interface {
	Render(ctx context.Context, p *plot.Plot) ([]byte, error)
}

// ImageStore persists an image and returns a URL the chat client can fetch.
type ImageStore interface {
	Save(ctx context.Context, key string, png []byte) (string, error)
}

// Replier answers the user who sent the command.
type Replier interface {
	ReplyText(ctx context.Context, replyToken, text string) error
	ReplyImage(ctx context.Context, replyToken, originalURL, previewURL string) error
}

// IdempotencyStore deduplicates redelivered webhook events. Claim returns
// true exactly once per key within the store's retention window.
type IdempotencyStore interface {
	Claim(ctx context.Context, key string) (bool, error)
}

// Outcome labels recorded per processed request.
const (
	OutcomeRendered  = "rendered"
	OutcomeRejected  = "rejected"
	OutcomeDuplicate = "duplicate"
	OutcomeError     = "error"
)

// Metrics records request outcomes and per-stage latency.
type Metrics interface {
	RecordOutcome(source, outcome, kind string)
	ObserveStage(stage string, d time.Duration)
}

// EventPublisher emits domain events to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, evts ...events.DomainEvent) error
}

// NopMetrics discards everything.
type NopMetrics struct{}

func (NopMetrics) RecordOutcome(string, string, string) {}
func (NopMetrics) ObserveStage(string, time.Duration)   {}

// NopPublisher discards events.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, ...events.DomainEvent) error { return nil }

// ErrNothingToPlot is returned by a Renderer when no sample has a finite value.
var ErrNothingToPlot = errors.New("no finite sample to plot")
