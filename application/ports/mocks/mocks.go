// Package mocks provides testify mocks for the application ports.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"plotbot/domain/events"
	"plotbot/domain/plot"
)

type MockRenderer struct {
	mock.Mock
}

func (m *MockRenderer) Render(ctx context.Context, p *plot.Plot) ([]byte, error) {
	args := m.Called(ctx, p)
	if b := args.Get(0); b != nil {
		return b.([]byte), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockImageStore struct {
	mock.Mock
}

func (m *MockImageStore) Save(ctx context.Context, key string, png []byte) (string, error) {
	args := m.Called(ctx, key, png)
	return args.String(0), args.Error(1)
}

type MockReplier struct {
	mock.Mock
}

func (m *MockReplier) ReplyText(ctx context.Context, replyToken, text string) error {
	return m.Called(ctx, replyToken, text).Error(0)
}

func (m *MockReplier) ReplyImage(ctx context.Context, replyToken, originalURL, previewURL string) error {
	return m.Called(ctx, replyToken, originalURL, previewURL).Error(0)
}

type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) Claim(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

type MockMetrics struct {
	mock.Mock
}

func (m *MockMetrics) RecordOutcome(source, outcome, kind string) {
	m.Called(source, outcome, kind)
}

func (m *MockMetrics) ObserveStage(stage string, d time.Duration) {
	m.Called(stage, d)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, evts ...events.DomainEvent) error {
	args := make([]interface{}, 0, len(evts)+1)
	args = append(args, ctx)
	for _, e := range evts {
		args = append(args, e)
	}
	return m.Called(args...).Error(0)
}
