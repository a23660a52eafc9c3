// Package line talks to the LINE Messaging API: it verifies and parses
// webhook deliveries and sends replies.
package line

import (
	"context"
	"fmt"
	"net/http"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"go.uber.org/zap"

	pkgerrors "plotbot/pkg/errors"
)

// Replier implements ports.Replier with the reply API, which is free of
// charge but only valid once per reply token.
type Replier struct {
	api    *messaging_api.MessagingApiAPI
	logger *zap.Logger
}

// Option configures the underlying API client.
type Option = messaging_api.MessagingApiAPIOption

// WithEndpoint points the client at a different API host.
func WithEndpoint(endpoint string) Option {
	return messaging_api.WithEndpoint(endpoint)
}

// WithHTTPClient sets the HTTP client used for API calls.
func WithHTTPClient(c *http.Client) Option {
	return messaging_api.WithHTTPClient(c)
}

// NewReplier creates a replier authenticated with a channel access token.
func NewReplier(channelAccessToken string, logger *zap.Logger, opts ...Option) (*Replier, error) {
	api, err := messaging_api.NewMessagingApiAPI(channelAccessToken, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create LINE messaging client: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Replier{api: api, logger: logger}, nil
}

// ReplyText sends a single text message.
func (r *Replier) ReplyText(ctx context.Context, replyToken, text string) error {
	return r.reply(ctx, replyToken, messaging_api.TextMessage{Text: text})
}

// ReplyImage sends a single image message. Both URLs must be HTTPS.
func (r *Replier) ReplyImage(ctx context.Context, replyToken, originalURL, previewURL string) error {
	return r.reply(ctx, replyToken, messaging_api.ImageMessage{
		OriginalContentUrl: originalURL,
		PreviewImageUrl:    previewURL,
	})
}

func (r *Replier) reply(ctx context.Context, replyToken string, msg messaging_api.MessageInterface) error {
	_, err := r.api.WithContext(ctx).ReplyMessage(&messaging_api.ReplyMessageRequest{
		ReplyToken: replyToken,
		Messages:   []messaging_api.MessageInterface{msg},
	})
	if err != nil {
		r.logger.Warn("LINE reply failed", zap.Error(err))
		return pkgerrors.NewExternalError("line", err)
	}
	return nil
}
