package line

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"
)

// ErrInvalidSignature is returned when X-Line-Signature does not match the body.
var ErrInvalidSignature = webhook.ErrInvalidSignature

// TextEvent is a text message a user sent to the bot.
type TextEvent struct {
	EventID    string
	ReplyToken string
	Text       string
}

// WebhookParser verifies and decodes webhook deliveries for one channel.
type WebhookParser struct {
	channelSecret string
}

// NewWebhookParser creates a parser bound to the channel secret.
func NewWebhookParser(channelSecret string) *WebhookParser {
	return &WebhookParser{channelSecret: channelSecret}
}

// ParseTextEvents verifies the request signature and returns every text
// message event in delivery order. Other event and message types are skipped.
func (p *WebhookParser) ParseTextEvents(r *http.Request) ([]TextEvent, error) {
	cb, err := webhook.ParseRequest(p.channelSecret, r)
	if err != nil {
		if errors.Is(err, webhook.ErrInvalidSignature) {
			return nil, ErrInvalidSignature
		}
		return nil, fmt.Errorf("failed to parse webhook body: %w", err)
	}

	var out []TextEvent
	for _, ev := range cb.Events {
		e, ok := ev.(webhook.MessageEvent)
		if !ok {
			continue
		}
		msg, ok := e.Message.(webhook.TextMessageContent)
		if !ok {
			continue
		}
		out = append(out, TextEvent{
			EventID:    e.WebhookEventId,
			ReplyToken: e.ReplyToken,
			Text:       msg.Text,
		})
	}
	return out, nil
}
