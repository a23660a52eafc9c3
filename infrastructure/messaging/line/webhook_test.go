package line

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "channel-secret"

// sign returns the X-Line-Signature value for body.
func sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func webhookRequest(body []byte, signature string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/callback", bytes.NewReader(body))
	req.Header.Set("X-Line-Signature", signature)
	req.Header.Set("Content-Type", "application/json")
	return req
}

const deliveryBody = `{
  "destination": "U0000",
  "events": [
    {
      "type": "message",
      "mode": "active",
      "timestamp": 1700000000000,
      "webhookEventId": "01HEVT1",
      "deliveryContext": {"isRedelivery": false},
      "replyToken": "reply-1",
      "source": {"type": "user", "userId": "U1234"},
      "message": {"id": "m1", "type": "text", "quoteToken": "q1", "text": "[0:6.28]\nsin(x)"}
    },
    {
      "type": "message",
      "mode": "active",
      "timestamp": 1700000000001,
      "webhookEventId": "01HEVT2",
      "deliveryContext": {"isRedelivery": false},
      "replyToken": "reply-2",
      "source": {"type": "user", "userId": "U1234"},
      "message": {"id": "m2", "type": "sticker", "quoteToken": "q2", "packageId": "1", "stickerId": "1", "stickerResourceType": "STATIC"}
    },
    {
      "type": "follow",
      "mode": "active",
      "timestamp": 1700000000002,
      "webhookEventId": "01HEVT3",
      "deliveryContext": {"isRedelivery": false},
      "replyToken": "reply-3",
      "source": {"type": "user", "userId": "U1234"},
      "follow": {"isUnblocked": false}
    }
  ]
}`

func TestWebhookParser_ParseTextEvents(t *testing.T) {
	body := []byte(deliveryBody)
	p := NewWebhookParser(testSecret)

	events, err := p.ParseTextEvents(webhookRequest(body, sign(testSecret, body)))
	require.NoError(t, err)

	require.Len(t, events, 1)
	assert.Equal(t, TextEvent{EventID: "01HEVT1", ReplyToken: "reply-1", Text: "[0:6.28]\nsin(x)"}, events[0])
}

func TestWebhookParser_InvalidSignature(t *testing.T) {
	body := []byte(deliveryBody)
	p := NewWebhookParser(testSecret)

	_, err := p.ParseTextEvents(webhookRequest(body, sign("other-secret", body)))
	assert.True(t, errors.Is(err, ErrInvalidSignature))
}

func TestWebhookParser_EmptyDelivery(t *testing.T) {
	body := []byte(`{"destination":"U0000","events":[]}`)
	p := NewWebhookParser(testSecret)

	events, err := p.ParseTextEvents(webhookRequest(body, sign(testSecret, body)))
	require.NoError(t, err)
	assert.Empty(t, events)
}
