package line

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "plotbot/pkg/errors"
)

type capturedReply struct {
	path    string
	auth    string
	payload map[string]interface{}
}

func newReplyServer(t *testing.T, status int) (*httptest.Server, *capturedReply) {
	t.Helper()
	got := &capturedReply{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.path = r.URL.Path
		got.auth = r.Header.Get("Authorization")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &got.payload)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status == http.StatusOK {
			_, _ = w.Write([]byte(`{"sentMessages":[{"id":"1","quoteToken":"q"}]}`))
			return
		}
		_, _ = w.Write([]byte(`{"message":"Invalid reply token"}`))
	}))
	t.Cleanup(srv.Close)
	return srv, got
}

func firstMessage(t *testing.T, got *capturedReply) map[string]interface{} {
	t.Helper()
	msgs, ok := got.payload["messages"].([]interface{})
	require.True(t, ok)
	require.Len(t, msgs, 1)
	return msgs[0].(map[string]interface{})
}

func TestReplier_ReplyText(t *testing.T) {
	srv, got := newReplyServer(t, http.StatusOK)
	r, err := NewReplier("channel-token", nil, WithEndpoint(srv.URL))
	require.NoError(t, err)

	require.NoError(t, r.ReplyText(context.Background(), "reply-token", "範囲指定が正しくないよ!!"))

	assert.Equal(t, "/v2/bot/message/reply", got.path)
	assert.Equal(t, "Bearer channel-token", got.auth)
	assert.Equal(t, "reply-token", got.payload["replyToken"])

	msg := firstMessage(t, got)
	assert.Equal(t, "text", msg["type"])
	assert.Equal(t, "範囲指定が正しくないよ!!", msg["text"])
}

func TestReplier_ReplyImage(t *testing.T) {
	srv, got := newReplyServer(t, http.StatusOK)
	r, err := NewReplier("channel-token", nil, WithEndpoint(srv.URL))
	require.NoError(t, err)

	url := "https://bucket.example/plots/req-1/sin.png?X-Amz-Signature=abc"
	require.NoError(t, r.ReplyImage(context.Background(), "reply-token", url, url))

	msg := firstMessage(t, got)
	assert.Equal(t, "image", msg["type"])
	assert.Equal(t, url, msg["originalContentUrl"])
	assert.Equal(t, url, msg["previewImageUrl"])
}

func TestReplier_APIError(t *testing.T) {
	srv, _ := newReplyServer(t, http.StatusBadRequest)
	r, err := NewReplier("channel-token", nil, WithEndpoint(srv.URL))
	require.NoError(t, err)

	err = r.ReplyText(context.Background(), "expired", "hello")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsExternal(err))
}
