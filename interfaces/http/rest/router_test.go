package rest

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"plotbot/application/commands"
	"plotbot/application/commands/bus"
	cmdhandlers "plotbot/application/commands/handlers"
	"plotbot/application/plotting"
	"plotbot/application/ports/mocks"
	"plotbot/domain/plot"
	"plotbot/infrastructure/messaging/line"
	"plotbot/infrastructure/observability"
	"plotbot/infrastructure/rendering"
	"plotbot/interfaces/http/rest/handlers"
	pkgerrors "plotbot/pkg/errors"
	"plotbot/pkg/ratelimit"
)

const secret = "router-secret"

type fixture struct {
	server    *httptest.Server
	replier   *mocks.MockReplier
	store     *mocks.MockImageStore
	collector *observability.Collector
}

func newFixture(t *testing.T, perMinute int) *fixture {
	t.Helper()
	logger := zap.NewNop()

	registry := plot.NewRegistry()
	processor := plotting.NewProcessor(registry)
	renderer := rendering.NewChartRenderer(320, 240)
	replier := new(mocks.MockReplier)
	store := new(mocks.MockImageStore)
	collector := observability.NewCollector("plotbot_router_test")

	commandBus := bus.NewCommandBus(bus.ValidationMiddleware())
	require.NoError(t, commandBus.Register(commands.PlotGraphCommand{},
		cmdhandlers.NewPlotGraphHandler(processor, renderer, store, replier, nil, collector, nil, logger)))

	errs := pkgerrors.NewErrorHandler(logger, false)
	limiter := ratelimit.NewSlidingWindowLimiter(perMinute, time.Minute, 0)

	router := NewRouter(
		handlers.NewWebhookHandler(line.NewWebhookParser(secret), commandBus, errs, logger),
		handlers.NewPlotHandler(processor, renderer, registry, collector, errs, logger),
		handlers.NewHealthHandler(nil, logger),
		errs,
		logger,
		WithRateLimit(limiter, perMinute),
		WithMetrics(collector, collector.Handler()),
	)

	srv := httptest.NewServer(router.Setup())
	t.Cleanup(srv.Close)
	return &fixture{server: srv, replier: replier, store: store, collector: collector}
}

func (f *fixture) post(t *testing.T, path, contentType string, body []byte, header map[string]string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, f.server.URL+path, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", contentType)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestRouter_Health(t *testing.T) {
	f := newFixture(t, 10)

	for _, path := range []string{"/health", "/ready"} {
		resp, err := http.Get(f.server.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}
}

func TestRouter_CallbackRepliesWithImage(t *testing.T) {
	f := newFixture(t, 10)
	f.store.On("Save", mock.Anything, mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, "plots/") && strings.HasSuffix(key, "/cos.png")
	}), mock.Anything).Return("https://bucket.example/cos.png?sig=1", nil)
	f.replier.On("ReplyImage", mock.Anything, "rt-1",
		"https://bucket.example/cos.png?sig=1", "https://bucket.example/cos.png?sig=1").Return(nil)

	body := []byte(`{"destination":"U0","events":[{"type":"message","mode":"active","timestamp":1,` +
		`"source":{"type":"user","userId":"U1"},"webhookEventId":"01HROUTER","deliveryContext":{"isRedelivery":false},` +
		`"replyToken":"rt-1","message":{"type":"text","id":"9","quoteToken":"q","text":"[0:3.14]\ncos(x)"}}]}`)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)

	resp := f.post(t, "/callback", "application/json", body, map[string]string{
		"X-Line-Signature": base64.StdEncoding.EncodeToString(mac.Sum(nil)),
	})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	f.store.AssertExpectations(t)
	f.replier.AssertExpectations(t)
}

func TestRouter_CallbackRejectsBadSignature(t *testing.T) {
	f := newFixture(t, 10)

	resp := f.post(t, "/callback", "application/json", []byte(`{"events":[]}`),
		map[string]string{"X-Line-Signature": "AAAA"})

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	f.replier.AssertNotCalled(t, "ReplyText", mock.Anything, mock.Anything, mock.Anything)
}

func TestRouter_PlotsAPI(t *testing.T) {
	f := newFixture(t, 10)

	resp := f.post(t, "/api/v1/plots", "application/json", []byte(`{"command":"[0:1]\ntanh(x)"}`),
		map[string]string{"Origin": "https://example.com"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	resp = f.post(t, "/api/v1/plots", "application/json", []byte(`{"command":"[1:0]\ntanh(x)"}`), nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = f.post(t, "/api/v1/plots/image", "application/json", []byte(`{"command":"[0:1]\nx"}`), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
}

func TestRouter_RateLimit(t *testing.T) {
	f := newFixture(t, 2)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		resp, err := http.Get(f.server.URL + "/api/v1/functions")
		require.NoError(t, err)
		resp.Body.Close()
		codes = append(codes, resp.StatusCode)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	f := newFixture(t, 10)

	resp, err := http.Get(f.server.URL + "/api/v1/functions")
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = http.Get(f.server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `route="/api/v1/functions"`)
}

func TestRouter_NotFound(t *testing.T) {
	f := newFixture(t, 10)

	resp, err := http.Get(f.server.URL + "/nope")
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
