package observability

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"plotbot/application/ports"
)

var (
	_ ports.Metrics = (*Collector)(nil)
	_ ports.Metrics = (*CloudWatchMetrics)(nil)
)

func TestCollector_RecordOutcome(t *testing.T) {
	c := NewCollector("plotbot_test")

	c.RecordOutcome("line", ports.OutcomeRendered, "")
	c.RecordOutcome("line", ports.OutcomeRendered, "")
	c.RecordOutcome("line", ports.OutcomeRejected, "invalid_range")

	assert.Equal(t, 2.0, testutil.ToFloat64(c.PlotRequests.WithLabelValues("line", ports.OutcomeRendered, "")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.PlotRequests.WithLabelValues("line", ports.OutcomeRejected, "invalid_range")))
}

func TestCollector_ObserveStage(t *testing.T) {
	c := NewCollector("plotbot_test")

	c.ObserveStage("render", 30*time.Millisecond)
	c.ObserveStage("upload", 80*time.Millisecond)

	assert.Equal(t, 2, testutil.CollectAndCount(c.StageDuration))
}

func TestCollector_IndependentRegistries(t *testing.T) {
	// Two collectors in one process must not panic on duplicate registration.
	a := NewCollector("plotbot_test")
	b := NewCollector("plotbot_test")

	a.RecordOutcome("cli", ports.OutcomeError, "")
	assert.Equal(t, 0, testutil.CollectAndCount(b.PlotRequests))
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector("plotbot_test")
	c.ObserveHTTP("POST", "/callback", 200, 5*time.Millisecond)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, string(body), `plotbot_test_http_requests_total{method="POST",route="/callback",status="200"} 1`)
}

type fakeCloudWatch struct {
	mu     sync.Mutex
	inputs []*cloudwatch.PutMetricDataInput
	err    error
}

func (f *fakeCloudWatch) PutMetricData(_ context.Context, in *cloudwatch.PutMetricDataInput, _ ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputs = append(f.inputs, in)
	return &cloudwatch.PutMetricDataOutput{}, f.err
}

func TestCloudWatchMetrics_Flush(t *testing.T) {
	// Arrange
	client := &fakeCloudWatch{}
	m := NewCloudWatchMetrics("Plotbot", client, zaptest.NewLogger(t))
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	m.now = func() time.Time { return fixed }

	// Act
	m.RecordOutcome("line", ports.OutcomeRejected, "unsupported_function")
	m.ObserveStage("render", 1500*time.Microsecond)
	m.Flush(context.Background())

	// Assert
	require.Len(t, client.inputs, 1)
	in := client.inputs[0]
	assert.Equal(t, "Plotbot", aws.ToString(in.Namespace))
	require.Len(t, in.MetricData, 2)

	outcome := in.MetricData[0]
	assert.Equal(t, "PlotRequests", aws.ToString(outcome.MetricName))
	assert.Equal(t, types.StandardUnitCount, outcome.Unit)
	assert.Len(t, outcome.Dimensions, 3)
	assert.Equal(t, fixed, aws.ToTime(outcome.Timestamp))

	latency := in.MetricData[1]
	assert.Equal(t, "StageLatency", aws.ToString(latency.MetricName))
	assert.Equal(t, 1.5, aws.ToFloat64(latency.Value))
	assert.Equal(t, types.StandardUnitMilliseconds, latency.Unit)

	assert.Zero(t, m.Pending())
}

func TestCloudWatchMetrics_OmitsEmptyKind(t *testing.T) {
	client := &fakeCloudWatch{}
	m := NewCloudWatchMetrics("Plotbot", client, nil)

	m.RecordOutcome("api", ports.OutcomeRendered, "")
	m.Flush(context.Background())

	require.Len(t, client.inputs, 1)
	assert.Len(t, client.inputs[0].MetricData[0].Dimensions, 2)
}

func TestCloudWatchMetrics_FlushBatches(t *testing.T) {
	client := &fakeCloudWatch{}
	m := NewCloudWatchMetrics("Plotbot", client, nil)

	for i := 0; i < maxDatumsPerCall+5; i++ {
		m.ObserveStage("reply", time.Millisecond)
	}
	m.Flush(context.Background())

	require.Len(t, client.inputs, 2)
	assert.Len(t, client.inputs[0].MetricData, maxDatumsPerCall)
	assert.Len(t, client.inputs[1].MetricData, 5)
}

func TestCloudWatchMetrics_FlushErrorDropsBatch(t *testing.T) {
	client := &fakeCloudWatch{err: errors.New("throttled")}
	m := NewCloudWatchMetrics("Plotbot", client, zaptest.NewLogger(t))

	m.RecordOutcome("line", ports.OutcomeError, "")
	m.Flush(context.Background())

	assert.Len(t, client.inputs, 1)
	assert.Zero(t, m.Pending())
}

func TestCloudWatchMetrics_FlushEmpty(t *testing.T) {
	client := &fakeCloudWatch{}
	NewCloudWatchMetrics("Plotbot", client, nil).Flush(context.Background())
	assert.Empty(t, client.inputs)
}
