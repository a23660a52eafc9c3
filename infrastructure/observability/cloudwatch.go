package observability

import (
	"context"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"go.uber.org/zap"
)

// maxDatumsPerCall is the PutMetricData request limit.
const maxDatumsPerCall = 1000

// PutMetricDataAPI is the slice of the CloudWatch client the metrics sink uses.
type PutMetricDataAPI interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// CloudWatchMetrics buffers datums in memory and ships them on Flush. Lambda
// flushes once per invocation; nothing is sent on the request path.
type CloudWatchMetrics struct {
	namespace string
	client    PutMetricDataAPI
	logger    *zap.Logger
	now       func() time.Time

	mu      sync.Mutex
	pending []types.MetricDatum
}

// NewCloudWatchMetrics creates a new metrics sink
func NewCloudWatchMetrics(namespace string, client PutMetricDataAPI, logger *zap.Logger) *CloudWatchMetrics {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CloudWatchMetrics{
		namespace: namespace,
		client:    client,
		logger:    logger,
		now:       time.Now,
	}
}

// RecordOutcome implements ports.Metrics.
func (m *CloudWatchMetrics) RecordOutcome(source, outcome, kind string) {
	dims := []types.Dimension{
		{Name: aws.String("Source"), Value: aws.String(source)},
		{Name: aws.String("Outcome"), Value: aws.String(outcome)},
	}
	if kind != "" {
		dims = append(dims, types.Dimension{Name: aws.String("Kind"), Value: aws.String(kind)})
	}
	m.add(types.MetricDatum{
		MetricName: aws.String("PlotRequests"),
		Dimensions: dims,
		Value:      aws.Float64(1),
		Unit:       types.StandardUnitCount,
		Timestamp:  aws.Time(m.now()),
	})
}

// ObserveStage implements ports.Metrics.
func (m *CloudWatchMetrics) ObserveStage(stage string, d time.Duration) {
	m.add(types.MetricDatum{
		MetricName: aws.String("StageLatency"),
		Dimensions: []types.Dimension{
			{Name: aws.String("Stage"), Value: aws.String(stage)},
		},
		Value:     aws.Float64(float64(d.Microseconds()) / 1000),
		Unit:      types.StandardUnitMilliseconds,
		Timestamp: aws.Time(m.now()),
	})
}

func (m *CloudWatchMetrics) add(d types.MetricDatum) {
	m.mu.Lock()
	m.pending = append(m.pending, d)
	m.mu.Unlock()
}

// Pending reports the number of buffered datums.
func (m *CloudWatchMetrics) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

// Flush sends every buffered datum. Datums from a failed call are dropped
// and logged; metrics never fail a request.
func (m *CloudWatchMetrics) Flush(ctx context.Context) {
	m.mu.Lock()
	batch := m.pending
	m.pending = nil
	m.mu.Unlock()

	for start := 0; start < len(batch); start += maxDatumsPerCall {
		end := start + maxDatumsPerCall
		if end > len(batch) {
			end = len(batch)
		}

		_, err := m.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
			Namespace:  aws.String(m.namespace),
			MetricData: batch[start:end],
		})
		if err != nil {
			m.logger.Warn("failed to send metrics",
				zap.Int("datums", end-start),
				zap.Error(err),
			)
		}
	}
}
