package di

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-xray-sdk-go/instrumentation/awsv2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"plotbot/application/commands"
	"plotbot/application/commands/bus"
	cmdhandlers "plotbot/application/commands/handlers"
	"plotbot/application/plotting"
	"plotbot/application/ports"
	"plotbot/domain/plot"
	"plotbot/infrastructure/config"
	"plotbot/infrastructure/messaging/eventbridge"
	"plotbot/infrastructure/messaging/line"
	"plotbot/infrastructure/observability"
	"plotbot/infrastructure/persistence/dynamodb"
	"plotbot/infrastructure/persistence/memory"
	"plotbot/infrastructure/persistence/redis"
	"plotbot/infrastructure/rendering"
	"plotbot/infrastructure/resilience"
	"plotbot/infrastructure/storage/s3"
	"plotbot/interfaces/http/rest"
	"plotbot/interfaces/http/rest/handlers"
	pkgerrors "plotbot/pkg/errors"
	"plotbot/pkg/ratelimit"
)

// commandTimeout bounds one plot command. LINE reply tokens expire after
// about a minute.
const commandTimeout = 25 * time.Second

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var zcfg zap.Config
	if cfg.IsProduction() {
		zcfg = zap.NewProductionConfig()
	} else {
		zcfg = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := zcfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.With(zap.String("environment", cfg.Environment)), nil
}

// ProvideTracing installs the OpenTelemetry provider when tracing is enabled.
// The returned provider is nil otherwise.
func ProvideTracing(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*observability.TracerProvider, func(), error) {
	if !cfg.EnableTracing {
		return nil, func() {}, nil
	}

	tp, err := observability.InitTracing(ctx, observability.TracingConfig{
		ServiceName: "plotbot",
		Environment: cfg.Environment,
		Endpoint:    cfg.OTLPEndpoint,
	})
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.Warn("failed to shut down tracing", zap.Error(err))
		}
	}
	return tp, cleanup, nil
}

// ProvideAWSConfig creates AWS configuration. In Lambda with tracing on,
// every SDK call is recorded as an X-Ray subsegment.
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}

	if cfg.EnableTracing && cfg.IsLambda {
		awsv2.AWSV2Instrumentor(&awsCfg.APIOptions)
	}
	return awsCfg, nil
}

// ProvideS3Client creates an S3 client
func ProvideS3Client(awsCfg aws.Config) *awss3.Client {
	return awss3.NewFromConfig(awsCfg)
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideCloudWatchClient creates a CloudWatch client
func ProvideCloudWatchClient(awsCfg aws.Config) *awscloudwatch.Client {
	return awscloudwatch.NewFromConfig(awsCfg)
}

// ProvideRegistry builds the function table.
func ProvideRegistry(cfg *config.Config) *plot.Registry {
	if cfg.Log2Base2 {
		return plot.NewRegistry(plot.WithBase2Log2())
	}
	return plot.NewRegistry()
}

// ProvideProcessor creates the parsing and sampling pipeline.
func ProvideProcessor(registry *plot.Registry, tp *observability.TracerProvider) *plotting.Processor {
	if tp == nil {
		return plotting.NewProcessor(registry)
	}
	return plotting.NewProcessor(registry, plotting.WithTracer(tp.Tracer()))
}

// ProvideRenderer creates the PNG renderer.
func ProvideRenderer(cfg *config.Config) *rendering.ChartRenderer {
	return rendering.NewChartRenderer(cfg.ChartWidth, cfg.ChartHeight)
}

// ProvideImageStore creates the S3 store behind a circuit breaker.
func ProvideImageStore(client *awss3.Client, cfg *config.Config, logger *zap.Logger) ports.ImageStore {
	store := s3.NewImageStoreFromClient(client, cfg.Bucket, cfg.PresignExpiry, logger)
	cb := resilience.NewBreaker(resilience.DefaultBreakerConfig("s3"), logger)
	return resilience.NewImageStore(store, cb)
}

// ProvideReplier creates the LINE replier behind a circuit breaker.
func ProvideReplier(cfg *config.Config, logger *zap.Logger) (ports.Replier, error) {
	replier, err := line.NewReplier(cfg.LineChannelAccessToken, logger)
	if err != nil {
		return nil, err
	}
	cb := resilience.NewBreaker(resilience.DefaultBreakerConfig("line"), logger)
	return resilience.NewReplier(replier, cb), nil
}

// ProvideIdempotencyStore selects the deduplication backend.
func ProvideIdempotencyStore(cfg *config.Config, client *awsdynamodb.Client, logger *zap.Logger) (ports.IdempotencyStore, func(), error) {
	switch cfg.IdempotencyBackend {
	case config.IdempotencyDynamoDB:
		return dynamodb.NewIdempotencyStore(client, cfg.IdempotencyTable, cfg.IdempotencyTTL), func() {}, nil

	case config.IdempotencyRedis:
		store := redis.NewIdempotencyStore(redis.NewClient(cfg.RedisAddr), cfg.IdempotencyTTL,
			redis.WithPrefix(fmt.Sprintf("plotbot:%s:event:", cfg.Environment)))
		return store, func() {
			if err := store.Close(); err != nil {
				logger.Warn("failed to close redis client", zap.Error(err))
			}
		}, nil

	case config.IdempotencyMemory:
		store := memory.NewIdempotencyStore(cfg.IdempotencyTTL, time.Minute)
		return store, func() { _ = store.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown idempotency backend %q", cfg.IdempotencyBackend)
	}
}

// ProvideCollector creates the Prometheus collector, or nil when another
// metrics backend is configured.
func ProvideCollector(cfg *config.Config) *observability.Collector {
	if cfg.MetricsBackend != config.MetricsPrometheus {
		return nil
	}
	return observability.NewCollector(cfg.MetricsNamespace)
}

// ProvideCloudWatchMetrics creates the CloudWatch sink, or nil when another
// metrics backend is configured.
func ProvideCloudWatchMetrics(cfg *config.Config, client *awscloudwatch.Client, logger *zap.Logger) *observability.CloudWatchMetrics {
	if cfg.MetricsBackend != config.MetricsCloudWatch {
		return nil
	}
	namespace := fmt.Sprintf("%s/%s", cfg.MetricsNamespace, cfg.Environment)
	return observability.NewCloudWatchMetrics(namespace, client, logger)
}

// ProvideMetrics picks whichever sink is configured.
func ProvideMetrics(collector *observability.Collector, cw *observability.CloudWatchMetrics) ports.Metrics {
	switch {
	case collector != nil:
		return collector
	case cw != nil:
		return cw
	default:
		return ports.NopMetrics{}
	}
}

// ProvideEventPublisher creates the EventBridge publisher. Events are
// discarded when no bus is configured.
func ProvideEventPublisher(cfg *config.Config, client *awseventbridge.Client, logger *zap.Logger) ports.EventPublisher {
	if cfg.EventBusName == "" {
		return ports.NopPublisher{}
	}
	return eventbridge.NewPublisher(client, cfg.EventBusName, logger)
}

// ProvidePlotGraphHandler creates the webhook command handler.
func ProvidePlotGraphHandler(
	processor *plotting.Processor,
	renderer *rendering.ChartRenderer,
	store ports.ImageStore,
	replier ports.Replier,
	idempotency ports.IdempotencyStore,
	metrics ports.Metrics,
	publisher ports.EventPublisher,
	logger *zap.Logger,
) *cmdhandlers.PlotGraphHandler {
	return cmdhandlers.NewPlotGraphHandler(processor, renderer, store, replier, idempotency, metrics, publisher, logger)
}

// ProvideCommandBus creates the command bus with all handlers registered.
func ProvideCommandBus(handler *cmdhandlers.PlotGraphHandler, logger *zap.Logger) (*bus.CommandBus, error) {
	commandBus := bus.NewCommandBus(
		bus.LoggingMiddleware(logger),
		bus.ValidationMiddleware(),
		bus.TimeoutMiddleware(commandTimeout),
	)
	if err := commandBus.Register(commands.PlotGraphCommand{}, handler); err != nil {
		return nil, err
	}
	return commandBus, nil
}

// ProvideErrorHandler creates the HTTP error writer. Development responses
// carry stack traces.
func ProvideErrorHandler(cfg *config.Config, logger *zap.Logger) *pkgerrors.ErrorHandler {
	return pkgerrors.NewErrorHandler(logger, cfg.IsDevelopment())
}

// ProvideRateLimiter creates the per-IP API limiter, or nil when disabled.
func ProvideRateLimiter(cfg *config.Config) (*ratelimit.SlidingWindowLimiter, func()) {
	if cfg.RateLimitPerMinute == 0 {
		return nil, func() {}
	}
	limiter := ratelimit.PerMinute(cfg.RateLimitPerMinute)
	return limiter, limiter.Close
}

// ProvideReadinessChecks lists dependencies probed by /ready.
func ProvideReadinessChecks(store ports.IdempotencyStore) map[string]handlers.Check {
	checks := make(map[string]handlers.Check)
	if p, ok := store.(interface{ Ping(context.Context) error }); ok {
		checks["idempotency"] = p.Ping
	}
	return checks
}

// ProvideRouter creates the HTTP router.
func ProvideRouter(
	cfg *config.Config,
	processor *plotting.Processor,
	renderer *rendering.ChartRenderer,
	registry *plot.Registry,
	metrics ports.Metrics,
	collector *observability.Collector,
	commandBus *bus.CommandBus,
	limiter *ratelimit.SlidingWindowLimiter,
	checks map[string]handlers.Check,
	errs *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *rest.Router {
	var opts []rest.RouterOption
	if limiter != nil {
		opts = append(opts, rest.WithRateLimit(limiter, cfg.RateLimitPerMinute))
	}
	if collector != nil {
		opts = append(opts, rest.WithMetrics(collector, collector.Handler()))
	}

	return rest.NewRouter(
		handlers.NewWebhookHandler(line.NewWebhookParser(cfg.LineChannelSecret), commandBus, errs, logger),
		handlers.NewPlotHandler(processor, renderer, registry, metrics, errs, logger),
		handlers.NewHealthHandler(checks, logger),
		errs,
		logger,
		opts...,
	)
}

// ProvideHTTPHandler builds the root handler.
func ProvideHTTPHandler(router *rest.Router) http.Handler {
	return router.Setup()
}
