//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"

	"plotbot/infrastructure/config"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideTracing,
	ProvideAWSConfig,
	ProvideS3Client,
	ProvideDynamoDBClient,
	ProvideEventBridgeClient,
	ProvideCloudWatchClient,
	ProvideRegistry,
	ProvideProcessor,
	ProvideRenderer,
	ProvideImageStore,
	ProvideReplier,
	ProvideIdempotencyStore,
	ProvideCollector,
	ProvideCloudWatchMetrics,
	ProvideMetrics,
	ProvideEventPublisher,
	ProvidePlotGraphHandler,
	ProvideCommandBus,
	ProvideErrorHandler,
	ProvideRateLimiter,
	ProvideReadinessChecks,
	ProvideRouter,
	ProvideHTTPHandler,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, func(), error) {
	wire.Build(SuperSet)
	return nil, nil, nil
}
