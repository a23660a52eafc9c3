// Package di assembles the object graph for the HTTP server and the Lambda
// handler.
package di

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"plotbot/application/commands/bus"
	"plotbot/application/plotting"
	"plotbot/application/ports"
	"plotbot/domain/plot"
	"plotbot/infrastructure/config"
	"plotbot/infrastructure/observability"
	"plotbot/infrastructure/rendering"
)

// Container holds all application dependencies
type Container struct {
	Config     *config.Config
	Logger     *zap.Logger
	Registry   *plot.Registry
	Processor  *plotting.Processor
	Renderer   *rendering.ChartRenderer
	Metrics    ports.Metrics
	CommandBus *bus.CommandBus
	Handler    http.Handler

	// Nil unless the matching backend is configured.
	CloudWatch *observability.CloudWatchMetrics
	Tracing    *observability.TracerProvider
}

// Flush ships per-invocation telemetry. Lambda calls it after each event
// because the execution environment may freeze right after.
func (c *Container) Flush(ctx context.Context) {
	if c.CloudWatch != nil {
		c.CloudWatch.Flush(ctx)
	}
	if c.Tracing != nil {
		if err := c.Tracing.ForceFlush(ctx); err != nil {
			c.Logger.Warn("failed to flush spans", zap.Error(err))
		}
	}
}
