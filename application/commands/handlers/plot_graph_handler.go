package handlers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"plotbot/application/commands"
	"plotbot/application/commands/bus"
	"plotbot/application/plotting"
	"plotbot/application/ports"
	"plotbot/domain/events"
	"plotbot/domain/plot"
	pkgerrors "plotbot/pkg/errors"
)

// Stage names recorded with ports.Metrics.ObserveStage.
const (
	StageRender = "render"
	StageUpload = "upload"
	StageReply  = "reply"
)

// PlotGraphHandler turns a PlotGraphCommand into a chat reply: an image on
// success, a fixed explanatory text on failure.
type PlotGraphHandler struct {
	processor   ports.PlotProcessor
	renderer    ports.Renderer
	store       ports.ImageStore
	replier     ports.Replier
	idempotency ports.IdempotencyStore
	metrics     ports.Metrics
	publisher   ports.EventPublisher
	logger      *zap.Logger
	now         func() time.Time
}

// NewPlotGraphHandler creates a new handler instance. A nil idempotency store
// disables deduplication; nil metrics or publisher discard their output.
func NewPlotGraphHandler(
	processor ports.PlotProcessor,
	renderer ports.Renderer,
	store ports.ImageStore,
	replier ports.Replier,
	idempotency ports.IdempotencyStore,
	metrics ports.Metrics,
	publisher ports.EventPublisher,
	logger *zap.Logger,
) *PlotGraphHandler {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	if publisher == nil {
		publisher = ports.NopPublisher{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PlotGraphHandler{
		processor:   processor,
		renderer:    renderer,
		store:       store,
		replier:     replier,
		idempotency: idempotency,
		metrics:     metrics,
		publisher:   publisher,
		logger:      logger,
		now:         time.Now,
	}
}

// Handle implements bus.CommandHandler
func (h *PlotGraphHandler) Handle(ctx context.Context, c bus.Command) error {
	cmd, ok := c.(commands.PlotGraphCommand)
	if !ok {
		return pkgerrors.NewInternalError(fmt.Sprintf("unexpected command type %T", c))
	}

	logger := h.logger.With(
		zap.String("event_id", cmd.EventID),
		zap.String("source", cmd.Source),
	)

	if cmd.EventID != "" && h.idempotency != nil {
		first, err := h.idempotency.Claim(ctx, cmd.EventID)
		switch {
		case err != nil:
			// fail open
			logger.Warn("Idempotency check failed, processing anyway", zap.Error(err))
		case !first:
			logger.Info("Dropping redelivered event")
			h.metrics.RecordOutcome(cmd.Source, ports.OutcomeDuplicate, "")
			return nil
		}
	}

	if len(cmd.Text) > commands.MaxCommandLength {
		logger.Info("Message too long to be a command", zap.Int("length", len(cmd.Text)))
		return h.reject(ctx, logger, cmd, plot.KindMalformedCommand, plotting.StageParsing.String())
	}

	result, err := h.processor.Process(ctx, cmd.Text)
	if err != nil {
		kind, ok := plot.KindOf(err)
		if !ok {
			h.metrics.RecordOutcome(cmd.Source, ports.OutcomeError, "")
			return pkgerrors.NewInternalError("plot processing failed").WithCause(err)
		}
		return h.reject(ctx, logger, cmd, kind, stageOf(err))
	}

	logger = logger.With(
		zap.String("request_id", result.RequestID),
		zap.String("function", result.Function.Literal),
	)

	start := time.Now()
	png, err := h.renderer.Render(ctx, result)
	h.metrics.ObserveStage(StageRender, time.Since(start))
	if errors.Is(err, ports.ErrNothingToPlot) {
		logger.Info("Every sample is outside the function's domain")
		return h.reject(ctx, logger, cmd, plot.KindUnsupportedFunction, StageRender)
	}
	if err != nil {
		h.metrics.RecordOutcome(cmd.Source, ports.OutcomeError, "")
		return pkgerrors.NewInternalError("render failed").WithCause(err)
	}

	key := ObjectKey(result)
	start = time.Now()
	url, err := h.store.Save(ctx, key, png)
	h.metrics.ObserveStage(StageUpload, time.Since(start))
	if err != nil {
		h.metrics.RecordOutcome(cmd.Source, ports.OutcomeError, "")
		return pkgerrors.NewExternalError("image-store", err)
	}

	start = time.Now()
	err = h.replier.ReplyImage(ctx, cmd.ReplyToken, url, url)
	h.metrics.ObserveStage(StageReply, time.Since(start))
	if err != nil {
		h.metrics.RecordOutcome(cmd.Source, ports.OutcomeError, "")
		return pkgerrors.NewExternalError("replier", err)
	}

	h.metrics.RecordOutcome(cmd.Source, ports.OutcomeRendered, "")
	logger.Info("Plot delivered", zap.String("key", key), zap.Int("bytes", len(png)))

	h.publish(ctx, logger, events.NewPlotRendered(
		result.RequestID, cmd.EventID, cmd.Source, result.Function.Literal,
		result.Range.Min, result.Range.Max, result.Len(), key, len(png), h.now(),
	))
	return nil
}

func (h *PlotGraphHandler) reject(ctx context.Context, logger *zap.Logger, cmd commands.PlotGraphCommand, kind plot.FailureKind, stage string) error {
	logger.Info("Rejecting command", zap.String("kind", string(kind)), zap.String("stage", stage))

	start := time.Now()
	err := h.replier.ReplyText(ctx, cmd.ReplyToken, ReplyMessage(kind))
	h.metrics.ObserveStage(StageReply, time.Since(start))
	if err != nil {
		h.metrics.RecordOutcome(cmd.Source, ports.OutcomeError, string(kind))
		return pkgerrors.NewExternalError("replier", err)
	}

	h.metrics.RecordOutcome(cmd.Source, ports.OutcomeRejected, string(kind))
	h.publish(ctx, logger, events.NewPlotRejected(cmd.EventID, cmd.Source, string(kind), stage, h.now()))
	return nil
}

func (h *PlotGraphHandler) publish(ctx context.Context, logger *zap.Logger, evt events.DomainEvent) {
	if err := h.publisher.Publish(ctx, evt); err != nil {
		logger.Warn("Failed to publish event",
			zap.String("event_type", evt.GetEventType()),
			zap.Error(err),
		)
	}
}

// ObjectKey is the storage key for a rendered plot. It is unique per
// request, so concurrent requests for one function never overwrite each other.
func ObjectKey(p *plot.Plot) string {
	return fmt.Sprintf("plots/%s/%s.png", p.RequestID, p.Function.Slug())
}

func stageOf(err error) string {
	var de *pkgerrors.DomainError
	if errors.As(err, &de) {
		if s, ok := de.Details["stage"].(string); ok {
			return s
		}
	}
	return ""
}
