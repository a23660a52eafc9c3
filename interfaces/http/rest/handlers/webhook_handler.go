package handlers

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"plotbot/application/commands"
	"plotbot/application/commands/bus"
	"plotbot/infrastructure/messaging/line"
	pkgerrors "plotbot/pkg/errors"
)

// EventParser verifies and decodes a webhook delivery.
type EventParser interface {
	ParseTextEvents(r *http.Request) ([]line.TextEvent, error)
}

// CommandSender dispatches commands; *bus.CommandBus satisfies it.
type CommandSender interface {
	Send(ctx context.Context, cmd bus.Command) error
}

// WebhookHandler receives LINE webhook deliveries.
type WebhookHandler struct {
	parser EventParser
	sender CommandSender
	errs   *pkgerrors.ErrorHandler
	logger *zap.Logger
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(parser EventParser, sender CommandSender, errs *pkgerrors.ErrorHandler, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		parser: parser,
		sender: sender,
		errs:   errs,
		logger: logger,
	}
}

// Callback handles POST /callback. Once the signature checks out the
// response is always 200: a failing event is logged, and LINE would only
// redeliver the whole batch.
func (h *WebhookHandler) Callback(w http.ResponseWriter, r *http.Request) {
	evts, err := h.parser.ParseTextEvents(r)
	if err != nil {
		if errors.Is(err, line.ErrInvalidSignature) {
			h.errs.HandleStatus(w, r, http.StatusBadRequest, "invalid signature")
			return
		}
		h.errs.Handle(w, r, pkgerrors.NewValidationError("malformed webhook body").WithCause(err))
		return
	}

	for _, ev := range evts {
		cmd := commands.PlotGraphCommand{
			EventID:    ev.EventID,
			ReplyToken: ev.ReplyToken,
			Text:       ev.Text,
			Source:     commands.SourceLINE,
		}
		if err := h.sender.Send(r.Context(), cmd); err != nil {
			h.logger.Error("plot command failed",
				zap.String("event_id", ev.EventID),
				zap.Error(err),
			)
		}
	}

	w.WriteHeader(http.StatusOK)
}
