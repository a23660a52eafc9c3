package handlers

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"plotbot/application/commands"
	"plotbot/application/ports"
	"plotbot/domain/plot"
	pkgerrors "plotbot/pkg/errors"
	"plotbot/pkg/utils"
)

// PlotHandler serves the synchronous plotting API.
type PlotHandler struct {
	processor ports.PlotProcessor
	renderer  ports.Renderer
	registry  *plot.Registry
	metrics   ports.Metrics
	errs      *pkgerrors.ErrorHandler
	logger    *zap.Logger
}

// NewPlotHandler creates a new plot handler
func NewPlotHandler(
	processor ports.PlotProcessor,
	renderer ports.Renderer,
	registry *plot.Registry,
	metrics ports.Metrics,
	errs *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *PlotHandler {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &PlotHandler{
		processor: processor,
		renderer:  renderer,
		registry:  registry,
		metrics:   metrics,
		errs:      errs,
		logger:    logger,
	}
}

// PlotRequest is the body of both plot endpoints.
type PlotRequest struct {
	Command string `json:"command" validate:"required,max=256"`
}

// RangeResponse mirrors plot.Range.
type RangeResponse struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// PlotResponse carries the sampled data. Non-finite values are null.
type PlotResponse struct {
	RequestID string        `json:"request_id"`
	Function  string        `json:"function"`
	Range     RangeResponse `json:"range"`
	XS        []*float64    `json:"xs"`
	YS        []*float64    `json:"ys"`
}

// FunctionsResponse lists the accepted function literals.
type FunctionsResponse struct {
	Functions []string `json:"functions"`
}

// CreatePlot handles POST /api/v1/plots
func (h *PlotHandler) CreatePlot(w http.ResponseWriter, r *http.Request) {
	p, ok := h.process(w, r)
	if !ok {
		return
	}

	h.metrics.RecordOutcome(commands.SourceAPI, ports.OutcomeRendered, "")
	h.respondJSON(w, http.StatusOK, PlotResponse{
		RequestID: p.RequestID,
		Function:  p.Function.Literal,
		Range:     RangeResponse{Min: p.Range.Min, Max: p.Range.Max},
		XS:        nullable(p.XS),
		YS:        nullable(p.YS),
	})
}

// RenderPlot handles POST /api/v1/plots/image
func (h *PlotHandler) RenderPlot(w http.ResponseWriter, r *http.Request) {
	p, ok := h.process(w, r)
	if !ok {
		return
	}

	png, err := h.renderer.Render(r.Context(), p)
	if err != nil {
		if errors.Is(err, ports.ErrNothingToPlot) {
			h.reject(w, r, plot.ErrUnsupportedFunction.Clone().WithCause(err))
			return
		}
		h.metrics.RecordOutcome(commands.SourceAPI, ports.OutcomeError, "")
		h.errs.Handle(w, r, pkgerrors.NewInternalError("failed to render plot").WithCause(err))
		return
	}

	h.metrics.RecordOutcome(commands.SourceAPI, ports.OutcomeRendered, "")
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.Header().Set("X-Plot-Request-ID", p.RequestID)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(png); err != nil {
		h.logger.Warn("failed to write image", zap.Error(err))
	}
}

// ListFunctions handles GET /api/v1/functions
func (h *PlotHandler) ListFunctions(w http.ResponseWriter, _ *http.Request) {
	fns := h.registry.Functions()
	out := make([]string, len(fns))
	for i, f := range fns {
		out[i] = f.Literal
	}
	h.respondJSON(w, http.StatusOK, FunctionsResponse{Functions: out})
}

func (h *PlotHandler) process(w http.ResponseWriter, r *http.Request) (*plot.Plot, bool) {
	var req PlotRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096)).Decode(&req); err != nil {
		h.errs.Handle(w, r, pkgerrors.NewValidationError("invalid request body").WithCause(err))
		return nil, false
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.errs.Handle(w, r, pkgerrors.NewValidationError(err.Error()))
		return nil, false
	}

	p, err := h.processor.Process(r.Context(), req.Command)
	if err != nil {
		var domainErr *pkgerrors.DomainError
		if errors.As(err, &domainErr) {
			h.reject(w, r, err)
			return nil, false
		}
		h.metrics.RecordOutcome(commands.SourceAPI, ports.OutcomeError, "")
		h.errs.Handle(w, r, pkgerrors.NewInternalError("failed to process command").WithCause(err))
		return nil, false
	}
	return p, true
}

func (h *PlotHandler) reject(w http.ResponseWriter, r *http.Request, err error) {
	kind, _ := plot.KindOf(err)
	h.metrics.RecordOutcome(commands.SourceAPI, ports.OutcomeRejected, string(kind))
	h.errs.Handle(w, r, err)
}

func (h *PlotHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// nullable maps NaN and ±Inf to nil, which encoding/json writes as null.
func nullable(vs []float64) []*float64 {
	out := make([]*float64, len(vs))
	for i := range vs {
		if math.IsNaN(vs[i]) || math.IsInf(vs[i], 0) {
			continue
		}
		v := vs[i]
		out[i] = &v
	}
	return out
}
