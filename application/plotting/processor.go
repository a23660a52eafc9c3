// Package plotting runs a chat command through the domain pipeline:
// parse, validate the range, resolve the function, sample, evaluate.
package plotting

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"plotbot/domain/plot"
	pkgerrors "plotbot/pkg/errors"
)

const tracerName = "plotbot/application/plotting"

// Stage is a step of the processing state machine.
type Stage int

const (
	StageParsing Stage = iota
	StageValidating
	StageFunctionResolving
	StageSampling
	StageEvaluating
	StageDone
)

func (s Stage) String() string {
	switch s {
	case StageParsing:
		return "parsing"
	case StageValidating:
		return "validating"
	case StageFunctionResolving:
		return "function_resolving"
	case StageSampling:
		return "sampling"
	case StageEvaluating:
		return "evaluating"
	case StageDone:
		return "done"
	default:
		return "unknown"
	}
}

// Processor turns raw message text into a Plot or a classified failure.
// It holds no per-request state and is safe for concurrent use.
type Processor struct {
	registry *plot.Registry
	newID    func() string
	tracer   trace.Tracer
}

// Option configures a Processor.
type Option func(*Processor)

// WithIDGenerator replaces the uuid request ID source.
func WithIDGenerator(fn func() string) Option {
	return func(p *Processor) {
		p.newID = fn
	}
}

// WithTracer sets the tracer used for request spans.
func WithTracer(t trace.Tracer) Option {
	return func(p *Processor) {
		p.tracer = t
	}
}

// NewProcessor creates a processor over the given registry.
func NewProcessor(registry *plot.Registry, opts ...Option) *Processor {
	p := &Processor{
		registry: registry,
		newID:    uuid.NewString,
		tracer:   otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Registry exposes the function table the processor resolves against.
func (p *Processor) Registry() *plot.Registry {
	return p.registry
}

// Process runs text through every stage. Failures are *errors.DomainError
// values matching one of the plot sentinels, with the failed stage recorded
// under the "stage" detail.
func (p *Processor) Process(ctx context.Context, text string) (*plot.Plot, error) {
	_, span := p.tracer.Start(ctx, "plotting.Process")
	defer span.End()

	stage := StageParsing
	cmd, err := plot.ParseCommand(text)
	if err != nil {
		return nil, p.fail(span, stage, err)
	}

	stage = StageValidating
	r, err := plot.ParseRange(cmd.RawMin, cmd.RawMax)
	if err != nil {
		return nil, p.fail(span, stage, err)
	}

	stage = StageFunctionResolving
	fn, err := p.registry.Lookup(cmd.RawFunction)
	if err != nil {
		return nil, p.fail(span, stage, err)
	}

	stage = StageSampling
	xs := plot.Sample(r)

	stage = StageEvaluating
	ys := fn.Evaluate(xs)

	result := &plot.Plot{
		RequestID: p.newID(),
		Function:  fn,
		Range:     r,
		XS:        xs,
		YS:        ys,
	}

	span.SetAttributes(
		attribute.String("plot.request_id", result.RequestID),
		attribute.String("plot.function", fn.Literal),
		attribute.Float64("plot.range.min", r.Min),
		attribute.Float64("plot.range.max", r.Max),
		attribute.Int("plot.samples", result.Len()),
		attribute.String("plot.stage", StageDone.String()),
	)
	return result, nil
}

func (p *Processor) fail(span trace.Span, stage Stage, err error) error {
	var de *pkgerrors.DomainError
	if errors.As(err, &de) {
		err = de.Clone().WithDetail("stage", stage.String())
	}

	kind, _ := plot.KindOf(err)
	span.SetAttributes(
		attribute.String("plot.stage", stage.String()),
		attribute.String("plot.failure", string(kind)),
	)
	span.SetStatus(codes.Error, string(kind))
	return err
}
