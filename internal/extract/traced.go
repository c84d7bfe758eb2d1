package extract

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/automator/internal/log"
	"github.com/zjrosen/automator/internal/tracing"
	"github.com/zjrosen/automator/internal/workflow"
)

type tracedExtractor struct {
	next     Extractor
	tracer   trace.Tracer
	provider string
	model    string
}

// WithTracing wraps next so every call records one span with the provider,
// prompt length and outcome. A nil tracer returns next unchanged.
func WithTracing(next Extractor, tracer trace.Tracer, cfg Config) Extractor {
	if tracer == nil {
		return next
	}
	return &tracedExtractor{next: next, tracer: tracer, provider: cfg.Provider, model: cfg.Model}
}

func (t *tracedExtractor) Extract(ctx context.Context, prompt string) (workflow.Automation, error) {
	ctx, span := t.tracer.Start(ctx, tracing.SpanExtract, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	span.SetAttributes(
		attribute.String(tracing.AttrProvider, t.provider),
		attribute.String(tracing.AttrModel, t.model),
		attribute.Int(tracing.AttrPromptLength, len(prompt)),
	)

	a, err := t.next.Extract(ctx, prompt)
	outcome := Outcome(err)
	span.SetAttributes(attribute.String(tracing.AttrOutcome, outcome))

	var terr *TransportError
	switch {
	case err == nil:
		span.SetStatus(codes.Ok, "")
		log.Info(log.CatExtract, "extraction succeeded", "provider", t.provider,
			"trigger", a.Trigger.Service, "action", a.Action.Service)
	case errors.As(err, &terr):
		if terr.StatusCode != 0 {
			span.SetAttributes(attribute.Int(tracing.AttrStatusCode, terr.StatusCode))
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.ErrorErr(log.CatExtract, "extraction failed", err, "provider", t.provider)
	default:
		// Ambiguous input is an expected answer, not a failed call.
		log.Info(log.CatExtract, "extraction ambiguous", "provider", t.provider, "outcome", outcome, "reason", err.Error())
	}
	return a, err
}

// Outcome classifies an Extract result for spans and logs.
func Outcome(err error) string {
	var terr *TransportError
	switch {
	case err == nil:
		return tracing.OutcomeOK
	case errors.As(err, &terr):
		return tracing.OutcomeTransportError
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return tracing.OutcomeCanceled
	default:
		return tracing.OutcomeAmbiguous
	}
}
