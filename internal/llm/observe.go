package llm

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/saideep-g/blue-ninja/internal/store"
)

const tracerName = "github.com/saideep-g/blue-ninja/internal/llm"

// ObservedProvider traces every attempt, logs it and appends it to the
// LLM event log.
type ObservedProvider struct {
	inner  Provider
	name   string
	events store.EventRepo
	logger *zap.Logger
	tracer trace.Tracer
}

// WithObservability wraps p. events and logger may be nil.
func WithObservability(p Provider, name string, events store.EventRepo, logger *zap.Logger) Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ObservedProvider{inner: p, name: name, events: events, logger: logger, tracer: otel.Tracer(tracerName)}
}

func (o *ObservedProvider) ModelID() string { return o.inner.ModelID() }

func (o *ObservedProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	ctx, span := o.tracer.Start(ctx, "llm.Generate", trace.WithAttributes(
		attribute.String("llm.provider", o.name),
		attribute.String("llm.model", o.inner.ModelID()),
		attribute.String("llm.purpose", req.Purpose),
		attribute.String("atom.id", req.AtomID)))
	defer span.End()

	start := time.Now()
	resp, err := o.inner.Generate(ctx, req)

	ev := store.LLMRequestEventData{
		Provider:  o.name,
		Model:     o.inner.ModelID(),
		Purpose:   req.Purpose,
		AtomID:    req.AtomID,
		LatencyMs: time.Since(start).Milliseconds(),
		Success:   err == nil,
	}
	if resp != nil {
		ev.InputTokens = resp.Usage.InputTokens
		ev.OutputTokens = resp.Usage.OutputTokens
		if resp.Model != "" {
			ev.Model = resp.Model
		}
	}
	span.SetAttributes(
		attribute.Int("llm.input_tokens", ev.InputTokens),
		attribute.Int("llm.output_tokens", ev.OutputTokens))

	fields := []zap.Field{
		zap.String("provider", ev.Provider),
		zap.String("model", ev.Model),
		zap.String("purpose", ev.Purpose),
		zap.String("atom", ev.AtomID),
		zap.Int64("latency_ms", ev.LatencyMs),
		zap.Int("input_tokens", ev.InputTokens),
		zap.Int("output_tokens", ev.OutputTokens),
	}
	if err != nil {
		ev.ErrorMessage = err.Error()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		o.logger.Warn("llm request failed", append(fields, zap.Error(err))...)
	} else {
		o.logger.Debug("llm request", fields...)
	}

	if o.events != nil {
		if werr := o.events.AppendLLMRequest(ctx, ev); werr != nil {
			o.logger.Warn("failed to record llm request event", zap.Error(werr))
		}
	}
	return resp, err
}
