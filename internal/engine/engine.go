// Package engine is the facade callers use: it plans daily batches,
// grades answers, serves study sessions and reports progress, keeping
// the learner record, the cache and the event log in step.
package engine

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/saideep-g/blue-ninja/internal/cache"
	"github.com/saideep-g/blue-ninja/internal/content"
	"github.com/saideep-g/blue-ninja/internal/curriculum"
	"github.com/saideep-g/blue-ninja/internal/mission"
	"github.com/saideep-g/blue-ninja/internal/progress"
	"github.com/saideep-g/blue-ninja/internal/session"
	"github.com/saideep-g/blue-ninja/internal/store"
)

const tracerName = "github.com/saideep-g/blue-ninja/internal/engine"

// DefaultGrade applies to learners whose profile names no grade.
const DefaultGrade = 7

// Options wires an Engine. Curriculum, Learners, KV and Source are required.
type Options struct {
	Curriculum *curriculum.Graph
	Learners   store.LearnerRepo
	Events     store.EventRepo
	KV         cache.KV
	Source     content.Source
	Calendar   progress.Calendar

	// DefaultGrade is used when a learner's profile has none.
	DefaultGrade int

	Logger *zap.Logger
	Now    func() time.Time
}

// Engine is safe for concurrent use. Work for one learner is serialized.
type Engine struct {
	graph        *curriculum.Graph
	learners     store.LearnerRepo
	events       store.EventRepo
	kv           cache.KV
	fetcher      *content.Fetcher
	hydrator     *content.Hydrator
	builder      *mission.Builder
	missions     *mission.KVStore
	sessions     *session.Manager
	progress     *progress.Service
	calendar     progress.Calendar
	defaultGrade int
	logger       *zap.Logger
	tracer       trace.Tracer
	now          func() time.Time

	locks learnerLocks
}

// New builds an Engine from its collaborators.
func New(opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	graph := opts.Curriculum
	if graph == nil {
		graph = curriculum.Empty()
	}
	grade := opts.DefaultGrade
	if grade <= 0 {
		grade = DefaultGrade
	}
	cal := opts.Calendar
	if cal == (progress.Calendar{}) {
		cal = progress.DefaultCalendar()
	}

	missions := mission.NewKVStore(opts.KV)
	hydrator := content.NewHydrator()
	return &Engine{
		graph:        graph,
		learners:     opts.Learners,
		events:       opts.Events,
		kv:           opts.KV,
		fetcher:      content.NewFetcher(opts.Source, logger.Named("content")),
		hydrator:     hydrator,
		builder:      mission.NewBuilder(missions, hydrator, logger.Named("mission")).WithExpiry(cal.NextDayStart),
		missions:     missions,
		sessions:     session.NewManager(opts.KV, opts.Source, logger.Named("session")),
		progress:     progress.NewService(opts.Events, logger.Named("progress"), cal),
		calendar:     cal,
		defaultGrade: grade,
		logger:       logger,
		tracer:       otel.Tracer(tracerName),
		now:          now,
	}
}

// Curriculum returns the loaded curriculum.
func (e *Engine) Curriculum() *curriculum.Graph {
	return e.graph
}

// Today returns the current practice date.
func (e *Engine) Today() time.Time {
	return e.calendar.Date(e.now())
}

// lock serializes work for one learner and returns the unlock func.
func (e *Engine) lock(learnerID string) func() {
	return e.locks.lock(learnerID)
}

func (e *Engine) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return e.tracer.Start(ctx, "engine."+name, trace.WithAttributes(attrs...))
}

// endSpan records err on the span and ends it.
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
