// Package router selects a model client by walking an ordered chain of
// handlers.
package router

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/felixgeelhaar/agent-router/domain/diagnostic"
	"github.com/felixgeelhaar/agent-router/domain/model"
	"github.com/felixgeelhaar/agent-router/infrastructure/logging"
	"github.com/felixgeelhaar/agent-router/infrastructure/telemetry"
)

const component = "router"

// Router walks its handler chain in order and returns the first client that
// is successfully constructed. The chain is fixed at construction.
// Router is safe for concurrent use.
type Router struct {
	handlers    []model.Handler
	diagnostics diagnostic.Reporter
	metrics     *telemetry.Metrics
	tracer      trace.Tracer
}

// Option configures a Router.
type Option func(*Router)

// WithDiagnostics sets the callback that receives construction failures.
func WithDiagnostics(r diagnostic.Reporter) Option {
	return func(rt *Router) {
		rt.diagnostics = r
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(rt *Router) {
		rt.metrics = m
	}
}

// WithTracer sets the tracer used for routing spans.
func WithTracer(t trace.Tracer) Option {
	return func(rt *Router) {
		rt.tracer = t
	}
}

// New creates a router over a copy of handlers.
func New(handlers []model.Handler, opts ...Option) (*Router, error) {
	if len(handlers) == 0 {
		return nil, model.ErrNoHandlersConfigured
	}

	chain := make([]model.Handler, len(handlers))
	seen := make(map[string]struct{}, len(handlers))
	for i, h := range handlers {
		if h == nil {
			return nil, fmt.Errorf("%w: position %d", model.ErrNilHandler, i)
		}
		if _, dup := seen[h.Name()]; dup {
			return nil, fmt.Errorf("%w: %q", model.ErrDuplicateHandler, h.Name())
		}
		seen[h.Name()] = struct{}{}
		chain[i] = h
	}

	rt := &Router{handlers: chain}
	for _, opt := range opts {
		opt(rt)
	}
	if rt.tracer == nil {
		rt.tracer = telemetry.Tracer()
	}
	return rt, nil
}

// Handlers returns the handler names in chain order.
func (r *Router) Handlers() []string {
	names := make([]string, len(r.handlers))
	for i, h := range r.handlers {
		names[i] = h.Name()
	}
	return names
}

// Route returns a client for modelName from the first handler that accepts
// the model and constructs a client. Handlers that fail construction are
// recorded and skipped; none is retried. When every handler is skipped or
// fails, Route returns an *model.ExhaustedError.
func (r *Router) Route(ctx context.Context, modelName string) (*model.Route, error) {
	start := time.Now()
	ctx, span := r.tracer.Start(ctx, "router.route",
		trace.WithAttributes(attribute.String("model", modelName)))
	defer span.End()

	attempts := make([]model.Attempt, 0, len(r.handlers))
	for _, h := range r.handlers {
		name := h.Name()

		if !h.CanHandle(modelName) {
			attempts = append(attempts, model.Attempt{
				Handler: name,
				Outcome: model.OutcomeSkipped,
				Reason:  model.ReasonCannotHandle,
			})
			r.recordAttempt(ctx, span, name, model.OutcomeSkipped)
			logging.Debug().
				Add(logging.Component(component)).
				Add(logging.Handler(name)).
				Add(logging.Model(modelName)).
				Msg("handler cannot handle model")
			continue
		}

		client, err := r.construct(ctx, h, modelName)
		if err != nil {
			cerr := &model.ConstructionError{Handler: name, Model: modelName, Err: err}
			attempts = append(attempts, model.Attempt{
				Handler: name,
				Outcome: model.OutcomeFailed,
				Reason:  err.Error(),
				Err:     cerr,
			})
			r.recordAttempt(ctx, span, name, model.OutcomeFailed)
			logging.Warn().
				Add(logging.Component(component)).
				Add(logging.Handler(name)).
				Add(logging.Model(modelName)).
				Add(logging.ErrorField(err)).
				Msg("handler failed to create client")
			r.diagnostics.Report(diagnostic.Diagnostic{
				Kind:      diagnostic.KindConstruction,
				Component: component,
				Subject:   name,
				Err:       cerr,
			})
			continue
		}

		attempts = append(attempts, model.Attempt{
			Handler: name,
			Outcome: model.OutcomeSelected,
		})
		r.recordAttempt(ctx, span, name, model.OutcomeSelected)
		r.metrics.RecordRoute(ctx, name, true, time.Since(start))
		span.SetAttributes(attribute.String("handler", name))
		logging.Info().
			Add(logging.Component(component)).
			Add(logging.Handler(name)).
			Add(logging.Model(modelName)).
			Add(logging.Duration(time.Since(start))).
			Msg("model routed")

		return &model.Route{
			Model:    modelName,
			Handler:  name,
			Client:   client,
			Attempts: attempts,
		}, nil
	}

	exhausted := &model.ExhaustedError{Model: modelName, Attempts: attempts}
	r.metrics.RecordRoute(ctx, "", false, time.Since(start))
	span.RecordError(exhausted)
	span.SetStatus(codes.Error, "chain exhausted")
	logging.Warn().
		Add(logging.Component(component)).
		Add(logging.Model(modelName)).
		Add(logging.Count("handlers", len(r.handlers))).
		Msg("no handler could create a client")
	return nil, exhausted
}

// construct calls CreateClient, converting panics and nil clients into errors.
func (r *Router) construct(ctx context.Context, h model.Handler, modelName string) (client model.Client, err error) {
	defer func() {
		if p := recover(); p != nil {
			client = nil
			err = fmt.Errorf("panic: %v", p)
		}
	}()

	client, err = h.CreateClient(ctx, modelName)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, model.ErrNilClient
	}
	return client, nil
}

func (r *Router) recordAttempt(ctx context.Context, span trace.Span, handler string, outcome model.Outcome) {
	r.metrics.RecordRouteAttempt(ctx, handler, string(outcome))
	span.AddEvent("attempt", trace.WithAttributes(
		attribute.String("handler", handler),
		attribute.String("outcome", string(outcome)),
	))
}
