// Package router maps operations to vendor endpoints and executes them behind
// a per-vendor circuit breaker. Calls are never retried.
package router

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/yourorg/checkout-relay/internal/adapter"
	"github.com/yourorg/checkout-relay/internal/processor"
	"github.com/yourorg/checkout-relay/internal/router/circuitbreaker"
	"github.com/yourorg/checkout-relay/internal/session"
)

// ErrCircuitOpen is returned without calling the vendor.
var ErrCircuitOpen = errors.New("circuit open")

type Router struct {
	processor      *processor.Processor
	circuitBreaker *circuitbreaker.CircuitBreaker
}

func NewRouter(p *processor.Processor, cb *circuitbreaker.CircuitBreaker) *Router {
	if p == nil {
		panic("processor cannot be nil")
	}
	if cb == nil {
		panic("circuit breaker cannot be nil")
	}
	return &Router{
		processor:      p,
		circuitBreaker: cb,
	}
}

// Execute sends req to the route's endpoint. Transport errors and 5xx
// responses count as breaker failures; a vendor without an adapter is a
// wiring error and never trips the breaker.
func (r *Router) Execute(ctx context.Context, route Route, req adapter.Request, call session.Call) (adapter.ProviderResult, error) {
	ctx, span := otel.Tracer("router").Start(ctx, "Router.Execute")
	defer span.End()
	span.SetAttributes(
		attribute.String("vendor", route.Vendor),
		attribute.String("operation", string(route.Operation)),
		attribute.String("http.method", route.Method),
		attribute.String("trace_id", call.TraceID),
	)

	if !r.processor.Has(route.Vendor) {
		span.SetStatus(codes.Error, "vendor not registered")
		return adapter.ProviderResult{Provider: route.Vendor}, fmt.Errorf("router: %s: %w: %s", route.Operation, processor.ErrAdapterNotFound, route.Vendor)
	}
	if !r.circuitBreaker.AllowRequest(route.Vendor) {
		span.SetStatus(codes.Error, "circuit open")
		return adapter.ProviderResult{Provider: route.Vendor}, fmt.Errorf("%w for vendor %s", ErrCircuitOpen, route.Vendor)
	}

	req.Operation = string(route.Operation)
	req.Method = route.Method
	req.Path = route.Path

	res, err := r.processor.Process(ctx, route.Vendor, req, call)
	if err != nil {
		r.circuitBreaker.RecordFailure(route.Vendor)
		span.RecordError(err)
		span.SetStatus(codes.Error, "vendor call failed")
		return res, fmt.Errorf("router: %s: %w", route.Operation, err)
	}

	span.SetAttributes(attribute.Int("http.status_code", res.HTTPStatus))
	if res.HTTPStatus >= http.StatusInternalServerError {
		r.circuitBreaker.RecordFailure(route.Vendor)
		span.SetStatus(codes.Error, http.StatusText(res.HTTPStatus))
	} else {
		r.circuitBreaker.RecordSuccess(route.Vendor)
	}
	return res, nil
}

// VendorState reports the breaker state for a vendor.
func (r *Router) VendorState(vendor string) circuitbreaker.State {
	state, _ := r.circuitBreaker.GetProviderStatus(vendor)
	return state
}
