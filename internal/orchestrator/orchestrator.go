// Package orchestrator turns relay calls into vendor requests and interprets
// vendor answers as a single Outcome. Each call is one hop from BUILDING to a
// terminal state; nothing is retried or persisted.
package orchestrator

import (
	"context"
	"errors"
	"time"

	"github.com/yourorg/checkout-relay/internal/adapter"
	"github.com/yourorg/checkout-relay/internal/audit"
	"github.com/yourorg/checkout-relay/internal/credentials"
	"github.com/yourorg/checkout-relay/internal/policy"
	"github.com/yourorg/checkout-relay/internal/requestbuilder"
	"github.com/yourorg/checkout-relay/internal/router"
	"github.com/yourorg/checkout-relay/internal/router/circuitbreaker"
	"github.com/yourorg/checkout-relay/internal/session"
)

// RouterInterface executes one routed vendor call and reports vendor health.
type RouterInterface interface {
	Execute(ctx context.Context, route router.Route, req adapter.Request, call session.Call) (adapter.ProviderResult, error)
	VendorState(vendor string) circuitbreaker.State
}

// PolicyEnforcerInterface decides request requirements from facts.
type PolicyEnforcerInterface interface {
	Evaluate(facts policy.Facts) (policy.PolicyDecision, error)
}

// Orchestrator coordinates credential resolution, request building, routing
// and response interpretation.
type Orchestrator struct {
	router         RouterInterface
	policyEnforcer PolicyEnforcerInterface
	resolver       *credentials.Resolver
	customerTokens credentials.CustomerTokens
	builder        *requestbuilder.Builder
	trail          *audit.Trail
	callTimeout    time.Duration
	budget         time.Duration
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithCustomerTokens sets the per-country customer token table.
func WithCustomerTokens(t credentials.CustomerTokens) Option {
	return func(o *Orchestrator) { o.customerTokens = t }
}

// WithRequestBuilder replaces the default request builder.
func WithRequestBuilder(b *requestbuilder.Builder) Option {
	return func(o *Orchestrator) { o.builder = b }
}

// WithAuditTrail publishes exchanges and outcomes on t.
func WithAuditTrail(t *audit.Trail) Option {
	return func(o *Orchestrator) { o.trail = t }
}

// WithTimeouts bounds each vendor call and the whole relay call.
func WithTimeouts(perCall, budget time.Duration) Option {
	return func(o *Orchestrator) {
		o.callTimeout = perCall
		o.budget = budget
	}
}

// NewOrchestrator creates a new Orchestrator.
func NewOrchestrator(r RouterInterface, pe PolicyEnforcerInterface, resolver *credentials.Resolver, opts ...Option) *Orchestrator {
	if r == nil {
		panic("Router cannot be nil")
	}
	if pe == nil {
		panic("PolicyEnforcer cannot be nil")
	}
	if resolver == nil {
		panic("credential Resolver cannot be nil")
	}
	o := &Orchestrator{
		router:         r,
		policyEnforcer: pe,
		resolver:       resolver,
		customerTokens: credentials.CustomerTokens{},
		builder:        requestbuilder.NewBuilder(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// ErrBudgetExhausted is returned when a relay call runs out of time before
// its next vendor call.
var ErrBudgetExhausted = errors.New("request budget exhausted")

// execute derives the call, runs it and publishes the exchange.
func (o *Orchestrator) execute(ctx context.Context, c *session.Checkout, route router.Route, req adapter.Request, creds session.Credentials) (adapter.ProviderResult, error) {
	if c.Expired(time.Now()) {
		return adapter.ProviderResult{}, ErrBudgetExhausted
	}
	call := session.DeriveCall(c, route.Vendor, string(route.Operation), creds, o.callTimeout)
	res, err := o.router.Execute(ctx, route, req, call)

	res.Request.AuthMode = string(c.Auth.Mode)
	o.trail.Exchange(audit.VendorExchange{
		TraceID:     call.TraceID,
		Vendor:      route.Vendor,
		Operation:   string(route.Operation),
		AuthMode:    string(c.Auth.Mode),
		HTTPStatus:  res.HTTPStatus,
		LatencyMs:   res.LatencyMs,
		CircuitOpen: errors.Is(err, router.ErrCircuitOpen),
		Err:         err,
	})
	return res, err
}

func (o *Orchestrator) finish(c *session.Checkout, op router.Operation, status string, httpStatus int) {
	o.trail.Outcome(audit.OutcomeEvent{
		TraceID:    c.Trace.TraceID,
		Operation:  string(op),
		AuthMode:   string(c.Auth.Mode),
		Status:     status,
		HTTPStatus: httpStatus,
	})
}

func (o *Orchestrator) checkout(traceID string, auth credentials.AuthConfig) *session.Checkout {
	return session.NewCheckout(session.NewTraceContext(traceID), auth, o.budget)
}

func exchangeOf(res adapter.ProviderResult) Exchange {
	req := res.Request
	ex := Exchange{Request: &req}
	if res.HTTPStatus != 0 {
		resp := res.ResponseMetadata()
		ex.Response = &resp
	}
	return ex
}

func klarnaCredentials(auth credentials.AuthConfig) session.Credentials {
	return session.Credentials{Account: auth.ClientID, Secret: auth.APIKey}
}
