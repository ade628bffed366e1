// Package session holds the explicit per-request objects passed through a
// relay call: the trace, the checkout attempt and each outbound vendor call.
package session

import (
	"github.com/google/uuid"
)

// TraceContext carries only cross-cutting concerns needed for observability.
type TraceContext struct {
	TraceID string // Globally unique ID for logs and spans
	SpanID  string // Current span identifier
}

// NewTraceContext creates a TraceContext. An empty traceID gets a fresh UUID.
func NewTraceContext(traceID string) TraceContext {
	if traceID == "" {
		traceID = uuid.NewString()
	}
	return TraceContext{
		TraceID: traceID,
		SpanID:  uuid.NewString(),
	}
}

// NewSpan generates a new SpanID for a child operation within the same trace.
func (tc *TraceContext) NewSpan() string {
	tc.SpanID = uuid.NewString()
	return tc.SpanID
}
