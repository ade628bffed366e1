// Package audit publishes vendor exchanges and relay outcomes on an event bus.
// Subscribers see metadata only, never bodies or credentials.
package audit

import (
	"fmt"

	"github.com/asaskevich/EventBus"
)

// Topics.
const (
	TopicVendorExchange = "relay:vendor_exchange"
	TopicOutcome        = "relay:outcome"
)

// VendorExchange describes one outbound call.
type VendorExchange struct {
	TraceID   string
	Vendor    string
	Operation string
	AuthMode  string
	// HTTPStatus is zero when no response was received.
	HTTPStatus  int
	LatencyMs   int64
	CircuitOpen bool
	Err         error
}

// StatusLabel is the metric label for the exchange.
func (e VendorExchange) StatusLabel() string {
	switch {
	case e.CircuitOpen:
		return "circuit_open"
	case e.HTTPStatus == 0:
		return "error"
	default:
		return fmt.Sprintf("%d", e.HTTPStatus)
	}
}

// OutcomeEvent describes what a relay call returned to its caller.
type OutcomeEvent struct {
	TraceID    string
	Operation  string
	AuthMode   string
	Status     string
	HTTPStatus int
}

// Trail wraps the bus. Handlers run synchronously on the publishing goroutine.
type Trail struct {
	bus EventBus.Bus
}

// NewTrail creates a Trail with an empty bus.
func NewTrail() *Trail {
	return &Trail{bus: EventBus.New()}
}

// OnExchange registers fn for every vendor exchange.
func (t *Trail) OnExchange(fn func(VendorExchange)) error {
	if err := t.bus.Subscribe(TopicVendorExchange, fn); err != nil {
		return fmt.Errorf("subscribe %s: %w", TopicVendorExchange, err)
	}
	return nil
}

// OnOutcome registers fn for every outcome.
func (t *Trail) OnOutcome(fn func(OutcomeEvent)) error {
	if err := t.bus.Subscribe(TopicOutcome, fn); err != nil {
		return fmt.Errorf("subscribe %s: %w", TopicOutcome, err)
	}
	return nil
}

// Exchange publishes e. A nil Trail is a no-op.
func (t *Trail) Exchange(e VendorExchange) {
	if t == nil {
		return
	}
	t.bus.Publish(TopicVendorExchange, e)
}

// Outcome publishes e. A nil Trail is a no-op.
func (t *Trail) Outcome(e OutcomeEvent) {
	if t == nil {
		return
	}
	t.bus.Publish(TopicOutcome, e)
}
