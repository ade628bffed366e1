package session

import (
	"fmt"
	"time"
)

// Credentials authenticate one outbound call. Account is a client id or
// merchant id; Secret is the API key or shared secret.
type Credentials struct {
	Account string
	Secret  string
}

// String never prints the secret.
func (c Credentials) String() string {
	return fmt.Sprintf("%s:***", c.Account)
}

// Call is derived by the orchestrator for each vendor request.
type Call struct {
	TraceID     string
	SpanID      string
	Vendor      string
	Operation   string
	StartTime   time.Time
	Timeout     time.Duration
	Credentials Credentials
}

// DeriveCall creates a Call for the next vendor request of a checkout. The
// timeout is the smaller of perCall and the checkout's remaining budget.
func DeriveCall(c *Checkout, vendor, operation string, creds Credentials, perCall time.Duration) Call {
	now := time.Now()
	timeout := perCall
	if left := c.Remaining(now); c.Budget > 0 && (timeout <= 0 || left < timeout) {
		timeout = left
	}
	return Call{
		TraceID:     c.Trace.TraceID,
		SpanID:      c.Trace.NewSpan(),
		Vendor:      vendor,
		Operation:   operation,
		StartTime:   now,
		Timeout:     timeout,
		Credentials: creds,
	}
}
