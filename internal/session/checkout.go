package session

import (
	"time"

	"github.com/yourorg/checkout-relay/internal/credentials"
	"github.com/yourorg/checkout-relay/internal/token"
)

// Checkout is one checkout attempt as seen by a single relay call. It replaces
// ambient state (current mode, current tokens) with values passed explicitly.
type Checkout struct {
	Trace     TraceContext
	Auth      credentials.AuthConfig
	Country   string
	StartedAt time.Time
	// Budget bounds the whole relay call; zero means unbounded.
	Budget time.Duration

	// NetworkSessionToken is consumed by the first vendor call that sends it.
	NetworkSessionToken *token.SingleUse
	// CustomerToken is the resolved per-country token, empty when not enabled.
	CustomerToken string
}

// NewCheckout starts a checkout for the resolved credentials.
func NewCheckout(trace TraceContext, auth credentials.AuthConfig, budget time.Duration) *Checkout {
	return &Checkout{
		Trace:     trace,
		Auth:      auth,
		StartedAt: time.Now(),
		Budget:    budget,
	}
}

// Remaining is the budget left, or zero when no budget applies.
func (c *Checkout) Remaining(now time.Time) time.Duration {
	if c.Budget <= 0 {
		return 0
	}
	left := c.Budget - now.Sub(c.StartedAt)
	if left < 0 {
		return 0
	}
	return left
}

// Expired reports whether a bounded checkout has run out of budget.
func (c *Checkout) Expired(now time.Time) bool {
	return c.Budget > 0 && c.Remaining(now) == 0
}
