// Package circuitbreaker tracks vendor health and fails fast on vendors that
// keep failing.
package circuitbreaker

import (
	"sync"
	"time"
)

// State represents the state of the circuit breaker.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

const (
	defaultFailureThreshold         = 5
	defaultResetTimeout             = 30 * time.Second
	defaultHalfOpenSuccessThreshold = 1
)

// Config tunes a CircuitBreaker. Zero values take the defaults.
type Config struct {
	FailureThreshold         int
	ResetTimeout             time.Duration
	HalfOpenSuccessThreshold int
	// Now overrides the clock; tests only.
	Now func() time.Time
}

// providerState holds the current state for a single vendor.
type providerState struct {
	state                State
	consecutiveFailures  int
	consecutiveSuccesses int
	openUntil            time.Time
}

// CircuitBreaker is an in-memory breaker keyed by vendor name.
type CircuitBreaker struct {
	mu        sync.Mutex
	providers map[string]*providerState
	cfg       Config
}

// NewCircuitBreaker creates a CircuitBreaker.
func NewCircuitBreaker(cfg Config) *CircuitBreaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = defaultFailureThreshold
	}
	if cfg.ResetTimeout <= 0 {
		cfg.ResetTimeout = defaultResetTimeout
	}
	if cfg.HalfOpenSuccessThreshold <= 0 {
		cfg.HalfOpenSuccessThreshold = defaultHalfOpenSuccessThreshold
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &CircuitBreaker{
		providers: make(map[string]*providerState),
		cfg:       cfg,
	}
}

// getProviderState requires cb.mu to be held.
func (cb *CircuitBreaker) getProviderState(name string) *providerState {
	ps, ok := cb.providers[name]
	if !ok {
		ps = &providerState{state: StateClosed}
		cb.providers[name] = ps
	}
	return ps
}

// AllowRequest reports whether a call to the vendor may proceed. An open
// circuit whose timeout expired moves to half-open and lets calls through.
func (cb *CircuitBreaker) AllowRequest(name string) bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	ps := cb.getProviderState(name)
	switch ps.state {
	case StateOpen:
		if cb.cfg.Now().After(ps.openUntil) {
			ps.state = StateHalfOpen
			ps.consecutiveSuccesses = 0
			return true
		}
		return false
	default:
		return true
	}
}

// RecordFailure records a failed call.
func (cb *CircuitBreaker) RecordFailure(name string) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	ps := cb.getProviderState(name)
	switch ps.state {
	case StateClosed:
		ps.consecutiveFailures++
		if ps.consecutiveFailures >= cb.cfg.FailureThreshold {
			cb.trip(ps)
		}
	case StateHalfOpen:
		ps.consecutiveFailures = cb.cfg.FailureThreshold
		cb.trip(ps)
	}
}

func (cb *CircuitBreaker) trip(ps *providerState) {
	ps.state = StateOpen
	ps.consecutiveSuccesses = 0
	ps.openUntil = cb.cfg.Now().Add(cb.cfg.ResetTimeout)
}

// RecordSuccess records a successful call.
func (cb *CircuitBreaker) RecordSuccess(name string) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	ps := cb.getProviderState(name)
	switch ps.state {
	case StateClosed:
		ps.consecutiveFailures = 0
	case StateHalfOpen:
		ps.consecutiveSuccesses++
		if ps.consecutiveSuccesses >= cb.cfg.HalfOpenSuccessThreshold {
			ps.state = StateClosed
			ps.consecutiveFailures = 0
			ps.consecutiveSuccesses = 0
		}
	}
}

// GetProviderStatus returns the state and consecutive failure count without
// triggering any transition.
func (cb *CircuitBreaker) GetProviderStatus(name string) (State, int) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	ps, ok := cb.providers[name]
	if !ok {
		return StateClosed, 0
	}
	return ps.state, ps.consecutiveFailures
}
