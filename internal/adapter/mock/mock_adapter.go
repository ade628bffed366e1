// Package mock provides a call-counting adapter for tests.
package mock

import (
	"context"
	"net/http"
	"sync"

	"github.com/yourorg/checkout-relay/internal/adapter"
	"github.com/yourorg/checkout-relay/internal/session"
)

// MockAdapter records every request. ProcessFunc, when set, produces the
// result; otherwise the adapter answers 200 with Status and Body.
type MockAdapter struct {
	Name        string
	Status      int
	Body        []byte
	ProcessFunc func(ctx context.Context, req adapter.Request, call session.Call) (adapter.ProviderResult, error)

	mu       sync.Mutex
	requests []adapter.Request
	calls    []session.Call
}

// NewMockAdapter creates a MockAdapter answering 200 {}.
func NewMockAdapter(name string) *MockAdapter {
	return &MockAdapter{Name: name, Status: http.StatusOK, Body: []byte(`{}`)}
}

// Respond sets the default response and returns the adapter.
func (m *MockAdapter) Respond(status int, body string) *MockAdapter {
	m.Status = status
	m.Body = []byte(body)
	return m
}

// Process implements adapter.ProviderAdapter.
func (m *MockAdapter) Process(ctx context.Context, req adapter.Request, call session.Call) (adapter.ProviderResult, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.calls = append(m.calls, call)
	m.mu.Unlock()

	if m.ProcessFunc != nil {
		return m.ProcessFunc(ctx, req, call)
	}
	return adapter.ProviderResult{
		Provider:    m.Name,
		HTTPStatus:  m.Status,
		RawResponse: m.Body,
		Request: adapter.RequestMetadata{
			URL:     adapter.JoinURL("mock://"+m.Name, req.Path, req.Query),
			Method:  req.Method,
			Headers: adapter.Redact(req.Headers),
			Body:    adapter.BodyValue(req.Body),
		},
	}, nil
}

// GetName implements adapter.ProviderAdapter.
func (m *MockAdapter) GetName() string {
	return m.Name
}

// CallCount returns the number of Process calls.
func (m *MockAdapter) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// Requests returns a copy of the recorded requests.
func (m *MockAdapter) Requests() []adapter.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]adapter.Request(nil), m.requests...)
}

// LastRequest returns the most recent request; ok is false when none was made.
func (m *MockAdapter) LastRequest() (req adapter.Request, call session.Call, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return adapter.Request{}, session.Call{}, false
	}
	return m.requests[len(m.requests)-1], m.calls[len(m.calls)-1], true
}
