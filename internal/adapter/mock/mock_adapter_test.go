package mock

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/checkout-relay/internal/adapter"
	"github.com/yourorg/checkout-relay/internal/session"
)

func TestNewMockAdapter(t *testing.T) {
	m := NewMockAdapter("test_mock")
	require.NotNil(t, m)
	assert.Equal(t, "test_mock", m.GetName())
	assert.Equal(t, 0, m.CallCount())
	_, _, ok := m.LastRequest()
	assert.False(t, ok)
}

func TestMockAdapter_Process_DefaultBehavior(t *testing.T) {
	m := NewMockAdapter("klarna").Respond(http.StatusCreated, `{"state":"SUBMITTED"}`)
	req := adapter.Request{Method: http.MethodPost, Path: "/v2/payment/requests", Body: []byte(`{"currency":"EUR"}`)}

	res, err := m.Process(context.Background(), req, session.Call{Operation: "payment_request"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, res.HTTPStatus)
	assert.JSONEq(t, `{"state":"SUBMITTED"}`, string(res.RawResponse))
	assert.Equal(t, "mock://klarna/v2/payment/requests", res.Request.URL)

	assert.Equal(t, 1, m.CallCount())
	last, call, ok := m.LastRequest()
	require.True(t, ok)
	assert.Equal(t, req, last)
	assert.Equal(t, "payment_request", call.Operation)
}

func TestMockAdapter_Process_CustomFunc(t *testing.T) {
	m := NewMockAdapter("paytrail")
	wantErr := errors.New("connection reset")
	m.ProcessFunc = func(ctx context.Context, req adapter.Request, call session.Call) (adapter.ProviderResult, error) {
		return adapter.ProviderResult{Provider: "paytrail"}, wantErr
	}

	_, err := m.Process(context.Background(), adapter.Request{Path: "/payments"}, session.Call{})
	assert.ErrorIs(t, err, wantErr)
	assert.Equal(t, 1, m.CallCount(), "calls are counted even when ProcessFunc fails")
	assert.Len(t, m.Requests(), 1)
}
