package klarna

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/checkout-relay/internal/adapter"
	"github.com/yourorg/checkout-relay/internal/session"
)

func testCall() session.Call {
	return session.Call{
		TraceID:     "trace-1",
		Vendor:      adapter.VendorKlarna,
		Operation:   "payment_request",
		StartTime:   time.Now(),
		Credentials: session.Credentials{Account: "client-id", Secret: "api-key"},
	}
}

func TestKlarnaAdapter_GetName(t *testing.T) {
	assert.Equal(t, "klarna", NewKlarnaAdapter("", 0).GetName())
	assert.Equal(t, DefaultBaseURL, NewKlarnaAdapter("", 0).apiBaseURL)
}

func TestKlarnaAdapter_Process_PostWithHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v2/payment/requests", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "client-id", user)
		assert.Equal(t, "api-key", pass)
		assert.Equal(t, "nst_1", r.Header.Get(HeaderNetworkSessionToken))
		assert.Empty(t, r.Header.Get(HeaderCustomerToken), "empty headers are not sent")
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, _ := io.ReadAll(r.Body)
		var payload map[string]interface{}
		require.NoError(t, json.Unmarshal(body, &payload))
		assert.Equal(t, "EUR", payload["currency"])

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"state":"SUBMITTED"}`))
	}))
	defer server.Close()

	a := NewKlarnaAdapter(server.URL, 5*time.Second)
	res, err := a.Process(context.Background(), adapter.Request{
		Operation: "payment_request",
		Method:    http.MethodPost,
		Path:      "/v2/payment/requests",
		Headers: map[string]string{
			HeaderNetworkSessionToken: "nst_1",
			HeaderCustomerToken:       "",
		},
		Body: []byte(`{"currency":"EUR"}`),
	}, testCall())
	require.NoError(t, err)

	assert.Equal(t, http.StatusCreated, res.HTTPStatus)
	assert.True(t, res.Success())
	assert.JSONEq(t, `{"state":"SUBMITTED"}`, string(res.RawResponse))
	assert.Equal(t, server.URL+"/v2/payment/requests", res.Request.URL)
	assert.Equal(t, "Basic ***", res.Request.Headers["Authorization"])
	assert.Equal(t, "nst_1", res.Request.Headers[HeaderNetworkSessionToken])
	assert.NotContains(t, res.Request.Headers, HeaderCustomerToken)
	assert.Equal(t, json.RawMessage(`{"currency":"EUR"}`), res.Request.Body)
}

func TestKlarnaAdapter_Process_GetWithQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "EUR", r.URL.Query().Get("currency"))
		assert.Equal(t, []string{"PAY", "SUBSCRIBE"}, r.URL.Query()["intents"])
		assert.Empty(t, r.Header.Get("Content-Type"))
		_, _ = w.Write([]byte(`{"payment_option":{}}`))
	}))
	defer server.Close()

	q := url.Values{"currency": {"EUR"}, "intents": {"PAY", "SUBSCRIBE"}}
	res, err := NewKlarnaAdapter(server.URL, 0).Process(context.Background(), adapter.Request{
		Method: http.MethodGet,
		Path:   "/v2/payment/presentation",
		Query:  q,
	}, testCall())
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.HTTPStatus)
	assert.Contains(t, res.Request.URL, "currency=EUR")
	assert.Nil(t, res.Request.Body)
}

func TestKlarnaAdapter_Process_VendorErrorIsAResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error_code":"BAD_VALUE","error_message":"currency is invalid"}`))
	}))
	defer server.Close()

	res, err := NewKlarnaAdapter(server.URL, 0).Process(context.Background(), adapter.Request{
		Method: http.MethodPost, Path: "/v2/payment/requests", Body: []byte(`{}`),
	}, testCall())
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, res.HTTPStatus)
	assert.False(t, res.Success())
}

func TestKlarnaAdapter_Process_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	_, err := NewKlarnaAdapter(server.URL, 0).Process(context.Background(), adapter.Request{
		Method: http.MethodGet, Path: "/v2/payment/presentation",
	}, testCall())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "klarna: GET /v2/payment/presentation")
}

func TestKlarnaAdapter_Process_CallTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	call := testCall()
	call.Timeout = 20 * time.Millisecond
	_, err := NewKlarnaAdapter(server.URL, 0).Process(context.Background(), adapter.Request{
		Method: http.MethodGet, Path: "/slow",
	}, call)
	require.Error(t, err)
}
