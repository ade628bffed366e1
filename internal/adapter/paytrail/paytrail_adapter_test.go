package paytrail

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/checkout-relay/internal/adapter"
	"github.com/yourorg/checkout-relay/internal/session"
	"github.com/yourorg/checkout-relay/internal/signer"
)

const (
	testMerchant = "375917"
	testSecret   = "SAIPPUAKAUPPIAS"
)

func testCall() session.Call {
	return session.Call{
		Vendor:      adapter.VendorPaytrail,
		Operation:   "payments",
		StartTime:   time.Now(),
		Credentials: session.Credentials{Account: testMerchant, Secret: testSecret},
	}
}

// signedResponse writes a response signed the way Paytrail signs them.
func signedResponse(w http.ResponseWriter, status int, body string, secret string) {
	headers := map[string]string{
		signer.HeaderAccount:      testMerchant,
		signer.HeaderAlgorithm:    signer.AlgorithmSHA256,
		signer.HeaderNonce:        "resp-nonce",
		signer.HeaderTimestamp:    "2024-01-01T00:00:00.000Z",
		"checkout-transaction-id": "tx_1",
	}
	for k, v := range headers {
		w.Header().Set(k, v)
	}
	w.Header().Set(signer.HeaderSignature, signer.Compute(headers, []byte(body), secret))
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func TestPaytrailAdapter_Process_SignsRequest(t *testing.T) {
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s := signer.New(signer.WithNonce(func() string { return "nonce-1" }), signer.WithClock(func() time.Time { return fixed }))
	body := []byte(`{"stamp":"s1","amount":1590}`)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/payments", r.URL.Path)
		assert.Equal(t, testMerchant, r.Header.Get(signer.HeaderAccount))
		assert.Equal(t, "sha256", r.Header.Get(signer.HeaderAlgorithm))
		assert.Equal(t, "POST", r.Header.Get(signer.HeaderMethod))
		assert.Equal(t, "nonce-1", r.Header.Get(signer.HeaderNonce))
		assert.Equal(t, "2024-05-01T12:00:00.000Z", r.Header.Get(signer.HeaderTimestamp))

		got, _ := io.ReadAll(r.Body)
		assert.Equal(t, body, got)
		headers := map[string]string{}
		for k := range r.Header {
			headers[k] = r.Header.Get(k)
		}
		assert.True(t, signer.Verify(headers, got, testSecret, r.Header.Get(signer.HeaderSignature)))

		signedResponse(w, http.StatusCreated, `{"transactionId":"tx_1"}`, testSecret)
	}))
	defer server.Close()

	a := NewPaytrailAdapter(server.URL, 5*time.Second, s)
	res, err := a.Process(context.Background(), adapter.Request{
		Method: http.MethodPost,
		Path:   "/payments",
		Body:   body,
	}, testCall())
	require.NoError(t, err)

	assert.Equal(t, http.StatusCreated, res.HTTPStatus)
	assert.Equal(t, adapter.SignatureValid, res.Signature)
	assert.Equal(t, server.URL+"/payments", res.Request.URL)
	assert.Equal(t, testMerchant, res.Request.Headers[signer.HeaderAccount])
	assert.NotEmpty(t, res.Request.Headers[signer.HeaderSignature])
	for _, v := range res.Request.Headers {
		assert.NotContains(t, v, testSecret)
	}
}

func TestPaytrailAdapter_Process_InvalidResponseSignature(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		signedResponse(w, http.StatusCreated, `{"transactionId":"tx_1"}`, "wrong-secret")
	}))
	defer server.Close()

	res, err := NewPaytrailAdapter(server.URL, 0, nil).Process(context.Background(), adapter.Request{
		Method: http.MethodPost, Path: "/payments", Body: []byte(`{}`),
	}, testCall())
	require.NoError(t, err)
	assert.Equal(t, adapter.SignatureInvalid, res.Signature)
}

func TestPaytrailAdapter_Process_UnsignedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"status":"error","message":"Invalid signature"}`))
	}))
	defer server.Close()

	res, err := NewPaytrailAdapter(server.URL, 0, nil).Process(context.Background(), adapter.Request{
		Method: http.MethodPost, Path: "/payments", Body: []byte(`{}`),
	}, testCall())
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, res.HTTPStatus)
	assert.Equal(t, adapter.SignatureNotChecked, res.Signature)
}

func TestPaytrailAdapter_FreshNoncePerCall(t *testing.T) {
	var nonces []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nonces = append(nonces, r.Header.Get(signer.HeaderNonce))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	a := NewPaytrailAdapter(server.URL, 0, nil)
	for i := 0; i < 2; i++ {
		_, err := a.Process(context.Background(), adapter.Request{Path: "/payments", Body: []byte(`{}`)}, testCall())
		require.NoError(t, err)
	}
	require.Len(t, nonces, 2)
	assert.NotEqual(t, nonces[0], nonces[1])
}

func TestPaytrailAdapter_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	_, err := NewPaytrailAdapter(server.URL, 0, nil).Process(context.Background(), adapter.Request{Path: "/payments"}, testCall())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "paytrail: POST /payments")
}
