package signer

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedTime = time.Date(2024, 3, 1, 12, 30, 45, 123000000, time.UTC)

func TestSignWith_Deterministic(t *testing.T) {
	body := []byte(`{"amount":1590,"currency":"EUR"}`)
	first := SignWith("post", "375917", "SAIPPUAKAUPPIAS", body, "nonce-1", fixedTime)
	second := SignWith("post", "375917", "SAIPPUAKAUPPIAS", body, "nonce-1", fixedTime)

	assert.Equal(t, first.Signature, second.Signature)
	assert.Len(t, first.Signature, 64)
	assert.Equal(t, "POST", first.Headers[HeaderMethod])
	assert.Equal(t, AlgorithmSHA256, first.Headers[HeaderAlgorithm])
	assert.Equal(t, "2024-03-01T12:30:45.123Z", first.Headers[HeaderTimestamp])
}

func TestSignWith_NonceChangesSignature(t *testing.T) {
	body := []byte(`{}`)
	a := SignWith("POST", "375917", "secret", body, "nonce-a", fixedTime)
	b := SignWith("POST", "375917", "secret", body, "nonce-b", fixedTime)
	assert.NotEqual(t, a.Signature, b.Signature)
}

func TestCanonical_StripsCarriageReturns(t *testing.T) {
	headers := map[string]string{HeaderAccount: "1", HeaderNonce: "n"}
	crlf := SignWith("POST", "1", "s", []byte("{\r\n\"a\":1\r\n}"), "n", fixedTime)
	lf := SignWith("POST", "1", "s", []byte("{\n\"a\":1\n}"), "n", fixedTime)
	assert.Equal(t, lf.Signature, crlf.Signature)
	assert.NotContains(t, Canonical(headers, []byte("a\r\nb")), "\r")
}

func TestCanonical_Layout(t *testing.T) {
	headers := map[string]string{
		"checkout-nonce":   "n",
		"Checkout-Account": "1",
		"content-type":     "application/json",
	}
	got := Canonical(headers, []byte("body"))
	assert.Equal(t, "checkout-account:1\ncheckout-nonce:n\nbody", got)
}

func TestCompute_MatchesManualHMAC(t *testing.T) {
	headers := map[string]string{HeaderAccount: "375917", HeaderMethod: "GET"}
	mac := hmac.New(sha256.New, []byte("secret"))
	mac.Write([]byte("checkout-account:375917\ncheckout-method:GET\n"))
	assert.Equal(t, hex.EncodeToString(mac.Sum(nil)), Compute(headers, nil, "secret"))
}

func TestSigner_FreshNonceAndTimestamp(t *testing.T) {
	s := New()
	a := s.Sign("POST", "1", "secret", []byte("{}"))
	b := s.Sign("POST", "1", "secret", []byte("{}"))
	assert.NotEqual(t, a.Headers[HeaderNonce], b.Headers[HeaderNonce])
	assert.NotEqual(t, a.Signature, b.Signature)
}

func TestSigner_InjectedSources(t *testing.T) {
	s := New(WithNonce(func() string { return "fixed" }), WithClock(func() time.Time { return fixedTime }))
	got := s.Sign("POST", "1", "secret", []byte("{}"))
	want := SignWith("POST", "1", "secret", []byte("{}"), "fixed", fixedTime)
	assert.Equal(t, want, got)
	assert.Equal(t, []string{HeaderAccount, HeaderAlgorithm, HeaderMethod, HeaderNonce, HeaderTimestamp}, got.SortedKeys())
}

func TestVerify(t *testing.T) {
	signed := SignWith("POST", "1", "secret", []byte(`{"ok":true}`), "n", fixedTime)
	require.True(t, Verify(signed.Headers, []byte(`{"ok":true}`), "secret", signed.Signature))
	assert.False(t, Verify(signed.Headers, []byte(`{"ok":false}`), "secret", signed.Signature))
	assert.False(t, Verify(signed.Headers, []byte(`{"ok":true}`), "other", signed.Signature))
}
