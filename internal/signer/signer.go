// Package signer computes Paytrail HMAC-SHA256 request signatures.
//
// The signed string is every checkout-* header as "key:value", sorted by key
// and joined with line feeds, followed by a line feed and the request body with
// all carriage returns removed. Secrets passed to this package must never be
// logged.
package signer

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	HeaderAccount   = "checkout-account"
	HeaderAlgorithm = "checkout-algorithm"
	HeaderMethod    = "checkout-method"
	HeaderNonce     = "checkout-nonce"
	HeaderTimestamp = "checkout-timestamp"
	HeaderSignature = "signature"

	AlgorithmSHA256 = "sha256"

	headerPrefix    = "checkout-"
	timestampFormat = "2006-01-02T15:04:05.000Z07:00"
)

// SignedRequest holds the checkout-* headers and the resulting signature.
type SignedRequest struct {
	Headers   map[string]string
	Signature string
}

// SortedKeys returns the header names in canonical order.
func (s SignedRequest) SortedKeys() []string {
	keys := make([]string, 0, len(s.Headers))
	for k := range s.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Signer produces fresh signatures. Nonce and clock are injectable for tests.
type Signer struct {
	nonce func() string
	now   func() time.Time
}

// Option configures a Signer.
type Option func(*Signer)

// WithNonce overrides the nonce source.
func WithNonce(f func() string) Option {
	return func(s *Signer) { s.nonce = f }
}

// WithClock overrides the timestamp source.
func WithClock(f func() time.Time) Option {
	return func(s *Signer) { s.now = f }
}

// New returns a Signer using random UUID nonces and the wall clock.
func New(opts ...Option) *Signer {
	s := &Signer{nonce: uuid.NewString, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sign signs one outgoing request with a fresh nonce and timestamp.
func (s *Signer) Sign(method, account, secret string, body []byte) SignedRequest {
	return SignWith(method, account, secret, body, s.nonce(), s.now())
}

// SignWith is the deterministic core of Sign.
func SignWith(method, account, secret string, body []byte, nonce string, ts time.Time) SignedRequest {
	headers := map[string]string{
		HeaderAccount:   account,
		HeaderAlgorithm: AlgorithmSHA256,
		HeaderMethod:    strings.ToUpper(method),
		HeaderNonce:     nonce,
		HeaderTimestamp: ts.UTC().Format(timestampFormat),
	}
	return SignedRequest{
		Headers:   headers,
		Signature: Compute(headers, body, secret),
	}
}

// Compute returns the hex HMAC over the canonical form of headers and body.
// Headers without the checkout- prefix are ignored; keys are matched
// case-insensitively.
func Compute(headers map[string]string, body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(Canonical(headers, body)))
	return hex.EncodeToString(mac.Sum(nil))
}

// Canonical builds the string that is signed.
func Canonical(headers map[string]string, body []byte) string {
	checkout := make(map[string]string, len(headers))
	for k, v := range headers {
		lk := strings.ToLower(k)
		if strings.HasPrefix(lk, headerPrefix) {
			checkout[lk] = v
		}
	}
	var b strings.Builder
	for _, k := range (SignedRequest{Headers: checkout}).SortedKeys() {
		b.WriteString(k)
		b.WriteByte(':')
		b.WriteString(checkout[k])
		b.WriteByte('\n')
	}
	// CRLF in the body breaks verification on the vendor side.
	b.WriteString(strings.ReplaceAll(string(body), "\r", ""))
	return b.String()
}

// Verify checks a signature received from Paytrail in constant time.
func Verify(headers map[string]string, body []byte, secret, signature string) bool {
	expected := Compute(headers, body, secret)
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(signature)))
}
