// Package adapter defines the vendor adapter interface. Adapters own the
// vendor-specific transport concerns (authentication, signing, serialization)
// and hand back the raw response together with audit metadata.
package adapter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/yourorg/checkout-relay/internal/session"
)

// Vendor names.
const (
	VendorKlarna   = "klarna"
	VendorPaytrail = "paytrail"
)

// Request is one outbound vendor call.
type Request struct {
	Operation string
	Method    string
	Path      string
	Query     url.Values
	Headers   map[string]string
	Body      []byte
}

// SignatureStatus records whether a response signature was checked.
type SignatureStatus string

const (
	SignatureNotChecked SignatureStatus = ""
	SignatureValid      SignatureStatus = "valid"
	SignatureInvalid    SignatureStatus = "invalid"
)

// RequestMetadata is the audit view of what was sent. Secrets are redacted.
type RequestMetadata struct {
	URL      string            `json:"url"`
	Method   string            `json:"method"`
	AuthMode string            `json:"authMode,omitempty"`
	Headers  map[string]string `json:"headers"`
	Body     interface{}       `json:"body,omitempty"`
}

// ResponseMetadata is the audit view of what came back.
type ResponseMetadata struct {
	Status  int               `json:"status"`
	Headers map[string]string `json:"headers,omitempty"`
	Body    interface{}       `json:"body,omitempty"`
}

// ProviderResult holds the outcome of one vendor call.
type ProviderResult struct {
	Provider    string
	HTTPStatus  int
	Headers     http.Header
	RawResponse []byte
	LatencyMs   int64
	Signature   SignatureStatus
	Request     RequestMetadata
}

// Success reports a 2xx status.
func (r ProviderResult) Success() bool {
	return r.HTTPStatus >= 200 && r.HTTPStatus < 300
}

// ResponseMetadata builds the audit view of the response.
func (r ProviderResult) ResponseMetadata() ResponseMetadata {
	return ResponseMetadata{
		Status:  r.HTTPStatus,
		Headers: FlattenHeaders(r.Headers, "checkout-", "request-id", "klarna-correlation-id"),
		Body:    BodyValue(r.RawResponse),
	}
}

// ProviderAdapter is implemented by each vendor client. A non-nil error means
// no response was received; non-2xx responses are returned as results.
type ProviderAdapter interface {
	Process(ctx context.Context, req Request, call session.Call) (ProviderResult, error)
	GetName() string
}

var sensitiveHeaders = map[string]bool{
	"authorization":         true,
	"klarna-customer-token": true,
}

// Redact copies headers, masking credentials and long-lived tokens.
func Redact(headers map[string]string) map[string]string {
	out := make(map[string]string, len(headers))
	for k, v := range headers {
		if sensitiveHeaders[strings.ToLower(k)] {
			if scheme, _, ok := strings.Cut(v, " "); ok && strings.EqualFold(k, "authorization") {
				out[k] = scheme + " ***"
				continue
			}
			out[k] = "***"
			continue
		}
		out[k] = v
	}
	return out
}

// BodyValue renders a body for audit output: JSON stays structured, anything
// else becomes a string, empty becomes nil.
func BodyValue(raw []byte) interface{} {
	if len(raw) == 0 {
		return nil
	}
	if json.Valid(raw) {
		return json.RawMessage(raw)
	}
	return string(raw)
}

// FlattenHeaders keeps the first value of headers whose lowercased name has
// one of the given prefixes.
func FlattenHeaders(h http.Header, prefixes ...string) map[string]string {
	out := make(map[string]string)
	for k, vs := range h {
		if len(vs) == 0 {
			continue
		}
		lk := strings.ToLower(k)
		for _, p := range prefixes {
			if strings.HasPrefix(lk, p) {
				out[lk] = vs[0]
				break
			}
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// JoinURL joins a base URL, path and query for audit output.
func JoinURL(base, path string, query url.Values) string {
	u := strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}
