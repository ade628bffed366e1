// Package paytrail is the adapter for the Paytrail payment API. Every request
// is HMAC-signed and response signatures are verified when present.
package paytrail

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/yourorg/checkout-relay/internal/adapter"
	"github.com/yourorg/checkout-relay/internal/session"
	"github.com/yourorg/checkout-relay/internal/signer"
)

// DefaultBaseURL is the Paytrail API.
const DefaultBaseURL = "https://services.paytrail.com"

const contentType = "application/json; charset=utf-8"

// PaytrailAdapter implements adapter.ProviderAdapter. Call credentials carry
// the merchant id as Account and the shared secret as Secret.
type PaytrailAdapter struct {
	client     *resty.Client
	signer     *signer.Signer
	apiBaseURL string
}

// NewPaytrailAdapter creates an adapter. A nil signer uses signer.New().
func NewPaytrailAdapter(baseURL string, timeout time.Duration, s *signer.Signer) *PaytrailAdapter {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if s == nil {
		s = signer.New()
	}
	client := resty.New().SetBaseURL(baseURL)
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	return &PaytrailAdapter{client: client, signer: s, apiBaseURL: baseURL}
}

// GetName returns the vendor name.
func (p *PaytrailAdapter) GetName() string {
	return adapter.VendorPaytrail
}

// Process signs and sends one request.
func (p *PaytrailAdapter) Process(ctx context.Context, req adapter.Request, call session.Call) (adapter.ProviderResult, error) {
	if call.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, call.Timeout)
		defer cancel()
	}

	method := req.Method
	if method == "" {
		method = http.MethodPost
	}
	signed := p.signer.Sign(method, call.Credentials.Account, call.Credentials.Secret, req.Body)

	sent := make(map[string]string, len(signed.Headers)+2)
	for k, v := range signed.Headers {
		sent[k] = v
	}
	sent[signer.HeaderSignature] = signed.Signature
	sent["Content-Type"] = contentType

	r := p.client.R().SetContext(ctx).SetHeaders(sent)
	if len(req.Body) > 0 {
		r.SetBody(req.Body)
	}

	result := adapter.ProviderResult{
		Provider: p.GetName(),
		Request: adapter.RequestMetadata{
			URL:     adapter.JoinURL(p.apiBaseURL, req.Path, req.Query),
			Method:  method,
			Headers: adapter.Redact(sent),
			Body:    adapter.BodyValue(req.Body),
		},
	}

	start := time.Now()
	resp, err := r.Execute(method, req.Path)
	result.LatencyMs = time.Since(start).Milliseconds()
	if err != nil {
		return result, fmt.Errorf("paytrail: %s %s: %w", method, req.Path, err)
	}

	result.HTTPStatus = resp.StatusCode()
	result.Headers = resp.Header()
	result.RawResponse = resp.Body()
	result.Signature = verifyResponse(result.Headers, result.RawResponse, call.Credentials.Secret)
	return result, nil
}

func verifyResponse(h http.Header, body []byte, secret string) adapter.SignatureStatus {
	sig := h.Get(signer.HeaderSignature)
	if sig == "" {
		return adapter.SignatureNotChecked
	}
	if signer.Verify(adapter.FlattenHeaders(h, "checkout-"), body, secret, sig) {
		return adapter.SignatureValid
	}
	return adapter.SignatureInvalid
}
