// Package klarna is the adapter for the Klarna payments API.
package klarna

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/yourorg/checkout-relay/internal/adapter"
	"github.com/yourorg/checkout-relay/internal/session"
)

// DefaultBaseURL is the Klarna test environment.
const DefaultBaseURL = "https://api-global.test.klarna.com"

// Request headers understood by Klarna.
const (
	HeaderNetworkSessionToken   = "Klarna-Network-Session-Token"
	HeaderCustomerToken         = "Klarna-Customer-Token"
	HeaderInteroperabilityToken = "Klarna-Interoperability-Token"
)

// KlarnaAdapter implements adapter.ProviderAdapter with HTTP Basic auth.
type KlarnaAdapter struct {
	client     *resty.Client
	apiBaseURL string
}

// NewKlarnaAdapter creates an adapter. An empty baseURL uses DefaultBaseURL;
// timeout bounds each call when the call itself carries none.
func NewKlarnaAdapter(baseURL string, timeout time.Duration) *KlarnaAdapter {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json")
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	return &KlarnaAdapter{client: client, apiBaseURL: baseURL}
}

// GetName returns the vendor name.
func (k *KlarnaAdapter) GetName() string {
	return adapter.VendorKlarna
}

// Process sends one request to Klarna.
func (k *KlarnaAdapter) Process(ctx context.Context, req adapter.Request, call session.Call) (adapter.ProviderResult, error) {
	if call.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, call.Timeout)
		defer cancel()
	}

	sent := map[string]string{
		"Authorization": basicAuth(call.Credentials),
		"Accept":        "application/json",
	}
	r := k.client.R().
		SetContext(ctx).
		SetBasicAuth(call.Credentials.Account, call.Credentials.Secret)
	for name, value := range req.Headers {
		if value == "" {
			continue
		}
		r.SetHeader(name, value)
		sent[name] = value
	}
	if len(req.Body) > 0 {
		r.SetHeader("Content-Type", "application/json").SetBody(req.Body)
		sent["Content-Type"] = "application/json"
	}
	if len(req.Query) > 0 {
		r.SetQueryParamsFromValues(req.Query)
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	result := adapter.ProviderResult{
		Provider: k.GetName(),
		Request: adapter.RequestMetadata{
			URL:     adapter.JoinURL(k.apiBaseURL, req.Path, req.Query),
			Method:  method,
			Headers: adapter.Redact(sent),
			Body:    adapter.BodyValue(req.Body),
		},
	}

	start := time.Now()
	resp, err := r.Execute(method, req.Path)
	result.LatencyMs = time.Since(start).Milliseconds()
	if err != nil {
		return result, fmt.Errorf("klarna: %s %s: %w", method, req.Path, err)
	}

	result.HTTPStatus = resp.StatusCode()
	result.Headers = resp.Header()
	result.RawResponse = resp.Body()
	return result, nil
}

func basicAuth(c session.Credentials) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(c.Account+":"+c.Secret))
}
