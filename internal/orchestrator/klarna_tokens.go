package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel"

	"github.com/yourorg/checkout-relay/internal/adapter"
	"github.com/yourorg/checkout-relay/internal/adapter/klarna"
	"github.com/yourorg/checkout-relay/internal/credentials"
	"github.com/yourorg/checkout-relay/internal/router"
	"github.com/yourorg/checkout-relay/internal/session"
	"github.com/yourorg/checkout-relay/internal/token"
)

// Customer journeys accepted by the interoperability test-token call.
var CustomerJourneys = []string{
	"KLARNA_EXPRESS_CHECKOUT",
	"SIGN_IN_WITH_KLARNA",
	"KLARNA_PRE_QUALIFICATION",
	"KLARNA_ACCOUNT_LINKING",
}

// IdentityTokenInput requests an identity SDK token.
type IdentityTokenInput struct {
	TraceID  string
	AuthMode string
	Country  string
}

// InteropTestTokenInput requests an interoperability test token.
type InteropTestTokenInput struct {
	TraceID         string
	AuthMode        string
	CustomerJourney string
	Country         string
}

// InteropSDKTokenInput exchanges an interoperability token for an SDK token.
type InteropSDKTokenInput struct {
	TraceID               string
	AuthMode              string
	InteroperabilityToken *token.SingleUse
}

// PresentationInput requests the payment presentation. Query is forwarded
// as-is; currency is required.
type PresentationInput struct {
	TraceID  string
	AuthMode string
	Query    url.Values
}

// IdentitySDKToken fetches an SDK token for the tokenized-payments flow. The
// country's customer token is attached when configured.
func (o *Orchestrator) IdentitySDKToken(ctx context.Context, in IdentityTokenInput) (*TokenResult, error) {
	ctx, span := otel.Tracer("orchestrator").Start(ctx, "Orchestrator.IdentitySDKToken")
	defer span.End()

	auth, err := o.resolver.Resolve(in.AuthMode)
	if err != nil {
		return nil, err
	}
	headers := map[string]string{}
	if tok := o.customerToken(true, in.Country); tok != "" {
		headers[klarna.HeaderCustomerToken] = tok
	}
	return o.sdkTokenCall(ctx, in.TraceID, auth, router.OpIdentitySDKToken, adapter.Request{Headers: headers, Body: []byte(`{}`)})
}

// InteroperabilityTestToken fetches an interoperability token for a customer
// journey. Acquiring-Partner only.
func (o *Orchestrator) InteroperabilityTestToken(ctx context.Context, in InteropTestTokenInput) (*TokenResult, error) {
	ctx, span := otel.Tracer("orchestrator").Start(ctx, "Orchestrator.InteroperabilityTestToken")
	defer span.End()

	auth, err := o.acquiringPartnerOnly(in.AuthMode, "interoperability")
	if err != nil {
		return nil, err
	}
	journey := strings.ToUpper(strings.TrimSpace(in.CustomerJourney))
	if journey == "" {
		return nil, missing("customerJourney")
	}
	if !validJourney(journey) {
		return nil, &ValidationError{
			Field:   "customerJourney",
			Message: "customerJourney must be one of " + strings.Join(CustomerJourneys, ", "),
		}
	}

	body, err := json.Marshal(map[string]string{"customer_journey": journey})
	if err != nil {
		return nil, err
	}
	headers := map[string]string{}
	if tok := o.customerToken(true, in.Country); tok != "" {
		headers[klarna.HeaderCustomerToken] = tok
	}

	route, err := klarnaRoute(router.OpInteropTestToken, auth)
	if err != nil {
		return nil, err
	}
	c := o.checkout(in.TraceID, auth)
	c.Country = in.Country
	res, err := o.execute(ctx, c, route, adapter.Request{Headers: headers, Body: body}, klarnaCredentials(auth))
	if err != nil {
		return nil, err
	}
	if !res.Success() {
		return nil, o.vendorFailure(c, router.OpInteropTestToken, res)
	}

	var parsed interoperabilityTokenResponse
	if err := json.Unmarshal(res.RawResponse, &parsed); err != nil || parsed.InteroperabilityToken == "" {
		return nil, o.malformed(c, router.OpInteropTestToken, res, "interoperability_token")
	}
	o.finish(c, router.OpInteropTestToken, StatusOK, http.StatusOK)
	return &TokenResult{InteroperabilityToken: parsed.InteroperabilityToken, Exchange: exchangeOf(res)}, nil
}

// InteroperabilitySDKToken exchanges an interoperability token for an SDK
// token. The request carries the token as a header and no body.
func (o *Orchestrator) InteroperabilitySDKToken(ctx context.Context, in InteropSDKTokenInput) (*TokenResult, error) {
	ctx, span := otel.Tracer("orchestrator").Start(ctx, "Orchestrator.InteroperabilitySDKToken")
	defer span.End()

	auth, err := o.acquiringPartnerOnly(in.AuthMode, "interoperability")
	if err != nil {
		return nil, err
	}
	value, err := in.InteroperabilityToken.Consume()
	if err != nil {
		if errors.Is(err, token.ErrConsumed) {
			return nil, &ValidationError{Field: "interoperabilityToken", Message: "interoperabilityToken was already used"}
		}
		return nil, missing("interoperabilityToken")
	}
	return o.sdkTokenCall(ctx, in.TraceID, auth, router.OpInteropSDKToken, adapter.Request{
		Headers: map[string]string{klarna.HeaderInteroperabilityToken: value},
	})
}

// Presentation returns the vendor's presentation document for the query.
func (o *Orchestrator) Presentation(ctx context.Context, in PresentationInput) (*PresentationResult, error) {
	ctx, span := otel.Tracer("orchestrator").Start(ctx, "Orchestrator.Presentation")
	defer span.End()

	if strings.TrimSpace(in.Query.Get("currency")) == "" {
		return nil, missing("currency")
	}
	auth, err := o.resolver.Resolve(in.AuthMode)
	if err != nil {
		return nil, err
	}
	route, err := klarnaRoute(router.OpPresentation, auth)
	if err != nil {
		return nil, err
	}

	c := o.checkout(in.TraceID, auth)
	res, err := o.execute(ctx, c, route, adapter.Request{Query: in.Query}, klarnaCredentials(auth))
	if err != nil {
		return nil, err
	}
	if !res.Success() {
		return nil, o.vendorFailure(c, router.OpPresentation, res)
	}
	if !json.Valid(res.RawResponse) {
		return nil, o.malformed(c, router.OpPresentation, res, "presentation")
	}
	o.finish(c, router.OpPresentation, StatusOK, http.StatusOK)
	return &PresentationResult{Presentation: json.RawMessage(res.RawResponse), Exchange: exchangeOf(res)}, nil
}

func (o *Orchestrator) sdkTokenCall(ctx context.Context, traceID string, auth credentials.AuthConfig, op router.Operation, req adapter.Request) (*TokenResult, error) {
	route, err := klarnaRoute(op, auth)
	if err != nil {
		return nil, err
	}
	c := o.checkout(traceID, auth)
	res, err := o.execute(ctx, c, route, req, klarnaCredentials(auth))
	if err != nil {
		return nil, err
	}
	if !res.Success() {
		return nil, o.vendorFailure(c, op, res)
	}

	var parsed sdkTokenResponse
	if err := json.Unmarshal(res.RawResponse, &parsed); err != nil || parsed.SDKToken == "" {
		return nil, o.malformed(c, op, res, "sdk_token")
	}
	o.finish(c, op, StatusOK, http.StatusOK)
	return &TokenResult{SDKToken: token.New(token.KindSDK, parsed.SDKToken), ExpiresAt: parsed.ExpiresAt, Exchange: exchangeOf(res)}, nil
}

// klarnaRoute resolves op and reports a missing route as a mode error that
// names op and the mode that does serve it.
func klarnaRoute(op router.Operation, auth credentials.AuthConfig) (router.Route, error) {
	route, err := router.KlarnaRoute(op, auth)
	if err != nil {
		return router.Route{}, modeRequires(string(op), supportingMode(op))
	}
	return route, nil
}

// supportingMode names the mode that has a route for op, preferring Sub-Partner.
func supportingMode(op router.Operation) credentials.Mode {
	if router.SupportsKlarna(op, credentials.ModeSubPartner) {
		return credentials.ModeSubPartner
	}
	return credentials.ModeAcquiringPartner
}

// acquiringPartnerOnly resolves credentials and rejects Sub-Partner mode
// before any vendor call.
func (o *Orchestrator) acquiringPartnerOnly(requested, feature string) (credentials.AuthConfig, error) {
	auth, err := o.resolver.Resolve(requested)
	if err != nil {
		return credentials.AuthConfig{}, err
	}
	if !auth.IsAcquiringPartner {
		return credentials.AuthConfig{}, modeRequires(feature, credentials.ModeAcquiringPartner)
	}
	return auth, nil
}

func validJourney(j string) bool {
	for _, v := range CustomerJourneys {
		if v == j {
			return true
		}
	}
	return false
}

func (o *Orchestrator) vendorFailure(c *session.Checkout, op router.Operation, res adapter.ProviderResult) *VendorError {
	errored := klarnaErrored(res.HTTPStatus, res.RawResponse)
	o.finish(c, op, StatusError, res.HTTPStatus)
	return &VendorError{
		Vendor:     res.Provider,
		Operation:  string(op),
		StatusCode: res.HTTPStatus,
		Message:    errored.Message,
		Details:    errored.Details,
		Exchange:   exchangeOf(res),
	}
}

func (o *Orchestrator) malformed(c *session.Checkout, op router.Operation, res adapter.ProviderResult, field string) *VendorError {
	o.finish(c, op, StatusError, http.StatusBadGateway)
	return &VendorError{
		Vendor:     res.Provider,
		Operation:  string(op),
		StatusCode: http.StatusBadGateway,
		Message:    "Klarna response carried no " + field,
		Exchange:   exchangeOf(res),
	}
}
