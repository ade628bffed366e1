package router

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/yourorg/checkout-relay/internal/adapter"
	"github.com/yourorg/checkout-relay/internal/credentials"
)

// Operation names one logical vendor call.
type Operation string

const (
	OpPresentation              Operation = "presentation"
	OpPaymentRequest            Operation = "payment_request"
	OpAuthorizePayment          Operation = "authorize_payment"
	OpIdentitySDKToken          Operation = "identity_sdk_token"
	OpInteropTestToken          Operation = "interoperability_test_token"
	OpInteropSDKToken           Operation = "interoperability_sdk_token"
	OpPaytrailPayment           Operation = "paytrail_payment"
	OpPaytrailKlarnaCharge      Operation = "paytrail_klarna_charge"
	OpPaytrailAuthorizationHold Operation = "paytrail_klarna_authorization_hold"
)

// ErrRouteUnavailable is returned when an operation has no route for the
// resolved auth mode.
var ErrRouteUnavailable = errors.New("operation not available")

// Route is the concrete vendor endpoint of an operation.
type Route struct {
	Operation Operation
	Vendor    string
	Method    string
	Path      string
}

type klarnaPaths struct {
	method string
	sp     string
	ap     string
}

// Acquiring-Partner paths take the partner account id.
var klarnaRoutes = map[Operation]klarnaPaths{
	OpPresentation:     {http.MethodGet, "/v2/payment/presentation", "/v2/accounts/%s/payment/presentation"},
	OpPaymentRequest:   {http.MethodPost, "/v2/payment/requests", ""},
	OpAuthorizePayment: {http.MethodPost, "", "/v2/accounts/%s/payment/authorize"},
	OpIdentitySDKToken: {http.MethodPost, "/v2/identity/sdk-tokens", "/v2/accounts/%s/identity/sdk-tokens"},
	OpInteropTestToken: {http.MethodPost, "", "/v2/accounts/%s/interoperability/test-tokens"},
	OpInteropSDKToken:  {http.MethodPost, "", "/v2/accounts/%s/interoperability/sdk-tokens"},
}

var paytrailRoutes = map[Operation]string{
	OpPaytrailPayment:           "/payments",
	OpPaytrailKlarnaCharge:      "/payments/klarna/charge",
	OpPaytrailAuthorizationHold: "/payments/klarna/authorization-hold",
}

// KlarnaRoute resolves op for the given credentials.
func KlarnaRoute(op Operation, auth credentials.AuthConfig) (Route, error) {
	paths, ok := klarnaRoutes[op]
	if !ok {
		return Route{}, fmt.Errorf("%w: unknown Klarna operation %s", ErrRouteUnavailable, op)
	}
	path := paths.sp
	if auth.IsAcquiringPartner {
		path = ""
		if paths.ap != "" {
			path = fmt.Sprintf(paths.ap, url.PathEscape(auth.PartnerAccountID))
		}
	}
	if path == "" {
		return Route{}, fmt.Errorf("%w: %s is not available in %s mode", ErrRouteUnavailable, op, auth.Mode)
	}
	return Route{Operation: op, Vendor: adapter.VendorKlarna, Method: paths.method, Path: path}, nil
}

// SupportsKlarna reports whether op has a route for mode.
func SupportsKlarna(op Operation, mode credentials.Mode) bool {
	paths, ok := klarnaRoutes[op]
	if !ok {
		return false
	}
	if mode == credentials.ModeAcquiringPartner {
		return paths.ap != ""
	}
	return paths.sp != ""
}

// PaytrailRoute resolves a Paytrail operation.
func PaytrailRoute(op Operation) (Route, error) {
	path, ok := paytrailRoutes[op]
	if !ok {
		return Route{}, fmt.Errorf("%w: unknown Paytrail operation %s", ErrRouteUnavailable, op)
	}
	return Route{Operation: op, Vendor: adapter.VendorPaytrail, Method: http.MethodPost, Path: path}, nil
}
