package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/yourorg/checkout-relay/internal/adapter"
	"github.com/yourorg/checkout-relay/internal/adapter/klarna"
	"github.com/yourorg/checkout-relay/internal/model"
	"github.com/yourorg/checkout-relay/internal/policy"
	"github.com/yourorg/checkout-relay/internal/requestbuilder"
	"github.com/yourorg/checkout-relay/internal/router"
	"github.com/yourorg/checkout-relay/internal/session"
	"github.com/yourorg/checkout-relay/internal/token"
)

// PaymentInput is the caller's input for a payment request or authorization.
type PaymentInput struct {
	TraceID  string
	AuthMode string
	Data     *model.PaymentRequestData
	// PaymentOptionID takes precedence over Data.PaymentOptionID.
	PaymentOptionID     string
	NetworkSessionToken *token.SingleUse
	ReturnURL           string
	Country             string
	UseCustomerToken    bool
}

// CreatePaymentRequest runs the Sub-Partner payment request flow.
func (o *Orchestrator) CreatePaymentRequest(ctx context.Context, in PaymentInput) (*Result, error) {
	return o.runPayment(ctx, router.OpPaymentRequest, in)
}

// AuthorizePayment runs the Acquiring-Partner authorization flow.
func (o *Orchestrator) AuthorizePayment(ctx context.Context, in PaymentInput) (*Result, error) {
	return o.runPayment(ctx, router.OpAuthorizePayment, in)
}

func (o *Orchestrator) runPayment(ctx context.Context, op router.Operation, in PaymentInput) (*Result, error) {
	ctx, span := otel.Tracer("orchestrator").Start(ctx, "Orchestrator."+string(op))
	defer span.End()

	if in.Data == nil {
		return nil, missing("paymentRequestData")
	}
	if err := checkCustomerTokenScopes(in.Data); err != nil {
		return nil, err
	}

	auth, err := o.resolver.Resolve(in.AuthMode)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("auth_mode", string(auth.Mode)))

	route, err := klarnaRoute(op, auth)
	if err != nil {
		return nil, err
	}

	optionID := requestbuilder.ResolvePaymentOptionID(in.PaymentOptionID, in.Data)
	decision, err := o.policyEnforcer.Evaluate(policy.Facts{
		Operation:              string(op),
		AuthMode:               string(auth.Mode),
		WalletOnly:             in.Data.Intents.WalletOnly(),
		IntentsCount:           len(in.Data.Intents.Unique()),
		HasNetworkSessionToken: in.NetworkSessionToken.Present(),
	})
	if err != nil {
		return nil, fmt.Errorf("evaluating payment policy: %w", err)
	}
	if decision.RequirePaymentOptionID && optionID == "" {
		return nil, &ValidationError{
			Field:   "paymentOptionId",
			Message: "paymentOptionId is required (pass it directly or inside paymentRequestData)",
		}
	}

	c := o.checkout(in.TraceID, auth)
	c.Country = in.Country
	c.NetworkSessionToken = in.NetworkSessionToken
	c.CustomerToken = o.customerToken(in.UseCustomerToken, in.Country)

	wire, err := o.builder.Build(ctx, requestbuilder.Input{
		Data:            in.Data,
		PaymentOptionID: optionID,
		ReturnURL:       in.ReturnURL,
	})
	if err != nil {
		return nil, &ValidationError{Field: "paymentRequestData", Message: err.Error()}
	}
	body, err := json.Marshal(wire)
	if err != nil {
		return nil, fmt.Errorf("encoding payment request: %w", err)
	}

	headers, err := paymentHeaders(c)
	if err != nil {
		return nil, err
	}

	res, err := o.execute(ctx, c, route, adapter.Request{Headers: headers, Body: body}, klarnaCredentials(auth))
	if err != nil {
		return nil, err
	}

	var outcome Outcome
	if op == router.OpAuthorizePayment {
		outcome = interpretAuthorization(res, in)
	} else {
		outcome = interpretPaymentRequest(res, in.ReturnURL)
	}
	span.SetAttributes(attribute.String("outcome", outcome.Status()))
	o.finish(c, op, outcome.Status(), outcome.HTTPStatus())
	return &Result{Outcome: outcome, Exchange: exchangeOf(res)}, nil
}

// checkCustomerTokenScopes accepts caller scopes only when they name exactly the
// scope the intents imply.
func checkCustomerTokenScopes(data *model.PaymentRequestData) error {
	req := data.RequestCustomerToken
	if req == nil || len(req.Scopes) == 0 {
		return nil
	}
	want := data.Intents.CustomerTokenScope()
	if len(req.Scopes) == 1 && req.Scopes[0] == want {
		return nil
	}
	return &ValidationError{
		Field:   "requestCustomerToken.scopes",
		Message: "requestCustomerToken.scopes must be exactly [" + want + "] for intents " + strings.Join(data.Intents.Strings(), ","),
	}
}

func paymentHeaders(c *session.Checkout) (map[string]string, error) {
	headers := map[string]string{}
	if c.NetworkSessionToken.Present() {
		v, err := c.NetworkSessionToken.Consume()
		if err != nil {
			if errors.Is(err, token.ErrConsumed) {
				return nil, &ValidationError{Field: "klarnaNetworkSessionToken", Message: "klarnaNetworkSessionToken was already used"}
			}
			return nil, err
		}
		headers[klarna.HeaderNetworkSessionToken] = v
	}
	if c.CustomerToken != "" {
		headers[klarna.HeaderCustomerToken] = c.CustomerToken
	}
	return headers, nil
}

func interpretPaymentRequest(res adapter.ProviderResult, returnURL string) Outcome {
	if !res.Success() {
		return klarnaErrored(res.HTTPStatus, res.RawResponse)
	}
	var pr paymentRequestResponse
	if err := json.Unmarshal(res.RawResponse, &pr); err != nil {
		return Errored{Message: "unreadable Klarna response: " + err.Error(), StatusCode: http.StatusBadGateway}
	}

	if pr.State == "COMPLETED" {
		successURL := returnURL
		if cfg := pr.CustomerInteractionConfig; cfg != nil && cfg.ReturnURL != "" {
			successURL = cfg.ReturnURL
		}
		return Completed{PaymentRequestID: pr.id(), SuccessURL: successURL, ExpiresAt: pr.ExpiresAt}
	}
	return Created{PaymentRequestID: pr.id(), PaymentRequestURL: pr.url(), ExpiresAt: pr.ExpiresAt}
}

func interpretAuthorization(res adapter.ProviderResult, in PaymentInput) Outcome {
	if !res.Success() {
		return klarnaErrored(res.HTTPStatus, res.RawResponse)
	}
	var ar authorizeResponse
	if err := json.Unmarshal(res.RawResponse, &ar); err != nil {
		return Errored{Message: "unreadable Klarna response: " + err.Error(), StatusCode: http.StatusBadGateway}
	}

	block := ar.PaymentTransactionResponse
	if in.Data.Intents.WalletOnly() {
		block = ar.CustomerTokenResponse
	}
	if block == nil {
		return Errored{Message: "Klarna response carried no result", StatusCode: http.StatusBadGateway}
	}

	switch block.Result {
	case "STEP_UP_REQUIRED":
		pr := ar.PaymentRequest
		if pr == nil {
			pr = block.PaymentRequest
		}
		if pr == nil {
			return Errored{Message: "step-up required but no payment request was returned", StatusCode: http.StatusBadGateway}
		}
		return StepUpRequired{PaymentRequestID: pr.id(), PaymentRequestURL: pr.url(), ExpiresAt: pr.ExpiresAt}
	case "APPROVED":
		approved := Approved{SuccessURL: in.ReturnURL}
		if tx := block.PaymentTransaction; tx != nil {
			approved.TransactionID = tx.PaymentTransactionID
		}
		if ct := ar.CustomerTokenResponse; ct != nil && ct.CustomerToken != nil {
			approved.CustomerTokenID = ct.CustomerToken.CustomerTokenID
		}
		return approved
	case "DECLINED":
		return Declined{Reason: block.ResultReason}
	default:
		msg := "unexpected Klarna result " + block.Result
		if block.Result == "" {
			msg = "Klarna response carried no result"
		}
		return Errored{Message: msg, StatusCode: http.StatusBadGateway}
	}
}
