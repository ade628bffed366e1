package orchestrator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/yourorg/checkout-relay/internal/adapter"
	"github.com/yourorg/checkout-relay/internal/credentials"
	"github.com/yourorg/checkout-relay/internal/router"
	"github.com/yourorg/checkout-relay/internal/session"
	"github.com/yourorg/checkout-relay/internal/token"
)

// PaytrailInput is a payment forwarded to Paytrail. The merchant secret is
// used for signing only and never appears in audit metadata.
type PaytrailInput struct {
	TraceID             string
	MerchantID          string
	SecretKey           string
	Payment             json.RawMessage
	NetworkSessionToken *token.SingleUse
}

type paytrailProvider struct {
	URL        string          `json:"url"`
	Icon       string          `json:"icon"`
	Name       string          `json:"name"`
	Group      string          `json:"group"`
	ID         string          `json:"id"`
	Parameters []FormParameter `json:"parameters"`
}

type paytrailResponse struct {
	TransactionID   string             `json:"transactionId"`
	Href            string             `json:"href"`
	Reference       string             `json:"reference"`
	Providers       []paytrailProvider `json:"providers"`
	ThreeDSecureURL string             `json:"threeDSecureUrl"`
	Status          string             `json:"status"`
	Message         string             `json:"message"`
	Meta            json.RawMessage    `json:"meta"`
}

// PaytrailPayment creates a payment and returns the provider redirect.
func (o *Orchestrator) PaytrailPayment(ctx context.Context, in PaytrailInput) (*Result, error) {
	return o.runPaytrail(ctx, router.OpPaytrailPayment, in)
}

// PaytrailKlarnaCharge charges a Klarna payment with the network session token.
func (o *Orchestrator) PaytrailKlarnaCharge(ctx context.Context, in PaytrailInput) (*Result, error) {
	return o.runPaytrail(ctx, router.OpPaytrailKlarnaCharge, in)
}

// PaytrailAuthorizationHold places an authorization hold with the network
// session token.
func (o *Orchestrator) PaytrailAuthorizationHold(ctx context.Context, in PaytrailInput) (*Result, error) {
	return o.runPaytrail(ctx, router.OpPaytrailAuthorizationHold, in)
}

func (o *Orchestrator) runPaytrail(ctx context.Context, op router.Operation, in PaytrailInput) (*Result, error) {
	ctx, span := otel.Tracer("orchestrator").Start(ctx, "Orchestrator."+string(op))
	defer span.End()

	if strings.TrimSpace(in.MerchantID) == "" {
		return nil, missing("merchantId")
	}
	if in.SecretKey == "" {
		return nil, missing("secretKey")
	}
	payment, err := decodePayment(in.Payment)
	if err != nil {
		return nil, err
	}

	if op != router.OpPaytrailPayment {
		if err := injectToken(payment, in.NetworkSessionToken); err != nil {
			return nil, err
		}
	}
	body, err := json.Marshal(payment)
	if err != nil {
		return nil, fmt.Errorf("encoding paytrail payment: %w", err)
	}

	route, err := router.PaytrailRoute(op)
	if err != nil {
		return nil, err
	}
	c := o.checkout(in.TraceID, credentials.AuthConfig{})
	c.NetworkSessionToken = in.NetworkSessionToken
	res, err := o.execute(ctx, c, route, adapter.Request{Body: body}, session.Credentials{
		Account: in.MerchantID,
		Secret:  in.SecretKey,
	})
	if err != nil {
		return nil, err
	}

	outcome := interpretPaytrail(op, res)
	span.SetAttributes(attribute.String("outcome", outcome.Status()))
	o.finish(c, op, outcome.Status(), outcome.HTTPStatus())
	return &Result{Outcome: outcome, Exchange: exchangeOf(res)}, nil
}

func decodePayment(raw json.RawMessage) (map[string]interface{}, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, missing("payment")
	}
	var payment map[string]interface{}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	if err := dec.Decode(&payment); err != nil {
		return nil, &ValidationError{Field: "payment", Message: "payment must be a JSON object"}
	}
	return payment, nil
}

// injectToken sets payment.token from the network session token unless the
// payment already carries one.
func injectToken(payment map[string]interface{}, tok *token.SingleUse) error {
	if existing, ok := payment["token"].(string); ok && existing != "" {
		return nil
	}
	value, err := tok.Consume()
	switch {
	case errors.Is(err, token.ErrConsumed):
		return &ValidationError{Field: "klarnaNetworkSessionToken", Message: "klarnaNetworkSessionToken was already used"}
	case err != nil:
		return &ValidationError{Field: "klarnaNetworkSessionToken", Message: "klarnaNetworkSessionToken or payment.token is required"}
	}
	payment["token"] = value
	return nil
}

func interpretPaytrail(op router.Operation, res adapter.ProviderResult) Outcome {
	if res.Signature == adapter.SignatureInvalid {
		return Errored{Message: "Paytrail response signature verification failed", StatusCode: http.StatusBadGateway}
	}

	var pr paytrailResponse
	_ = json.Unmarshal(res.RawResponse, &pr)

	if !res.Success() {
		if res.HTTPStatus == http.StatusForbidden && pr.ThreeDSecureURL != "" {
			return StepUpRequired{TransactionID: pr.TransactionID, PaymentRequestURL: pr.ThreeDSecureURL}
		}
		msg := pr.Message
		if msg == "" {
			msg = fmt.Sprintf("Paytrail request failed with status %d", res.HTTPStatus)
		}
		return Errored{Message: msg, StatusCode: res.HTTPStatus, Details: pr.Meta}
	}

	if op != router.OpPaytrailPayment {
		return Approved{TransactionID: pr.TransactionID}
	}

	created := Created{
		TransactionID: pr.TransactionID,
		Href:          pr.Href,
		Providers:     make([]Provider, 0, len(pr.Providers)),
	}
	for _, p := range pr.Providers {
		created.Providers = append(created.Providers, Provider{
			ID: p.ID, Name: p.Name, Group: p.Group, URL: p.URL, Icon: p.Icon, Parameters: p.Parameters,
		})
	}
	if chosen := pickProvider(pr.Providers); chosen != nil {
		created.Redirect = &Redirect{URL: chosen.URL, Method: http.MethodPost, Parameters: chosen.Parameters}
		created.PaymentRequestURL = chosen.URL
	}
	return created
}

// pickProvider prefers Klarna and falls back to the first provider.
func pickProvider(providers []paytrailProvider) *paytrailProvider {
	for i := range providers {
		if strings.EqualFold(providers[i].ID, "klarna") || strings.EqualFold(providers[i].Name, "klarna") {
			return &providers[i]
		}
	}
	if len(providers) > 0 {
		return &providers[0]
	}
	return nil
}
