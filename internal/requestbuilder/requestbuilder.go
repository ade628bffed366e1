// Package requestbuilder assembles the vendor-1 payment request body from the
// internal purchase model.
package requestbuilder

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/xid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/yourorg/checkout-relay/internal/model"
	"github.com/yourorg/checkout-relay/internal/transform"
)

// ErrMissingData is returned when no payment request data was supplied.
var ErrMissingData = errors.New("paymentRequestData is required")

// Input is everything the builder needs for one payment request.
type Input struct {
	Data *model.PaymentRequestData
	// PaymentOptionID is the resolved id; empty means the field is omitted.
	PaymentOptionID string
	ReturnURL       string
}

// Builder constructs vendor payment requests.
type Builder struct {
	newReference func() string
}

// Option customises a Builder.
type Option func(*Builder)

// WithReferenceGenerator overrides the default reference generator.
func WithReferenceGenerator(fn func() string) Option {
	return func(b *Builder) {
		if fn != nil {
			b.newReference = fn
		}
	}
}

// NewBuilder creates a Builder that generates "ref_<xid>" references.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		newReference: func() string { return "ref_" + xid.New().String() },
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// ResolvePaymentOptionID prefers the direct parameter and falls back to the
// id embedded in the payment request data.
func ResolvePaymentOptionID(direct string, data *model.PaymentRequestData) string {
	if id := strings.TrimSpace(direct); id != "" {
		return id
	}
	if data != nil {
		return strings.TrimSpace(data.PaymentOptionID)
	}
	return ""
}

// Build returns the wire request. The input data is never modified.
func (b *Builder) Build(ctx context.Context, in Input) (*transform.PaymentRequest, error) {
	_, span := otel.Tracer("requestbuilder").Start(ctx, "Builder.Build")
	defer span.End()

	start := time.Now()
	defer func() { buildDurationSeconds.Observe(time.Since(start).Seconds()) }()

	if in.Data == nil {
		buildsTotal.WithLabelValues("invalid").Inc()
		return nil, ErrMissingData
	}
	data := in.Data

	ref := data.PaymentRequestReference
	if ref == "" {
		ref = b.newReference()
	}

	req := &transform.PaymentRequest{
		Currency:                data.Currency,
		PaymentRequestReference: ref,
		PaymentOptionID:         in.PaymentOptionID,
		CustomerInteractionConfig: transform.CustomerInteractionConfig{
			Method:    transform.InteractionMethodHandover,
			ReturnURL: in.ReturnURL,
		},
		SupplementaryPurchaseData: transform.ToWireFormat(data.SupplementaryPurchaseData),
		RequestCustomerToken:      transform.CustomerTokenToWire(data.RequestCustomerToken, data.Intents),
	}

	walletOnly := data.Intents.WalletOnly()
	if !walletOnly && data.Amount != nil {
		amount := *data.Amount
		req.Amount = &amount
	}

	span.SetAttributes(
		attribute.Bool("wallet_only", walletOnly),
		attribute.Int("intents", len(data.Intents)),
		attribute.Bool("customer_token", req.RequestCustomerToken != nil),
	)
	buildsTotal.WithLabelValues("ok").Inc()
	return req, nil
}
