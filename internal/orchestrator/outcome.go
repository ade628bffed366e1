package orchestrator

import (
	"encoding/json"
	"net/http"

	"github.com/yourorg/checkout-relay/internal/adapter"
	"github.com/yourorg/checkout-relay/internal/token"
)

// Outcome statuses as seen by callers.
const (
	StatusCreated        = "CREATED"
	StatusCompleted      = "COMPLETED"
	StatusStepUpRequired = "STEP_UP_REQUIRED"
	StatusApproved       = "APPROVED"
	StatusDeclined       = "DECLINED"
	StatusError          = "ERROR"
	StatusOK             = "OK"
)

// Outcome is exactly one of the variants below.
type Outcome interface {
	Status() string
	HTTPStatus() int
	isOutcome()
}

// Created means the vendor accepted the request and the customer must be
// handed over to PaymentRequestURL or to the Redirect.
type Created struct {
	PaymentRequestID  string
	PaymentRequestURL string
	ExpiresAt         string

	// Set by Paytrail payment creation.
	TransactionID string
	Href          string
	Redirect      *Redirect
	Providers     []Provider
}

// Completed means no further customer interaction is needed.
type Completed struct {
	PaymentRequestID string
	SuccessURL       string
	ExpiresAt        string
}

// StepUpRequired means the customer must complete an extra interaction.
type StepUpRequired struct {
	PaymentRequestID  string
	PaymentRequestURL string
	ExpiresAt         string
	TransactionID     string
}

// Approved carries either a transaction or a customer token, or both.
type Approved struct {
	TransactionID   string
	CustomerTokenID string
	SuccessURL      string
}

// Declined carries the vendor's reason verbatim.
type Declined struct {
	Reason string
}

// Errored is a vendor-side failure. StatusCode is the vendor status when one
// was received.
type Errored struct {
	Message    string
	StatusCode int
	Details    json.RawMessage
}

func (Created) Status() string        { return StatusCreated }
func (Completed) Status() string      { return StatusCompleted }
func (StepUpRequired) Status() string { return StatusStepUpRequired }
func (Approved) Status() string       { return StatusApproved }
func (Declined) Status() string       { return StatusDeclined }
func (Errored) Status() string        { return StatusError }

func (Created) HTTPStatus() int        { return http.StatusOK }
func (Completed) HTTPStatus() int      { return http.StatusOK }
func (StepUpRequired) HTTPStatus() int { return http.StatusOK }
func (Approved) HTTPStatus() int       { return http.StatusOK }
func (Declined) HTTPStatus() int       { return http.StatusOK }

// HTTPStatus passes vendor client and server errors through; anything else
// becomes 502.
func (e Errored) HTTPStatus() int {
	if e.StatusCode >= 400 && e.StatusCode <= 599 {
		return e.StatusCode
	}
	return http.StatusBadGateway
}

func (Created) isOutcome()        {}
func (Completed) isOutcome()      {}
func (StepUpRequired) isOutcome() {}
func (Approved) isOutcome()       {}
func (Declined) isOutcome()       {}
func (Errored) isOutcome()        {}

// Redirect is a form the customer's browser submits to reach the provider.
type Redirect struct {
	URL        string          `json:"url"`
	Method     string          `json:"method"`
	Parameters []FormParameter `json:"parameters"`
}

// FormParameter is one hidden form field.
type FormParameter struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Provider is one Paytrail payment method.
type Provider struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Group      string          `json:"group,omitempty"`
	URL        string          `json:"url"`
	Icon       string          `json:"icon,omitempty"`
	Parameters []FormParameter `json:"parameters"`
}

// Exchange is the audit metadata of the last vendor call.
type Exchange struct {
	Request  *adapter.RequestMetadata
	Response *adapter.ResponseMetadata
}

// Result is the outcome of a payment flow plus its audit metadata.
type Result struct {
	Outcome Outcome
	Exchange
}

// TokenResult is the outcome of a token exchange. SDKToken is handed to the
// caller exactly once.
type TokenResult struct {
	SDKToken              *token.SingleUse
	ExpiresAt             string
	InteroperabilityToken string
	Exchange
}

// PresentationResult carries the vendor's presentation document unchanged.
type PresentationResult struct {
	Presentation json.RawMessage
	Exchange
}
