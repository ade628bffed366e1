package orchestrator

import (
	"encoding/json"
	"fmt"
)

type klarnaError struct {
	ErrorID          string          `json:"error_id"`
	ErrorType        string          `json:"error_type"`
	ErrorCode        string          `json:"error_code"`
	ErrorMessage     string          `json:"error_message"`
	ValidationErrors json.RawMessage `json:"validation_errors"`
}

type customerInteraction struct {
	PaymentRequestID  string `json:"payment_request_id"`
	PaymentRequestURL string `json:"payment_request_url"`
}

type stateContext struct {
	CustomerInteraction *customerInteraction `json:"customer_interaction"`
}

type paymentRequestResponse struct {
	PaymentRequestID          string       `json:"payment_request_id"`
	State                     string       `json:"state"`
	StateContext              stateContext `json:"state_context"`
	ExpiresAt                 string       `json:"expires_at"`
	CustomerInteractionConfig *struct {
		ReturnURL string `json:"return_url"`
	} `json:"customer_interaction_config"`
}

func (p *paymentRequestResponse) id() string {
	if ci := p.StateContext.CustomerInteraction; ci != nil && ci.PaymentRequestID != "" {
		return ci.PaymentRequestID
	}
	return p.PaymentRequestID
}

func (p *paymentRequestResponse) url() string {
	if ci := p.StateContext.CustomerInteraction; ci != nil {
		return ci.PaymentRequestURL
	}
	return ""
}

type resultBlock struct {
	Result             string `json:"result"`
	ResultReason       string `json:"result_reason"`
	PaymentTransaction *struct {
		PaymentTransactionID string `json:"payment_transaction_id"`
	} `json:"payment_transaction"`
	CustomerToken *struct {
		CustomerTokenID string `json:"customer_token_id"`
	} `json:"customer_token"`
	PaymentRequest *paymentRequestResponse `json:"payment_request"`
}

type authorizeResponse struct {
	PaymentTransactionResponse *resultBlock            `json:"payment_transaction_response"`
	CustomerTokenResponse      *resultBlock            `json:"customer_token_response"`
	PaymentRequest             *paymentRequestResponse `json:"payment_request"`
}

type sdkTokenResponse struct {
	SDKToken  string `json:"sdk_token"`
	ExpiresAt string `json:"expires_at"`
}

type interoperabilityTokenResponse struct {
	InteroperabilityToken string `json:"interoperability_token"`
}

// klarnaErrored builds the Errored outcome for a non-2xx answer.
func klarnaErrored(status int, body []byte) Errored {
	var kerr klarnaError
	_ = json.Unmarshal(body, &kerr)
	msg := kerr.ErrorMessage
	if msg == "" {
		msg = fmt.Sprintf("Klarna request failed with status %d", status)
	}
	var details json.RawMessage
	if len(kerr.ValidationErrors) > 0 && string(kerr.ValidationErrors) != "null" {
		details = kerr.ValidationErrors
	}
	return Errored{Message: msg, StatusCode: status, Details: details}
}
