package relay

import (
	"context"
	"errors"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/yourorg/checkout-relay/internal/credentials"
	"github.com/yourorg/checkout-relay/internal/orchestrator"
	"github.com/yourorg/checkout-relay/internal/router"
)

func (s *Server) respondResult(c *gin.Context, res *orchestrator.Result) {
	body := outcomeBody(res.Outcome)
	withExchange(body, res.Exchange)
	c.JSON(res.Outcome.HTTPStatus(), body)
}

func (s *Server) respondError(c *gin.Context, err error) {
	status, body := errorBody(err)
	if status >= http.StatusInternalServerError {
		s.log.WithFields(logrus.Fields{
			"trace_id": c.GetString(traceIDKey),
			"status":   status,
		}).WithError(err).Error("relay call failed")
		report(c, err)
	}
	c.JSON(status, body)
}

func report(c *gin.Context, err error) {
	hub := sentry.CurrentHub().Clone()
	hub.Scope().SetTag("trace_id", c.GetString(traceIDKey))
	hub.Scope().SetTag("route", c.FullPath())
	hub.CaptureException(err)
}

// errorBody maps the error taxonomy onto HTTP statuses.
func errorBody(err error) (int, gin.H) {
	body := gin.H{"status": orchestrator.StatusError, "error": err.Error()}

	var verr *orchestrator.ValidationError
	var cerr *credentials.ConfigurationError
	var vendorErr *orchestrator.VendorError
	switch {
	case errors.As(err, &verr):
		if verr.Field != "" {
			body["field"] = verr.Field
		}
		if len(verr.Details) > 0 {
			body["details"] = verr.Details
		}
		return http.StatusBadRequest, body
	case errors.As(err, &cerr):
		return http.StatusInternalServerError, body
	case errors.As(err, &vendorErr):
		body["error"] = vendorErr.Message
		body["vendor"] = vendorErr.Vendor
		if len(vendorErr.Details) > 0 {
			body["details"] = vendorErr.Details
		}
		withExchange(body, vendorErr.Exchange)
		status := vendorErr.StatusCode
		if status < 400 || status > 599 {
			status = http.StatusBadGateway
		}
		return status, body
	case errors.Is(err, router.ErrCircuitOpen):
		return http.StatusServiceUnavailable, body
	case errors.Is(err, orchestrator.ErrBudgetExhausted), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, body
	default:
		return http.StatusBadGateway, body
	}
}

func outcomeBody(o orchestrator.Outcome) gin.H {
	h := gin.H{"status": o.Status()}
	switch v := o.(type) {
	case orchestrator.Created:
		put(h, "paymentRequestId", v.PaymentRequestID)
		put(h, "paymentRequestUrl", v.PaymentRequestURL)
		put(h, "expiresAt", v.ExpiresAt)
		put(h, "transactionId", v.TransactionID)
		put(h, "href", v.Href)
		if v.Redirect != nil {
			h["redirect"] = v.Redirect
		}
		if v.Providers != nil {
			h["providers"] = v.Providers
		}
	case orchestrator.Completed:
		put(h, "paymentRequestId", v.PaymentRequestID)
		put(h, "successUrl", v.SuccessURL)
		put(h, "expiresAt", v.ExpiresAt)
	case orchestrator.StepUpRequired:
		put(h, "paymentRequestId", v.PaymentRequestID)
		put(h, "paymentRequestUrl", v.PaymentRequestURL)
		put(h, "expiresAt", v.ExpiresAt)
		put(h, "transactionId", v.TransactionID)
	case orchestrator.Approved:
		put(h, "transactionId", v.TransactionID)
		put(h, "customerTokenId", v.CustomerTokenID)
		put(h, "successUrl", v.SuccessURL)
	case orchestrator.Declined:
		put(h, "reason", v.Reason)
	case orchestrator.Errored:
		h["error"] = v.Message
		if v.StatusCode != 0 {
			h["vendorStatus"] = v.StatusCode
		}
		if len(v.Details) > 0 {
			h["details"] = v.Details
		}
	}
	return h
}

func withExchange(h gin.H, ex orchestrator.Exchange) {
	if ex.Request != nil {
		h["_request"] = ex.Request
	}
	if ex.Response != nil {
		h["_response"] = ex.Response
	}
}

func put(h gin.H, key, value string) {
	if value != "" {
		h[key] = value
	}
}
