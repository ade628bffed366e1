package relay

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourorg/checkout-relay/internal/monitor"
	"github.com/yourorg/checkout-relay/internal/orchestrator"
	"github.com/yourorg/checkout-relay/internal/token"
)

func (s *Server) handleConfig(c *gin.Context) {
	c.JSON(http.StatusOK, s.orch.Config())
}

func (s *Server) handlePresentation(c *gin.Context) {
	query := c.Request.URL.Query()
	authMode := query.Get("authMode")
	query.Del("authMode")

	res, err := s.orch.Presentation(c.Request.Context(), orchestrator.PresentationInput{
		TraceID:  c.GetString(traceIDKey),
		AuthMode: authMode,
		Query:    query,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	body := gin.H{"status": orchestrator.StatusOK, "presentation": res.Presentation}
	withExchange(body, res.Exchange)
	c.JSON(http.StatusOK, body)
}

func (s *Server) handleIdentitySDKToken(c *gin.Context) {
	var req identityTokenBody
	if err := s.bind(c, "", &req); err != nil {
		s.respondError(c, err)
		return
	}
	res, err := s.orch.IdentitySDKToken(c.Request.Context(), orchestrator.IdentityTokenInput{
		TraceID:  c.GetString(traceIDKey),
		AuthMode: req.AuthMode,
		Country:  req.Country,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.respondToken(c, res)
}

func (s *Server) handleInteropTestToken(c *gin.Context) {
	var req interopTestTokenBody
	if err := s.bind(c, monitor.SchemaInteroperabilityTestToken, &req); err != nil {
		s.respondError(c, err)
		return
	}
	res, err := s.orch.InteroperabilityTestToken(c.Request.Context(), orchestrator.InteropTestTokenInput{
		TraceID:         c.GetString(traceIDKey),
		AuthMode:        req.AuthMode,
		CustomerJourney: req.CustomerJourney,
		Country:         req.Country,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.respondToken(c, res)
}

func (s *Server) handleInteropSDKToken(c *gin.Context) {
	var req interopSDKTokenBody
	if err := s.bind(c, "", &req); err != nil {
		s.respondError(c, err)
		return
	}
	res, err := s.orch.InteroperabilitySDKToken(c.Request.Context(), orchestrator.InteropSDKTokenInput{
		TraceID:               c.GetString(traceIDKey),
		AuthMode:              req.AuthMode,
		InteroperabilityToken: token.New(token.KindInteroperability, req.InteroperabilityToken),
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.respondToken(c, res)
}

func (s *Server) respondToken(c *gin.Context, res *orchestrator.TokenResult) {
	body := gin.H{"status": orchestrator.StatusOK}
	if res.SDKToken.Present() {
		sdk, err := res.SDKToken.Consume()
		if err != nil {
			s.respondError(c, err)
			return
		}
		put(body, "sdkToken", sdk)
	}
	put(body, "expiresAt", res.ExpiresAt)
	put(body, "interoperabilityToken", res.InteroperabilityToken)
	withExchange(body, res.Exchange)
	c.JSON(http.StatusOK, body)
}

func (s *Server) handlePaymentRequest(c *gin.Context) {
	s.handlePayment(c, s.orch.CreatePaymentRequest)
}

func (s *Server) handleAuthorizePayment(c *gin.Context) {
	s.handlePayment(c, s.orch.AuthorizePayment)
}

type paymentFlow func(ctx context.Context, in orchestrator.PaymentInput) (*orchestrator.Result, error)

func (s *Server) handlePayment(c *gin.Context, run paymentFlow) {
	var req paymentBody
	if err := s.bind(c, monitor.SchemaPaymentRequest, &req); err != nil {
		s.respondError(c, err)
		return
	}
	res, err := run(c.Request.Context(), orchestrator.PaymentInput{
		TraceID:             c.GetString(traceIDKey),
		AuthMode:            req.AuthMode,
		Data:                req.PaymentRequestData,
		PaymentOptionID:     req.PaymentOptionID,
		NetworkSessionToken: token.New(token.KindNetworkSession, req.KlarnaNetworkSessionToken),
		ReturnURL:           req.ReturnURL,
		Country:             req.Country,
		UseCustomerToken:    req.UseCustomerToken,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.respondResult(c, res)
}

func (s *Server) handlePaytrailPayment(c *gin.Context) {
	s.handlePaytrail(c, s.orch.PaytrailPayment)
}

func (s *Server) handlePaytrailCharge(c *gin.Context) {
	s.handlePaytrail(c, s.orch.PaytrailKlarnaCharge)
}

func (s *Server) handlePaytrailHold(c *gin.Context) {
	s.handlePaytrail(c, s.orch.PaytrailAuthorizationHold)
}

type paytrailFlow func(ctx context.Context, in orchestrator.PaytrailInput) (*orchestrator.Result, error)

func (s *Server) handlePaytrail(c *gin.Context, run paytrailFlow) {
	var req paytrailBody
	if err := s.bind(c, monitor.SchemaPaytrailPayment, &req); err != nil {
		s.respondError(c, err)
		return
	}
	res, err := run(c.Request.Context(), orchestrator.PaytrailInput{
		TraceID:             c.GetString(traceIDKey),
		MerchantID:          req.MerchantID,
		SecretKey:           req.SecretKey,
		Payment:             req.Payment,
		NetworkSessionToken: token.New(token.KindNetworkSession, req.KlarnaNetworkSessionToken),
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.respondResult(c, res)
}
