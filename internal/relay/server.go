// Package relay exposes the orchestrator as JSON endpoints for the checkout UI.
package relay

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/yourorg/checkout-relay/internal/monitor"
	"github.com/yourorg/checkout-relay/internal/orchestrator"
)

// ServiceName is reported by otelgin and the health endpoint.
const ServiceName = "checkout-relay"

// Server routes relay calls to the orchestrator.
type Server struct {
	orch     *orchestrator.Orchestrator
	log      *logrus.Entry
	monitors map[string]*monitor.ContractMonitor
	engine   *gin.Engine
}

// NewServer builds the gin engine and loads the embedded body contracts.
func NewServer(orch *orchestrator.Orchestrator, log *logrus.Entry) (*Server, error) {
	if orch == nil {
		panic("Orchestrator cannot be nil")
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	s := &Server{orch: orch, log: log, monitors: map[string]*monitor.ContractMonitor{}}
	for _, name := range []string{
		monitor.SchemaPaymentRequest,
		monitor.SchemaPaytrailPayment,
		monitor.SchemaInteroperabilityTestToken,
	} {
		cm, err := monitor.NewEmbeddedContractMonitor(name)
		if err != nil {
			return nil, fmt.Errorf("loading contract %s: %w", name, err)
		}
		s.monitors[name] = cm
	}
	registerJSONFieldNames()
	s.engine = s.routes()
	return s, nil
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(otelgin.Middleware(ServiceName), traceID(), requestLogger(s.log), gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "vendors": s.orch.VendorStates()})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.GET("/config", s.handleConfig)
	api.GET("/presentation", s.handlePresentation)
	api.POST("/identity/sdk-tokens", s.handleIdentitySDKToken)
	api.POST("/interoperability/test-tokens", s.handleInteropTestToken)
	api.POST("/interoperability/sdk-tokens", s.handleInteropSDKToken)
	api.POST("/payment-request", s.handlePaymentRequest)
	api.POST("/authorize-payment", s.handleAuthorizePayment)
	api.POST("/payments", s.handlePaytrailPayment)
	api.POST("/payments/klarna/charge", s.handlePaytrailCharge)
	api.POST("/payments/klarna/authorization-hold", s.handlePaytrailHold)
	return r
}

// Handler returns the HTTP handler of the relay.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("relay listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.log.Info("relay shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}
