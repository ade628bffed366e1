package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/yourorg/checkout-relay/internal/adapter/klarna"
	"github.com/yourorg/checkout-relay/internal/adapter/paytrail"
	"github.com/yourorg/checkout-relay/internal/audit"
	"github.com/yourorg/checkout-relay/internal/config"
	"github.com/yourorg/checkout-relay/internal/orchestrator"
	"github.com/yourorg/checkout-relay/internal/policy"
	"github.com/yourorg/checkout-relay/internal/processor"
	"github.com/yourorg/checkout-relay/internal/relay"
	"github.com/yourorg/checkout-relay/internal/router"
	"github.com/yourorg/checkout-relay/internal/router/circuitbreaker"
	"github.com/yourorg/checkout-relay/internal/signer"
)

func newLogger(cfg *config.Config) (*logrus.Entry, error) {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	logger.SetLevel(level)
	if strings.EqualFold(cfg.LogFormat, "text") {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return logger.WithField("service", relay.ServiceName), nil
}

// setupTracing installs a stdout exporter when TRACE_STDOUT is set. Otherwise
// the global no-op provider stays in place.
func setupTracing(cfg *config.Config) (func(), error) {
	if !cfg.TraceStdout {
		return func() {}, nil
	}
	exp, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, fmt.Errorf("creating stdout trace exporter: %w", err)
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exp))
	otel.SetTracerProvider(tp)
	return func() { _ = tp.Shutdown(context.Background()) }, nil
}

func buildOrchestrator(cfg *config.Config, log *logrus.Entry) (*orchestrator.Orchestrator, error) {
	proc := processor.NewProcessorFromAdapters(
		klarna.NewKlarnaAdapter(cfg.KlarnaBaseURL, cfg.HTTPTimeout),
		paytrail.NewPaytrailAdapter(cfg.PaytrailBaseURL, cfg.HTTPTimeout, signer.New()),
	)
	cb := circuitbreaker.NewCircuitBreaker(circuitbreaker.Config{
		FailureThreshold: cfg.CircuitFailureThreshold,
		ResetTimeout:     cfg.CircuitOpenTimeout,
	})
	rtr := router.NewRouter(proc, cb)

	pe, err := policy.NewPaymentOptionEnforcer(cfg.PaymentOptionRequiredRule)
	if err != nil {
		return nil, fmt.Errorf("invalid PAYMENT_OPTION_REQUIRED_RULE: %w", err)
	}

	trail := audit.NewTrail()
	if err := audit.AttachLogger(trail, log.WithField("component", "audit")); err != nil {
		return nil, err
	}
	if err := audit.AttachMetrics(trail); err != nil {
		return nil, err
	}

	return orchestrator.NewOrchestrator(rtr, pe, cfg.Resolver(),
		orchestrator.WithCustomerTokens(cfg.CustomerTokens),
		orchestrator.WithAuditTrail(trail),
		orchestrator.WithTimeouts(cfg.HTTPTimeout, cfg.RequestBudget),
	), nil
}

func buildServer(cfg *config.Config, log *logrus.Entry) (*relay.Server, error) {
	orch, err := buildOrchestrator(cfg, log)
	if err != nil {
		return nil, err
	}
	return relay.NewServer(orch, log.WithField("component", "relay"))
}
