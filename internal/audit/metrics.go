package audit

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	vendorRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "relay_vendor_requests_total",
		Help: "Outbound vendor calls by vendor, operation and response status.",
	}, []string{"vendor", "operation", "status"})

	vendorRequestDurationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "relay_vendor_request_duration_seconds",
		Help:    "Latency of outbound vendor calls.",
		Buckets: prometheus.DefBuckets,
	}, []string{"vendor", "operation"})

	outcomesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "relay_outcomes_total",
		Help: "Relay outcomes returned to callers by operation and status.",
	}, []string{"operation", "status"})
)

// GetVendorRequestsTotal exposes the vendor call counter for tests.
func GetVendorRequestsTotal() *prometheus.CounterVec { return vendorRequestsTotal }

// GetVendorRequestDurationSeconds exposes the vendor latency histogram for tests.
func GetVendorRequestDurationSeconds() *prometheus.HistogramVec { return vendorRequestDurationSeconds }

// GetOutcomesTotal exposes the outcome counter for tests.
func GetOutcomesTotal() *prometheus.CounterVec { return outcomesTotal }

// AttachMetrics feeds the prometheus collectors from the trail.
func AttachMetrics(t *Trail) error {
	if err := t.OnExchange(func(e VendorExchange) {
		vendorRequestsTotal.WithLabelValues(e.Vendor, e.Operation, e.StatusLabel()).Inc()
		if !e.CircuitOpen {
			vendorRequestDurationSeconds.WithLabelValues(e.Vendor, e.Operation).Observe(float64(e.LatencyMs) / 1000)
		}
	}); err != nil {
		return err
	}
	return t.OnOutcome(func(e OutcomeEvent) {
		outcomesTotal.WithLabelValues(e.Operation, e.Status).Inc()
	})
}
