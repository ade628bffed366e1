package audit

import (
	"github.com/sirupsen/logrus"
)

// AttachLogger logs every event at info level, or warn for failures.
func AttachLogger(t *Trail, log *logrus.Entry) error {
	if err := t.OnExchange(func(e VendorExchange) {
		entry := log.WithFields(logrus.Fields{
			"trace_id":   e.TraceID,
			"vendor":     e.Vendor,
			"operation":  e.Operation,
			"auth_mode":  e.AuthMode,
			"status":     e.HTTPStatus,
			"latency_ms": e.LatencyMs,
		})
		switch {
		case e.CircuitOpen:
			entry.Warn("vendor call skipped: circuit open")
		case e.Err != nil:
			entry.WithError(e.Err).Warn("vendor call failed")
		case e.HTTPStatus >= 500:
			entry.Warn("vendor call returned server error")
		default:
			entry.Info("vendor call completed")
		}
	}); err != nil {
		return err
	}

	return t.OnOutcome(func(e OutcomeEvent) {
		log.WithFields(logrus.Fields{
			"trace_id":    e.TraceID,
			"operation":   e.Operation,
			"auth_mode":   e.AuthMode,
			"outcome":     e.Status,
			"http_status": e.HTTPStatus,
		}).Info("relay outcome")
	})
}
