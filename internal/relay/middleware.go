package relay

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"
)

// HeaderRequestID carries the trace id in and out of the relay.
const HeaderRequestID = "X-Request-ID"

const traceIDKey = "trace_id"

func traceID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(traceIDKey, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

// requestLogger logs one line per request. Bodies are never logged.
func requestLogger(log *logrus.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := log.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.FullPath(),
			"status":     c.Writer.Status(),
			"latency_ms": time.Since(start).Milliseconds(),
			"trace_id":   c.GetString(traceIDKey),
		})
		if sc := trace.SpanContextFromContext(c.Request.Context()); sc.HasTraceID() {
			entry = entry.WithField("otel_trace_id", sc.TraceID().String())
		}
		switch {
		case c.Writer.Status() >= 500:
			entry.Error("relay request failed")
		case c.Writer.Status() >= 400:
			entry.Warn("relay request rejected")
		default:
			entry.Info("relay request")
		}
	}
}
