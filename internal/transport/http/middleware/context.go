package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TraceIDHeader carries the correlation ID between services.
const TraceIDHeader = "X-Trace-ID"

const traceIDKey = "trace_id"

// EnrichContext propagates the inbound trace ID, or mints a fresh one, so
// access logs and responses share a correlation ID across service hops.
func EnrichContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(TraceIDHeader)
		if traceID == "" {
			traceID = uuid.NewString()
		}

		c.Set(traceIDKey, traceID)
		c.Header(TraceIDHeader, traceID)

		c.Next()
	}
}

// GetTraceID returns the trace ID stamped by EnrichContext, or "" when the
// middleware did not run.
func GetTraceID(c *gin.Context) string {
	id, _ := c.Get(traceIDKey)
	s, _ := id.(string)
	return s
}
