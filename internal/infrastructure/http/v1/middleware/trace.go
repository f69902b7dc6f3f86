package middleware

import (
	"github.com/gin-gonic/gin"

	appctx "custody/internal/core/context"
)

const (
	HeaderRequestID = "X-Request-ID"
	HeaderTraceID   = "X-Trace-ID"

	ContextKeyRequestID = "request_id"
	ContextKeyTraceID   = "trace_id"
)

// Trace middleware adds request tracing context.
// Extracts or generates trace IDs for distributed tracing.
func Trace() gin.HandlerFunc {
	return func(c *gin.Context) {
		trace := appctx.NewTraceContext(
			c.GetHeader(HeaderTraceID),
			c.GetHeader(HeaderRequestID),
		)

		// Add to context
		ctx := appctx.WithTrace(c.Request.Context(), trace)
		c.Request = c.Request.WithContext(ctx)

		// Store in gin context for easy access
		c.Set(ContextKeyTraceID, trace.TraceID)
		c.Set(ContextKeyRequestID, trace.RequestID)

		// Add to response headers
		c.Header(HeaderRequestID, trace.RequestID)
		c.Header(HeaderTraceID, trace.TraceID)

		c.Next()
	}
}
