// Package context carries request-scoped tracing values.
package context

import (
	"context"

	"github.com/google/uuid"
)

// TraceContext identifies one API request across logs.
// TraceID may be propagated by a caller; RequestID is per hop.
type TraceContext struct {
	TraceID   string
	RequestID string
}

type traceContextKey struct{}

func WithTrace(ctx context.Context, trace *TraceContext) context.Context {
	return context.WithValue(ctx, traceContextKey{}, trace)
}

// GetTrace returns the TraceContext stored in ctx, or nil.
func GetTrace(ctx context.Context) *TraceContext {
	trace, _ := ctx.Value(traceContextKey{}).(*TraceContext)
	return trace
}

// NewTraceContext fills any empty identifier with a random UUID.
func NewTraceContext(traceID, requestID string) *TraceContext {
	t := &TraceContext{TraceID: traceID, RequestID: requestID}
	if t.TraceID == "" {
		t.TraceID = uuid.NewString()
	}
	if t.RequestID == "" {
		t.RequestID = uuid.NewString()
	}
	return t
}
