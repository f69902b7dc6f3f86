package context

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewTraceContext_KeepsSuppliedIDs(t *testing.T) {
	tc := NewTraceContext("trace-1", "")

	assert.Equal(t, "trace-1", tc.TraceID)
	assert.NotEmpty(t, tc.RequestID)
	assert.NotEqual(t, tc.TraceID, tc.RequestID)
}

func TestGetTrace(t *testing.T) {
	assert.Nil(t, GetTrace(context.Background()))

	tc := NewTraceContext("", "")
	ctx := WithTrace(context.Background(), tc)
	assert.Same(t, tc, GetTrace(ctx))
}
