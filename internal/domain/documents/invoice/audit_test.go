package invoice

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"custody/pkg/logger"
)

func TestAuditHooks_LogStatusChangesAndDeletes(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	f := newFixture()
	RegisterAuditHooks(f.svc.Hooks(), &logger.Logger{SugaredLogger: zap.New(core).Sugar()})
	ctx := context.Background()

	sent, err := f.svc.Create(ctx, f.input())
	require.NoError(t, err)
	_, err = f.svc.ChangeStatus(ctx, sent.ID, StatusSent)
	require.NoError(t, err)

	draft, err := f.svc.Create(ctx, f.input())
	require.NoError(t, err)
	require.NoError(t, f.svc.Delete(ctx, draft.ID))

	entries := logs.FilterMessage("invoice audit").All()
	require.Len(t, entries, 2, "creates are not audited")

	changed := entries[0].ContextMap()
	assert.Equal(t, "after_status_change", changed["event"])
	assert.Equal(t, sent.Number, changed["number"])
	assert.Equal(t, "SENT", changed["status"])
	assert.Equal(t, "216.00", changed["total"])
	assert.Equal(t, "invoice_audit", changed["component"])

	deleted := entries[1].ContextMap()
	assert.Equal(t, "after_delete", deleted["event"])
	assert.Equal(t, draft.Number, deleted["number"])
}
