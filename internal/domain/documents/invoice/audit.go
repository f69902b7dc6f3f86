package invoice

import (
	"context"

	"custody/internal/domain"
	"custody/pkg/logger"
)

// RegisterAuditHooks writes one "invoice audit" entry per committed status
// change or deletion, carrying the state a bookkeeper needs to reconcile it.
func RegisterAuditHooks(hooks *domain.HookRegistry[*Invoice], log *logger.Logger) {
	audit := log.WithComponent("invoice_audit")

	entry := func(event domain.HookEvent) domain.Hook[*Invoice] {
		return func(ctx context.Context, inv *Invoice) error {
			audit.WithContext(ctx).Infow("invoice audit",
				"event", string(event),
				"id", inv.ID,
				"number", inv.Number,
				"type", string(inv.Type),
				"status", string(inv.Status),
				"version", inv.Version,
				"client_id", inv.ClientID,
				"total", inv.Total.StringFixed(2),
				"currency", inv.Currency,
			)
			return nil
		}
	}

	hooks.On(domain.AfterStatusChange, entry(domain.AfterStatusChange))
	hooks.On(domain.AfterDelete, entry(domain.AfterDelete))
}
