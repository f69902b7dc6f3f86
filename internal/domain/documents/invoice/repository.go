package invoice

import (
	"context"
	"time"

	"custody/internal/core/id"
)

// Repository defines storage operations for invoices.
type Repository interface {
	// CRUD operations
	Create(ctx context.Context, inv *Invoice) error
	GetByID(ctx context.Context, invoiceID id.ID) (*Invoice, error)
	GetByNumber(ctx context.Context, number string) (*Invoice, error)
	// Update writes header fields; it fails with CONCURRENT_MODIFICATION
	// unless the stored version equals inv.Version-1.
	Update(ctx context.Context, inv *Invoice) error
	Delete(ctx context.Context, invoiceID id.ID) error

	// Number uniqueness
	ExistsByNumber(ctx context.Context, number string) (bool, error)
	ExistsByNumberExcluding(ctx context.Context, number string, excluded id.ID) (bool, error)

	// Line operations
	GetLines(ctx context.Context, invoiceID id.ID) ([]Line, error)
	SaveLines(ctx context.Context, invoiceID id.ID, lines []Line) error

	// Overdue queries: due date before asOf, status neither PAID nor CANCELLED
	ListOverdue(ctx context.Context, asOf time.Time) ([]*Invoice, error)
	CountOverdue(ctx context.Context, asOf time.Time) (int64, error)

	// Locking
	GetForUpdate(ctx context.Context, invoiceID id.ID) (*Invoice, error)
}

// ReferenceChecker reports whether a referenced client or project exists.
type ReferenceChecker interface {
	Exists(ctx context.Context, refID id.ID) (bool, error)
}
