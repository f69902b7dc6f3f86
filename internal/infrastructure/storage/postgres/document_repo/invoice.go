package document_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"custody/internal/core/apperror"
	"custody/internal/core/id"
	"custody/internal/domain/documents/invoice"
	"custody/internal/infrastructure/storage/postgres"
)

const (
	invoicesTable     = "invoices"
	invoiceLinesTable = "invoice_lines"
)

var invoiceLineColumns = []string{
	"id", "invoice_id", "line_no", "designation", "unit",
	"quantity", "unit_price", "discount", "tax_rate", "net_amount", "tax_amount",
}

// Compile-time check that InvoiceRepo implements invoice.Repository.
var _ invoice.Repository = (*InvoiceRepo)(nil)

// InvoiceRepo implements invoice.Repository.
type InvoiceRepo struct {
	*BaseDocumentRepo[*invoice.Invoice]
}

// NewInvoiceRepo creates a new invoice repository.
func NewInvoiceRepo(txm *postgres.TxManager) *InvoiceRepo {
	return &InvoiceRepo{
		BaseDocumentRepo: NewBaseDocumentRepo(
			txm,
			invoicesTable,
			"invoice",
			postgres.ExtractDBColumns[invoice.Invoice](),
			func() *invoice.Invoice { return &invoice.Invoice{} },
		),
	}
}

// Create inserts the invoice header. A number clash surfaces as DUPLICATE_ENTRY.
func (r *InvoiceRepo) Create(ctx context.Context, inv *invoice.Invoice) error {
	err := r.BaseDocumentRepo.Create(ctx, inv)
	if appErr, ok := apperror.AsAppError(err); ok && appErr.Code == apperror.CodeDuplicate {
		return appErr.WithDetail("value", inv.Number)
	}
	return err
}

// ExistsByNumber reports whether any invoice holds number.
func (r *InvoiceRepo) ExistsByNumber(ctx context.Context, number string) (bool, error) {
	return r.exists(ctx, squirrel.Eq{"number": number})
}

// ExistsByNumberExcluding reports whether an invoice other than excluded holds number.
func (r *InvoiceRepo) ExistsByNumberExcluding(ctx context.Context, number string, excluded id.ID) (bool, error) {
	return r.exists(ctx, squirrel.And{
		squirrel.Eq{"number": number},
		squirrel.NotEq{"id": excluded},
	})
}

// linesQuery selects the lines of one invoice in order.
func (r *InvoiceRepo) linesQuery(invoiceID id.ID) squirrel.SelectBuilder {
	return r.Builder().
		Select(invoiceLineColumns...).
		From(invoiceLinesTable).
		Where(squirrel.Eq{"invoice_id": invoiceID}).
		OrderBy("line_no")
}

// GetLines retrieves lines for an invoice.
func (r *InvoiceRepo) GetLines(ctx context.Context, invoiceID id.ID) ([]invoice.Line, error) {
	sql, args, err := r.linesQuery(invoiceID).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	lines := make([]invoice.Line, 0)
	if err := pgxscan.Select(ctx, r.querier(ctx), &lines, sql, args...); err != nil {
		return nil, postgres.ClassifyError(fmt.Errorf("get lines: %w", err))
	}

	return lines, nil
}

// insertLinesQuery builds one multi-row INSERT for lines.
func (r *InvoiceRepo) insertLinesQuery(invoiceID id.ID, lines []invoice.Line) squirrel.InsertBuilder {
	q := r.Builder().
		Insert(invoiceLinesTable).
		Columns(invoiceLineColumns...)

	for _, line := range lines {
		q = q.Values(
			line.ID, invoiceID, line.LineNo, line.Designation, line.Unit,
			line.Quantity, line.UnitPrice, line.Discount, line.TaxRate,
			line.NetAmount, line.TaxAmount,
		)
	}
	return q
}

// SaveLines replaces the stored lines of an invoice.
func (r *InvoiceRepo) SaveLines(ctx context.Context, invoiceID id.ID, lines []invoice.Line) error {
	querier := r.querier(ctx)

	// Delete existing lines
	deleteSQL := "DELETE FROM " + invoiceLinesTable + " WHERE invoice_id = $1"
	if _, err := querier.Exec(ctx, deleteSQL, invoiceID); err != nil {
		return postgres.ClassifyError(fmt.Errorf("delete existing lines: %w", err))
	}

	if len(lines) == 0 {
		return nil
	}

	sql, args, err := r.insertLinesQuery(invoiceID, lines).ToSql()
	if err != nil {
		return fmt.Errorf("build insert lines: %w", err)
	}

	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return postgres.ClassifyError(fmt.Errorf("insert lines: %w", err))
	}

	return nil
}

// overduePredicate matches open invoices whose due date is before asOf.
func overduePredicate(asOf time.Time) squirrel.Sqlizer {
	return squirrel.And{
		squirrel.Lt{"due_date": asOf},
		squirrel.NotEq{"status": []string{
			string(invoice.StatusPaid),
			string(invoice.StatusCancelled),
		}},
	}
}

// ListOverdue returns invoices past their due date, oldest due first.
func (r *InvoiceRepo) ListOverdue(ctx context.Context, asOf time.Time) ([]*invoice.Invoice, error) {
	q := r.baseSelect().
		Where(overduePredicate(asOf)).
		OrderBy("due_date", "number")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	items := make([]*invoice.Invoice, 0)
	if err := pgxscan.Select(ctx, r.querier(ctx), &items, sql, args...); err != nil {
		return nil, postgres.ClassifyError(fmt.Errorf("list overdue: %w", err))
	}

	return items, nil
}

// CountOverdue counts invoices ListOverdue would return.
func (r *InvoiceRepo) CountOverdue(ctx context.Context, asOf time.Time) (int64, error) {
	q := r.Builder().
		Select("COUNT(*)").
		From(invoicesTable).
		Where(overduePredicate(asOf))

	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count: %w", err)
	}

	var count int64
	if err := r.querier(ctx).QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, postgres.ClassifyError(fmt.Errorf("count overdue: %w", err))
	}

	return count, nil
}
