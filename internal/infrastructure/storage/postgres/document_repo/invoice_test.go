package document_repo

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"custody/internal/core/id"
	"custody/internal/domain/documents/invoice"
	"custody/internal/infrastructure/storage/postgres"
)

func newInvoiceRepo() *InvoiceRepo {
	return NewInvoiceRepo(postgres.NewTxManagerFromRawPool(nil))
}

func TestInvoiceRepo_SelectsEveryHeaderColumn(t *testing.T) {
	repo := newInvoiceRepo()

	assert.Equal(t, "invoices", repo.tableName)
	assert.Contains(t, repo.selectCols, "number")
	assert.Contains(t, repo.selectCols, "legal_mentions")
	assert.Contains(t, repo.selectCols, "collection_fee_eur")
	assert.NotContains(t, repo.selectCols, "lines")
}

func TestInvoiceRepo_LinesQuery(t *testing.T) {
	repo := newInvoiceRepo()
	invoiceID := id.New()

	sql, args, err := repo.linesQuery(invoiceID).ToSql()
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT id, invoice_id, line_no, designation, unit, quantity, unit_price, discount, tax_rate, net_amount, tax_amount "+
			"FROM invoice_lines WHERE invoice_id = $1 ORDER BY line_no",
		sql)
	assert.Equal(t, []any{invoiceID.String()}, args)
}

func TestInvoiceRepo_InsertLinesQuery(t *testing.T) {
	repo := newInvoiceRepo()
	invoiceID := id.New()
	lines := []invoice.Line{
		{ID: id.New(), LineNo: 1, Designation: "Audit", Quantity: decimal.NewNullDecimal(decimal.NewFromInt(2))},
		{ID: id.New(), LineNo: 2, Designation: "Travel"},
	}

	sql, args, err := repo.insertLinesQuery(invoiceID, lines).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "INSERT INTO invoice_lines (id,invoice_id,line_no,designation,unit,")
	assert.Contains(t, sql, "VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11),($12,")
	require.Len(t, args, 22)
	assert.Equal(t, invoiceID, args[1])
	assert.Equal(t, invoiceID, args[12])
	assert.Equal(t, "Travel", args[14])
}

func TestOverduePredicate_ExcludesSettledStatuses(t *testing.T) {
	asOf := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	sql, args, err := newInvoiceRepo().Builder().
		Select("COUNT(*)").
		From(invoicesTable).
		Where(overduePredicate(asOf)).
		ToSql()
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT COUNT(*) FROM invoices WHERE (due_date < $1 AND status NOT IN ($2,$3))",
		sql)
	assert.Equal(t, []any{asOf, "PAID", "CANCELLED"}, args)
}
