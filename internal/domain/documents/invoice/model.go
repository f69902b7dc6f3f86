// Package invoice provides the Invoice document: numbering, totals and status workflow.
package invoice

import (
	"context"
	"regexp"
	"time"

	"github.com/shopspring/decimal"

	"custody/internal/core/apperror"
	"custody/internal/core/entity"
	"custody/internal/core/id"
	"custody/internal/core/types"
)

// DefaultCurrency is applied when an invoice is created without one.
const DefaultCurrency = "EUR"

var currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)

// Invoice is a legally numbered billing document.
type Invoice struct {
	entity.BaseDocument

	Number string       `db:"number" json:"number"`
	Type   DocumentType `db:"type" json:"type"`
	Status Status       `db:"status" json:"status"`

	ClientID  id.ID  `db:"client_id" json:"clientId"`
	ProjectID *id.ID `db:"project_id" json:"projectId,omitempty"`

	IssueDate  *time.Time `db:"issue_date" json:"issueDate,omitempty"`
	SupplyDate *time.Time `db:"supply_date" json:"supplyDate,omitempty"`
	DueDate    *time.Time `db:"due_date" json:"dueDate,omitempty"`

	Currency             string              `db:"currency" json:"currency"`
	ExchangeRateProvider string              `db:"exchange_rate_provider" json:"exchangeRateProvider,omitempty"`
	ExchangeRateValue    decimal.NullDecimal `db:"exchange_rate_value" json:"exchangeRateValue"`

	// Totals (calculated from lines)
	Subtotal types.Money `db:"subtotal" json:"subtotal"`
	TaxTotal types.Money `db:"tax_total" json:"taxTotal"`
	Total    types.Money `db:"total" json:"total"`

	PaymentTerms  string              `db:"payment_terms" json:"paymentTerms,omitempty"`
	LateFeeRate   decimal.NullDecimal `db:"late_fee_rate" json:"lateFeeRate"`
	CollectionFee decimal.NullDecimal `db:"collection_fee_eur" json:"collectionFeeEur"`
	Notes         string              `db:"notes" json:"notes,omitempty"`
	LegalMentions []string            `db:"legal_mentions" json:"legalMentions"`

	// Table part
	Lines []Line `db:"-" json:"lines"`
}

// Line is one billed item. Nil-valued decimals fall back to their defaults
// when totals are computed.
type Line struct {
	ID        id.ID `db:"id" json:"id"`
	InvoiceID id.ID `db:"invoice_id" json:"-"`
	LineNo    int   `db:"line_no" json:"lineNo"`

	Designation string `db:"designation" json:"designation"`
	Unit        string `db:"unit" json:"unit,omitempty"`

	Quantity  decimal.NullDecimal `db:"quantity" json:"quantity"`
	UnitPrice decimal.NullDecimal `db:"unit_price" json:"unitPrice"`
	Discount  decimal.NullDecimal `db:"discount" json:"discount"`
	TaxRate   decimal.NullDecimal `db:"tax_rate" json:"taxRate"`

	// Computed
	NetAmount types.Money `db:"net_amount" json:"netAmount"`
	TaxAmount types.Money `db:"tax_amount" json:"taxAmount"`
}

// NewInvoice creates a draft invoice of the standard type.
func NewInvoice(now time.Time) *Invoice {
	return &Invoice{
		BaseDocument:  entity.NewBaseDocument(now),
		Type:          TypeInvoice,
		Status:        StatusDraft,
		Currency:      DefaultCurrency,
		Subtotal:      types.Zero(),
		TaxTotal:      types.Zero(),
		Total:         types.Zero(),
		LegalMentions: make([]string, 0),
		Lines:         make([]Line, 0),
	}
}

// SetLines replaces the table part wholesale, assigning fresh ids and line numbers.
func (inv *Invoice) SetLines(lines []Line) {
	inv.Lines = make([]Line, 0, len(lines))
	for i, l := range lines {
		l.ID = id.New()
		l.InvoiceID = inv.ID
		l.LineNo = i + 1
		inv.Lines = append(inv.Lines, l)
	}
}

// Recalculate refreshes per-line amounts and the invoice totals.
func (inv *Invoice) Recalculate() {
	for i := range inv.Lines {
		a := ComputeLine(inv.Lines[i])
		inv.Lines[i].NetAmount = a.Net
		inv.Lines[i].TaxAmount = a.Tax
	}
	t := ComputeTotals(inv.Lines)
	inv.Subtotal = t.Subtotal
	inv.TaxTotal = t.TaxTotal
	inv.Total = t.Total
}

// SequenceYear is the year the number is allocated in: the issue year, or now's year.
func (inv *Invoice) SequenceYear(now time.Time) int {
	if inv.IssueDate != nil {
		return inv.IssueDate.Year()
	}
	return now.Year()
}

// Validate implements entity.Validatable.
func (inv *Invoice) Validate(ctx context.Context) error {
	if err := inv.validateFields(); err != nil {
		return err
	}
	return inv.ValidateDates()
}

// validateFields checks shape invariants that need neither storage nor dates.
func (inv *Invoice) validateFields() error {
	if id.IsNil(inv.ClientID) {
		return apperror.NewValidation("client is required").
			WithDetail("field", "clientId")
	}
	if inv.ProjectID != nil && id.IsNil(*inv.ProjectID) {
		return apperror.NewValidation("project id is invalid").
			WithDetail("field", "projectId")
	}
	if !inv.Type.IsValid() {
		return apperror.NewValidation("unknown document type").
			WithDetail("field", "type")
	}
	if !inv.Status.IsValid() {
		return apperror.NewValidation("unknown invoice status").
			WithDetail("field", "status")
	}
	if !currencyPattern.MatchString(inv.Currency) {
		return apperror.NewValidation("currency must be an ISO 4217 code").
			WithDetail("field", "currency")
	}
	if inv.ExchangeRateValue.Valid && !inv.ExchangeRateValue.Decimal.IsPositive() {
		return apperror.NewValidation("exchange rate must be positive").
			WithDetail("field", "exchangeRateValue")
	}
	if inv.LateFeeRate.Valid && inv.LateFeeRate.Decimal.IsNegative() {
		return apperror.NewValidation("late fee rate must not be negative").
			WithDetail("field", "lateFeeRate")
	}
	if inv.CollectionFee.Valid && inv.CollectionFee.Decimal.IsNegative() {
		return apperror.NewValidation("collection fee must not be negative").
			WithDetail("field", "collectionFeeEur")
	}

	for i, line := range inv.Lines {
		if line.Discount.Valid && !types.IsPercentage(line.Discount.Decimal) {
			return apperror.NewValidation("discount must be between 0 and 100").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if line.TaxRate.Valid && line.TaxRate.Decimal.IsNegative() {
			return apperror.NewValidation("tax rate must not be negative").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
	}

	return nil
}

// ValidateDates rejects a due date before the issue date and a supply date after it.
// Dates that are not set are not compared.
func (inv *Invoice) ValidateDates() error {
	if inv.IssueDate == nil {
		return nil
	}
	if inv.DueDate != nil && inv.DueDate.Before(*inv.IssueDate) {
		return apperror.NewValidation("due date cannot be before issue date").
			WithDetail("field", "dueDate")
	}
	if inv.SupplyDate != nil && inv.SupplyDate.After(*inv.IssueDate) {
		return apperror.NewValidation("supply date cannot be after issue date").
			WithDetail("field", "supplyDate")
	}
	return nil
}

// IsOverdueAt reports whether the invoice is unpaid past its due date.
func (inv *Invoice) IsOverdueAt(asOf time.Time) bool {
	return inv.DueDate != nil && inv.DueDate.Before(asOf) && !inv.Status.IsTerminal()
}

// Ensure interface compliance at compile time.
var _ entity.Validatable = (*Invoice)(nil)
