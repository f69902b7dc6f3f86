package dto

import (
	"github.com/shopspring/decimal"

	"custody/internal/core/apperror"
	"custody/internal/core/id"
	"custody/internal/domain/documents/invoice"
)

// --- Request DTOs ---

// InvoiceRequest is the body of create and update calls.
// An empty number asks the server to allocate one (create) or keeps the current one (update).
type InvoiceRequest struct {
	Number    string  `json:"number,omitempty"`
	Type      string  `json:"type,omitempty"`
	ClientID  string  `json:"clientId" binding:"required"`
	ProjectID *string `json:"projectId,omitempty"`

	IssueDate  *string `json:"issueDate,omitempty"`
	SupplyDate *string `json:"supplyDate,omitempty"`
	DueDate    *string `json:"dueDate,omitempty"`

	Currency             string              `json:"currency,omitempty"`
	ExchangeRateProvider string              `json:"exchangeRateProvider,omitempty"`
	ExchangeRateValue    decimal.NullDecimal `json:"exchangeRateValue"`

	PaymentTerms     string              `json:"paymentTerms,omitempty"`
	LateFeeRate      decimal.NullDecimal `json:"lateFeeRate"`
	CollectionFeeEUR decimal.NullDecimal `json:"collectionFeeEur"`
	Notes            string              `json:"notes,omitempty"`
	LegalMentions    []string            `json:"legalMentions,omitempty"`

	Lines []InvoiceLineRequest `json:"lines" binding:"dive"`
}

// InvoiceLineRequest represents a line in create/update request.
// Omitted numeric fields fall back to their defaults when totals are computed.
type InvoiceLineRequest struct {
	Designation string              `json:"designation"`
	Unit        string              `json:"unit,omitempty"`
	Quantity    decimal.NullDecimal `json:"quantity"`
	UnitPrice   decimal.NullDecimal `json:"unitPrice"`
	Discount    decimal.NullDecimal `json:"discount"`
	TaxRate     decimal.NullDecimal `json:"taxRate"`
}

// ToInput converts the request to service input.
func (r *InvoiceRequest) ToInput() (invoice.Input, error) {
	var in invoice.Input

	clientID, err := id.Parse(r.ClientID)
	if err != nil {
		return in, apperror.NewValidation("invalid id format").WithDetail("field", "clientId")
	}
	projectID, err := ParseOptionalID("projectId", r.ProjectID)
	if err != nil {
		return in, err
	}

	var docType invoice.DocumentType
	if r.Type != "" {
		if docType, err = invoice.ParseDocumentType(r.Type); err != nil {
			return in, err
		}
	}

	if in.IssueDate, err = ParseDate("issueDate", r.IssueDate); err != nil {
		return in, err
	}
	if in.SupplyDate, err = ParseDate("supplyDate", r.SupplyDate); err != nil {
		return in, err
	}
	if in.DueDate, err = ParseDate("dueDate", r.DueDate); err != nil {
		return in, err
	}

	in.Number = r.Number
	in.Type = docType
	in.ClientID = clientID
	in.ProjectID = projectID
	in.Currency = r.Currency
	in.ExchangeRateProvider = r.ExchangeRateProvider
	in.ExchangeRateValue = r.ExchangeRateValue
	in.PaymentTerms = r.PaymentTerms
	in.LateFeeRate = r.LateFeeRate
	in.CollectionFee = r.CollectionFeeEUR
	in.Notes = r.Notes
	in.LegalMentions = r.LegalMentions

	in.Lines = make([]invoice.Line, 0, len(r.Lines))
	for _, line := range r.Lines {
		in.Lines = append(in.Lines, invoice.Line{
			Designation: line.Designation,
			Unit:        line.Unit,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			Discount:    line.Discount,
			TaxRate:     line.TaxRate,
		})
	}

	return in, nil
}

// ChangeStatusRequest moves an invoice along the workflow.
type ChangeStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// --- Response DTOs ---

// InvoiceResponse represents an invoice in API responses.
// Amounts are decimal strings with two fractional digits.
type InvoiceResponse struct {
	BaseResponse
	Number    string  `json:"number"`
	Type      string  `json:"type"`
	Status    string  `json:"status"`
	ClientID  string  `json:"clientId"`
	ProjectID *string `json:"projectId,omitempty"`

	IssueDate  *string `json:"issueDate,omitempty"`
	SupplyDate *string `json:"supplyDate,omitempty"`
	DueDate    *string `json:"dueDate,omitempty"`

	Currency             string  `json:"currency"`
	ExchangeRateProvider string  `json:"exchangeRateProvider,omitempty"`
	ExchangeRateValue    *string `json:"exchangeRateValue,omitempty"`

	Subtotal string `json:"subtotal"`
	TaxTotal string `json:"taxTotal"`
	Total    string `json:"total"`

	PaymentTerms     string   `json:"paymentTerms,omitempty"`
	LateFeeRate      *string  `json:"lateFeeRate,omitempty"`
	CollectionFeeEUR *string  `json:"collectionFeeEur,omitempty"`
	Notes            string   `json:"notes,omitempty"`
	LegalMentions    []string `json:"legalMentions"`

	Lines []InvoiceLineResponse `json:"lines"`
}

// InvoiceLineResponse represents a line in API responses.
type InvoiceLineResponse struct {
	ID          string  `json:"id"`
	LineNo      int     `json:"lineNo"`
	Designation string  `json:"designation"`
	Unit        string  `json:"unit,omitempty"`
	Quantity    *string `json:"quantity,omitempty"`
	UnitPrice   *string `json:"unitPrice,omitempty"`
	Discount    *string `json:"discount,omitempty"`
	TaxRate     *string `json:"taxRate,omitempty"`
	NetAmount   string  `json:"netAmount"` // unrounded
	TaxAmount   string  `json:"taxAmount"`
}

// FromInvoice converts domain entity to response DTO.
func FromInvoice(inv *invoice.Invoice) *InvoiceResponse {
	resp := &InvoiceResponse{
		BaseResponse:         FromBaseDocument(inv.BaseDocument),
		Number:               inv.Number,
		Type:                 string(inv.Type),
		Status:               string(inv.Status),
		ClientID:             inv.ClientID.String(),
		IssueDate:            FormatDate(inv.IssueDate),
		SupplyDate:           FormatDate(inv.SupplyDate),
		DueDate:              FormatDate(inv.DueDate),
		Currency:             inv.Currency,
		ExchangeRateProvider: inv.ExchangeRateProvider,
		ExchangeRateValue:    FormatNullDecimal(inv.ExchangeRateValue),
		Subtotal:             FormatMoney(inv.Subtotal),
		TaxTotal:             FormatMoney(inv.TaxTotal),
		Total:                FormatMoney(inv.Total),
		PaymentTerms:         inv.PaymentTerms,
		LateFeeRate:          FormatNullDecimal(inv.LateFeeRate),
		CollectionFeeEUR:     FormatNullDecimal(inv.CollectionFee),
		Notes:                inv.Notes,
		LegalMentions:        inv.LegalMentions,
	}
	if inv.ProjectID != nil {
		s := inv.ProjectID.String()
		resp.ProjectID = &s
	}
	if resp.LegalMentions == nil {
		resp.LegalMentions = []string{}
	}

	resp.Lines = make([]InvoiceLineResponse, len(inv.Lines))
	for i, line := range inv.Lines {
		resp.Lines[i] = InvoiceLineResponse{
			ID:          line.ID.String(),
			LineNo:      line.LineNo,
			Designation: line.Designation,
			Unit:        line.Unit,
			Quantity:    FormatNullDecimal(line.Quantity),
			UnitPrice:   FormatNullDecimal(line.UnitPrice),
			Discount:    FormatNullDecimal(line.Discount),
			TaxRate:     FormatNullDecimal(line.TaxRate),
			NetAmount:   line.NetAmount.String(),
			TaxAmount:   FormatMoney(line.TaxAmount),
		}
	}

	return resp
}

// FromInvoices converts a slice of invoices.
func FromInvoices(items []*invoice.Invoice) []*InvoiceResponse {
	out := make([]*InvoiceResponse, 0, len(items))
	for _, inv := range items {
		out = append(out, FromInvoice(inv))
	}
	return out
}
