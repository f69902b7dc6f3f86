package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"custody/internal/core/id"
	"custody/internal/domain/documents/invoice"
	"custody/internal/infrastructure/http/v1/dto"
)

// InvoiceService is the part of invoice.Service the handler drives.
type InvoiceService interface {
	Create(ctx context.Context, in invoice.Input) (*invoice.Invoice, error)
	Update(ctx context.Context, invoiceID id.ID, in invoice.Input) (*invoice.Invoice, error)
	ChangeStatus(ctx context.Context, invoiceID id.ID, to invoice.Status) (*invoice.Invoice, error)
	Delete(ctx context.Context, invoiceID id.ID) error
	GetByID(ctx context.Context, invoiceID id.ID) (*invoice.Invoice, error)
	GetByNumber(ctx context.Context, number string) (*invoice.Invoice, error)
	ListOverdue(ctx context.Context, asOf time.Time) ([]*invoice.Invoice, error)
	CountOverdue(ctx context.Context, asOf time.Time) (int64, error)
}

var _ InvoiceService = (*invoice.Service)(nil)

// InvoiceHandler handles HTTP requests for invoices.
type InvoiceHandler struct {
	*BaseHandler
	service InvoiceService
}

// NewInvoiceHandler creates a new invoice handler.
func NewInvoiceHandler(base *BaseHandler, service InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{BaseHandler: base, service: service}
}

// Create handles POST /invoices.
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req dto.InvoiceRequest
	if !h.BindJSON(c, &req) {
		return
	}

	in, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	inv, err := h.service.Create(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.FromInvoice(inv))
}

// Get handles GET /invoices/:id.
func (h *InvoiceHandler) Get(c *gin.Context) {
	invoiceID, ok := h.ParamID(c)
	if !ok {
		return
	}

	inv, err := h.service.GetByID(c.Request.Context(), invoiceID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromInvoice(inv))
}

// GetByNumber handles GET /invoices/by-number/:number.
func (h *InvoiceHandler) GetByNumber(c *gin.Context) {
	inv, err := h.service.GetByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromInvoice(inv))
}

// Update handles PUT /invoices/:id. Lines in the body replace the stored ones.
func (h *InvoiceHandler) Update(c *gin.Context) {
	invoiceID, ok := h.ParamID(c)
	if !ok {
		return
	}

	var req dto.InvoiceRequest
	if !h.BindJSON(c, &req) {
		return
	}

	in, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	inv, err := h.service.Update(c.Request.Context(), invoiceID, in)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromInvoice(inv))
}

// ChangeStatus handles PATCH /invoices/:id/status.
func (h *InvoiceHandler) ChangeStatus(c *gin.Context) {
	invoiceID, ok := h.ParamID(c)
	if !ok {
		return
	}

	var req dto.ChangeStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}

	to, err := invoice.ParseStatus(req.Status)
	if err != nil {
		h.Error(c, err)
		return
	}

	inv, err := h.service.ChangeStatus(c.Request.Context(), invoiceID, to)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromInvoice(inv))
}

// Delete handles DELETE /invoices/:id.
func (h *InvoiceHandler) Delete(c *gin.Context) {
	invoiceID, ok := h.ParamID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), invoiceID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// ListOverdue handles GET /invoices/overdue?asOf=YYYY-MM-DD.
func (h *InvoiceHandler) ListOverdue(c *gin.Context) {
	asOf, ok := h.QueryDate(c, "asOf")
	if !ok {
		return
	}

	items, err := h.service.ListOverdue(c.Request.Context(), asOf)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromInvoices(items))
}

// CountOverdue handles GET /invoices/overdue/count?asOf=YYYY-MM-DD.
func (h *InvoiceHandler) CountOverdue(c *gin.Context) {
	asOf, ok := h.QueryDate(c, "asOf")
	if !ok {
		return
	}

	count, err := h.service.CountOverdue(c.Request.Context(), asOf)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.CountResponse{Count: count})
}
