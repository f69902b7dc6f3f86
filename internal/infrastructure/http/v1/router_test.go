package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"custody/internal/core/apperror"
	"custody/internal/core/id"
	"custody/internal/domain/documents/invoice"
	"custody/internal/infrastructure/http/v1/dto"
	"custody/internal/infrastructure/http/v1/handlers"
	"custody/pkg/logger"
)

// fakeInvoices records the last call and returns canned results.
type fakeInvoices struct {
	err     error
	inv     *invoice.Invoice
	lastIn  invoice.Input
	lastTo  invoice.Status
	lastAs  time.Time
	deleted id.ID
	panics  bool
}

func (f *fakeInvoices) Create(_ context.Context, in invoice.Input) (*invoice.Invoice, error) {
	if f.panics {
		panic("boom")
	}
	f.lastIn = in
	if f.err != nil {
		return nil, f.err
	}
	inv := invoice.NewInvoice(time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC))
	inv.Number = "FA-2025-0001"
	inv.ClientID = in.ClientID
	inv.SetLines(in.Lines)
	inv.Recalculate()
	return inv, nil
}

func (f *fakeInvoices) Update(_ context.Context, _ id.ID, in invoice.Input) (*invoice.Invoice, error) {
	f.lastIn = in
	return f.inv, f.err
}

func (f *fakeInvoices) ChangeStatus(_ context.Context, _ id.ID, to invoice.Status) (*invoice.Invoice, error) {
	f.lastTo = to
	return f.inv, f.err
}

func (f *fakeInvoices) Delete(_ context.Context, invoiceID id.ID) error {
	f.deleted = invoiceID
	return f.err
}

func (f *fakeInvoices) GetByID(context.Context, id.ID) (*invoice.Invoice, error) {
	return f.inv, f.err
}

func (f *fakeInvoices) GetByNumber(context.Context, string) (*invoice.Invoice, error) {
	return f.inv, f.err
}

func (f *fakeInvoices) ListOverdue(_ context.Context, asOf time.Time) ([]*invoice.Invoice, error) {
	f.lastAs = asOf
	if f.err != nil {
		return nil, f.err
	}
	return []*invoice.Invoice{f.inv}, nil
}

func (f *fakeInvoices) CountOverdue(_ context.Context, asOf time.Time) (int64, error) {
	f.lastAs = asOf
	return 3, f.err
}

func newTestRouter(svc *fakeInvoices) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewRouter(RouterConfig{
		Logger:         logger.NewNop(),
		Health:         handlers.NewHealthHandler(nil),
		Invoices:       svc,
		RequestTimeout: time.Second,
	})
}

func do(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestCreateInvoice_RendersTotalsAsFixedDecimals(t *testing.T) {
	svc := &fakeInvoices{}
	r := newTestRouter(svc)
	clientID := id.New()

	w := do(t, r, http.MethodPost, "/api/v1/invoices", map[string]any{
		"clientId":  clientID.String(),
		"issueDate": "2025-01-15",
		"dueDate":   "2025-02-14",
		"lines": []map[string]any{
			{"designation": "Audit", "quantity": "2", "unitPrice": "100", "taxRate": "20", "discount": "10"},
			{"designation": "Travel", "quantity": 1, "unitPrice": 36, "taxRate": 0},
		},
	})

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp dto.InvoiceResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, "FA-2025-0001", resp.Number)
	assert.Equal(t, "216.00", resp.Subtotal)
	assert.Equal(t, "36.00", resp.TaxTotal)
	assert.Equal(t, "252.00", resp.Total)
	assert.Len(t, resp.Lines, 2)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	require.NotNil(t, svc.lastIn.IssueDate)
	assert.Equal(t, 2025, svc.lastIn.IssueDate.Year())
	assert.Equal(t, clientID, svc.lastIn.ClientID)
}

func TestCreateInvoice_RejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing client", map[string]any{"lines": []any{}}},
		{"bad client id", map[string]any{"clientId": "nope"}},
		{"bad date", map[string]any{"clientId": id.New().String(), "issueDate": "15/01/2025"}},
		{"unknown type", map[string]any{"clientId": id.New().String(), "type": "RECEIPT"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, newTestRouter(&fakeInvoices{}), http.MethodPost, "/api/v1/invoices", tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, apperror.CodeValidation, decodeError(t, w).Code)
		})
	}
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"malformed", apperror.NewMalformedNumber("FA-25-1"), http.StatusBadRequest, apperror.CodeMalformedNumber},
		{"duplicate", apperror.NewDuplicate("invoice", "number", "FA-2025-0001"), http.StatusConflict, apperror.CodeDuplicate},
		{"not found", apperror.NewNotFound("invoice", "x"), http.StatusNotFound, apperror.CodeNotFound},
		{"storage", apperror.NewStorageUnavailable(context.DeadlineExceeded), http.StatusServiceUnavailable, apperror.CodeStorageUnavailable},
		{"plain", errors.New("something broke"), http.StatusInternalServerError, apperror.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, newTestRouter(&fakeInvoices{err: tt.err}), http.MethodPost, "/api/v1/invoices",
				map[string]any{"clientId": id.New().String()})

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decodeError(t, w)
			assert.Equal(t, tt.wantCode, resp.Code)
			assert.Equal(t, tt.wantCode == apperror.CodeStorageUnavailable, resp.Retryable)
		})
	}
}

func TestChangeStatus(t *testing.T) {
	inv := invoice.NewInvoice(time.Now())
	svc := &fakeInvoices{inv: inv}
	r := newTestRouter(svc)

	w := do(t, r, http.MethodPatch, "/api/v1/invoices/"+inv.ID.String()+"/status", map[string]any{"status": "sent"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, invoice.StatusSent, svc.lastTo)

	svc.err = apperror.NewIllegalTransition("PAID", "DRAFT")
	w = do(t, r, http.MethodPatch, "/api/v1/invoices/"+inv.ID.String()+"/status", map[string]any{"status": "DRAFT"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, apperror.CodeIllegalTransition, resp.Code)
	assert.Equal(t, "PAID", resp.Details["from"])

	w = do(t, r, http.MethodPatch, "/api/v1/invoices/"+inv.ID.String()+"/status", map[string]any{"status": "ARCHIVED"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteInvoice(t *testing.T) {
	svc := &fakeInvoices{}
	r := newTestRouter(svc)
	invoiceID := id.New()

	w := do(t, r, http.MethodDelete, "/api/v1/invoices/"+invoiceID.String(), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, invoiceID, svc.deleted)

	w = do(t, r, http.MethodDelete, "/api/v1/invoices/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOverdueRoutes(t *testing.T) {
	inv := invoice.NewInvoice(time.Now())
	inv.Number = "FA-2025-0007"
	svc := &fakeInvoices{inv: inv}
	r := newTestRouter(svc)

	w := do(t, r, http.MethodGet, "/api/v1/invoices/overdue/count?asOf=2025-06-01", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var count dto.CountResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &count))
	assert.Equal(t, int64(3), count.Count)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), svc.lastAs)

	w = do(t, r, http.MethodGet, "/api/v1/invoices/overdue", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []dto.InvoiceResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "FA-2025-0007", list[0].Number)
}

func TestGetByNumber(t *testing.T) {
	inv := invoice.NewInvoice(time.Now())
	inv.Number = "AV-2025-0002"
	r := newTestRouter(&fakeInvoices{inv: inv})

	w := do(t, r, http.MethodGet, "/api/v1/invoices/by-number/AV-2025-0002", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp dto.InvoiceResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "AV-2025-0002", resp.Number)
	assert.Equal(t, "0.00", resp.Total)
}

func TestPanicIsRenderedAsInternalError(t *testing.T) {
	w := do(t, newTestRouter(&fakeInvoices{panics: true}), http.MethodPost, "/api/v1/invoices",
		map[string]any{"clientId": id.New().String()})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, apperror.CodeInternal, decodeError(t, w).Code)
}

func TestHealthLive(t *testing.T) {
	w := do(t, newTestRouter(&fakeInvoices{}), http.MethodGet, "/health/live", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHealthReady_ReportsFailingCheck(t *testing.T) {
	gin.SetMode(gin.TestMode)
	health := handlers.NewHealthHandler(nil).
		WithCheck("sequence_backend", func(context.Context) error { return errors.New("down") })
	r := NewRouter(RouterConfig{Logger: logger.NewNop(), Health: health, Invoices: &fakeInvoices{}})

	w := do(t, r, http.MethodGet, "/health/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "unhealthy: down")
}
