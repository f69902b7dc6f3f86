// Package dto provides Data Transfer Objects for API requests/responses.
package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"custody/internal/core/apperror"
	"custody/internal/core/entity"
	"custody/internal/core/id"
	"custody/internal/core/types"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// --- Base DTOs ---

// BaseResponse contains common response fields.
type BaseResponse struct {
	ID        string    `json:"id"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FromBaseDocument creates BaseResponse from entity.BaseDocument.
func FromBaseDocument(b entity.BaseDocument) BaseResponse {
	return BaseResponse{
		ID:        b.ID.String(),
		Version:   b.Version,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

// --- ID Response ---

// IDResponse for create operations.
type IDResponse struct {
	ID string `json:"id"`
}

// NewIDResponse creates ID response.
func NewIDResponse(i id.ID) IDResponse {
	return IDResponse{ID: i.String()}
}

// --- Count Response ---

// CountResponse carries a single aggregate count.
type CountResponse struct {
	Count int64 `json:"count"`
}

// --- Error Response ---

// ErrorResponse for error details.
type ErrorResponse struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	Retryable bool           `json:"retryable,omitempty"`
}

// --- Conversions ---

// ParseDate parses an optional calendar date. Empty means absent.
func ParseDate(field string, s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, *s)
	if err != nil {
		return nil, apperror.NewValidation("date must be formatted YYYY-MM-DD").
			WithDetail("field", field).
			WithDetail("value", *s)
	}
	return &t, nil
}

// FormatDate renders an optional date in DateLayout.
func FormatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(DateLayout)
	return &s
}

// ParseOptionalID parses an optional identifier. Empty means absent.
func ParseOptionalID(field string, s *string) (*id.ID, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	v, err := id.Parse(*s)
	if err != nil {
		return nil, apperror.NewValidation("invalid id format").WithDetail("field", field)
	}
	return &v, nil
}

// FormatMoney renders an amount with exactly two fractional digits.
func FormatMoney(m types.Money) string {
	return m.StringFixed(types.MoneyScale)
}

// FormatNullDecimal renders a nullable decimal as-is, or nil.
func FormatNullDecimal(d decimal.NullDecimal) *string {
	if !d.Valid {
		return nil
	}
	s := d.Decimal.String()
	return &s
}
