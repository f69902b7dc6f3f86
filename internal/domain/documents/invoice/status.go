package invoice

import (
	"strings"

	"custody/internal/core/apperror"
)

// Status is the workflow state of an invoice.
type Status string

const (
	StatusDraft         Status = "DRAFT"
	StatusSent          Status = "SENT"
	StatusPartiallyPaid Status = "PARTIALLY_PAID"
	StatusPaid          Status = "PAID"
	StatusOverdue       Status = "OVERDUE"
	StatusCancelled     Status = "CANCELLED"
)

// transitions is the complete adjacency table of the workflow.
// A status missing from a value set cannot be reached from the key.
// OVERDUE has no outgoing step but is not terminal: the invoice stays editable.
var transitions = map[Status]map[Status]struct{}{
	StatusDraft: {
		StatusSent:      {},
		StatusCancelled: {},
	},
	StatusSent: {
		StatusPartiallyPaid: {},
		StatusPaid:          {},
		StatusOverdue:       {},
		StatusCancelled:     {},
	},
	StatusPartiallyPaid: {
		StatusPaid:    {},
		StatusOverdue: {},
	},
	StatusOverdue:   {},
	StatusPaid:      {},
	StatusCancelled: {},
}

// AllStatuses lists every status in workflow order.
func AllStatuses() []Status {
	return []Status{StatusDraft, StatusSent, StatusPartiallyPaid, StatusOverdue, StatusPaid, StatusCancelled}
}

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

// IsTerminal reports whether s closes the invoice (PAID or CANCELLED).
func (s Status) IsTerminal() bool {
	return s == StatusPaid || s == StatusCancelled
}

// CanEdit returns INVALID_STATE when lines, dates or amounts may no longer change.
func (s Status) CanEdit() error {
	if s.IsTerminal() {
		return apperror.NewInvalidState(string(s), "Paid or cancelled invoices cannot be modified")
	}
	return nil
}

// CanDelete returns INVALID_STATE unless the invoice is still a draft.
func (s Status) CanDelete() error {
	if s != StatusDraft {
		return apperror.NewInvalidState(string(s), "Only draft invoices can be deleted")
	}
	return nil
}

// CanTransition reports whether from -> to is a legal workflow step.
func CanTransition(from, to Status) bool {
	_, ok := transitions[from][to]
	return ok
}

// ValidateTransition returns ILLEGAL_TRANSITION carrying the pair when from -> to is not allowed.
func ValidateTransition(from, to Status) error {
	if !CanTransition(from, to) {
		return apperror.NewIllegalTransition(string(from), string(to))
	}
	return nil
}

// ParseStatus converts external input into a Status.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", apperror.NewValidation("unknown invoice status").
			WithDetail("field", "status").
			WithDetail("value", s)
	}
	return st, nil
}
