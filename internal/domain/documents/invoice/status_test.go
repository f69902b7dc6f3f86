package invoice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"custody/internal/core/apperror"
)

func TestCanTransition_Exhaustive(t *testing.T) {
	allowed := map[Status][]Status{
		StatusDraft:         {StatusSent, StatusCancelled},
		StatusSent:          {StatusPartiallyPaid, StatusPaid, StatusOverdue, StatusCancelled},
		StatusPartiallyPaid: {StatusPaid, StatusOverdue},
		StatusOverdue:       nil,
		StatusPaid:          nil,
		StatusCancelled:     nil,
	}

	for _, from := range AllStatuses() {
		for _, to := range AllStatuses() {
			want := false
			for _, a := range allowed[from] {
				if a == to {
					want = true
				}
			}
			assert.Equal(t, want, CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestValidateTransition(t *testing.T) {
	require.NoError(t, ValidateTransition(StatusDraft, StatusSent))

	err := ValidateTransition(StatusSent, StatusDraft)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeIllegalTransition, appErr.Code)
	assert.Equal(t, "SENT", appErr.Details["from"])
	assert.Equal(t, "DRAFT", appErr.Details["to"])
}

func TestTerminalStatusesHaveNoExit(t *testing.T) {
	for _, from := range []Status{StatusPaid, StatusCancelled} {
		assert.True(t, from.IsTerminal())
		for _, to := range AllStatuses() {
			assert.True(t, apperror.IsCode(ValidateTransition(from, to), apperror.CodeIllegalTransition))
		}
	}
	assert.False(t, StatusOverdue.IsTerminal())
}

func TestOverdueHasNoExitButStaysEditable(t *testing.T) {
	for _, to := range AllStatuses() {
		err := ValidateTransition(StatusOverdue, to)
		assert.True(t, apperror.IsCode(err, apperror.CodeIllegalTransition), "OVERDUE -> %s", to)
	}
	assert.False(t, StatusOverdue.IsTerminal())
	assert.NoError(t, StatusOverdue.CanEdit())
}

func TestUnknownStatusHasNoTransitions(t *testing.T) {
	assert.False(t, CanTransition(Status("ARCHIVED"), StatusSent))
	assert.False(t, CanTransition(StatusDraft, Status("ARCHIVED")))
}

func TestCanEditAndCanDelete(t *testing.T) {
	tests := []struct {
		status    Status
		canEdit   bool
		canDelete bool
	}{
		{StatusDraft, true, true},
		{StatusSent, true, false},
		{StatusPartiallyPaid, true, false},
		{StatusOverdue, true, false},
		{StatusPaid, false, false},
		{StatusCancelled, false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if tt.canEdit {
				assert.NoError(t, tt.status.CanEdit())
			} else {
				assert.True(t, apperror.IsCode(tt.status.CanEdit(), apperror.CodeInvalidState))
			}
			if tt.canDelete {
				assert.NoError(t, tt.status.CanDelete())
			} else {
				assert.True(t, apperror.IsCode(tt.status.CanDelete(), apperror.CodeInvalidState))
			}
		})
	}
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus(" partially_paid ")
	require.NoError(t, err)
	assert.Equal(t, StatusPartiallyPaid, s)

	_, err = ParseStatus("ARCHIVED")
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}

func TestDocumentTypePrefix(t *testing.T) {
	assert.Equal(t, "FA", TypeInvoice.Prefix())
	assert.Equal(t, "FA", TypeFinalInvoice.Prefix())
	assert.Equal(t, "AV", TypeDeposit.Prefix())
	assert.Equal(t, "AV", TypeCreditNote.Prefix())

	dt, err := ParseDocumentType("credit_note")
	require.NoError(t, err)
	assert.Equal(t, TypeCreditNote, dt)

	_, err = ParseDocumentType("QUOTE")
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}
