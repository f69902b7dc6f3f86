package invoice

import (
	"strings"

	"custody/internal/core/apperror"
)

// DocumentType is the legal kind of an invoice document.
type DocumentType string

const (
	TypeInvoice      DocumentType = "INVOICE"
	TypeDeposit      DocumentType = "DEPOSIT"
	TypeCreditNote   DocumentType = "CREDIT_NOTE"
	TypeFinalInvoice DocumentType = "FINAL_INVOICE"
)

// Number prefixes. DEPOSIT and CREDIT_NOTE share "AV" and therefore share one
// yearly sequence; INVOICE and FINAL_INVOICE share "FA".
const (
	PrefixInvoice = "FA"
	PrefixCredit  = "AV"
)

var documentTypes = map[DocumentType]string{
	TypeInvoice:      PrefixInvoice,
	TypeFinalInvoice: PrefixInvoice,
	TypeDeposit:      PrefixCredit,
	TypeCreditNote:   PrefixCredit,
}

// Prefix returns the two-letter number prefix of the type.
func (t DocumentType) Prefix() string {
	return documentTypes[t]
}

// IsValid reports whether t is a known document type.
func (t DocumentType) IsValid() bool {
	_, ok := documentTypes[t]
	return ok
}

// ParseDocumentType converts external input into a DocumentType.
func ParseDocumentType(s string) (DocumentType, error) {
	t := DocumentType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", apperror.NewValidation("unknown document type").
			WithDetail("field", "type").
			WithDetail("value", s)
	}
	return t, nil
}
