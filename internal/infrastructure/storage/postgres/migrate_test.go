package postgres

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSchema_DeclaresCoreTables(t *testing.T) {
	schema := Schema()

	for _, fragment := range []string{
		"CREATE TABLE IF NOT EXISTS invoice_sequences",
		"PRIMARY KEY (prefix, year)",
		"CHECK (current_val > 0)",
		"CONSTRAINT invoices_number_key UNIQUE (number)",
		"REFERENCES invoices (id) ON DELETE CASCADE",
	} {
		assert.True(t, strings.Contains(schema, fragment), fragment)
	}
}
