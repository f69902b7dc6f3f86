package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"custody/internal/core/id"
)

func TestBaseDocument_Touch(t *testing.T) {
	created := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	doc := NewBaseDocument(created)

	assert.False(t, id.IsNil(doc.ID))
	assert.Equal(t, 1, doc.Version)
	assert.Equal(t, created, doc.CreatedAt)

	later := created.Add(time.Hour)
	doc.Touch(later)
	assert.Equal(t, 2, doc.Version)
	assert.Equal(t, later, doc.UpdatedAt)
	assert.Equal(t, created, doc.CreatedAt)
}
