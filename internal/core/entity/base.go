// Package entity provides the base types shared by persisted aggregates.
package entity

import (
	"context"
	"time"

	"custody/internal/core/id"
)

// Validatable is implemented by aggregates that can check their own invariants
// without touching storage. Violations are returned as *apperror.AppError.
type Validatable interface {
	Validate(ctx context.Context) error
}

// BaseEntity is the identity and optimistic lock counter of an aggregate.
// Version starts at 1 and the repository accepts an update only when the
// stored row is exactly one version behind.
type BaseEntity struct {
	ID      id.ID `db:"id" json:"id"`
	Version int   `db:"version" json:"version"`
}

func NewBaseEntity() BaseEntity {
	return BaseEntity{ID: id.New(), Version: 1}
}

// Touch bumps the lock counter.
func (b *BaseEntity) Touch() {
	b.Version++
}

// BaseDocument adds UTC audit timestamps.
type BaseDocument struct {
	BaseEntity

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

func NewBaseDocument(now time.Time) BaseDocument {
	now = now.UTC()
	return BaseDocument{BaseEntity: NewBaseEntity(), CreatedAt: now, UpdatedAt: now}
}

// Touch records a modification at now. CreatedAt never moves.
func (b *BaseDocument) Touch(now time.Time) {
	b.UpdatedAt = now.UTC()
	b.BaseEntity.Touch()
}
