// Package numerator provides domain contracts for legal invoice numbering.
// Implementations live in infrastructure layer.
package numerator

import (
	"context"
	"fmt"

	"custody/internal/core/apperror"
)

// Key identifies one independent sequence: a number prefix within a calendar year.
type Key struct {
	Prefix string
	Year   int
}

// String renders the key for logs and cache keys.
func (k Key) String() string {
	return fmt.Sprintf("%s:%04d", k.Prefix, k.Year)
}

// Validate rejects keys no counter may be created for.
func (k Key) Validate() error {
	if k.Prefix == "" {
		return apperror.NewValidation("sequence prefix is required")
	}
	if k.Year < 1 || k.Year > 9999 {
		return apperror.NewValidation("sequence year must be between 1 and 9999").
			WithDetail("year", k.Year)
	}
	return nil
}

// Allocator hands out the next integer of a (prefix, year) sequence.
// This is the domain contract - implementations live in infrastructure layer.
//
// The first call for a key returns 1. Every later call returns the previous
// value plus one. Concurrent calls on the same key never observe the same
// value; calls on different keys do not wait for each other.
// A failing store yields a retryable STORAGE_UNAVAILABLE error and no value
// is consumed.
type Allocator interface {
	Allocate(ctx context.Context, key Key) (int64, error)
}

// Observer is implemented by allocators that can account for a number assigned
// outside Allocate. Observe raises the counter of key to at least sequence and
// never lowers it, so Allocate cannot hand that number out later.
// When the allocator joins the caller's transaction, the raise commits or rolls
// back with it.
type Observer interface {
	Observe(ctx context.Context, key Key, sequence int64) error
}
