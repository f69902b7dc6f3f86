package numerator

import (
	"context"
	"sync"
)

// MockAllocator is a test implementation of Allocator and Observer.
// Use in unit tests to avoid database dependencies.
type MockAllocator struct {
	AllocateFunc func(ctx context.Context, key Key) (int64, error)
	ObserveFunc  func(ctx context.Context, key Key, sequence int64) error

	mu       sync.Mutex
	counters map[Key]int64
}

// Allocate implements Allocator.
func (m *MockAllocator) Allocate(ctx context.Context, key Key) (int64, error) {
	if m.AllocateFunc != nil {
		return m.AllocateFunc(ctx, key)
	}
	if err := key.Validate(); err != nil {
		return 0, err
	}

	// Default: in-memory counter per key
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.counters == nil {
		m.counters = make(map[Key]int64)
	}
	m.counters[key]++
	return m.counters[key], nil
}

// Observe implements Observer.
func (m *MockAllocator) Observe(ctx context.Context, key Key, sequence int64) error {
	if m.ObserveFunc != nil {
		return m.ObserveFunc(ctx, key, sequence)
	}
	if err := key.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.counters == nil {
		m.counters = make(map[Key]int64)
	}
	if sequence > m.counters[key] {
		m.counters[key] = sequence
	}
	return nil
}

// Ensure compile-time interface compliance.
var (
	_ Allocator = (*MockAllocator)(nil)
	_ Observer  = (*MockAllocator)(nil)
)
