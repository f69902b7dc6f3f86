// Package domain provides cross-aggregate building blocks for domain services.
package domain

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// HookEvent names a point in an aggregate's lifecycle.
type HookEvent string

const (
	AfterCreate       HookEvent = "after_create"
	AfterUpdate       HookEvent = "after_update"
	AfterStatusChange HookEvent = "after_status_change"
	AfterDelete       HookEvent = "after_delete"
)

// Hook observes an aggregate after its change has been committed.
type Hook[T any] func(ctx context.Context, entity T) error

// HookRegistry holds hooks per event. Registration and Run may race safely.
type HookRegistry[T any] struct {
	mu    sync.RWMutex
	hooks map[HookEvent][]Hook[T]
}

func NewHookRegistry[T any]() *HookRegistry[T] {
	return &HookRegistry[T]{hooks: make(map[HookEvent][]Hook[T])}
}

// On appends hook to event's list; hooks run in registration order.
func (r *HookRegistry[T]) On(event HookEvent, hook Hook[T]) {
	r.mu.Lock()
	r.hooks[event] = append(r.hooks[event], hook)
	r.mu.Unlock()
}

// Run calls every hook for event. The change is already durable, so one
// failing hook does not stop the rest; their errors are joined.
func (r *HookRegistry[T]) Run(ctx context.Context, event HookEvent, entity T) error {
	r.mu.RLock()
	hooks := r.hooks[event]
	r.mu.RUnlock()

	var errs []error
	for i, hook := range hooks {
		if err := hook(ctx, entity); err != nil {
			errs = append(errs, fmt.Errorf("%s hook #%d: %w", event, i, err))
		}
	}
	return errors.Join(errs...)
}
