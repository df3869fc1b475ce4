package testutil

import (
	"context"

	"github.com/kbukum/restkit/component"
)

// TestComponent extends component.Component with state control for tests.
type TestComponent interface {
	component.Component

	// Reset restores the component to its initial state.
	Reset(ctx context.Context) error

	// Snapshot captures the current state of the component.
	Snapshot(ctx context.Context) (any, error)

	// Restore returns to a state captured by Snapshot.
	Restore(ctx context.Context, snapshot any) error
}
