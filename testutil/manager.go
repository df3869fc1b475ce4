package testutil

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Manager drives the lifecycle of several test components. Components
// start in the order they were added and stop in reverse.
type Manager struct {
	ctx        context.Context
	mu         sync.RWMutex
	components []TestComponent
	started    int
}

// NewManager creates a manager.
func NewManager(ctx context.Context) *Manager {
	return &Manager{ctx: ctx}
}

// Add registers a component.
func (m *Manager) Add(c TestComponent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.components = append(m.components, c)
}

// Get returns the component with the given name, or nil.
func (m *Manager) Get(name string) TestComponent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.components {
		if c.Name() == name {
			return c
		}
	}
	return nil
}

// StartAll starts every component. When one fails, the components started
// before it are stopped again.
func (m *Manager) StartAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, c := range m.components {
		if err := c.Start(m.ctx); err != nil {
			m.started = i
			startErr := fmt.Errorf("failed to start component %s: %w", c.Name(), err)
			return errors.Join(startErr, m.stopStarted())
		}
	}
	m.started = len(m.components)
	return nil
}

// StopAll stops the started components in reverse order and joins their errors.
func (m *Manager) StopAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopStarted()
}

func (m *Manager) stopStarted() error {
	var errs []error
	for i := m.started - 1; i >= 0; i-- {
		c := m.components[i]
		if err := c.Stop(m.ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop component %s: %w", c.Name(), err))
		}
	}
	m.started = 0
	return errors.Join(errs...)
}

// ResetAll resets every component, stopping at the first failure.
func (m *Manager) ResetAll() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.components {
		if err := c.Reset(m.ctx); err != nil {
			return fmt.Errorf("failed to reset component %s: %w", c.Name(), err)
		}
	}
	return nil
}
