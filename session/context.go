package session

import (
	"sync"

	"github.com/kbukum/restkit/errors"
	"github.com/kbukum/restkit/logger"
)

// Context holds at most one active LoginController. It is passed
// explicitly to whatever needs the session; there is no global one.
type Context struct {
	mu      sync.RWMutex
	current *LoginController
	log     *logger.Logger
}

// NewContext creates an empty session context.
func NewContext(log *logger.Logger) *Context {
	if log == nil {
		log = logger.Nop()
	}
	return &Context{log: log.WithComponent("session")}
}

// Login installs ctrl as the active controller, replacing any previous one.
func (c *Context) Login(ctrl *LoginController) {
	snap := ctrl.Snapshot()
	c.mu.Lock()
	replaced := c.current != nil
	c.current = ctrl
	c.mu.Unlock()

	c.log.Info("session started", logger.Fields(
		logger.FieldUsername, snap.Username,
		logger.FieldOrganization, snap.Organization,
		logger.FieldURL, snap.BaseURL,
		"replaced", replaced,
	))
}

// Logout tears the session down and returns the controller that was active.
func (c *Context) Logout() *LoginController {
	c.mu.Lock()
	prev := c.current
	c.current = nil
	c.mu.Unlock()

	if prev != nil {
		c.log.Info("session ended", logger.Fields(logger.FieldUsername, prev.Snapshot().Username))
	}
	return prev
}

// Current returns the active controller or NO_ACTIVE_SESSION.
func (c *Context) Current() (*LoginController, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.current == nil {
		return nil, errors.NoSession()
	}
	return c.current, nil
}

// Active reports whether a controller is installed.
func (c *Context) Active() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current != nil
}
