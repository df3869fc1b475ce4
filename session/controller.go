package session

import (
	"sync"
	"sync/atomic"

	"github.com/kbukum/restkit/errors"
	"github.com/kbukum/restkit/validation"
)

// Params configures a new LoginController.
type Params struct {
	Username      string
	Organization  string
	BaseURL       string
	Credential    Credential
	Impersonation string
	Headers       Headers
}

// LoginController holds the authentication material of one session.
// Reads go through Snapshot; every setter takes the write lock.
type LoginController struct {
	mu            sync.RWMutex
	username      string
	organization  string
	baseURL       string
	credential    Credential
	impersonation string
	headers       Headers

	rotating atomic.Bool
}

// NewLoginController validates p and returns a controller.
func NewLoginController(p Params) (*LoginController, error) {
	p.Headers.ApplyDefaults()
	err := validation.New().
		Required("username", p.Username).
		Required("organization", p.Organization).
		HTTPURL("base_url", p.BaseURL).
		Validate()
	if err != nil {
		return nil, err
	}
	if err := p.Headers.Validate(); err != nil {
		return nil, err
	}
	if err := p.Credential.Validate(); err != nil {
		return nil, err
	}
	return &LoginController{
		username:      p.Username,
		organization:  p.Organization,
		baseURL:       trimSlash(p.BaseURL),
		credential:    p.Credential,
		impersonation: p.Impersonation,
		headers:       p.Headers,
	}, nil
}

// Snapshot is a consistent, immutable copy of a controller's state.
type Snapshot struct {
	Username      string
	Organization  string
	BaseURL       string
	Credential    Credential
	Impersonation string
	Headers       Headers
}

// Snapshot copies the current state under the read lock.
func (c *LoginController) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Snapshot{
		Username:      c.username,
		Organization:  c.organization,
		BaseURL:       c.baseURL,
		Credential:    c.credential,
		Impersonation: c.impersonation,
		Headers:       c.headers,
	}
}

// Credential returns the current credential.
func (c *LoginController) Credential() Credential {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.credential
}

// SetCredential replaces the credential. Setting a password drops any API
// key and vice versa.
func (c *LoginController) SetCredential(cred Credential) error {
	if err := cred.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	c.credential = cred
	c.mu.Unlock()
	return nil
}

// Impersonate makes subsequent exchanges act on behalf of target.
func (c *LoginController) Impersonate(target string) {
	c.mu.Lock()
	c.impersonation = target
	c.mu.Unlock()
}

// StopImpersonating clears the impersonation target.
func (c *LoginController) StopImpersonating() { c.Impersonate("") }

// BeginRotation claims the single rotation slot of this controller. The
// returned func releases it and is safe to call more than once.
func (c *LoginController) BeginRotation() (release func(), err error) {
	if !c.rotating.CompareAndSwap(false, true) {
		return nil, errors.RotationInProgress()
	}
	var once sync.Once
	return func() { once.Do(func() { c.rotating.Store(false) }) }, nil
}

// Rotating reports whether a rotation is in flight.
func (c *LoginController) Rotating() bool { return c.rotating.Load() }

// IsImpersonating reports whether an impersonation target is set.
func (s Snapshot) IsImpersonating() bool { return s.Impersonation != "" }

// Authorization returns the Authorization header value for the current credential.
func (s Snapshot) Authorization() string {
	return s.Headers.AuthorizationScheme + " " + BasicToken(s.Username, s.Credential.Secret())
}

// AuthHeaders returns the headers an authenticated exchange carries.
func (s Snapshot) AuthHeaders() map[string]string {
	h := map[string]string{
		DefaultAuthorizationHeader: s.Authorization(),
		s.Headers.Organization:     s.Organization,
	}
	if s.IsImpersonating() {
		h[s.Headers.Impersonation] = s.Impersonation
	}
	return h
}

func trimSlash(s string) string {
	for len(s) > 0 && s[len(s)-1] == '/' {
		s = s[:len(s)-1]
	}
	return s
}
