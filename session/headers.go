package session

import (
	"encoding/base64"

	"github.com/kbukum/restkit/validation"
)

// Default header names and authorization scheme.
const (
	DefaultAuthorizationHeader = "Authorization"
	DefaultScheme              = "XREST"
	DefaultOrganizationHeader  = "X-Organization"
	DefaultImpersonationHeader = "X-Impersonate"
)

// Headers names the headers a session contributes to a request.
type Headers struct {
	AuthorizationScheme string `yaml:"authorization_scheme" mapstructure:"authorization_scheme"`
	Organization        string `yaml:"organization" mapstructure:"organization" validate:"omitempty,header"`
	Impersonation       string `yaml:"impersonation" mapstructure:"impersonation" validate:"omitempty,header"`
}

// ApplyDefaults fills unset names.
func (h *Headers) ApplyDefaults() {
	if h.AuthorizationScheme == "" {
		h.AuthorizationScheme = DefaultScheme
	}
	if h.Organization == "" {
		h.Organization = DefaultOrganizationHeader
	}
	if h.Impersonation == "" {
		h.Impersonation = DefaultImpersonationHeader
	}
}

// Validate checks the header names.
func (h *Headers) Validate() error {
	return validation.New().
		Required("headers.authorization_scheme", h.AuthorizationScheme).
		HeaderName("headers.organization", h.Organization).
		HeaderName("headers.impersonation", h.Impersonation).
		Validate()
}

// BasicToken encodes "user:secret" the way the Authorization header carries it.
func BasicToken(username, secret string) string {
	return base64.StdEncoding.EncodeToString([]byte(username + ":" + secret))
}
