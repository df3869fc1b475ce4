package session

import "github.com/kbukum/restkit/errors"

// Kind tells which form a Credential holds.
type Kind int

const (
	// KindNone is the zero value. It is never valid.
	KindNone Kind = iota
	// KindPassword is a plaintext password, used until rotation completes.
	KindPassword
	// KindAPIKey is the server-issued key derived from the password.
	KindAPIKey
)

func (k Kind) String() string {
	switch k {
	case KindPassword:
		return "password"
	case KindAPIKey:
		return "api_key"
	}
	return "none"
}

// Credential is a password or an API key. The two forms are mutually
// exclusive; switching form replaces the value.
type Credential struct {
	kind  Kind
	value string
}

// Password wraps a plaintext password.
func Password(v string) Credential { return Credential{kind: KindPassword, value: v} }

// APIKey wraps a server-issued API key.
func APIKey(v string) Credential { return Credential{kind: KindAPIKey, value: v} }

// Kind returns the credential form.
func (c Credential) Kind() Kind { return c.kind }

// Secret returns the raw value put on the wire.
func (c Credential) Secret() string { return c.value }

// IsPassword reports whether the credential is a plaintext password.
func (c Credential) IsPassword() bool { return c.kind == KindPassword }

// IsAPIKey reports whether the credential is an API key.
func (c Credential) IsAPIKey() bool { return c.kind == KindAPIKey }

// IsZero reports whether the credential was never set.
func (c Credential) IsZero() bool { return c.kind == KindNone }

// Validate rejects untagged and empty credentials.
func (c Credential) Validate() error {
	switch {
	case c.kind == KindNone:
		return errors.InvalidCredential("credential must be a password or an API key")
	case c.value == "":
		return errors.InvalidCredential(c.kind.String() + " must not be empty")
	}
	return nil
}

// String never prints the secret.
func (c Credential) String() string {
	return c.kind.String() + "(***)"
}
