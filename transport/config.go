package transport

import (
	"fmt"
	"time"

	"github.com/kbukum/restkit/security"
)

const (
	defaultTimeout   = 5 * time.Minute
	defaultUserAgent = "restkit"
)

// Config configures the HTTP transport.
type Config struct {
	// Timeout bounds every exchange unless the request carries its own.
	// Defaults to 5m.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is sent with every request unless the request sets one.
	UserAgent string `yaml:"user_agent" mapstructure:"user_agent"`

	// Headers are default headers applied to all requests.
	Headers map[string]string `yaml:"headers" mapstructure:"headers" validate:"dive,keys,header,endkeys"`

	// TLS configures TLS settings for HTTPS endpoints.
	TLS *security.TLSConfig `yaml:"tls" mapstructure:"tls"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.UserAgent == "" {
		c.UserAgent = defaultUserAgent
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("transport: timeout must be positive")
	}
	if c.TLS != nil {
		if err := c.TLS.Validate(); err != nil {
			return fmt.Errorf("transport: %w", err)
		}
	}
	return nil
}
