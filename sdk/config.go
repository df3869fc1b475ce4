package sdk

import (
	"fmt"
	"strings"

	"github.com/kbukum/restkit/config"
	"github.com/kbukum/restkit/digest"
	"github.com/kbukum/restkit/logger"
	"github.com/kbukum/restkit/observability"
	"github.com/kbukum/restkit/resilience"
	"github.com/kbukum/restkit/session"
	"github.com/kbukum/restkit/transport"
	"github.com/kbukum/restkit/validation"
	"github.com/kbukum/restkit/version"
)

// Name is the configuration name: restkit.yml, .env.restkit, RESTKIT_* env vars.
const Name = "restkit"

// Config is the complete SDK configuration.
type Config struct {
	Base      config.BaseConfig          `yaml:"base" mapstructure:"base"`
	Session   SessionConfig              `yaml:"session" mapstructure:"session"`
	Transport transport.Config           `yaml:"transport" mapstructure:"transport"`
	Headers   session.Headers            `yaml:"headers" mapstructure:"headers"`
	Digest    digest.Config              `yaml:"digest" mapstructure:"digest"`
	Logging   logger.Config              `yaml:"logging" mapstructure:"logging"`
	Tracing   observability.TracerConfig `yaml:"tracing" mapstructure:"tracing"`
	Metrics   observability.MeterConfig  `yaml:"metrics" mapstructure:"metrics"`
	// Resilience guards outbound exchanges. Disabled unless configured.
	Resilience resilience.Config `yaml:"resilience" mapstructure:"resilience"`
}

// SessionConfig names the server and the account to log in with.
type SessionConfig struct {
	BaseURL      string `yaml:"base_url" mapstructure:"base_url" validate:"required,url"`
	APIPrefix    string `yaml:"api_prefix" mapstructure:"api_prefix"`
	Organization string `yaml:"organization" mapstructure:"organization" validate:"required_with=Username"`
	Username     string `yaml:"username" mapstructure:"username"`
	Password     string `yaml:"password" mapstructure:"password"`
	APIKey       string `yaml:"api_key" mapstructure:"api_key"`
	Impersonate  string `yaml:"impersonate" mapstructure:"impersonate"`
}

// URL joins BaseURL and APIPrefix.
func (s SessionConfig) URL() string {
	base := strings.TrimRight(s.BaseURL, "/")
	prefix := strings.Trim(s.APIPrefix, "/")
	if prefix == "" {
		return base
	}
	return base + "/" + prefix
}

// HasCredentials reports whether a login can be attempted.
func (s SessionConfig) HasCredentials() bool {
	return s.Username != "" && (s.Password != "" || s.APIKey != "")
}

// Credential returns the initial credential. An API key wins over a password.
func (s SessionConfig) Credential() session.Credential {
	if s.APIKey != "" {
		return session.APIKey(s.APIKey)
	}
	return session.Password(s.Password)
}

// ApplyDefaults fills every section.
func (c *Config) ApplyDefaults() {
	c.Base.ApplyDefaults()
	if c.Transport.UserAgent == "" {
		c.Transport.UserAgent = version.UserAgent(Name)
	}
	c.Transport.ApplyDefaults()
	c.Headers.ApplyDefaults()
	c.Digest.ApplyDefaults()
	c.Logging.ApplyDefaults()

	serviceVersion := c.Base.Version
	if serviceVersion == "" {
		serviceVersion = version.Short()
	}
	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = c.Base.Name
	}
	c.Tracing.ServiceVersion, c.Tracing.Environment = serviceVersion, c.Base.Environment
	c.Tracing.ApplyDefaults()

	if c.Metrics.ServiceName == "" {
		c.Metrics.ServiceName = c.Base.Name
	}
	c.Metrics.ServiceVersion, c.Metrics.Environment = serviceVersion, c.Base.Environment
	c.Metrics.ApplyDefaults()
	c.Resilience.ApplyDefaults()
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	if c.Session.Username != "" && !c.Session.HasCredentials() {
		return fmt.Errorf("session: password or api_key is required with a username")
	}
	checks := []func() error{
		c.Base.Validate,
		c.Transport.Validate,
		c.Headers.Validate,
		c.Digest.Validate,
		c.Logging.Validate,
		c.Tracing.Validate,
		c.Metrics.Validate,
		c.Resilience.Validate,
	}
	for _, check := range checks {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

// LoadConfig reads restkit.yml, .env files and the environment into a
// validated Config.
func LoadConfig(opts ...config.LoaderOption) (*Config, error) {
	var cfg Config
	if err := config.LoadConfig(Name, &cfg, opts...); err != nil {
		return nil, err
	}
	return &cfg, nil
}
