package resilience

import (
	"fmt"
	"time"
)

// Config enables and sizes the guards. The zero value disables all of them.
type Config struct {
	Breaker  BreakerConfig  `yaml:"breaker" mapstructure:"breaker"`
	Bulkhead BulkheadConfig `yaml:"bulkhead" mapstructure:"bulkhead"`
	Limiter  LimiterConfig  `yaml:"limiter" mapstructure:"limiter"`
}

// BreakerConfig configures a Breaker.
type BreakerConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// MaxFailures is the number of consecutive failures that open the breaker.
	MaxFailures int `yaml:"max_failures" mapstructure:"max_failures" validate:"gte=0"`
	// Cooldown is how long the breaker stays open before probing.
	Cooldown time.Duration `yaml:"cooldown" mapstructure:"cooldown"`
	// Probes is the number of exchanges let through while half-open.
	Probes int `yaml:"probes" mapstructure:"probes" validate:"gte=0"`
}

// BulkheadConfig configures a Bulkhead.
type BulkheadConfig struct {
	// MaxInFlight bounds concurrent exchanges. 0 disables the bulkhead.
	MaxInFlight int `yaml:"max_in_flight" mapstructure:"max_in_flight" validate:"gte=0"`
	// MaxWait is how long to wait for a slot. 0 fails at once.
	MaxWait time.Duration `yaml:"max_wait" mapstructure:"max_wait"`
}

// LimiterConfig configures a Limiter.
type LimiterConfig struct {
	// Rate is the sustained number of exchanges per second. 0 disables the limiter.
	Rate float64 `yaml:"rate" mapstructure:"rate" validate:"gte=0"`
	// Burst is the bucket size. Defaults to Rate, at least 1.
	Burst int `yaml:"burst" mapstructure:"burst" validate:"gte=0"`
}

// ApplyDefaults fills unset sizes of enabled guards.
func (c *Config) ApplyDefaults() {
	if c.Breaker.Enabled {
		if c.Breaker.MaxFailures <= 0 {
			c.Breaker.MaxFailures = 5
		}
		if c.Breaker.Cooldown <= 0 {
			c.Breaker.Cooldown = 30 * time.Second
		}
		if c.Breaker.Probes <= 0 {
			c.Breaker.Probes = 1
		}
	}
	if c.Limiter.Rate > 0 && c.Limiter.Burst <= 0 {
		c.Limiter.Burst = max(1, int(c.Limiter.Rate))
	}
}

// Validate checks the sizes.
func (c *Config) Validate() error {
	if c.Breaker.MaxFailures < 0 || c.Breaker.Probes < 0 {
		return fmt.Errorf("resilience.breaker: sizes must not be negative")
	}
	if c.Bulkhead.MaxInFlight < 0 || c.Bulkhead.MaxWait < 0 {
		return fmt.Errorf("resilience.bulkhead: sizes must not be negative")
	}
	if c.Limiter.Rate < 0 || c.Limiter.Burst < 0 {
		return fmt.Errorf("resilience.limiter: rate and burst must not be negative")
	}
	return nil
}

// Enabled reports whether any guard is on.
func (c *Config) Enabled() bool {
	return c.Breaker.Enabled || c.Bulkhead.MaxInFlight > 0 || c.Limiter.Rate > 0
}
