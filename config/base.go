package config

import (
	"fmt"
	"slices"
)

// Environments accepted by BaseConfig.
var Environments = []string{"development", "staging", "production"}

// BaseConfig identifies the application embedding the SDK.
type BaseConfig struct {
	Name        string `yaml:"name" mapstructure:"name"`
	Environment string `yaml:"environment" mapstructure:"environment"`
	Version     string `yaml:"version" mapstructure:"version"`
	Debug       bool   `yaml:"debug" mapstructure:"debug"`
}

// ApplyDefaults applies default values to base configuration.
func (c *BaseConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "restkit"
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
	}
}

// Validate validates base configuration.
func (c *BaseConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("base.name is required")
	}
	if !slices.Contains(Environments, c.Environment) {
		return fmt.Errorf("base.environment must be one of %v (got: %s)", Environments, c.Environment)
	}
	return nil
}
