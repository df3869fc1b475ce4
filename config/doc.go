// Package config loads restkit configuration with Viper.
//
// A YAML file and an optional .env file are located by convention (or
// given explicitly), environment variables are layered on top, and the
// merged tree is decoded into the caller's struct. When the target
// implements Defaulter and/or Validator, defaults are applied and the
// result is validated before LoadConfig returns.
//
// # Usage
//
//	var cfg sdk.Config
//	err := config.LoadConfig("restkit", &cfg, config.WithConfigFile("restkit.yml"))
//
// Environment variables override file values using underscore-separated
// paths (e.g. SESSION_BASE_URL sets session.base_url). With WithEnvPrefix
// the prefix is stripped first (RESTKIT_SESSION_BASE_URL).
package config
