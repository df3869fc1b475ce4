// Package validation checks restkit inputs before anything goes on the wire.
//
// Struct tag validation (go-playground/validator) covers configuration
// sections; the chaining Validator covers programmatic checks such as
// request methods and session parameters. Both report an
// errors.AppError with code INVALID_INPUT and the offending fields in
// Details["fields"].
//
// # Struct Tag Validation
//
//	type SessionConfig struct {
//	    BaseURL string `mapstructure:"base_url" validate:"required,url"`
//	}
//	err := validation.Validate(cfg)
//
// # Programmatic Validation
//
//	err := validation.New().
//	    Required("username", username).
//	    HTTPURL("base_url", baseURL).
//	    Validate()
package validation
