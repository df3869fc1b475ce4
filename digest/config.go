package digest

import "fmt"

// Algorithm names a digest scheme.
type Algorithm string

const (
	// SHA1 is the hex-encoded SHA-1 digest. Default, for server compatibility.
	SHA1 Algorithm = "sha1"
	// SHA256 is the hex-encoded SHA-256 digest.
	SHA256 Algorithm = "sha256"
	// Argon2id is an argon2id key in PHC string form with a configured salt.
	Argon2id Algorithm = "argon2id"
)

// Config configures password digesting.
// Loadable from YAML/env via mapstructure tags.
type Config struct {
	// Algorithm selects the digest scheme (default: "sha1").
	Algorithm Algorithm `yaml:"algorithm" mapstructure:"algorithm" validate:"omitempty,oneof=sha1 sha256 argon2id"`

	// Salt is the fixed salt for argon2id. Required when Algorithm is "argon2id".
	Salt string `yaml:"salt" mapstructure:"salt"`

	// Argon2Time is the number of iterations for argon2id (default: 1).
	Argon2Time uint32 `yaml:"argon2_time" mapstructure:"argon2_time"`

	// Argon2Memory is the memory usage in KiB for argon2id (default: 65536 = 64MB).
	Argon2Memory uint32 `yaml:"argon2_memory" mapstructure:"argon2_memory"`

	// Argon2Threads is the parallelism for argon2id (default: 4).
	Argon2Threads uint8 `yaml:"argon2_threads" mapstructure:"argon2_threads"`
}

// ApplyDefaults sets sensible defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Algorithm == "" {
		c.Algorithm = SHA1
	}
	if c.Argon2Time == 0 {
		c.Argon2Time = 1
	}
	if c.Argon2Memory == 0 {
		c.Argon2Memory = 64 * 1024
	}
	if c.Argon2Threads == 0 {
		c.Argon2Threads = 4
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	switch c.Algorithm {
	case SHA1, SHA256:
	case Argon2id:
		if len(c.Salt) < minSaltLen {
			return fmt.Errorf("digest.salt must be at least %d bytes for argon2id", minSaltLen)
		}
	default:
		return fmt.Errorf("digest.algorithm must be one of [sha1, sha256, argon2id] (got: %s)", c.Algorithm)
	}
	return nil
}

// New creates a Digester from configuration.
func New(cfg Config) (Digester, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Algorithm {
	case SHA256:
		return NewSHA256(), nil
	case Argon2id:
		return NewArgon2([]byte(cfg.Salt),
			WithArgon2Time(cfg.Argon2Time),
			WithArgon2Memory(cfg.Argon2Memory),
			WithArgon2Threads(cfg.Argon2Threads),
		), nil
	default:
		return NewSHA1(), nil
	}
}
