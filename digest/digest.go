package digest

import (
	"crypto/sha1" //nolint:gosec // required by the server's password scheme
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"hash"

	"golang.org/x/crypto/argon2"

	"github.com/kbukum/restkit/errors"
)

const minSaltLen = 8

// Digester derives the stored form of a password.
type Digester interface {
	// Digest returns the digest of plaintext. Equal inputs give equal outputs.
	Digest(plaintext string) (string, error)
}

// Func adapts an ordinary function to the Digester interface.
type Func func(plaintext string) (string, error)

// Digest calls f(plaintext).
func (f Func) Digest(plaintext string) (string, error) { return f(plaintext) }

// Matches reports whether plaintext digests to want, in constant time.
func Matches(d Digester, plaintext, want string) (bool, error) {
	got, err := d.Digest(plaintext)
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1, nil
}

// --- Hex digests ---

// HexDigester hex-encodes a stdlib hash of the plaintext.
type HexDigester struct {
	newHash func() hash.Hash
}

// NewSHA1 returns the SHA-1 hex digester.
func NewSHA1() *HexDigester { return &HexDigester{newHash: sha1.New} }

// NewSHA256 returns the SHA-256 hex digester.
func NewSHA256() *HexDigester { return &HexDigester{newHash: sha256.New} }

func (d *HexDigester) Digest(plaintext string) (string, error) {
	if plaintext == "" {
		return "", errors.InvalidCredential("digest: password must not be empty")
	}
	h := d.newHash()
	h.Write([]byte(plaintext))
	return hex.EncodeToString(h.Sum(nil)), nil
}

// --- Argon2id ---

// Argon2Digester implements Digester using argon2id with a fixed salt.
type Argon2Digester struct {
	salt    []byte
	time    uint32
	memory  uint32
	threads uint8
	keyLen  uint32
}

// Argon2Option configures the argon2id digester.
type Argon2Option func(*Argon2Digester)

// WithArgon2Time sets the number of iterations (default: 1).
func WithArgon2Time(t uint32) Argon2Option {
	return func(d *Argon2Digester) { d.time = t }
}

// WithArgon2Memory sets the memory usage in KiB (default: 64*1024 = 64MB).
func WithArgon2Memory(m uint32) Argon2Option {
	return func(d *Argon2Digester) { d.memory = m }
}

// WithArgon2Threads sets the parallelism (default: 4).
func WithArgon2Threads(t uint8) Argon2Option {
	return func(d *Argon2Digester) { d.threads = t }
}

// NewArgon2 creates an argon2id digester. Defaults: time=1, memory=64MB, threads=4.
func NewArgon2(salt []byte, opts ...Argon2Option) *Argon2Digester {
	d := &Argon2Digester{
		salt:    append([]byte(nil), salt...),
		time:    1,
		memory:  64 * 1024,
		threads: 4,
		keyLen:  32,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Digest encodes the key as $argon2id$v=19$m=MEMORY,t=TIME,p=THREADS$SALT$KEY.
func (d *Argon2Digester) Digest(plaintext string) (string, error) {
	if plaintext == "" {
		return "", errors.InvalidCredential("digest: password must not be empty")
	}
	if len(d.salt) < minSaltLen {
		return "", fmt.Errorf("digest: argon2id salt must be at least %d bytes", minSaltLen)
	}
	key := argon2.IDKey([]byte(plaintext), d.salt, d.time, d.memory, d.threads, d.keyLen)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		d.memory, d.time, d.threads,
		base64.RawStdEncoding.EncodeToString(d.salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}
