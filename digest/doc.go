// Package digest turns a plaintext password into the value stored on the
// remote user resource during a credential rotation.
//
// A Digester must be deterministic: the same plaintext always yields the
// same digest, so the server can compare it with what it derives itself.
// Salted schemes therefore take their salt from configuration rather than
// from a random source.
//
//	d, err := digest.New(digest.Config{Algorithm: digest.SHA1})
//	hashed, err := d.Digest("s3cret")
package digest
