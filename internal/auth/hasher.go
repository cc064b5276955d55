package auth

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"

	"golang.org/x/crypto/sha3"
)

// Hasher applies the configured one-way digest to plaintext passwords.
//
// The digest runs with no HMAC secret and no per-user salt. That is the
// stored-hash format existing deployments carry, so it cannot be changed
// unilaterally without a migration path for every stored password.
type Hasher struct {
	method string
	digest func() hash.Hash
}

// NewHasher constructs a Hasher for the named digest method.
// Supported methods: md5, sha1, sha256, sha512, sha3-256, sha3-512.
// Returns [ErrUnknownHashMethod] for anything else.
func NewHasher(method string) (*Hasher, error) {
	var digest func() hash.Hash

	switch method {
	case "md5":
		digest = md5.New
	case "sha1":
		digest = sha1.New
	case "sha256":
		digest = sha256.New
	case "sha512":
		digest = sha512.New
	case "sha3-256":
		digest = sha3.New256
	case "sha3-512":
		digest = sha3.New512
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownHashMethod, method)
	}

	return &Hasher{method: method, digest: digest}, nil
}

// Hash returns the hex-encoded digest of s. Pure function: same input,
// same output, on every call.
func (h *Hasher) Hash(s string) string {
	d := h.digest()
	d.Write([]byte(s))

	return hex.EncodeToString(d.Sum(nil))
}

// Method returns the configured digest name.
func (h *Hasher) Method() string {
	return h.method
}

// Fingerprint returns the hex-encoded SHA-1 digest of a user-agent string.
// Token rows store this fingerprint at issue time; it is always SHA-1 no
// matter which digest the password hasher is configured with, so changing
// the password hash method never invalidates outstanding tokens.
func Fingerprint(userAgent string) string {
	sum := sha1.Sum([]byte(userAgent))

	return hex.EncodeToString(sum[:])
}
