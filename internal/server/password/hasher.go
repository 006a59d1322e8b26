// Package password hashes and verifies user passwords. Digests are
// self-describing: bcrypt digests start with "$2", argon2id digests are PHC
// strings starting with "$argon2id$", so Multi can verify either.
package password

import (
	"fmt"
	"strings"
)

// Hasher turns a plaintext password into a salted digest and checks a
// plaintext against a digest. Verify never panics and reports false for
// malformed digests.
type Hasher interface {
	Hash(plain string) (string, error)
	Verify(plain, digest string) bool
}

// Multi hashes with a primary Hasher and verifies any digest by its prefix.
type Multi struct {
	primary Hasher
	bcrypt  *Bcrypt
	argon2  *Argon2id
}

// New returns a Multi that hashes with algorithm ("bcrypt" or "argon2id").
func New(algorithm string, bcryptCost int) (*Multi, error) {
	m := &Multi{
		bcrypt: NewBcrypt(bcryptCost),
		argon2: NewArgon2id(DefaultArgon2Params),
	}
	switch algorithm {
	case "bcrypt", "":
		m.primary = m.bcrypt
	case "argon2id":
		m.primary = m.argon2
	default:
		return nil, fmt.Errorf("unknown password hash algorithm %q", algorithm)
	}
	return m, nil
}

func (m *Multi) Hash(plain string) (string, error) {
	return m.primary.Hash(plain)
}

func (m *Multi) Verify(plain, digest string) bool {
	switch {
	case strings.HasPrefix(digest, argon2Prefix):
		return m.argon2.Verify(plain, digest)
	case strings.HasPrefix(digest, "$2"):
		return m.bcrypt.Verify(plain, digest)
	}
	return false
}
