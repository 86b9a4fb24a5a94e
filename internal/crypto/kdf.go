package crypto

import (
	"crypto/sha256"

	"golang.org/x/crypto/pbkdf2"

	"parley/internal/util/memzero"
)

const (
	// KeySize is the AES-256 key length in bytes.
	KeySize = 32
	// PBKDF2Iterations is the iteration count for every derivation.
	PBKDF2Iterations = 100000
)

// FixedSalt is shared by every identity so that a password alone reproduces
// the same key on any machine. Changing it breaks every existing key file.
var FixedSalt = []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

// SymmetricKey is an AES-256-GCM key.
type SymmetricKey [KeySize]byte

// Wipe zeroes the key in place.
func (k *SymmetricKey) Wipe() { memzero.Zero(k[:]) }

// DeriveKey derives the AES key for a password or session secret using the
// protocol's fixed salt and iteration count.
func DeriveKey(password string) SymmetricKey {
	return DeriveKeyWith(password, FixedSalt, PBKDF2Iterations)
}

// DeriveKeyWith runs PBKDF2-HMAC-SHA256. It is deterministic in all inputs.
func DeriveKeyWith(password string, salt []byte, iterations int) SymmetricKey {
	raw := pbkdf2.Key([]byte(password), salt, iterations, KeySize, sha256.New)
	defer memzero.Zero(raw)

	var k SymmetricKey
	copy(k[:], raw)
	return k
}
