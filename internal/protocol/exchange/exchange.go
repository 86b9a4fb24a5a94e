package exchange

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"unicode/utf8"

	"parley/internal/crypto"
)

// secretBytes is the entropy of a generated secret.
const secretBytes = 18

var (
	// ErrEmptySecret is returned when asked to send an empty secret.
	ErrEmptySecret = errors.New("session secret is empty")
	// ErrInvalidSecret is returned when a decrypted secret is not valid UTF-8.
	ErrInvalidSecret = errors.New("session secret is not valid text")
)

// Seal encrypts secret for the holder of to's private key and returns it
// base64 encoded.
func Seal(secret string, to crypto.EncryptionKey) (string, error) {
	if secret == "" {
		return "", ErrEmptySecret
	}
	ct, err := to.Encrypt([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("seal session secret: %w", err)
	}
	return crypto.B64(ct), nil
}

// Open decrypts a secret produced by Seal.
func Open(encoded string, with crypto.DecryptionKey) (string, error) {
	ct, err := crypto.FromB64(encoded)
	if err != nil {
		return "", err
	}
	pt, err := with.Decrypt(ct)
	if err != nil {
		return "", fmt.Errorf("open session secret: %w", err)
	}
	if len(pt) == 0 {
		return "", ErrEmptySecret
	}
	if !utf8.Valid(pt) {
		return "", ErrInvalidSecret
	}
	return string(pt), nil
}

// GenerateSecret returns a random URL-safe secret string.
func GenerateSecret() (string, error) {
	var b [secretBytes]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", fmt.Errorf("generate secret: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b[:]), nil
}
