package envelope

import (
	"errors"
	"fmt"

	"parley/internal/crypto"
)

// UnverifiedMarker replaces the text of a message whose signature does not
// verify.
const UnverifiedMarker = "[unverified message: signature check failed]"

var (
	// ErrNoSecret is returned when sealing or opening without a session secret.
	ErrNoSecret = errors.New("no session secret")
	// ErrNoSigningKey is returned when sealing without a signing key.
	ErrNoSigningKey = errors.New("no signing key")
)

// Seal encrypts plaintext under the key derived from secret and signs it
// with sign. It returns base64(iv || ciphertext) and base64(signature).
func Seal(sign crypto.SigningKey, secret string, plaintext []byte) (content, signature string, err error) {
	if secret == "" {
		return "", "", ErrNoSecret
	}
	if sign.IsZero() {
		return "", "", ErrNoSigningKey
	}
	key := crypto.DeriveKey(secret)
	defer key.Wipe()

	blob, err := crypto.Seal(key, plaintext)
	if err != nil {
		return "", "", fmt.Errorf("seal message: %w", err)
	}
	sig, err := sign.Sign(plaintext)
	if err != nil {
		return "", "", fmt.Errorf("sign message: %w", err)
	}
	return crypto.B64(blob), crypto.B64(sig), nil
}

// Open decrypts content with the key derived from secret and checks
// signature against verify.
//
// Decryption failures are errors. A bad or missing signature is not: the
// plaintext is returned with verified=false and the caller must not present
// it as authentic.
func Open(
	verify crypto.VerificationKey,
	secret string,
	content string,
	signature string,
) (plaintext []byte, verified bool, err error) {
	if secret == "" {
		return nil, false, ErrNoSecret
	}
	blob, err := crypto.FromB64(content)
	if err != nil {
		return nil, false, fmt.Errorf("message content: %w", err)
	}
	key := crypto.DeriveKey(secret)
	defer key.Wipe()

	plaintext, err = crypto.Open(key, blob)
	if err != nil {
		return nil, false, fmt.Errorf("open message: %w", err)
	}

	sig, err := crypto.FromB64(signature)
	if err != nil {
		return plaintext, false, nil
	}
	return plaintext, verify.Verify(plaintext, sig), nil
}
