package crypto

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"fmt"
)

// Encrypt seals msg with RSA-OAEP (SHA-256, empty label).
func (k EncryptionKey) Encrypt(msg []byte) ([]byte, error) {
	if k.IsZero() {
		return nil, ErrEmptyHandle
	}
	ct, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, k.pub, msg, nil)
	if err != nil {
		return nil, fmt.Errorf("rsa-oaep encrypt: %w", err)
	}
	return ct, nil
}

// Decrypt opens an RSA-OAEP ciphertext produced by Encrypt.
func (k DecryptionKey) Decrypt(ct []byte) ([]byte, error) {
	if k.IsZero() {
		return nil, ErrEmptyHandle
	}
	pt, err := rsa.DecryptOAEP(sha256.New(), nil, k.priv, ct, nil)
	if err != nil {
		return nil, fmt.Errorf("rsa-oaep decrypt: %w", err)
	}
	return pt, nil
}
