package crypto

import (
	stdcrypto "crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"fmt"
)

// PSSSaltLength is the RSA-PSS salt length in bytes.
const PSSSaltLength = 32

var pssOptions = &rsa.PSSOptions{SaltLength: PSSSaltLength, Hash: stdcrypto.SHA256}

// Sign returns a detached RSA-PSS/SHA-256 signature over msg.
func (k SigningKey) Sign(msg []byte) ([]byte, error) {
	if k.IsZero() {
		return nil, ErrEmptyHandle
	}
	digest := sha256.Sum256(msg)
	sig, err := rsa.SignPSS(rand.Reader, k.priv, stdcrypto.SHA256, digest[:], pssOptions)
	if err != nil {
		return nil, fmt.Errorf("rsa-pss sign: %w", err)
	}
	return sig, nil
}

// Verify reports whether sig is a valid signature over msg.
func (k VerificationKey) Verify(msg, sig []byte) bool {
	if k.IsZero() {
		return false
	}
	digest := sha256.Sum256(msg)
	return rsa.VerifyPSS(k.pub, stdcrypto.SHA256, digest[:], sig, pssOptions) == nil
}
