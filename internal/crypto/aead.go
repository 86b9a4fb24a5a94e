package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
)

const (
	// IVSize is the AES-GCM nonce length prepended to every sealed blob.
	IVSize = 12
	// TagSize is the AES-GCM authentication tag length.
	TagSize = 16
)

// SealedBlob is iv || AES-GCM(ciphertext+tag). It is the shape of both the
// protected private key and every message body.
type SealedBlob struct {
	IV         [IVSize]byte
	Ciphertext []byte
}

// Bytes returns iv || ciphertext.
func (b SealedBlob) Bytes() []byte {
	out := make([]byte, 0, IVSize+len(b.Ciphertext))
	out = append(out, b.IV[:]...)
	return append(out, b.Ciphertext...)
}

// ParseSealedBlob splits raw into IV and ciphertext+tag.
func ParseSealedBlob(raw []byte) (SealedBlob, error) {
	if len(raw) < IVSize+TagSize {
		return SealedBlob{}, fmt.Errorf("%w: sealed blob is %d bytes, need at least %d",
			ErrDecodeFailure, len(raw), IVSize+TagSize)
	}
	var b SealedBlob
	copy(b.IV[:], raw[:IVSize])
	b.Ciphertext = append([]byte(nil), raw[IVSize:]...)
	return b, nil
}

// Seal encrypts plaintext under key with a fresh random IV and returns
// iv || ciphertext || tag.
func Seal(key SymmetricKey, plaintext []byte) ([]byte, error) {
	blob, err := SealBlob(key, plaintext)
	if err != nil {
		return nil, err
	}
	return blob.Bytes(), nil
}

// SealBlob is Seal without the final concatenation.
func SealBlob(key SymmetricKey, plaintext []byte) (SealedBlob, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return SealedBlob{}, err
	}
	var b SealedBlob
	if _, err := rand.Read(b.IV[:]); err != nil {
		return SealedBlob{}, fmt.Errorf("generate iv: %w", err)
	}
	b.Ciphertext = gcm.Seal(nil, b.IV[:], plaintext, nil)
	return b, nil
}

// Open reverses Seal. A tag mismatch is ErrAuthenticationFailed; it never
// yields partial or empty plaintext.
func Open(key SymmetricKey, raw []byte) ([]byte, error) {
	b, err := ParseSealedBlob(raw)
	if err != nil {
		return nil, err
	}
	return OpenBlob(key, b)
}

// OpenBlob is Open on an already split blob.
func OpenBlob(key SymmetricKey, b SealedBlob) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	pt, err := gcm.Open(nil, b.IV[:], b.Ciphertext, nil)
	if err != nil {
		return nil, ErrAuthenticationFailed
	}
	return pt, nil
}

func newGCM(key SymmetricKey) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return gcm, nil
}
