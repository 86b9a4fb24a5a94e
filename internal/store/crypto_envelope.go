package store

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"

	"parley/internal/util/memzero"
)

// snapshotFormatVersion is the current version of the sealed blob format.
const snapshotFormatVersion = 1

// ErrWrongPassword is returned when a sealed blob cannot be opened: the
// password is wrong or the file was modified.
var ErrWrongPassword = errors.New("wrong password or corrupted file")

// ScryptParams are the cost parameters of the password KDF.
type ScryptParams struct {
	N, R, P int
}

// DefaultScryptParams is the cost used for files written by the CLI.
var DefaultScryptParams = ScryptParams{N: 1 << 15, R: 8, P: 1}

// sealedFile is the on-disk JSON layout of a password-sealed payload.
type sealedFile struct {
	V      int    `json:"v"`
	Salt   []byte `json:"salt"`
	N      int    `json:"scrypt_N"`
	R      int    `json:"scrypt_r"`
	P      int    `json:"scrypt_p"`
	Cipher []byte `json:"cipher"`
}

// seal derives a key from password under a fresh salt and encrypts raw with
// chacha20poly1305. The nonce is fixed at zero since every seal uses a new
// salt and so a new key.
func seal(password string, raw []byte, p ScryptParams) ([]byte, error) {
	var salt [16]byte
	if _, err := rand.Read(salt[:]); err != nil {
		return nil, err
	}
	key, err := scrypt.Key([]byte(password), salt[:], p.N, p.R, p.P, chacha20poly1305.KeySize)
	if err != nil {
		return nil, fmt.Errorf("scrypt: %w", err)
	}
	defer memzero.Zero(key)

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	var nonce [chacha20poly1305.NonceSize]byte
	ct := aead.Seal(nil, nonce[:], raw, salt[:])

	return json.Marshal(sealedFile{
		V:      snapshotFormatVersion,
		Salt:   salt[:],
		N:      p.N,
		R:      p.R,
		P:      p.P,
		Cipher: ct,
	})
}

// unseal reverses seal.
func unseal(password string, b []byte) ([]byte, error) {
	var f sealedFile
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWrongPassword, err)
	}
	if f.V > snapshotFormatVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", f.V)
	}

	key, err := scrypt.Key([]byte(password), f.Salt, f.N, f.R, f.P, chacha20poly1305.KeySize)
	if err != nil {
		return nil, fmt.Errorf("scrypt: %w", err)
	}
	defer memzero.Zero(key)

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	var nonce [chacha20poly1305.NonceSize]byte
	pt, err := aead.Open(nil, nonce[:], f.Cipher, f.Salt)
	if err != nil {
		return nil, ErrWrongPassword
	}
	return pt, nil
}
