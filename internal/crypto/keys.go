package crypto

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"fmt"
	"math/big"
)

const (
	// KeyBits is the RSA modulus length of every generated identity.
	KeyBits = 2048
	// minKeyBits rejects imported keys weaker than the protocol allows.
	minKeyBits = 2048
)

// EncryptionKey is an RSA public key bound to OAEP encryption.
type EncryptionKey struct{ pub *rsa.PublicKey }

// VerificationKey is an RSA public key bound to PSS verification.
type VerificationKey struct{ pub *rsa.PublicKey }

// DecryptionKey is an RSA private key bound to OAEP decryption.
type DecryptionKey struct{ priv *rsa.PrivateKey }

// SigningKey is an RSA private key bound to PSS signing.
type SigningKey struct{ priv *rsa.PrivateKey }

// PublicKeys is the pair of public handles imported from one SPKI blob.
type PublicKeys struct {
	Encrypt EncryptionKey
	Verify  VerificationKey
}

// IsZero reports whether the handle holds no key.
func (k EncryptionKey) IsZero() bool { return k.pub == nil }

// IsZero reports whether the handle holds no key.
func (k VerificationKey) IsZero() bool { return k.pub == nil }

// IsZero reports whether the handle holds no key.
func (k DecryptionKey) IsZero() bool { return k.priv == nil || k.priv.D == nil || k.priv.D.Sign() == 0 }

// IsZero reports whether the handle holds no key.
func (k SigningKey) IsZero() bool { return k.priv == nil || k.priv.D == nil || k.priv.D.Sign() == 0 }

// GenerateKeyPair creates a fresh RSA-2048 key pair with e=65537.
func GenerateKeyPair() (*rsa.PrivateKey, error) {
	priv, err := rsa.GenerateKey(rand.Reader, KeyBits)
	if err != nil {
		return nil, fmt.Errorf("generate rsa key: %w", err)
	}
	return priv, nil
}

// ExportPublic serialises pub as SPKI DER.
func ExportPublic(pub *rsa.PublicKey) ([]byte, error) {
	return x509.MarshalPKIXPublicKey(pub)
}

// ExportPrivate serialises priv as PKCS8 DER. The result is sensitive.
func ExportPrivate(priv *rsa.PrivateKey) ([]byte, error) {
	return x509.MarshalPKCS8PrivateKey(priv)
}

// ExportEncryptionKey serialises the handle's key as SPKI DER.
func ExportEncryptionKey(k EncryptionKey) ([]byte, error) {
	if k.IsZero() {
		return nil, ErrEmptyHandle
	}
	return ExportPublic(k.pub)
}

// ImportPublic parses SPKI DER into an encryption and a verification
// handle. The DER is parsed once per handle.
func ImportPublic(spki []byte) (PublicKeys, error) {
	enc, err := parsePublic(spki)
	if err != nil {
		return PublicKeys{}, err
	}
	ver, err := parsePublic(spki)
	if err != nil {
		return PublicKeys{}, err
	}
	return PublicKeys{Encrypt: EncryptionKey{pub: enc}, Verify: VerificationKey{pub: ver}}, nil
}

// ImportPrivate parses PKCS8 DER into a decryption and a signing handle.
// The DER is parsed once per handle.
func ImportPrivate(pkcs8 []byte) (DecryptionKey, SigningKey, error) {
	dec, err := parsePrivate(pkcs8)
	if err != nil {
		return DecryptionKey{}, SigningKey{}, err
	}
	sig, err := parsePrivate(pkcs8)
	if err != nil {
		wipeRSA(dec)
		return DecryptionKey{}, SigningKey{}, err
	}
	return DecryptionKey{priv: dec}, SigningKey{priv: sig}, nil
}

// Wipe zeroes the private exponent and primes and drops the key.
func (k *DecryptionKey) Wipe() {
	wipeRSA(k.priv)
	k.priv = nil
}

// Wipe zeroes the private exponent and primes and drops the key.
func (k *SigningKey) Wipe() {
	wipeRSA(k.priv)
	k.priv = nil
}

func parsePublic(spki []byte) (*rsa.PublicKey, error) {
	key, err := x509.ParsePKIXPublicKey(spki)
	if err != nil {
		return nil, fmt.Errorf("%w: parse spki: %v", ErrInvalidKey, err)
	}
	pub, ok := key.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: spki holds %T, want RSA", ErrInvalidKey, key)
	}
	if pub.N.BitLen() < minKeyBits {
		return nil, fmt.Errorf("%w: rsa modulus is %d bits", ErrInvalidKey, pub.N.BitLen())
	}
	return pub, nil
}

func parsePrivate(pkcs8 []byte) (*rsa.PrivateKey, error) {
	key, err := x509.ParsePKCS8PrivateKey(pkcs8)
	if err != nil {
		return nil, fmt.Errorf("%w: parse pkcs8: %v", ErrInvalidKey, err)
	}
	priv, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%w: pkcs8 holds %T, want RSA", ErrInvalidKey, key)
	}
	if priv.N.BitLen() < minKeyBits {
		return nil, fmt.Errorf("%w: rsa modulus is %d bits", ErrInvalidKey, priv.N.BitLen())
	}
	return priv, nil
}

// wipeRSA overwrites the secret big.Int values of priv. It is best-effort:
// copies held inside the standard library's precomputed state are not
// reachable from here.
func wipeRSA(priv *rsa.PrivateKey) {
	if priv == nil {
		return
	}
	zero := func(n *big.Int) {
		if n == nil {
			return
		}
		words := n.Bits()
		for i := range words {
			words[i] = 0
		}
		n.SetInt64(0)
	}
	zero(priv.D)
	for _, p := range priv.Primes {
		zero(p)
	}
	zero(priv.Precomputed.Dp)
	zero(priv.Precomputed.Dq)
	zero(priv.Precomputed.Qinv)
}
