package identity

import (
	"bytes"
	"crypto/rsa"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"parley/internal/crypto"
	"parley/internal/domain"
	"parley/internal/util/memzero"
)

const (
	// minPasswordLength is the shortest password, in characters, that
	// CreateIdentity and Unlock accept.
	minPasswordLength = 8

	// selfTestMarker is the plaintext of the unlock round trip.
	selfTestMarker = "__"
)

var (
	// ErrWeakPassword is returned when the password fails the length policy.
	ErrWeakPassword = fmt.Errorf("password must be at least %d characters", minPasswordLength)

	// ErrIncorrectKeys is returned for every unlock failure: wrong password,
	// corrupted files or a private key that does not match the public key.
	ErrIncorrectKeys = errors.New("incorrect key material")

	// ErrNoIdentity is returned by Login when no key file has been created.
	ErrNoIdentity = errors.New("no identity found; run init first")
)

// Service manages identity creation and unlocking using a backing store.
type Service struct {
	store    domain.KeyFileStore
	generate func() (*rsa.PrivateKey, error)
}

// Option configures a Service.
type Option func(*Service)

// WithKeyGenerator replaces RSA key generation, mostly so tests can reuse
// pre-generated keys.
func WithKeyGenerator(fn func() (*rsa.PrivateKey, error)) Option {
	return func(s *Service) { s.generate = fn }
}

// New returns an identity service backed by the given store.
func New(s domain.KeyFileStore, opts ...Option) *Service {
	svc := &Service{store: s, generate: crypto.GenerateKeyPair}
	for _, o := range opts {
		o(svc)
	}
	return svc
}

// CreateIdentity generates a key pair, seals it under password, saves it and
// returns the key file with the public key fingerprint.
func (s *Service) CreateIdentity(password string) (domain.KeyFile, domain.Fingerprint, error) {
	if err := checkPassword(password); err != nil {
		return domain.KeyFile{}, "", err
	}

	priv, err := s.generate()
	if err != nil {
		return domain.KeyFile{}, "", err
	}
	kf, err := SealKeyFile(priv, password)
	if err != nil {
		return domain.KeyFile{}, "", err
	}
	if err := s.store.SaveKeyFile(kf); err != nil {
		return domain.KeyFile{}, "", fmt.Errorf("save key file: %w", err)
	}

	fp := domain.Fingerprint(crypto.FingerprintPEM(kf.PublicKeyPEM))
	logrus.WithFields(logrus.Fields{
		"function":    "CreateIdentity",
		"fingerprint": fp,
	}).Info("Identity created")
	return kf, fp, nil
}

// SealKeyFile exports priv as a KeyFile whose private half is sealed under
// password.
func SealKeyFile(priv *rsa.PrivateKey, password string) (domain.KeyFile, error) {
	spki, err := crypto.ExportPublic(&priv.PublicKey)
	if err != nil {
		return domain.KeyFile{}, err
	}
	pkcs8, err := crypto.ExportPrivate(priv)
	if err != nil {
		return domain.KeyFile{}, err
	}
	defer memzero.Zero(pkcs8)

	key := crypto.DeriveKey(password)
	defer key.Wipe()

	sealed, err := crypto.Seal(key, pkcs8)
	if err != nil {
		return domain.KeyFile{}, fmt.Errorf("seal private key: %w", err)
	}
	return domain.KeyFile{
		PublicKeyPEM:  crypto.EncodePEM(crypto.PublicKeyLabel, spki),
		PrivateKeyPEM: crypto.EncodePEM(crypto.PrivateKeyLabel, sealed),
	}, nil
}

// Unlock opens kf with password and returns the four key handles.
//
// Steps:
//  1. Decode both PEM blocks.
//  2. Import the public key as encryption and verification handles.
//  3. Derive the AES key from the password and open the private key blob.
//  4. Import the PKCS8 bytes as decryption and signing handles.
//  5. Encrypt a marker with the public handle and decrypt it with the
//     private one; the result must match.
//
// Any failure yields ErrIncorrectKeys and no identity. A password shorter
// than the length policy is rejected before any key material is touched; the
// error then matches both ErrIncorrectKeys and ErrWeakPassword.
func (s *Service) Unlock(password string, kf domain.KeyFile) (*crypto.Identity, error) {
	id, err := unlock(password, kf)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Unlock",
			"error":    err.Error(),
		}).Warn("Identity unlock failed")
		return nil, fmt.Errorf("%w: %w", ErrIncorrectKeys, err)
	}
	logrus.WithFields(logrus.Fields{
		"function":    "Unlock",
		"fingerprint": id.Fingerprint(),
	}).Debug("Identity unlocked")
	return id, nil
}

func unlock(password string, kf domain.KeyFile) (*crypto.Identity, error) {
	if err := checkPassword(password); err != nil {
		return nil, err
	}
	spki, err := crypto.DecodePEM(kf.PublicKeyPEM, crypto.PublicKeyLabel)
	if err != nil {
		return nil, fmt.Errorf("public key: %w", err)
	}
	sealed, err := crypto.DecodePEM(kf.PrivateKeyPEM, crypto.PrivateKeyLabel)
	if err != nil {
		return nil, fmt.Errorf("private key: %w", err)
	}
	pub, err := crypto.ImportPublic(spki)
	if err != nil {
		return nil, err
	}

	key := crypto.DeriveKey(password)
	defer key.Wipe()

	pkcs8, err := crypto.Open(key, sealed)
	if err != nil {
		return nil, fmt.Errorf("private key: %w", err)
	}
	defer memzero.Zero(pkcs8)

	dec, sig, err := crypto.ImportPrivate(pkcs8)
	if err != nil {
		return nil, err
	}
	if err := selfTest(pub.Encrypt, dec); err != nil {
		dec.Wipe()
		sig.Wipe()
		return nil, err
	}
	return crypto.NewIdentity(pub, dec, sig, spki), nil
}

// checkPassword enforces the length policy, counting characters rather
// than bytes.
func checkPassword(password string) error {
	if utf8.RuneCountInString(password) < minPasswordLength {
		return ErrWeakPassword
	}
	return nil
}

func selfTest(enc crypto.EncryptionKey, dec crypto.DecryptionKey) error {
	ct, err := enc.Encrypt([]byte(selfTestMarker))
	if err != nil {
		return fmt.Errorf("self-test encrypt: %w", err)
	}
	pt, err := dec.Decrypt(ct)
	if err != nil {
		return fmt.Errorf("self-test decrypt: %w", err)
	}
	if !bytes.Equal(pt, []byte(selfTestMarker)) {
		return errors.New("self-test mismatch")
	}
	return nil
}

// Login loads the stored key file and unlocks it.
func (s *Service) Login(password string) (*crypto.Identity, error) {
	kf, ok, err := s.store.LoadKeyFile()
	if err != nil {
		return nil, fmt.Errorf("load key file: %w", err)
	}
	if !ok {
		return nil, ErrNoIdentity
	}
	return s.Unlock(password, kf)
}

// Fingerprint returns the fingerprint of the stored public key without
// unlocking anything.
func (s *Service) Fingerprint() (domain.Fingerprint, error) {
	kf, ok, err := s.store.LoadKeyFile()
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrNoIdentity
	}
	fp := crypto.FingerprintPEM(kf.PublicKeyPEM)
	if fp == "" {
		return "", fmt.Errorf("public key: %w", crypto.ErrDecodeFailure)
	}
	return domain.Fingerprint(fp), nil
}

// KeyFile returns the stored key file.
func (s *Service) KeyFile() (domain.KeyFile, error) {
	kf, ok, err := s.store.LoadKeyFile()
	if err != nil {
		return domain.KeyFile{}, err
	}
	if !ok {
		return domain.KeyFile{}, ErrNoIdentity
	}
	return kf, nil
}

// Compile-time assertion that Service implements domain.IdentityService.
var _ domain.IdentityService = (*Service)(nil)
