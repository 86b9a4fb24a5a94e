package store

import (
	"errors"
	"path/filepath"
	"sync"

	"parley/internal/domain"
)

const (
	publicKeyFilename  = "public.pem"
	privateKeyFilename = "private.pem"
)

// KeyFileStore keeps the identity as two PEM files under a directory, the
// same layout a user would download and upload by hand.
type KeyFileStore struct {
	dir string
	mu  sync.Mutex
}

// NewKeyFileStore returns a KeyFileStore rooted at dir.
func NewKeyFileStore(dir string) *KeyFileStore {
	return &KeyFileStore{dir: dir}
}

// Dir returns the directory holding the PEM files.
func (s *KeyFileStore) Dir() string { return s.dir }

// SaveKeyFile writes both PEM files. The private file is already sealed
// under the password, but is still written owner-only.
func (s *KeyFileStore) SaveKeyFile(kf domain.KeyFile) error {
	if kf.IsZero() {
		return errors.New("key file is incomplete")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := writeFile(filepath.Join(s.dir, privateKeyFilename), []byte(kf.PrivateKeyPEM), 0o600); err != nil {
		return err
	}
	return writeFile(filepath.Join(s.dir, publicKeyFilename), []byte(kf.PublicKeyPEM), 0o644)
}

// LoadKeyFile reads both PEM files. ok is false when either is missing.
func (s *KeyFileStore) LoadKeyFile() (domain.KeyFile, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pub, err := readFile(filepath.Join(s.dir, publicKeyFilename))
	if err != nil {
		return domain.KeyFile{}, false, err
	}
	priv, err := readFile(filepath.Join(s.dir, privateKeyFilename))
	if err != nil {
		return domain.KeyFile{}, false, err
	}
	kf := domain.KeyFile{PublicKeyPEM: string(pub), PrivateKeyPEM: string(priv)}
	if kf.IsZero() {
		return domain.KeyFile{}, false, nil
	}
	return kf, true, nil
}

// Compile-time assertion that KeyFileStore implements domain.KeyFileStore.
var _ domain.KeyFileStore = (*KeyFileStore)(nil)
