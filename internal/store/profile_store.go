package store

import (
	"errors"
	"path/filepath"
	"sync"

	"parley/internal/domain"
)

const profileFilename = "profile.json"

// ProfileFileStore persists the local relay account profile to disk.
type ProfileFileStore struct {
	dir string
	mu  sync.Mutex
}

// NewProfileFileStore returns a ProfileFileStore rooted at dir.
func NewProfileFileStore(dir string) *ProfileFileStore {
	return &ProfileFileStore{dir: dir}
}

// SaveProfile stores p, replacing any earlier profile.
func (s *ProfileFileStore) SaveProfile(p domain.Profile) error {
	if p.PeerID == "" {
		return errors.New("profile has no peer id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return writeJSON(filepath.Join(s.dir, profileFilename), p, 0o600)
}

// LoadProfile retrieves the stored profile.
func (s *ProfileFileStore) LoadProfile() (domain.Profile, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var p domain.Profile
	if err := readJSON(filepath.Join(s.dir, profileFilename), &p); err != nil {
		return domain.Profile{}, false, err
	}
	if p.PeerID == "" {
		return domain.Profile{}, false, nil
	}
	return p, true, nil
}

// Compile-time assertion that ProfileFileStore implements domain.ProfileStore.
var _ domain.ProfileStore = (*ProfileFileStore)(nil)
