package store

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync"

	"parley/internal/domain"
	"parley/internal/util/memzero"
)

const sessionsFilename = "sessions.enc"

// SessionFileStore persists a snapshot of peer sessions, sealed under the
// identity password. Secrets are in the snapshot, so it is never written in
// the clear.
type SessionFileStore struct {
	dir    string
	params ScryptParams
	mu     sync.Mutex
}

// Option configures a SessionFileStore.
type Option func(*SessionFileStore)

// WithScryptParams overrides the KDF cost.
func WithScryptParams(p ScryptParams) Option {
	return func(s *SessionFileStore) { s.params = p }
}

// NewSessionFileStore returns a SessionFileStore rooted at dir.
func NewSessionFileStore(dir string, opts ...Option) *SessionFileStore {
	s := &SessionFileStore{dir: dir, params: DefaultScryptParams}
	for _, o := range opts {
		o(s)
	}
	return s
}

// SaveSessions seals sessions and replaces the snapshot file.
func (s *SessionFileStore) SaveSessions(password string, sessions []domain.PeerSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(sessions)
	if err != nil {
		return err
	}
	defer memzero.Zero(raw)

	blob, err := seal(password, raw, s.params)
	if err != nil {
		return fmt.Errorf("seal sessions: %w", err)
	}
	return writeFile(filepath.Join(s.dir, sessionsFilename), blob, 0o600)
}

// LoadSessions opens the snapshot. A missing snapshot yields no sessions.
func (s *SessionFileStore) LoadSessions(password string) ([]domain.PeerSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	blob, err := readFile(filepath.Join(s.dir, sessionsFilename))
	if err != nil {
		return nil, err
	}
	if blob == nil {
		return nil, nil
	}
	raw, err := unseal(password, blob)
	if err != nil {
		return nil, err
	}
	defer memzero.Zero(raw)

	var sessions []domain.PeerSession
	if err := json.Unmarshal(raw, &sessions); err != nil {
		return nil, fmt.Errorf("decode sessions: %w", err)
	}
	return sessions, nil
}

// Compile-time assertion that SessionFileStore implements domain.SessionSnapshotStore.
var _ domain.SessionSnapshotStore = (*SessionFileStore)(nil)
