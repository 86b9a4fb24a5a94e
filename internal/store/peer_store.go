package store

import (
	"sort"
	"sync"
	"time"

	"parley/internal/domain"
)

// PeerMemoryStore holds per-peer session records in memory. Every Update
// runs under one lock, so concurrent transitions on the same peer serialise.
type PeerMemoryStore struct {
	mu       sync.Mutex
	sessions map[domain.PeerID]domain.PeerSession
	now      func() time.Time
}

// NewPeerMemoryStore returns an empty store.
func NewPeerMemoryStore() *PeerMemoryStore {
	return &PeerMemoryStore{
		sessions: make(map[domain.PeerID]domain.PeerSession),
		now:      time.Now,
	}
}

// Update applies fn to a copy of peer's record and stores the copy only if
// fn succeeds. A peer with no record starts from StateUnknown.
func (s *PeerMemoryStore) Update(
	peer domain.PeerID,
	fn func(*domain.PeerSession) error,
) (domain.PeerSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.sessions[peer]
	if !ok {
		cur = domain.PeerSession{Peer: peer, State: domain.StateUnknown}
	}
	next := cur
	if err := fn(&next); err != nil {
		return cur, err
	}
	next.Peer = peer
	next.UpdatedUTC = s.now().UTC().Unix()
	s.sessions[peer] = next
	return next, nil
}

// Load returns peer's record.
func (s *PeerMemoryStore) Load(peer domain.PeerID) (domain.PeerSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ps, ok := s.sessions[peer]
	return ps, ok
}

// List returns all records ordered by peer id.
func (s *PeerMemoryStore) List() []domain.PeerSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.PeerSession, 0, len(s.sessions))
	for _, ps := range s.sessions {
		out = append(out, ps)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Peer < out[j].Peer })
	return out
}

// Replace drops every record and installs sessions instead.
func (s *PeerMemoryStore) Replace(sessions []domain.PeerSession) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions = make(map[domain.PeerID]domain.PeerSession, len(sessions))
	for _, ps := range sessions {
		if ps.Peer == "" {
			continue
		}
		s.sessions[ps.Peer] = ps
	}
}

// Reset forgets every peer.
func (s *PeerMemoryStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = make(map[domain.PeerID]domain.PeerSession)
}

// Compile-time assertion that PeerMemoryStore implements domain.PeerStore.
var _ domain.PeerStore = (*PeerMemoryStore)(nil)
