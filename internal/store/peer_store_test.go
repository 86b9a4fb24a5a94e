package store_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parley/internal/domain"
	"parley/internal/store"
)

func TestPeerMemoryStore_UpdateCreates(t *testing.T) {
	s := store.NewPeerMemoryStore()

	ps, err := s.Update("bob", func(ps *domain.PeerSession) error {
		assert.Equal(t, domain.StateUnknown, ps.State)
		ps.State = domain.StateKeyRequested
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PeerID("bob"), ps.Peer)
	assert.NotZero(t, ps.UpdatedUTC)

	got, ok := s.Load("bob")
	require.True(t, ok)
	assert.Equal(t, domain.StateKeyRequested, got.State)
}

func TestPeerMemoryStore_FailedUpdateStoresNothing(t *testing.T) {
	s := store.NewPeerMemoryStore()
	boom := errors.New("boom")

	_, err := s.Update("bob", func(ps *domain.PeerSession) error {
		ps.State = domain.StateSecretEstablished
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, ok := s.Load("bob")
	assert.False(t, ok)
}

func TestPeerMemoryStore_ConcurrentUpdates(t *testing.T) {
	s := store.NewPeerMemoryStore()
	const n = 200

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.Update("bob", func(ps *domain.PeerSession) error {
				ps.Secret += "x"
				return nil
			})
		}()
	}
	wg.Wait()

	got, _ := s.Load("bob")
	assert.Len(t, got.Secret, n)
}

func TestPeerMemoryStore_ListReplaceReset(t *testing.T) {
	s := store.NewPeerMemoryStore()
	s.Replace([]domain.PeerSession{
		{Peer: "carol", State: domain.StateKeyEstablished},
		{Peer: "bob", State: domain.StateSecretSent},
		{Peer: ""},
	})

	list := s.List()
	require.Len(t, list, 2)
	assert.Equal(t, domain.PeerID("bob"), list[0].Peer)
	assert.Equal(t, domain.PeerID("carol"), list[1].Peer)

	s.Reset()
	assert.Empty(t, s.List())
}
