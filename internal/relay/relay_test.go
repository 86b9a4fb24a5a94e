package relay_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parley/internal/domain"
	"parley/internal/relay"
)

func startHub(t *testing.T) (*relay.Hub, string) {
	t.Helper()
	hub := relay.NewHub(relay.HubConfig{})
	srv := httptest.NewServer(hub.Handler())
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func dial(t *testing.T, url string, id domain.PeerID) *relay.Client {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c, err := relay.Dial(ctx, url, id)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func next(t *testing.T, c *relay.Client) domain.Event {
	t.Helper()
	select {
	case ev, ok := <-c.Events():
		require.True(t, ok, "event channel closed")
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
		return domain.Event{}
	}
}

func send(t *testing.T, c *relay.Client, ev domain.Event) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, c.Send(ctx, ev))
}

func waitPeers(t *testing.T, hub *relay.Hub, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return len(hub.Peers()) == n }, 5*time.Second, 10*time.Millisecond)
}

func TestHub_ForwardsAndRewrites(t *testing.T) {
	hub, url := startHub(t)
	alice := dial(t, url, "alice")
	bob := dial(t, url, "bob")
	waitPeers(t, hub, 2)

	send(t, alice, domain.Event{Type: domain.EventRequestPublicKey, To: "bob"})
	ev := next(t, bob)
	assert.Equal(t, domain.EventRequestPublicKey, ev.Type)
	assert.Equal(t, domain.PeerID("alice"), ev.From)

	send(t, bob, domain.Event{Type: domain.EventResponsePublicKey, To: "alice", PublicKey: "pem"})
	ev = next(t, alice)
	assert.Equal(t, domain.EventResponsePublicKey, ev.Type)
	assert.Equal(t, "pem", ev.PublicKey)

	send(t, alice, domain.Event{Type: domain.EventSendSecretSessionKey, To: "bob", Key: "sealed"})
	ev = next(t, bob)
	assert.Equal(t, domain.EventReceiveSecretSessionKey, ev.Type)
	assert.Equal(t, "sealed", ev.Key)

	msg := &domain.Message{ID: "1", Sender: "alice", Receiver: "bob", Content: "ct", Signature: "sig"}
	send(t, alice, domain.Event{Type: domain.EventSendMessage, To: "bob", Message: msg})
	ev = next(t, bob)
	assert.Equal(t, domain.EventReceiveMessage, ev.Type)
	require.NotNil(t, ev.Message)
	assert.Equal(t, *msg, *ev.Message)
}

func TestHub_StampsSenderOverClaimedFrom(t *testing.T) {
	hub, url := startHub(t)
	alice := dial(t, url, "alice")
	bob := dial(t, url, "bob")
	waitPeers(t, hub, 2)

	send(t, alice, domain.Event{Type: domain.EventRequestPublicKey, From: "carol", To: "bob"})
	assert.Equal(t, domain.PeerID("alice"), next(t, bob).From)
}

func TestHub_SpoofedMessageSender(t *testing.T) {
	hub, url := startHub(t)
	mallory := dial(t, url, "mallory")
	_ = dial(t, url, "bob")
	waitPeers(t, hub, 2)

	msg := &domain.Message{Sender: "alice", Receiver: "bob", Content: "ct", Signature: "sig"}
	send(t, mallory, domain.Event{Type: domain.EventSendMessage, To: "bob", Message: msg})

	ev := next(t, mallory)
	assert.Equal(t, domain.EventError, ev.Type)
	assert.Contains(t, ev.Error, "sender")
}

func TestHub_UnknownPeer(t *testing.T) {
	hub, url := startHub(t)
	alice := dial(t, url, "alice")
	waitPeers(t, hub, 1)

	send(t, alice, domain.Event{Type: domain.EventRequestPublicKey, To: "ghost"})
	ev := next(t, alice)
	assert.Equal(t, domain.EventError, ev.Type)
	assert.Contains(t, ev.Error, "ghost")
}

func TestHub_ShowConnections(t *testing.T) {
	hub, url := startHub(t)
	alice := dial(t, url, "alice")
	_ = dial(t, url, "bob")
	waitPeers(t, hub, 2)

	send(t, alice, domain.Event{Type: domain.EventShowConnections})
	ev := next(t, alice)
	assert.Equal(t, domain.EventConnections, ev.Type)
	assert.Equal(t, []domain.PeerID{"alice", "bob"}, ev.Peers)
}

func TestHub_DuplicatePeerRejected(t *testing.T) {
	hub, url := startHub(t)
	_ = dial(t, url, "alice")
	waitPeers(t, hub, 1)

	_, err := relay.Dial(context.Background(), url, "alice")
	require.ErrorIs(t, err, relay.ErrPeerTaken)
}

func TestHub_MissingPeerID(t *testing.T) {
	hub := relay.NewHub(relay.HubConfig{})
	rec := httptest.NewRecorder()
	hub.ServeWS(rec, httptest.NewRequest(http.MethodGet, "/ws", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHub_MaxPeers(t *testing.T) {
	hub := relay.NewHub(relay.HubConfig{MaxPeers: 1})
	srv := httptest.NewServer(hub.Handler())
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	_ = dial(t, url, "alice")
	waitPeers(t, hub, 1)
	_, err := relay.Dial(context.Background(), url, "bob")
	require.Error(t, err)
}

func TestHub_PeerListEndpoint(t *testing.T) {
	hub := relay.NewHub(relay.HubConfig{})
	srv := httptest.NewServer(hub.Handler())
	defer srv.Close()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	_ = dial(t, url, "alice")
	waitPeers(t, hub, 1)

	resp, err := http.Get(srv.URL + "/peers")
	require.NoError(t, err)
	defer resp.Body.Close()
	var body struct {
		Peers []domain.PeerID `json:"peers"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, []domain.PeerID{"alice"}, body.Peers)
	hub.Close()
}

func TestHub_DisconnectFreesID(t *testing.T) {
	hub, url := startHub(t)
	c, err := relay.Dial(context.Background(), url, "alice")
	require.NoError(t, err)
	waitPeers(t, hub, 1)

	require.NoError(t, c.Close())
	waitPeers(t, hub, 0)

	_ = dial(t, url, "alice")
	waitPeers(t, hub, 1)
}

func TestClient_SendAfterClose(t *testing.T) {
	_, url := startHub(t)
	c, err := relay.Dial(context.Background(), url, "alice")
	require.NoError(t, err)
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	err = c.Send(context.Background(), domain.Event{Type: domain.EventShowConnections})
	require.ErrorIs(t, err, relay.ErrClosed)

	select {
	case _, ok := <-c.Events():
		assert.False(t, ok)
	case <-time.After(5 * time.Second):
		t.Fatal("events channel not closed")
	}
}

func TestClient_RejectsInvalidEvent(t *testing.T) {
	_, url := startHub(t)
	c := dial(t, url, "alice")
	err := c.Send(context.Background(), domain.Event{Type: "bogus"})
	require.Error(t, err)
}
