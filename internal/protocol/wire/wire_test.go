package wire_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parley/internal/domain"
	"parley/internal/protocol/wire"
)

func message(from, to domain.PeerID) *domain.Message {
	return &domain.Message{Sender: from, Receiver: to, Content: "Y3Q=", Signature: "c2ln", Date: "2024-01-01T00:00:00Z"}
}

func TestEncodeDecode(t *testing.T) {
	ev := domain.Event{Type: domain.EventSendMessage, To: "bob", Message: message("alice", "bob")}

	b, err := wire.Encode(ev)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"type":"send_message"`)
	assert.NotContains(t, string(b), `"public_key"`)

	got, err := wire.Decode(b)
	require.NoError(t, err)
	assert.Equal(t, ev, got)
}

func TestDecode_Rejects(t *testing.T) {
	cases := map[string]struct {
		frame string
		want  error
	}{
		"not json":        {`{`, wire.ErrMalformed},
		"unknown type":    {`{"type":"launch_missiles","to":"bob"}`, wire.ErrUnknownType},
		"key without to":  {`{"type":"request_public_key"}`, wire.ErrMissingField},
		"response no pem": {`{"type":"response_public_key","to":"bob"}`, wire.ErrMissingField},
		"secret no key":   {`{"type":"send_secret_session_key","to":"bob"}`, wire.ErrMissingField},
		"message missing": {`{"type":"send_message","to":"bob"}`, wire.ErrMissingField},
		"empty content": {
			`{"type":"send_message","to":"bob","message":{"sender":"a","receiver":"bob","content":""}}`,
			wire.ErrMissingField,
		},
		"error no text": {`{"type":"error"}`, wire.ErrMissingField},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := wire.Decode([]byte(tc.frame))
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestForward_RewritesTypes(t *testing.T) {
	got, err := wire.Forward("alice", domain.Event{Type: domain.EventSendSecretSessionKey, To: "bob", Key: "k"})
	require.NoError(t, err)
	assert.Equal(t, domain.EventReceiveSecretSessionKey, got.Type)
	assert.Equal(t, domain.PeerID("alice"), got.From)

	got, err = wire.Forward("alice", domain.Event{Type: domain.EventSendMessage, To: "bob", Message: message("alice", "bob")})
	require.NoError(t, err)
	assert.Equal(t, domain.EventReceiveMessage, got.Type)

	got, err = wire.Forward("alice", domain.Event{Type: domain.EventRequestPublicKey, To: "bob"})
	require.NoError(t, err)
	assert.Equal(t, domain.EventRequestPublicKey, got.Type)
}

func TestForward_StampsFrom(t *testing.T) {
	got, err := wire.Forward("alice", domain.Event{Type: domain.EventResponsePublicKey, From: "mallory", To: "bob", PublicKey: "pem"})
	require.NoError(t, err)
	assert.Equal(t, domain.PeerID("alice"), got.From)
}

func TestForward_RejectsSpoofedSender(t *testing.T) {
	_, err := wire.Forward("mallory", domain.Event{Type: domain.EventSendMessage, To: "bob", Message: message("alice", "bob")})
	require.ErrorIs(t, err, wire.ErrSpoofedSender)
}

func TestForward_RejectsRelayOnlyEvents(t *testing.T) {
	for _, ev := range []domain.Event{
		{Type: domain.EventReceiveMessage, To: "bob", Message: message("alice", "bob")},
		{Type: domain.EventReceiveSecretSessionKey, To: "bob", Key: "k"},
		{Type: domain.EventConnections},
		{Type: domain.EventError, Error: "x"},
	} {
		_, err := wire.Forward("alice", ev)
		require.ErrorIs(t, err, wire.ErrNotForwardable, ev.Type)
	}
}

func TestForward_DoesNotAliasMessage(t *testing.T) {
	in := domain.Event{Type: domain.EventSendMessage, To: "bob", Message: message("alice", "bob")}
	out, err := wire.Forward("alice", in)
	require.NoError(t, err)
	out.Message.Content = "changed"
	assert.Equal(t, "Y3Q=", in.Message.Content)
}
