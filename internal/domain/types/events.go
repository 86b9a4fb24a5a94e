package types

// EventType names a peer protocol event.
type EventType string

const (
	EventRequestPublicKey        EventType = "request_public_key"
	EventResponsePublicKey       EventType = "response_public_key"
	EventSendSecretSessionKey    EventType = "send_secret_session_key"
	EventReceiveSecretSessionKey EventType = "receive_secret_session_key"
	EventSendMessage             EventType = "send_message"
	EventReceiveMessage          EventType = "receive_message"
	EventShowConnections         EventType = "show_connections"
	EventConnections             EventType = "connections"
	EventError                   EventType = "error"
)

// Event is one frame exchanged with the relay. From is filled in by the
// relay; To names the destination peer.
type Event struct {
	Type      EventType `json:"type"`
	From      PeerID    `json:"from,omitempty"`
	To        PeerID    `json:"to,omitempty"`
	PublicKey string    `json:"public_key,omitempty"`
	Key       string    `json:"key,omitempty"`
	Message   *Message  `json:"message,omitempty"`
	Peers     []PeerID  `json:"peers,omitempty"`
	Error     string    `json:"error,omitempty"`
}
