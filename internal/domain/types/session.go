package types

// SessionState tracks how far negotiation with one peer has progressed.
type SessionState uint8

const (
	StateUnknown SessionState = iota
	StateKeyRequested
	StateKeyEstablished
	StateSecretSent
	StateSecretReceived
	StateSecretEstablished
)

var stateNames = [...]string{
	StateUnknown:           "unknown",
	StateKeyRequested:      "key-requested",
	StateKeyEstablished:    "key-established",
	StateSecretSent:        "secret-sent",
	StateSecretReceived:    "secret-received",
	StateSecretEstablished: "secret-established",
}

// String returns the lower-case name of the state.
func (s SessionState) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "invalid"
}

// HasPeerKey reports whether the state implies a known peer public key.
// SecretReceived is reachable without one.
func (s SessionState) HasPeerKey() bool {
	return s == StateKeyEstablished || s == StateSecretSent || s == StateSecretEstablished
}

// PeerSession is the per-peer negotiation record.
type PeerSession struct {
	Peer         PeerID       `json:"peer"`
	State        SessionState `json:"state"`
	PublicKeyPEM string       `json:"public_key_pem,omitempty"`
	Secret       string       `json:"secret,omitempty"`
	UpdatedUTC   int64        `json:"updated_utc"`
}

// HasSecret reports whether a session secret is recorded.
func (s PeerSession) HasSecret() bool { return s.Secret != "" }
