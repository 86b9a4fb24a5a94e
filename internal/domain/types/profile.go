package types

// Profile is the relay account remembered for a home directory, so the
// peer id and relay need not be passed on every run.
type Profile struct {
	PeerID   PeerID `json:"peer_id"`
	RelayURL string `json:"relay_url,omitempty"`
}
