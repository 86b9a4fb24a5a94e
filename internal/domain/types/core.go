package types

// PeerID identifies a peer on the relay. It is only a routing label; the
// relay does not authenticate it.
type PeerID string

// String returns the string form of the peer id.
func (p PeerID) String() string { return string(p) }

// Fingerprint is a short identifier for public keys presented to users.
type Fingerprint string

// String returns the string form of the fingerprint.
func (f Fingerprint) String() string { return string(f) }
