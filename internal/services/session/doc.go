// Package session drives per-peer negotiation: public key exchange first,
// then a session secret sent under the peer's RSA key.
//
// Each peer moves through the states Unknown, KeyRequested, KeyEstablished,
// SecretSent, SecretReceived and SecretEstablished. Every transition is one
// atomic update of the peer's record in a domain.PeerStore, so events for
// the same peer arriving together cannot interleave.
//
// If both sides propose a secret at once, the secret recorded last on each
// side wins. Nothing reconciles the two; the sides may disagree until one
// of them proposes again.
package session
