// Package envelope seals and opens chat message bodies.
//
// A body is encrypted with AES-256-GCM under a key derived from the peer's
// session secret, and the plaintext (not the ciphertext) is signed with the
// sender's RSA-PSS key. A receiver therefore decrypts first and verifies
// second.
package envelope
