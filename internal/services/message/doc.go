// Package message composes and receives chat messages.
//
// Bodies are sealed with the peer's session secret and signed with the
// local identity. On receipt the body is decrypted first and the signature
// checked second; a message that fails the check is delivered with a fixed
// marker in place of its text.
package message
