// Package exchange transports a per-peer session secret through the peer's
// long-term RSA key.
//
// The secret is a short string chosen by either side. It travels as
// base64(RSA-OAEP(secret)) and is never used as a key directly; both peers
// run it through the same PBKDF2 derivation to reach the AES key.
package exchange
