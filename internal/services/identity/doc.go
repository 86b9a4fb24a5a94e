// Package identity creates, protects and unlocks the local long-term RSA
// identity.
//
// A new identity is one RSA-2048 key pair. The public half is stored as a
// PEM-framed SPKI key. The private half is stored as PKCS8 sealed with
// AES-256-GCM under a key derived from the password, framed as PEM. Unlocking
// reverses this and then runs an OAEP round trip, because a wrong password
// still yields a well-formed AES key and only the GCM tag or the round trip
// can tell.
package identity
