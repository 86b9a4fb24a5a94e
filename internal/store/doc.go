// Package store provides persistence for parley's local state.
//
// On disk it keeps the identity as two PEM files (KeyFileStore) and an
// optional snapshot of peer sessions sealed with scrypt and
// chacha20poly1305 (SessionFileStore). In memory it keeps the live
// per-peer negotiation records (PeerMemoryStore) and message history
// (MessageMemoryLog). All stores are safe for concurrent use.
package store
