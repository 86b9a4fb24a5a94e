// Package main runs the parley relay: a WebSocket hub that forwards
// protocol events between connected peers.
//
// Endpoints
//
//	GET /ws?peer={id}
//	    Upgrade to a WebSocket and join as {id}. A second connection under
//	    an id that is already connected is refused with 409.
//
//	GET /peers
//	    Return {"peers": [...]} listing the connected ids.
//
// Behaviour
//
//   - All state is held in memory and lost on process exit.
//   - Events are forwarded only to peers connected at that moment; nothing
//     is queued for offline peers. The sender gets an error event instead.
//   - The default listen address is :8086.
//
// The relay is an untrusted middleman. It sees peer ids and event types but
// never plaintext or private keys: public keys, RSA-sealed secrets and
// AES-GCM message bodies pass through unchanged.
package main
