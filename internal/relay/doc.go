// Package relay moves protocol events between peers over WebSockets.
//
// Hub is the server side. Each peer holds one connection at
// /ws?peer=<id>; the hub stamps every inbound event with that id, rewrites
// send_* events into their receive_* form and writes them to the addressed
// peer. The hub never sees keys or plaintext: public keys, sealed secrets
// and sealed messages pass through unchanged.
//
// Client is the peer side and implements domain.Transport.
//
// The peer id is a routing label chosen by the peer. The relay does not
// authenticate it beyond refusing a second connection under the same id;
// message authenticity comes from signatures, not from the relay.
package relay
