// Package commands defines the parley CLI and wires dependencies for subcommands.
//
// Commands
//
//   - init         Create the local identity (public.pem, private.pem)
//   - fingerprint  Print the identity fingerprint
//   - unlock       Unlock the identity and run the key self-test
//   - export       Print the PEM key files
//   - import       Install key files created elsewhere
//   - peers        List peers connected to the relay
//   - chat         Exchange keys and a secret with a peer, then chat
//
// # Implementation
//
// The root command configures logging and builds the dependency graph
// (stores and services) before any subcommand runs. Only peers and chat
// connect to the relay.
package commands
