// Package app wires application dependencies for the CLI.
//
// NewWire builds the concrete stores and high-level services from Config.
// Client sits on top of a Wire and a relay transport: it logs in, answers
// key requests, records keys and secrets as they arrive, and turns user
// actions into outbound events.
package app
