// Package wire defines the JSON framing of relay events and the translation
// the relay applies when it forwards an event from one peer to another.
package wire
