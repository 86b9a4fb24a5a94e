package domain

import (
	interfaces "parley/internal/domain/interfaces"
	types "parley/internal/domain/types"
)

// Type aliases expose domain types from the types subpackage for compact imports.
type (
	PeerID           = types.PeerID
	Fingerprint      = types.Fingerprint
	KeyFile          = types.KeyFile
	Profile          = types.Profile
	SessionState     = types.SessionState
	PeerSession      = types.PeerSession
	Message          = types.Message
	DeliveredMessage = types.DeliveredMessage
	EventType        = types.EventType
	Event            = types.Event
)

// Session states.
const (
	StateUnknown           = types.StateUnknown
	StateKeyRequested      = types.StateKeyRequested
	StateKeyEstablished    = types.StateKeyEstablished
	StateSecretSent        = types.StateSecretSent
	StateSecretReceived    = types.StateSecretReceived
	StateSecretEstablished = types.StateSecretEstablished
)

// Event types.
const (
	EventRequestPublicKey        = types.EventRequestPublicKey
	EventResponsePublicKey       = types.EventResponsePublicKey
	EventSendSecretSessionKey    = types.EventSendSecretSessionKey
	EventReceiveSecretSessionKey = types.EventReceiveSecretSessionKey
	EventSendMessage             = types.EventSendMessage
	EventReceiveMessage          = types.EventReceiveMessage
	EventShowConnections         = types.EventShowConnections
	EventConnections             = types.EventConnections
	EventError                   = types.EventError
)

// Interface aliases expose domain interfaces from the interfaces subpackage.
type (
	IdentityService      = interfaces.IdentityService
	SessionService       = interfaces.SessionService
	MessageService       = interfaces.MessageService
	KeyFileStore         = interfaces.KeyFileStore
	ProfileStore         = interfaces.ProfileStore
	PeerStore            = interfaces.PeerStore
	SessionSnapshotStore = interfaces.SessionSnapshotStore
	MessageLog           = interfaces.MessageLog
	Transport            = interfaces.Transport
)
