package interfaces

import (
	"parley/internal/crypto"
	domaintypes "parley/internal/domain/types"
)

// IdentityService creates and unlocks the local long-term identity.
type IdentityService interface {
	CreateIdentity(password string) (
		domaintypes.KeyFile,
		domaintypes.Fingerprint,
		error,
	)
	Unlock(password string, kf domaintypes.KeyFile) (*crypto.Identity, error)
	Login(password string) (*crypto.Identity, error)
}

// SessionService drives the per-peer key and secret negotiation.
type SessionService interface {
	RequestKey(peer domaintypes.PeerID) (domaintypes.Event, error)
	AnswerKeyRequest(from domaintypes.PeerID, id *crypto.Identity) (domaintypes.Event, error)
	AcceptPublicKey(from domaintypes.PeerID, publicKeyPEM string) (domaintypes.PeerSession, error)
	ProposeSecret(peer domaintypes.PeerID, secret string) (domaintypes.Event, error)
	AcceptSecret(
		from domaintypes.PeerID,
		encrypted string,
		id *crypto.Identity,
	) (domaintypes.PeerSession, error)
	ConfirmSecret(peer domaintypes.PeerID) error

	Secret(peer domaintypes.PeerID) (string, error)
	PeerKeys(peer domaintypes.PeerID) (crypto.PublicKeys, error)
	Get(peer domaintypes.PeerID) (domaintypes.PeerSession, bool)
	List() []domaintypes.PeerSession
	Reset()
}

// MessageService encrypts, signs, decrypts and verifies chat messages.
type MessageService interface {
	Compose(
		id *crypto.Identity,
		from domaintypes.PeerID,
		to domaintypes.PeerID,
		text string,
	) (domaintypes.Message, error)
	Receive(msg domaintypes.Message) (domaintypes.DeliveredMessage, error)
	History(peer domaintypes.PeerID) []domaintypes.DeliveredMessage
}
