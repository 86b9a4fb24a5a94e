package interfaces

import domaintypes "parley/internal/domain/types"

// KeyFileStore loads and saves the protected identity key file.
type KeyFileStore interface {
	SaveKeyFile(kf domaintypes.KeyFile) error
	LoadKeyFile() (domaintypes.KeyFile, bool, error)
}

// ProfileStore remembers the relay account of the local user.
type ProfileStore interface {
	SaveProfile(p domaintypes.Profile) error
	LoadProfile() (domaintypes.Profile, bool, error)
}

// PeerStore holds per-peer session records. Update applies fn as one atomic
// read-modify-write; if fn returns an error nothing is stored.
type PeerStore interface {
	Update(
		peer domaintypes.PeerID,
		fn func(s *domaintypes.PeerSession) error,
	) (domaintypes.PeerSession, error)
	Load(peer domaintypes.PeerID) (domaintypes.PeerSession, bool)
	List() []domaintypes.PeerSession
	Replace(sessions []domaintypes.PeerSession)
	Reset()
}

// SessionSnapshotStore persists peer sessions encrypted under a password.
type SessionSnapshotStore interface {
	SaveSessions(password string, sessions []domaintypes.PeerSession) error
	LoadSessions(password string) ([]domaintypes.PeerSession, error)
}

// MessageLog keeps per-peer delivered message history.
type MessageLog interface {
	Append(peer domaintypes.PeerID, msg domaintypes.DeliveredMessage)
	History(peer domaintypes.PeerID) []domaintypes.DeliveredMessage
	Reset()
}
