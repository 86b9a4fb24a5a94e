package session

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"parley/internal/crypto"
	"parley/internal/domain"
	"parley/internal/protocol/exchange"
)

var (
	// ErrNoPeerKey indicates no public key is known for the peer.
	ErrNoPeerKey = errors.New("no public key for peer; request it first")
	// ErrNoSessionSecret indicates no session secret is recorded for the peer.
	ErrNoSessionSecret = errors.New("no session secret for peer")
	// ErrNoIdentity indicates an operation needs the unlocked local identity.
	ErrNoIdentity = errors.New("identity is locked")
	// ErrEmptyPeer indicates a blank peer id.
	ErrEmptyPeer = errors.New("peer id is empty")
)

// Service applies session transitions to a PeerStore and, when configured
// with a snapshot store, saves and restores them under a password.
type Service struct {
	peers     domain.PeerStore
	snapshots domain.SessionSnapshotStore
}

// New constructs a session service. snapshots may be nil, in which case Save
// and Restore do nothing.
func New(peers domain.PeerStore, snapshots domain.SessionSnapshotStore) *Service {
	return &Service{peers: peers, snapshots: snapshots}
}

// RequestKey records that we asked peer for its public key and returns the
// event to send. Only Unknown moves to KeyRequested; a peer further along
// keeps its state.
func (s *Service) RequestKey(peer domain.PeerID) (domain.Event, error) {
	if peer == "" {
		return domain.Event{}, ErrEmptyPeer
	}
	ps, err := s.peers.Update(peer, func(ps *domain.PeerSession) error {
		if ps.State == domain.StateUnknown {
			ps.State = domain.StateKeyRequested
		}
		return nil
	})
	if err != nil {
		return domain.Event{}, err
	}
	logTransition("RequestKey", ps)
	return domain.Event{Type: domain.EventRequestPublicKey, To: peer}, nil
}

// AnswerKeyRequest builds the response to a peer asking for our public key.
// Any peer may ask; the state of that peer is not changed.
func (s *Service) AnswerKeyRequest(from domain.PeerID, id *crypto.Identity) (domain.Event, error) {
	if id == nil {
		return domain.Event{}, ErrNoIdentity
	}
	pemText, err := id.PublicPEM()
	if err != nil {
		return domain.Event{}, err
	}
	logrus.WithFields(logrus.Fields{
		"function": "AnswerKeyRequest",
		"peer":     from,
	}).Debug("Answering public key request")
	return domain.Event{Type: domain.EventResponsePublicKey, To: from, PublicKey: pemText}, nil
}

// AcceptPublicKey validates and records peer's public key.
//
// The first key moves the peer to KeyEstablished, or to SecretEstablished
// when a secret had already arrived. The same key again leaves the state
// alone. A different key replaces the old one, drops any secret and moves
// the peer back to KeyEstablished.
func (s *Service) AcceptPublicKey(from domain.PeerID, publicKeyPEM string) (domain.PeerSession, error) {
	if from == "" {
		return domain.PeerSession{}, ErrEmptyPeer
	}
	spki, err := crypto.DecodePEM(publicKeyPEM, crypto.PublicKeyLabel)
	if err != nil {
		return domain.PeerSession{}, fmt.Errorf("peer public key: %w", err)
	}
	if _, err := crypto.ImportPublic(spki); err != nil {
		return domain.PeerSession{}, fmt.Errorf("peer public key: %w", err)
	}
	canonical := crypto.EncodePEM(crypto.PublicKeyLabel, spki)

	var changed bool
	ps, err := s.peers.Update(from, func(ps *domain.PeerSession) error {
		switch {
		case ps.PublicKeyPEM == canonical:
			// Same key: keep whatever progress was made.
		case ps.PublicKeyPEM != "":
			changed = true
			ps.PublicKeyPEM = canonical
			ps.Secret = ""
			ps.State = domain.StateKeyEstablished
		case ps.State == domain.StateSecretReceived:
			ps.PublicKeyPEM = canonical
			ps.State = domain.StateSecretEstablished
		default:
			ps.PublicKeyPEM = canonical
			ps.State = domain.StateKeyEstablished
		}
		return nil
	})
	if err != nil {
		return domain.PeerSession{}, err
	}
	if changed {
		logrus.WithFields(logrus.Fields{
			"function":    "AcceptPublicKey",
			"peer":        from,
			"fingerprint": crypto.Fingerprint(spki),
		}).Warn("Peer public key changed; session secret discarded")
	}
	logTransition("AcceptPublicKey", ps)
	return ps, nil
}

// ProposeSecret seals secret under peer's key, records it and returns the
// event to send. The peer must have a known key.
func (s *Service) ProposeSecret(peer domain.PeerID, secret string) (domain.Event, error) {
	keys, err := s.PeerKeys(peer)
	if err != nil {
		return domain.Event{}, err
	}
	sealed, err := exchange.Seal(secret, keys.Encrypt)
	if err != nil {
		return domain.Event{}, err
	}

	ps, err := s.peers.Update(peer, func(ps *domain.PeerSession) error {
		if !ps.State.HasPeerKey() || ps.PublicKeyPEM == "" {
			return ErrNoPeerKey
		}
		ps.Secret = secret
		ps.State = domain.StateSecretSent
		return nil
	})
	if err != nil {
		return domain.Event{}, err
	}
	logTransition("ProposeSecret", ps)
	return domain.Event{Type: domain.EventSendSecretSessionKey, To: peer, Key: sealed}, nil
}

// AcceptSecret opens a secret sent by from and records it, replacing any
// earlier one. The peer moves to SecretEstablished when its key is known,
// otherwise to SecretReceived.
func (s *Service) AcceptSecret(
	from domain.PeerID,
	encrypted string,
	id *crypto.Identity,
) (domain.PeerSession, error) {
	if from == "" {
		return domain.PeerSession{}, ErrEmptyPeer
	}
	if id == nil {
		return domain.PeerSession{}, ErrNoIdentity
	}
	secret, err := exchange.Open(encrypted, id.Decrypt)
	if err != nil {
		return domain.PeerSession{}, err
	}

	ps, err := s.peers.Update(from, func(ps *domain.PeerSession) error {
		ps.Secret = secret
		if ps.PublicKeyPEM != "" {
			ps.State = domain.StateSecretEstablished
		} else {
			ps.State = domain.StateSecretReceived
		}
		return nil
	})
	if err != nil {
		return domain.PeerSession{}, err
	}
	logTransition("AcceptSecret", ps)
	return ps, nil
}

// ConfirmSecret marks a secret we proposed as established. It is called
// once a verified message from peer shows that peer holds the secret.
func (s *Service) ConfirmSecret(peer domain.PeerID) error {
	ps, err := s.peers.Update(peer, func(ps *domain.PeerSession) error {
		if !ps.HasSecret() {
			return ErrNoSessionSecret
		}
		if ps.State == domain.StateSecretSent {
			ps.State = domain.StateSecretEstablished
		}
		return nil
	})
	if err != nil {
		return err
	}
	logTransition("ConfirmSecret", ps)
	return nil
}

// Secret returns the recorded session secret for peer.
func (s *Service) Secret(peer domain.PeerID) (string, error) {
	ps, ok := s.peers.Load(peer)
	if !ok || !ps.HasSecret() {
		return "", ErrNoSessionSecret
	}
	return ps.Secret, nil
}

// PeerKeys imports the recorded public key of peer.
func (s *Service) PeerKeys(peer domain.PeerID) (crypto.PublicKeys, error) {
	ps, ok := s.peers.Load(peer)
	if !ok || ps.PublicKeyPEM == "" {
		return crypto.PublicKeys{}, ErrNoPeerKey
	}
	spki, err := crypto.DecodePEM(ps.PublicKeyPEM, crypto.PublicKeyLabel)
	if err != nil {
		return crypto.PublicKeys{}, err
	}
	return crypto.ImportPublic(spki)
}

// Get returns the record of peer.
func (s *Service) Get(peer domain.PeerID) (domain.PeerSession, bool) {
	return s.peers.Load(peer)
}

// List returns every known peer.
func (s *Service) List() []domain.PeerSession {
	return s.peers.List()
}

// Reset forgets every peer.
func (s *Service) Reset() {
	s.peers.Reset()
}

// Save writes a snapshot of all sessions sealed under password.
func (s *Service) Save(password string) error {
	if s.snapshots == nil {
		return nil
	}
	list := s.peers.List()
	if err := s.snapshots.SaveSessions(password, list); err != nil {
		return fmt.Errorf("save sessions: %w", err)
	}
	logrus.WithFields(logrus.Fields{
		"function": "Save",
		"peers":    len(list),
	}).Debug("Session snapshot saved")
	return nil
}

// Restore replaces the live sessions with the stored snapshot. Records
// whose public key no longer imports are dropped.
func (s *Service) Restore(password string) error {
	if s.snapshots == nil {
		return nil
	}
	list, err := s.snapshots.LoadSessions(password)
	if err != nil {
		return fmt.Errorf("restore sessions: %w", err)
	}
	kept := list[:0]
	for _, ps := range list {
		if ps.PublicKeyPEM != "" && crypto.FingerprintPEM(ps.PublicKeyPEM) == "" {
			logrus.WithFields(logrus.Fields{
				"function": "Restore",
				"peer":     ps.Peer,
			}).Warn("Dropping stored session with unreadable public key")
			continue
		}
		kept = append(kept, ps)
	}
	s.peers.Replace(kept)
	logrus.WithFields(logrus.Fields{
		"function": "Restore",
		"peers":    len(kept),
	}).Debug("Session snapshot restored")
	return nil
}

func logTransition(fn string, ps domain.PeerSession) {
	logrus.WithFields(logrus.Fields{
		"function": fn,
		"peer":     ps.Peer,
		"state":    ps.State.String(),
	}).Debug("Session state updated")
}

// Compile-time assertion that Service implements domain.SessionService.
var _ domain.SessionService = (*Service)(nil)
