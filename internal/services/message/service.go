package message

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"parley/internal/crypto"
	"parley/internal/domain"
	"parley/internal/protocol/envelope"
	"parley/internal/services/session"
)

// ErrEmptyMessage is returned when composing a message with no text.
var ErrEmptyMessage = errors.New("message text is empty")

// Service seals outgoing messages, opens incoming ones and keeps history.
//
// High-level flow:
//   - Compose: look up the peer's secret, seal and sign the text, record it
//     as outgoing.
//   - Receive: look up the sender's secret, decrypt, verify against the
//     sender's recorded key, record the result. A verified message also
//     confirms a secret we proposed.
type Service struct {
	sessions domain.SessionService
	log      domain.MessageLog
	now      func() time.Time
}

// New constructs a Message Service.
func New(sessions domain.SessionService, log domain.MessageLog) *Service {
	return &Service{sessions: sessions, log: log, now: time.Now}
}

// Compose builds the wire message carrying text from from to to.
func (s *Service) Compose(
	id *crypto.Identity,
	from domain.PeerID,
	to domain.PeerID,
	text string,
) (domain.Message, error) {
	if id == nil {
		return domain.Message{}, session.ErrNoIdentity
	}
	if text == "" {
		return domain.Message{}, ErrEmptyMessage
	}
	secret, err := s.sessions.Secret(to)
	if err != nil {
		return domain.Message{}, err
	}

	content, sig, err := envelope.Seal(id.Sign, secret, []byte(text))
	if err != nil {
		return domain.Message{}, err
	}
	msg := domain.Message{
		ID:        uuid.NewString(),
		Sender:    from,
		Receiver:  to,
		Content:   content,
		Signature: sig,
		Date:      s.now().UTC().Format(time.RFC3339),
	}

	s.log.Append(to, domain.DeliveredMessage{
		ID:       msg.ID,
		Peer:     to,
		From:     from,
		To:       to,
		Text:     text,
		Verified: true,
		Outgoing: true,
		Date:     msg.Date,
	})
	logrus.WithFields(logrus.Fields{
		"function": "Compose",
		"peer":     to,
		"id":       msg.ID,
	}).Debug("Message composed")
	return msg, nil
}

// Receive opens msg from its sender.
//
// A message that does not decrypt is an error and is not recorded. A
// message whose signature does not verify, or whose sender's key is
// unknown, is recorded and returned with Text set to the unverified marker.
func (s *Service) Receive(msg domain.Message) (domain.DeliveredMessage, error) {
	peer := msg.Sender
	secret, err := s.sessions.Secret(peer)
	if err != nil {
		return domain.DeliveredMessage{}, err
	}

	var verify crypto.VerificationKey
	keys, err := s.sessions.PeerKeys(peer)
	switch {
	case err == nil:
		verify = keys.Verify
	case errors.Is(err, session.ErrNoPeerKey):
	default:
		return domain.DeliveredMessage{}, err
	}

	plaintext, verified, err := envelope.Open(verify, secret, msg.Content, msg.Signature)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Receive",
			"peer":     peer,
			"error":    err.Error(),
		}).Warn("Message could not be decrypted")
		return domain.DeliveredMessage{}, fmt.Errorf("message from %s: %w", peer, err)
	}

	text := string(plaintext)
	if !verified {
		text = envelope.UnverifiedMarker
		logrus.WithFields(logrus.Fields{
			"function": "Receive",
			"peer":     peer,
			"id":       msg.ID,
		}).Warn("Message signature did not verify")
	} else if err := s.sessions.ConfirmSecret(peer); err != nil {
		return domain.DeliveredMessage{}, err
	}

	id := msg.ID
	if id == "" {
		id = uuid.NewString()
	}
	d := domain.DeliveredMessage{
		ID:       id,
		Peer:     peer,
		From:     peer,
		To:       msg.Receiver,
		Text:     text,
		Verified: verified,
		Date:     msg.Date,
	}
	s.log.Append(peer, d)
	return d, nil
}

// History returns the messages exchanged with peer, oldest first.
func (s *Service) History(peer domain.PeerID) []domain.DeliveredMessage {
	return s.log.History(peer)
}

// Reset clears all history.
func (s *Service) Reset() {
	s.log.Reset()
}

// Compile-time assertion that Service implements domain.MessageService.
var _ domain.MessageService = (*Service)(nil)
