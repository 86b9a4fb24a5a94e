package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"parley/internal/crypto"
	"parley/internal/domain"
	"parley/internal/protocol/exchange"
	"parley/internal/relay"
)

// ErrNotLoggedIn is returned by operations that need an unlocked identity.
var ErrNotLoggedIn = errors.New("not logged in")

// Handlers receive what the client learns from the relay. Any may be nil.
type Handlers struct {
	Delivered  func(domain.DeliveredMessage)
	Session    func(domain.PeerSession)
	Peers      func([]domain.PeerID)
	RelayError func(string)
}

// Client is one logged-in peer: it reacts to relay events and turns user
// actions into outbound events.
type Client struct {
	w         *Wire
	transport domain.Transport
	handlers  Handlers

	mu       sync.RWMutex
	id       *crypto.Identity
	password string // kept only while logged in with PersistSessions
}

// NewClient returns a client that talks over t.
func NewClient(w *Wire, t domain.Transport, h Handlers) *Client {
	return &Client{w: w, transport: t, handlers: h}
}

// Me returns our peer id.
func (c *Client) Me() domain.PeerID { return c.w.Config.PeerID }

// Login unlocks the stored identity. With PersistSessions it also restores
// the saved peer sessions.
func (c *Client) Login(password string) error {
	id, err := c.w.Identity.Login(password)
	if err != nil {
		return err
	}
	if c.w.Config.PersistSessions {
		if err := c.w.Sessions.Restore(password); err != nil {
			id.Wipe()
			return err
		}
	}

	c.mu.Lock()
	if c.id != nil {
		c.id.Wipe()
	}
	c.id = id
	if c.w.Config.PersistSessions {
		c.password = password
	}
	c.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"function":    "Login",
		"peer":        c.Me(),
		"fingerprint": id.Fingerprint(),
	}).Info("Logged in")
	return nil
}

// Logout saves sessions if configured, destroys the private key and
// forgets every peer session and message.
func (c *Client) Logout() error {
	c.mu.Lock()
	id, password := c.id, c.password
	c.id, c.password = nil, ""
	id.Wipe()
	c.mu.Unlock()

	var err error
	if password != "" {
		err = c.w.Sessions.Save(password)
	}
	c.w.Sessions.Reset()
	c.w.Messages.Reset()

	logrus.WithFields(logrus.Fields{
		"function": "Logout",
		"peer":     c.Me(),
	}).Info("Logged out")
	return err
}

// Identity returns the unlocked identity, or nil. The keys are wiped by
// Logout and by a later Login, so the result must not outlive the session.
func (c *Client) Identity() *crypto.Identity {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.id
}

// withIdentity runs fn with the unlocked identity, holding the read lock
// until fn returns so the keys cannot be wiped while in use. fn must not
// send on the transport or call back into c.
func (c *Client) withIdentity(fn func(*crypto.Identity) error) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.id == nil {
		return ErrNotLoggedIn
	}
	return fn(c.id)
}

// RequestKey asks peer for its public key.
func (c *Client) RequestKey(ctx context.Context, peer domain.PeerID) error {
	ev, err := c.w.Sessions.RequestKey(peer)
	if err != nil {
		return err
	}
	return c.transport.Send(ctx, ev)
}

// ProposeSecret sends secret to peer. An empty secret is replaced by a
// random one, which is returned.
func (c *Client) ProposeSecret(ctx context.Context, peer domain.PeerID, secret string) (string, error) {
	if secret == "" {
		var err error
		if secret, err = exchange.GenerateSecret(); err != nil {
			return "", err
		}
	}
	ev, err := c.w.Sessions.ProposeSecret(peer, secret)
	if err != nil {
		return "", err
	}
	if err := c.transport.Send(ctx, ev); err != nil {
		return "", err
	}
	c.persist()
	return secret, nil
}

// SendMessage seals text for peer and sends it.
func (c *Client) SendMessage(ctx context.Context, peer domain.PeerID, text string) (domain.Message, error) {
	var msg domain.Message
	err := c.withIdentity(func(id *crypto.Identity) error {
		var err error
		msg, err = c.w.Messages.Compose(id, c.Me(), peer, text)
		return err
	})
	if err != nil {
		return domain.Message{}, err
	}
	ev := domain.Event{Type: domain.EventSendMessage, To: peer, Message: &msg}
	if err := c.transport.Send(ctx, ev); err != nil {
		return domain.Message{}, err
	}
	return msg, nil
}

// ListPeers asks the relay who is connected. The answer arrives through
// Handlers.Peers.
func (c *Client) ListPeers(ctx context.Context) error {
	return c.transport.Send(ctx, domain.Event{Type: domain.EventShowConnections})
}

// History returns the messages exchanged with peer.
func (c *Client) History(peer domain.PeerID) []domain.DeliveredMessage {
	return c.w.Messages.History(peer)
}

// HandleEvent applies one inbound event.
func (c *Client) HandleEvent(ctx context.Context, ev domain.Event) error {
	switch ev.Type {
	case domain.EventRequestPublicKey:
		var resp domain.Event
		err := c.withIdentity(func(id *crypto.Identity) error {
			var err error
			resp, err = c.w.Sessions.AnswerKeyRequest(ev.From, id)
			return err
		})
		if err != nil {
			return err
		}
		return c.transport.Send(ctx, resp)

	case domain.EventResponsePublicKey:
		ps, err := c.w.Sessions.AcceptPublicKey(ev.From, ev.PublicKey)
		if err != nil {
			return err
		}
		c.persist()
		c.notifySession(ps)
		return nil

	case domain.EventReceiveSecretSessionKey:
		var ps domain.PeerSession
		err := c.withIdentity(func(id *crypto.Identity) error {
			var err error
			ps, err = c.w.Sessions.AcceptSecret(ev.From, ev.Key, id)
			return err
		})
		if err != nil {
			return err
		}
		c.persist()
		c.notifySession(ps)
		return nil

	case domain.EventReceiveMessage:
		if ev.Message == nil {
			return errors.New("message event without message")
		}
		if ev.Message.Sender != ev.From {
			return fmt.Errorf("message sender %q does not match relay sender %q", ev.Message.Sender, ev.From)
		}
		if ev.Message.Receiver != c.Me() {
			return fmt.Errorf("message receiver %q is not us (%q)", ev.Message.Receiver, c.Me())
		}
		d, err := c.w.Messages.Receive(*ev.Message)
		if err != nil {
			return err
		}
		if h := c.handlers.Delivered; h != nil {
			h(d)
		}
		return nil

	case domain.EventConnections:
		if h := c.handlers.Peers; h != nil {
			h(ev.Peers)
		}
		return nil

	case domain.EventError:
		logrus.WithFields(logrus.Fields{
			"function": "HandleEvent",
			"error":    ev.Error,
		}).Warn("Relay reported an error")
		if h := c.handlers.RelayError; h != nil {
			h(ev.Error)
		}
		return nil

	default:
		return fmt.Errorf("unexpected event %q", ev.Type)
	}
}

// Run handles inbound events until ctx ends or the relay closes the
// connection. Errors from single events are logged and do not stop the
// loop.
func (c *Client) Run(ctx context.Context) error {
	events := c.transport.Events()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return relay.ErrClosed
			}
			if err := c.HandleEvent(ctx, ev); err != nil {
				logrus.WithFields(logrus.Fields{
					"function": "Run",
					"type":     ev.Type,
					"from":     ev.From,
					"error":    err.Error(),
				}).Warn("Failed to handle event")
			}
		}
	}
}

// Session returns the negotiation record for peer.
func (c *Client) Session(peer domain.PeerID) (domain.PeerSession, bool) {
	return c.w.Sessions.Get(peer)
}

// Ready reports whether messages to peer can be composed.
func (c *Client) Ready(peer domain.PeerID) bool {
	_, err := c.w.Sessions.Secret(peer)
	return err == nil
}

func (c *Client) notifySession(ps domain.PeerSession) {
	if h := c.handlers.Session; h != nil {
		h(ps)
	}
}

// persist saves the session snapshot when PersistSessions is on.
func (c *Client) persist() {
	c.mu.RLock()
	password := c.password
	c.mu.RUnlock()
	if password == "" {
		return
	}
	if err := c.w.Sessions.Save(password); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "persist",
			"error":    err.Error(),
		}).Warn("Failed to save session snapshot")
	}
}
