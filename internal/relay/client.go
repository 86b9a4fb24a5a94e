package relay

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"parley/internal/domain"
	"parley/internal/protocol/wire"
)

var (
	// ErrClosed is returned by Send after Close or after the relay hung up.
	ErrClosed = errors.New("relay connection closed")
	// ErrPeerTaken is returned by Dial when the relay already has a
	// connection under the requested peer id.
	ErrPeerTaken = errors.New("peer id already in use on relay")
)

// Client is one peer's connection to a Hub. It implements domain.Transport.
type Client struct {
	id     domain.PeerID
	ws     *websocket.Conn
	events chan domain.Event

	writeMu sync.Mutex
	done    chan struct{}
	once    sync.Once
}

// Dial connects to the relay at relayURL (ws:// or wss://) as peer id.
func Dial(ctx context.Context, relayURL string, id domain.PeerID) (*Client, error) {
	return DialWith(ctx, websocket.DefaultDialer, relayURL, id)
}

// DialWith is Dial with a caller-supplied dialer.
func DialWith(ctx context.Context, d *websocket.Dialer, relayURL string, id domain.PeerID) (*Client, error) {
	if id == "" {
		return nil, errors.New("peer id is empty")
	}
	u, err := url.Parse(relayURL)
	if err != nil {
		return nil, fmt.Errorf("relay url: %w", err)
	}
	q := u.Query()
	q.Set(PeerQueryParam, string(id))
	u.RawQuery = q.Encode()

	ws, resp, err := d.DialContext(ctx, u.String(), nil)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusConflict {
			return nil, fmt.Errorf("%w: %s", ErrPeerTaken, id)
		}
		if resp != nil {
			return nil, fmt.Errorf("dial relay %s: %w (%s)", u.Redacted(), err, resp.Status)
		}
		return nil, fmt.Errorf("dial relay %s: %w", u.Redacted(), err)
	}

	c := &Client{
		id:     id,
		ws:     ws,
		events: make(chan domain.Event, sendQueueDepth),
		done:   make(chan struct{}),
	}
	ws.SetReadLimit(maxFrameBytes)
	go c.readLoop()

	logrus.WithFields(logrus.Fields{
		"function": "Dial",
		"relay":    u.Host,
		"peer":     id,
	}).Info("Connected to relay")
	return c, nil
}

// ID returns the peer id this client connected as.
func (c *Client) ID() domain.PeerID { return c.id }

// Events returns inbound events. The channel is closed when the
// connection ends.
func (c *Client) Events() <-chan domain.Event { return c.events }

// Send writes one event. A deadline on ctx bounds the write.
func (c *Client) Send(ctx context.Context, ev domain.Event) error {
	b, err := wire.Encode(ev)
	if err != nil {
		return err
	}
	select {
	case <-c.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(writeWait)
	}
	_ = c.ws.SetWriteDeadline(deadline)
	if err := c.ws.WriteMessage(websocket.TextMessage, b); err != nil {
		select {
		case <-c.done:
			return ErrClosed
		default:
		}
		return fmt.Errorf("send %s: %w", ev.Type, err)
	}
	return nil
}

// Close sends a close frame and tears down the connection. It is safe to
// call more than once.
func (c *Client) Close() error {
	var err error
	c.once.Do(func() {
		close(c.done)
		c.writeMu.Lock()
		_ = c.ws.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeWait),
		)
		c.writeMu.Unlock()
		err = c.ws.Close()
	})
	return err
}

func (c *Client) readLoop() {
	defer close(c.events)
	defer c.markClosed()

	for {
		_, frame, err := c.ws.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
			default:
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					logrus.WithFields(logrus.Fields{
						"function": "readLoop",
						"peer":     c.id,
						"error":    err.Error(),
					}).Warn("Relay connection lost")
				}
			}
			return
		}
		ev, err := wire.Decode(frame)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "readLoop",
				"peer":     c.id,
				"error":    err.Error(),
			}).Warn("Dropping malformed frame from relay")
			continue
		}
		select {
		case c.events <- ev:
		case <-c.done:
			return
		}
	}
}

// markClosed makes later Sends fail once the relay side has gone away.
func (c *Client) markClosed() {
	c.once.Do(func() {
		close(c.done)
		_ = c.ws.Close()
	})
}

// Compile-time assertion that Client implements domain.Transport.
var _ domain.Transport = (*Client)(nil)
