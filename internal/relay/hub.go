package relay

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"parley/internal/domain"
	"parley/internal/protocol/wire"
)

const (
	// PeerQueryParam names the query parameter carrying the peer id.
	PeerQueryParam = "peer"

	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxFrameBytes  = 64 << 10
	sendQueueDepth = 64
)

// HubConfig tunes a Hub.
type HubConfig struct {
	// MaxPeers bounds concurrent connections; zero means unbounded.
	MaxPeers int
	// CheckOrigin is passed to the WebSocket upgrader. nil allows any origin.
	CheckOrigin func(r *http.Request) bool
}

// Hub tracks connected peers and forwards events between them.
type Hub struct {
	cfg      HubConfig
	upgrader websocket.Upgrader

	mu    sync.RWMutex
	peers map[domain.PeerID]*peerConn
}

// peerConn is one connected peer. ws is set once the upgrade succeeds and
// only writePump writes to it.
type peerConn struct {
	id   domain.PeerID
	ws   *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

func (p *peerConn) close() {
	p.once.Do(func() { close(p.done) })
}

// NewHub returns an empty hub.
func NewHub(cfg HubConfig) *Hub {
	check := cfg.CheckOrigin
	if check == nil {
		check = func(*http.Request) bool { return true }
	}
	return &Hub{
		cfg: cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     check,
		},
		peers: make(map[domain.PeerID]*peerConn),
	}
}

// Handler returns the hub's routes: the WebSocket endpoint at /ws and a
// JSON peer list at /peers.
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.ServeWS)
	mux.HandleFunc("/peers", h.servePeers)
	return mux
}

// Peers returns the connected peer ids in sorted order.
func (h *Hub) Peers() []domain.PeerID {
	h.mu.RLock()
	out := make([]domain.PeerID, 0, len(h.peers))
	for id := range h.peers {
		out = append(out, id)
	}
	h.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (h *Hub) servePeers(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(struct {
		Peers []domain.PeerID `json:"peers"`
	}{Peers: h.Peers()})
}

// ServeWS upgrades the request and serves one peer until it disconnects.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	id := domain.PeerID(r.URL.Query().Get(PeerQueryParam))
	if id == "" {
		http.Error(w, "missing peer id", http.StatusBadRequest)
		return
	}
	p, err := h.reserve(id)
	if err != nil {
		status := http.StatusConflict
		if errors.Is(err, errHubFull) {
			status = http.StatusServiceUnavailable
		}
		http.Error(w, err.Error(), status)
		return
	}

	// Events sent to p queue up from here on, even before the upgrade
	// completes, so a peer that dials and sends at once is not refused.
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.release(id, p)
		p.close()
		logrus.WithFields(logrus.Fields{
			"function": "ServeWS",
			"peer":     id,
			"error":    err.Error(),
		}).Warn("WebSocket upgrade failed")
		return
	}
	p.ws = ws

	logrus.WithFields(logrus.Fields{
		"function": "ServeWS",
		"peer":     id,
	}).Info("Peer connected")

	go h.writePump(p)
	h.readPump(p)

	h.release(id, p)
	p.close()
	logrus.WithFields(logrus.Fields{
		"function": "ServeWS",
		"peer":     id,
	}).Info("Peer disconnected")
}

var (
	errPeerTaken = errors.New("peer id already connected")
	errHubFull   = errors.New("relay is full")
)

// reserve registers a connection for id before the upgrade, so two
// simultaneous upgrades for the same id cannot both succeed.
func (h *Hub) reserve(id domain.PeerID) (*peerConn, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.peers[id]; ok {
		return nil, errPeerTaken
	}
	if h.cfg.MaxPeers > 0 && len(h.peers) >= h.cfg.MaxPeers {
		return nil, errHubFull
	}
	p := &peerConn{
		id:   id,
		send: make(chan []byte, sendQueueDepth),
		done: make(chan struct{}),
	}
	h.peers[id] = p
	return p, nil
}

// release frees id if it still belongs to p.
func (h *Hub) release(id domain.PeerID, p *peerConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.peers[id] == p {
		delete(h.peers, id)
	}
}

func (h *Hub) readPump(p *peerConn) {
	defer p.ws.Close()
	p.ws.SetReadLimit(maxFrameBytes)
	_ = p.ws.SetReadDeadline(time.Now().Add(pongWait))
	p.ws.SetPongHandler(func(string) error {
		return p.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, frame, err := p.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logrus.WithFields(logrus.Fields{
					"function": "readPump",
					"peer":     p.id,
					"error":    err.Error(),
				}).Warn("Read error")
			}
			return
		}
		h.dispatch(p, frame)
	}
}

func (h *Hub) dispatch(p *peerConn, frame []byte) {
	ev, err := wire.Decode(frame)
	if err != nil {
		h.reply(p, wire.Errorf(p.id, "%v", err))
		return
	}

	if ev.Type == domain.EventShowConnections {
		h.reply(p, domain.Event{Type: domain.EventConnections, To: p.id, Peers: h.Peers()})
		return
	}

	out, err := wire.Forward(p.id, ev)
	if err != nil {
		h.reply(p, wire.Errorf(p.id, "%v", err))
		return
	}

	h.mu.RLock()
	target := h.peers[out.To]
	h.mu.RUnlock()
	if target == nil {
		h.reply(p, wire.Errorf(p.id, "peer %s is not connected", out.To))
		return
	}

	b, err := wire.Encode(out)
	if err != nil {
		h.reply(p, wire.Errorf(p.id, "%v", err))
		return
	}
	if !h.enqueue(target, b) {
		h.reply(p, wire.Errorf(p.id, "peer %s is not accepting events", out.To))
		return
	}
	logrus.WithFields(logrus.Fields{
		"function": "dispatch",
		"from":     p.id,
		"to":       out.To,
		"type":     out.Type,
	}).Debug("Forwarded event")
}

func (h *Hub) reply(p *peerConn, ev domain.Event) {
	b, err := wire.Encode(ev)
	if err != nil {
		return
	}
	h.enqueue(p, b)
}

// enqueue queues b for p. A peer whose queue is full is disconnected.
func (h *Hub) enqueue(p *peerConn, b []byte) bool {
	select {
	case <-p.done:
		return false
	default:
	}
	select {
	case p.send <- b:
		return true
	default:
		logrus.WithFields(logrus.Fields{
			"function": "enqueue",
			"peer":     p.id,
		}).Warn("Send queue full; dropping peer")
		p.close()
		return false
	}
}

func (h *Hub) writePump(p *peerConn) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = p.ws.Close()
	}()

	for {
		select {
		case b := <-p.send:
			_ = p.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := p.ws.WriteMessage(websocket.TextMessage, b); err != nil {
				p.close()
				return
			}
		case <-ticker.C:
			_ = p.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := p.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				p.close()
				return
			}
		case <-p.done:
			_ = p.ws.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait),
			)
			return
		}
	}
}

// Close disconnects every peer. The hub keeps accepting new connections;
// stop the HTTP server first when shutting down.
func (h *Hub) Close() {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, p := range h.peers {
		p.close()
	}
}
