package app

import (
	"os"
	"path/filepath"

	"github.com/gorilla/websocket"

	"parley/internal/domain"
	"parley/internal/store"
)

const (
	// DefaultRelayURL is the relay endpoint used when none is configured.
	DefaultRelayURL = "ws://127.0.0.1:8086/ws"
	// DefaultRelayAddr is the listen address of cmd/relay.
	DefaultRelayAddr = ":8086"

	homeDirName = ".parley"
)

// Config holds runtime wiring options for building the app.
type Config struct {
	Home            string             // key and snapshot directory, e.g. $HOME/.parley
	RelayURL        string             // relay WebSocket URL, e.g. ws://127.0.0.1:8086/ws
	PeerID          domain.PeerID      // our id on the relay
	PersistSessions bool               // save peer sessions sealed under the password
	Dialer          *websocket.Dialer  // optional; defaults to websocket.DefaultDialer
	SnapshotCost    store.ScryptParams // optional; zero uses store.DefaultScryptParams
}

// DefaultHome returns $HOME/.parley, or .parley if the home directory is
// unknown.
func DefaultHome() string {
	h, err := os.UserHomeDir()
	if err != nil {
		return homeDirName
	}
	return filepath.Join(h, homeDirName)
}

func (c Config) withDefaults() Config {
	if c.Home == "" {
		c.Home = DefaultHome()
	}
	if c.RelayURL == "" {
		c.RelayURL = DefaultRelayURL
	}
	if c.Dialer == nil {
		c.Dialer = websocket.DefaultDialer
	}
	if c.SnapshotCost == (store.ScryptParams{}) {
		c.SnapshotCost = store.DefaultScryptParams
	}
	return c
}
