package app

import (
	"context"
	"errors"
	"fmt"

	"parley/internal/domain"
	"parley/internal/relay"
	identitysvc "parley/internal/services/identity"
	messagesvc "parley/internal/services/message"
	sessionsvc "parley/internal/services/session"
	"parley/internal/store"
)

// Wire bundles all stores and services for the CLI.
type Wire struct {
	Config Config

	KeyFiles  *store.KeyFileStore
	Profiles  *store.ProfileFileStore
	Peers     *store.PeerMemoryStore
	Snapshots *store.SessionFileStore
	Log       *store.MessageMemoryLog

	Identity *identitysvc.Service
	Sessions *sessionsvc.Service
	Messages *messagesvc.Service
}

// NewWire constructs the dependency graph from cfg. A saved profile fills
// in PeerID and RelayURL when cfg leaves them blank. It does not touch the
// network; see Dial.
func NewWire(cfg Config, opts ...identitysvc.Option) (*Wire, error) {
	if cfg.Home == "" {
		cfg.Home = DefaultHome()
	}

	// File-backed stores
	profiles := store.NewProfileFileStore(cfg.Home)
	if cfg.PeerID == "" || cfg.RelayURL == "" {
		p, ok, err := profiles.LoadProfile()
		if err != nil {
			return nil, fmt.Errorf("load profile: %w", err)
		}
		if ok {
			if cfg.PeerID == "" {
				cfg.PeerID = p.PeerID
			}
			if cfg.RelayURL == "" {
				cfg.RelayURL = p.RelayURL
			}
		}
	}
	cfg = cfg.withDefaults()

	keyFiles := store.NewKeyFileStore(cfg.Home)
	var snapshots *store.SessionFileStore
	if cfg.PersistSessions {
		snapshots = store.NewSessionFileStore(cfg.Home, store.WithScryptParams(cfg.SnapshotCost))
	}

	// In-memory state for the lifetime of one login
	peers := store.NewPeerMemoryStore()
	log := store.NewMessageMemoryLog()

	// High-level services
	var snapStore domain.SessionSnapshotStore
	if snapshots != nil {
		snapStore = snapshots
	}
	identity := identitysvc.New(keyFiles, opts...)
	sessions := sessionsvc.New(peers, snapStore)
	messages := messagesvc.New(sessions, log)

	return &Wire{
		Config:    cfg,
		KeyFiles:  keyFiles,
		Profiles:  profiles,
		Peers:     peers,
		Snapshots: snapshots,
		Log:       log,
		Identity:  identity,
		Sessions:  sessions,
		Messages:  messages,
	}, nil
}

// Dial connects to the configured relay as the configured peer.
func (w *Wire) Dial(ctx context.Context) (domain.Transport, error) {
	if w.Config.PeerID == "" {
		return nil, errors.New("no peer id configured; pass --as")
	}
	return relay.DialWith(ctx, w.Config.Dialer, w.Config.RelayURL, w.Config.PeerID)
}

// SaveProfile remembers the configured peer id and relay for later runs.
func (w *Wire) SaveProfile() error {
	return w.Profiles.SaveProfile(domain.Profile{
		PeerID:   w.Config.PeerID,
		RelayURL: w.Config.RelayURL,
	})
}
