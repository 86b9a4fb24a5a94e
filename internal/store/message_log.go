package store

import (
	"sync"

	"parley/internal/domain"
)

// MessageMemoryLog keeps delivered messages per peer, in arrival order.
type MessageMemoryLog struct {
	mu   sync.Mutex
	msgs map[domain.PeerID][]domain.DeliveredMessage
}

// NewMessageMemoryLog returns an empty log.
func NewMessageMemoryLog() *MessageMemoryLog {
	return &MessageMemoryLog{msgs: make(map[domain.PeerID][]domain.DeliveredMessage)}
}

// Append records msg at the end of peer's history.
func (l *MessageMemoryLog) Append(peer domain.PeerID, msg domain.DeliveredMessage) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.msgs[peer] = append(l.msgs[peer], msg)
}

// History returns a copy of peer's messages.
func (l *MessageMemoryLog) History(peer domain.PeerID) []domain.DeliveredMessage {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]domain.DeliveredMessage(nil), l.msgs[peer]...)
}

// Reset forgets every peer's history.
func (l *MessageMemoryLog) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.msgs = make(map[domain.PeerID][]domain.DeliveredMessage)
}

// Compile-time assertion that MessageMemoryLog implements domain.MessageLog.
var _ domain.MessageLog = (*MessageMemoryLog)(nil)
