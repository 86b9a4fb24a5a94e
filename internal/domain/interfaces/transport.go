package interfaces

import (
	"context"

	domaintypes "parley/internal/domain/types"
)

// Transport is how the client talks to the relay: send one event, receive
// events addressed to us.
type Transport interface {
	Send(ctx context.Context, ev domaintypes.Event) error
	Events() <-chan domaintypes.Event
	Close() error
}
