package wire

import (
	"encoding/json"
	"errors"
	"fmt"

	"parley/internal/domain"
)

var (
	// ErrMalformed is returned for frames that are not valid JSON events.
	ErrMalformed = errors.New("malformed event")
	// ErrUnknownType is returned for an event type this protocol does not define.
	ErrUnknownType = errors.New("unknown event type")
	// ErrMissingField is returned when a required field of an event is empty.
	ErrMissingField = errors.New("missing event field")
	// ErrSpoofedSender is returned when a message names a sender other than
	// the connection that sent it.
	ErrSpoofedSender = errors.New("message sender does not match connection")
	// ErrNotForwardable is returned by Forward for events only the relay or
	// a recipient may emit.
	ErrNotForwardable = errors.New("event type cannot be sent by a client")
)

// Encode serialises ev as one JSON frame.
func Encode(ev domain.Event) ([]byte, error) {
	if err := Validate(ev); err != nil {
		return nil, err
	}
	return json.Marshal(ev)
}

// Decode parses and validates one JSON frame.
func Decode(b []byte) (domain.Event, error) {
	var ev domain.Event
	if err := json.Unmarshal(b, &ev); err != nil {
		return domain.Event{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := Validate(ev); err != nil {
		return domain.Event{}, err
	}
	return ev, nil
}

// Validate checks that ev has a known type and the fields that type needs.
// From is not checked: clients leave it empty and the relay fills it in.
func Validate(ev domain.Event) error {
	switch ev.Type {
	case domain.EventRequestPublicKey:
		return require(ev.Type, "to", string(ev.To))
	case domain.EventResponsePublicKey:
		return require(ev.Type, "to", string(ev.To), "public_key", ev.PublicKey)
	case domain.EventSendSecretSessionKey, domain.EventReceiveSecretSessionKey:
		return require(ev.Type, "to", string(ev.To), "key", ev.Key)
	case domain.EventSendMessage, domain.EventReceiveMessage:
		if ev.Message == nil {
			return fmt.Errorf("%w: %s needs message", ErrMissingField, ev.Type)
		}
		m := ev.Message
		return require(ev.Type,
			"to", string(ev.To),
			"message.sender", string(m.Sender),
			"message.receiver", string(m.Receiver),
			"message.content", m.Content,
		)
	case domain.EventShowConnections, domain.EventConnections:
		return nil
	case domain.EventError:
		return require(ev.Type, "error", ev.Error)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownType, ev.Type)
	}
}

// Forward translates an event received from connection from into the event
// delivered to ev.To.
func Forward(from domain.PeerID, ev domain.Event) (domain.Event, error) {
	if err := Validate(ev); err != nil {
		return domain.Event{}, err
	}
	out := ev
	out.From = from

	switch ev.Type {
	case domain.EventRequestPublicKey, domain.EventResponsePublicKey:
	case domain.EventSendSecretSessionKey:
		out.Type = domain.EventReceiveSecretSessionKey
	case domain.EventSendMessage:
		if ev.Message.Sender != from {
			return domain.Event{}, ErrSpoofedSender
		}
		msg := *ev.Message
		out.Message = &msg
		out.Type = domain.EventReceiveMessage
	default:
		return domain.Event{}, fmt.Errorf("%w: %s", ErrNotForwardable, ev.Type)
	}
	return out, nil
}

// Errorf builds an error event addressed to peer.
func Errorf(peer domain.PeerID, format string, args ...any) domain.Event {
	return domain.Event{Type: domain.EventError, To: peer, Error: fmt.Sprintf(format, args...)}
}

// require takes name/value pairs and reports the first empty value.
func require(t domain.EventType, kv ...string) error {
	for i := 0; i+1 < len(kv); i += 2 {
		if kv[i+1] == "" {
			return fmt.Errorf("%w: %s needs %s", ErrMissingField, t, kv[i])
		}
	}
	return nil
}
