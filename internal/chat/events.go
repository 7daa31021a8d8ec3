// Package chat is the client-side messaging core: it keeps a member's
// view of their conversations (message thread, unread counts, support
// roster) consistent under optimistic sends and an at-least-once
// realtime event stream.
package chat

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nvukovic/memberhub/internal/domain"
	"github.com/nvukovic/memberhub/internal/transport/ws"
)

// Event is a validated domain event produced from a raw realtime payload.
// Nothing downstream of DecodeEvent ever sees an unvalidated shape.
type Event interface {
	isEvent()
}

// MessageInserted signals a new durable message row involving self.
type MessageInserted struct {
	Message domain.Message
}

// ReadStatusChanged signals a read_at transition on an existing row.
type ReadStatusChanged struct {
	ID     uuid.UUID
	ReadAt *time.Time
}

// PresenceChanged signals a counterpart going online or offline.
type PresenceChanged struct {
	MemberID uuid.UUID
	Online   bool
}

func (MessageInserted) isEvent()   {}
func (ReadStatusChanged) isEvent() {}
func (PresenceChanged) isEvent()   {}

// DecodeEvent converts a raw wire event into a typed domain event. The
// server filters the stream to events involving self, but membership is
// re-validated here rather than trusted. A nil, nil return means the
// event carries nothing for the session (keepalives and the like).
func DecodeEvent(selfID uuid.UUID, raw *ws.Event) (Event, error) {
	switch raw.Type {
	case ws.EventTypeMessageNew:
		var p ws.MessagePayload
		if err := json.Unmarshal(raw.Payload, &p); err != nil {
			return nil, fmt.Errorf("decoding %s payload: %w", raw.Type, err)
		}
		if p.ID == uuid.Nil || p.SenderID == uuid.Nil || p.RecipientID == uuid.Nil {
			return nil, fmt.Errorf("%s event with missing ids", raw.Type)
		}
		if !p.Involves(selfID) {
			return nil, fmt.Errorf("%s event for a conversation self is not part of", raw.Type)
		}
		return MessageInserted{Message: p.Message}, nil

	case ws.EventTypeMessageRead:
		var p ws.MessageReadPayload
		if err := json.Unmarshal(raw.Payload, &p); err != nil {
			return nil, fmt.Errorf("decoding %s payload: %w", raw.Type, err)
		}
		if p.ID == uuid.Nil {
			return nil, fmt.Errorf("%s event with missing id", raw.Type)
		}
		if p.SenderID != selfID && p.RecipientID != selfID {
			return nil, fmt.Errorf("%s event for a conversation self is not part of", raw.Type)
		}
		return ReadStatusChanged{ID: p.ID, ReadAt: p.ReadAt}, nil

	case ws.EventTypePresence:
		var p ws.PresencePayload
		if err := json.Unmarshal(raw.Payload, &p); err != nil {
			return nil, fmt.Errorf("decoding %s payload: %w", raw.Type, err)
		}
		if p.MemberID == uuid.Nil {
			return nil, fmt.Errorf("%s event with missing member id", raw.Type)
		}
		return PresenceChanged{MemberID: p.MemberID, Online: p.Status == "online"}, nil

	case ws.EventTypePong:
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown event type %q", raw.Type)
	}
}
