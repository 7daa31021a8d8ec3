package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Message is a direct message between two members. Content is immutable
// once sent; only read_at changes after insert.
type Message struct {
	ID          uuid.UUID  `json:"id"`
	SenderID    uuid.UUID  `json:"sender_id"`
	RecipientID uuid.UUID  `json:"recipient_id"`
	SenderName  string     `json:"sender_name,omitempty"`
	Body        string     `json:"body"`
	CreatedAt   time.Time  `json:"created_at"`
	ReadAt      *time.Time `json:"read_at,omitempty"`
}

// Read reports whether the message has been acknowledged by its recipient.
func (m *Message) Read() bool {
	return m.ReadAt != nil
}

// Counterpart returns the other participant relative to self.
func (m *Message) Counterpart(selfID uuid.UUID) uuid.UUID {
	if m.SenderID == selfID {
		return m.RecipientID
	}
	return m.SenderID
}

// Involves reports whether id is a participant of the message.
func (m *Message) Involves(id uuid.UUID) bool {
	return m.SenderID == id || m.RecipientID == id
}

// ConversationKey derives the symmetric thread identifier for two
// participants: the lexicographically smaller id first, joined with "|".
// ConversationKey(a, b) == ConversationKey(b, a) for all a, b.
func ConversationKey(a, b uuid.UUID) string {
	sa, sb := a.String(), b.String()
	if sa > sb {
		sa, sb = sb, sa
	}
	return sa + "|" + sb
}

// ValidBody returns the trimmed body and whether it is non-empty.
func ValidBody(body string) (string, bool) {
	trimmed := strings.TrimSpace(body)
	return trimmed, trimmed != ""
}
