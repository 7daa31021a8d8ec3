package chat

import (
	"time"

	"github.com/google/uuid"

	"github.com/nvukovic/memberhub/internal/domain"
)

// EntryID identifies a visible thread entry through the optimistic send
// lifecycle: Pending while only the local placeholder exists, Confirmed
// once the authoritative row is known.
type EntryID interface {
	isEntryID()
}

// Pending is the placeholder identity of a not-yet-durable send.
type Pending struct {
	Local uuid.UUID
}

// Confirmed is the authoritative store-assigned identity.
type Confirmed struct {
	Server uuid.UUID
}

func (Pending) isEntryID()   {}
func (Confirmed) isEntryID() {}

// ThreadEntry is one visible message in the active conversation.
type ThreadEntry struct {
	ID      EntryID
	Message domain.Message
}

// Thread is the reducer for the active conversation's message list.
// Exactly one of placeholder/authoritative represents a logical send at
// any instant; reconciliation swaps them in place so the list never
// reorders under the user.
type Thread struct {
	selfID      uuid.UUID
	counterpart uuid.UUID
	key         string
	entries     []ThreadEntry
	pending     int
}

func NewThread(selfID uuid.UUID) *Thread {
	return &Thread{selfID: selfID}
}

// Open switches the active conversation and clears the visible list.
// It returns the conversation key used to tag the history load so a
// stale result can be recognized.
func (t *Thread) Open(counterpartID uuid.UUID) string {
	t.counterpart = counterpartID
	t.key = domain.ConversationKey(t.selfID, counterpartID)
	t.entries = nil
	t.pending = 0
	return t.key
}

// Key returns the active conversation key, or "" when no conversation
// is open.
func (t *Thread) Key() string {
	return t.key
}

// Counterpart returns the active counterpart id, or uuid.Nil.
func (t *Thread) Counterpart() uuid.UUID {
	return t.counterpart
}

// ApplyHistory applies a loadHistory result. A result tagged with a key
// other than the active one arrived after the user switched away and is
// discarded.
func (t *Thread) ApplyHistory(key string, msgs []domain.Message) bool {
	if key != t.key {
		return false
	}

	entries := make([]ThreadEntry, 0, len(msgs)+t.pending)
	for _, m := range msgs {
		entries = append(entries, ThreadEntry{ID: Confirmed{Server: m.ID}, Message: m})
	}
	// Pending placeholders stay at the tail; history precedes anything
	// the user typed after opening.
	for _, e := range t.entries {
		if _, ok := e.ID.(Pending); ok {
			entries = append(entries, e)
		}
	}
	t.entries = entries
	return true
}

// AppendPending appends an optimistic placeholder and returns its local
// identity.
func (t *Thread) AppendPending(msg domain.Message) uuid.UUID {
	local := uuid.New()
	t.entries = append(t.entries, ThreadEntry{ID: Pending{Local: local}, Message: msg})
	t.pending++
	return local
}

// Reconcile replaces the placeholder with the authoritative message in
// place. Reports whether the placeholder was found.
func (t *Thread) Reconcile(localID uuid.UUID, msg domain.Message) bool {
	for i, e := range t.entries {
		if p, ok := e.ID.(Pending); ok && p.Local == localID {
			t.entries[i] = ThreadEntry{ID: Confirmed{Server: msg.ID}, Message: msg}
			t.pending--
			return true
		}
	}
	return false
}

// Rollback removes a failed send's placeholder.
func (t *Thread) Rollback(localID uuid.UUID) bool {
	for i, e := range t.entries {
		if p, ok := e.ID.(Pending); ok && p.Local == localID {
			t.entries = append(t.entries[:i], t.entries[i+1:]...)
			t.pending--
			return true
		}
	}
	return false
}

// ApplyInserted handles a realtime insert for the active conversation.
// Duplicates of an id already present are no-ops. An insert of one's own
// message arriving before the direct send response is suppressed; the
// direct response is authoritative and will reconcile the placeholder.
func (t *Thread) ApplyInserted(msg domain.Message) bool {
	if t.key == "" || domain.ConversationKey(msg.SenderID, msg.RecipientID) != t.key {
		return false
	}
	if t.contains(msg.ID) {
		return false
	}
	if msg.SenderID == t.selfID && t.pending > 0 {
		return false
	}
	t.entries = append(t.entries, ThreadEntry{ID: Confirmed{Server: msg.ID}, Message: msg})
	return true
}

// ApplyRead stamps read_at on a confirmed entry. Idempotent.
func (t *Thread) ApplyRead(id uuid.UUID, readAt *time.Time) bool {
	for i, e := range t.entries {
		if c, ok := e.ID.(Confirmed); ok && c.Server == id {
			t.entries[i].Message.ReadAt = readAt
			return true
		}
	}
	return false
}

// Messages returns the visible thread in order.
func (t *Thread) Messages() []domain.Message {
	out := make([]domain.Message, len(t.entries))
	for i, e := range t.entries {
		out[i] = e.Message
	}
	return out
}

// Entries returns the visible thread with send-state identities.
func (t *Thread) Entries() []ThreadEntry {
	out := make([]ThreadEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

// UnreadInboundIDs returns the confirmed ids addressed to self that are
// still unread, in thread order.
func (t *Thread) UnreadInboundIDs() []uuid.UUID {
	var ids []uuid.UUID
	for _, e := range t.entries {
		c, ok := e.ID.(Confirmed)
		if !ok {
			continue
		}
		if e.Message.RecipientID == t.selfID && !e.Message.Read() {
			ids = append(ids, c.Server)
		}
	}
	return ids
}

func (t *Thread) contains(id uuid.UUID) bool {
	for _, e := range t.entries {
		if c, ok := e.ID.(Confirmed); ok && c.Server == id {
			return true
		}
	}
	return false
}
