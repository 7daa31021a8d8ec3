package chat

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/nvukovic/memberhub/internal/domain"
)

// LastMessage is the preview shown next to a roster entry.
type LastMessage struct {
	Body    string
	At      time.Time
	Inbound bool
}

// RosterEntry is one conversation partner in the staff support inbox.
type RosterEntry struct {
	ID          uuid.UUID
	DisplayName string
	AvatarURL   *string
	Online      bool
	Unread      int
	LastMessage *LastMessage
}

// BootstrapEntry is a roster entry as loaded from the store at mount.
type BootstrapEntry struct {
	Profile     domain.Profile
	Unread      int
	LastMessage *domain.Message
}

// Roster aggregates conversation partners for the staff view. After the
// bootstrap it is maintained purely from realtime events; an inbound
// message from an unseen sender synthesizes a minimal entry from the
// message's denormalized sender name instead of re-running the bulk
// load. Entries are never removed for the life of the session.
type Roster struct {
	selfID  uuid.UUID
	entries map[uuid.UUID]*RosterEntry
}

func NewRoster(selfID uuid.UUID) *Roster {
	return &Roster{
		selfID:  selfID,
		entries: make(map[uuid.UUID]*RosterEntry),
	}
}

// Seed loads the bootstrap snapshot.
func (r *Roster) Seed(entries []BootstrapEntry) {
	r.entries = make(map[uuid.UUID]*RosterEntry, len(entries))
	for _, e := range entries {
		entry := &RosterEntry{
			ID:          e.Profile.ID,
			DisplayName: e.Profile.DisplayName,
			AvatarURL:   e.Profile.AvatarURL,
			Online:      e.Profile.Status == "online",
			Unread:      e.Unread,
		}
		if e.LastMessage != nil {
			entry.LastMessage = &LastMessage{
				Body:    e.LastMessage.Body,
				At:      e.LastMessage.CreatedAt,
				Inbound: e.LastMessage.RecipientID == r.selfID,
			}
		}
		r.entries[e.Profile.ID] = entry
	}
}

// ApplyInserted updates the counterpart's entry for a new message,
// synthesizing one for a previously-unseen sender. unread is the
// counterpart's count after the ledger processed the same event.
func (r *Roster) ApplyInserted(msg domain.Message, unread int) {
	counterpart := msg.Counterpart(r.selfID)
	entry, ok := r.entries[counterpart]
	if !ok {
		entry = &RosterEntry{ID: counterpart}
		if msg.SenderID == counterpart {
			entry.DisplayName = msg.SenderName
		}
		r.entries[counterpart] = entry
	}
	entry.Unread = unread
	entry.LastMessage = &LastMessage{
		Body:    msg.Body,
		At:      msg.CreatedAt,
		Inbound: msg.RecipientID == r.selfID,
	}
}

// SetUnread overwrites a counterpart's displayed unread count.
func (r *Roster) SetUnread(counterpart uuid.UUID, unread int) {
	if entry, ok := r.entries[counterpart]; ok {
		entry.Unread = unread
	}
}

// SetOnline applies a presence transition. Presence for members that
// have never messaged is irrelevant to the inbox and dropped.
func (r *Roster) SetOnline(memberID uuid.UUID, online bool) bool {
	entry, ok := r.entries[memberID]
	if !ok {
		return false
	}
	entry.Online = online
	return true
}

// Entries returns the roster in display order: unread count descending,
// then online before offline, then most recent activity, then name.
// Ties break deterministically rather than by map order.
func (r *Roster) Entries() []RosterEntry {
	out := make([]RosterEntry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Unread != b.Unread {
			return a.Unread > b.Unread
		}
		if a.Online != b.Online {
			return a.Online
		}
		at, bt := lastActivity(a), lastActivity(b)
		if !at.Equal(bt) {
			return at.After(bt)
		}
		if a.DisplayName != b.DisplayName {
			return a.DisplayName < b.DisplayName
		}
		return a.ID.String() < b.ID.String()
	})
	return out
}

func lastActivity(e RosterEntry) time.Time {
	if e.LastMessage == nil {
		return time.Time{}
	}
	return e.LastMessage.At
}
