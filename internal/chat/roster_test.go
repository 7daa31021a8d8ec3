package chat

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvukovic/memberhub/internal/domain"
)

func TestRosterSynthesizesUnseenSender(t *testing.T) {
	self := uuid.New()
	roster := NewRoster(self)

	sender := uuid.New()
	msg := domain.Message{
		ID:          uuid.New(),
		SenderID:    sender,
		RecipientID: self,
		SenderName:  "M",
		Body:        "Hello, I need help with billing.",
		CreatedAt:   time.Now(),
	}
	roster.ApplyInserted(msg, 1)

	entries := roster.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, sender, entries[0].ID)
	assert.Equal(t, "M", entries[0].DisplayName)
	assert.Equal(t, 1, entries[0].Unread)
	require.NotNil(t, entries[0].LastMessage)
	assert.Equal(t, "Hello, I need help with billing.", entries[0].LastMessage.Body)
	assert.True(t, entries[0].LastMessage.Inbound)
}

func TestRosterSeedAndUpdate(t *testing.T) {
	self := uuid.New()
	roster := NewRoster(self)
	counterpart := uuid.New()

	roster.Seed([]BootstrapEntry{{
		Profile: domain.Profile{ID: counterpart, DisplayName: "Ana", Status: "online"},
		Unread:  2,
	}})

	entries := roster.Entries()
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Online)
	assert.Equal(t, 2, entries[0].Unread)
	assert.Nil(t, entries[0].LastMessage)

	msg := domain.Message{
		ID: uuid.New(), SenderID: counterpart, RecipientID: self,
		Body: "ping", CreatedAt: time.Now(),
	}
	roster.ApplyInserted(msg, 3)

	entries = roster.Entries()
	assert.Equal(t, 3, entries[0].Unread)
	assert.Equal(t, "ping", entries[0].LastMessage.Body)
	// Seeded profile data is kept on update.
	assert.Equal(t, "Ana", entries[0].DisplayName)
}

func TestRosterSetOnline(t *testing.T) {
	self := uuid.New()
	roster := NewRoster(self)
	counterpart := uuid.New()
	roster.Seed([]BootstrapEntry{{Profile: domain.Profile{ID: counterpart, DisplayName: "Ana"}}})

	assert.True(t, roster.SetOnline(counterpart, true))
	assert.True(t, roster.Entries()[0].Online)

	// Presence for someone who never messaged is dropped.
	assert.False(t, roster.SetOnline(uuid.New(), true))
	assert.Len(t, roster.Entries(), 1)
}

func TestRosterSortOrder(t *testing.T) {
	self := uuid.New()
	roster := NewRoster(self)
	now := time.Now()

	idUnread := uuid.New()
	idOnline := uuid.New()
	idRecent := uuid.New()
	idStale := uuid.New()

	entries := []BootstrapEntry{
		{Profile: domain.Profile{ID: idStale, DisplayName: "Stale"},
			LastMessage: &domain.Message{SenderID: idStale, RecipientID: self, Body: "a", CreatedAt: now.Add(-2 * time.Hour)}},
		{Profile: domain.Profile{ID: idRecent, DisplayName: "Recent"},
			LastMessage: &domain.Message{SenderID: idRecent, RecipientID: self, Body: "b", CreatedAt: now}},
		{Profile: domain.Profile{ID: idOnline, DisplayName: "Online", Status: "online"},
			LastMessage: &domain.Message{SenderID: idOnline, RecipientID: self, Body: "c", CreatedAt: now.Add(-3 * time.Hour)}},
		{Profile: domain.Profile{ID: idUnread, DisplayName: "Unread"}, Unread: 5,
			LastMessage: &domain.Message{SenderID: idUnread, RecipientID: self, Body: "d", CreatedAt: now.Add(-4 * time.Hour)}},
	}
	roster.Seed(entries)

	sorted := roster.Entries()
	require.Len(t, sorted, 4)
	assert.Equal(t, idUnread, sorted[0].ID, "unread count wins")
	assert.Equal(t, idOnline, sorted[1].ID, "online beats recency")
	assert.Equal(t, idRecent, sorted[2].ID, "recent activity next")
	assert.Equal(t, idStale, sorted[3].ID)
}

func TestRosterSortNameTieBreak(t *testing.T) {
	self := uuid.New()
	roster := NewRoster(self)
	at := time.Now()

	ids := []uuid.UUID{uuid.New(), uuid.New()}
	roster.Seed([]BootstrapEntry{
		{Profile: domain.Profile{ID: ids[0], DisplayName: "Bo"},
			LastMessage: &domain.Message{SenderID: ids[0], RecipientID: self, Body: "x", CreatedAt: at}},
		{Profile: domain.Profile{ID: ids[1], DisplayName: "Al"},
			LastMessage: &domain.Message{SenderID: ids[1], RecipientID: self, Body: "y", CreatedAt: at}},
	})

	sorted := roster.Entries()
	assert.Equal(t, "Al", sorted[0].DisplayName)
	assert.Equal(t, "Bo", sorted[1].DisplayName)
}
