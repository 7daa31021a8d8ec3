package chat

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvukovic/memberhub/internal/domain"
)

func inbound(self, counterpart uuid.UUID, body string, at time.Time) domain.Message {
	return domain.Message{
		ID:          uuid.New(),
		SenderID:    counterpart,
		RecipientID: self,
		Body:        body,
		CreatedAt:   at,
	}
}

func TestThreadApplyHistoryDiscardsStaleKey(t *testing.T) {
	self := uuid.New()
	thread := NewThread(self)

	a, b := uuid.New(), uuid.New()
	keyA := thread.Open(a)
	keyB := thread.Open(b)
	require.NotEqual(t, keyA, keyB)

	// A's history arrives after the switch to B.
	applied := thread.ApplyHistory(keyA, []domain.Message{inbound(self, a, "old", time.Now())})
	assert.False(t, applied)
	assert.Empty(t, thread.Messages())

	applied = thread.ApplyHistory(keyB, []domain.Message{inbound(self, b, "current", time.Now())})
	assert.True(t, applied)
	require.Len(t, thread.Messages(), 1)
	assert.Equal(t, "current", thread.Messages()[0].Body)
}

func TestThreadReconcileInPlace(t *testing.T) {
	self, other := uuid.New(), uuid.New()
	thread := NewThread(self)
	key := thread.Open(other)
	thread.ApplyHistory(key, []domain.Message{
		inbound(self, other, "first", time.Now().Add(-time.Minute)),
	})

	local := thread.AppendPending(domain.Message{
		SenderID:    self,
		RecipientID: other,
		Body:        "outgoing",
		CreatedAt:   time.Now(),
	})

	entries := thread.Entries()
	require.Len(t, entries, 2)
	_, pending := entries[1].ID.(Pending)
	assert.True(t, pending)

	authoritative := domain.Message{
		ID:          uuid.New(),
		SenderID:    self,
		RecipientID: other,
		Body:        "outgoing",
		CreatedAt:   time.Now(),
	}
	assert.True(t, thread.Reconcile(local, authoritative))

	entries = thread.Entries()
	require.Len(t, entries, 2)
	confirmed, ok := entries[1].ID.(Confirmed)
	require.True(t, ok)
	assert.Equal(t, authoritative.ID, confirmed.Server)
	assert.Equal(t, "outgoing", entries[1].Message.Body)

	// A second reconcile for the same local id is a no-op.
	assert.False(t, thread.Reconcile(local, authoritative))
}

func TestThreadRollbackRemovesPlaceholder(t *testing.T) {
	self, other := uuid.New(), uuid.New()
	thread := NewThread(self)
	thread.Open(other)

	local := thread.AppendPending(domain.Message{SenderID: self, RecipientID: other, Body: "doomed"})
	require.Len(t, thread.Messages(), 1)

	assert.True(t, thread.Rollback(local))
	assert.Empty(t, thread.Messages())
	assert.False(t, thread.Rollback(local))
}

func TestThreadApplyInsertedDeduplicates(t *testing.T) {
	self, other := uuid.New(), uuid.New()
	thread := NewThread(self)
	thread.Open(other)

	msg := inbound(self, other, "hi", time.Now())
	assert.True(t, thread.ApplyInserted(msg))
	// Redelivery of the same id.
	assert.False(t, thread.ApplyInserted(msg))
	assert.Len(t, thread.Messages(), 1)
}

func TestThreadApplyInsertedIgnoresOtherConversations(t *testing.T) {
	self, other, third := uuid.New(), uuid.New(), uuid.New()
	thread := NewThread(self)
	thread.Open(other)

	assert.False(t, thread.ApplyInserted(inbound(self, third, "elsewhere", time.Now())))
	assert.Empty(t, thread.Messages())
}

func TestThreadSuppressesOwnEchoWhilePending(t *testing.T) {
	self, other := uuid.New(), uuid.New()
	thread := NewThread(self)
	thread.Open(other)

	local := thread.AppendPending(domain.Message{SenderID: self, RecipientID: other, Body: "hello"})

	// The realtime echo of our own send arrives before the direct
	// response; it must not duplicate the placeholder.
	echo := domain.Message{
		ID: uuid.New(), SenderID: self, RecipientID: other, Body: "hello", CreatedAt: time.Now(),
	}
	assert.False(t, thread.ApplyInserted(echo))
	assert.Len(t, thread.Messages(), 1)

	// After reconciliation the same id is deduplicated by id.
	require.True(t, thread.Reconcile(local, echo))
	assert.False(t, thread.ApplyInserted(echo))
	assert.Len(t, thread.Messages(), 1)
}

func TestThreadOwnMessageFromAnotherDevice(t *testing.T) {
	self, other := uuid.New(), uuid.New()
	thread := NewThread(self)
	thread.Open(other)

	// No pending send here, so a self-sent insert is a legitimate
	// message from another connected client.
	msg := domain.Message{ID: uuid.New(), SenderID: self, RecipientID: other, Body: "from my phone"}
	assert.True(t, thread.ApplyInserted(msg))
	assert.Len(t, thread.Messages(), 1)
}

func TestThreadUnreadInboundIDs(t *testing.T) {
	self, other := uuid.New(), uuid.New()
	thread := NewThread(self)
	key := thread.Open(other)

	read := inbound(self, other, "seen", time.Now().Add(-2*time.Minute))
	now := time.Now()
	read.ReadAt = &now
	unread := inbound(self, other, "new", time.Now().Add(-time.Minute))
	outbound := domain.Message{ID: uuid.New(), SenderID: self, RecipientID: other, Body: "mine"}

	thread.ApplyHistory(key, []domain.Message{read, unread, outbound})

	ids := thread.UnreadInboundIDs()
	require.Len(t, ids, 1)
	assert.Equal(t, unread.ID, ids[0])
}

func TestThreadApplyRead(t *testing.T) {
	self, other := uuid.New(), uuid.New()
	thread := NewThread(self)
	thread.Open(other)

	msg := inbound(self, other, "hi", time.Now())
	thread.ApplyInserted(msg)

	at := time.Now()
	assert.True(t, thread.ApplyRead(msg.ID, &at))
	assert.True(t, thread.Messages()[0].Read())

	// Idempotent under redelivery.
	assert.True(t, thread.ApplyRead(msg.ID, &at))
	assert.False(t, thread.ApplyRead(uuid.New(), &at))
}
