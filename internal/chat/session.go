package chat

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nvukovic/memberhub/internal/domain"
)

var (
	ErrNoActiveConversation = errors.New("no active conversation")
	ErrEmptyMessage         = errors.New("message body is empty")
)

// WriteError is a rejected durable insert, carrying a reason fit to show
// the user. The failed send is not retried automatically.
type WriteError struct {
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("message was not sent: %v", e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Update is a notification that session state changed. Consumers rebuild
// their view from the snapshot accessors; updates carry no state of
// their own beyond what is needed to pick a reaction.
type Update interface {
	isUpdate()
}

type ThreadUpdated struct{}

type RosterUpdated struct{}

type UnreadUpdated struct{ Total int }

// SendFailed reports a rolled-back optimistic send. The composed text is
// deliberately not restored.
type SendFailed struct{ Err error }

// SupportResolved reports the staff identity a member session will
// message.
type SupportResolved struct{ Staff domain.Profile }

// SessionFailed reports a failed background operation (history load,
// roster bootstrap, support lookup).
type SessionFailed struct{ Err error }

func (ThreadUpdated) isUpdate()   {}
func (RosterUpdated) isUpdate()   {}
func (UnreadUpdated) isUpdate()   {}
func (SendFailed) isUpdate()      {}
func (SupportResolved) isUpdate() {}
func (SessionFailed) isUpdate()   {}

// Session owns a member's live messaging state: the active thread, the
// unread ledger, and (for staff) the support roster. All three are
// advanced by a single goroutine draining one ordered queue: user
// commands, store-call results, and realtime events are serialized, so
// the reducers never see concurrent mutation. Store calls run in their
// own goroutines and post results back into the queue.
type Session struct {
	self  domain.Member
	store Store

	queue chan any
	done  chan struct{}
	once  sync.Once

	updates chan Update

	// state below is owned by the run loop
	thread *Thread
	ledger *Ledger
	roster *Roster
	seen   map[uuid.UUID]struct{}
}

// queue message kinds

type openCmd struct{ counterpart uuid.UUID }

type supportCmd struct{}

type sendCmd struct{ body string }

type rosterCmd struct{}

type historyResult struct {
	key         string
	counterpart uuid.UUID
	msgs        []domain.Message
	err         error
}

type sendResult struct {
	local uuid.UUID
	msg   *domain.Message
	err   error
}

type supportResult struct {
	staff *domain.Member
	err   error
}

type rosterResult struct {
	entries []BootstrapEntry
	err     error
}

type snapshotReq struct{ reply chan Snapshot }

// Snapshot is a consistent read of session state, served by the run loop.
type Snapshot struct {
	Active      uuid.UUID
	Messages    []domain.Message
	Entries     []ThreadEntry
	Roster      []RosterEntry
	Unread      map[uuid.UUID]int
	TotalUnread int
}

func NewSession(self domain.Member, store Store) *Session {
	return &Session{
		self:    self,
		store:   store,
		queue:   make(chan any, 256),
		done:    make(chan struct{}),
		updates: make(chan Update, 64),
		thread:  NewThread(self.ID),
		ledger:  NewLedger(),
		roster:  NewRoster(self.ID),
		seen:    make(map[uuid.UUID]struct{}),
	}
}

// Run drains the session queue until Close. Call this in a goroutine.
func (s *Session) Run() {
	for {
		select {
		case item := <-s.queue:
			s.handle(item)
		case <-s.done:
			return
		}
	}
}

// Close stops the run loop. Pending store calls finish but their results
// are dropped.
func (s *Session) Close() {
	s.once.Do(func() { close(s.done) })
}

// Updates delivers state-change notifications. Slow consumers lose
// updates rather than blocking the loop; the snapshot accessors always
// reflect current state.
func (s *Session) Updates() <-chan Update {
	return s.updates
}

// Open switches the active conversation to counterpart and loads its
// history. An in-flight load for a previous conversation is not
// cancelled; its result is discarded on arrival.
func (s *Session) Open(counterpartID uuid.UUID) {
	s.enqueue(openCmd{counterpart: counterpartID})
}

// OpenSupport resolves the support staff identity and opens that
// conversation. Fails with SessionFailed when no staff is configured.
func (s *Session) OpenSupport() {
	s.enqueue(supportCmd{})
}

// Send appends the message to the visible thread immediately and issues
// the durable write. On rejection the placeholder is removed and
// SendFailed raised.
func (s *Session) Send(body string) {
	s.enqueue(sendCmd{body: body})
}

// LoadRoster bootstraps the staff inbox.
func (s *Session) LoadRoster() {
	s.enqueue(rosterCmd{})
}

// Deliver feeds a decoded realtime event into the session.
func (s *Session) Deliver(ev Event) {
	if ev == nil {
		return
	}
	s.enqueue(ev)
}

// Snapshot returns a consistent view of the session state.
func (s *Session) Snapshot() Snapshot {
	req := snapshotReq{reply: make(chan Snapshot, 1)}
	select {
	case s.queue <- req:
	case <-s.done:
		return Snapshot{}
	}
	select {
	case snap := <-req.reply:
		return snap
	case <-s.done:
		return Snapshot{}
	}
}

func (s *Session) enqueue(item any) {
	select {
	case s.queue <- item:
	case <-s.done:
	}
}

func (s *Session) handle(item any) {
	switch v := item.(type) {
	case openCmd:
		s.openConversation(v.counterpart)

	case supportCmd:
		go func() {
			staff, err := s.store.SupportContact(context.Background())
			s.enqueue(supportResult{staff: staff, err: err})
		}()

	case supportResult:
		if v.err != nil {
			s.emit(SessionFailed{Err: v.err})
			return
		}
		s.emit(SupportResolved{Staff: v.staff.Profile()})
		s.openConversation(v.staff.ID)

	case historyResult:
		s.handleHistory(v)

	case sendCmd:
		s.handleSend(v)

	case sendResult:
		s.handleSendResult(v)

	case rosterCmd:
		go func() {
			entries, err := s.store.Roster(context.Background(), s.self.ID)
			s.enqueue(rosterResult{entries: entries, err: err})
		}()

	case rosterResult:
		if v.err != nil {
			s.emit(SessionFailed{Err: v.err})
			return
		}
		s.roster.Seed(v.entries)
		counts := make(map[uuid.UUID]int, len(v.entries))
		for _, e := range v.entries {
			counts[e.Profile.ID] = e.Unread
		}
		s.ledger.Seed(counts)
		s.emit(RosterUpdated{})
		s.emit(UnreadUpdated{Total: s.ledger.Total()})

	case MessageInserted:
		s.handleInserted(v.Message)

	case ReadStatusChanged:
		if s.thread.ApplyRead(v.ID, v.ReadAt) {
			s.emit(ThreadUpdated{})
		}

	case PresenceChanged:
		if s.roster.SetOnline(v.MemberID, v.Online) {
			s.emit(RosterUpdated{})
		}

	case snapshotReq:
		v.reply <- Snapshot{
			Active:      s.thread.Counterpart(),
			Messages:    s.thread.Messages(),
			Entries:     s.thread.Entries(),
			Roster:      s.roster.Entries(),
			Unread:      s.ledger.Counts(),
			TotalUnread: s.ledger.Total(),
		}

	default:
		log.Printf("chat session: dropping unknown queue item %T", item)
	}
}

func (s *Session) openConversation(counterpartID uuid.UUID) {
	key := s.thread.Open(counterpartID)
	s.emit(ThreadUpdated{})
	go func() {
		msgs, err := s.store.LoadHistory(context.Background(), s.self.ID, counterpartID)
		s.enqueue(historyResult{key: key, counterpart: counterpartID, msgs: msgs, err: err})
	}()
}

func (s *Session) handleHistory(r historyResult) {
	if r.key != s.thread.Key() {
		// The user switched conversations while this load was in
		// flight; its result must not touch the active thread.
		return
	}
	if r.err != nil {
		s.emit(SessionFailed{Err: fmt.Errorf("loading history: %w", r.err)})
		return
	}
	if !s.thread.ApplyHistory(r.key, r.msgs) {
		return
	}

	for _, m := range r.msgs {
		s.seen[m.ID] = struct{}{}
	}

	// Acknowledge everything inbound and unread, then zero the count.
	// The local reset stands even if the write fails; the count is
	// rederivable on the next bootstrap.
	if ids := s.thread.UnreadInboundIDs(); len(ids) > 0 {
		go func() {
			if err := s.store.MarkRead(context.Background(), s.self.ID, ids); err != nil {
				log.Printf("chat session: mark read failed for %d messages: %v", len(ids), err)
			}
		}()
	}
	s.ledger.Reset(r.counterpart)
	s.roster.SetUnread(r.counterpart, 0)

	s.emit(ThreadUpdated{})
	s.emit(UnreadUpdated{Total: s.ledger.Total()})
}

func (s *Session) handleSend(c sendCmd) {
	counterpart := s.thread.Counterpart()
	if counterpart == uuid.Nil {
		s.emit(SendFailed{Err: ErrNoActiveConversation})
		return
	}
	body, ok := domain.ValidBody(c.body)
	if !ok {
		s.emit(SendFailed{Err: ErrEmptyMessage})
		return
	}

	// The placeholder is visible immediately; the store overwrites the
	// timestamp on reconciliation.
	placeholder := domain.Message{
		SenderID:    s.self.ID,
		RecipientID: counterpart,
		SenderName:  s.self.DisplayName,
		Body:        body,
		CreatedAt:   time.Now(),
	}
	local := s.thread.AppendPending(placeholder)
	s.emit(ThreadUpdated{})

	go func() {
		msg, err := s.store.Send(context.Background(), s.self.ID, counterpart, body)
		s.enqueue(sendResult{local: local, msg: msg, err: err})
	}()
}

func (s *Session) handleSendResult(r sendResult) {
	if r.err != nil {
		if s.thread.Rollback(r.local) {
			s.emit(ThreadUpdated{})
		}
		s.emit(SendFailed{Err: &WriteError{Err: r.err}})
		return
	}

	s.seen[r.msg.ID] = struct{}{}
	if s.thread.Reconcile(r.local, *r.msg) {
		s.emit(ThreadUpdated{})
	}
	s.roster.ApplyInserted(*r.msg, s.ledger.Count(r.msg.Counterpart(s.self.ID)))
	s.emit(RosterUpdated{})
}

func (s *Session) handleInserted(m domain.Message) {
	if !m.Involves(s.self.ID) {
		return
	}
	// At-least-once delivery: a redelivered id is a no-op everywhere.
	if _, dup := s.seen[m.ID]; dup {
		return
	}

	applied := s.thread.ApplyInserted(m)
	if applied || m.SenderID != s.self.ID {
		// Own-thread echoes of a pending send are suppressed but not
		// recorded; the direct send response owns that id.
		s.seen[m.ID] = struct{}{}
	}

	counterpart := m.Counterpart(s.self.ID)
	if m.RecipientID == s.self.ID && counterpart != s.thread.Counterpart() {
		s.ledger.Inc(counterpart)
		s.emit(UnreadUpdated{Total: s.ledger.Total()})
	}
	s.roster.ApplyInserted(m, s.ledger.Count(counterpart))
	s.emit(RosterUpdated{})

	if applied {
		s.emit(ThreadUpdated{})
	}
}

func (s *Session) emit(u Update) {
	select {
	case s.updates <- u:
	default:
		// Slow consumer; state is still reachable via Snapshot.
	}
}
