package chat

import (
	"context"

	"github.com/google/uuid"

	"github.com/nvukovic/memberhub/internal/domain"
	"github.com/nvukovic/memberhub/internal/service"
)

// Store is the durable-store boundary the session writes and reads
// through. All calls may block on network I/O; the session never calls
// them from its event loop directly.
type Store interface {
	// LoadHistory returns the conversation with counterpart, oldest first.
	LoadHistory(ctx context.Context, selfID, counterpartID uuid.UUID) ([]domain.Message, error)
	// Send durably inserts a message and returns the authoritative row.
	Send(ctx context.Context, senderID, recipientID uuid.UUID, body string) (*domain.Message, error)
	// MarkRead acknowledges the given ids for selfID. Best effort: a
	// failure degrades unread accuracy but never blocks display.
	MarkRead(ctx context.Context, selfID uuid.UUID, ids []uuid.UUID) error
	// SupportContact resolves the staff identity for member sessions.
	SupportContact(ctx context.Context) (*domain.Member, error)
	// Roster bootstraps the staff inbox.
	Roster(ctx context.Context, selfID uuid.UUID) ([]BootstrapEntry, error)
}

// ServiceStore adapts the portal's message service to the Store
// interface for sessions running in-process with the server.
type ServiceStore struct {
	svc *service.MessageService
}

func NewServiceStore(svc *service.MessageService) *ServiceStore {
	return &ServiceStore{svc: svc}
}

func (s *ServiceStore) LoadHistory(ctx context.Context, selfID, counterpartID uuid.UUID) ([]domain.Message, error) {
	return s.svc.History(ctx, selfID, counterpartID)
}

func (s *ServiceStore) Send(ctx context.Context, senderID, recipientID uuid.UUID, body string) (*domain.Message, error) {
	return s.svc.Send(ctx, senderID, recipientID, body)
}

func (s *ServiceStore) MarkRead(ctx context.Context, selfID uuid.UUID, ids []uuid.UUID) error {
	return s.svc.MarkRead(ctx, selfID, ids)
}

func (s *ServiceStore) SupportContact(ctx context.Context) (*domain.Member, error) {
	return s.svc.SupportContact(ctx)
}

func (s *ServiceStore) Roster(ctx context.Context, selfID uuid.UUID) ([]BootstrapEntry, error) {
	entries, err := s.svc.Roster(ctx, selfID)
	if err != nil {
		return nil, err
	}
	out := make([]BootstrapEntry, len(entries))
	for i, e := range entries {
		out[i] = BootstrapEntry{
			Profile:     e.Profile,
			Unread:      e.Unread,
			LastMessage: e.LastMessage,
		}
	}
	return out, nil
}
