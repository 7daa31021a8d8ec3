package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/nvukovic/memberhub/internal/domain"
)

type MemberRepository interface {
	Create(ctx context.Context, member *domain.Member) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Member, error)
	GetByEmail(ctx context.Context, email string) (*domain.Member, error)
	GetByUsername(ctx context.Context, username string) (*domain.Member, error)
	// FirstStaff returns the staff member support conversations are routed
	// to, or nil when no staff account exists.
	FirstStaff(ctx context.Context) (*domain.Member, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

type MessageRepository interface {
	Create(ctx context.Context, msg *domain.Message) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Message, error)
	// ListByConversation returns the full history between two participants,
	// oldest first. It queries by the derived conversation key and falls
	// back to an unordered-pair filter when that fails.
	ListByConversation(ctx context.Context, a, b uuid.UUID) ([]domain.Message, error)
	// MarkRead stamps read_at on the given rows, restricted to rows
	// addressed to recipientID that are still unread. It returns the ids
	// that actually transitioned.
	MarkRead(ctx context.Context, recipientID uuid.UUID, ids []uuid.UUID) ([]uuid.UUID, error)
	// UnreadCounts returns, per sender, the number of unread messages
	// addressed to recipientID.
	UnreadCounts(ctx context.Context, recipientID uuid.UUID) (map[uuid.UUID]int, error)
	// LatestBetween returns the most recent message between two
	// participants, or nil when none exists.
	LatestBetween(ctx context.Context, a, b uuid.UUID) (*domain.Message, error)
	// ListCounterparts returns the distinct ids that have exchanged at
	// least one message with selfID.
	ListCounterparts(ctx context.Context, selfID uuid.UUID) ([]uuid.UUID, error)
}
