package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/nvukovic/memberhub/internal/domain"
	"github.com/nvukovic/memberhub/internal/repository"
)

var (
	ErrEmptyMessage       = errors.New("message body is empty")
	ErrCannotMessageSelf  = errors.New("cannot message yourself")
	ErrRecipientNotFound  = errors.New("recipient not found")
	ErrNoSupportAvailable = errors.New("no support staff available")
)

// Notifier pushes row-level change events to connected clients. Both
// participants of the affected message receive the event.
type Notifier interface {
	NotifyMessageInserted(msg *domain.Message)
	NotifyMessageRead(msg *domain.Message)
}

type MessageService struct {
	messageRepo repository.MessageRepository
	memberRepo  repository.MemberRepository
	notifier    Notifier
}

func NewMessageService(messageRepo repository.MessageRepository, memberRepo repository.MemberRepository) *MessageService {
	return &MessageService{
		messageRepo: messageRepo,
		memberRepo:  memberRepo,
	}
}

// SetNotifier sets the real-time notifier (optional dependency).
func (s *MessageService) SetNotifier(n Notifier) {
	s.notifier = n
}

// Send durably inserts a message from sender to recipient. The sender's
// display name is denormalized onto the row so history survives renames.
func (s *MessageService) Send(ctx context.Context, senderID, recipientID uuid.UUID, body string) (*domain.Message, error) {
	body, ok := domain.ValidBody(body)
	if !ok {
		return nil, ErrEmptyMessage
	}
	if senderID == recipientID {
		return nil, ErrCannotMessageSelf
	}

	recipient, err := s.memberRepo.GetByID(ctx, recipientID)
	if err != nil {
		return nil, err
	}
	if recipient == nil {
		return nil, ErrRecipientNotFound
	}

	sender, err := s.memberRepo.GetByID(ctx, senderID)
	if err != nil {
		return nil, err
	}

	msg := &domain.Message{
		ID:          uuid.New(),
		SenderID:    senderID,
		RecipientID: recipientID,
		Body:        body,
		CreatedAt:   time.Now(),
	}
	if sender != nil {
		msg.SenderName = sender.DisplayName
	}

	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("creating message: %w", err)
	}

	if s.notifier != nil {
		s.notifier.NotifyMessageInserted(msg)
	}

	return msg, nil
}

// History returns the full conversation between self and counterpart,
// oldest first.
func (s *MessageService) History(ctx context.Context, selfID, counterpartID uuid.UUID) ([]domain.Message, error) {
	messages, err := s.messageRepo.ListByConversation(ctx, selfID, counterpartID)
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []domain.Message{}
	}
	return messages, nil
}

// MarkRead acknowledges the given message ids for selfID. Only unread
// rows addressed to self transition; everything else is ignored.
func (s *MessageService) MarkRead(ctx context.Context, selfID uuid.UUID, ids []uuid.UUID) error {
	updated, err := s.messageRepo.MarkRead(ctx, selfID, ids)
	if err != nil {
		return fmt.Errorf("marking messages read: %w", err)
	}

	if s.notifier == nil {
		return nil
	}
	for _, id := range updated {
		msg, err := s.messageRepo.GetByID(ctx, id)
		if err != nil || msg == nil {
			log.Printf("message service: reload read message %s: %v", id, err)
			continue
		}
		s.notifier.NotifyMessageRead(msg)
	}
	return nil
}

// SupportContact resolves the staff identity members send support
// messages to. There is no fallback: without a configured staff account
// the lookup fails closed.
func (s *MessageService) SupportContact(ctx context.Context) (*domain.Member, error) {
	staff, err := s.memberRepo.FirstStaff(ctx)
	if err != nil {
		return nil, err
	}
	if staff == nil {
		return nil, ErrNoSupportAvailable
	}
	return staff, nil
}

// RosterEntry is one support-inbox conversation as bootstrapped for a
// staff member: the counterpart's profile, their unread count, and the
// latest message either direction.
type RosterEntry struct {
	Profile     domain.Profile  `json:"profile"`
	Unread      int             `json:"unread"`
	LastMessage *domain.Message `json:"last_message,omitempty"`
}

// Roster bootstraps the staff inbox: every counterpart that has
// exchanged at least one message with selfID, with latest message and
// unread count. The staff gate lives in transport (the token carries
// the role); this method does not re-fetch the caller. One query per
// counterpart is acceptable at the expected roster scale.
func (s *MessageService) Roster(ctx context.Context, selfID uuid.UUID) ([]RosterEntry, error) {
	counterparts, err := s.messageRepo.ListCounterparts(ctx, selfID)
	if err != nil {
		return nil, err
	}

	unread, err := s.messageRepo.UnreadCounts(ctx, selfID)
	if err != nil {
		return nil, err
	}

	entries := make([]RosterEntry, 0, len(counterparts))
	for _, id := range counterparts {
		member, err := s.memberRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if member == nil {
			// Counterpart row deleted out from under us; skip.
			continue
		}

		latest, err := s.messageRepo.LatestBetween(ctx, selfID, id)
		if err != nil {
			return nil, err
		}

		entries = append(entries, RosterEntry{
			Profile:     member.Profile(),
			Unread:      unread[id],
			LastMessage: latest,
		})
	}
	return entries, nil
}
