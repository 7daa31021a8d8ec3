package postgres

import (
	"context"
	"errors"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nvukovic/memberhub/internal/domain"
)

type MessageRepo struct {
	pool *pgxpool.Pool
}

func NewMessageRepo(pool *pgxpool.Pool) *MessageRepo {
	return &MessageRepo{pool: pool}
}

const messageColumns = "id, sender_id, recipient_id, sender_name, message, created_at, read_at"

// Create inserts a message row. conversation_id is deliberately not
// written: legacy environments lack the column and it is populated
// server-side where supported.
func (r *MessageRepo) Create(ctx context.Context, msg *domain.Message) error {
	query := `
		INSERT INTO messages (id, sender_id, recipient_id, sender_name, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.pool.Exec(ctx, query,
		msg.ID, msg.SenderID, msg.RecipientID, nullableString(msg.SenderName), msg.Body, msg.CreatedAt,
	)
	return err
}

func (r *MessageRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Message, error) {
	query := "SELECT " + messageColumns + " FROM messages WHERE id = $1"
	msg, err := scanMessage(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// ListByConversation loads a thread's full history, oldest first. The
// scoped query by conversation key is attempted first; legacy rows may
// lack a populated conversation_id, so on failure or an empty result the
// unordered participant-pair filter is used and the rows sorted here.
func (r *MessageRepo) ListByConversation(ctx context.Context, a, b uuid.UUID) ([]domain.Message, error) {
	key := domain.ConversationKey(a, b)

	query := "SELECT " + messageColumns + ` FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at ASC`
	messages, err := r.queryMessages(ctx, query, key)
	if err == nil && len(messages) > 0 {
		return messages, nil
	}
	if err != nil {
		log.Printf("message repo: scoped history query failed, using pair filter: %v", err)
	}

	query = "SELECT " + messageColumns + ` FROM messages
		WHERE (sender_id = $1 AND recipient_id = $2)
		   OR (sender_id = $2 AND recipient_id = $1)`
	messages, err = r.queryMessages(ctx, query, a, b)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].CreatedAt.Before(messages[j].CreatedAt)
	})
	return messages, nil
}

// MarkRead stamps read_at on unread rows addressed to recipientID and
// returns the ids that transitioned.
func (r *MessageRepo) MarkRead(ctx context.Context, recipientID uuid.UUID, ids []uuid.UUID) ([]uuid.UUID, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `
		UPDATE messages SET read_at = $1
		WHERE id = ANY($2) AND recipient_id = $3 AND read_at IS NULL
		RETURNING id`
	rows, err := r.pool.Query(ctx, query, time.Now(), ids, recipientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var updated []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		updated = append(updated, id)
	}
	return updated, rows.Err()
}

func (r *MessageRepo) UnreadCounts(ctx context.Context, recipientID uuid.UUID) (map[uuid.UUID]int, error) {
	query := `
		SELECT sender_id, COUNT(*)
		FROM messages
		WHERE recipient_id = $1 AND read_at IS NULL
		GROUP BY sender_id`
	rows, err := r.pool.Query(ctx, query, recipientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[uuid.UUID]int)
	for rows.Next() {
		var sender uuid.UUID
		var n int
		if err := rows.Scan(&sender, &n); err != nil {
			return nil, err
		}
		counts[sender] = n
	}
	return counts, rows.Err()
}

func (r *MessageRepo) LatestBetween(ctx context.Context, a, b uuid.UUID) (*domain.Message, error) {
	query := "SELECT " + messageColumns + ` FROM messages
		WHERE (sender_id = $1 AND recipient_id = $2)
		   OR (sender_id = $2 AND recipient_id = $1)
		ORDER BY created_at DESC
		LIMIT 1`
	msg, err := scanMessage(r.pool.QueryRow(ctx, query, a, b))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return msg, nil
}

func (r *MessageRepo) ListCounterparts(ctx context.Context, selfID uuid.UUID) ([]uuid.UUID, error) {
	query := `
		SELECT DISTINCT CASE WHEN sender_id = $1 THEN recipient_id ELSE sender_id END
		FROM messages
		WHERE sender_id = $1 OR recipient_id = $1`
	rows, err := r.pool.Query(ctx, query, selfID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *MessageRepo) queryMessages(ctx context.Context, query string, args ...any) ([]domain.Message, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, *msg)
	}
	return messages, rows.Err()
}

func scanMessage(row pgx.Row) (*domain.Message, error) {
	var msg domain.Message
	var senderName *string
	err := row.Scan(
		&msg.ID, &msg.SenderID, &msg.RecipientID, &senderName,
		&msg.Body, &msg.CreatedAt, &msg.ReadAt,
	)
	if err != nil {
		return nil, err
	}
	if senderName != nil {
		msg.SenderName = *senderName
	}
	return &msg, nil
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
