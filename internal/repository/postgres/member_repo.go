package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nvukovic/memberhub/internal/domain"
)

type MemberRepo struct {
	pool *pgxpool.Pool
}

func NewMemberRepo(pool *pgxpool.Pool) *MemberRepo {
	return &MemberRepo{pool: pool}
}

const memberColumns = "id, email, username, display_name, password_hash, avatar_url, role, status, created_at, updated_at"

func (r *MemberRepo) Create(ctx context.Context, member *domain.Member) error {
	query := `
		INSERT INTO members (id, email, username, display_name, password_hash, avatar_url, role, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.pool.Exec(ctx, query,
		member.ID, member.Email, member.Username, member.DisplayName,
		member.PasswordHash, member.AvatarURL, member.Role, member.Status,
		member.CreatedAt, member.UpdatedAt,
	)
	return err
}

func (r *MemberRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Member, error) {
	return r.scanMember(ctx, "SELECT "+memberColumns+" FROM members WHERE id = $1", id)
}

func (r *MemberRepo) GetByEmail(ctx context.Context, email string) (*domain.Member, error) {
	return r.scanMember(ctx, "SELECT "+memberColumns+" FROM members WHERE email = $1", email)
}

func (r *MemberRepo) GetByUsername(ctx context.Context, username string) (*domain.Member, error) {
	return r.scanMember(ctx, "SELECT "+memberColumns+" FROM members WHERE username = $1", username)
}

// FirstStaff returns the oldest staff account, or nil when none is
// configured. Callers must treat nil as "no support available" rather
// than substituting an arbitrary member.
func (r *MemberRepo) FirstStaff(ctx context.Context) (*domain.Member, error) {
	return r.scanMember(ctx,
		"SELECT "+memberColumns+" FROM members WHERE role = $1 ORDER BY created_at ASC LIMIT 1",
		domain.RoleStaff,
	)
}

func (r *MemberRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	_, err := r.pool.Exec(ctx, `UPDATE members SET status = $1 WHERE id = $2`, status, id)
	return err
}

func (r *MemberRepo) scanMember(ctx context.Context, query string, args ...any) (*domain.Member, error) {
	var m domain.Member
	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&m.ID, &m.Email, &m.Username, &m.DisplayName,
		&m.PasswordHash, &m.AvatarURL, &m.Role,
		&m.Status, &m.CreatedAt, &m.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return &m, err
}
