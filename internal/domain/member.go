package domain

import (
	"time"

	"github.com/google/uuid"
)

// Member roles. Staff members see the full support roster; ordinary
// members only ever message staff.
const (
	RoleMember = "member"
	RoleStaff  = "staff"
)

type Member struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	DisplayName  string    `json:"display_name"`
	PasswordHash string    `json:"-"`
	AvatarURL    *string   `json:"avatar_url,omitempty"`
	Role         string    `json:"role"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsStaff reports whether the member carries the staff capability.
func (m *Member) IsStaff() bool {
	return m.Role == RoleStaff
}

// Profile is the subset of member fields exposed to counterparts.
type Profile struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	AvatarURL   *string   `json:"avatar_url,omitempty"`
	Status      string    `json:"status"`
}

// Profile strips private fields from a member.
func (m *Member) Profile() Profile {
	return Profile{
		ID:          m.ID,
		Username:    m.Username,
		DisplayName: m.DisplayName,
		AvatarURL:   m.AvatarURL,
		Status:      m.Status,
	}
}
