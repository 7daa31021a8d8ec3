package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/nvukovic/memberhub/internal/domain"
	"github.com/nvukovic/memberhub/internal/service"
)

type contextKey string

const (
	MemberIDKey   contextKey = "member_id"
	MemberRoleKey contextKey = "member_role"
)

// Auth validates the bearer token and puts the caller's identity (id
// and role, both read from the token) into the request context. No
// member lookup happens here; the token is the source of truth for the
// life of the request.
func Auth(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" || !strings.HasPrefix(header, "Bearer ") {
				writeAuthError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid token")
				return
			}

			identity, err := service.ParseAccessToken(strings.TrimPrefix(header, "Bearer "), jwtSecret)
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), MemberIDKey, identity.MemberID)
			ctx = context.WithValue(ctx, MemberRoleKey, identity.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireStaff rejects callers whose token does not carry the staff
// role. Must run inside Auth.
func RequireStaff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetMemberRole(r.Context()) != domain.RoleStaff {
			writeAuthError(w, http.StatusForbidden, "FORBIDDEN", "Staff role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetMemberID extracts the authenticated member ID from request context.
func GetMemberID(ctx context.Context) uuid.UUID {
	return ctx.Value(MemberIDKey).(uuid.UUID)
}

// GetMemberRole extracts the authenticated member's role from request
// context.
func GetMemberRole(ctx context.Context) string {
	role, _ := ctx.Value(MemberRoleKey).(string)
	return role
}

func writeAuthError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"error":{"code":"` + code + `","message":"` + message + `"}}`))
}
