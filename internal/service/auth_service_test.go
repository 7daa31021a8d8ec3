package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvukovic/memberhub/internal/domain"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	svc := &AuthService{jwtSecret: []byte("test-secret")}

	member := &domain.Member{ID: uuid.New(), Role: domain.RoleMember}
	token, err := svc.generateToken(member)
	require.NoError(t, err)

	identity, err := ParseAccessToken(token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, member.ID, identity.MemberID)
	assert.Equal(t, domain.RoleMember, identity.Role)
	assert.False(t, identity.IsStaff())

	staff := &domain.Member{ID: uuid.New(), Role: domain.RoleStaff}
	token, err = svc.generateToken(staff)
	require.NoError(t, err)

	identity, err = ParseAccessToken(token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, staff.ID, identity.MemberID)
	assert.True(t, identity.IsStaff())
}

func TestParseAccessTokenRejectsWrongSecret(t *testing.T) {
	svc := &AuthService{jwtSecret: []byte("test-secret")}
	token, err := svc.generateToken(&domain.Member{ID: uuid.New(), Role: domain.RoleMember})
	require.NoError(t, err)

	_, err = ParseAccessToken(token, "other-secret")
	assert.Error(t, err)
}

func TestParseAccessTokenRejectsExpired(t *testing.T) {
	claims := accessClaims{
		Role: domain.RoleMember,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.New().String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = ParseAccessToken(token, "test-secret")
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestParseAccessTokenRejectsUnsignedAlg(t *testing.T) {
	claims := accessClaims{
		Role: domain.RoleStaff,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.New().String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = ParseAccessToken(token, "test-secret")
	assert.Error(t, err)
}
