package services

import (
	"testing"
	"time"

	"cricketbet/internal/apperr"
	"cricketbet/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func adminHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestAuthService_TokenRoundTrip(t *testing.T) {
	svc := NewAuthService("test-secret", time.Hour, "admin", "", nopLogger)

	token, err := svc.GenerateToken("user-1", models.RoleUser)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, string(models.RoleUser), claims.Role)
	assert.Equal(t, "user-1", claims.Subject)

	refreshed, err := svc.RefreshToken(claims)
	require.NoError(t, err)
	again, err := svc.ValidateToken(refreshed)
	require.NoError(t, err)
	assert.Equal(t, claims.UserID, again.UserID)
}

func TestAuthService_RejectsBadTokens(t *testing.T) {
	svc := NewAuthService("test-secret", time.Hour, "admin", "", nopLogger)
	other := NewAuthService("other-secret", time.Hour, "admin", "", nopLogger)
	expired := NewAuthService("test-secret", -time.Minute, "admin", "", nopLogger)

	foreign, err := other.GenerateToken("user-1", models.RoleUser)
	require.NoError(t, err)
	stale, err := expired.GenerateToken("user-1", models.RoleUser)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"garbage":      "not.a.token",
		"wrong secret": foreign,
		"expired":      stale,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ValidateToken(token)
			assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
		})
	}
}

func TestAuthService_RandomSecretWhenUnset(t *testing.T) {
	a := NewAuthService("", time.Hour, "admin", "", nopLogger)
	b := NewAuthService("", time.Hour, "admin", "", nopLogger)

	token, err := a.GenerateToken("user-1", models.RoleUser)
	require.NoError(t, err)

	_, err = a.ValidateToken(token)
	assert.NoError(t, err)
	_, err = b.ValidateToken(token)
	assert.Error(t, err)
}

func TestAuthService_AdminLogin(t *testing.T) {
	svc := NewAuthService("test-secret", time.Hour, "root", adminHash(t, "s3cret!"), nopLogger)

	token, err := svc.AdminLogin("root", "s3cret!")
	require.NoError(t, err)
	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, AdminSubject, claims.UserID)
	assert.Equal(t, string(models.RoleAdmin), claims.Role)

	_, err = svc.AdminLogin("root", "wrong")
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
	_, err = svc.AdminLogin("admin", "s3cret!")
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
}

func TestAuthService_AdminLoginDisabledWithoutHash(t *testing.T) {
	svc := NewAuthService("test-secret", time.Hour, "admin", "", nopLogger)

	_, err := svc.AdminLogin("admin", "anything")
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
	assert.Equal(t, "admin login is disabled", apperr.MessageOf(err))
}
