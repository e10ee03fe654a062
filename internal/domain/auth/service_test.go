package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockledger/internal/core/apperror"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	hash, err := HashPassword("swordfish")
	require.NoError(t, err)

	jwtService := NewJWTService(DefaultJWTConfig("test-secret"))
	return NewService(jwtService, []Credential{
		{Username: "alice", PasswordHash: hash},
	})
}

func TestLogin(t *testing.T) {
	svc := newTestService(t)

	pair, err := svc.Login(context.Background(), "alice", "swordfish")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.False(t, pair.ExpiresAt.IsZero())
}

func TestLogin_WrongPassword(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Login(context.Background(), "alice", "wrong")
	assert.True(t, apperror.IsCode(err, apperror.CodeUnauthorized))
}

func TestLogin_UnknownUser(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Login(context.Background(), "mallory", "swordfish")
	assert.True(t, apperror.IsCode(err, apperror.CodeUnauthorized))
}

func TestTokenRoundTrip(t *testing.T) {
	svc := newTestService(t)

	pair, err := svc.Login(context.Background(), "alice", "swordfish")
	require.NoError(t, err)

	user, err := svc.Validator().ValidateToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.UserID)
	assert.NotEmpty(t, user.SessionID)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	issuer := NewJWTService(DefaultJWTConfig("secret-a"))
	verifier := NewJWTService(DefaultJWTConfig("secret-b"))

	token, _, err := issuer.GenerateAccessToken("alice")
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateToken_Garbage(t *testing.T) {
	svc := NewJWTService(DefaultJWTConfig("test-secret"))

	_, err := svc.ValidateToken("not.a.token")
	assert.Error(t, err)
}
