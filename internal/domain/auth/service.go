package auth

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"stockledger/internal/core/apperror"
	"stockledger/pkg/logger"
)

// Credential is one configured API user.
// Users are provisioned through configuration, not a signup flow.
type Credential struct {
	Username     string
	PasswordHash string // bcrypt
}

// Service verifies credentials and issues tokens.
type Service struct {
	jwt   *JWTService
	users map[string]Credential
}

// NewService creates a new auth service.
func NewService(jwt *JWTService, users []Credential) *Service {
	byName := make(map[string]Credential, len(users))
	for _, u := range users {
		byName[u.Username] = u
	}
	return &Service{jwt: jwt, users: byName}
}

// TokenPair is the issued access token with its expiry.
type TokenPair struct {
	AccessToken string
	ExpiresAt   time.Time
}

// Login verifies the password and issues an access token.
func (s *Service) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	user, ok := s.users[username]
	if !ok {
		// Burn a bcrypt comparison anyway so unknown and known usernames
		// take the same time.
		_ = bcrypt.CompareHashAndPassword([]byte("$2a$10$0000000000000000000000000000000000000000000000000000"), []byte(password))
		return nil, apperror.NewUnauthorized("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		logger.Warn(ctx, "failed login attempt", "username", username)
		return nil, apperror.NewUnauthorized("invalid credentials")
	}

	token, expiresAt, err := s.jwt.GenerateAccessToken(user.Username)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}

	logger.Info(ctx, "user logged in", "username", username)

	return &TokenPair{AccessToken: token, ExpiresAt: expiresAt}, nil
}

// Validator exposes the token validator for the auth middleware.
func (s *Service) Validator() *JWTService {
	return s.jwt
}

// HashPassword produces a bcrypt hash for provisioning credentials.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
