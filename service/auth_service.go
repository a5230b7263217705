package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/taskito/backend/core"
	"github.com/taskito/backend/internal/password"
	"github.com/taskito/backend/ports"
)

// AuthService handles credential verification and session token lifecycle.
type AuthService struct {
	users     ports.UserStore
	tokenizer ports.Tokenizer
	logger    *slog.Logger

	// dummyHash is compared against when the user does not exist, so the
	// not-found path costs the same as a real password mismatch.
	dummyHash string
}

// NewAuthService creates a new authentication service
func NewAuthService(users ports.UserStore, tokenizer ports.Tokenizer, logger *slog.Logger) *AuthService {
	dummyHash, err := password.Hash(uuid.New().String())
	if err != nil {
		// bcrypt only fails here on absurd cost settings; treat as fatal.
		panic(fmt.Errorf("failed to prepare dummy hash: %w", err))
	}

	return &AuthService{
		users:     users,
		tokenizer: tokenizer,
		logger:    logger,
		dummyHash: dummyHash,
	}
}

// Authenticate verifies an identifier/password pair. The identifier may be a
// username or an email address, matched case-insensitively. Unknown user and
// wrong password both come back as ErrInvalidCredentials; callers map it to a
// generic 401 without learning which it was.
func (s *AuthService) Authenticate(ctx context.Context, identifier, plaintext string) (*core.User, error) {
	user, err := s.users.GetByUsername(ctx, identifier)
	if errors.Is(err, core.ErrNotFound) {
		user, err = s.users.GetByEmail(ctx, identifier)
	}
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			password.Verify(plaintext, s.dummyHash)
			return nil, core.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up credential: %w", err)
	}

	if !password.Verify(plaintext, user.HashedPassword) {
		s.logger.Info("authentication failed", "username", user.Username)
		return nil, core.ErrInvalidCredentials
	}

	if !user.IsActive {
		// The password matched, so this is a distinct condition.
		return nil, core.ErrInactiveAccount
	}

	s.logger.Info("user authenticated", "username", user.Username)
	return user, nil
}

// IssueSession encodes an access and a refresh token for the given user.
func (s *AuthService) IssueSession(user *core.User) (accessToken, refreshToken string, err error) {
	accessToken, err = s.tokenizer.IssueAccessToken(user.Username)
	if err != nil {
		return "", "", fmt.Errorf("failed to issue access token: %w", err)
	}

	refreshToken, err = s.tokenizer.IssueRefreshToken(user.Username)
	if err != nil {
		return "", "", fmt.Errorf("failed to issue refresh token: %w", err)
	}

	return accessToken, refreshToken, nil
}

// Resolve validates an access token and resolves it to a live identity. The
// credential's active flag is re-checked on every call and never cached, so
// deactivation takes effect immediately even for unexpired tokens. Every
// failure mode collapses to ErrTokenInvalid.
func (s *AuthService) Resolve(ctx context.Context, accessToken string) (core.Identity, error) {
	username, err := s.tokenizer.ParseAccessToken(accessToken)
	if err != nil {
		return core.Identity{}, core.ErrTokenInvalid
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil || !user.IsActive {
		return core.Identity{}, core.ErrTokenInvalid
	}

	return core.Identity{UserID: user.ID, Username: user.Username, Role: user.Role}, nil
}

// Refresh validates a refresh token and issues a new access token. The
// refresh token itself is not rotated; the session window stays fixed to the
// original login.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	username, err := s.tokenizer.ParseRefreshToken(refreshToken)
	if err != nil {
		return "", core.ErrTokenInvalid
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil || !user.IsActive {
		return "", core.ErrTokenInvalid
	}

	accessToken, err := s.tokenizer.IssueAccessToken(user.Username)
	if err != nil {
		return "", fmt.Errorf("failed to issue access token: %w", err)
	}

	s.logger.Info("access token refreshed", "username", user.Username)
	return accessToken, nil
}
