package tokenizer

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/taskito/backend/core"
	"github.com/taskito/backend/ports"
)

const refreshTokenType = "refresh"

// JWTTokenizer implements the Tokenizer interface using HS256-signed JWTs.
// Access and refresh tokens are signed with disjoint secrets so one kind can
// never be verified on the other path.
type JWTTokenizer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewJWTTokenizer creates a new JWT tokenizer
func NewJWTTokenizer(accessSecret, refreshSecret []byte, accessTTL, refreshTTL time.Duration) ports.Tokenizer {
	return &JWTTokenizer{
		accessSecret:  accessSecret,
		refreshSecret: refreshSecret,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

// IssueAccessToken signs a short-lived access token for the given subject.
func (j *JWTTokenizer) IssueAccessToken(username string) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.accessTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedToken, err := token.SignedString(j.accessSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}

	return signedToken, nil
}

// ParseAccessToken verifies an access token and returns its subject. Every
// failure mode (malformed, bad signature, expired, wrong kind) collapses to
// core.ErrTokenInvalid so callers cannot tell the stages apart.
func (j *JWTTokenizer) ParseAccessToken(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &AccessClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.accessSecret, nil
	})
	if err != nil || !token.Valid {
		return "", core.ErrTokenInvalid
	}

	claims, ok := token.Claims.(*AccessClaims)
	if !ok || claims.Subject == "" {
		return "", core.ErrTokenInvalid
	}

	return claims.Subject, nil
}

// IssueRefreshToken signs a long-lived refresh token for the given subject.
func (j *JWTTokenizer) IssueRefreshToken(username string) (string, error) {
	now := time.Now()
	claims := RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.refreshTTL)),
		},
		TokenType: refreshTokenType,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedToken, err := token.SignedString(j.refreshSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return signedToken, nil
}

// ParseRefreshToken verifies a refresh token, requires the embedded refresh
// type marker, and returns its subject.
func (j *JWTTokenizer) ParseRefreshToken(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &RefreshClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.refreshSecret, nil
	})
	if err != nil || !token.Valid {
		return "", core.ErrTokenInvalid
	}

	claims, ok := token.Claims.(*RefreshClaims)
	if !ok || claims.TokenType != refreshTokenType || claims.Subject == "" {
		return "", core.ErrTokenInvalid
	}

	return claims.Subject, nil
}
