package tokenizer

import "github.com/golang-jwt/jwt/v5"

// AccessClaims are the claims carried by an access token.
type AccessClaims struct {
	jwt.RegisteredClaims
}

// RefreshClaims add an explicit type marker so a refresh token is rejected
// wherever an access token is expected, even beyond the secret split.
type RefreshClaims struct {
	jwt.RegisteredClaims
	TokenType string `json:"type"`
}
