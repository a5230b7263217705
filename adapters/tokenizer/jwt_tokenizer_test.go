package tokenizer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskito/backend/core"
)

var (
	accessSecret  = []byte("test-access-secret-0123456789abc")
	refreshSecret = []byte("test-refresh-secret-0123456789ab")
)

func newTestTokenizer(accessTTL, refreshTTL time.Duration) *JWTTokenizer {
	return NewJWTTokenizer(accessSecret, refreshSecret, accessTTL, refreshTTL).(*JWTTokenizer)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	tk := newTestTokenizer(time.Minute, time.Hour)

	token, err := tk.IssueAccessToken("alice")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	subject, err := tk.ParseAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", subject)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	tk := newTestTokenizer(time.Minute, time.Hour)

	token, err := tk.IssueRefreshToken("alice")
	require.NoError(t, err)

	subject, err := tk.ParseRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", subject)
}

func TestExpiredTokenRejected(t *testing.T) {
	tk := newTestTokenizer(-time.Second, -time.Second)

	access, err := tk.IssueAccessToken("alice")
	require.NoError(t, err)
	_, err = tk.ParseAccessToken(access)
	assert.ErrorIs(t, err, core.ErrTokenInvalid)

	refresh, err := tk.IssueRefreshToken("alice")
	require.NoError(t, err)
	_, err = tk.ParseRefreshToken(refresh)
	assert.ErrorIs(t, err, core.ErrTokenInvalid)
}

func TestTokenKindsNotInterchangeable(t *testing.T) {
	tk := newTestTokenizer(time.Minute, time.Hour)

	access, err := tk.IssueAccessToken("alice")
	require.NoError(t, err)
	refresh, err := tk.IssueRefreshToken("alice")
	require.NoError(t, err)

	_, err = tk.ParseAccessToken(refresh)
	assert.ErrorIs(t, err, core.ErrTokenInvalid, "refresh token must not verify as access token")

	_, err = tk.ParseRefreshToken(access)
	assert.ErrorIs(t, err, core.ErrTokenInvalid, "access token must not verify as refresh token")
}

func TestAccessTokenMissingRefreshMarkerRejected(t *testing.T) {
	// Identical secrets: only the type claim distinguishes the kinds then.
	tk := NewJWTTokenizer(accessSecret, accessSecret, time.Minute, time.Hour).(*JWTTokenizer)

	access, err := tk.IssueAccessToken("alice")
	require.NoError(t, err)

	_, err = tk.ParseRefreshToken(access)
	assert.ErrorIs(t, err, core.ErrTokenInvalid)
}

func TestMalformedTokenRejected(t *testing.T) {
	tk := newTestTokenizer(time.Minute, time.Hour)

	for _, token := range []string{"", "garbage", "a.b.c"} {
		_, err := tk.ParseAccessToken(token)
		assert.ErrorIs(t, err, core.ErrTokenInvalid)
	}
}

func TestTamperedSignatureRejected(t *testing.T) {
	tk := newTestTokenizer(time.Minute, time.Hour)

	token, err := tk.IssueAccessToken("alice")
	require.NoError(t, err)

	tampered := token[:len(token)-2] + "xx"
	_, err = tk.ParseAccessToken(tampered)
	assert.ErrorIs(t, err, core.ErrTokenInvalid)
}
