package http

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMintAndVerify(t *testing.T) {
	guard := NewCSRFGuard([]byte("csrf-secret"))

	raw, signed, err := guard.Mint()
	require.NoError(t, err)
	require.NotEmpty(t, raw)
	assert.Contains(t, signed, raw+":")

	got, ok := guard.verify(signed)
	require.True(t, ok)
	assert.Equal(t, raw, got)
}

func TestMintIsFresh(t *testing.T) {
	guard := NewCSRFGuard([]byte("csrf-secret"))

	raw1, signed1, err := guard.Mint()
	require.NoError(t, err)
	raw2, signed2, err := guard.Mint()
	require.NoError(t, err)

	assert.NotEqual(t, raw1, raw2)
	assert.NotEqual(t, signed1, signed2)
}

func TestVerifyRejectsTampering(t *testing.T) {
	guard := NewCSRFGuard([]byte("csrf-secret"))

	raw, signed, err := guard.Mint()
	require.NoError(t, err)

	// Flip a character in the raw part while keeping the old signature.
	tampered := "0" + raw[1:] + signed[len(raw):]
	if tampered == signed {
		tampered = "1" + raw[1:] + signed[len(raw):]
	}
	_, ok := guard.verify(tampered)
	assert.False(t, ok)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	guard := NewCSRFGuard([]byte("csrf-secret"))
	other := NewCSRFGuard([]byte("another-secret"))

	_, signed, err := guard.Mint()
	require.NoError(t, err)

	_, ok := other.verify(signed)
	assert.False(t, ok)
}

func TestVerifyRejectsMalformed(t *testing.T) {
	guard := NewCSRFGuard([]byte("csrf-secret"))

	for _, bad := range []string{"", "no-separator", ":onlysig", "raw:", "raw:not-hex!"} {
		_, ok := guard.verify(bad)
		assert.False(t, ok, "value %q", bad)
	}
}

func TestRotationPathPolicy(t *testing.T) {
	guard := NewCSRFGuard([]byte("csrf-secret"))

	assert.True(t, guard.shouldRotate("/api/tasks"))
	assert.True(t, guard.shouldRotate("/api/me"))
	assert.False(t, guard.shouldRotate("/auth/login"))
	assert.False(t, guard.shouldRotate("/csrf/token"))

	assert.True(t, guard.pathExempt("/auth/logout"))
	assert.False(t, guard.pathExempt("/api/tasks"))
}
