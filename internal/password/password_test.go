package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("Sup3rSecret")
	require.NoError(t, err)
	require.NotEmpty(t, hash)

	assert.True(t, Verify("Sup3rSecret", hash))
	assert.False(t, Verify("wrong", hash))
	assert.False(t, Verify("", hash))
}

func TestHashEmptyPassword(t *testing.T) {
	_, err := Hash("")
	assert.ErrorIs(t, err, ErrEmptyPassword)
}

func TestHashesAreSalted(t *testing.T) {
	first, err := Hash("Sup3rSecret")
	require.NoError(t, err)
	second, err := Hash("Sup3rSecret")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, Verify("Sup3rSecret", first))
	assert.True(t, Verify("Sup3rSecret", second))
}

func TestVerifyGarbageHash(t *testing.T) {
	assert.False(t, Verify("Sup3rSecret", "not-a-bcrypt-hash"))
}
