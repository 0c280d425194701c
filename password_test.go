package identity_test

import (
	"testing"

	"github.com/ashkov/go-identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPasswordAndCompare(t *testing.T) {
	hash, err := identity.HashPassword("qwerty")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "qwerty", hash)

	assert.NoError(t, identity.ComparePasswordAndHash("qwerty", hash))

	err = identity.ComparePasswordAndHash("wrong", hash)
	require.Error(t, err)
	assert.ErrorIs(t, err, identity.ErrPasswordMismatch)
}

func TestHashPasswordSaltsPerCall(t *testing.T) {
	first, err := identity.HashPassword("qwerty")
	require.NoError(t, err)

	second, err := identity.HashPassword("qwerty")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestHashPasswordEmpty(t *testing.T) {
	_, err := identity.HashPassword("")
	require.Error(t, err)
	assert.ErrorIs(t, err, identity.ErrEmptyPassword)
}

func TestComparePasswordAndHashGarbageDigest(t *testing.T) {
	err := identity.ComparePasswordAndHash("qwerty", "not-a-bcrypt-digest")
	require.Error(t, err)
	assert.NotErrorIs(t, err, identity.ErrPasswordMismatch)
}

func TestRandomPasswordHash(t *testing.T) {
	hash := identity.RandomPasswordHash()
	require.NotEmpty(t, hash)

	// A random password should never match a known plaintext.
	assert.Error(t, identity.ComparePasswordAndHash("qwerty", hash))
}
