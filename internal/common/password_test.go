package common

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("Password123")
	require.NoError(t, err)
	assert.NotEqual(t, "Password123", hash)

	assert.NoError(t, CheckPassword("Password123", hash))
	assert.ErrorIs(t, CheckPassword("password123", hash), ErrPasswordMismatch)

	err = CheckPassword("Password123", "not-a-hash")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrPasswordMismatch)
}

func TestHashPassword_TooLong(t *testing.T) {
	_, err := HashPassword(strings.Repeat("a", 73))
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}

func TestNeedsRehash(t *testing.T) {
	hash, err := HashPassword("Password123")
	require.NoError(t, err)
	assert.False(t, NeedsRehash(hash))

	cheap, err := bcrypt.GenerateFromPassword([]byte("Password123"), bcrypt.MinCost)
	require.NoError(t, err)
	assert.True(t, NeedsRehash(string(cheap)))

	assert.True(t, NeedsRehash("garbage"))
}
