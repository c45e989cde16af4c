package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPasswordArgon2_RoundTrip(t *testing.T) {
	salt, err := GenerateSalt()
	require.NoError(t, err)

	hashed, err := HashPasswordArgon2("Sup3rSecret!", salt)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hashed, "argon2id$"))

	ok, err := VerifyPassword("Sup3rSecret!", hashed, salt)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("wrong", hashed, salt)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashPasswordArgon2_SaltMatters(t *testing.T) {
	saltA, _ := GenerateSalt()
	saltB, _ := GenerateSalt()
	assert.NotEqual(t, saltA, saltB)

	h1, _ := HashPasswordArgon2("password", saltA)
	h2, _ := HashPasswordArgon2("password", saltB)
	assert.NotEqual(t, h1, h2)

	_, err := HashPasswordArgon2("password", "")
	assert.Error(t, err)
}

func TestVerifyPassword_RejectsUnknownFormat(t *testing.T) {
	_, err := VerifyPassword("password", "5f4dcc3b5aa765d61d8327deb882cf99", "salt")
	assert.ErrorIs(t, err, ErrInvalidHash)

	_, err = VerifyPassword("password", "argon2id$***", "salt")
	assert.ErrorIs(t, err, ErrInvalidHash)
}

func TestSetJWTSecret_ReturnsCopy(t *testing.T) {
	SetJWTSecret("secretA")
	b := GetJWTSecretByte()
	b[0] = 'X'
	assert.Equal(t, []byte("secretA"), GetJWTSecretByte())
}
