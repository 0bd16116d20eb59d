package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestLegacyPasshash(t *testing.T) {
	t.Parallel()

	h := LegacyPasshash("alice", "password")
	assert.Len(t, h, 128)
	assert.True(t, IsLegacyPasshash(h))

	ok, legacy := CheckPasshash(h, "alice", "password")
	assert.True(t, ok)
	assert.True(t, legacy)

	ok, _ = CheckPasshash(h, "alice", "wrong")
	assert.False(t, ok)
	ok, _ = CheckPasshash(h, "bob", "password")
	assert.False(t, ok)
}

func TestBcryptPasshash(t *testing.T) {
	t.Parallel()

	h, err := HashPassword("password", bcrypt.MinCost)
	require.NoError(t, err)
	assert.False(t, IsLegacyPasshash(h))

	ok, legacy := CheckPasshash(h, "alice", "password")
	assert.True(t, ok)
	assert.False(t, legacy)
}

func TestSessionToken(t *testing.T) {
	t.Parallel()

	raw, exp, err := NewSessionToken("secret", 42, "csrf-1", 10)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(10*time.Minute), exp, 5*time.Second)

	s, err := ParseSessionToken("secret", raw)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), s.UserID)
	assert.Equal(t, "csrf-1", s.CSRF)

	_, err = ParseSessionToken("other", raw)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestSessionTokenExpired(t *testing.T) {
	t.Parallel()

	raw, _, err := NewSessionToken("secret", 1, "c", -1)
	require.NoError(t, err)
	_, err = ParseSessionToken("secret", raw)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestSessionTokenRejectsNoneAlg(t *testing.T) {
	t.Parallel()

	tok := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "1", "exp": time.Now().Add(time.Hour).Unix()})
	raw, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = ParseSessionToken("secret", raw)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestNewCSRFToken(t *testing.T) {
	t.Parallel()
	assert.NotEqual(t, NewCSRFToken(), NewCSRFToken())
}
