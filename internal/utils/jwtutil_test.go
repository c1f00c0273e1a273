package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	token, exp, err := GenerateToken("user-1", "u@example.com", time.Hour)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, time.Minute)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "u@example.com", claims.Email)
	assert.Equal(t, "user-1", claims.Subject)
}

func TestParseTokenRejectsExpired(t *testing.T) {
	token, _, err := GenerateToken("user-1", "", -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(token)
	assert.Error(t, err)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	_, err := ParseToken("not.a.token")
	assert.Error(t, err)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	token, _, err := GenerateToken("user-1", "", time.Hour)
	require.NoError(t, err)

	orig := JwtSecret
	JwtSecret = []byte("another-secret")
	defer func() { JwtSecret = orig }()

	_, err = ParseToken(token)
	assert.Error(t, err)
}
