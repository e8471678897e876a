package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAccessTokenRoundTrip(t *testing.T) {
	tok, err := NewAccessToken("secret", 42, "Bidder", 15)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC().Add(15*time.Minute), tok.Exp, 5*time.Second)

	parsed, err := jwt.Parse(tok.Token, func(tk *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)
	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, float64(42), claims["sub"])
	assert.Equal(t, "Bidder", claims["role"])
}

func TestNewAccessTokenWrongSecret(t *testing.T) {
	tok, err := NewAccessToken("secret", 1, "Admin", 5)
	require.NoError(t, err)
	_, err = jwt.Parse(tok.Token, func(tk *jwt.Token) (interface{}, error) {
		return []byte("other"), nil
	})
	assert.Error(t, err)
}

func TestRefreshTokenHashing(t *testing.T) {
	rt, err := NewRefreshToken(7)
	require.NoError(t, err)
	assert.Len(t, rt.Raw, 96)
	assert.Len(t, HashRefreshRaw(rt.Raw), 64)
	assert.NotEqual(t, rt.Raw, HashRefreshRaw(rt.Raw))
	// deterministic
	assert.Equal(t, HashRefreshRaw(rt.Raw), HashRefreshRaw(rt.Raw))
}

func TestPasswordHashVerify(t *testing.T) {
	h, err := HashPassword("hunter2secret", 4)
	require.NoError(t, err)
	assert.True(t, VerifyPassword(h, "hunter2secret"))
	assert.False(t, VerifyPassword(h, "wrong"))
}
