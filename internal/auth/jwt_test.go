package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuthenticator(accessExp, refreshExp time.Duration) *JWTAuthenticator {
	return NewJWTAuthenticator("access-secret", "refresh-secret", "honhonji", "honhonji", accessExp, refreshExp)
}

func TestGenerateAndValidate(t *testing.T) {
	a := newTestAuthenticator(time.Hour, 24*time.Hour)

	access, refresh, err := a.GenerateTokens("8f14e45f-ceea-4678-b5c7-7f0e8d2f1a2b", "user")
	require.NoError(t, err)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)

	token, err := a.ValidateAccessToken(access)
	require.NoError(t, err)
	require.True(t, token.Valid)

	claims, ok := token.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, "8f14e45f-ceea-4678-b5c7-7f0e8d2f1a2b", claims["sub"])
	assert.Equal(t, "user", claims["role"])
	assert.Equal(t, "honhonji", claims["iss"])

	refreshed, err := a.ValidateRefreshToken(refresh)
	require.NoError(t, err)
	assert.True(t, refreshed.Valid)
}

func TestAccessAndRefreshSecretsAreSeparate(t *testing.T) {
	a := newTestAuthenticator(time.Hour, 24*time.Hour)

	access, refresh, err := a.GenerateTokens("8f14e45f-ceea-4678-b5c7-7f0e8d2f1a2b", "user")
	require.NoError(t, err)

	_, err = a.ValidateAccessToken(refresh)
	assert.Error(t, err)

	_, err = a.ValidateRefreshToken(access)
	assert.Error(t, err)
}

func TestExpiredTokenIsRejected(t *testing.T) {
	a := newTestAuthenticator(-time.Minute, -time.Minute)

	access, _, err := a.GenerateTokens("8f14e45f-ceea-4678-b5c7-7f0e8d2f1a2b", "user")
	require.NoError(t, err)

	_, err = a.ValidateAccessToken(access)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestTamperedTokenIsRejected(t *testing.T) {
	a := newTestAuthenticator(time.Hour, time.Hour)
	other := NewJWTAuthenticator("different-secret", "refresh-secret", "honhonji", "honhonji", time.Hour, time.Hour)

	access, _, err := other.GenerateTokens("8f14e45f-ceea-4678-b5c7-7f0e8d2f1a2b", "user")
	require.NoError(t, err)

	_, err = a.ValidateAccessToken(access)
	assert.Error(t, err)
}
