package jwt

import (
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndParse(t *testing.T) {
	SetSecret("unit-test-secret")

	token, expires, err := Sign("user-1", "admin", time.Hour)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, 5*time.Second)

	claims, err := Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "admin", claims.Username)
}

func TestParseRejectsExpired(t *testing.T) {
	SetSecret("unit-test-secret")
	token, _, err := Sign("user-1", "admin", -time.Minute)
	require.NoError(t, err)

	// non-positive ttl falls back to the default lifetime
	_, err = Parse(token)
	require.NoError(t, err)

	claims := Claims{
		UserID: "user-1",
		RegisteredClaims: jwtlib.RegisteredClaims{
			Issuer:    issuer,
			ExpiresAt: jwtlib.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	expired, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString([]byte("unit-test-secret"))
	require.NoError(t, err)
	_, err = Parse(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsForeignSecret(t *testing.T) {
	SetSecret("one")
	token, _, err := Sign("user-1", "admin", time.Hour)
	require.NoError(t, err)

	SetSecret("two")
	_, err = Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = Parse("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
