package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devanagari-foods/storefront/internal/config"
)

const testSecret = "test-secret-value-at-least-32-chars!"

func newTestVerifier() *Verifier {
	cfg := &config.Config{}
	cfg.Identity.JWTSecret = testSecret
	return NewVerifier(cfg)
}

func issueToken(t *testing.T, secret string, claims *Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestValidateTokenAcceptsProviderToken(t *testing.T) {
	v := newTestVerifier()
	id := uuid.New()

	signed := issueToken(t, testSecret, &Claims{
		Email: "asha@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	claims, err := v.ValidateToken(signed)
	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", claims.Email)

	got, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	v := newTestVerifier()

	signed := issueToken(t, "another-secret-that-is-long-enough!!", &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	_, err := v.ValidateToken(signed)
	assert.Error(t, err)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	v := newTestVerifier()

	signed := issueToken(t, testSecret, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})

	_, err := v.ValidateToken(signed)
	assert.Error(t, err)
}

func TestUserIDRejectsNonUUIDSubject(t *testing.T) {
	v := newTestVerifier()

	signed := issueToken(t, testSecret, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user:42",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	claims, err := v.ValidateToken(signed)
	require.NoError(t, err)
	_, err = claims.UserID()
	assert.Error(t, err)
}
