package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

const testSecret = "test_secret_key_1234567890"

func TestJWTMaker_GenerateAndParseToken_ValidCases(t *testing.T) {
	tokenTTL := 15 * time.Minute
	maker := NewJWTMaker(testSecret, tokenTTL)

	tests := []struct {
		name      string
		principal models.Principal
	}{
		{
			name:      "regular user",
			principal: models.Principal{ID: "5f1c7d1e-2d0b-4e0e-9a55-1d6d0c6c9a01", Email: "user@example.com", Kind: models.KindUser},
		},
		{
			name:      "admin",
			principal: models.Principal{ID: "0b8f3c52-5e66-4a79-8d7e-2f4c4c1b7e10", Email: "admin@example.com", Kind: models.KindAdmin},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := maker.GenerateToken(tt.principal)
			require.NoError(t, err)
			assert.NotEmpty(t, token)

			claims, err := maker.ParseToken(token)
			require.NoError(t, err)

			assert.Equal(t, tt.principal, claims.Principal())
			assert.WithinDuration(t, time.Now(), claims.IssuedAt.Time, time.Second)
			assert.WithinDuration(t, time.Now().Add(tokenTTL), claims.ExpiresAt.Time, time.Second)
		})
	}
}

func TestJWTMaker_GenerateToken_IncompletePrincipal(t *testing.T) {
	maker := NewJWTMaker(testSecret, time.Hour)

	_, err := maker.GenerateToken(models.Principal{Kind: models.KindUser})
	assert.Error(t, err)

	_, err = maker.GenerateToken(models.Principal{ID: "id", Kind: "root"})
	assert.Error(t, err)
}

func TestJWTMaker_ParseToken_InvalidTokens(t *testing.T) {
	maker := NewJWTMaker(testSecret, 15*time.Minute)

	validToken, err := maker.GenerateToken(models.Principal{ID: "u1", Email: "u@example.com", Kind: models.KindUser})
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty token", token: ""},
		{name: "malformed token", token: "invalid.token.here"},
		{name: "expired token", token: createExpiredToken(t)},
		{name: "wrong secret key", token: createTokenWithWrongSecret(t)},
		{name: "tampered token", token: validToken + "tampered"},
		{name: "none algorithm", token: createUnsignedToken(t)},
		{name: "unknown kind", token: createTokenWithClaims(t, CustomClaims{
			Kind: "superuser",
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "u1",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		})},
		{name: "no expiry", token: createTokenWithClaims(t, CustomClaims{
			Kind:             models.KindUser,
			RegisteredClaims: jwt.RegisteredClaims{Subject: "u1"},
		})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := maker.ParseToken(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
			assert.Nil(t, claims)
		})
	}
}

func TestJWTMaker_DifferentSecretKeys(t *testing.T) {
	maker1 := NewJWTMaker("first_secret_key", 15*time.Minute)
	maker2 := NewJWTMaker("different_secret_key", 15*time.Minute)

	token, err := maker1.GenerateToken(models.Principal{ID: "a1", Kind: models.KindAdmin})
	require.NoError(t, err)

	claims, err := maker2.ParseToken(token)
	assert.Error(t, err)
	assert.Nil(t, claims)

	claims, err = maker1.ParseToken(token)
	assert.NoError(t, err)
	assert.NotNil(t, claims)
}

func TestJWTMaker_TTL(t *testing.T) {
	maker := NewJWTMaker(testSecret, 7*24*time.Hour)
	assert.Equal(t, 7*24*time.Hour, maker.TTL())
}

func createExpiredToken(t *testing.T) string {
	maker := NewJWTMaker(testSecret, -time.Hour)
	token, err := maker.GenerateToken(models.Principal{ID: "u1", Kind: models.KindUser})
	require.NoError(t, err)
	return token
}

func createTokenWithWrongSecret(t *testing.T) string {
	maker := NewJWTMaker("wrong_secret_key", time.Hour)
	token, err := maker.GenerateToken(models.Principal{ID: "u1", Kind: models.KindUser})
	require.NoError(t, err)
	return token
}

func createUnsignedToken(t *testing.T) string {
	claims := CustomClaims{
		Kind: models.KindAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "a1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	return token
}

func createTokenWithClaims(t *testing.T, claims CustomClaims) string {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}
