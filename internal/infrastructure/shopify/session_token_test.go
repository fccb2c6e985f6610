package shopify

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopify-app-backend/internal/domain"
)

const (
	testAPIKey    = "api-key"
	testAPISecret = "api-secret"
)

func signSessionToken(t *testing.T, claims SessionClaims, secret string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func validClaims(now time.Time) SessionClaims {
	return SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "https://shop1.myshopify.com/admin",
			Subject:   "42",
			Audience:  jwt.ClaimStrings{testAPIKey},
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
			NotBefore: jwt.NewNumericDate(now.Add(-time.Second)),
			IssuedAt:  jwt.NewNumericDate(now.Add(-time.Second)),
			ID:        "jti-1",
		},
		Dest: "https://shop1.myshopify.com",
		Sid:  "sid-1",
	}
}

func TestSessionTokenDecoder(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	decoder := NewSessionTokenDecoder(testAPIKey, testAPISecret)
	decoder.now = func() time.Time { return now }

	t.Run("returns the shop domain without scheme", func(t *testing.T) {
		token := signSessionToken(t, validClaims(now), testAPISecret)
		shop, err := decoder.DecodeFromHeader("Bearer " + token)
		require.NoError(t, err)
		assert.Equal(t, "shop1.myshopify.com", shop)
	})

	t.Run("missing header", func(t *testing.T) {
		_, err := decoder.DecodeFromHeader("")
		assert.ErrorIs(t, err, domain.ErrMissingCredential)
	})

	t.Run("not a bearer header", func(t *testing.T) {
		token := signSessionToken(t, validClaims(now), testAPISecret)
		_, err := decoder.DecodeFromHeader("Basic " + token)
		assert.ErrorIs(t, err, domain.ErrInvalidCredential)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := decoder.DecodeFromHeader("Bearer not-a-jwt")
		assert.ErrorIs(t, err, domain.ErrInvalidCredential)
	})

	t.Run("wrong secret", func(t *testing.T) {
		token := signSessionToken(t, validClaims(now), "someone-else")
		_, err := decoder.DecodeFromHeader("Bearer " + token)
		assert.ErrorIs(t, err, domain.ErrInvalidCredential)
	})

	t.Run("wrong audience", func(t *testing.T) {
		claims := validClaims(now)
		claims.Audience = jwt.ClaimStrings{"another-app"}
		_, err := decoder.DecodeFromHeader("Bearer " + signSessionToken(t, claims, testAPISecret))
		assert.ErrorIs(t, err, domain.ErrInvalidCredential)
	})

	t.Run("expired beyond leeway", func(t *testing.T) {
		claims := validClaims(now)
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(-time.Minute))
		_, err := decoder.DecodeFromHeader("Bearer " + signSessionToken(t, claims, testAPISecret))
		assert.ErrorIs(t, err, domain.ErrInvalidCredential)
	})

	t.Run("expired within leeway", func(t *testing.T) {
		claims := validClaims(now)
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(-5 * time.Second))
		_, err := decoder.DecodeFromHeader("Bearer " + signSessionToken(t, claims, testAPISecret))
		assert.NoError(t, err)
	})

	t.Run("issuer and dest disagree", func(t *testing.T) {
		claims := validClaims(now)
		claims.Issuer = "https://other.myshopify.com/admin"
		_, err := decoder.DecodeFromHeader("Bearer " + signSessionToken(t, claims, testAPISecret))
		assert.ErrorIs(t, err, domain.ErrInvalidCredential)
	})

	t.Run("missing dest", func(t *testing.T) {
		claims := validClaims(now)
		claims.Dest = ""
		_, err := decoder.DecodeFromHeader("Bearer " + signSessionToken(t, claims, testAPISecret))
		assert.ErrorIs(t, err, domain.ErrInvalidCredential)
	})

	t.Run("rejects none algorithm", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, validClaims(now)).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = decoder.DecodeFromHeader("Bearer " + token)
		assert.ErrorIs(t, err, domain.ErrInvalidCredential)
	})
}
