package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractAccessToken(t *testing.T) {
	t.Run("Cookie Preferred", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "access_token", Value: "cookie_token"})
		req.Header.Set("Authorization", "Bearer header_token")

		assert.Equal(t, "cookie_token", ExtractAccessToken(req))
	})

	t.Run("Header Fallback", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer header_token")

		assert.Equal(t, "header_token", ExtractAccessToken(req))
	})

	t.Run("Empty Cookie Falls Back to Header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "access_token", Value: ""})
		req.Header.Set("Authorization", "Bearer header_token")

		assert.Equal(t, "header_token", ExtractAccessToken(req))
	})

	t.Run("No Token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Basic user:pass")

		assert.Empty(t, ExtractAccessToken(req))
	})
}

func TestParseCustomerToken(t *testing.T) {
	secret := []byte("test-secret")

	sign := func(claims jwt.MapClaims) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
		require.NoError(t, err)
		return s
	}

	t.Run("Valid", func(t *testing.T) {
		claims, err := ParseCustomerToken(secret, sign(jwt.MapClaims{
			"customer_id": float64(7),
			"email":       "buyer@example.com",
			"exp":         time.Now().Add(time.Hour).Unix(),
		}))
		require.NoError(t, err)
		assert.Equal(t, int64(7), claims.CustomerID)
		assert.Equal(t, "buyer@example.com", claims.Email)
	})

	t.Run("NoCustomer", func(t *testing.T) {
		_, err := ParseCustomerToken(secret, sign(jwt.MapClaims{"user_id": float64(1)}))
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("WrongSecret", func(t *testing.T) {
		_, err := ParseCustomerToken([]byte("other"), sign(jwt.MapClaims{"customer_id": float64(7)}))
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Expired", func(t *testing.T) {
		_, err := ParseCustomerToken(secret, sign(jwt.MapClaims{
			"customer_id": float64(7),
			"exp":         time.Now().Add(-time.Hour).Unix(),
		}))
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
