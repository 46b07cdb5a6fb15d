package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// CustomerClaims are the storefront session claims a checkout needs.
type CustomerClaims struct {
	CustomerID int64
	Email      string
}

// ExtractAccessToken reads the storefront session token, cookie first.
func ExtractAccessToken(r *http.Request) string {
	if cookie, err := r.Cookie("access_token"); err == nil {
		if cookie.Value != "" {
			return cookie.Value
		}
	}

	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	return ""
}

// ParseCustomerToken validates an HS256 token and reads its customer_id and
// email claims. A valid token without a customer is still invalid.
func ParseCustomerToken(secret []byte, tokenStr string) (*CustomerClaims, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	cid, ok := claims["customer_id"].(float64)
	if !ok || cid <= 0 {
		return nil, ErrInvalidToken
	}
	email, _ := claims["email"].(string)

	return &CustomerClaims{CustomerID: int64(cid), Email: email}, nil
}
