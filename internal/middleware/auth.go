package middleware

import (
	"net/http"

	"sitepay-be/internal/auth"
	"sitepay-be/internal/utils"
)

// CustomerContextMiddleware attaches the customer of a valid session token
// to the request context and otherwise leaves the request anonymous. It
// runs ahead of logging and rate limiting so both can key on the customer.
func CustomerContextMiddleware(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := auth.ExtractAccessToken(r)
			if tokenStr == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := auth.ParseCustomerToken(secret, tokenStr)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := utils.SetCustomerContext(r.Context(), claims.CustomerID, claims.Email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AuthMiddleware resolves the customer from the session token. Requests
// without a token pass through anonymously; a bad or expired token is
// rejected.
func AuthMiddleware(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := auth.ExtractAccessToken(r)
			if tokenStr == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := auth.ParseCustomerToken(secret, tokenStr)
			if err != nil {
				utils.WriteJSONError(w, "invalid token", http.StatusUnauthorized)
				return
			}

			ctx := utils.SetCustomerContext(r.Context(), claims.CustomerID, claims.Email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
