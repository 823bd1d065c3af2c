package mw

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const StaffCtxKey contextKey = "staff"

// StaffClaim is the JWT claim carrying the staff login.
const StaffClaim = "staff"

func AuthMiddleware(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				http.Error(w, "invalid token format", http.StatusUnauthorized)
				return
			}

			token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, errors.New("unexpected signing method")
				}
				return []byte(jwtSecret), nil
			})
			if err != nil || !token.Valid {
				http.Error(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				http.Error(w, "invalid claims", http.StatusUnauthorized)
				return
			}

			login, ok := claims[StaffClaim].(string)
			if !ok || login == "" {
				http.Error(w, "staff not found in token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), StaffCtxKey, login)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// StaffFrom returns the staff login stored by AuthMiddleware.
func StaffFrom(ctx context.Context) (string, bool) {
	login, ok := ctx.Value(StaffCtxKey).(string)
	return login, ok
}
