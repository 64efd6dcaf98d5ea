package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/bizchat/internal/logger"
	"github.com/bizchat/internal/token"
)

// TokenVerifier is implemented by *token.Issuer.
type TokenVerifier interface {
	Verify(raw string) (int64, error)
}

// BearerToken reads the token from Authorization or, failing that, X-Authorization.
func BearerToken(r *http.Request) string {
	raw := r.Header.Get("Authorization")
	if raw == "" {
		raw = r.Header.Get("X-Authorization")
	}
	raw = strings.TrimSpace(raw)
	if len(raw) > 7 && strings.EqualFold(raw[:7], "bearer ") {
		raw = strings.TrimSpace(raw[7:])
	}
	return raw
}

// BearerAuth rejects requests without a valid token and puts the user id into the context.
func BearerAuth(v TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := BearerToken(r)
			if raw == "" {
				writeJSONError(w, http.StatusUnauthorized, "Authorization required")
				return
			}
			userID, err := v.Verify(raw)
			if errors.Is(err, token.ErrExpired) {
				writeJSONError(w, http.StatusUnauthorized, "Token expired")
				return
			}
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, "Invalid token")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": msg}); err != nil {
		logger.Errorf("middleware writeJSONError: %v", err)
	}
}
