package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bizchat/internal/token"
)

type verifierFunc func(string) (int64, error)

func (f verifierFunc) Verify(raw string) (int64, error) { return f(raw) }

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

func TestBearerAuth(t *testing.T) {
	v := verifierFunc(func(raw string) (int64, error) {
		switch raw {
		case "good":
			return 5, nil
		case "old":
			return 0, token.ErrExpired
		}
		return 0, token.ErrInvalid
	})
	var seen int64
	h := BearerAuth(v)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetUserID(r.Context())
	}))

	tests := []struct {
		name       string
		header     string
		value      string
		wantStatus int
		wantErr    string
		wantUser   int64
	}{
		{"authorization bearer", "Authorization", "Bearer good", http.StatusOK, "", 5},
		{"x-authorization bearer", "X-Authorization", "Bearer good", http.StatusOK, "", 5},
		{"raw token", "Authorization", "good", http.StatusOK, "", 5},
		{"missing", "", "", http.StatusUnauthorized, "Authorization required", 0},
		{"expired", "Authorization", "Bearer old", http.StatusUnauthorized, "Token expired", 0},
		{"invalid", "Authorization", "Bearer nope", http.StatusUnauthorized, "Invalid token", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = 0
			req := httptest.NewRequest(http.MethodGet, "/api/messages", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantUser, seen)
			if tt.wantErr != "" {
				assert.Equal(t, tt.wantErr, errorBody(t, rec))
			}
		})
	}
}

func TestRateLimiter_Handler(t *testing.T) {
	rl := NewRateLimiter(0.001, 2)
	defer rl.Stop()
	h := rl.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	do := func(ip string, userID int64) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":1234"
		if userID != 0 {
			req = req.WithContext(WithUserID(req.Context(), userID))
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, do("10.0.0.1", 0))
	assert.Equal(t, http.StatusOK, do("10.0.0.1", 0))
	assert.Equal(t, http.StatusTooManyRequests, do("10.0.0.1", 0))
	assert.Equal(t, http.StatusOK, do("10.0.0.2", 0), "buckets are per client")
	assert.Equal(t, http.StatusOK, do("10.0.0.1", 9), "authenticated users get their own bucket")
}

func TestRecoverJSON(t *testing.T) {
	h := RecoverJSON(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(errors.New("boom"))
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error", errorBody(t, rec))
}
