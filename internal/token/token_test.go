package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssuer_RoundTrip(t *testing.T) {
	iss := NewIssuer("secret", time.Hour)
	raw, exp, err := iss.Issue(42, "s1")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	uid, err := iss.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, int64(42), uid)
}

func TestIssuer_DistinctIDsGiveDistinctTokens(t *testing.T) {
	iss := NewIssuer("secret", time.Hour)
	fixed := time.Now()
	iss.now = func() time.Time { return fixed }
	a, _, err := iss.Issue(1, "a")
	require.NoError(t, err)
	b, _, err := iss.Issue(1, "b")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestIssuer_Verify(t *testing.T) {
	iss := NewIssuer("secret", time.Hour)
	valid, _, err := iss.Issue(7, "x")
	require.NoError(t, err)

	expiredIss := NewIssuer("secret", time.Hour)
	expiredIss.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, _, err := expiredIss.Issue(7, "y")
	require.NoError(t, err)

	otherKey, _, err := NewIssuer("other", time.Hour).Issue(7, "z")
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: 7}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name    string
		raw     string
		wantID  int64
		wantErr error
	}{
		{"valid", valid, 7, nil},
		{"expired", expired, 0, ErrExpired},
		{"wrong key", otherKey, 0, ErrInvalid},
		{"alg none", none, 0, ErrInvalid},
		{"garbage", "not-a-token", 0, ErrInvalid},
		{"empty", "", 0, ErrInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uid, err := iss.Verify(tt.raw)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, uid)
		})
	}
}
