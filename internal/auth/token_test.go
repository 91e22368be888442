package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	manager := NewTokenManager("secret", time.Hour)

	token, exp, err := manager.Issue(Identity{UserID: 12, Staff: true})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	identity, err := manager.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, Identity{UserID: 12, Staff: true}, identity)
}

func TestParseRejects(t *testing.T) {
	manager := NewTokenManager("secret", time.Hour)

	valid, _, err := manager.Issue(Identity{UserID: 1})
	require.NoError(t, err)

	expiredManager := NewTokenManager("secret", time.Hour)
	expiredManager.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, _, err := expiredManager.Issue(Identity{UserID: 1})
	require.NoError(t, err)

	noneSigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "1",
		"iss": issuer,
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name    string
		manager *TokenManager
		token   string
	}{
		{name: "garbage", manager: manager, token: "not-a-token"},
		{name: "wrong secret", manager: NewTokenManager("other", time.Hour), token: valid},
		{name: "expired", manager: manager, token: expired},
		{name: "unsigned", manager: manager, token: noneSigned},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.manager.Parse(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
