package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-jwt-secret"

func TestGenerateAndValidateAccessToken(t *testing.T) {
	as := &AuthService{Secret: testSecret}

	token, err := as.GenerateAccessToken("uid-123")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	uid, err := as.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "uid-123", uid)
}

func TestValidateAccessTokenRejectsBadInput(t *testing.T) {
	as := &AuthService{Secret: testSecret}

	token, err := as.GenerateAccessToken("uid-123")
	require.NoError(t, err)

	t.Run("garbage token", func(t *testing.T) {
		_, err := as.ValidateAccessToken("not-a-token")
		assert.ErrorIs(t, err, ErrBadToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := &AuthService{Secret: "different-secret"}
		_, err := other.ValidateAccessToken(token)
		assert.ErrorIs(t, err, ErrBadToken)
	})
}
