package services

import (
	"testing"
	"time"

	"walletv5/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthenticationRoundTrip(t *testing.T) {
	auth, err := NewAuthentication("secret")
	require.NoError(t, err)

	token, err := auth.CreateToken(&models.OperatorFromAuth{ID: "ops-1"})
	require.NoError(t, err)

	operator, err := auth.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "ops-1", operator.ID)
}

func TestAuthenticationRejectsOtherSecret(t *testing.T) {
	issuer, err := NewAuthentication("secret")
	require.NoError(t, err)
	verifier, err := NewAuthentication("other")
	require.NoError(t, err)

	token, err := issuer.CreateToken(&models.OperatorFromAuth{ID: "ops-1"})
	require.NoError(t, err)

	_, err = verifier.Validate(token)
	assert.Error(t, err)
}

func TestAuthenticationRejectsExpired(t *testing.T) {
	auth, err := NewAuthentication("secret")
	require.NoError(t, err)
	auth.now = func() time.Time { return time.Now().Add(-2 * OPERATOR_TOKEN_TTL) }

	token, err := auth.CreateToken(&models.OperatorFromAuth{ID: "ops-1"})
	require.NoError(t, err)

	auth.now = time.Now
	_, err = auth.Validate(token)
	assert.Error(t, err)
}

func TestNewAuthenticationNeedsSecret(t *testing.T) {
	_, err := NewAuthentication("")
	assert.Error(t, err)
}
