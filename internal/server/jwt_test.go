package server

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/config"
)

func setupTestJWTService(t *testing.T) *JWTService {
	t.Helper()
	return NewJWTService(&config.JWTConfig{
		Secret:          "test-secret-key-for-agent-tokens",
		ExpirationHours: 24,
	})
}

func TestJWTService_RoundTrip(t *testing.T) {
	s := setupTestJWTService(t)

	token, err := s.GenerateToken("Jill")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := s.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "Jill", claims.GetAgent())
	assert.Equal(t, "Jill", claims.Subject)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), claims.ExpiresAt.Time, time.Minute)

	getter, err := s.AsTokenValidator().ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "Jill", getter.GetAgent())
}

func TestJWTService_UnknownAgent(t *testing.T) {
	s := setupTestJWTService(t)

	_, err := s.GenerateToken("Mallory")
	var verr *ErrValidation
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "agent", verr.Field)

	// A correctly signed token for an agent without a mailbox is refused.
	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		Agent:            "Mallory",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	})
	tokenString, err := forged.SignedString([]byte("test-secret-key-for-agent-tokens"))
	require.NoError(t, err)
	_, err = s.ValidateToken(tokenString)
	assert.ErrorContains(t, err, "unknown agent")
}

func TestJWTService_Rejects(t *testing.T) {
	s := setupTestJWTService(t)
	token, err := s.GenerateToken("Jack")
	require.NoError(t, err)

	t.Run("empty", func(t *testing.T) {
		_, err := s.ValidateToken("")
		assert.Error(t, err)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := s.ValidateToken("not.a.token")
		assert.ErrorContains(t, err, "malformed")
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewJWTService(&config.JWTConfig{Secret: "another-secret", ExpirationHours: 24})
		_, err := other.ValidateToken(token)
		assert.ErrorContains(t, err, "invalid token signature")
	})

	t.Run("expired", func(t *testing.T) {
		later := NewJWTService(&config.JWTConfig{Secret: "test-secret-key-for-agent-tokens", ExpirationHours: 24})
		later.now = func() time.Time { return time.Now().Add(48 * time.Hour) }
		_, err := later.ValidateToken(token)
		assert.ErrorContains(t, err, "token expired")
	})

	t.Run("wrong algorithm", func(t *testing.T) {
		none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{Agent: "Jack"})
		tokenString, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = s.ValidateToken(tokenString)
		assert.Error(t, err)
	})
}
