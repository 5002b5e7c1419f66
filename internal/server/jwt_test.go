package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daniela/corpus-insights/internal/config"
)

func testJWTService(hours int) *JWTService {
	return NewJWTService(&config.JWTConfig{Secret: "test-secret", ExpirationHours: hours})
}

func TestJWT_RoundTrip(t *testing.T) {
	svc := testJWTService(1)

	token, err := svc.GenerateToken("admin")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	subject, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", subject)
}

func TestJWT_WrongSecret(t *testing.T) {
	token, err := testJWTService(1).GenerateToken("admin")
	require.NoError(t, err)

	other := NewJWTService(&config.JWTConfig{Secret: "different-secret", ExpirationHours: 1})
	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestJWT_Garbage(t *testing.T) {
	_, err := testJWTService(1).ValidateToken("not.a.token")
	assert.Error(t, err)
}

func TestJWT_Expired(t *testing.T) {
	svc := &JWTService{secret: []byte("test-secret"), expiration: -time.Hour}

	token, err := svc.GenerateToken("admin")
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}
