package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPasswordConfig() *PasswordConfig {
	// Minimum cost keeps the hashing rounds fast in tests
	return &PasswordConfig{BcryptCost: 10}
}

func TestNewPasswordConfig_Defaults(t *testing.T) {
	t.Setenv("BCRYPT_COST", "")
	t.Setenv("PASSWORD_PEPPER", "")
	t.Setenv("ADMIN_PASSWORD_HASH", "")

	cfg, err := NewPasswordConfig()
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Empty(t, cfg.Pepper)
	assert.Empty(t, cfg.AdminPasswordHash)
}

func TestNewPasswordConfig_CostValidation(t *testing.T) {
	t.Setenv("BCRYPT_COST", "8")
	_, err := NewPasswordConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")

	t.Setenv("BCRYPT_COST", "15")
	_, err = NewPasswordConfig()
	assert.Error(t, err)

	t.Setenv("BCRYPT_COST", "abc")
	_, err = NewPasswordConfig()
	assert.Error(t, err)
}

func TestHashAndVerifyPassword(t *testing.T) {
	cfg := testPasswordConfig()

	hash, err := cfg.HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery staple", hash)

	assert.True(t, cfg.VerifyPassword("correct horse battery staple", hash))
	assert.False(t, cfg.VerifyPassword("wrong password", hash))
}

func TestHashAndVerifyPassword_WithPepper(t *testing.T) {
	cfg := testPasswordConfig()
	cfg.Pepper = "global-secret"

	hash, err := cfg.HashPassword("pw")
	require.NoError(t, err)
	assert.True(t, cfg.VerifyPassword("pw", hash))

	// A config without the pepper cannot verify the hash
	bare := testPasswordConfig()
	assert.False(t, bare.VerifyPassword("pw", hash))
}

func TestVerifyAdminPassword(t *testing.T) {
	cfg := testPasswordConfig()

	hash, err := cfg.HashPassword("admin-pw")
	require.NoError(t, err)
	cfg.AdminPasswordHash = hash

	assert.True(t, cfg.VerifyAdminPassword("admin-pw"))
	assert.False(t, cfg.VerifyAdminPassword("nope"))
}

func TestVerifyAdminPassword_NoHashConfigured(t *testing.T) {
	cfg := testPasswordConfig()
	assert.False(t, cfg.VerifyAdminPassword("anything"))
}
