package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAppConfigDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/coach")
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("PORT", "")
	t.Setenv("MAX_QUESTIONS", "")

	cfg, err := NewAppConfig()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 5, cfg.MaxQuestions)
}

func TestNewAppConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing database url", map[string]string{
			"DATABASE_URL": "", "GEMINI_API_KEY": "k",
		}},
		{"missing api key", map[string]string{
			"DATABASE_URL": "postgres://x", "GEMINI_API_KEY": "",
		}},
		{"max questions not a number", map[string]string{
			"DATABASE_URL": "postgres://x", "GEMINI_API_KEY": "k", "MAX_QUESTIONS": "many",
		}},
		{"max questions out of range", map[string]string{
			"DATABASE_URL": "postgres://x", "GEMINI_API_KEY": "k", "MAX_QUESTIONS": "0",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DATABASE_URL", "")
			t.Setenv("GEMINI_API_KEY", "")
			t.Setenv("MAX_QUESTIONS", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := NewAppConfig()
			assert.Error(t, err)
		})
	}
}

func TestNewJWTConfig(t *testing.T) {
	t.Setenv("JWT_SECRET", "topsecret")
	t.Setenv("JWT_EXPIRATION_HOURS", "")

	cfg, err := NewJWTConfig()
	require.NoError(t, err)
	assert.Equal(t, 24, cfg.ExpirationHours)

	t.Setenv("JWT_EXPIRATION_HOURS", "72")
	cfg, err = NewJWTConfig()
	require.NoError(t, err)
	assert.Equal(t, 72, cfg.ExpirationHours)

	t.Setenv("JWT_SECRET", "")
	_, err = NewJWTConfig()
	assert.Error(t, err)
}

func TestPasswordHashRoundTrip(t *testing.T) {
	cfg := &PasswordConfig{BcryptCost: 10}

	hash, err := cfg.HashPassword("correct horse battery staple")
	require.NoError(t, err)

	assert.True(t, cfg.VerifyPassword("correct horse battery staple", hash))
	assert.False(t, cfg.VerifyPassword("wrong password", hash))
}

func TestPasswordPepperChangesVerification(t *testing.T) {
	peppered := &PasswordConfig{BcryptCost: 10, Pepper: "sprinkle"}
	plain := &PasswordConfig{BcryptCost: 10}

	hash, err := peppered.HashPassword("hunter2hunter2")
	require.NoError(t, err)

	assert.True(t, peppered.VerifyPassword("hunter2hunter2", hash))
	assert.False(t, plain.VerifyPassword("hunter2hunter2", hash))
}

func TestPasswordConfigCostRange(t *testing.T) {
	t.Setenv("BCRYPT_COST", "9")
	t.Setenv("PASSWORD_PEPPER", "")
	_, err := NewPasswordConfig()
	assert.Error(t, err)

	t.Setenv("BCRYPT_COST", "15")
	_, err = NewPasswordConfig()
	assert.Error(t, err)

	t.Setenv("BCRYPT_COST", "")
	cfg, err := NewPasswordConfig()
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.BcryptCost)
}
