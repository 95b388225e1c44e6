package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.AppPort)
	assert.True(t, cfg.VerifyEmailEnabled)
	assert.Equal(t, 3*time.Minute, cfg.VerifyTTL)
	assert.Equal(t, 10*time.Second, cfg.ExternalTimeout)
	assert.Equal(t, 587, cfg.SMTPPort)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9999")
	t.Setenv("VERIFY_EMAIL_ENABLED", "false")
	t.Setenv("VERIFY_TTL", "5m")
	t.Setenv("SMTP_PORT", "2525")

	cfg := Load()

	assert.Equal(t, "9999", cfg.AppPort)
	assert.False(t, cfg.VerifyEmailEnabled)
	assert.Equal(t, 5*time.Minute, cfg.VerifyTTL)
	assert.Equal(t, 2525, cfg.SMTPPort)
}

func TestDatabaseURL(t *testing.T) {
	cfg := &Config{
		DBUser:     "app",
		DBPassword: "pw",
		DBHost:     "db.local",
		DBPort:     "5432",
		DBName:     "accounts",
	}

	assert.Equal(t, "postgres://app:pw@db.local:5432/accounts?sslmode=disable", cfg.DatabaseURL())
}
