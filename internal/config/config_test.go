package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "0.0.0.0", cfg.ServerHost)
	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, "keys/master.key", cfg.MasterKeyFile)
	assert.Equal(t, time.Hour, cfg.SessionTokenTTL)
	assert.Equal(t, time.Duration(0), cfg.TokenClockSkew)
	assert.Equal(t, "tombstone", cfg.CEKRetention)
	assert.Equal(t, 1048576, cfg.FileBlockSize)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("MASTER_KEY_FILE", "/etc/doka/master.key")
	t.Setenv("SESSION_TOKEN_TTL_SECONDS", "120")
	t.Setenv("TOKEN_CLOCK_SKEW_SECONDS", "5")
	t.Setenv("CEK_RETENTION", "erase")

	cfg := Load()

	assert.Equal(t, 9090, cfg.ServerPort)
	assert.Equal(t, "/etc/doka/master.key", cfg.MasterKeyFile)
	assert.Equal(t, 2*time.Minute, cfg.SessionTokenTTL)
	assert.Equal(t, 5*time.Second, cfg.TokenClockSkew)
	assert.Equal(t, "erase", cfg.CEKRetention)
}

func TestGetGinMode(t *testing.T) {
	tests := []struct {
		logLevel string
		want     string
	}{
		{"debug", "debug"},
		{"info", "release"},
		{"warn", "release"},
		{"error", "release"},
		{"unknown", "release"},
	}

	for _, tt := range tests {
		cfg := &Config{LogLevel: tt.logLevel}
		assert.Equal(t, tt.want, cfg.GetGinMode())
	}
}
