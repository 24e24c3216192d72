package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yml"))
	require.NoError(t, err)

	assert.Equal(t, "3001", cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.NotEmpty(t, cfg.Database.URL)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 10, cfg.Auth.BcryptCost)
	assert.True(t, cfg.Seed.SampleProjects)
	assert.True(t, cfg.Metrics.Enabled)
	assert.True(t, cfg.UsesDefaultSecret())
	assert.False(t, cfg.NotifierEnabled())
}

func TestLoadConfig_FileThenEnvironment(t *testing.T) {
	path := writeConfig(t, `
server:
  port: "8080"
database:
  driver: sqlite
auth:
  jwt_secret: from-file
  token_ttl: 2h
notifier:
  telegram_bot_token: abc
  telegram_chat_id: 77
metrics:
  enabled: false
`)
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("BCRYPT_COST", "12")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "./data/project_protector.db", cfg.Database.URL)
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.False(t, cfg.UsesDefaultSecret())
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 12, cfg.Auth.BcryptCost)
	assert.False(t, cfg.Metrics.Enabled)
	assert.True(t, cfg.NotifierEnabled())
}

func TestLoadConfig_Invalid(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "database:\n  driver: mysql\n"))
	assert.ErrorContains(t, err, "unsupported database driver")

	_, err = LoadConfig(writeConfig(t, "auth:\n  token_ttl: -1h\n"))
	assert.ErrorContains(t, err, "token_ttl")

	_, err = LoadConfig(writeConfig(t, "seed:\n  admin_password: "+strings.Repeat("a", 80)+"\n"))
	assert.ErrorContains(t, err, "seed.admin_password")

	_, err = LoadConfig(writeConfig(t, "server: [\n"))
	assert.ErrorContains(t, err, "failed to decode config file")
}

func TestLoadConfig_EmptyFile(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, "3001", cfg.Server.Port)
}
