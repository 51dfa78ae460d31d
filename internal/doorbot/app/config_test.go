package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tinkerhall/doorbot/pkg/passwd"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	require.Equal(t, "doorbot.db", cfg.DatabaseFile)
	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, "bcrypt_12", cfg.PasswordScheme)
	require.Equal(t, passwd.KindBcrypt, cfg.Scheme().Kind)
	require.Equal(t, 12, cfg.Scheme().Difficulty)
	require.Equal(t, time.Hour, cfg.HousekeepingInterval)
	require.Equal(t, 30*24*time.Hour, cfg.TokenTTL)
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database_file: /var/lib/doorbot/doorbot.db
port: 9090
password_scheme: bcrypt_14
log_format: text
shutdown_grace_period: 30s
token_ttl: 168h
`), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "/var/lib/doorbot/doorbot.db", cfg.DatabaseFile)
	require.Equal(t, 9090, cfg.Port)
	require.Equal(t, 14, cfg.Scheme().Difficulty)
	require.Equal(t, "text", cfg.LogFormat)
	require.Equal(t, 30*time.Second, cfg.ShutdownGracePeriod)
	require.Equal(t, 7*24*time.Hour, cfg.TokenTTL)
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: 9090\n"), 0o600))

	t.Setenv("PORT", "7070")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, 7070, cfg.Port)
	require.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadConfigValidation(t *testing.T) {
	t.Run("unknown scheme", func(t *testing.T) {
		t.Setenv("DOORBOT_PASSWORD_SCHEME", "md5")
		_, err := LoadConfig("")
		require.Error(t, err)
	})

	t.Run("verify-only scheme", func(t *testing.T) {
		t.Setenv("DOORBOT_PASSWORD_SCHEME", "apache_md5")
		_, err := LoadConfig("")
		require.Error(t, err)
	})

	t.Run("bcrypt cost too low", func(t *testing.T) {
		t.Setenv("DOORBOT_PASSWORD_SCHEME", "bcrypt_4")
		_, err := LoadConfig("")
		require.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
	})
}
