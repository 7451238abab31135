package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSecrets(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "secrets.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestReadSecrets(t *testing.T) {
	path := writeSecrets(t, `
store_driver: sqlite
store_dsn: /var/lib/waterapp/waterapp.db
session_key: 0123456789abcdef0123456789abcdef
`)
	sec, err := ReadSecrets(path)
	require.NoError(t, err)
	assert.Equal(t, DriverSQLite, sec.StoreDriver)
	assert.Equal(t, "/var/lib/waterapp/waterapp.db", sec.StoreDSN)
}

func TestReadSecretsMissingFile(t *testing.T) {
	_, err := ReadSecrets(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestReadSecretsMalformed(t *testing.T) {
	path := writeSecrets(t, "store_driver: [broken")
	_, err := ReadSecrets(path)
	assert.Error(t, err)
}

func TestReadSecretsValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing driver", "store_dsn: x\nsession_key: 0123456789abcdef\n"},
		{"unknown driver", "store_driver: bigquery\nstore_dsn: x\nsession_key: 0123456789abcdef\n"},
		{"missing dsn", "store_driver: sqlite\nsession_key: 0123456789abcdef\n"},
		{"short session key", "store_driver: sqlite\nstore_dsn: x\nsession_key: short\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadSecrets(writeSecrets(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	path := writeSecrets(t, `
store_driver: postgres
store_dsn: postgres://localhost/waterapp
session_key: 0123456789abcdef0123456789abcdef
`)
	t.Setenv("WATERAPP_SECRETS", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8501", cfg.ListenAddr)
	assert.Equal(t, 10*time.Minute, cfg.DirectoryTTL)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, DriverPostgres, cfg.Secrets.StoreDriver)
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeSecrets(t, `
store_driver: sqlite
store_dsn: /tmp/waterapp.db
session_key: 0123456789abcdef0123456789abcdef
`)
	t.Setenv("WATERAPP_SECRETS", path)
	t.Setenv("WATERAPP_LISTEN", ":9000")
	t.Setenv("WATERAPP_DIRECTORY_TTL", "2m")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Equal(t, 2*time.Minute, cfg.DirectoryTTL)
}

func TestLoadMissingSecretsIsFatal(t *testing.T) {
	t.Setenv("WATERAPP_SECRETS", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := Load()
	assert.Error(t, err)
}
