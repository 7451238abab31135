// Package config loads process configuration: environment-derived settings
// plus a single secrets file read once at startup. A missing or malformed
// secrets file is fatal; the process must not serve without store credentials.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	ListenAddr   string        `env:"WATERAPP_LISTEN" envDefault:":8501"`
	SecretsPath  string        `env:"WATERAPP_SECRETS" envDefault:"/etc/waterapp/secrets.yaml"`
	LogDir       string        `env:"WATERAPP_LOG_DIR"`
	SettingsPath string        `env:"WATERAPP_SETTINGS_PATH" envDefault:"/var/lib/waterapp/settings.json"`
	DirectoryTTL time.Duration `env:"WATERAPP_DIRECTORY_TTL" envDefault:"10m"`
	SessionTTL   time.Duration `env:"WATERAPP_SESSION_TTL" envDefault:"24h"`

	// Secrets carries no env tags; it is populated from the secrets file.
	Secrets Secrets
}

// Secrets is the single secret blob supplying backing-store credentials and
// the session signing key.
type Secrets struct {
	StoreDriver string `yaml:"store_driver"`
	StoreDSN    string `yaml:"store_dsn"`
	SessionKey  string `yaml:"session_key"`
}

// Load parses environment variables and reads the secrets file.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	sec, err := ReadSecrets(cfg.SecretsPath)
	if err != nil {
		return Config{}, err
	}
	cfg.Secrets = sec
	return cfg, nil
}

// ReadSecrets reads and validates the secrets blob at path.
func ReadSecrets(path string) (Secrets, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Secrets{}, fmt.Errorf("read secrets %s: %w", path, err)
	}
	var sec Secrets
	if err := yaml.Unmarshal(b, &sec); err != nil {
		return Secrets{}, fmt.Errorf("parse secrets %s: %w", path, err)
	}
	if err := sec.validate(); err != nil {
		return Secrets{}, fmt.Errorf("secrets %s: %w", path, err)
	}
	return sec, nil
}

func (s Secrets) validate() error {
	switch strings.TrimSpace(s.StoreDriver) {
	case DriverSQLite, DriverPostgres:
	case "":
		return errors.New("store_driver is required")
	default:
		return fmt.Errorf("unknown store_driver %q", s.StoreDriver)
	}
	if strings.TrimSpace(s.StoreDSN) == "" {
		return errors.New("store_dsn is required")
	}
	if len(s.SessionKey) < 16 {
		return errors.New("session_key must be at least 16 bytes")
	}
	return nil
}
