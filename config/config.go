// Package config loads server configuration from environment variables and
// an optional yaml file via viper.
package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// HTTPConfig holds listener settings.
type HTTPConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// AuthConfig holds access-gate settings.
type AuthConfig struct {
	// Enabled toggles the access gate. When false every request is admitted
	// without identity.
	Enabled bool
	// Admin is the username granted lifecycle and introspection routes.
	// The bootstrap account is created under this name.
	Admin string
}

// Config is the top-level server configuration.
type Config struct {
	HTTP    HTTPConfig
	Auth    AuthConfig
	DataDir string
}

// InstancesRoot is the directory holding per-instance graph data.
func (c *Config) InstancesRoot() string { return filepath.Join(c.DataDir, "databases") }

// BackupsRoot is the directory holding backup archives.
func (c *Config) BackupsRoot() string { return filepath.Join(c.DataDir, "backup") }

// LogsRoot is the directory holding per-user access logs and engine logs.
func (c *Config) LogsRoot() string { return filepath.Join(c.DataDir, "log") }

// UsersDB is the credential store file.
func (c *Config) UsersDB() string { return filepath.Join(c.DataDir, "users.db") }

// Load reads configuration from ./config.yaml (if present) and GRAPHGATE_*
// environment variables, applying defaults for anything unset.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("GRAPHGATE")
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 7474)
	v.SetDefault("http.readtimeout", "15s")
	v.SetDefault("http.writetimeout", "30s")
	v.SetDefault("http.idletimeout", "60s")

	v.SetDefault("auth.enabled", true)
	v.SetDefault("auth.admin", "admin")

	v.SetDefault("datadir", "./data")
}
