// Package config loads the CLI configuration: where the remote API
// lives and where the credential database is kept.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds the client configuration.
type Config struct {
	ServerURL       string `mapstructure:"server_url"`
	CredentialsPath string `mapstructure:"credentials_path"`
	// LogPath, when set, sends diagnostics to an append-only file
	// instead of stderr.
	LogPath string `mapstructure:"log_path"`
}

// Load reads config.json from configDir, falling back to defaults and
// writing a default file on first run. An empty configDir means
// ~/.config/notesync. Environment variables NOTESYNC_SERVER_URL and
// NOTESYNC_CREDENTIALS_PATH override the file.
func Load(configDir string) (Config, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Config{}, err
		}
		configDir = filepath.Join(home, ".config", "notesync")
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(configDir)
	v.SetDefault("server_url", "http://localhost:5000")
	v.SetDefault("credentials_path", filepath.Join(configDir, "credentials.db"))
	v.SetDefault("log_path", "")
	v.SetEnvPrefix("notesync")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := os.MkdirAll(configDir, 0o755); err != nil {
			return Config{}, err
		}
		if err := v.SafeWriteConfigAs(filepath.Join(configDir, "config.json")); err != nil {
			return Config{}, fmt.Errorf("write default config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
