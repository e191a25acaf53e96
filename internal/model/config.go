package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// SyncConfig controls the remote leg of the write path.
type SyncConfig struct {
	// Enabled gates all network activity. With it off, writes stay in
	// the durable queue until a later session drains them.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// BaseURL is the root URL of the remote entity service.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// IntervalSec is how often the background sync pass runs.
	IntervalSec int `mapstructure:"interval_sec" yaml:"interval_sec"`

	// TimeoutSec bounds each remote request. Timeouts are treated the
	// same as network failures: the write stays queued.
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

// AppConfig is the top-level configuration.
type AppConfig struct {
	// DBPath is the SQLite database location.
	DBPath string `mapstructure:"db_path" yaml:"db_path"`

	// WorkspaceID scopes every query and mutation.
	WorkspaceID string `mapstructure:"workspace_id" yaml:"workspace_id"`

	// SessionName labels this session in the write-lease marker so the
	// takeover prompt can name the tab/host holding it.
	SessionName string `mapstructure:"session_name" yaml:"session_name"`

	Sync SyncConfig `mapstructure:"sync" yaml:"sync"`
}

// DefaultConfigPath returns the default configuration file location,
// ~/.config/pawkit/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "pawkit", "config.yaml")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	home, _ := os.UserHomeDir()
	return &AppConfig{
		DBPath:      filepath.Join(home, ".local", "share", "pawkit", "pawkit.db"),
		WorkspaceID: "default",
		SessionName: "",
		Sync: SyncConfig{
			Enabled:     true,
			IntervalSec: 60,
			TimeoutSec:  15,
		},
	}
}

// LoadConfig reads configuration from the given YAML file path using
// Viper. If the file does not exist, it returns a default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	defaults := defaultAppConfig()
	v.SetDefault("db_path", defaults.DBPath)
	v.SetDefault("workspace_id", defaults.WorkspaceID)
	v.SetDefault("sync.enabled", defaults.Sync.Enabled)
	v.SetDefault("sync.interval_sec", defaults.Sync.IntervalSec)
	v.SetDefault("sync.timeout_sec", defaults.Sync.TimeoutSec)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaults, nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaults, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return &cfg, nil
}

// SaveConfig writes the configuration back to the given path, creating
// parent directories as needed.
func SaveConfig(cfg *AppConfig, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.Set("db_path", cfg.DBPath)
	v.Set("workspace_id", cfg.WorkspaceID)
	v.Set("session_name", cfg.SessionName)
	v.Set("sync.enabled", cfg.Sync.Enabled)
	v.Set("sync.base_url", cfg.Sync.BaseURL)
	v.Set("sync.interval_sec", cfg.Sync.IntervalSec)
	v.Set("sync.timeout_sec", cfg.Sync.TimeoutSec)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config %s: %w", path, err)
	}
	return nil
}
