package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// APIConfig holds backend connection settings.
type APIConfig struct {
	// BaseURL is the root URL of the chama platform REST API.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// WSURL optionally overrides the push-channel URL. When empty the
	// realtime layer derives it from BaseURL (http -> ws upgrade).
	WSURL string `mapstructure:"ws_url" yaml:"ws_url"`

	// TimeoutSec bounds each HTTP request.
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	Theme    string `mapstructure:"theme" yaml:"theme"`
	Currency string `mapstructure:"currency" yaml:"currency"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	API     APIConfig     `mapstructure:"api" yaml:"api"`
	Display DisplayConfig `mapstructure:"display" yaml:"display"`

	// ActiveChamaID is the last selected chama, restored at startup.
	ActiveChamaID string `mapstructure:"active_chama_id" yaml:"active_chama_id"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/chamaweb/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "chamaweb", "config.yaml")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		API: APIConfig{
			BaseURL:    "http://localhost:3000/api",
			TimeoutSec: 10,
		},
		Display: DisplayConfig{
			Theme:    "default",
			Currency: "KES",
		},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration. The
// CHAMA_API_URL and CHAMA_WS_URL environment variables take precedence
// over file values.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("api.base_url", "http://localhost:3000/api")
	v.SetDefault("api.timeout_sec", 10)
	v.SetDefault("display.theme", "default")
	v.SetDefault("display.currency", "KES")

	cfg := defaultAppConfig()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); !ok {
			if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		}
	} else {
		if err := v.Unmarshal(cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	if apiURL := os.Getenv("CHAMA_API_URL"); apiURL != "" {
		cfg.API.BaseURL = apiURL
	}
	if wsURL := os.Getenv("CHAMA_WS_URL"); wsURL != "" {
		cfg.API.WSURL = wsURL
	}
	if cfg.API.TimeoutSec <= 0 {
		cfg.API.TimeoutSec = 10
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("api", cfg.API)
	v.Set("display", cfg.Display)
	v.Set("active_chama_id", cfg.ActiveChamaID)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
