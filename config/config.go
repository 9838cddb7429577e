package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Load loads the configuration from file. FINDARR_* environment variables
// override file values (FINDARR_RADARR_API_KEY, FINDARR_SONARR_URL, ...).
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set default values
	setDefaults(v)

	v.SetEnvPrefix("findarr")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Look for config in standard locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		// Check current directory first
		v.AddConfigPath(".")

		// Check home directory
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "findarr"))
		}

		// Check /etc
		v.AddConfigPath("/etc/findarr/")
	}

	// Read config file; a missing file is fine when env vars carry the
	// connection details.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
		if configPath != "" {
			return nil, fmt.Errorf("config file not found: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Validate configuration
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Connection keys default to empty so AutomaticEnv can populate them
	// even when no config file exists; Unmarshal only sees known keys.
	v.SetDefault("radarr.url", "")
	v.SetDefault("radarr.api_key", "")
	v.SetDefault("sonarr.url", "")
	v.SetDefault("sonarr.api_key", "")
	v.SetDefault("webhook.api_key", "")

	// Check defaults: the generous timeout matches how slowly upstream
	// indexer searches fan out.
	v.SetDefault("check.timeout", 120)
	v.SetDefault("check.cache_ttl", 300)
	v.SetDefault("check.max_attempts", 3)
	v.SetDefault("check.seasons_to_check", 3)
	v.SetDefault("check.strategy", "recent")

	// State defaults
	v.SetDefault("state.path", defaultStatePath())
	v.SetDefault("state.recheck_days", 7)

	// Webhook defaults
	v.SetDefault("webhook.host", "127.0.0.1")
	v.SetDefault("webhook.port", 8484)

	// Scheduler defaults
	v.SetDefault("scheduler.interval_minutes", 360)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)
}

func defaultStatePath() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "share", "findarr", "state.json")
	}
	return "findarr-state.json"
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	if !cfg.Radarr.Configured() && !cfg.Sonarr.Configured() {
		return fmt.Errorf("at least one of radarr or sonarr must be configured with url and api_key")
	}

	if cfg.Radarr.URL != "" && cfg.Radarr.APIKey == "" {
		return fmt.Errorf("radarr.api_key must be set when radarr.url is set")
	}
	if cfg.Sonarr.URL != "" && cfg.Sonarr.APIKey == "" {
		return fmt.Errorf("sonarr.api_key must be set when sonarr.url is set")
	}

	if cfg.Check.MaxAttempts < 1 {
		return fmt.Errorf("check.max_attempts must be at least 1")
	}
	if cfg.Check.SeasonsToCheck < 1 {
		return fmt.Errorf("check.seasons_to_check must be at least 1")
	}

	validStrategies := map[string]bool{
		"recent":      true,
		"distributed": true,
		"all":         true,
	}
	if !validStrategies[cfg.Check.Strategy] {
		return fmt.Errorf("invalid check.strategy: %s", cfg.Check.Strategy)
	}

	// Validate logging level
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", cfg.Logging.Level)
	}

	// Validate logging format
	validFormats := map[string]bool{
		"console": true,
		"json":    true,
	}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s", cfg.Logging.Format)
	}

	if cfg.Webhook.Enabled && (cfg.Webhook.Port < 1 || cfg.Webhook.Port > 65535) {
		return fmt.Errorf("invalid webhook.port: %d", cfg.Webhook.Port)
	}
	if cfg.Scheduler.Enabled && cfg.Scheduler.IntervalMinutes < 1 {
		return fmt.Errorf("scheduler.interval_minutes must be at least 1")
	}

	return nil
}
