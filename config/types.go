package config

// Config represents the complete configuration structure
type Config struct {
	Radarr    ArrConfig       `mapstructure:"radarr"`
	Sonarr    ArrConfig       `mapstructure:"sonarr"`
	Check     CheckConfig     `mapstructure:"check"`
	State     StateConfig     `mapstructure:"state"`
	Webhook   WebhookConfig   `mapstructure:"webhook"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ArrConfig holds connection details for one Radarr or Sonarr instance.
// An instance with an empty URL is treated as not configured.
type ArrConfig struct {
	URL    string `mapstructure:"url"`
	APIKey string `mapstructure:"api_key"`
}

// Configured reports whether this instance can be used.
func (c ArrConfig) Configured() bool {
	return c.URL != "" && c.APIKey != ""
}

// CheckConfig tunes the request layer and the sampling engine.
type CheckConfig struct {
	TimeoutSeconds  int    `mapstructure:"timeout"`
	CacheTTLSeconds int    `mapstructure:"cache_ttl"`
	MaxAttempts     int    `mapstructure:"max_attempts"`
	SeasonsToCheck  int    `mapstructure:"seasons_to_check"`
	Strategy        string `mapstructure:"strategy"`
}

// StateConfig locates the resumable check history.
type StateConfig struct {
	Path        string `mapstructure:"path"`
	RecheckDays int    `mapstructure:"recheck_days"`
}

// WebhookConfig configures the webhook receiver.
type WebhookConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
	APIKey  string `mapstructure:"api_key"`
}

// SchedulerConfig configures the periodic recheck loop.
type SchedulerConfig struct {
	Enabled         bool `mapstructure:"enabled"`
	IntervalMinutes int  `mapstructure:"interval_minutes"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}
