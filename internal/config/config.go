package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Environment string `toml:"environment"`

	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	SentryEnabled bool   `toml:"sentry_enabled"`

	// postgres
	PostgresHost   string `toml:"postgres_host"`
	PostgresPort   string `toml:"postgres_port"`
	PostgresDBName string `toml:"postgres_db_name"`

	// redis is optional; without it the per-student lock is in-process
	// and rebuilds are not throttled
	RedisEnabled bool   `toml:"redis_enabled"`
	RedisHost    string `toml:"redis_host"`
	RedisPort    string `toml:"redis_port"`

	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`
	TracingEnabled        bool   `toml:"tracing_enabled"`

	// TimeZone decides what "today" is for load reports, e.g. "Europe/Madrid".
	TimeZone string `toml:"time_zone"`

	Load LoadConfig `toml:"load"`
}

// LoadConfig holds the muscle load simulation parameters.
// Zero values mean "use the default".
type LoadConfig struct {
	StimulusPrimary    float64 `toml:"stimulus_primary"`
	StimulusSecondary  float64 `toml:"stimulus_secondary"`
	StimulusStabilizer float64 `toml:"stimulus_stabilizer"`
	RecoveryPerDay     float64 `toml:"recovery_per_day"`
	MaxLoad            float64 `toml:"max_load"`
	OverloadedAt       float64 `toml:"overloaded_at"`
	FatiguedAt         float64 `toml:"fatigued_at"`
	ActiveAt           float64 `toml:"active_at"`
	StateEpsilon       float64 `toml:"state_epsilon"`
	BaselineDate       string  `toml:"baseline_date"`
	LockTTL            string  `toml:"lock_ttl"`
	LockWait           string  `toml:"lock_wait"`
	RebuildsPerMinute  int     `toml:"rebuilds_per_minute"`
}

type Toml struct {
	Development *Config `toml:"development"`
	Production  *Config `toml:"production"`
	DockerDev   *Config `toml:"dockerdev"`
}

func (t *Toml) Get(env string) (*Config, error) {
	var cfg *Config
	switch strings.ToLower(env) {
	case "dev", "development":
		cfg = t.Development
	case "prod", "production":
		cfg = t.Production
	case "ddev", "dockerdev":
		cfg = t.DockerDev
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
	if cfg == nil {
		return nil, fmt.Errorf("no config section for env: %s", env)
	}
	return cfg, nil
}

// Load reads the TOML file at path and returns the section for env.
func Load(env, path string) (*Config, error) {
	var t Toml
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("decode config file [%s]: %w", path, err)
	}
	return t.Get(env)
}

// Parse is Load for an in-memory TOML document.
func Parse(env, data string) (*Config, error) {
	var t Toml
	if _, err := toml.Decode(data, &t); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return t.Get(env)
}
