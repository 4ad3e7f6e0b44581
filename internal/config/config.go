package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Environment string
	Host        string `toml:"host"`
	Port        int    `toml:"port"`

	// logging
	LogLevel    string `toml:"log_level"`
	LogsPath    string `toml:"logs_path"`
	LogToStdout bool   `toml:"log_to_stdout"`

	SentryEnabled bool `toml:"sentry_enabled"`

	// prometheus metrics
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`

	// redis: login sessions, session snapshots, rate limiting
	RedisHost string `toml:"redis_host"`
	RedisPort string `toml:"redis_port"`

	// spreadsheet store
	SpreadsheetID         string `toml:"spreadsheet_id"`
	SheetsCredentialsPath string `toml:"sheets_credentials_path"`

	// coach (AI routine generation) service
	CoachAPIURL          string `toml:"coach_api_url"`
	CoachRateLimitPerMin int    `toml:"coach_rate_limit_per_min"`

	LoginRateLimitAllowedPerMin int `toml:"login_rate_limit_allowed_per_min"`

	// seconds to wait after a workout completes before the engine
	// global status falls back to idle (if nobody else is training)
	SessionGraceDelaySeconds int `toml:"session_grace_delay_seconds"`
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	switch strings.ToLower(env) {
	case "dev", "development":
		return t.Development, nil
	case "prod", "production":
		return t.Production, nil
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
}

func Load(env, path string) (*Config, error) {
	var tomlCfg Toml
	if _, err := toml.DecodeFile(path, &tomlCfg); err != nil {
		return nil, fmt.Errorf("decode config file: %w", err)
	}

	cfg, err := tomlCfg.Get(env)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, fmt.Errorf("config for env %q empty", env)
	}

	cfg.Environment = env

	if cfg.LoginRateLimitAllowedPerMin <= 0 {
		cfg.LoginRateLimitAllowedPerMin = 15
	}
	if cfg.CoachRateLimitPerMin <= 0 {
		cfg.CoachRateLimitPerMin = 5
	}
	if cfg.SessionGraceDelaySeconds <= 0 {
		cfg.SessionGraceDelaySeconds = 2
	}

	return cfg, nil
}
