// Package config loads risk desk settings from an optional YAML file with
// RISKDESK_* environment overrides.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Log    LogConfig    `mapstructure:"log"`
	Client ClientConfig `mapstructure:"client"`
	Server ServerConfig `mapstructure:"server"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	Sampling          bool   `mapstructure:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

// ClientConfig configures the desk client (cmd/riskdesk).
type ClientConfig struct {
	BaseURL  string        `mapstructure:"base_url"`
	Tenant   string        `mapstructure:"tenant"`
	Scenario int           `mapstructure:"scenario"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// ServerConfig configures the reference API server (cmd/server).
type ServerConfig struct {
	HTTPAddr        string        `mapstructure:"http_addr"`
	DatabaseURL     string        `mapstructure:"database_url"`
	RedisURL        string        `mapstructure:"redis_url"`
	CacheTTL        time.Duration `mapstructure:"cache_ttl"`
	RateLimit       int           `mapstructure:"rate_limit"`
	RateLimitWindow time.Duration `mapstructure:"rate_limit_window"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// EnvPrefix prefixes every environment override, e.g.
// RISKDESK_SERVER_DATABASE_URL or RISKDESK_CLIENT_TENANT.
const EnvPrefix = "RISKDESK"

// Load reads path (if non-empty) and applies environment overrides on top
// of the defaults.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", false)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", true)
	v.SetDefault("log.disable_stacktrace", true)

	v.SetDefault("client.base_url", "http://localhost:8080")
	v.SetDefault("client.tenant", "default")
	v.SetDefault("client.scenario", 0)
	v.SetDefault("client.timeout", "10s")

	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("server.database_url", "")
	v.SetDefault("server.redis_url", "")
	v.SetDefault("server.cache_ttl", "30s")
	v.SetDefault("server.rate_limit", 120)
	v.SetDefault("server.rate_limit_window", "60s")
	v.SetDefault("server.request_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "5s")

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
