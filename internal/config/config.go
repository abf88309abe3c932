// Package config loads application configuration from config.yaml and
// PULSE_-prefixed environment variables, and initializes the global logger.
package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/llmpulse/radar/internal/llm"
	"github.com/llmpulse/radar/internal/store"
	"github.com/llmpulse/radar/internal/usage"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig             `yaml:"store" mapstructure:"store"`
	Vendors   map[string]VendorEntry  `yaml:"vendors" mapstructure:"vendors"`
	Gemini    GeminiConfig            `yaml:"gemini" mapstructure:"gemini"`
	Cores     []llm.Core              `yaml:"cores" mapstructure:"cores"`
	Transport TransportConfig         `yaml:"transport" mapstructure:"transport"`
	Retry     RetryConfig             `yaml:"retry" mapstructure:"retry"`
	Cache     CacheConfig             `yaml:"cache" mapstructure:"cache"`
	Pricing   usage.Rates             `yaml:"pricing" mapstructure:"pricing"`
	Practice  PracticeConfig          `yaml:"practice" mapstructure:"practice"`
	Server    ServerConfig            `yaml:"server" mapstructure:"server"`
	Log       LogConfig               `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string            `yaml:"driver" mapstructure:"driver"`
	Path        string            `yaml:"path" mapstructure:"path"`
	DatabaseURL string            `yaml:"database_url" mapstructure:"database_url"`
	Pool        *store.PoolConfig `yaml:"pool" mapstructure:"pool"`
}

// VendorEntry configures one OpenAI-compatible vendor endpoint.
type VendorEntry struct {
	URL     string  `yaml:"url" mapstructure:"url"`
	APIKey  string  `yaml:"api_key" mapstructure:"api_key"`
	RateRPS float64 `yaml:"rate_rps" mapstructure:"rate_rps"`
}

// GeminiConfig holds Gemini API settings.
type GeminiConfig struct {
	APIKey string `yaml:"api_key" mapstructure:"api_key"`
}

// TransportConfig bounds per-call wait time.
type TransportConfig struct {
	TimeoutSecs int `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// RetryConfig configures rate-limit retry behavior.
type RetryConfig struct {
	MaxRetries       int `yaml:"max_retries" mapstructure:"max_retries"`
	InitialBackoffMS int `yaml:"initial_backoff_ms" mapstructure:"initial_backoff_ms"`
	MaxBackoffMS     int `yaml:"max_backoff_ms" mapstructure:"max_backoff_ms"`
}

// CacheConfig configures the in-memory response cache.
type CacheConfig struct {
	TTLMinutes int `yaml:"ttl_minutes" mapstructure:"ttl_minutes"`
}

// ChainEntry is one provider in the generation fallback chain.
type ChainEntry struct {
	Vendor string `yaml:"vendor" mapstructure:"vendor"`
	Model  string `yaml:"model" mapstructure:"model"`
}

// PracticeConfig configures daily practice generation.
type PracticeConfig struct {
	Chain []ChainEntry `yaml:"chain" mapstructure:"chain"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Timeout returns the transport timeout as a duration.
func (c TransportConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// TTL returns the cache TTL as a duration.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLMinutes) * time.Minute
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("PULSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "radar.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("transport.timeout_secs", 60)
	v.SetDefault("retry.max_retries", 3)
	v.SetDefault("retry.initial_backoff_ms", 1000)
	v.SetDefault("retry.max_backoff_ms", 30000)
	v.SetDefault("cache.ttl_minutes", 5)
	v.SetDefault("pricing.input_per_mtok", 0.27)
	v.SetDefault("pricing.output_per_mtok", 1.10)
	v.SetDefault("vendors.deepseek.url", "https://api.deepseek.com/chat/completions")
	v.SetDefault("vendors.siliconflow.url", "https://api.siliconflow.cn/v1/chat/completions")
	v.SetDefault("vendors.zhipu.url", "https://open.bigmodel.cn/api/paas/v4/chat/completions")
	v.SetDefault("vendors.aliyun.url", "https://dashscope.aliyuncs.com/compatible-mode/v1/chat/completions")
	v.SetDefault("practice.chain", []map[string]any{
		{"vendor": "deepseek", "model": "deepseek-chat"},
		{"vendor": "zhipu", "model": "glm-4-plus"},
		{"vendor": "aliyun", "model": "qwen-plus"},
	})

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
