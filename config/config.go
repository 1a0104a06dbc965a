package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/hupe1980/chatbridge/logging"
)

// Supported response providers.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Config holds every setting of a chatbridge process.
type Config struct {
	// Chat platform
	DiscordToken   string `mapstructure:"discord_token"`
	DiscordGuildID string `mapstructure:"discord_guild_id"`

	// Logging
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	// Response generation
	Provider              string   `mapstructure:"provider"`
	SystemPrompt          string   `mapstructure:"system_prompt"`
	OpenAIAPIKey          string   `mapstructure:"openai_api_key"`
	OpenAIDefaultModel    string   `mapstructure:"openai_default_model"`
	OpenAIAvailableModels []string `mapstructure:"openai_available_models"`
	OpenAIMaxHistory      int      `mapstructure:"openai_max_history"`
	OpenAIMaxTokens       int64    `mapstructure:"openai_max_tokens"`
	OpenAITemperature     float64  `mapstructure:"openai_temperature"`
	AnthropicAPIKey       string   `mapstructure:"anthropic_api_key"`
	AnthropicModel        string   `mapstructure:"anthropic_model"`

	// Persistence
	MongoDBURI        string `mapstructure:"mongodb_uri"`
	MongoDBName       string `mapstructure:"mongodb_db_name"`
	MongoDBCollection string `mapstructure:"mongodb_collection"`

	// Reconciliation
	ReconcileInterval time.Duration `mapstructure:"reconcile_interval"`
}

// Default returns a Config with default values. Secrets and the Mongo
// connection stay empty.
func Default() *Config {
	return &Config{
		LogLevel:              "INFO",
		LogFormat:             "json",
		Provider:              ProviderOpenAI,
		SystemPrompt:          "You are a helpful assistant.",
		OpenAIDefaultModel:    "gpt-3.5-turbo",
		OpenAIAvailableModels: []string{"gpt-3.5-turbo", "gpt-4"},
		OpenAIMaxHistory:      10,
		OpenAIMaxTokens:       2000,
		OpenAITemperature:     0.7,
		AnthropicModel:        "claude-3-5-sonnet-20241022",
		MongoDBCollection:     "conversations",
		ReconcileInterval:     24 * time.Hour,
	}
}

// setDefaults registers default values with v. Every key must be registered
// for AutomaticEnv to reach it during Unmarshal.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("discord_token", defaults.DiscordToken)
	v.SetDefault("discord_guild_id", defaults.DiscordGuildID)

	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("log_format", defaults.LogFormat)

	v.SetDefault("provider", defaults.Provider)
	v.SetDefault("system_prompt", defaults.SystemPrompt)
	v.SetDefault("openai_api_key", defaults.OpenAIAPIKey)
	v.SetDefault("openai_default_model", defaults.OpenAIDefaultModel)
	v.SetDefault("openai_available_models", defaults.OpenAIAvailableModels)
	v.SetDefault("openai_max_history", defaults.OpenAIMaxHistory)
	v.SetDefault("openai_max_tokens", defaults.OpenAIMaxTokens)
	v.SetDefault("openai_temperature", defaults.OpenAITemperature)
	v.SetDefault("anthropic_api_key", defaults.AnthropicAPIKey)
	v.SetDefault("anthropic_model", defaults.AnthropicModel)

	v.SetDefault("mongodb_uri", defaults.MongoDBURI)
	v.SetDefault("mongodb_db_name", defaults.MongoDBName)
	v.SetDefault("mongodb_collection", defaults.MongoDBCollection)

	v.SetDefault("reconcile_interval", defaults.ReconcileInterval)
}

// Load reads the configuration and validates it. path may name a .env,
// YAML, JSON or TOML file; an empty path falls back to ./.env when present.
// Environment variables take precedence over the file.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if path == "" {
		if _, err := os.Stat(".env"); err == nil {
			path = ".env"
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		if strings.HasSuffix(path, ".env") {
			v.SetConfigType("env")
		}
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.normalize()

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}
	return &cfg, nil
}

func (c *Config) normalize() {
	c.LogLevel = strings.ToUpper(strings.TrimSpace(c.LogLevel))
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))

	models := c.OpenAIAvailableModels[:0]
	for _, m := range c.OpenAIAvailableModels {
		if m = strings.Trim(strings.TrimSpace(m), `"[]`); m != "" {
			models = append(models, m)
		}
	}
	c.OpenAIAvailableModels = models
}

// Logger returns the logging configuration derived from LogLevel and LogFormat.
func (c *Config) Logger() *logging.LoggerConfig {
	cfg := logging.DefaultLoggerConfig()
	if lvl, err := logging.ParseLevel(c.LogLevel); err == nil {
		cfg.Level = lvl
	}
	if c.LogFormat != "" {
		cfg.Format = c.LogFormat
	}
	return cfg
}
