package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/chatbridge/logging"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
	t.Setenv("MONGODB_DB_NAME", "chatbridge")
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.Equal(t, "gpt-3.5-turbo", cfg.OpenAIDefaultModel)
	assert.Equal(t, []string{"gpt-3.5-turbo", "gpt-4"}, cfg.OpenAIAvailableModels)
	assert.Equal(t, 10, cfg.OpenAIMaxHistory)
	assert.EqualValues(t, 2000, cfg.OpenAIMaxTokens)
	assert.InDelta(t, 0.7, cfg.OpenAITemperature, 1e-9)
	assert.Equal(t, 24*time.Hour, cfg.ReconcileInterval)

	errs := cfg.Validate()
	require.Len(t, errs, 2, "only the Mongo connection is missing")
	assert.Equal(t, "MONGODB_URI", errs[0].Field)
	assert.Equal(t, "MONGODB_DB_NAME", errs[1].Field)
}

func TestLoad_FromEnvironment(t *testing.T) {
	setRequired(t)
	t.Setenv("LOG_LEVEL", "warning")
	t.Setenv("DISCORD_GUILD_ID", "1234567890")
	t.Setenv("OPENAI_AVAILABLE_MODELS", "gpt-4, gpt-4o")
	t.Setenv("OPENAI_DEFAULT_MODEL", "gpt-4o")
	t.Setenv("OPENAI_MAX_HISTORY", "5")
	t.Setenv("OPENAI_TEMPERATURE", "1.5")
	t.Setenv("RECONCILE_INTERVAL", "1h30m")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "WARNING", cfg.LogLevel)
	assert.Equal(t, []string{"gpt-4", "gpt-4o"}, cfg.OpenAIAvailableModels)
	assert.Equal(t, "gpt-4o", cfg.OpenAIDefaultModel)
	assert.Equal(t, 5, cfg.OpenAIMaxHistory)
	assert.InDelta(t, 1.5, cfg.OpenAITemperature, 1e-9)
	assert.Equal(t, 90*time.Minute, cfg.ReconcileInterval)
	assert.Equal(t, "chatbridge", cfg.MongoDBName)
	assert.Equal(t, "conversations", cfg.MongoDBCollection)

	id, ok := cfg.GuildID()
	assert.True(t, ok)
	assert.EqualValues(t, 1234567890, id)
	assert.Equal(t, logging.LogLevelWarn, cfg.Logger().Level)
}

func TestLoad_DotEnvFile(t *testing.T) {
	path := writeFile(t, "settings.env", `
DISCORD_TOKEN=token
MONGODB_URI=mongodb://db:27017
MONGODB_DB_NAME=fromfile
OPENAI_MAX_TOKENS=500
`)
	t.Setenv("MONGODB_DB_NAME", "fromenv")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "token", cfg.DiscordToken)
	assert.Equal(t, "mongodb://db:27017", cfg.MongoDBURI)
	assert.Equal(t, "fromenv", cfg.MongoDBName, "environment overrides the file")
	assert.EqualValues(t, 500, cfg.OpenAIMaxTokens)
}

func TestLoad_YAMLFile(t *testing.T) {
	path := writeFile(t, "chatbridge.yaml", `
mongodb_uri: mongodb://db:27017
mongodb_db_name: bot
provider: anthropic
anthropic_model: claude-3-5-haiku-20241022
openai_available_models: [gpt-4]
openai_default_model: gpt-4
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ProviderAnthropic, cfg.Provider)
	assert.Equal(t, "claude-3-5-haiku-20241022", cfg.AnthropicModel)
	assert.Equal(t, []string{"gpt-4"}, cfg.OpenAIAvailableModels)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_ValidationErrors(t *testing.T) {
	setRequired(t)
	t.Setenv("LOG_LEVEL", "verbose")
	t.Setenv("DISCORD_GUILD_ID", "not-a-number")
	t.Setenv("OPENAI_DEFAULT_MODEL", "gpt-5")
	t.Setenv("OPENAI_TEMPERATURE", "3")
	t.Setenv("PROVIDER", "llama")

	_, err := Load("")
	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs))

	fields := make([]string, 0, len(verrs))
	for _, e := range verrs {
		fields = append(fields, e.Field)
	}
	assert.ElementsMatch(t, []string{
		"LOG_LEVEL", "DISCORD_GUILD_ID", "PROVIDER", "OPENAI_DEFAULT_MODEL", "OPENAI_TEMPERATURE",
	}, fields)
	assert.Contains(t, err.Error(), "5 validation errors")
}

func TestValidateProvider(t *testing.T) {
	cfg := Default()
	var verrs ValidationErrors
	require.ErrorAs(t, cfg.ValidateProvider(), &verrs)
	assert.Equal(t, "OPENAI_API_KEY", verrs[0].Field)

	cfg.Provider = ProviderAnthropic
	require.ErrorAs(t, cfg.ValidateProvider(), &verrs)
	assert.Equal(t, "ANTHROPIC_API_KEY", verrs[0].Field)

	cfg.AnthropicAPIKey = "key"
	assert.NoError(t, cfg.ValidateProvider())
}

func TestValidationError_Format(t *testing.T) {
	e := ValidationError{Field: "OPENAI_MAX_HISTORY", Value: 0, Message: "must be positive"}
	assert.Equal(t, "OPENAI_MAX_HISTORY: must be positive (got: 0)", e.Error())
	assert.Empty(t, ValidationErrors(nil).Error())
}
