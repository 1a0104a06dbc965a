package config

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The environment key, e.g. "OPENAI_TEMPERATURE"
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidLogLevels returns the accepted LOG_LEVEL values.
func ValidLogLevels() []string {
	return []string{"DEBUG", "INFO", "WARNING", "ERROR", "CRITICAL"}
}

// ValidProviders returns the accepted PROVIDER values.
func ValidProviders() []string {
	return []string{ProviderOpenAI, ProviderAnthropic}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError
	errors = append(errors, c.validatePlatform()...)
	errors = append(errors, c.validateModel()...)
	errors = append(errors, c.validateStorage()...)
	if c.ReconcileInterval <= 0 {
		errors = append(errors, ValidationError{
			Field:   "RECONCILE_INTERVAL",
			Value:   c.ReconcileInterval,
			Message: "must be positive",
		})
	}
	return errors
}

func (c *Config) validatePlatform() []ValidationError {
	var errors []ValidationError
	if !slices.Contains(ValidLogLevels(), strings.ToUpper(c.LogLevel)) {
		errors = append(errors, ValidationError{
			Field:   "LOG_LEVEL",
			Value:   c.LogLevel,
			Message: fmt.Sprintf("must be one of %v", ValidLogLevels()),
		})
	}
	if c.DiscordGuildID != "" {
		if _, err := strconv.ParseInt(c.DiscordGuildID, 10, 64); err != nil {
			errors = append(errors, ValidationError{
				Field:   "DISCORD_GUILD_ID",
				Value:   c.DiscordGuildID,
				Message: "must be a valid integer if provided",
			})
		}
	}
	return errors
}

func (c *Config) validateModel() []ValidationError {
	var errors []ValidationError
	if !slices.Contains(ValidProviders(), c.Provider) {
		errors = append(errors, ValidationError{
			Field:   "PROVIDER",
			Value:   c.Provider,
			Message: fmt.Sprintf("must be one of %v", ValidProviders()),
		})
	}
	if len(c.OpenAIAvailableModels) == 0 {
		errors = append(errors, ValidationError{
			Field:   "OPENAI_AVAILABLE_MODELS",
			Value:   c.OpenAIAvailableModels,
			Message: "must list at least one model",
		})
	} else if !slices.Contains(c.OpenAIAvailableModels, c.OpenAIDefaultModel) {
		errors = append(errors, ValidationError{
			Field:   "OPENAI_DEFAULT_MODEL",
			Value:   c.OpenAIDefaultModel,
			Message: "must be one of OPENAI_AVAILABLE_MODELS",
		})
	}
	if c.OpenAIMaxHistory <= 0 {
		errors = append(errors, ValidationError{Field: "OPENAI_MAX_HISTORY", Value: c.OpenAIMaxHistory, Message: "must be positive"})
	}
	if c.OpenAIMaxTokens <= 0 {
		errors = append(errors, ValidationError{Field: "OPENAI_MAX_TOKENS", Value: c.OpenAIMaxTokens, Message: "must be positive"})
	}
	if c.OpenAITemperature < 0 || c.OpenAITemperature > 2 {
		errors = append(errors, ValidationError{
			Field:   "OPENAI_TEMPERATURE",
			Value:   c.OpenAITemperature,
			Message: "must be between 0 and 2",
		})
	}
	return errors
}

func (c *Config) validateStorage() []ValidationError {
	var errors []ValidationError
	if c.MongoDBURI == "" {
		errors = append(errors, ValidationError{Field: "MONGODB_URI", Value: c.MongoDBURI, Message: "is required"})
	}
	if c.MongoDBName == "" {
		errors = append(errors, ValidationError{Field: "MONGODB_DB_NAME", Value: c.MongoDBName, Message: "is required"})
	}
	return errors
}

// ValidateProvider checks that the selected provider has an API key. Load
// does not require one so that storage-only commands run without secrets.
func (c *Config) ValidateProvider() error {
	var errs ValidationErrors
	switch c.Provider {
	case ProviderAnthropic:
		if c.AnthropicAPIKey == "" {
			errs = append(errs, ValidationError{Field: "ANTHROPIC_API_KEY", Value: "", Message: "is required"})
		}
	default:
		if c.OpenAIAPIKey == "" {
			errs = append(errs, ValidationError{Field: "OPENAI_API_KEY", Value: "", Message: "is required"})
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// GuildID returns the parsed DISCORD_GUILD_ID and whether one is set.
func (c *Config) GuildID() (int64, bool) {
	if c.DiscordGuildID == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(c.DiscordGuildID, 10, 64)
	return id, err == nil
}
