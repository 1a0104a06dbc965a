// Package config loads chatbridge settings from the environment and an
// optional file (.env, YAML, JSON or TOML) through a private viper instance.
//
// Environment variable names are the upper-case keys (DISCORD_TOKEN,
// MONGODB_URI, OPENAI_DEFAULT_MODEL, ...). There is no package level settings
// instance: Load returns a *Config that callers pass on explicitly.
package config
