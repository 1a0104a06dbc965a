package main

import (
	"context"
	"fmt"
	"time"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/spf13/cobra"

	"github.com/hupe1980/chatbridge/config"
	"github.com/hupe1980/chatbridge/conversation/mongo"
	"github.com/hupe1980/chatbridge/logging"
	"github.com/hupe1980/chatbridge/model"
	"github.com/hupe1980/chatbridge/model/anthropic"
	"github.com/hupe1980/chatbridge/model/openai"
)

var rootCmd = &cobra.Command{
	Use:   "chatbridge",
	Short: "Chat platform to language model bridge",
	Long: `chatbridge keeps per-channel conversation history in MongoDB, answers
messages through a language model and periodically removes conversations
whose channel no longer exists on the platform.

Settings come from the environment (MONGODB_URI, OPENAI_API_KEY, ...),
optionally from a .env or YAML file given with --config.`,
	SilenceUsage: true,
}

var configFile string

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (.env, yaml, json or toml; default ./.env when present)")
}

// loadConfig reads settings and builds the process logger.
func loadConfig() (*config.Config, logging.Logger, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logging.NewLogger(cfg.Logger()), nil
}

// openStore connects to MongoDB and makes sure the channel index exists.
func openStore(ctx context.Context, cfg *config.Config, logger logging.Logger) (*mongo.Store, error) {
	store, err := mongo.Connect(ctx, mongo.Config{
		URI:            cfg.MongoDBURI,
		Database:       cfg.MongoDBName,
		Collection:     cfg.MongoDBCollection,
		AppName:        "chatbridge",
		ConnectTimeout: 10 * time.Second,
	}, func(o *mongo.Options) {
		o.Logger = logger
	})
	if err != nil {
		return nil, err
	}
	if err := store.EnsureIndexes(ctx); err != nil {
		_ = store.Close(context.WithoutCancel(ctx))
		return nil, err
	}
	return store, nil
}

// newGenerator builds the generator of the configured provider.
func newGenerator(cfg *config.Config) (model.Generator, error) {
	if err := cfg.ValidateProvider(); err != nil {
		return nil, err
	}
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return openai.New(func(o *openai.Options) {
			o.APIKey = cfg.OpenAIAPIKey
			o.Model = cfg.OpenAIDefaultModel
			o.Models = cfg.OpenAIAvailableModels
			o.Temperature = cfg.OpenAITemperature
			o.MaxCompletionTokens = cfg.OpenAIMaxTokens
		}), nil
	case config.ProviderAnthropic:
		return anthropic.New(func(o *anthropic.Options) {
			o.APIKey = cfg.AnthropicAPIKey
			o.Model = anthropicsdk.Model(cfg.AnthropicModel)
			o.Temperature = cfg.OpenAITemperature
			o.MaxTokens = cfg.OpenAIMaxTokens
		}), nil
	default:
		return nil, fmt.Errorf("unsupported provider %q", cfg.Provider)
	}
}
