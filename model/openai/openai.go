// Package openai provides a model.Generator backed by the OpenAI Chat
// Completions API.
package openai

import (
	"context"
	"fmt"
	"slices"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/hupe1980/chatbridge/model"
)

// DefaultModels is the catalog used when Options.Models is empty.
var DefaultModels = []string{
	openai.ChatModelGPT4oMini,
	openai.ChatModelGPT4o,
	openai.ChatModelGPT3_5Turbo,
}

// Options configure the OpenAI generator.
type Options struct {
	// Model used when a request names none.
	Model string
	// Models accepted by ValidateModel.
	Models              []string
	Temperature         float64
	MaxCompletionTokens int64
	// APIKey overrides OPENAI_API_KEY.
	APIKey string
	// RequestOptions are passed to the client (base URL, retries, HTTP client).
	RequestOptions []option.RequestOption
}

// Compile-time check
var _ model.Generator = (*Generator)(nil)

// Generator wraps the OpenAI Chat Completions API behind model.Generator.
type Generator struct {
	client *openai.Client
	opts   Options
}

// New creates a generator using the official client.
func New(optFns ...func(o *Options)) *Generator {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	clientOpts := slices.Clone(opts.RequestOptions)
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	client := openai.NewClient(clientOpts...)
	return newGenerator(&client, opts)
}

// NewFromClient creates a generator from an existing client.
func NewFromClient(client *openai.Client, optFns ...func(o *Options)) *Generator {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return newGenerator(client, opts)
}

func defaultOptions() Options {
	return Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.7,
		MaxCompletionTokens: 1000,
	}
}

func newGenerator(client *openai.Client, opts Options) *Generator {
	if len(opts.Models) == 0 {
		opts.Models = slices.Clone(DefaultModels)
	}
	if !slices.Contains(opts.Models, opts.Model) {
		opts.Models = append(opts.Models, opts.Model)
	}
	return &Generator{client: client, opts: opts}
}

// Generate implements model.Generator.
func (g *Generator) Generate(ctx context.Context, req model.Request) (*model.Response, error) {
	if len(req.Messages) == 0 {
		return nil, model.ErrNoMessages
	}
	name, err := model.ResolveModel(req.Model, g.opts.Model, g.opts.Models)
	if err != nil {
		return nil, err
	}

	resp, err := g.client.Chat.Completions.New(ctx, g.buildParams(name, req))
	if err != nil {
		return nil, fmt.Errorf("openai api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, model.ErrNoChoices
	}

	ch0 := resp.Choices[0]
	return &model.Response{
		Content:      ch0.Message.Content,
		Model:        resp.Model,
		FinishReason: ch0.FinishReason,
		Usage: model.TokenUsage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}

// buildParams assembles the request parameters, filling zero request fields
// from the generator defaults.
func (g *Generator) buildParams(name string, req model.Request) openai.ChatCompletionNewParams {
	temperature := g.opts.Temperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}
	maxTokens := g.opts.MaxCompletionTokens
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}
	return openai.ChatCompletionNewParams{
		Messages:            buildMessages(req.Messages),
		Model:               name,
		Temperature:         openai.Float(temperature),
		MaxCompletionTokens: openai.Int(maxTokens),
	}
}

// buildMessages converts normalized messages into OpenAI chat messages.
// Unknown roles are sent as user messages.
func buildMessages(msgs []model.Message) []openai.ChatCompletionMessageParamUnion {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case "system":
			messages = append(messages, openai.SystemMessage(m.Content))
		case "assistant":
			messages = append(messages, openai.AssistantMessage(m.Content))
		default:
			messages = append(messages, openai.UserMessage(m.Content))
		}
	}
	return messages
}

// Models implements model.Generator.
func (g *Generator) Models() []string { return slices.Clone(g.opts.Models) }

// ValidateModel implements model.Generator.
func (g *Generator) ValidateModel(name string) bool { return slices.Contains(g.opts.Models, name) }

// Info returns metadata describing this generator.
func (g *Generator) Info() model.Info {
	return model.Info{Name: g.opts.Model, Provider: "openai"}
}
