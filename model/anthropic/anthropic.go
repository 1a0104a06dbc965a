// Package anthropic provides a model.Generator backed by the Anthropic
// Messages API.
package anthropic

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/hupe1980/chatbridge/model"
)

// DefaultModels is the catalog used when Options.Models is empty.
var DefaultModels = []string{
	string(anthropic.ModelClaude3_5Sonnet20241022),
	string(anthropic.ModelClaude3_5Haiku20241022),
}

// Options configures the Anthropic generator.
type Options struct {
	Model       anthropic.Model
	Models      []string
	Temperature float64
	MaxTokens   int64
	APIKey      string
	// RequestOptions are passed to the client (base URL, retries, HTTP client).
	RequestOptions []option.RequestOption
}

// Compile-time check
var _ model.Generator = (*Generator)(nil)

// Generator wraps the Anthropic Messages API behind model.Generator.
type Generator struct {
	client *anthropic.Client
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
	client := anthropic.NewClient(clientOpts...)

	return newGenerator(&client, opts)
}

// NewFromClient creates a generator from an existing client.
func NewFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Generator {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return newGenerator(client, opts)
}

func defaultOptions() Options {
	return Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.7,
		MaxTokens:   1000,
	}
}

func newGenerator(client *anthropic.Client, opts Options) *Generator {
	if len(opts.Models) == 0 {
		opts.Models = slices.Clone(DefaultModels)
	}
	if !slices.Contains(opts.Models, string(opts.Model)) {
		opts.Models = append(opts.Models, string(opts.Model))
	}
	return &Generator{client: client, opts: opts}
}

// Generate implements model.Generator. System messages are lifted into the
// system prompt; the remaining turns keep their order.
func (g *Generator) Generate(ctx context.Context, req model.Request) (*model.Response, error) {
	name, err := model.ResolveModel(req.Model, string(g.opts.Model), g.opts.Models)
	if err != nil {
		return nil, err
	}
	messages := buildMessages(req.Messages)
	if len(messages) == 0 {
		return nil, model.ErrNoMessages
	}

	temperature := g.opts.Temperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}
	maxTokens := g.opts.MaxTokens
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(name),
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: anthropic.Float(temperature),
	}
	if system := extractSystem(req.Messages); len(system) > 0 {
		params.System = system
	}

	resp, err := g.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic api error: %w", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.AsText().Text)
		}
	}
	if text.Len() == 0 {
		return nil, model.ErrNoChoices
	}

	finishReason := "stop"
	if resp.StopReason != "" {
		finishReason = string(resp.StopReason)
	}

	return &model.Response{
		Content:      text.String(),
		Model:        string(resp.Model),
		FinishReason: finishReason,
		Usage: model.TokenUsage{
			PromptTokens:     resp.Usage.InputTokens,
			CompletionTokens: resp.Usage.OutputTokens,
			TotalTokens:      resp.Usage.InputTokens + resp.Usage.OutputTokens,
		},
	}, nil
}

// buildMessages converts normalized messages to the Anthropic format. Unknown
// roles are treated as user turns.
func buildMessages(msgs []model.Message) []anthropic.MessageParam {
	var messages []anthropic.MessageParam
	for _, m := range msgs {
		if m.Content == "" {
			continue
		}
		switch m.Role {
		case "system":
			continue
		case "assistant":
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		default:
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}
	return messages
}

// extractSystem collects system messages as text blocks.
func extractSystem(msgs []model.Message) []anthropic.TextBlockParam {
	var blocks []anthropic.TextBlockParam
	for _, m := range msgs {
		if m.Role == "system" && m.Content != "" {
			blocks = append(blocks, anthropic.TextBlockParam{Text: m.Content})
		}
	}
	return blocks
}

// Models implements model.Generator.
func (g *Generator) Models() []string { return slices.Clone(g.opts.Models) }

// ValidateModel implements model.Generator.
func (g *Generator) ValidateModel(name string) bool { return slices.Contains(g.opts.Models, name) }

// Info returns metadata describing this generator.
func (g *Generator) Info() model.Info {
	return model.Info{Name: string(g.opts.Model), Provider: "anthropic"}
}
