package model

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
)

var (
	// ErrNoChoices is returned when a provider answers without any completion.
	ErrNoChoices = errors.New("model returned no choices")

	// ErrUnknownModel is returned when a request names a model outside the
	// generator's catalog.
	ErrUnknownModel = errors.New("model not available")

	// ErrNoMessages is returned for a request without messages.
	ErrNoMessages = errors.New("no messages provided")
)

// Message is a single role-tagged turn sent to the model.
type Message struct {
	Role    string `json:"role"` // "system", "user", "assistant"
	Content string `json:"content"`
}

// Request captures the normalized generation input. Zero fields fall back to
// the provider's configured defaults.
type Request struct {
	Messages    []Message `json:"messages"`
	Model       string    `json:"model,omitempty"`
	Temperature *float64  `json:"temperature,omitempty"`
	MaxTokens   int64     `json:"max_tokens,omitempty"`
}

// TokenUsage captures token usage statistics for a response.
type TokenUsage struct {
	PromptTokens     int64 `json:"prompt_tokens"`
	CompletionTokens int64 `json:"completion_tokens"`
	TotalTokens      int64 `json:"total_tokens"`
}

// Response is the final completion.
type Response struct {
	Content      string     `json:"content"`
	Model        string     `json:"model"`
	FinishReason string     `json:"finish_reason"` // "stop", "length", "end_turn", etc.
	Usage        TokenUsage `json:"usage"`
}

// Info contains metadata about a generator implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "openai", "anthropic", "mock"
}

// Generator is the response generation capability.
type Generator interface {
	// Generate produces one assistant reply for req.
	Generate(ctx context.Context, req Request) (*Response, error)

	// Models lists the model names this generator accepts.
	Models() []string

	// ValidateModel reports whether name is in Models.
	ValidateModel(name string) bool

	// Info returns information about the generator implementation.
	Info() Info
}

// Temperature returns a pointer to t for use in Request.
func Temperature(t float64) *float64 { return &t }

// ResolveModel picks the request model or the fallback and checks it
// against the catalog. An empty catalog accepts any name.
func ResolveModel(requested, fallback string, catalog []string) (string, error) {
	name := requested
	if name == "" {
		name = fallback
	}
	if len(catalog) > 0 && !slices.Contains(catalog, name) {
		return "", fmt.Errorf("%w: %q", ErrUnknownModel, name)
	}
	return name, nil
}

// MockGenerator is a lightweight in-memory Generator useful for tests and
// examples. It is safe for concurrent use.
type MockGenerator struct {
	info   Info
	models []string

	mu        sync.Mutex
	responses map[string]string
	err       error
	requests  []Request
}

// NewMockGenerator constructs a MockGenerator that accepts the given models.
func NewMockGenerator(models ...string) *MockGenerator {
	if len(models) == 0 {
		models = []string{"mock"}
	}
	return &MockGenerator{
		info:      Info{Name: models[0], Provider: "mock"},
		models:    models,
		responses: make(map[string]string),
	}
}

// AddResponse registers a deterministic canned completion for an input prompt.
func (m *MockGenerator) AddResponse(prompt, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[prompt] = response
}

// FailWith makes subsequent calls return err. A nil err clears it.
func (m *MockGenerator) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Requests returns the requests received so far.
func (m *MockGenerator) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.requests)
}

// Generate implements Generator. It answers with the canned response for the
// last message or echoes it.
func (m *MockGenerator) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name, err := ResolveModel(req.Model, m.info.Name, m.models)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	req.Messages = slices.Clone(req.Messages)
	m.requests = append(m.requests, req)
	if m.err != nil {
		return nil, m.err
	}
	if len(req.Messages) == 0 {
		return nil, ErrNoMessages
	}

	input := req.Messages[len(req.Messages)-1].Content
	full, ok := m.responses[input]
	if !ok {
		full = fmt.Sprintf("Mock response to: %s", input)
	}
	return &Response{Content: full, Model: name, FinishReason: "stop"}, nil
}

// Models implements Generator.
func (m *MockGenerator) Models() []string { return slices.Clone(m.models) }

// ValidateModel implements Generator.
func (m *MockGenerator) ValidateModel(name string) bool { return slices.Contains(m.models, name) }

// Info implements Generator.
func (m *MockGenerator) Info() Info { return m.info }
