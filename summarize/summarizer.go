package summarize

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	DefaultInstruction = "Extract key points and themes. Be concise."
	DefaultMaxTokens   = 4000
	DefaultTemperature = 0.2

	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

var (
	ErrMissingAPIKey = errors.New("llm api key required")
	ErrEmptyResponse = errors.New("model returned no text")
)

type Request struct {
	URL         string
	Instruction string
	Title       string
	Channel     string
}

type Summarizer interface {
	Name() string
	Model() string
	Summarize(ctx context.Context, req Request) (string, error)
	// Stream calls onChunk for every piece of text as it arrives and returns
	// the complete text.
	Stream(ctx context.Context, req Request, onChunk func(string)) (string, error)
}

type Config struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
	// BaseURL overrides the api endpoint, leave empty for the default.
	BaseURL string
}

func (c Config) withDefaults(model string) Config {
	if c.Model == "" {
		c.Model = model
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	if c.Temperature <= 0 {
		c.Temperature = DefaultTemperature
	}

	return c
}

func New(ctx context.Context, provider string, cfg Config) (Summarizer, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	switch provider {
	case ProviderGemini, "":
		return NewGemini(ctx, cfg)
	case ProviderOpenAI:
		return NewOpenAI(cfg), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", provider)
	}
}

// ResolveInstruction prefers the user's question, then the configured default
// prompt, then the built-in instruction.
func ResolveInstruction(question, defaultPrompt string) string {
	if q := strings.TrimSpace(question); q != "" {
		return q
	}
	if p := strings.TrimSpace(defaultPrompt); p != "" {
		return p
	}

	return DefaultInstruction
}
