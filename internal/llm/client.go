// Package llm provides the language-model boundary for test case
// generation. The model is treated as an opaque, best-effort structured
// text service behind the Client interface; one concrete adapter exists
// per provider so the provider can be swapped or mocked in tests.
package llm

import (
	"context"
	"fmt"
	"time"
)

// Client defines the interface for LLM providers.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
	CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Config holds provider configuration.
type Config struct {
	// Provider: "openai", "gemini", "ollama" or "mock"
	Provider string `yaml:"provider"`

	APIKey      string  `yaml:"api_key"`
	Model       string  `yaml:"model"`
	BaseURL     string  `yaml:"base_url"`
	Timeout     string  `yaml:"timeout"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
}

// DefaultConfig returns sensible defaults. Low temperature keeps the
// structured output stable.
func DefaultConfig() Config {
	return Config{
		Provider:    "openai",
		Model:       "gpt-4o-mini",
		BaseURL:     "https://api.openai.com/v1",
		Timeout:     "120s",
		MaxTokens:   4096,
		Temperature: 0.3,
	}
}

// ParseTimeout resolves the configured timeout with a fallback.
func (c Config) ParseTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return 120 * time.Second
	}
	return d
}

// NewClient creates a client for the configured provider.
func NewClient(cfg Config) (Client, error) {
	switch cfg.Provider {
	case "openai":
		return NewOpenAIClient(cfg), nil
	case "gemini":
		return NewGeminiClient(cfg), nil
	case "ollama":
		return NewOllamaClient(cfg), nil
	case "mock":
		return NewMockClient(), nil
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s (use 'openai', 'gemini', 'ollama' or 'mock')", cfg.Provider)
	}
}
