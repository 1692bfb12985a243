package models

import (
	"context"
	"fmt"
)

// ProviderOptions selects and configures a concrete model backend.
type ProviderOptions struct {
	Provider     string
	APIKey       string
	ModelName    string
	Fallbacks    []string // additional model names tried in order (Gemini)
	Host         string   // Ollama daemon address
	Params       GenParams
	PromptPrefix string
}

// NewProvider returns a concrete Model for the named provider.
func NewProvider(ctx context.Context, opts ProviderOptions) (Model, error) {
	switch opts.Provider {
	case "gemini", "google":
		names := append([]string{opts.ModelName}, opts.Fallbacks...)
		return NewGeminiModel(ctx, opts.APIKey, names, opts.Params, opts.PromptPrefix)
	case "openai":
		return NewOpenAIModel(opts.APIKey, opts.ModelName, opts.Params, opts.PromptPrefix), nil
	case "anthropic", "claude":
		return NewAnthropicModel(opts.APIKey, opts.ModelName, opts.Params, opts.PromptPrefix), nil
	case "ollama":
		return NewOllamaModel(opts.Host, opts.ModelName, opts.Params, opts.PromptPrefix)
	case "dummy":
		return NewDummyModel(opts.PromptPrefix), nil
	default:
		return nil, fmt.Errorf("unknown provider: %s", opts.Provider)
	}
}
