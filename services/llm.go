package services

import (
	"context"
	"fmt"

	appconfig "research-machine/config"
)

// LLMService defines the interface for commentary generation, independent of
// the underlying provider
type LLMService interface {
	InvokeWithPrompt(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	InvokeStructured(ctx context.Context, systemPrompt, userPrompt string, result interface{}) error
}

// NewLLMService constructs the LLM provider selected by LLM_PROVIDER
func NewLLMService(ctx context.Context, cfg *appconfig.Config) (LLMService, error) {
	switch cfg.LLM.Provider {
	case appconfig.LLMProviderOpenAI:
		return NewOpenAIService(cfg)
	case appconfig.LLMProviderBedrock:
		return NewBedrockService(ctx, cfg.Bedrock.Region, cfg.Bedrock.ModelID)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.LLM.Provider)
	}
}

// Compile-time interface verification
var _ LLMService = (*OpenAIService)(nil)
var _ LLMService = (*BedrockService)(nil)
