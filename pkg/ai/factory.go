package ai

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// DynamicConfig holds AI provider configuration. The chat-completions endpoint
// and model are read through getters so they can change at runtime.
type DynamicConfig struct {
	Provider ProviderType

	CerebrasAPIKey     string
	GetCerebrasBaseURL func() string
	GetCerebrasModel   func() string

	GeminiAPIKey string
	GeminiModel  string
}

// NewChatService builds the ChatService for cfg.Provider.
// ProviderAuto chains every configured provider behind a FallbackService.
func NewChatService(ctx context.Context, cfg DynamicConfig, log zerolog.Logger) (ChatService, error) {
	var cerebras ChatService
	if cfg.CerebrasAPIKey != "" {
		cerebras = NewChatCompletionsServiceWithGetters(cfg.CerebrasAPIKey, cfg.GetCerebrasBaseURL, cfg.GetCerebrasModel)
	}

	var gemini ChatService
	if cfg.GeminiAPIKey != "" {
		g, err := NewGeminiService(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, err
		}
		gemini = g
	}

	switch cfg.Provider {
	case ProviderCerebras:
		if cerebras == nil {
			return nil, fmt.Errorf("CEREBRAS_API_KEY is required for cerebras provider")
		}
		return cerebras, nil

	case ProviderGemini:
		if gemini == nil {
			return nil, fmt.Errorf("GEMINI_API_KEY is required for gemini provider")
		}
		return gemini, nil

	default:
		if cerebras == nil && gemini == nil {
			return nil, fmt.Errorf("no AI provider configured")
		}
		return NewFallbackService(string(ProviderCerebras), cerebras, string(ProviderGemini), gemini, log), nil
	}
}
