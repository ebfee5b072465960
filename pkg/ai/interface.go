package ai

import (
	"context"
)

// Role is a chat message author.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of a chat conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ChatOptions tunes a single completion.
type ChatOptions struct {
	Temperature float64
	MaxTokens   int
}

// ChatService is the interface for chat-completion providers.
// Implement this interface to add new AI providers (Cerebras, Gemini, OpenAI, etc.)
type ChatService interface {
	Chat(ctx context.Context, messages []Message, opts ChatOptions) (string, error)
}

// ProviderType represents the AI provider type
type ProviderType string

const (
	ProviderCerebras ProviderType = "cerebras"
	ProviderGemini   ProviderType = "gemini"
	ProviderAuto     ProviderType = "auto"
)
