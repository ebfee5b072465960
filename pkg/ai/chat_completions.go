package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ChatCompletionsService implements ChatService against an OpenAI-compatible
// /chat/completions endpoint (Cerebras by default).
type ChatCompletionsService struct {
	apiKey     string
	getBaseURL func() string // Dynamic getter for BaseURL
	getModel   func() string // Dynamic getter for Model
	httpClient *http.Client
}

// NewChatCompletionsService creates a service with static settings.
func NewChatCompletionsService(baseURL, model, apiKey string) *ChatCompletionsService {
	if baseURL == "" {
		baseURL = "https://api.cerebras.ai/v1"
	}
	return NewChatCompletionsServiceWithGetters(apiKey, func() string { return baseURL }, func() string { return model })
}

// NewChatCompletionsServiceWithGetters creates a service whose endpoint and model can change at runtime.
func NewChatCompletionsServiceWithGetters(apiKey string, getBaseURL, getModel func() string) *ChatCompletionsService {
	return &ChatCompletionsService{
		apiKey:     apiKey,
		getBaseURL: getBaseURL,
		getModel:   getModel,
		httpClient: &http.Client{Timeout: 90 * time.Second},
	}
}

type chatCompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Chat implements ChatService
func (s *ChatCompletionsService) Chat(ctx context.Context, messages []Message, opts ChatOptions) (string, error) {
	url := strings.TrimRight(s.getBaseURL(), "/") + "/chat/completions"

	body, err := json.Marshal(chatCompletionRequest{
		Model:       s.getModel(),
		Messages:    messages,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("chat API error (%d): %s", resp.StatusCode, string(respBody))
	}

	var result chatCompletionResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("chat API returned no choices")
	}
	return result.Choices[0].Message.Content, nil
}

// Ping checks that the endpoint answers its model listing.
func (s *ChatCompletionsService) Ping(ctx context.Context, baseURL string) error {
	if baseURL == "" {
		baseURL = s.getBaseURL()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(baseURL, "/")+"/models", nil)
	if err != nil {
		return err
	}
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("models endpoint returned %d", resp.StatusCode)
	}
	return nil
}
