package ai

import (
	"context"
	"fmt"
	"net"
	"strings"

	"github.com/rs/zerolog"
)

// FallbackService routes chat requests across providers:
// the primary (Cerebras) first, then the secondary (Gemini) on any error.
type FallbackService struct {
	primary       ChatService
	secondary     ChatService
	primaryName   string
	secondaryName string
	log           zerolog.Logger
}

// NewFallbackService creates a new fallback service with both providers
func NewFallbackService(primaryName string, primary ChatService, secondaryName string, secondary ChatService, log zerolog.Logger) *FallbackService {
	return &FallbackService{
		primary:       primary,
		secondary:     secondary,
		primaryName:   primaryName,
		secondaryName: secondaryName,
		log:           log,
	}
}

// isConnectionError checks if the error is a network/connection error
func isConnectionError(err error) bool {
	if err == nil {
		return false
	}

	if _, ok := err.(net.Error); ok {
		return true
	}

	connectionIndicators := []string{
		"connection refused",
		"no such host",
		"network is unreachable",
		"connection reset",
		"timeout",
		"dial tcp",
		"EOF",
	}
	return containsAny(err.Error(), connectionIndicators)
}

// isQuotaError checks if the error indicates API quota exhaustion (429)
func isQuotaError(err error) bool {
	if err == nil {
		return false
	}

	quotaIndicators := []string{
		"429",
		"quota",
		"rate limit",
		"too many requests",
		"resource exhausted",
		"RESOURCE_EXHAUSTED",
	}
	return containsAny(err.Error(), quotaIndicators)
}

func containsAny(s string, indicators []string) bool {
	lower := strings.ToLower(s)
	for _, indicator := range indicators {
		if strings.Contains(lower, strings.ToLower(indicator)) {
			return true
		}
	}
	return false
}

func failureReason(err error) string {
	switch {
	case isQuotaError(err):
		return "quota"
	case isConnectionError(err):
		return "connection"
	default:
		return "error"
	}
}

// Chat implements ChatService
func (f *FallbackService) Chat(ctx context.Context, messages []Message, opts ChatOptions) (string, error) {
	var primaryErr error
	if f.primary != nil {
		result, err := f.primary.Chat(ctx, messages, opts)
		if err == nil {
			return result, nil
		}
		primaryErr = err
		f.log.Warn().Err(err).Str("provider", f.primaryName).Str("reason", failureReason(err)).
			Msgf("[AI] %s failed, falling back to %s", f.primaryName, f.secondaryName)
	}

	if f.secondary != nil {
		result, err := f.secondary.Chat(ctx, messages, opts)
		if err == nil {
			f.log.Debug().Str("provider", f.secondaryName).Msg("[AI] fallback chat successful")
			return result, nil
		}
		if primaryErr != nil {
			return "", fmt.Errorf("%s: %v; %s: %w", f.primaryName, primaryErr, f.secondaryName, err)
		}
		return "", fmt.Errorf("%s chat failed: %w", f.secondaryName, err)
	}

	if primaryErr != nil {
		return "", fmt.Errorf("%s chat failed: %w", f.primaryName, primaryErr)
	}
	return "", fmt.Errorf("no AI provider available")
}
