package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"qbo-backend/pkg/ai"

	"github.com/gin-gonic/gin"
)

// RuntimeConfig holds runtime-configurable settings
type RuntimeConfig struct {
	ChatBaseURL string `json:"chat_base_url"`
	ChatModel   string `json:"chat_model,omitempty"`
}

var (
	runtimeConfig     RuntimeConfig
	runtimeAPIKey     string
	runtimeConfigLock sync.RWMutex
)

// InitRuntimeConfig initializes runtime config from static config
func InitRuntimeConfig(chatBaseURL, chatModel, apiKey string) {
	runtimeConfigLock.Lock()
	defer runtimeConfigLock.Unlock()
	runtimeConfig = RuntimeConfig{
		ChatBaseURL: chatBaseURL,
		ChatModel:   chatModel,
	}
	runtimeAPIKey = apiKey
}

// GetRuntimeChatBaseURL returns the current chat-completions base URL
func GetRuntimeChatBaseURL() string {
	runtimeConfigLock.RLock()
	defer runtimeConfigLock.RUnlock()
	return runtimeConfig.ChatBaseURL
}

// GetRuntimeChatModel returns the current chat-completions model
func GetRuntimeChatModel() string {
	runtimeConfigLock.RLock()
	defer runtimeConfigLock.RUnlock()
	return runtimeConfig.ChatModel
}

// UpdateAISettingsRequest represents the request body for updating AI settings
type UpdateAISettingsRequest struct {
	ChatBaseURL string `json:"chat_base_url" binding:"required"`
	ChatModel   string `json:"chat_model,omitempty"`
}

// GetAISettings returns the current chat endpoint configuration
// GET /api/settings/ai
func GetAISettings(c *gin.Context) {
	runtimeConfigLock.RLock()
	defer runtimeConfigLock.RUnlock()

	c.JSON(http.StatusOK, gin.H{
		"chat_base_url": runtimeConfig.ChatBaseURL,
		"chat_model":    runtimeConfig.ChatModel,
	})
}

// UpdateAISettings points the chat-completions provider at a new endpoint or model
// PUT /api/settings/ai
func UpdateAISettings(c *gin.Context) {
	var req UpdateAISettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	runtimeConfigLock.Lock()
	runtimeConfig.ChatBaseURL = req.ChatBaseURL
	if req.ChatModel != "" {
		runtimeConfig.ChatModel = req.ChatModel
	}
	runtimeConfigLock.Unlock()

	c.JSON(http.StatusOK, gin.H{
		"message":       "AI settings updated successfully",
		"chat_base_url": req.ChatBaseURL,
		"chat_model":    GetRuntimeChatModel(),
	})
}

// TestAIConnection checks that the chat endpoint answers
// POST /api/settings/ai/test
func TestAIConnection(c *gin.Context) {
	var req struct {
		ChatBaseURL string `json:"chat_base_url"`
	}
	_ = c.ShouldBindJSON(&req)
	if req.ChatBaseURL == "" {
		req.ChatBaseURL = GetRuntimeChatBaseURL()
	}

	runtimeConfigLock.RLock()
	apiKey := runtimeAPIKey
	runtimeConfigLock.RUnlock()

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	probe := ai.NewChatCompletionsService(req.ChatBaseURL, GetRuntimeChatModel(), apiKey)
	if err := probe.Ping(ctx, req.ChatBaseURL); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"connected": false,
			"error":     err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"connected":     true,
		"chat_base_url": req.ChatBaseURL,
	})
}
