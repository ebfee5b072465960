package delivery

import (
	"net/http"
	"strings"

	"qbo-backend/internal/insights/usecase"

	"github.com/gin-gonic/gin"
)

// InsightsHandler serves the summary, dashboard and analysis chat
type InsightsHandler struct {
	insightsUsecase usecase.InsightsUsecase
}

// NewInsightsHandler creates a new InsightsHandler
func NewInsightsHandler(insightsUsecase usecase.InsightsUsecase) *InsightsHandler {
	return &InsightsHandler{insightsUsecase: insightsUsecase}
}

// ChatRequest is the body of POST /api/chat
type ChatRequest struct {
	Message string `json:"message"`
}

// Summary returns aggregates over the stored data
// GET /api/data/summary
func (h *InsightsHandler) Summary(c *gin.Context) {
	summary, err := h.insightsUsecase.Summary()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Dashboard returns the summary with the connection state
// GET /api/dashboard
func (h *InsightsHandler) Dashboard(c *gin.Context) {
	dashboard, err := h.insightsUsecase.Dashboard()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

// Chat answers a question about the stored data
// POST /api/chat
func (h *InsightsHandler) Chat(c *gin.Context) {
	var req ChatRequest
	_ = c.ShouldBindJSON(&req)
	if strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing message"})
		return
	}

	answer, err := h.insightsUsecase.Ask(c.Request.Context(), req.Message)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, answer)
}

// RegisterRoutes mounts the insights routes on the /api group.
func (h *InsightsHandler) RegisterRoutes(api *gin.RouterGroup) {
	api.GET("/data/summary", h.Summary)
	api.GET("/dashboard", h.Dashboard)
	api.POST("/chat", h.Chat)
}
