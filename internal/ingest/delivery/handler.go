package delivery

import (
	"errors"
	"net/http"
	"strconv"

	"qbo-backend/internal/ingest/usecase"

	"github.com/gin-gonic/gin"
)

const defaultRunLimit = 20

// IngestHandler triggers ingestion and lists past runs
type IngestHandler struct {
	ingestUsecase usecase.IngestUsecase
}

// NewIngestHandler creates a new IngestHandler
func NewIngestHandler(ingestUsecase usecase.IngestUsecase) *IngestHandler {
	return &IngestHandler{ingestUsecase: ingestUsecase}
}

// Ingest runs a full ingestion and waits for it to finish
// POST /api/data/ingest
func (h *IngestHandler) Ingest(c *gin.Context) {
	summary, err := h.ingestUsecase.IngestAll(c.Request.Context())
	if err != nil {
		if errors.Is(err, usecase.ErrIngestRunning) {
			c.JSON(http.StatusConflict, gin.H{"ok": false, "error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "summary": summary})
}

// Runs lists the most recent ingestion runs
// GET /api/data/runs?limit=20
func (h *IngestHandler) Runs(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultRunLimit)))
	if err != nil || limit <= 0 || limit > 100 {
		limit = defaultRunLimit
	}

	runs, err := h.ingestUsecase.LatestRuns(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs, "running": h.ingestUsecase.Running()})
}

// RegisterRoutes mounts the ingestion routes on the /api group.
func (h *IngestHandler) RegisterRoutes(api *gin.RouterGroup) {
	data := api.Group("/data")
	{
		data.POST("/ingest", h.Ingest)
		data.GET("/runs", h.Runs)
	}
}
