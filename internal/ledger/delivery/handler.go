package delivery

import (
	"errors"
	"net/http"
	"strconv"

	"qbo-backend/internal/jobs"
	"qbo-backend/internal/ledger/usecase"
	pushsync "qbo-backend/internal/pushsync/usecase"

	"github.com/gin-gonic/gin"
)

// JobRunner starts and reports on one kind of background job.
type JobRunner interface {
	Submit(limit int) jobs.Job
	Get() jobs.Job
}

// LedgerHandler serves transaction rows, background jobs, accounts and category mappings.
type LedgerHandler struct {
	ledger     usecase.LedgerUsecase
	mapping    pushsync.MappingUsecase
	categorize JobRunner
	sync       JobRunner
}

// NewLedgerHandler creates a new LedgerHandler
func NewLedgerHandler(ledger usecase.LedgerUsecase, mapping pushsync.MappingUsecase, categorize, sync JobRunner) *LedgerHandler {
	return &LedgerHandler{
		ledger:     ledger,
		mapping:    mapping,
		categorize: categorize,
		sync:       sync,
	}
}

type jobRequest struct {
	Limit int `json:"limit"`
}

// SetMappingRequest is the body of POST /api/category-mapping
type SetMappingRequest struct {
	Category  string `json:"category" binding:"required"`
	AccountID string `json:"accountId" binding:"required"`
}

func queryInt(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return def
	}
	return v
}

// bodyLimit reads {"limit": n}; a missing or unreadable body means the default.
func bodyLimit(c *gin.Context) int {
	var req jobRequest
	if c.Request.ContentLength != 0 {
		_ = c.ShouldBindJSON(&req)
	}
	return req.Limit
}

// ListTransactions returns a page of report rows
// GET /api/transactions?limit=50&offset=0
func (h *LedgerHandler) ListTransactions(c *gin.Context) {
	page, err := h.ledger.ListTransactions(queryInt(c, "limit", 0), queryInt(c, "offset", 0))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, page)
}

// StartCategorize submits a categorization job
// POST /api/transactions/categorize
func (h *LedgerHandler) StartCategorize(c *gin.Context) {
	limit := usecase.ClampLimit(bodyLimit(c), usecase.DefaultCategorizeLimit, usecase.MaxCategorizeLimit)
	c.JSON(http.StatusOK, gin.H{"ok": true, "job": h.categorize.Submit(limit)})
}

// CategorizeStatus returns the categorization job snapshot
// GET /api/transactions/categorize/status
func (h *LedgerHandler) CategorizeStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "job": h.categorize.Get()})
}

// StartSync submits a push-back sync job
// POST /api/transactions/sync
func (h *LedgerHandler) StartSync(c *gin.Context) {
	limit := usecase.ClampLimit(bodyLimit(c), usecase.DefaultSyncLimit, usecase.MaxSyncLimit)
	c.JSON(http.StatusOK, gin.H{"ok": true, "job": h.sync.Submit(limit)})
}

// SyncStatus returns the sync job snapshot
// GET /api/transactions/sync/status
func (h *LedgerHandler) SyncStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "job": h.sync.Get()})
}

// SyncFailures returns the most recent failed sync rows
// GET /api/transactions/sync/failures?limit=10
func (h *LedgerHandler) SyncFailures(c *gin.Context) {
	rows, err := h.ledger.SyncFailures(queryInt(c, "limit", 0))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"rows": rows})
}

// Accounts returns per-account usage across report rows
// GET /api/accounts
func (h *LedgerHandler) Accounts(c *gin.Context) {
	rows, err := h.ledger.AccountUsage()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"rows": rows})
}

// GetMappings returns categories, mappings and accounts
// GET /api/category-mapping
func (h *LedgerHandler) GetMappings(c *gin.Context) {
	overview, err := h.mapping.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, overview)
}

// SetMapping maps a category to an account
// POST /api/category-mapping
func (h *LedgerHandler) SetMapping(c *gin.Context) {
	var req SetMappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing category or accountId"})
		return
	}

	mapping, err := h.mapping.Set(req.Category, req.AccountID)
	if err != nil {
		if errors.Is(err, pushsync.ErrAccountNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "mapping": mapping})
}

// AutoGenerateMappings maps unmapped categories to their best scoring accounts
// POST /api/category-mapping/auto
func (h *LedgerHandler) AutoGenerateMappings(c *gin.Context) {
	result, err := h.mapping.AutoGenerate()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "result": result})
}

// RegisterRoutes mounts the ledger routes on the /api group.
func (h *LedgerHandler) RegisterRoutes(api *gin.RouterGroup) {
	transactions := api.Group("/transactions")
	{
		transactions.GET("", h.ListTransactions)
		transactions.POST("/categorize", h.StartCategorize)
		transactions.GET("/categorize/status", h.CategorizeStatus)
		transactions.POST("/sync", h.StartSync)
		transactions.GET("/sync/status", h.SyncStatus)
		transactions.GET("/sync/failures", h.SyncFailures)
	}

	api.GET("/accounts", h.Accounts)

	mapping := api.Group("/category-mapping")
	{
		mapping.GET("", h.GetMappings)
		mapping.POST("", h.SetMapping)
		mapping.POST("/auto", h.AutoGenerateMappings)
	}
}
