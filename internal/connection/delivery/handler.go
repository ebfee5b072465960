package delivery

import (
	"errors"
	"net/http"

	"qbo-backend/internal/connection/usecase"

	"github.com/gin-gonic/gin"
)

// ConnectionHandler handles the QuickBooks OAuth flow and connection state
type ConnectionHandler struct {
	connectionUsecase usecase.ConnectionUsecase
}

// NewConnectionHandler creates a new ConnectionHandler
func NewConnectionHandler(connectionUsecase usecase.ConnectionUsecase) *ConnectionHandler {
	return &ConnectionHandler{connectionUsecase: connectionUsecase}
}

// Connect redirects the browser to the Intuit consent screen
// GET /api/auth/connect
func (h *ConnectionHandler) Connect(c *gin.Context) {
	url, err := h.connectionUsecase.ConnectURL()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Redirect(http.StatusFound, url)
}

// ConnectURL returns the consent URL for clients that open it themselves
// GET /api/auth/url
func (h *ConnectionHandler) ConnectURL(c *gin.Context) {
	url, err := h.connectionUsecase.ConnectURL()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

// Callback completes the authorization code exchange
// GET /api/auth/callback?code=...&realmId=...&state=...
func (h *ConnectionHandler) Callback(c *gin.Context) {
	code := c.Query("code")
	realmID := c.Query("realmId")
	if code == "" || realmID == "" {
		c.String(http.StatusBadRequest, "Missing code or realmId")
		return
	}

	if _, err := h.connectionUsecase.HandleCallback(c.Request.Context(), code, realmID, c.Query("state")); err != nil {
		if errors.Is(err, usecase.ErrInvalidState) {
			c.String(http.StatusBadRequest, "Auth failed: %s", err.Error())
			return
		}
		c.String(http.StatusInternalServerError, "Auth failed: %s", err.Error())
		return
	}
	c.Redirect(http.StatusFound, "/")
}

// Disconnect forgets the stored connection, optionally purging mirrored data
// POST /api/auth/disconnect?purge=1
func (h *ConnectionHandler) Disconnect(c *gin.Context) {
	var req struct {
		Purge bool `json:"purge"`
	}
	if c.Request.ContentLength != 0 {
		_ = c.ShouldBindJSON(&req)
	}
	purge := c.Query("purge") == "1" || req.Purge

	if err := h.connectionUsecase.Disconnect(purge); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "purged": purge})
}

// Status returns whether a connection is stored and its token expiries
// GET /api/connection
func (h *ConnectionHandler) Status(c *gin.Context) {
	status, err := h.connectionUsecase.Status()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, status)
}

// Company returns the connected company's CompanyInfo
// GET /api/company
func (h *ConnectionHandler) Company(c *gin.Context) {
	c.JSON(http.StatusOK, h.connectionUsecase.CompanyInfo(c.Request.Context()))
}

// RegisterRoutes mounts the auth and connection routes on the /api group.
func (h *ConnectionHandler) RegisterRoutes(api *gin.RouterGroup) {
	auth := api.Group("/auth")
	{
		auth.GET("/connect", h.Connect)
		auth.GET("/url", h.ConnectURL)
		auth.GET("/callback", h.Callback)
		auth.POST("/disconnect", h.Disconnect)
	}

	api.GET("/connection", h.Status)
	api.GET("/company", h.Company)
}
