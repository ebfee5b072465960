package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	connectionDelivery "qbo-backend/internal/connection/delivery"
	ingestDelivery "qbo-backend/internal/ingest/delivery"
	insightsDelivery "qbo-backend/internal/insights/delivery"
	ledgerDelivery "qbo-backend/internal/ledger/delivery"
	"qbo-backend/pkg/ai"
	"qbo-backend/pkg/config"
	"qbo-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type Handler struct {
	config            *config.Config
	logger            zerolog.Logger
	connectionHandler *connectionDelivery.ConnectionHandler
	ingestHandler     *ingestDelivery.IngestHandler
	ledgerHandler     *ledgerDelivery.LedgerHandler
	insightsHandler   *insightsDelivery.InsightsHandler
	server            *http.Server
}

// NewChatService initializes runtime AI settings and builds the chat provider
// chain on top of them. A nil service means no provider is configured.
func NewChatService(ctx context.Context, cfg *config.Config, log zerolog.Logger) ai.ChatService {
	InitRuntimeConfig(cfg.CerebrasBaseURL, cfg.CerebrasModel, cfg.CerebrasAPIKey)

	aiCfg := ai.DynamicConfig{
		Provider:           ai.ProviderType(cfg.AIProvider),
		CerebrasAPIKey:     cfg.CerebrasAPIKey,
		GetCerebrasBaseURL: GetRuntimeChatBaseURL,
		GetCerebrasModel:   GetRuntimeChatModel,
		GeminiAPIKey:       cfg.GeminiAPIKey,
		GeminiModel:        cfg.GeminiModel,
	}
	chat, err := ai.NewChatService(ctx, aiCfg, logger.Component(log, "ai"))
	if err != nil {
		log.Warn().Err(err).Msg("[AI] AI service unavailable, categorization falls back to heuristics")
		return nil
	}
	log.Info().Str("provider", cfg.AIProvider).Msg("[AI] AI service initialized (dynamic config enabled)")
	return chat
}

func NewHandler(
	cfg *config.Config,
	log zerolog.Logger,
	connectionHandler *connectionDelivery.ConnectionHandler,
	ingestHandler *ingestDelivery.IngestHandler,
	ledgerHandler *ledgerDelivery.LedgerHandler,
	insightsHandler *insightsDelivery.InsightsHandler,
) *Handler {
	return &Handler{
		config:            cfg,
		logger:            log,
		connectionHandler: connectionHandler,
		ingestHandler:     ingestHandler,
		ledgerHandler:     ledgerHandler,
		insightsHandler:   insightsHandler,
		server:            &http.Server{ReadHeaderTimeout: 10 * time.Second},
	}
}

// requestLogger puts a request-scoped logger into the request context and
// logs server errors through it.
func requestLogger(base zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.WithFields(base, map[string]interface{}{
			"request_id": uuid.NewString(),
			"method":     c.Request.Method,
			"path":       c.FullPath(),
		})
		c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context(), reqLog))

		c.Next()

		if status := c.Writer.Status(); status >= http.StatusInternalServerError {
			l := logger.FromContext(c.Request.Context())
			l.Error().Int("status", status).Msg("[HTTP] Request failed")
		}
	}
}

func (h *Handler) Router() *gin.Engine {
	r := gin.Default()

	// CORS middleware
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})
	r.Use(requestLogger(h.logger))

	SetupRoutes(r, h.connectionHandler, h.ingestHandler, h.ledgerHandler, h.insightsHandler)
	return r
}

// Start serves HTTP until Shutdown is called.
func (h *Handler) Start(addr string) error {
	gin.SetMode(gin.ReleaseMode)
	h.server.Addr = addr
	h.server.Handler = h.Router()
	if err := h.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (h *Handler) Shutdown(ctx context.Context) error {
	return h.server.Shutdown(ctx)
}
