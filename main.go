package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	api "qbo-backend/cmd/api"
	categorizeUsecase "qbo-backend/internal/categorize/usecase"
	connectionDelivery "qbo-backend/internal/connection/delivery"
	connectiondomain "qbo-backend/internal/connection/domain"
	connectionRepo "qbo-backend/internal/connection/repository"
	connectionUsecase "qbo-backend/internal/connection/usecase"
	ingestDelivery "qbo-backend/internal/ingest/delivery"
	"qbo-backend/internal/ingest/scheduler"
	ingestUsecase "qbo-backend/internal/ingest/usecase"
	insightsDelivery "qbo-backend/internal/insights/delivery"
	insightsUsecase "qbo-backend/internal/insights/usecase"
	"qbo-backend/internal/jobs"
	ledgerDelivery "qbo-backend/internal/ledger/delivery"
	ledgerdomain "qbo-backend/internal/ledger/domain"
	ledgerRepo "qbo-backend/internal/ledger/repository"
	ledgerUsecase "qbo-backend/internal/ledger/usecase"
	pushsyncUsecase "qbo-backend/internal/pushsync/usecase"
	"qbo-backend/pkg/config"
	"qbo-backend/pkg/database"
	"qbo-backend/pkg/logger"
	"qbo-backend/pkg/quickbooks"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log := logger.Configure(cfg.LogLevel, cfg.LogFormat)

	// Initialize database
	db, err := database.NewConnection(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}

	// Auto-migrate database schemas
	models := append(ledgerdomain.Models(), connectiondomain.Models()...)
	if err := db.AutoMigrate(models...); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate database")
	}

	// Initialize repositories (dependency injection)
	entityRepository := ledgerRepo.NewEntityRepository(db)
	rowRepository := ledgerRepo.NewTransactionRowRepository(db)
	mapRepository := ledgerRepo.NewCategoryMapRepository(db)
	runRepository := ledgerRepo.NewSyncRunRepository(db)
	connRepository := connectionRepo.NewConnectionRepository(db)
	stateRepository := connectionRepo.NewOAuthStateRepository(db)

	// Connection usecase doubles as the credential source of the API client
	oauthService := quickbooks.NewOAuthService(cfg.QBOClientID, cfg.QBOClientSecret, cfg.QBORedirectURI, cfg.QBOScopes, cfg.QBOTokenSkew)
	connectionUc := connectionUsecase.NewConnectionUsecase(connRepository, stateRepository, oauthService, entityRepository, cfg, logger.Component(log, "connection"))
	qboClient := quickbooks.NewClient(cfg.QBOBaseURL(), cfg.QBOMinorVersion, cfg.QBOPageSize, connectionUc)
	connectionUc.SetCompanyReader(qboClient)

	chat := api.NewChatService(context.Background(), cfg, log)

	// Initialize use cases (dependency injection)
	categorizeUc := categorizeUsecase.NewCategorizeUsecase(rowRepository, chat, cfg.TransactionCategories, logger.Component(log, "categorize"))
	syncUc := pushsyncUsecase.NewSyncUsecase(qboClient, rowRepository, mapRepository, entityRepository, cfg.QBOSyncClasses, logger.Component(log, "sync"))
	mappingUc := pushsyncUsecase.NewMappingUsecase(mapRepository, entityRepository, categorizeUc.Categories(), logger.Component(log, "mapping"))
	ingestUc := ingestUsecase.NewIngestUsecase(qboClient, entityRepository, rowRepository, runRepository, ingestUsecase.Options{
		StartDate:   cfg.DataStartDate,
		EndDate:     cfg.DataEndDate,
		ChunkMonths: cfg.QBOChunkMonths,
	}, logger.Component(log, "ingest"))
	ledgerUc := ledgerUsecase.NewLedgerUsecase(rowRepository)
	insightsUc := insightsUsecase.NewInsightsUsecase(entityRepository, rowRepository, chat, connectionUc,
		insightsUsecase.DateRange{Start: cfg.DataStartDate, End: cfg.DataEndDate}, logger.Component(log, "insights"))

	// Background jobs: one worker per kind
	categorizeTracker := jobs.NewTracker(jobs.KindCategorize, categorizeUc, logger.Component(log, "jobs"))
	syncTracker := jobs.NewTracker(jobs.KindSync, syncUc, logger.Component(log, "jobs"))
	categorizeTracker.Start()
	syncTracker.Start()

	ingestScheduler := scheduler.NewIngestScheduler(ingestUc, cfg.IngestInterval, logger.Component(log, "scheduler"))
	ingestScheduler.Start()

	// Initialize HTTP handler
	handler := api.NewHandler(cfg, logger.Component(log, "http"),
		connectionDelivery.NewConnectionHandler(connectionUc),
		ingestDelivery.NewIngestHandler(ingestUc),
		ledgerDelivery.NewLedgerHandler(ledgerUc, mappingUc, categorizeTracker, syncTracker),
		insightsDelivery.NewInsightsHandler(insightsUc),
	)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		log.Info().Msg("Shutting down")
		ingestScheduler.Stop()
		categorizeTracker.Stop()
		syncTracker.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := handler.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("Server shutdown failed")
		}
	}()

	// Start server
	log.Info().Str("port", cfg.Port).Msg("Server starting")
	if err := handler.Start(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("Failed to start server")
	}
}
