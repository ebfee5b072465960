package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"qbo-backend/internal/ingest/usecase"

	"github.com/rs/zerolog"
)

// IngestScheduler runs ingestion on a fixed interval.
type IngestScheduler struct {
	ingest   usecase.IngestUsecase
	interval time.Duration
	logger   zerolog.Logger
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewIngestScheduler creates a scheduler; an interval <= 0 disables it.
func NewIngestScheduler(ingest usecase.IngestUsecase, interval time.Duration, logger zerolog.Logger) *IngestScheduler {
	return &IngestScheduler{
		ingest:   ingest,
		interval: interval,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Start begins the scheduler loop
func (s *IngestScheduler) Start() {
	if s.interval <= 0 {
		s.logger.Info().Msg("[Scheduler] INGEST_INTERVAL not set, scheduler disabled")
		return
	}

	s.logger.Info().Dur("interval", s.interval).Msg("[Scheduler] Starting ingestion scheduler")

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.tick()
			case <-s.stopChan:
				s.logger.Info().Msg("[Scheduler] Scheduler stopped")
				return
			}
		}
	}()
}

// Stop gracefully stops the scheduler
func (s *IngestScheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stopChan) })
}

func (s *IngestScheduler) tick() {
	if s.ingest.Running() {
		s.logger.Info().Msg("[Scheduler] Previous ingestion still running, skipping tick")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-s.stopChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	summary, err := s.ingest.IngestAll(ctx)
	if err != nil {
		if errors.Is(err, usecase.ErrIngestRunning) {
			return
		}
		s.logger.Error().Err(err).Msg("[Scheduler] Scheduled ingestion failed")
		return
	}
	s.logger.Info().Interface("summary", summary).Msg("[Scheduler] Scheduled ingestion finished")
}
