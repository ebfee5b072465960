package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"qbo-backend/internal/ledger/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type countingIngest struct {
	calls   atomic.Int32
	running atomic.Bool
}

func (c *countingIngest) IngestAll(ctx context.Context) (*domain.IngestSummary, error) {
	c.calls.Add(1)
	return &domain.IngestSummary{}, nil
}

func (c *countingIngest) LatestRuns(limit int) ([]*domain.SyncRun, error) { return nil, nil }

func (c *countingIngest) Running() bool { return c.running.Load() }

func TestSchedulerRunsOnTicks(t *testing.T) {
	ingest := &countingIngest{}
	s := NewIngestScheduler(ingest, 10*time.Millisecond, zerolog.Nop())
	s.Start()
	defer s.Stop()

	require.Eventually(t, func() bool { return ingest.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
}

func TestSchedulerSkipsWhileRunning(t *testing.T) {
	ingest := &countingIngest{}
	ingest.running.Store(true)

	s := NewIngestScheduler(ingest, time.Hour, zerolog.Nop())
	s.tick()
	require.Zero(t, ingest.calls.Load())

	ingest.running.Store(false)
	s.tick()
	require.Equal(t, int32(1), ingest.calls.Load())
}

func TestSchedulerDisabled(t *testing.T) {
	ingest := &countingIngest{}
	s := NewIngestScheduler(ingest, 0, zerolog.Nop())
	s.Start()
	s.Stop()
	s.Stop()
	require.Zero(t, ingest.calls.Load())
}
