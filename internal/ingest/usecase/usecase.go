package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"

	"qbo-backend/internal/ledger/domain"
)

// ErrIngestRunning is returned when an ingestion run is already in progress.
var ErrIngestRunning = errors.New("ingestion already running")

// QueryAPI is the part of the QuickBooks client ingestion needs.
type QueryAPI interface {
	QueryAll(ctx context.Context, entity, whereClause string) ([]json.RawMessage, error)
	Report(ctx context.Context, name string, params url.Values) (json.RawMessage, error)
}

// IngestUsecase mirrors QuickBooks data into the local store.
type IngestUsecase interface {
	// IngestAll fetches every entity and report window. Any failure aborts the run.
	IngestAll(ctx context.Context) (*domain.IngestSummary, error)
	LatestRuns(limit int) ([]*domain.SyncRun, error)
	Running() bool
}
