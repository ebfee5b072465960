package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync/atomic"
	"time"

	"qbo-backend/internal/ledger/domain"
	"qbo-backend/internal/ledger/report"
	"qbo-backend/internal/ledger/repository"
	"qbo-backend/pkg/quickbooks"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
)

// TransactionListColumns asks the report for every column the parser reads.
const TransactionListColumns = "tx_date,txn_type,doc_num,name,memo,account_name,klass_name,subt_nat_amount"

// Options controls the ingestion range and report chunking.
type Options struct {
	StartDate   string
	EndDate     string
	ChunkMonths int
}

type ingestUsecase struct {
	api        QueryAPI
	entityRepo repository.EntityRepository
	rowRepo    repository.TransactionRowRepository
	runRepo    repository.SyncRunRepository
	opts       Options
	logger     zerolog.Logger
	running    atomic.Bool
	now        func() time.Time
}

// NewIngestUsecase creates the ingestion pipeline.
func NewIngestUsecase(
	api QueryAPI,
	entityRepo repository.EntityRepository,
	rowRepo repository.TransactionRowRepository,
	runRepo repository.SyncRunRepository,
	opts Options,
	logger zerolog.Logger,
) IngestUsecase {
	return &ingestUsecase{
		api:        api,
		entityRepo: entityRepo,
		rowRepo:    rowRepo,
		runRepo:    runRepo,
		opts:       opts,
		logger:     logger,
		now:        time.Now,
	}
}

func (u *ingestUsecase) Running() bool {
	return u.running.Load()
}

func (u *ingestUsecase) LatestRuns(limit int) ([]*domain.SyncRun, error) {
	return u.runRepo.Latest(limit)
}

func (u *ingestUsecase) IngestAll(ctx context.Context) (*domain.IngestSummary, error) {
	if !u.running.CompareAndSwap(false, true) {
		return nil, ErrIngestRunning
	}
	defer u.running.Store(false)

	run := &domain.SyncRun{
		ID:        uuid.New().String(),
		Status:    domain.RunStatusRunning,
		StartedAt: u.now(),
	}
	if err := u.runRepo.Create(run); err != nil {
		u.logger.Warn().Err(err).Msg("[Ingest] Failed to record sync run")
	}

	u.logger.Info().Str("run_id", run.ID).Str("start", u.opts.StartDate).Str("end", u.opts.EndDate).Msg("[Ingest] Starting ingestion")
	summary, err := u.ingest(ctx)

	finished := u.now()
	run.FinishedAt = &finished
	if err != nil {
		run.Status = domain.RunStatusFailed
		run.Error = domain.TruncateError(err.Error())
		u.logger.Error().Err(err).Str("run_id", run.ID).Msg("[Ingest] Ingestion failed")
	} else {
		run.Status = domain.RunStatusSucceeded
		if b, mErr := json.Marshal(summary); mErr == nil {
			run.Summary = datatypes.JSON(b)
		}
		u.logger.Info().Str("run_id", run.ID).Interface("summary", summary).Msg("[Ingest] Ingestion finished")
	}
	if uErr := u.runRepo.Update(run); uErr != nil {
		u.logger.Warn().Err(uErr).Msg("[Ingest] Failed to update sync run")
	}

	if err != nil {
		return nil, err
	}
	return summary, nil
}

func (u *ingestUsecase) ingest(ctx context.Context) (*domain.IngestSummary, error) {
	start, end, err := parseDateRange(u.opts.StartDate, u.opts.EndDate)
	if err != nil {
		return nil, err
	}
	s, e := u.opts.StartDate, u.opts.EndDate

	customers, err := u.fetch(ctx, "Customer", quickbooks.DateRange("Metadata.LastUpdatedTime", s, e))
	if err != nil {
		return nil, err
	}
	mappedCustomers, err := mapCustomers(customers)
	if err != nil {
		return nil, err
	}
	if err := u.entityRepo.UpsertCustomers(mappedCustomers); err != nil {
		return nil, fmt.Errorf("failed to upsert customers: %w", err)
	}

	payments, err := u.fetch(ctx, "Payment", quickbooks.DateRange("TxnDate", s, e))
	if err != nil {
		return nil, err
	}
	mappedPayments, err := mapPayments(payments)
	if err != nil {
		return nil, err
	}
	if err := u.entityRepo.UpsertPayments(mappedPayments); err != nil {
		return nil, fmt.Errorf("failed to upsert payments: %w", err)
	}

	entries, err := u.fetch(ctx, "JournalEntry", quickbooks.DateRange("TxnDate", s, e))
	if err != nil {
		return nil, err
	}
	mappedEntries, err := mapJournalEntries(entries)
	if err != nil {
		return nil, err
	}
	if err := u.entityRepo.UpsertJournalEntries(mappedEntries); err != nil {
		return nil, fmt.Errorf("failed to upsert journal entries: %w", err)
	}

	accounts, err := u.fetch(ctx, "Account", "Active IN (true, false)")
	if err != nil {
		return nil, err
	}
	mappedAccounts, err := mapAccounts(accounts)
	if err != nil {
		return nil, err
	}
	if err := u.entityRepo.UpsertAccounts(mappedAccounts); err != nil {
		return nil, fmt.Errorf("failed to upsert accounts: %w", err)
	}

	rowCount := 0
	for _, window := range ChunkMonths(start, end, u.opts.ChunkMonths) {
		n, err := u.ingestWindow(ctx, window)
		if err != nil {
			return nil, fmt.Errorf("window %s..%s: %w", window.Start, window.End, err)
		}
		rowCount += n
	}

	return &domain.IngestSummary{
		Customers:           len(mappedCustomers),
		Payments:            len(mappedPayments),
		JournalEntries:      len(mappedEntries),
		Accounts:            len(mappedAccounts),
		TransactionListRows: rowCount,
	}, nil
}

func (u *ingestUsecase) fetch(ctx context.Context, entity, where string) ([]json.RawMessage, error) {
	items, err := u.api.QueryAll(ctx, entity, where)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", entity, err)
	}
	u.logger.Debug().Str("entity", entity).Int("count", len(items)).Msg("[Ingest] Fetched entities")
	return items, nil
}

// ingestWindow fetches and parses the window's report before replacing its rows,
// so a failed fetch leaves the stored window untouched.
func (u *ingestUsecase) ingestWindow(ctx context.Context, window domain.ReportWindow) (int, error) {
	payload, err := u.fetchReport(ctx, window)
	if err != nil {
		return 0, err
	}
	rows, err := report.Parse(payload, window)
	if err != nil {
		return 0, err
	}
	if err := u.rowRepo.ReplaceWindow(window, rows); err != nil {
		return 0, fmt.Errorf("failed to store rows: %w", err)
	}
	u.logger.Debug().Str("start", window.Start).Str("end", window.End).Int("rows", len(rows)).Msg("[Ingest] Stored report window")
	return len(rows), nil
}

func (u *ingestUsecase) fetchReport(ctx context.Context, window domain.ReportWindow) (json.RawMessage, error) {
	params := url.Values{
		"start_date": {window.Start},
		"end_date":   {window.End},
		"columns":    {TransactionListColumns},
	}
	payload, err := u.api.Report(ctx, "TransactionList", params)
	if err == nil {
		return payload, nil
	}
	u.logger.Warn().Err(err).Str("start", window.Start).Msg("[Ingest] Column-hinted report failed, retrying with default columns")

	params.Del("columns")
	payload, err = u.api.Report(ctx, "TransactionList", params)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch TransactionList report: %w", err)
	}
	return payload, nil
}
