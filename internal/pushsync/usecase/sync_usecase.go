package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"qbo-backend/internal/jobs"
	"qbo-backend/internal/ledger/domain"
	"qbo-backend/internal/ledger/repository"
	"qbo-backend/pkg/quickbooks"

	"github.com/rs/zerolog"
)

// EntityAPI is the part of the QuickBooks client push-back needs.
type EntityAPI interface {
	Query(ctx context.Context, statement string) (map[string]json.RawMessage, error)
	Read(ctx context.Context, endpoint, key, id string) (map[string]interface{}, error)
	Create(ctx context.Context, endpoint, key string, payload map[string]interface{}) (map[string]interface{}, error)
	SparseUpdate(ctx context.Context, endpoint, key string, payload map[string]interface{}) (map[string]interface{}, error)
}

// SyncUsecase writes categories back to QuickBooks as account (and class) references.
type SyncUsecase interface {
	jobs.Engine
}

type syncUsecase struct {
	api         EntityAPI
	rowRepo     repository.TransactionRowRepository
	mapRepo     repository.CategoryMapRepository
	entityRepo  repository.EntityRepository
	syncClasses bool
	logger      zerolog.Logger
}

// NewSyncUsecase creates the push-back engine. With syncClasses set, each
// rewritten line also gets a ClassRef named after the category.
func NewSyncUsecase(
	api EntityAPI,
	rowRepo repository.TransactionRowRepository,
	mapRepo repository.CategoryMapRepository,
	entityRepo repository.EntityRepository,
	syncClasses bool,
	logger zerolog.Logger,
) SyncUsecase {
	return &syncUsecase{
		api:         api,
		rowRepo:     rowRepo,
		mapRepo:     mapRepo,
		entityRepo:  entityRepo,
		syncClasses: syncClasses,
		logger:      logger,
	}
}

// outcome is the terminal state of one row.
type outcome struct {
	status  string
	message string
}

func skipped(format string, args ...interface{}) outcome {
	return outcome{status: domain.SyncStatusSkipped, message: fmt.Sprintf(format, args...)}
}

func failed(err error) outcome {
	return outcome{status: domain.SyncStatusFailed, message: err.Error()}
}

// apiFailure classifies an API error: an unsupported operation is skipped,
// anything else failed.
func apiFailure(err error) outcome {
	if quickbooks.IsUnsupportedOperation(err) {
		return outcome{status: domain.SyncStatusSkipped, message: err.Error()}
	}
	return failed(err)
}

var synced = outcome{status: domain.SyncStatusSynced}

// Run syncs up to limit categorized rows, one at a time. Every row ends in
// exactly one of synced, skipped or failed and is persisted before the next.
func (u *syncUsecase) Run(ctx context.Context, limit int, reporter jobs.Reporter) (jobs.Progress, error) {
	rows, err := u.rowRepo.FindSyncCandidates(limit)
	if err != nil {
		return jobs.Progress{}, fmt.Errorf("failed to load sync candidates: %w", err)
	}

	progress := jobs.Progress{Total: len(rows)}
	if reporter != nil {
		reporter.Report(progress)
	}
	if len(rows) == 0 {
		return progress, nil
	}

	accounts, err := newAccountResolver(u.mapRepo, u.entityRepo)
	if err != nil {
		return progress, err
	}
	classes := newClassResolver(u.api)

	u.logger.Info().Int("rows", len(rows)).Msg("[Sync] Starting push-back sync")

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return progress, err
		}

		result := u.syncRow(ctx, row, accounts, classes)

		var message *string
		if result.status != domain.SyncStatusSynced {
			msg := domain.TruncateError(result.message)
			message = &msg
		}
		if err := u.rowRepo.SetSyncOutcome(row.ID, result.status, message); err != nil {
			return progress, fmt.Errorf("failed to store sync outcome for row %d: %w", row.ID, err)
		}

		switch result.status {
		case domain.SyncStatusSynced:
			progress.Synced++
		case domain.SyncStatusSkipped:
			progress.Skipped++
			u.logger.Debug().Uint("row_id", row.ID).Str("reason", result.message).Msg("[Sync] Row skipped")
		default:
			progress.Failed++
			u.logger.Warn().Uint("row_id", row.ID).Str("error", result.message).Msg("[Sync] Row failed")
		}
		progress.Processed++
		if reporter != nil {
			reporter.Report(progress)
		}
	}

	u.logger.Info().Int("synced", progress.Synced).Int("skipped", progress.Skipped).Int("failed", progress.Failed).Msg("[Sync] Push-back sync finished")
	return progress, nil
}

func (u *syncUsecase) syncRow(ctx context.Context, row *domain.TransactionListRow, accounts *accountResolver, classes *classResolver) outcome {
	if row.TxnID == nil || *row.TxnID == "" || row.TxnType == "" || row.AICategory == nil || *row.AICategory == "" {
		return skipped("Missing txn_id, txn_type, or category.")
	}
	category := *row.AICategory

	entity, ok := quickbooks.ResolveEntity(row.TxnType)
	if !ok {
		return skipped("Unsupported txn_type: %s", row.TxnType)
	}
	if !entity.UpdateSupported {
		return skipped("Update not supported for %s", entity.Key)
	}

	account, err := accounts.resolve(category)
	if err != nil {
		return failed(err)
	}
	if account == nil {
		return skipped("No account mapping for category %s", category)
	}

	payload, err := u.api.Read(ctx, entity.Endpoint, entity.Key, *row.TxnID)
	if err != nil {
		return apiFailure(err)
	}
	if ref := missingRequiredRef(entity, payload); ref != "" {
		return skipped("Missing required %s on %s %s", ref, entity.Key, *row.TxnID)
	}
	if !hasUpdatableLines(payload) {
		return skipped("No account-updatable lines on %s %s", entity.Key, *row.TxnID)
	}

	var class *Ref
	if u.syncClasses {
		classID, err := classes.ensure(ctx, category)
		if err != nil {
			return apiFailure(err)
		}
		if err := u.rowRepo.SetClassID(row.ID, classID); err != nil {
			return failed(err)
		}
		class = &Ref{Value: classID, Name: category}
	}

	update, err := buildUpdate(payload, rewriteLines(payload, *account, class))
	if err != nil {
		return failed(err)
	}
	if _, err := u.api.SparseUpdate(ctx, entity.Endpoint, entity.Key, update); err != nil {
		var apiErr *quickbooks.APIError
		if errors.As(err, &apiErr) {
			u.logger.Debug().Int("status", apiErr.StatusCode).Uint("row_id", row.ID).Msg("[Sync] Update rejected")
		}
		return apiFailure(err)
	}
	return synced
}
