package usecase

import (
	"context"
	"errors"
	"fmt"

	"qbo-backend/internal/jobs"
	"qbo-backend/internal/ledger/domain"
	"qbo-backend/internal/ledger/repository"
	"qbo-backend/pkg/ai"

	"github.com/rs/zerolog"
)

// DefaultBatchSize bounds how many rows go into one prompt.
const DefaultBatchSize = 30

const temperature = 0.2

// CategorizeUsecase assigns categories to uncategorized transaction rows.
type CategorizeUsecase interface {
	jobs.Engine
	Categories() []string
}

type categorizeUsecase struct {
	rowRepo    repository.TransactionRowRepository
	chat       ai.ChatService
	categories []string
	batchSize  int
	logger     zerolog.Logger
}

// NewCategorizeUsecase creates the categorizer. chat may be nil, in which case
// every row is categorized by keyword heuristics.
func NewCategorizeUsecase(
	rowRepo repository.TransactionRowRepository,
	chat ai.ChatService,
	categories []string,
	logger zerolog.Logger,
) CategorizeUsecase {
	return &categorizeUsecase{
		rowRepo:    rowRepo,
		chat:       chat,
		categories: categories,
		batchSize:  DefaultBatchSize,
		logger:     logger,
	}
}

func (u *categorizeUsecase) Categories() []string {
	return append([]string(nil), u.categories...)
}

// Run categorizes up to limit rows, most recent first, one batch at a time.
// Model failures fall back to heuristics for the whole batch; only a failure
// to load rows aborts the run.
func (u *categorizeUsecase) Run(ctx context.Context, limit int, reporter jobs.Reporter) (jobs.Progress, error) {
	rows, err := u.rowRepo.FindUncategorized(limit)
	if err != nil {
		return jobs.Progress{}, fmt.Errorf("failed to load uncategorized rows: %w", err)
	}

	progress := jobs.Progress{Total: len(rows)}
	if reporter != nil {
		reporter.Report(progress)
	}
	if len(rows) == 0 {
		return progress, nil
	}

	u.logger.Info().Int("rows", len(rows)).Msg("[Categorize] Starting categorization")

	for start := 0; start < len(rows); start += u.batchSize {
		if err := ctx.Err(); err != nil {
			return progress, err
		}
		end := start + u.batchSize
		if end > len(rows) {
			end = len(rows)
		}
		u.categorizeBatch(ctx, rows[start:end], &progress, reporter)
	}

	u.logger.Info().Int("categorized", progress.Categorized).Int("failed", progress.Failed).Msg("[Categorize] Categorization finished")
	return progress, nil
}

func (u *categorizeUsecase) categorizeBatch(ctx context.Context, batch []*domain.TransactionListRow, progress *jobs.Progress, reporter jobs.Reporter) {
	ids := make([]uint, len(batch))
	for i, row := range batch {
		ids[i] = row.ID
	}
	if err := u.rowRepo.MarkCategorizing(ids); err != nil {
		u.logger.Warn().Err(err).Msg("[Categorize] Failed to mark batch as categorizing")
	}

	results, err := u.classify(ctx, batch)
	if err != nil {
		u.logger.Warn().Err(err).Int("batch", len(batch)).Msg("[Categorize] Model unavailable, using heuristics for batch")
		results = nil
	}

	for _, row := range batch {
		category, confidence := u.resolve(row, results)
		if err := u.rowRepo.SetCategory(row.ID, category, confidence); err != nil {
			u.logger.Error().Err(err).Uint("row_id", row.ID).Msg("[Categorize] Failed to store category")
			progress.Failed++
		} else {
			progress.Categorized++
		}
		progress.Processed++
		if reporter != nil {
			reporter.Report(*progress)
		}
	}
}

// resolve uses the model's answer for the row when there is one, coercing
// labels outside the allowed list to "Other". Rows the model skipped fall
// back to the heuristic.
func (u *categorizeUsecase) resolve(row *domain.TransactionListRow, results map[uint]modelResult) (string, *float64) {
	if result, ok := results[row.ID]; ok {
		return NormalizeCategory(result.Category, u.categories), result.Confidence
	}
	return HeuristicCategory(row.Name, row.TxnType, u.categories), nil
}

func (u *categorizeUsecase) classify(ctx context.Context, batch []*domain.TransactionListRow) (map[uint]modelResult, error) {
	if u.chat == nil {
		return nil, errors.New("no chat service configured")
	}
	messages, err := buildMessages(u.categories, batch)
	if err != nil {
		return nil, err
	}
	reply, err := u.chat.Chat(ctx, messages, ai.ChatOptions{Temperature: temperature})
	if err != nil {
		return nil, err
	}
	return parseReply(reply)
}
