package usecase

import (
	"fmt"

	"qbo-backend/internal/ledger/domain"
	"qbo-backend/internal/ledger/repository"
)

// Listing and job limits.
const (
	DefaultListLimit = 50
	MaxListLimit     = 200

	DefaultFailureLimit = 10
	MaxFailureLimit     = 50

	DefaultCategorizeLimit = 200
	MaxCategorizeLimit     = 500

	DefaultSyncLimit = 50
	MaxSyncLimit     = 200
)

// ClampLimit bounds limit to [1, max]; zero or negative becomes def.
func ClampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}

// TransactionPage is one page of report rows, most recent first.
type TransactionPage struct {
	Total  int64                        `json:"total"`
	Limit  int                          `json:"limit"`
	Offset int                          `json:"offset"`
	Rows   []*domain.TransactionListRow `json:"rows"`
}

// LedgerUsecase reads the stored transaction rows.
type LedgerUsecase interface {
	ListTransactions(limit, offset int) (*TransactionPage, error)
	SyncFailures(limit int) ([]*domain.TransactionListRow, error)
	AccountUsage() ([]repository.AccountUsage, error)
}

type ledgerUsecase struct {
	rowRepo repository.TransactionRowRepository
}

// NewLedgerUsecase creates a LedgerUsecase.
func NewLedgerUsecase(rowRepo repository.TransactionRowRepository) LedgerUsecase {
	return &ledgerUsecase{rowRepo: rowRepo}
}

func (u *ledgerUsecase) ListTransactions(limit, offset int) (*TransactionPage, error) {
	limit = ClampLimit(limit, DefaultListLimit, MaxListLimit)
	if offset < 0 {
		offset = 0
	}
	rows, total, err := u.rowRepo.List(limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	if rows == nil {
		rows = []*domain.TransactionListRow{}
	}
	return &TransactionPage{Total: total, Limit: limit, Offset: offset, Rows: rows}, nil
}

func (u *ledgerUsecase) SyncFailures(limit int) ([]*domain.TransactionListRow, error) {
	rows, err := u.rowRepo.FindSyncFailures(ClampLimit(limit, DefaultFailureLimit, MaxFailureLimit))
	if err != nil {
		return nil, fmt.Errorf("failed to load sync failures: %w", err)
	}
	if rows == nil {
		rows = []*domain.TransactionListRow{}
	}
	return rows, nil
}

func (u *ledgerUsecase) AccountUsage() ([]repository.AccountUsage, error) {
	usage, err := u.rowRepo.AccountUsage()
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate accounts: %w", err)
	}
	if usage == nil {
		usage = []repository.AccountUsage{}
	}
	return usage, nil
}
