package usecase

import (
	"context"

	conndomain "qbo-backend/internal/connection/domain"
	"qbo-backend/internal/ledger/repository"
)

// DateRange is the configured ingestion range.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// MonthlyTotal is a money total for one YYYY-MM month.
type MonthlyTotal struct {
	Month string  `json:"month"`
	Total float64 `json:"total"`
}

// MonthlyCount is a row count for one YYYY-MM month.
type MonthlyCount struct {
	Month string `json:"month"`
	Count int64  `json:"count"`
}

// Summary is the aggregate view over the mirrored data.
type Summary struct {
	DateRange                DateRange                  `json:"dateRange"`
	TotalCustomers           int64                      `json:"totalCustomers"`
	TotalPayments            float64                    `json:"totalPayments"`
	TotalJournalEntries      int64                      `json:"totalJournalEntries"`
	TotalTransactionRows     int64                      `json:"totalTransactionRows"`
	MonthlyPayments          []MonthlyTotal             `json:"monthlyPayments"`
	MonthlyJournalEntries    []MonthlyCount             `json:"monthlyJournalEntries"`
	TopCustomers             []repository.CustomerTotal `json:"topCustomers"`
	TransactionTypeBreakdown []repository.TypeBreakdown `json:"transactionTypeBreakdown"`
}

// Answer is the analysis agent reply. Charts are Chart.js configs.
type Answer struct {
	Answer   string        `json:"answer"`
	Insights []string      `json:"insights"`
	Charts   []interface{} `json:"charts"`
}

// Dashboard combines the summary with the connection state.
type Dashboard struct {
	Summary    *Summary           `json:"summary"`
	Connection *conndomain.Status `json:"connection"`
}

// StatusReader reports the QuickBooks connection state.
type StatusReader interface {
	Status() (*conndomain.Status, error)
}

// InsightsUsecase answers questions over the stored data.
type InsightsUsecase interface {
	Summary() (*Summary, error)
	Ask(ctx context.Context, question string) (*Answer, error)
	Dashboard() (*Dashboard, error)
}
