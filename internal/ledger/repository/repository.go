package repository

import (
	"time"

	"qbo-backend/internal/ledger/domain"
)

// EntityCounts is the number of mirrored rows per table.
type EntityCounts struct {
	Customers       int64 `json:"customers"`
	Payments        int64 `json:"payments"`
	JournalEntries  int64 `json:"journalEntries"`
	Accounts        int64 `json:"accounts"`
	TransactionRows int64 `json:"transactionRows"`
}

// PaymentPoint is a dated payment amount used for monthly aggregation.
type PaymentPoint struct {
	TxnDate  time.Time
	TotalAmt float64
}

// CustomerTotal is the payment total for one customer reference.
type CustomerTotal struct {
	CustomerRef string  `json:"customer_ref"`
	DisplayName *string `json:"display_name"`
	Total       float64 `json:"total"`
}

// TypeBreakdown aggregates transaction rows per transaction type.
type TypeBreakdown struct {
	TxnType string  `json:"txn_type"`
	Count   int64   `json:"count"`
	Total   float64 `json:"total"`
}

// AccountUsage aggregates transaction rows per account name.
type AccountUsage struct {
	Name           string  `json:"name"`
	AccountType    *string `json:"account_type"`
	AccountSubType *string `json:"account_sub_type"`
	Classification *string `json:"classification"`
	TxnCount       int64   `json:"txn_count"`
	TotalAmount    float64 `json:"total_amount"`
}

// EntityRepository stores the mirrored Customer/Payment/JournalEntry/Account entities.
type EntityRepository interface {
	// Upserts are keyed by qbo_id; repeated ids update in place.
	UpsertCustomers(customers []*domain.Customer) error
	UpsertPayments(payments []*domain.Payment) error
	UpsertJournalEntries(entries []*domain.JournalEntry) error
	UpsertAccounts(accounts []*domain.Account) error

	ListAccounts() ([]*domain.Account, error)
	FindAccountByQboID(qboID string) (*domain.Account, error)

	Counts() (*EntityCounts, error)
	PaymentPoints() ([]PaymentPoint, error)
	JournalEntryDates() ([]time.Time, error)
	SumPayments() (float64, error)
	TopCustomers(limit int) ([]CustomerTotal, error)

	// Purge deletes every mirrored entity and transaction row.
	Purge() error
}

// TransactionRowRepository stores report rows and their categorize/sync state.
type TransactionRowRepository interface {
	// ReplaceWindow deletes the window's rows and inserts rows in one transaction.
	ReplaceWindow(window domain.ReportWindow, rows []*domain.TransactionListRow) error
	CountByWindow(window domain.ReportWindow) (int64, error)
	Count() (int64, error)

	FindUncategorized(limit int) ([]*domain.TransactionListRow, error)
	MarkCategorizing(ids []uint) error
	SetCategory(id uint, category string, confidence *float64) error

	FindSyncCandidates(limit int) ([]*domain.TransactionListRow, error)
	SetClassID(id uint, classID string) error
	SetSyncOutcome(id uint, status string, message *string) error
	FindSyncFailures(limit int) ([]*domain.TransactionListRow, error)

	FindByID(id uint) (*domain.TransactionListRow, error)
	List(limit, offset int) ([]*domain.TransactionListRow, int64, error)
	AccountUsage() ([]AccountUsage, error)
	TypeBreakdown() ([]TypeBreakdown, error)
}

// CategoryMapRepository stores category -> account mappings.
type CategoryMapRepository interface {
	List() ([]*domain.CategoryAccountMap, error)
	// FindByCategory matches case-insensitively.
	FindByCategory(category string) (*domain.CategoryAccountMap, error)
	Upsert(mapping *domain.CategoryAccountMap) error
}

// SyncRunRepository stores the ingestion run log.
type SyncRunRepository interface {
	Create(run *domain.SyncRun) error
	Update(run *domain.SyncRun) error
	Latest(limit int) ([]*domain.SyncRun, error)
}
