package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Categorization status values stored in ai_status.
const (
	AIStatusCategorizing = "categorizing"
	AIStatusCategorized  = "categorized"
)

// Push-back status values stored in qb_sync_status.
const (
	SyncStatusSkipped = "skipped"
	SyncStatusFailed  = "failed"
	SyncStatusSynced  = "synced"
)

// TransactionListRow is one line of a TransactionList report window.
// Rows are replaced wholesale when their window is re-ingested.
type TransactionListRow struct {
	ID              uint       `json:"id" gorm:"primaryKey"`
	ReportStartDate string     `json:"report_start_date" gorm:"index:idx_txn_rows_window;size:10;not null"`
	ReportEndDate   string     `json:"report_end_date" gorm:"index:idx_txn_rows_window;size:10;not null"`
	TxnID           *string    `json:"txn_id"`
	TxnDate         *time.Time `json:"txn_date" gorm:"index"`
	TxnType         string     `json:"txn_type"`
	DocNum          string     `json:"doc_num"`
	Name            string     `json:"name"`
	Account         string     `json:"account" gorm:"index"`
	ClassName       string     `json:"class_name"`
	Memo            string     `json:"memo"`
	Amount          *float64   `json:"amount"`

	AICategory   *string  `json:"ai_category"`
	AIConfidence *float64 `json:"ai_confidence"`
	AIStatus     *string  `json:"ai_status" gorm:"index"`

	QBClassID    *string `json:"qb_class_id"`
	QBSyncStatus *string `json:"qb_sync_status" gorm:"index"`
	QBSyncError  *string `json:"qb_sync_error"`

	Raw       datatypes.JSON `json:"raw,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (TransactionListRow) TableName() string { return "qbo_transaction_list_rows" }

// ReportWindow is the inclusive date range of one report chunk (YYYY-MM-DD).
type ReportWindow struct {
	Start string `json:"start"`
	End   string `json:"end"`
}
