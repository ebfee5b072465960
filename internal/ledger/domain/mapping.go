package domain

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

// CategoryAccountMap maps a category label to a target account.
type CategoryAccountMap struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Category    string    `json:"category" gorm:"uniqueIndex;not null"`
	AccountID   string    `json:"account_id" gorm:"not null"`
	AccountName string    `json:"account_name"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (CategoryAccountMap) TableName() string { return "ai_category_account_map" }

// Sync run states.
const (
	RunStatusRunning   = "running"
	RunStatusSucceeded = "succeeded"
	RunStatusFailed    = "failed"
)

// SyncRun records one ingestion run.
type SyncRun struct {
	ID         string         `json:"id" gorm:"primaryKey;size:36"`
	Status     string         `json:"status" gorm:"index"`
	StartedAt  time.Time      `json:"started_at" gorm:"index"`
	FinishedAt *time.Time     `json:"finished_at"`
	Summary    datatypes.JSON `json:"summary"`
	Error      string         `json:"error,omitempty"`
}

func (SyncRun) TableName() string { return "qbo_sync_runs" }

// IngestSummary is the per-entity count reported by a successful ingestion.
type IngestSummary struct {
	Customers           int `json:"customers"`
	Payments            int `json:"payments"`
	JournalEntries      int `json:"journalEntries"`
	Accounts            int `json:"accounts"`
	TransactionListRows int `json:"transactionListRows"`
}

// Models lists every table for AutoMigrate.
func Models() []interface{} {
	return []interface{}{
		&Customer{},
		&Payment{},
		&JournalEntry{},
		&Account{},
		&TransactionListRow{},
		&CategoryAccountMap{},
		&SyncRun{},
	}
}

// StringPtr returns &s.
func StringPtr(s string) *string { return &s }

// MaxErrorLength bounds persisted error messages.
const MaxErrorLength = 1000

// TruncateError cuts msg to MaxErrorLength bytes without splitting a rune.
func TruncateError(msg string) string {
	if len(msg) <= MaxErrorLength {
		return msg
	}
	return strings.ToValidUTF8(msg[:MaxErrorLength], "")
}
