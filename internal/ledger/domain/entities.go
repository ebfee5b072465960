package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Customer mirrors a QuickBooks Customer.
type Customer struct {
	ID              uint           `json:"id" gorm:"primaryKey"`
	QboID           string         `json:"qbo_id" gorm:"uniqueIndex;not null"`
	DisplayName     string         `json:"display_name"`
	Active          *bool          `json:"active"`
	LastUpdatedTime *time.Time     `json:"last_updated_time"`
	Raw             datatypes.JSON `json:"raw,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

func (Customer) TableName() string { return "qbo_customers" }

// Payment mirrors a QuickBooks Payment.
type Payment struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	QboID       string         `json:"qbo_id" gorm:"uniqueIndex;not null"`
	TxnDate     *time.Time     `json:"txn_date" gorm:"index"`
	TotalAmt    *float64       `json:"total_amt"`
	CustomerRef string         `json:"customer_ref" gorm:"index"`
	Raw         datatypes.JSON `json:"raw,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func (Payment) TableName() string { return "qbo_payments" }

// JournalEntry mirrors a QuickBooks JournalEntry with its posting totals.
type JournalEntry struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	QboID       string         `json:"qbo_id" gorm:"uniqueIndex;not null"`
	TxnDate     *time.Time     `json:"txn_date" gorm:"index"`
	TotalAmt    *float64       `json:"total_amt"`
	TotalDebit  float64        `json:"total_debit"`
	TotalCredit float64        `json:"total_credit"`
	Raw         datatypes.JSON `json:"raw,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func (JournalEntry) TableName() string { return "qbo_journal_entries" }

// Account mirrors a QuickBooks Account (chart of accounts).
type Account struct {
	ID                 uint           `json:"id" gorm:"primaryKey"`
	QboID              string         `json:"qbo_id" gorm:"uniqueIndex;not null"`
	Name               string         `json:"name" gorm:"index"`
	FullyQualifiedName string         `json:"fully_qualified_name"`
	AccountType        string         `json:"account_type"`
	AccountSubType     string         `json:"account_sub_type"`
	Classification     string         `json:"classification"`
	Active             *bool          `json:"active"`
	Raw                datatypes.JSON `json:"raw,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

func (Account) TableName() string { return "qbo_accounts" }
