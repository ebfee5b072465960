package repository

import (
	"time"

	"qbo-backend/internal/ledger/domain"

	"gorm.io/gorm"
)

// newest first, undated rows last
const recentFirst = "txn_date IS NULL, txn_date DESC, id DESC"

type transactionRowRepository struct {
	db *gorm.DB
}

// NewTransactionRowRepository creates a gorm-backed TransactionRowRepository.
func NewTransactionRowRepository(db *gorm.DB) TransactionRowRepository {
	return &transactionRowRepository{db: db}
}

func windowScope(window domain.ReportWindow) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("report_start_date = ? AND report_end_date = ?", window.Start, window.End)
	}
}

func (r *transactionRowRepository) ReplaceWindow(window domain.ReportWindow, rows []*domain.TransactionListRow) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Scopes(windowScope(window)).Delete(&domain.TransactionListRow{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		for _, row := range rows {
			row.ReportStartDate = window.Start
			row.ReportEndDate = window.End
		}
		return tx.CreateInBatches(rows, upsertBatchSize).Error
	})
}

func (r *transactionRowRepository) CountByWindow(window domain.ReportWindow) (int64, error) {
	var n int64
	err := r.db.Model(&domain.TransactionListRow{}).Scopes(windowScope(window)).Count(&n).Error
	return n, err
}

func (r *transactionRowRepository) Count() (int64, error) {
	var n int64
	err := r.db.Model(&domain.TransactionListRow{}).Count(&n).Error
	return n, err
}

func (r *transactionRowRepository) FindUncategorized(limit int) ([]*domain.TransactionListRow, error) {
	var rows []*domain.TransactionListRow
	err := r.db.Where("ai_status IS NULL OR ai_status <> ?", domain.AIStatusCategorized).
		Order(recentFirst).Limit(limit).Find(&rows).Error
	return rows, err
}

func (r *transactionRowRepository) MarkCategorizing(ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.Model(&domain.TransactionListRow{}).Where("id IN ?", ids).
		Updates(map[string]interface{}{
			"ai_status":  domain.AIStatusCategorizing,
			"updated_at": time.Now(),
		}).Error
}

func (r *transactionRowRepository) SetCategory(id uint, category string, confidence *float64) error {
	return r.db.Model(&domain.TransactionListRow{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"ai_category":   category,
			"ai_confidence": confidence,
			"ai_status":     domain.AIStatusCategorized,
			"updated_at":    time.Now(),
		}).Error
}

func (r *transactionRowRepository) FindSyncCandidates(limit int) ([]*domain.TransactionListRow, error) {
	var rows []*domain.TransactionListRow
	err := r.db.Where("ai_category IS NOT NULL AND (qb_sync_status IS NULL OR qb_sync_status <> ?)", domain.SyncStatusSynced).
		Order(recentFirst).Limit(limit).Find(&rows).Error
	return rows, err
}

func (r *transactionRowRepository) SetClassID(id uint, classID string) error {
	return r.db.Model(&domain.TransactionListRow{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"qb_class_id": classID,
			"updated_at":  time.Now(),
		}).Error
}

func (r *transactionRowRepository) SetSyncOutcome(id uint, status string, message *string) error {
	return r.db.Model(&domain.TransactionListRow{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"qb_sync_status": status,
			"qb_sync_error":  message,
			"updated_at":     time.Now(),
		}).Error
}

func (r *transactionRowRepository) FindSyncFailures(limit int) ([]*domain.TransactionListRow, error) {
	var rows []*domain.TransactionListRow
	err := r.db.Omit("raw").Where("qb_sync_status = ?", domain.SyncStatusFailed).
		Order("updated_at DESC").Limit(limit).Find(&rows).Error
	return rows, err
}

func (r *transactionRowRepository) FindByID(id uint) (*domain.TransactionListRow, error) {
	var row domain.TransactionListRow
	err := r.db.Where("id = ?", id).First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *transactionRowRepository) List(limit, offset int) ([]*domain.TransactionListRow, int64, error) {
	var rows []*domain.TransactionListRow
	var total int64

	if err := r.db.Model(&domain.TransactionListRow{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := r.db.Omit("raw").Order(recentFirst).Limit(limit).Offset(offset).Find(&rows).Error
	return rows, total, err
}

func (r *transactionRowRepository) AccountUsage() ([]AccountUsage, error) {
	var out []AccountUsage
	err := r.db.Raw(`SELECT t.account AS name, a.account_type AS account_type, a.account_sub_type AS account_sub_type,
			a.classification AS classification, COUNT(*) AS txn_count, COALESCE(SUM(t.amount), 0) AS total_amount
		FROM qbo_transaction_list_rows t
		LEFT JOIN qbo_accounts a ON a.name = t.account
		WHERE t.account IS NOT NULL AND t.account <> ''
		GROUP BY t.account, a.account_type, a.account_sub_type, a.classification
		ORDER BY txn_count DESC, t.account ASC`).Scan(&out).Error
	return out, err
}

func (r *transactionRowRepository) TypeBreakdown() ([]TypeBreakdown, error) {
	var out []TypeBreakdown
	err := r.db.Raw(`SELECT COALESCE(txn_type, '') AS txn_type, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS total
		FROM qbo_transaction_list_rows
		GROUP BY txn_type
		ORDER BY count DESC, txn_type ASC`).Scan(&out).Error
	return out, err
}
