package repository

import (
	"time"

	"qbo-backend/internal/ledger/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const upsertBatchSize = 200

type entityRepository struct {
	db *gorm.DB
}

// NewEntityRepository creates a gorm-backed EntityRepository.
func NewEntityRepository(db *gorm.DB) EntityRepository {
	return &entityRepository{db: db}
}

// dedupe keeps the last item per key so a batch never conflicts with itself.
func dedupe[T any](items []*T, key func(*T) string) []*T {
	seen := make(map[string]int, len(items))
	out := make([]*T, 0, len(items))
	for _, item := range items {
		k := key(item)
		if i, ok := seen[k]; ok {
			out[i] = item
			continue
		}
		seen[k] = len(out)
		out = append(out, item)
	}
	return out
}

func (r *entityRepository) upsert(value interface{}, columns []string) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "qbo_id"}},
		DoUpdates: clause.AssignmentColumns(append(columns, "updated_at")),
	}).CreateInBatches(value, upsertBatchSize).Error
}

func (r *entityRepository) UpsertCustomers(customers []*domain.Customer) error {
	if len(customers) == 0 {
		return nil
	}
	customers = dedupe(customers, func(c *domain.Customer) string { return c.QboID })
	return r.upsert(customers, []string{"display_name", "active", "last_updated_time", "raw"})
}

func (r *entityRepository) UpsertPayments(payments []*domain.Payment) error {
	if len(payments) == 0 {
		return nil
	}
	payments = dedupe(payments, func(p *domain.Payment) string { return p.QboID })
	return r.upsert(payments, []string{"txn_date", "total_amt", "customer_ref", "raw"})
}

func (r *entityRepository) UpsertJournalEntries(entries []*domain.JournalEntry) error {
	if len(entries) == 0 {
		return nil
	}
	entries = dedupe(entries, func(e *domain.JournalEntry) string { return e.QboID })
	return r.upsert(entries, []string{"txn_date", "total_amt", "total_debit", "total_credit", "raw"})
}

func (r *entityRepository) UpsertAccounts(accounts []*domain.Account) error {
	if len(accounts) == 0 {
		return nil
	}
	accounts = dedupe(accounts, func(a *domain.Account) string { return a.QboID })
	return r.upsert(accounts, []string{"name", "fully_qualified_name", "account_type", "account_sub_type", "classification", "active", "raw"})
}

func (r *entityRepository) ListAccounts() ([]*domain.Account, error) {
	var accounts []*domain.Account
	err := r.db.Omit("raw").Order("name ASC").Find(&accounts).Error
	return accounts, err
}

func (r *entityRepository) FindAccountByQboID(qboID string) (*domain.Account, error) {
	var account domain.Account
	err := r.db.Where("qbo_id = ?", qboID).First(&account).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

func (r *entityRepository) Counts() (*EntityCounts, error) {
	var c EntityCounts
	counters := []struct {
		model interface{}
		dest  *int64
	}{
		{&domain.Customer{}, &c.Customers},
		{&domain.Payment{}, &c.Payments},
		{&domain.JournalEntry{}, &c.JournalEntries},
		{&domain.Account{}, &c.Accounts},
		{&domain.TransactionListRow{}, &c.TransactionRows},
	}
	for _, counter := range counters {
		if err := r.db.Model(counter.model).Count(counter.dest).Error; err != nil {
			return nil, err
		}
	}
	return &c, nil
}

func (r *entityRepository) PaymentPoints() ([]PaymentPoint, error) {
	var payments []*domain.Payment
	err := r.db.Select("txn_date", "total_amt").
		Where("txn_date IS NOT NULL AND total_amt IS NOT NULL").
		Order("txn_date ASC").Find(&payments).Error
	if err != nil {
		return nil, err
	}
	points := make([]PaymentPoint, 0, len(payments))
	for _, p := range payments {
		points = append(points, PaymentPoint{TxnDate: *p.TxnDate, TotalAmt: *p.TotalAmt})
	}
	return points, nil
}

func (r *entityRepository) JournalEntryDates() ([]time.Time, error) {
	var entries []*domain.JournalEntry
	err := r.db.Select("txn_date").Where("txn_date IS NOT NULL").Order("txn_date ASC").Find(&entries).Error
	if err != nil {
		return nil, err
	}
	dates := make([]time.Time, 0, len(entries))
	for _, e := range entries {
		dates = append(dates, *e.TxnDate)
	}
	return dates, nil
}

func (r *entityRepository) SumPayments() (float64, error) {
	var total float64
	err := r.db.Model(&domain.Payment{}).Select("COALESCE(SUM(total_amt), 0)").Scan(&total).Error
	return total, err
}

func (r *entityRepository) TopCustomers(limit int) ([]CustomerTotal, error) {
	var out []CustomerTotal
	err := r.db.Raw(`SELECT p.customer_ref AS customer_ref, c.display_name AS display_name, SUM(p.total_amt) AS total
		FROM qbo_payments p
		LEFT JOIN qbo_customers c ON c.qbo_id = p.customer_ref
		WHERE p.total_amt IS NOT NULL
		GROUP BY p.customer_ref, c.display_name
		ORDER BY total DESC
		LIMIT ?`, limit).Scan(&out).Error
	return out, err
}

func (r *entityRepository) Purge() error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{
			&domain.TransactionListRow{},
			&domain.Customer{},
			&domain.Payment{},
			&domain.JournalEntry{},
			&domain.Account{},
		} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
