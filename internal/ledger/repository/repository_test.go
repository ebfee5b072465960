package repository

import (
	"testing"
	"time"

	"qbo-backend/internal/ledger/domain"
	"qbo-backend/internal/ledger/ledgertest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(f float64) *float64 { return &f }

func datePtr(s string) *time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return &t
}

func TestUpsertCustomersIsIdempotent(t *testing.T) {
	repo := NewEntityRepository(ledgertest.NewDB(t))

	require.NoError(t, repo.UpsertCustomers([]*domain.Customer{
		{QboID: "1", DisplayName: "Acme"},
		{QboID: "2", DisplayName: "Globex"},
		{QboID: "1", DisplayName: "Acme Corp"},
	}))
	require.NoError(t, repo.UpsertCustomers([]*domain.Customer{
		{QboID: "2", DisplayName: "Globex Inc"},
	}))

	counts, err := repo.Counts()
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts.Customers)

	top, err := repo.TopCustomers(10)
	require.NoError(t, err)
	assert.Empty(t, top)
}

func TestTopCustomersAndSum(t *testing.T) {
	repo := NewEntityRepository(ledgertest.NewDB(t))

	require.NoError(t, repo.UpsertCustomers([]*domain.Customer{
		{QboID: "c1", DisplayName: "Acme"},
		{QboID: "c2", DisplayName: "Globex"},
	}))
	require.NoError(t, repo.UpsertPayments([]*domain.Payment{
		{QboID: "p1", CustomerRef: "c1", TotalAmt: floatPtr(100), TxnDate: datePtr("2024-01-05")},
		{QboID: "p2", CustomerRef: "c2", TotalAmt: floatPtr(300), TxnDate: datePtr("2024-02-05")},
		{QboID: "p3", CustomerRef: "c1", TotalAmt: floatPtr(50), TxnDate: datePtr("2024-02-10")},
	}))

	sum, err := repo.SumPayments()
	require.NoError(t, err)
	assert.InDelta(t, 450, sum, 0.001)

	top, err := repo.TopCustomers(10)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "c2", top[0].CustomerRef)
	require.NotNil(t, top[0].DisplayName)
	assert.Equal(t, "Globex", *top[0].DisplayName)
	assert.InDelta(t, 150, top[1].Total, 0.001)

	points, err := repo.PaymentPoints()
	require.NoError(t, err)
	assert.Len(t, points, 3)
}

func TestReplaceWindowOnlyTouchesItsWindow(t *testing.T) {
	repo := NewTransactionRowRepository(ledgertest.NewDB(t))
	jan := domain.ReportWindow{Start: "2024-01-01", End: "2024-06-30"}
	jul := domain.ReportWindow{Start: "2024-07-01", End: "2024-12-31"}

	require.NoError(t, repo.ReplaceWindow(jan, []*domain.TransactionListRow{{Name: "a"}, {Name: "b"}}))
	require.NoError(t, repo.ReplaceWindow(jul, []*domain.TransactionListRow{{Name: "c"}}))
	require.NoError(t, repo.ReplaceWindow(jan, []*domain.TransactionListRow{{Name: "d"}}))

	n, err := repo.CountByWindow(jan)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = repo.CountByWindow(jul)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, repo.ReplaceWindow(jul, nil))
	total, err := repo.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestCategorizeAndSyncSelection(t *testing.T) {
	repo := NewTransactionRowRepository(ledgertest.NewDB(t))
	window := domain.ReportWindow{Start: "2024-01-01", End: "2024-06-30"}
	require.NoError(t, repo.ReplaceWindow(window, []*domain.TransactionListRow{
		{Name: "old", TxnDate: datePtr("2024-01-02")},
		{Name: "new", TxnDate: datePtr("2024-05-02")},
		{Name: "undated"},
	}))

	rows, err := repo.FindUncategorized(10)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "new", rows[0].Name)
	assert.Equal(t, "old", rows[1].Name)
	assert.Equal(t, "undated", rows[2].Name)

	require.NoError(t, repo.MarkCategorizing([]uint{rows[0].ID, rows[1].ID}))
	require.NoError(t, repo.SetCategory(rows[0].ID, "Rent", nil))

	rows, err = repo.FindUncategorized(10)
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	candidates, err := repo.FindSyncCandidates(10)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "Rent", *candidates[0].AICategory)

	require.NoError(t, repo.SetSyncOutcome(candidates[0].ID, domain.SyncStatusFailed, domain.StringPtr("boom")))
	failures, err := repo.FindSyncFailures(10)
	require.NoError(t, err)
	require.Len(t, failures, 1)
	assert.Equal(t, "boom", *failures[0].QBSyncError)

	require.NoError(t, repo.SetSyncOutcome(candidates[0].ID, domain.SyncStatusSynced, nil))
	candidates, err = repo.FindSyncCandidates(10)
	require.NoError(t, err)
	assert.Empty(t, candidates)

	list, total, err := repo.List(2, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, list, 2)
}

func TestCategoryMapFindIsCaseInsensitive(t *testing.T) {
	repo := NewCategoryMapRepository(ledgertest.NewDB(t))

	require.NoError(t, repo.Upsert(&domain.CategoryAccountMap{Category: "Rent", AccountID: "10", AccountName: "Rent Expense"}))
	require.NoError(t, repo.Upsert(&domain.CategoryAccountMap{Category: "Rent", AccountID: "11", AccountName: "Lease"}))

	m, err := repo.FindByCategory("  rent ")
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "11", m.AccountID)

	m, err = repo.FindByCategory("Travel")
	require.NoError(t, err)
	assert.Nil(t, m)

	all, err := repo.List()
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
