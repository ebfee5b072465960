package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"testing"

	"qbo-backend/internal/ledger/domain"
	"qbo-backend/internal/ledger/ledgertest"
	"qbo-backend/internal/ledger/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	queryAll func(entity, where string) ([]json.RawMessage, error)
	report   func(params url.Values) (json.RawMessage, error)
	reports  []url.Values
}

func (f *fakeAPI) QueryAll(ctx context.Context, entity, where string) ([]json.RawMessage, error) {
	return f.queryAll(entity, where)
}

func (f *fakeAPI) Report(ctx context.Context, name string, params url.Values) (json.RawMessage, error) {
	copied := url.Values{}
	for k, v := range params {
		copied[k] = append([]string(nil), v...)
	}
	f.reports = append(f.reports, copied)
	return f.report(params)
}

func raws(items ...string) []json.RawMessage {
	out := make([]json.RawMessage, len(items))
	for i, s := range items {
		out[i] = json.RawMessage(s)
	}
	return out
}

var entityFixtures = map[string][]json.RawMessage{
	"Customer": raws(`{"Id":"1","DisplayName":"Acme","Active":true,"MetaData":{"LastUpdatedTime":"2024-01-02T10:00:00-08:00"}}`),
	"Payment":  raws(`{"Id":"10","TxnDate":"2024-01-05","TotalAmt":125.5,"CustomerRef":{"value":"1"}}`),
	"JournalEntry": raws(`{"Id":"20","TxnDate":"2024-02-01","Line":[
		{"Amount":100,"JournalEntryLineDetail":{"PostingType":"Debit"}},
		{"Amount":60,"JournalEntryLineDetail":{"PostingType":"Credit"}},
		{"Amount":40.25,"JournalEntryLineDetail":{"PostingType":"Credit"}}]}`),
	"Account": raws(`{"Id":"7","Name":"Rent Expense","AccountType":"Expense","Classification":"Expense","Active":true}`),
}

const oneRowReport = `{"Columns":{"Column":[{"ColTitle":"Date"},{"ColTitle":"Transaction Type"},{"ColTitle":"Name"},{"ColTitle":"Amount"}]},
"Rows":{"Row":[{"type":"Data","ColData":[{"value":"2023-03-01"},{"value":"Bill","id":"5"},{"value":"Landlord"},{"value":"900"}]}]}}`

type ingestFixture struct {
	uc      IngestUsecase
	api     *fakeAPI
	entity  repository.EntityRepository
	rows    repository.TransactionRowRepository
	runRepo repository.SyncRunRepository
}

func newIngestFixture(t *testing.T, api *fakeAPI) *ingestFixture {
	t.Helper()
	db := ledgertest.NewDB(t)
	f := &ingestFixture{
		api:     api,
		entity:  repository.NewEntityRepository(db),
		rows:    repository.NewTransactionRowRepository(db),
		runRepo: repository.NewSyncRunRepository(db),
	}
	f.uc = NewIngestUsecase(api, f.entity, f.rows, f.runRepo,
		Options{StartDate: "2023-01-01", EndDate: "2023-12-31", ChunkMonths: 6}, zerolog.Nop())
	return f
}

func TestIngestAllStoresEntitiesAndWindows(t *testing.T) {
	api := &fakeAPI{
		queryAll: func(entity, where string) ([]json.RawMessage, error) { return entityFixtures[entity], nil },
		report:   func(params url.Values) (json.RawMessage, error) { return json.RawMessage(oneRowReport), nil },
	}
	f := newIngestFixture(t, api)

	summary, err := f.uc.IngestAll(context.Background())
	require.NoError(t, err)
	require.Equal(t, domain.IngestSummary{Customers: 1, Payments: 1, JournalEntries: 1, Accounts: 1, TransactionListRows: 2}, *summary)

	require.Len(t, api.reports, 2)
	require.Equal(t, "2023-01-01", api.reports[0].Get("start_date"))
	require.Equal(t, "2023-06-30", api.reports[0].Get("end_date"))
	require.Equal(t, TransactionListColumns, api.reports[0].Get("columns"))

	// re-ingest keeps one row per window and one record per entity
	_, err = f.uc.IngestAll(context.Background())
	require.NoError(t, err)
	counts, err := f.entity.Counts()
	require.NoError(t, err)
	require.Equal(t, int64(1), counts.Customers)
	require.Equal(t, int64(2), counts.TransactionRows)

	runs, err := f.uc.LatestRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	require.Equal(t, domain.RunStatusSucceeded, runs[0].Status)
}

func TestIngestJournalTotals(t *testing.T) {
	entries, err := mapJournalEntries(entityFixtures["JournalEntry"])
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.InDelta(t, 100, entries[0].TotalDebit, 1e-9)
	require.InDelta(t, 100.25, entries[0].TotalCredit, 1e-9)
}

func TestReportFallsBackToDefaultColumns(t *testing.T) {
	api := &fakeAPI{
		queryAll: func(entity, where string) ([]json.RawMessage, error) { return nil, nil },
		report: func(params url.Values) (json.RawMessage, error) {
			if params.Get("columns") != "" {
				return nil, errors.New("bad columns")
			}
			return json.RawMessage(oneRowReport), nil
		},
	}
	f := newIngestFixture(t, api)

	summary, err := f.uc.IngestAll(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, summary.TransactionListRows)
	require.Len(t, api.reports, 4)
	require.Empty(t, api.reports[1].Get("columns"))
}

func TestChunkFailureAbortsAndKeepsEarlierWindow(t *testing.T) {
	api := &fakeAPI{
		queryAll: func(entity, where string) ([]json.RawMessage, error) { return nil, nil },
		report:   func(params url.Values) (json.RawMessage, error) { return json.RawMessage(oneRowReport), nil },
	}
	f := newIngestFixture(t, api)
	_, err := f.uc.IngestAll(context.Background())
	require.NoError(t, err)

	api.report = func(params url.Values) (json.RawMessage, error) {
		if params.Get("start_date") == "2023-01-01" {
			return nil, errors.New("report unavailable")
		}
		return json.RawMessage(oneRowReport), nil
	}
	_, err = f.uc.IngestAll(context.Background())
	require.Error(t, err)

	// the failed window keeps its previous row; the later window was never attempted
	n, err := f.rows.CountByWindow(domain.ReportWindow{Start: "2023-01-01", End: "2023-06-30"})
	require.NoError(t, err)
	require.Equal(t, int64(1), n)
	for _, params := range api.reports[2:] {
		require.Equal(t, "2023-01-01", params.Get("start_date"))
	}

	runs, err := f.uc.LatestRuns(1)
	require.NoError(t, err)
	require.Equal(t, domain.RunStatusFailed, runs[0].Status)
	require.Contains(t, runs[0].Error, "report unavailable")
}

func TestEntityFetchErrorAborts(t *testing.T) {
	api := &fakeAPI{
		queryAll: func(entity, where string) ([]json.RawMessage, error) {
			if entity == "Payment" {
				return nil, errors.New("401 unauthorized")
			}
			return entityFixtures[entity], nil
		},
		report: func(params url.Values) (json.RawMessage, error) { return json.RawMessage(oneRowReport), nil },
	}
	f := newIngestFixture(t, api)

	_, err := f.uc.IngestAll(context.Background())
	require.ErrorContains(t, err, "Payment")
	require.Empty(t, api.reports)
	require.False(t, f.uc.Running())
}
