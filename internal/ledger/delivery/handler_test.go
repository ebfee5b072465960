package delivery

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"qbo-backend/internal/jobs"
	"qbo-backend/internal/ledger/domain"
	"qbo-backend/internal/ledger/ledgertest"
	"qbo-backend/internal/ledger/repository"
	"qbo-backend/internal/ledger/usecase"
	pushsync "qbo-backend/internal/pushsync/usecase"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	kind   jobs.Kind
	limits []int
}

func (f *fakeRunner) Submit(limit int) jobs.Job {
	f.limits = append(f.limits, limit)
	return jobs.Job{ID: "job-1", Kind: f.kind, Status: jobs.StatusRunning, Limit: limit}
}

func (f *fakeRunner) Get() jobs.Job {
	return jobs.Job{Kind: f.kind, Status: jobs.StatusIdle}
}

type fixture struct {
	router     *gin.Engine
	categorize *fakeRunner
	sync       *fakeRunner
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := ledgertest.NewDB(t)
	rowRepo := repository.NewTransactionRowRepository(db)
	entityRepo := repository.NewEntityRepository(db)
	mapRepo := repository.NewCategoryMapRepository(db)
	require.NoError(t, entityRepo.UpsertAccounts([]*domain.Account{{QboID: "7", Name: "Office Rent", AccountType: "Expense"}}))

	f := &fixture{
		categorize: &fakeRunner{kind: jobs.KindCategorize},
		sync:       &fakeRunner{kind: jobs.KindSync},
	}
	h := NewLedgerHandler(
		usecase.NewLedgerUsecase(rowRepo),
		pushsync.NewMappingUsecase(mapRepo, entityRepo, []string{"Rent"}, zerolog.Nop()),
		f.categorize, f.sync,
	)
	f.router = gin.New()
	h.RegisterRoutes(f.router.Group("/api"))
	return f
}

func (f *fixture) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestJobLimits(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		path   string
		body   string
		runner *fakeRunner
		want   int
	}{
		{"/api/transactions/categorize", "", f.categorize, usecase.DefaultCategorizeLimit},
		{"/api/transactions/categorize", `{"limit": 9999}`, f.categorize, usecase.MaxCategorizeLimit},
		{"/api/transactions/sync", `{"limit": 5}`, f.sync, 5},
		{"/api/transactions/sync", "", f.sync, usecase.DefaultSyncLimit},
	}
	for _, tt := range tests {
		w := f.do(http.MethodPost, tt.path, tt.body)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, tt.want, tt.runner.limits[len(tt.runner.limits)-1], tt.path+" "+tt.body)

		var resp struct {
			OK  bool `json:"ok"`
			Job struct {
				ID    string `json:"id"`
				Limit int    `json:"limit"`
			} `json:"job"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.OK)
		assert.Equal(t, tt.want, resp.Job.Limit)
	}
}

func TestJobStatus(t *testing.T) {
	f := newFixture(t)
	w := f.do(http.MethodGet, "/api/transactions/sync/status", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"idle"`)
}

func TestSetMapping(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPost, "/api/category-mapping", `{"category": "Rent"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(http.MethodPost, "/api/category-mapping", `{"category": "Rent", "accountId": "404"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(http.MethodPost, "/api/category-mapping", `{"category": "Rent", "accountId": "7"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(http.MethodGet, "/api/category-mapping", "")
	require.Equal(t, http.StatusOK, w.Code)
	var overview pushsync.MappingOverview
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &overview))
	require.Len(t, overview.Mappings, 1)
	assert.Equal(t, "Office Rent", overview.Mappings[0].AccountName)
}

func TestListTransactionsEmpty(t *testing.T) {
	f := newFixture(t)
	w := f.do(http.MethodGet, "/api/transactions?limit=abc&offset=-1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"total":0,"limit":50,"offset":0,"rows":[]}`, w.Body.String())
}
