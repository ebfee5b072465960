package delivery

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"qbo-backend/internal/connection/domain"
	"qbo-backend/internal/connection/usecase"
	"qbo-backend/pkg/quickbooks"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConnectionUsecase struct {
	callbackErr error
	purged      []bool
	callbacks   []string
}

func (f *fakeConnectionUsecase) Credential(ctx context.Context) (*quickbooks.Credential, error) {
	return nil, usecase.ErrNotConnected
}

func (f *fakeConnectionUsecase) ConnectURL() (string, error) {
	return "https://appcenter.intuit.com/connect/oauth2?state=abc", nil
}

func (f *fakeConnectionUsecase) HandleCallback(ctx context.Context, code, realmID, state string) (*domain.Status, error) {
	f.callbacks = append(f.callbacks, code+"/"+realmID+"/"+state)
	if f.callbackErr != nil {
		return nil, f.callbackErr
	}
	return &domain.Status{Connected: true, RealmID: realmID}, nil
}

func (f *fakeConnectionUsecase) Disconnect(purge bool) error {
	f.purged = append(f.purged, purge)
	return nil
}

func (f *fakeConnectionUsecase) Status() (*domain.Status, error) {
	return &domain.Status{Connected: false}, nil
}

func (f *fakeConnectionUsecase) CompanyInfo(ctx context.Context) *usecase.CompanyInfo {
	return &usecase.CompanyInfo{Connected: false, Error: usecase.ErrNotConnected.Error()}
}

func (f *fakeConnectionUsecase) SetCompanyReader(reader usecase.CompanyReader) {}

func newRouter(uc usecase.ConnectionUsecase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewConnectionHandler(uc).RegisterRoutes(r.Group("/api"))
	return r
}

func serve(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestConnectRedirects(t *testing.T) {
	w := serve(newRouter(&fakeConnectionUsecase{}), http.MethodGet, "/api/auth/connect", "")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://appcenter.intuit.com/connect/oauth2?state=abc", w.Header().Get("Location"))
}

func TestCallback(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		err      error
		wantCode int
	}{
		{"missing realm", "?code=c", nil, http.StatusBadRequest},
		{"bad state", "?code=c&realmId=1&state=s", usecase.ErrInvalidState, http.StatusBadRequest},
		{"exchange failure", "?code=c&realmId=1&state=s", assert.AnError, http.StatusInternalServerError},
		{"success", "?code=c&realmId=1&state=s", nil, http.StatusFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &fakeConnectionUsecase{callbackErr: tt.err}
			w := serve(newRouter(uc), http.MethodGet, "/api/auth/callback"+tt.query, "")
			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantCode == http.StatusFound {
				assert.Equal(t, "/", w.Header().Get("Location"))
				assert.Equal(t, []string{"c/1/s"}, uc.callbacks)
			}
		})
	}
}

func TestDisconnectPurgeFlag(t *testing.T) {
	uc := &fakeConnectionUsecase{}
	r := newRouter(uc)

	require.Equal(t, http.StatusOK, serve(r, http.MethodPost, "/api/auth/disconnect", "").Code)
	require.Equal(t, http.StatusOK, serve(r, http.MethodPost, "/api/auth/disconnect?purge=1", "").Code)
	w := serve(r, http.MethodPost, "/api/auth/disconnect", `{"purge": true}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true,"purged":true}`, w.Body.String())

	assert.Equal(t, []bool{false, true, true}, uc.purged)
}

func TestCompanyReportsErrorsInBody(t *testing.T) {
	w := serve(newRouter(&fakeConnectionUsecase{}), http.MethodGet, "/api/company", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"connected":false,"error":"quickbooks is not connected"}`, w.Body.String())
}
