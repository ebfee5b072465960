package delivery

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"qbo-backend/internal/insights/usecase"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeInsights struct {
	questions []string
}

func (f *fakeInsights) Summary() (*usecase.Summary, error) {
	return &usecase.Summary{TotalCustomers: 3}, nil
}

func (f *fakeInsights) Ask(ctx context.Context, question string) (*usecase.Answer, error) {
	f.questions = append(f.questions, question)
	return &usecase.Answer{Answer: "ok", Insights: []string{}, Charts: []interface{}{}}, nil
}

func (f *fakeInsights) Dashboard() (*usecase.Dashboard, error) {
	return &usecase.Dashboard{}, nil
}

func TestChat(t *testing.T) {
	gin.SetMode(gin.TestMode)
	fake := &fakeInsights{}
	r := gin.New()
	NewInsightsHandler(fake).RegisterRoutes(r.Group("/api"))

	tests := []struct {
		name     string
		body     string
		wantCode int
	}{
		{"no body", "", http.StatusBadRequest},
		{"blank message", `{"message": "  "}`, http.StatusBadRequest},
		{"question", `{"message": "top customers?"}`, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.wantCode, w.Code)
		})
	}
	require.Equal(t, []string{"top customers?"}, fake.questions)
}

func TestSummary(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewInsightsHandler(&fakeInsights{}).RegisterRoutes(r.Group("/api"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/data/summary", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"totalCustomers":3`)
}
