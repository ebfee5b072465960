package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"qbo-backend/internal/ledger/repository"
	"qbo-backend/pkg/ai"

	"github.com/rs/zerolog"
)

const analysisSystemPrompt = `You are a financial analysis agent for QuickBooks data. Use only the provided summary data. 
Return JSON only with keys: answer, insights (array of short bullets), charts (array).
Each chart must be valid Chart.js config: {title, type, data, options}.`

const fallbackAnswer = "Here is a quick summary based on stored QuickBooks data. Ask a specific question for deeper analysis."

type insightsUsecase struct {
	entityRepo repository.EntityRepository
	rowRepo    repository.TransactionRowRepository
	chat       ai.ChatService
	status     StatusReader
	dateRange  DateRange
	logger     zerolog.Logger
}

// NewInsightsUsecase creates the insights usecase. A nil chat service makes
// Ask always return the templated summary answer.
func NewInsightsUsecase(
	entityRepo repository.EntityRepository,
	rowRepo repository.TransactionRowRepository,
	chat ai.ChatService,
	status StatusReader,
	dateRange DateRange,
	logger zerolog.Logger,
) InsightsUsecase {
	return &insightsUsecase{
		entityRepo: entityRepo,
		rowRepo:    rowRepo,
		chat:       chat,
		status:     status,
		dateRange:  dateRange,
		logger:     logger,
	}
}

type analysisTotals struct {
	Customers       int64   `json:"customers"`
	Payments        float64 `json:"payments"`
	JournalEntries  int64   `json:"journalEntries"`
	TransactionRows int64   `json:"transactionRows"`
}

type analysisRequest struct {
	Question                 string                     `json:"question"`
	DataRange                DateRange                  `json:"dataRange"`
	MonthlyPayments          []MonthlyTotal             `json:"monthlyPayments"`
	MonthlyJournalEntries    []MonthlyCount             `json:"monthlyJournalEntries"`
	TopCustomers             []repository.CustomerTotal `json:"topCustomers"`
	TransactionTypeBreakdown []repository.TypeBreakdown `json:"transactionTypeBreakdown"`
	Totals                   analysisTotals             `json:"totals"`
}

// Ask answers a question from the summary. Model failures and unparseable
// replies degrade to a templated answer; only summary errors are returned.
func (u *insightsUsecase) Ask(ctx context.Context, question string) (*Answer, error) {
	summary, err := u.Summary()
	if err != nil {
		return nil, err
	}
	if u.chat == nil {
		return fallbackResponse(summary), nil
	}

	payload, err := json.Marshal(analysisRequest{
		Question:                 question,
		DataRange:                summary.DateRange,
		MonthlyPayments:          summary.MonthlyPayments,
		MonthlyJournalEntries:    summary.MonthlyJournalEntries,
		TopCustomers:             summary.TopCustomers,
		TransactionTypeBreakdown: summary.TransactionTypeBreakdown,
		Totals: analysisTotals{
			Customers:       summary.TotalCustomers,
			Payments:        summary.TotalPayments,
			JournalEntries:  summary.TotalJournalEntries,
			TransactionRows: summary.TotalTransactionRows,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode analysis request: %w", err)
	}

	reply, err := u.chat.Chat(ctx, []ai.Message{
		{Role: ai.RoleSystem, Content: analysisSystemPrompt},
		{Role: ai.RoleUser, Content: string(payload)},
	}, ai.ChatOptions{Temperature: 0.2})
	if err != nil {
		u.logger.Warn().Err(err).Msg("[Insights] Analysis model failed, using summary answer")
		return fallbackResponse(summary), nil
	}

	answer, ok := parseAnswer(reply)
	if !ok {
		u.logger.Warn().Msg("[Insights] Analysis reply had no usable JSON, using summary answer")
		return fallbackResponse(summary), nil
	}
	return answer, nil
}

func parseAnswer(reply string) (*Answer, bool) {
	raw, ok := ai.ExtractJSONObject(reply)
	if !ok {
		return nil, false
	}
	var parsed struct {
		Answer   *string       `json:"answer"`
		Insights []string      `json:"insights"`
		Charts   []interface{} `json:"charts"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, false
	}
	answer := &Answer{Insights: nonNil(parsed.Insights), Charts: nonNil(parsed.Charts)}
	if parsed.Answer != nil {
		answer.Answer = *parsed.Answer
	}
	return answer, true
}

func fallbackResponse(summary *Summary) *Answer {
	insights := []string{fmt.Sprintf("Total payments in range: $%.2f.", summary.TotalPayments)}
	if len(summary.TopCustomers) > 0 {
		top := summary.TopCustomers[0]
		name := top.CustomerRef
		if top.DisplayName != nil {
			name = *top.DisplayName
		}
		insights = append(insights, fmt.Sprintf("Top customer by payments: %s.", name))
	}

	charts := []interface{}{}
	if n := len(summary.MonthlyPayments); n > 0 {
		last := summary.MonthlyPayments[n-1]
		insights = append(insights, fmt.Sprintf("Most recent month in data: %s with $%.2f in payments.", last.Month, last.Total))
		charts = append(charts, paymentsChart(summary.MonthlyPayments))
	}

	return &Answer{Answer: fallbackAnswer, Insights: insights, Charts: charts}
}

func paymentsChart(months []MonthlyTotal) map[string]interface{} {
	labels := make([]string, 0, len(months))
	data := make([]float64, 0, len(months))
	for _, m := range months {
		labels = append(labels, m.Month)
		data = append(data, m.Total)
	}
	return map[string]interface{}{
		"title": "Payments by Month",
		"type":  "bar",
		"data": map[string]interface{}{
			"labels": labels,
			"datasets": []map[string]interface{}{
				{"label": "Payments", "data": data, "backgroundColor": "#1f77b4"},
			},
		},
	}
}

func (u *insightsUsecase) Dashboard() (*Dashboard, error) {
	summary, err := u.Summary()
	if err != nil {
		return nil, err
	}
	status, err := u.status.Status()
	if err != nil {
		return nil, fmt.Errorf("failed to load connection status: %w", err)
	}
	return &Dashboard{Summary: summary, Connection: status}, nil
}
