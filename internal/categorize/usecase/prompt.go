package usecase

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"qbo-backend/internal/ledger/domain"
	"qbo-backend/pkg/ai"
)

const systemPrompt = `You are a bookkeeping categorization assistant. Use the transaction name to pick exactly one category from the provided list. Return ONLY a JSON array. Each element must be: {"id": number, "category": "<one of categories>"}. If unsure, use "Other". No extra text.`

type promptTransaction struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type promptPayload struct {
	Categories   []string            `json:"categories"`
	Transactions []promptTransaction `json:"transactions"`
}

// buildMessages sends only ids and counterparty names.
func buildMessages(categories []string, batch []*domain.TransactionListRow) ([]ai.Message, error) {
	payload := promptPayload{Categories: categories}
	for _, row := range batch {
		payload.Transactions = append(payload.Transactions, promptTransaction{ID: row.ID, Name: row.Name})
	}
	content, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return []ai.Message{
		{Role: ai.RoleSystem, Content: systemPrompt},
		{Role: ai.RoleUser, Content: string(content)},
	}, nil
}

type modelResult struct {
	Category   string
	Confidence *float64
}

type modelItem struct {
	ID         json.Number `json:"id"`
	Category   string      `json:"category"`
	Confidence *float64    `json:"confidence"`
}

// parseReply maps row id to the model's answer. Items without a numeric id or
// a category are dropped.
func parseReply(content string) (map[uint]modelResult, error) {
	raw, ok := ai.ExtractJSONArray(content)
	if !ok {
		return nil, errors.New("reply contains no JSON array")
	}
	var items []modelItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode reply: %w", err)
	}

	out := make(map[uint]modelResult, len(items))
	for _, item := range items {
		id, err := strconv.ParseUint(item.ID.String(), 10, 64)
		if err != nil || item.Category == "" {
			continue
		}
		out[uint(id)] = modelResult{Category: item.Category, Confidence: item.Confidence}
	}
	return out, nil
}
