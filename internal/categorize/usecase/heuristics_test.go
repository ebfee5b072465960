package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var allowed = []string{"Income", "COGS", "Payroll", "Rent", "Utilities", "Marketing", "Travel", "Software", "Insurance", "Repairs", "Bank Fees", "Taxes", "Other"}

func TestNormalizeCategory(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"income", "Income"},
		{"  BANK FEES ", "Bank Fees"},
		{"Travel", "Travel"},
		{"Groceries", "Other"},
		{"", "Other"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeCategory(tt.in, allowed))
		})
	}
}

func TestHeuristicCategory(t *testing.T) {
	tests := []struct {
		name    string
		txnName string
		txnType string
		want    string
	}{
		{"payroll keyword", "ACME Payroll Services", "Bill", "Payroll"},
		{"income by type", "Random Vendor LLC", "Invoice", "Income"},
		{"deposit type", "Someone", "Deposit", "Income"},
		{"other", "Random Vendor LLC", "Bill", "Other"},
		{"software", "GitHub Inc", "Expense", "Software"},
		{"keyword beats type", "Comcast", "Payment", "Utilities"},
		{"travel", "Uber Trip", "Expense", "Travel"},
		{"bank fee", "Monthly service charge", "Expense", "Bank Fees"},
		{"cogs", "Inventory restock", "Bill", "COGS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HeuristicCategory(tt.txnName, tt.txnType, allowed))
		})
	}
}

func TestHeuristicRespectsAllowedList(t *testing.T) {
	assert.Equal(t, "Other", HeuristicCategory("ACME Payroll", "", []string{"Income", "Other"}))
}

func TestParseReply(t *testing.T) {
	results, err := parseReply("Sure!\n```json\n[{\"id\": 1, \"category\": \"rent\"}, {\"id\": \"2\", \"category\": \"Travel\", \"confidence\": 0.9}, {\"id\": 3}]\n```")
	assert.NoError(t, err)
	assert.Len(t, results, 2)
	assert.Equal(t, "rent", results[1].Category)
	if assert.NotNil(t, results[2].Confidence) {
		assert.InDelta(t, 0.9, *results[2].Confidence, 1e-9)
	}

	_, err = parseReply("I cannot help with that")
	assert.Error(t, err)
}
