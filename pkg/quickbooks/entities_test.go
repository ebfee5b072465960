package quickbooks

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveEntity(t *testing.T) {
	tests := []struct {
		txnType string
		key     string
		ok      bool
	}{
		{"Bill", "Bill", true},
		{"Journal Entry", "JournalEntry", true},
		{"Expense", "Purchase", true},
		{"Sales Receipt", "SalesReceipt", true},
		{"Bill Payment (Check)", "BillPayment", true},
		{"Credit Card Expense", "Purchase", true},
		{"Inventory Qty Adjust", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.txnType, func(t *testing.T) {
			e, ok := ResolveEntity(tt.txnType)
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.key, e.Key)
		})
	}
}

func TestPaymentUpdateIsKnownUnsupported(t *testing.T) {
	e, ok := ResolveEntity("Payment")
	require.True(t, ok)
	require.False(t, e.UpdateSupported)
}
