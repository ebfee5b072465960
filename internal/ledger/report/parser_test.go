package report

import (
	"testing"

	"qbo-backend/internal/ledger/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var window = domain.ReportWindow{Start: "2024-01-01", End: "2024-06-30"}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want *float64
	}{
		{"1,234.56", ptr(1234.56)},
		{"(500.00)", ptr(-500)},
		{"$(500.00)", ptr(-500)},
		{" ( $1,250.75 ) ", ptr(-1250.75)},
		{"$2,000", ptr(2000)},
		{"-12.5", ptr(-12.5)},
		{"abc", nil},
		{"", nil},
		{"()", nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := ParseAmount(tt.in)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tt.want, *got, 1e-9)
		})
	}
}

func ptr(f float64) *float64 { return &f }

const titledReport = `{
  "Columns": {"Column": [
    {"ColTitle": "Date", "ColType": "tx_date"},
    {"ColTitle": "Transaction Type", "ColType": "txn_type"},
    {"ColTitle": "Num", "ColType": "doc_num"},
    {"ColTitle": "Name", "ColType": "name"},
    {"ColTitle": "Memo/Description", "ColType": "memo"},
    {"ColTitle": "Account", "ColType": "account_name"},
    {"ColTitle": "Class", "ColType": "klass_name"},
    {"ColTitle": "Amount", "ColType": "subt_nat_amount"}
  ]},
  "Rows": {"Row": [
    {"type": "Data", "ColData": [
      {"value": "2024-03-05"},
      {"value": "Bill", "id": "145"},
      {"value": "B-1"},
      {"value": "ACME Payroll Services", "id": "58"},
      {"value": "March run"},
      {"value": "Payroll Expenses", "id": "7"},
      {"value": ""},
      {"value": "(1,250.00)"}
    ]},
    {"type": "Section",
     "Header": {"ColData": [{"value": "Group"}]},
     "Rows": {"Row": [
       {"type": "Data", "ColData": [
         {"value": "2024-04-01"},
         {"value": "Invoice", "href": "https://qbo.example/app/invoice?txnId=991"},
         {"value": "1001"},
         {"value": "Globex"},
         {"value": ""},
         {"value": "Accounts Receivable"},
         {"value": "West"},
         {"value": "$2,000"}
       ]}
     ]},
     "Summary": {"ColData": [{"value": "Total"}, {"value": "2000"}]}
    }
  ]}
}`

func TestParseTitledReport(t *testing.T) {
	rows, err := Parse([]byte(titledReport), window)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	bill := rows[0]
	assert.Equal(t, "2024-01-01", bill.ReportStartDate)
	assert.Equal(t, "2024-06-30", bill.ReportEndDate)
	require.NotNil(t, bill.TxnID)
	assert.Equal(t, "145", *bill.TxnID)
	assert.Equal(t, "Bill", bill.TxnType)
	assert.Equal(t, "B-1", bill.DocNum)
	assert.Equal(t, "ACME Payroll Services", bill.Name)
	assert.Equal(t, "Payroll Expenses", bill.Account)
	assert.Equal(t, "March run", bill.Memo)
	require.NotNil(t, bill.Amount)
	assert.InDelta(t, -1250, *bill.Amount, 1e-9)
	require.NotNil(t, bill.TxnDate)
	assert.Equal(t, "2024-03-05", bill.TxnDate.Format("2006-01-02"))
	assert.NotEmpty(t, bill.Raw)

	invoice := rows[1]
	require.NotNil(t, invoice.TxnID)
	assert.Equal(t, "991", *invoice.TxnID)
	assert.Equal(t, "West", invoice.ClassName)
	assert.InDelta(t, 2000, *invoice.Amount, 1e-9)
}

func TestParseRowWithCellsAndChildren(t *testing.T) {
	payload := `{
	  "Columns": {"Column": [{"ColTitle": "Date"}, {"ColTitle": "Type"}, {"ColTitle": "Amount"}]},
	  "Rows": {"Row": [
	    {"ColData": [{"value": "2024-01-02"}, {"value": "Deposit", "id": "1"}, {"value": "10"}],
	     "Rows": {"Row": [
	       {"ColData": [{"value": "2024-01-03"}, {"value": "Deposit", "id": "2"}, {"value": "20"}]}
	     ]}}
	  ]}
	}`
	rows, err := Parse([]byte(payload), window)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "1", *rows[0].TxnID)
	assert.Equal(t, "2", *rows[1].TxnID)
}

func TestParseUntitledColumnsUsesPositions(t *testing.T) {
	payload := `{
	  "Columns": {"Column": [{}, {}, {}, {}, {}, {}, {}]},
	  "Rows": {"Row": [
	    {"ColData": [
	      {"value": "2024-02-10"}, {"value": "Expense"}, {"value": "77"},
	      {"value": "Uber"}, {"value": "Travel"}, {"value": "abc"}, {"value": "Ops"}
	    ]}
	  ]}
	}`
	rows, err := Parse([]byte(payload), window)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, "Expense", row.TxnType)
	assert.Equal(t, "77", row.DocNum)
	assert.Equal(t, "Uber", row.Name)
	assert.Equal(t, "Travel", row.Account)
	assert.Equal(t, "Ops", row.ClassName)
	assert.Nil(t, row.Amount)
	assert.Nil(t, row.TxnID)
}

func TestTxnIDExtractors(t *testing.T) {
	tests := []struct {
		name  string
		cells map[string]Cell
		order []string
		want  string
	}{
		{
			name:  "type cell id wins over earlier cell id",
			order: []string{"name", "transaction type"},
			cells: map[string]Cell{"name": {Value: "Acme", ID: "9"}, "transaction type": {Value: "Bill", ID: "3"}},
			want:  "3",
		},
		{
			name:  "doc number id does not beat first cell id",
			order: []string{"name", "num"},
			cells: map[string]Cell{"name": {Value: "Acme", ID: "9"}, "num": {Value: "B-1", ID: "5"}},
			want:  "9",
		},
		{
			name:  "first cell id",
			order: []string{"date", "name"},
			cells: map[string]Cell{"date": {Value: "x"}, "name": {Value: "Acme", ID: "9"}},
			want:  "9",
		},
		{
			name:  "href query parameter",
			order: []string{"num"},
			cells: map[string]Cell{"num": {Value: "1", Href: "https://x/app/bill?txnId=44&foo=1"}},
			want:  "44",
		},
		{
			name:  "id-like column",
			order: []string{"txn id"},
			cells: map[string]Cell{"txn id": {Value: " 12 "}},
			want:  "12",
		},
		{
			name:  "nothing",
			order: []string{"memo"},
			cells: map[string]Cell{"memo": {Value: "hi"}},
			want:  "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := newRecord()
			for _, k := range tt.order {
				rec.add(k, tt.cells[k])
			}
			assert.Equal(t, tt.want, extractTxnID(rec))
		})
	}
}

func TestParseRejectsInvalidJSON(t *testing.T) {
	_, err := Parse([]byte("not json"), window)
	require.Error(t, err)
}
