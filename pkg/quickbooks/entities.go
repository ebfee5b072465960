package quickbooks

import (
	"regexp"
	"strings"
)

// Entity describes how a report transaction type maps onto an API entity.
type Entity struct {
	Endpoint string
	Key      string

	// UpdateSupported is false for types whose update operation the API rejects.
	UpdateSupported bool

	// RequiredRefs must be present on the fetched payload for an update to be accepted.
	RequiredRefs []string
}

var entities = map[string]Entity{
	"bill":              {Endpoint: "bill", Key: "Bill", UpdateSupported: true, RequiredRefs: []string{"VendorRef"}},
	"invoice":           {Endpoint: "invoice", Key: "Invoice", UpdateSupported: true, RequiredRefs: []string{"CustomerRef"}},
	"payment":           {Endpoint: "payment", Key: "Payment", UpdateSupported: false, RequiredRefs: []string{"CustomerRef"}},
	"salesreceipt":      {Endpoint: "salesreceipt", Key: "SalesReceipt", UpdateSupported: true, RequiredRefs: []string{"CustomerRef"}},
	"purchase":          {Endpoint: "purchase", Key: "Purchase", UpdateSupported: true, RequiredRefs: []string{"AccountRef"}},
	"expense":           {Endpoint: "purchase", Key: "Purchase", UpdateSupported: true, RequiredRefs: []string{"AccountRef"}},
	"check":             {Endpoint: "purchase", Key: "Purchase", UpdateSupported: true, RequiredRefs: []string{"AccountRef"}},
	"creditcardexpense": {Endpoint: "purchase", Key: "Purchase", UpdateSupported: true, RequiredRefs: []string{"AccountRef"}},
	"creditcardcredit":  {Endpoint: "purchase", Key: "Purchase", UpdateSupported: true, RequiredRefs: []string{"AccountRef"}},
	"journalentry":      {Endpoint: "journalentry", Key: "JournalEntry", UpdateSupported: true},
	"deposit":           {Endpoint: "deposit", Key: "Deposit", UpdateSupported: true, RequiredRefs: []string{"DepositToAccountRef"}},
	"transfer":          {Endpoint: "transfer", Key: "Transfer", UpdateSupported: false},
	"creditmemo":        {Endpoint: "creditmemo", Key: "CreditMemo", UpdateSupported: true, RequiredRefs: []string{"CustomerRef"}},
	"refundreceipt":     {Endpoint: "refundreceipt", Key: "RefundReceipt", UpdateSupported: true, RequiredRefs: []string{"DepositToAccountRef"}},
	"refund":            {Endpoint: "refundreceipt", Key: "RefundReceipt", UpdateSupported: true, RequiredRefs: []string{"DepositToAccountRef"}},
	"vendorcredit":      {Endpoint: "vendorcredit", Key: "VendorCredit", UpdateSupported: true, RequiredRefs: []string{"VendorRef"}},
	"billpayment":       {Endpoint: "billpayment", Key: "BillPayment", UpdateSupported: false, RequiredRefs: []string{"VendorRef"}},
}

// CarriedRefs are copied unchanged from the fetched entity into a sparse update.
var CarriedRefs = []string{
	"VendorRef",
	"CustomerRef",
	"EntityRef",
	"PayeeRef",
	"AccountRef",
	"APAccountRef",
	"ARAccountRef",
	"DepositToAccountRef",
	"CurrencyRef",
	"ExchangeRate",
	"DepartmentRef",
	"TxnTaxDetail",
	"GlobalTaxCalculation",
	"PaymentType",
	"TxnDate",
}

var (
	parenthetical = regexp.MustCompile(`\([^)]*\)`)
	nonLetters    = regexp.MustCompile(`[^a-z]+`)
)

// NormalizeTxnType lowercases a report transaction type and drops spaces,
// punctuation and parenthesized qualifiers: "Bill Payment (Check)" -> "billpayment".
func NormalizeTxnType(txnType string) string {
	t := strings.ToLower(txnType)
	t = parenthetical.ReplaceAllString(t, "")
	return nonLetters.ReplaceAllString(t, "")
}

// ResolveEntity maps a report transaction type to its API entity.
func ResolveEntity(txnType string) (Entity, bool) {
	e, ok := entities[NormalizeTxnType(txnType)]
	return e, ok
}
