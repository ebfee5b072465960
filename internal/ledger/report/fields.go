package report

import (
	"net/url"
	"strings"
)

// Field names produced by the parser.
const (
	FieldDate    = "date"
	FieldType    = "type"
	FieldDocNum  = "doc_num"
	FieldName    = "name"
	FieldAccount = "account"
	FieldAmount  = "amount"
	FieldClass   = "class"
	FieldMemo    = "memo"
)

// positionalFields is the column order assumed when the report has no titles.
var positionalFields = []string{FieldDate, FieldType, FieldDocNum, FieldName, FieldAccount, FieldAmount, FieldClass}

// fieldAlias lists the keys tried for one field: exact keys first, in order,
// then any key containing one of the fragments.
type fieldAlias struct {
	exact     []string
	fragments []string
}

var fieldAliases = map[string]fieldAlias{
	FieldDate: {
		exact:     []string{"date", "txn date", "transaction date", "tx_date"},
		fragments: []string{"date"},
	},
	FieldType: {
		exact: []string{"transaction type", "txn type", "txn_type", "type"},
	},
	FieldDocNum: {
		exact: []string{"num", "doc num", "doc_num", "no.", "ref no."},
	},
	FieldName: {
		exact: []string{"name", "customer", "vendor", "payee"},
	},
	FieldAccount: {
		exact:     []string{"account", "account name", "account_name"},
		fragments: []string{"account"},
	},
	FieldAmount: {
		exact:     []string{"amount", "total", "subt_nat_amount"},
		fragments: []string{"amount", "total", "credit", "debit", "debt"},
	},
	FieldClass: {
		exact:     []string{"class", "klass_name"},
		fragments: []string{"class"},
	},
	FieldMemo: {
		exact: []string{"memo/description", "memo", "description"},
	},
}

var typeLikeKeys = []string{"transaction type", "txn type", "txn_type", "type"}

var idLikeKeys = []string{"txn id", "txn_id", "txnid", "transaction id", "id"}

// record is one flattened row: cells keyed by lower-cased column key, in column order.
type record struct {
	keys  []string
	cells map[string]Cell
}

func newRecord() *record {
	return &record{cells: make(map[string]Cell)}
}

func (r *record) add(key string, cell Cell) {
	key = strings.ToLower(strings.TrimSpace(key))
	if _, ok := r.cells[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.cells[key] = cell
}

func (r *record) lookup(key string) (Cell, bool) {
	c, ok := r.cells[key]
	return c, ok
}

// field resolves a field through its alias table. Empty values do not match.
func (r *record) field(name string) string {
	alias := fieldAliases[name]
	for _, key := range alias.exact {
		if c, ok := r.lookup(key); ok && strings.TrimSpace(c.Value) != "" {
			return strings.TrimSpace(c.Value)
		}
	}
	for _, fragment := range alias.fragments {
		for _, key := range r.keys {
			if !strings.Contains(key, fragment) {
				continue
			}
			if v := strings.TrimSpace(r.cells[key].Value); v != "" {
				return v
			}
		}
	}
	return ""
}

// values returns the record as a plain key/value map for the raw payload.
func (r *record) values() map[string]string {
	out := make(map[string]string, len(r.keys))
	for _, k := range r.keys {
		out[k] = r.cells[k].Value
	}
	return out
}

// idExtractor returns a transaction id or "".
type idExtractor func(r *record) string

// txnIDExtractors run in priority order; the first non-empty result wins.
var txnIDExtractors = []idExtractor{
	idFromTypeCell,
	idFromFirstCell,
	idFromHref,
	idFromIDColumn,
}

func extractTxnID(r *record) string {
	for _, extract := range txnIDExtractors {
		if id := extract(r); id != "" {
			return id
		}
	}
	return ""
}

func idFromTypeCell(r *record) string {
	for _, key := range typeLikeKeys {
		if c, ok := r.lookup(key); ok && c.ID != "" {
			return c.ID
		}
	}
	return ""
}

func idFromFirstCell(r *record) string {
	for _, key := range r.keys {
		if id := r.cells[key].ID; id != "" {
			return id
		}
	}
	return ""
}

func idFromHref(r *record) string {
	for _, key := range r.keys {
		href := r.cells[key].Href
		if href == "" {
			continue
		}
		u, err := url.Parse(href)
		if err != nil {
			continue
		}
		for param, values := range u.Query() {
			if strings.EqualFold(param, "txnId") && len(values) > 0 && values[0] != "" {
				return values[0]
			}
		}
	}
	return ""
}

func idFromIDColumn(r *record) string {
	for _, key := range idLikeKeys {
		if c, ok := r.lookup(key); ok {
			if v := strings.TrimSpace(c.Value); v != "" {
				return v
			}
		}
	}
	return ""
}
