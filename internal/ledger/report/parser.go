package report

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"qbo-backend/internal/ledger/domain"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

var dateLayouts = []string{"2006-01-02", "01/02/2006", "1/2/2006", time.RFC3339}

// Parse flattens a TransactionList report into rows for the given window.
// Cell-level problems never fail the parse; only an undecodable payload does.
func Parse(payload []byte, window domain.ReportWindow) ([]*domain.TransactionListRow, error) {
	var p Payload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("failed to decode report: %w", err)
	}
	return ParsePayload(&p, window), nil
}

// ParsePayload is Parse for an already decoded report.
func ParsePayload(p *Payload, window domain.ReportWindow) []*domain.TransactionListRow {
	keys := columnKeys(p.Columns.Column)

	var rows []*domain.TransactionListRow
	var walk func(row Row)
	walk = func(row Row) {
		if row.HasCells() {
			rows = append(rows, buildRow(row, keys, window))
		}
		if row.HasChildren() {
			for _, child := range row.Rows.Row {
				walk(child)
			}
		}
	}
	for _, row := range p.Rows.Row {
		walk(row)
	}
	return rows
}

// columnKeys names each column by its title. When no column has a title the
// fixed positional order is used instead.
func columnKeys(columns []Column) []string {
	titled := false
	for _, c := range columns {
		if strings.TrimSpace(c.ColTitle) != "" {
			titled = true
			break
		}
	}

	keys := make([]string, len(columns))
	for i, c := range columns {
		switch {
		case titled && strings.TrimSpace(c.ColTitle) != "":
			keys[i] = c.ColTitle
		case metaValue(c, "ColKey") != "":
			keys[i] = metaValue(c, "ColKey")
		default:
			keys[i] = positionalKey(i)
		}
	}
	return keys
}

func metaValue(c Column, name string) string {
	for _, m := range c.MetaData {
		if strings.EqualFold(m.Name, name) {
			return m.Value
		}
	}
	return ""
}

func positionalKey(i int) string {
	if i < len(positionalFields) {
		return positionalFields[i]
	}
	return "col_" + strconv.Itoa(i)
}

func buildRow(row Row, keys []string, window domain.ReportWindow) *domain.TransactionListRow {
	rec := newRecord()
	for i, cell := range row.ColData {
		key := ""
		if i < len(keys) {
			key = keys[i]
		}
		if key == "" {
			key = positionalKey(i)
		}
		rec.add(key, cell)
	}

	out := &domain.TransactionListRow{
		ReportStartDate: window.Start,
		ReportEndDate:   window.End,
		TxnDate:         ParseDate(rec.field(FieldDate)),
		TxnType:         rec.field(FieldType),
		DocNum:          rec.field(FieldDocNum),
		Name:            rec.field(FieldName),
		Account:         rec.field(FieldAccount),
		ClassName:       rec.field(FieldClass),
		Memo:            rec.field(FieldMemo),
		Amount:          ParseAmount(rec.field(FieldAmount)),
	}
	if id := extractTxnID(rec); id != "" {
		out.TxnID = &id
	}

	raw, err := json.Marshal(map[string]interface{}{
		"type":    row.Type,
		"ColData": row.ColData,
		"values":  rec.values(),
	})
	if err == nil {
		out.Raw = datatypes.JSON(raw)
	}
	return out
}

// ParseAmount reads a report money cell. Currency symbols, thousands
// separators and whitespace are ignored; parentheses mean negative.
// Unparseable input yields nil.
func ParseAmount(s string) *float64 {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r == ',' || unicode.IsSpace(r) || r == '$' || r == '€' || r == '£' || r == '¥':
		default:
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return nil
	}

	negative := false
	if strings.HasPrefix(cleaned, "(") && strings.HasSuffix(cleaned, ")") {
		negative = true
		cleaned = cleaned[1 : len(cleaned)-1]
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return nil
	}
	if negative {
		d = d.Neg()
	}
	f := d.InexactFloat64()
	return &f
}

// ParseDate reads a report date cell as a UTC date; nil when unparseable.
func ParseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}
