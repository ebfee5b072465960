package usecase

import (
	"fmt"

	"qbo-backend/pkg/quickbooks"
)

// Line detail types whose account reference can be rewritten.
const (
	DetailAccountBasedExpense = "AccountBasedExpenseLineDetail"
	DetailJournalEntry        = "JournalEntryLineDetail"
)

var accountUpdatableDetails = map[string]bool{
	DetailAccountBasedExpense: true,
	DetailJournalEntry:        true,
}

// Ref is a QuickBooks reference object.
type Ref struct {
	Value string
	Name  string
}

func (r Ref) toMap() map[string]interface{} {
	m := map[string]interface{}{"value": r.Value}
	if r.Name != "" {
		m["name"] = r.Name
	}
	return m
}

func hasUpdatableLines(payload map[string]interface{}) bool {
	lines, _ := payload["Line"].([]interface{})
	for _, l := range lines {
		if line, ok := l.(map[string]interface{}); ok {
			if detailType, _ := line["DetailType"].(string); accountUpdatableDetails[detailType] {
				return true
			}
		}
	}
	return false
}

// rewriteLines returns the update set: only account-updatable lines, each with
// AccountRef (and ClassRef when class is set) replaced. Other lines are left
// out of the update entirely.
func rewriteLines(payload map[string]interface{}, account Ref, class *Ref) []interface{} {
	lines, _ := payload["Line"].([]interface{})

	var out []interface{}
	for _, l := range lines {
		line, ok := l.(map[string]interface{})
		if !ok {
			continue
		}
		detailType, _ := line["DetailType"].(string)
		if !accountUpdatableDetails[detailType] {
			continue
		}

		detail := map[string]interface{}{}
		if existing, ok := line[detailType].(map[string]interface{}); ok {
			for k, v := range existing {
				detail[k] = v
			}
		}
		detail["AccountRef"] = account.toMap()
		if class != nil {
			detail["ClassRef"] = class.toMap()
		}

		updated := map[string]interface{}{
			"DetailType": detailType,
			detailType:   detail,
		}
		for _, key := range []string{"Id", "Amount", "Description", "LineNum"} {
			if v, ok := line[key]; ok {
				updated[key] = v
			}
		}
		out = append(out, updated)
	}
	return out
}

// missingRequiredRef returns the first required reference absent from payload.
func missingRequiredRef(entity quickbooks.Entity, payload map[string]interface{}) string {
	for _, ref := range entity.RequiredRefs {
		if v, ok := payload[ref]; !ok || v == nil {
			return ref
		}
	}
	return ""
}

// buildUpdate assembles the sparse update body from the fetched payload.
func buildUpdate(payload map[string]interface{}, lines []interface{}) (map[string]interface{}, error) {
	id, sync := payload["Id"], payload["SyncToken"]
	if id == nil || sync == nil {
		return nil, fmt.Errorf("missing Id or SyncToken in transaction payload")
	}
	update := map[string]interface{}{
		"Id":        id,
		"SyncToken": sync,
		"Line":      lines,
	}
	for _, key := range quickbooks.CarriedRefs {
		if v, ok := payload[key]; ok && v != nil {
			update[key] = v
		}
	}
	return update, nil
}
