package usecase

import (
	"strings"

	"qbo-backend/internal/ledger/domain"
)

type mappingRule struct {
	category        string
	types           []string
	classifications []string
	keywords        []string
}

var expenseTypes = []string{"expense", "other expense"}

var mappingRules = []mappingRule{
	{"Income", []string{"income", "other income"}, []string{"revenue"}, []string{"sales", "revenue", "income"}},
	{"COGS", []string{"cost of goods sold"}, []string{"expense"}, []string{"cogs", "cost of goods", "inventory"}},
	{"Payroll", expenseTypes, []string{"expense"}, []string{"payroll", "salary", "wages"}},
	{"Rent", expenseTypes, []string{"expense"}, []string{"rent", "lease"}},
	{"Utilities", expenseTypes, []string{"expense"}, []string{"utilities", "utility", "electric", "water", "gas", "internet"}},
	{"Marketing", expenseTypes, []string{"expense"}, []string{"marketing", "advertising", "ads"}},
	{"Travel", expenseTypes, []string{"expense"}, []string{"travel", "meals", "entertainment", "lodging"}},
	{"Software", expenseTypes, []string{"expense"}, []string{"software", "subscription", "saas"}},
	{"Insurance", expenseTypes, []string{"expense"}, []string{"insurance"}},
	{"Repairs", expenseTypes, []string{"expense"}, []string{"repair", "maintenance"}},
	{"Bank Fees", expenseTypes, []string{"expense"}, []string{"bank", "fee", "service charge", "merchant"}},
	{"Taxes", expenseTypes, []string{"expense"}, []string{"tax"}},
	{"Other", expenseTypes, []string{"expense"}, nil},
}

func ruleFor(category string) (mappingRule, bool) {
	for _, r := range mappingRules {
		if strings.EqualFold(r.category, category) {
			return r, true
		}
	}
	return mappingRule{}, false
}

func containsValue(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}

// scoreAccount rates how well an account fits a rule: type +4,
// classification +2, first keyword in name or subtype +5, inactive -2.
func scoreAccount(a *domain.Account, rule mappingRule) int {
	score := 0
	name := strings.ToLower(a.Name)
	subtype := strings.ToLower(a.AccountSubType)

	if a.Active != nil && !*a.Active {
		score -= 2
	}
	if containsValue(rule.types, strings.ToLower(a.AccountType)) {
		score += 4
	}
	if containsValue(rule.classifications, strings.ToLower(a.Classification)) {
		score += 2
	}
	for _, k := range rule.keywords {
		if strings.Contains(name, k) || strings.Contains(subtype, k) {
			score += 5
			break
		}
	}
	return score
}
