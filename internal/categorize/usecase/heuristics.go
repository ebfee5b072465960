package usecase

import (
	"regexp"
	"strings"
)

// CategoryOther is the catch-all category.
const CategoryOther = "Other"

type keywordRule struct {
	pattern  *regexp.Regexp
	category string
}

// keywordRules match the counterparty name, first match wins.
var keywordRules = []keywordRule{
	{regexp.MustCompile(`(?i)(payroll|salary|gusto|paychex|adp)`), "Payroll"},
	{regexp.MustCompile(`(?i)(rent|lease)`), "Rent"},
	{regexp.MustCompile(`(?i)(electric|gas|water|utility|utilities|internet|comcast|verizon|at&t)`), "Utilities"},
	{regexp.MustCompile(`(?i)(marketing|ads|adwords|facebook|google ads|linkedin)`), "Marketing"},
	{regexp.MustCompile(`(?i)(uber|lyft|airlines|airbnb|hotel|travel|expedia)`), "Travel"},
	{regexp.MustCompile(`(?i)(software|saas|aws|azure|gcp|github|gitlab|slack|notion|zoom)`), "Software"},
	{regexp.MustCompile(`(?i)(insurance)`), "Insurance"},
	{regexp.MustCompile(`(?i)(repair|maintenance)`), "Repairs"},
	{regexp.MustCompile(`(?i)(bank fee|fee|service charge)`), "Bank Fees"},
	{regexp.MustCompile(`(?i)(tax|irs|vat)`), "Taxes"},
	{regexp.MustCompile(`(?i)(inventory|cogs|cost of goods)`), "COGS"},
}

var incomeTypes = regexp.MustCompile(`(?i)(invoice|salesreceipt|sales receipt|payment|deposit)`)

// NormalizeCategory returns the allowed spelling of category, or Other.
func NormalizeCategory(category string, allowed []string) string {
	if c, ok := matchAllowed(category, allowed); ok {
		return c
	}
	return CategoryOther
}

func matchAllowed(category string, allowed []string) (string, bool) {
	category = strings.TrimSpace(category)
	for _, a := range allowed {
		if strings.EqualFold(a, category) {
			return a, true
		}
	}
	return "", false
}

// HeuristicCategory picks a category from the counterparty name, falling back
// to Income for sales-like transaction types and Other otherwise.
func HeuristicCategory(name, txnType string, allowed []string) string {
	for _, rule := range keywordRules {
		if rule.pattern.MatchString(name) {
			return NormalizeCategory(rule.category, allowed)
		}
	}
	if incomeTypes.MatchString(txnType) {
		return NormalizeCategory("Income", allowed)
	}
	return NormalizeCategory(CategoryOther, allowed)
}
