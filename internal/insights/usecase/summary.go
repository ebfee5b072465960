package usecase

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

const (
	monthLayout      = "2006-01"
	topCustomerLimit = 10
)

func (u *insightsUsecase) Summary() (*Summary, error) {
	counts, err := u.entityRepo.Counts()
	if err != nil {
		return nil, fmt.Errorf("failed to count entities: %w", err)
	}
	totalPayments, err := u.entityRepo.SumPayments()
	if err != nil {
		return nil, fmt.Errorf("failed to sum payments: %w", err)
	}
	points, err := u.entityRepo.PaymentPoints()
	if err != nil {
		return nil, fmt.Errorf("failed to load payments: %w", err)
	}
	journalDates, err := u.entityRepo.JournalEntryDates()
	if err != nil {
		return nil, fmt.Errorf("failed to load journal entries: %w", err)
	}
	topCustomers, err := u.entityRepo.TopCustomers(topCustomerLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load top customers: %w", err)
	}
	breakdown, err := u.rowRepo.TypeBreakdown()
	if err != nil {
		return nil, fmt.Errorf("failed to load transaction types: %w", err)
	}

	monthly := make(map[string]decimal.Decimal)
	for _, p := range points {
		month := p.TxnDate.Format(monthLayout)
		monthly[month] = monthly[month].Add(decimal.NewFromFloat(p.TotalAmt))
	}
	monthlyPayments := make([]MonthlyTotal, 0, len(monthly))
	for _, month := range sortedKeys(monthly) {
		total, _ := monthly[month].Round(2).Float64()
		monthlyPayments = append(monthlyPayments, MonthlyTotal{Month: month, Total: total})
	}

	return &Summary{
		DateRange:                u.dateRange,
		TotalCustomers:           counts.Customers,
		TotalPayments:            totalPayments,
		TotalJournalEntries:      counts.JournalEntries,
		TotalTransactionRows:     counts.TransactionRows,
		MonthlyPayments:          monthlyPayments,
		MonthlyJournalEntries:    countByMonth(journalDates),
		TopCustomers:             nonNil(topCustomers),
		TransactionTypeBreakdown: nonNil(breakdown),
	}, nil
}

func countByMonth(dates []time.Time) []MonthlyCount {
	counts := make(map[string]int64)
	for _, d := range dates {
		counts[d.Format(monthLayout)]++
	}
	out := make([]MonthlyCount, 0, len(counts))
	for _, month := range sortedKeys(counts) {
		out = append(out, MonthlyCount{Month: month, Count: counts[month]})
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
