package usecase

import (
	"encoding/json"
	"fmt"
	"time"

	"qbo-backend/internal/ledger/domain"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type qboRef struct {
	Value string `json:"value"`
	Name  string `json:"name"`
}

type qboCustomer struct {
	ID                 string `json:"Id"`
	DisplayName        string `json:"DisplayName"`
	FullyQualifiedName string `json:"FullyQualifiedName"`
	Active             *bool  `json:"Active"`
	MetaData           struct {
		LastUpdatedTime string `json:"LastUpdatedTime"`
	} `json:"MetaData"`
}

type qboPayment struct {
	ID          string           `json:"Id"`
	TxnDate     string           `json:"TxnDate"`
	TotalAmt    *decimal.Decimal `json:"TotalAmt"`
	CustomerRef *qboRef          `json:"CustomerRef"`
}

type qboJournalEntry struct {
	ID       string           `json:"Id"`
	TxnDate  string           `json:"TxnDate"`
	TotalAmt *decimal.Decimal `json:"TotalAmt"`
	Line     []struct {
		Amount                 *decimal.Decimal `json:"Amount"`
		JournalEntryLineDetail *struct {
			PostingType string `json:"PostingType"`
		} `json:"JournalEntryLineDetail"`
	} `json:"Line"`
}

type qboAccount struct {
	ID                 string `json:"Id"`
	Name               string `json:"Name"`
	FullyQualifiedName string `json:"FullyQualifiedName"`
	AccountType        string `json:"AccountType"`
	AccountSubType     string `json:"AccountSubType"`
	Classification     string `json:"Classification"`
	Active             *bool  `json:"Active"`
}

func parseTxnDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil
	}
	return &t
}

func parseTimestamp(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	t = t.UTC()
	return &t
}

func decimalPtrToFloat(d *decimal.Decimal) *float64 {
	if d == nil {
		return nil
	}
	f := d.InexactFloat64()
	return &f
}

func mapCustomers(items []json.RawMessage) ([]*domain.Customer, error) {
	out := make([]*domain.Customer, 0, len(items))
	for _, raw := range items {
		var c qboCustomer
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, fmt.Errorf("decode customer: %w", err)
		}
		if c.ID == "" {
			continue
		}
		name := c.DisplayName
		if name == "" {
			name = c.FullyQualifiedName
		}
		out = append(out, &domain.Customer{
			QboID:           c.ID,
			DisplayName:     name,
			Active:          c.Active,
			LastUpdatedTime: parseTimestamp(c.MetaData.LastUpdatedTime),
			Raw:             datatypes.JSON(raw),
		})
	}
	return out, nil
}

func mapPayments(items []json.RawMessage) ([]*domain.Payment, error) {
	out := make([]*domain.Payment, 0, len(items))
	for _, raw := range items {
		var p qboPayment
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode payment: %w", err)
		}
		if p.ID == "" {
			continue
		}
		payment := &domain.Payment{
			QboID:    p.ID,
			TxnDate:  parseTxnDate(p.TxnDate),
			TotalAmt: decimalPtrToFloat(p.TotalAmt),
			Raw:      datatypes.JSON(raw),
		}
		if p.CustomerRef != nil {
			payment.CustomerRef = p.CustomerRef.Value
		}
		out = append(out, payment)
	}
	return out, nil
}

// journalTotals sums line amounts by posting type.
func journalTotals(e *qboJournalEntry) (debit, credit decimal.Decimal) {
	for _, line := range e.Line {
		if line.JournalEntryLineDetail == nil || line.Amount == nil {
			continue
		}
		switch line.JournalEntryLineDetail.PostingType {
		case "Debit":
			debit = debit.Add(*line.Amount)
		case "Credit":
			credit = credit.Add(*line.Amount)
		}
	}
	return debit, credit
}

func mapJournalEntries(items []json.RawMessage) ([]*domain.JournalEntry, error) {
	out := make([]*domain.JournalEntry, 0, len(items))
	for _, raw := range items {
		var e qboJournalEntry
		if err := json.Unmarshal(raw, &e); err != nil {
			return nil, fmt.Errorf("decode journal entry: %w", err)
		}
		if e.ID == "" {
			continue
		}
		debit, credit := journalTotals(&e)
		out = append(out, &domain.JournalEntry{
			QboID:       e.ID,
			TxnDate:     parseTxnDate(e.TxnDate),
			TotalAmt:    decimalPtrToFloat(e.TotalAmt),
			TotalDebit:  debit.InexactFloat64(),
			TotalCredit: credit.InexactFloat64(),
			Raw:         datatypes.JSON(raw),
		})
	}
	return out, nil
}

func mapAccounts(items []json.RawMessage) ([]*domain.Account, error) {
	out := make([]*domain.Account, 0, len(items))
	for _, raw := range items {
		var a qboAccount
		if err := json.Unmarshal(raw, &a); err != nil {
			return nil, fmt.Errorf("decode account: %w", err)
		}
		if a.ID == "" {
			continue
		}
		out = append(out, &domain.Account{
			QboID:              a.ID,
			Name:               a.Name,
			FullyQualifiedName: a.FullyQualifiedName,
			AccountType:        a.AccountType,
			AccountSubType:     a.AccountSubType,
			Classification:     a.Classification,
			Active:             a.Active,
			Raw:                datatypes.JSON(raw),
		})
	}
	return out, nil
}
