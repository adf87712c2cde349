// Package aggregate derives balance, income/expense totals and the expense
// breakdown by category from a snapshot of transactions.
//
// Compute is pure: it performs no I/O and keeps no state, so it is safe to
// run on every refresh and from concurrent requests.
package aggregate

import (
	"fmt"

	"github.com/shopspring/decimal"

	"pocketledger/internal/models"
)

// CategoryTotal is the summed expense amount for one category.
type CategoryTotal struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

// MalformedRecordError describes a record that was left out of every sum.
type MalformedRecordError struct {
	TransactionID string `json:"transaction_id"`
	Reason        string `json:"reason"`
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed transaction %s: %s", e.TransactionID, e.Reason)
}

// Summary is the derived view of a transaction list. It is never persisted.
type Summary struct {
	TotalIncome   decimal.Decimal         `json:"total_income"`
	TotalExpenses decimal.Decimal         `json:"total_expenses"`
	Balance       decimal.Decimal         `json:"balance"`
	Categories    []CategoryTotal         `json:"categories"`
	Malformed     []*MalformedRecordError `json:"malformed,omitempty"`
}

// CategoryTotal returns the expense total for category and whether the
// category appeared among the expense records.
func (s Summary) CategoryTotal(category string) (decimal.Decimal, bool) {
	for _, c := range s.Categories {
		if c.Category == category {
			return c.Amount, true
		}
	}
	return decimal.Zero, false
}

// Compute folds txs into a Summary. Categories are listed in the order they
// are first seen among expense records. Records with a missing or negative
// amount, or an unknown type, are reported in Malformed instead of being
// counted as zero.
func Compute(txs []models.Transaction) Summary {
	s := Summary{
		TotalIncome:   decimal.Zero,
		TotalExpenses: decimal.Zero,
		Categories:    []CategoryTotal{},
	}
	index := make(map[string]int)

	for i := range txs {
		tx := &txs[i]

		amount, err := checkRecord(tx)
		if err != nil {
			s.Malformed = append(s.Malformed, err)
			continue
		}

		if tx.IsIncome() {
			s.TotalIncome = s.TotalIncome.Add(amount)
			continue
		}

		s.TotalExpenses = s.TotalExpenses.Add(amount)
		pos, seen := index[tx.Category]
		if !seen {
			pos = len(s.Categories)
			index[tx.Category] = pos
			s.Categories = append(s.Categories, CategoryTotal{Category: tx.Category, Amount: decimal.Zero})
		}
		s.Categories[pos].Amount = s.Categories[pos].Amount.Add(amount)
	}

	s.Balance = s.TotalIncome.Sub(s.TotalExpenses)
	return s
}

func checkRecord(tx *models.Transaction) (decimal.Decimal, *MalformedRecordError) {
	if !tx.Type.Valid() {
		return decimal.Zero, &MalformedRecordError{TransactionID: tx.ID, Reason: fmt.Sprintf("unknown type %q", tx.Type)}
	}
	if !tx.Amount.Valid {
		return decimal.Zero, &MalformedRecordError{TransactionID: tx.ID, Reason: "missing amount"}
	}
	if tx.Amount.Decimal.IsNegative() {
		return decimal.Zero, &MalformedRecordError{TransactionID: tx.ID, Reason: "negative amount " + tx.Amount.Decimal.String()}
	}
	return tx.Amount.Decimal, nil
}
