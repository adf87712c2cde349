package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType represents the type of transaction
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// Valid reports whether t is one of the supported transaction types.
func (t TransactionType) Valid() bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

// AmountScale is the number of fractional digits the amount column keeps.
const AmountScale = 2

// amountLimit is the first value numeric(14,2) cannot hold.
var amountLimit = decimal.New(1, 12)

// ValidAmount reports whether d is non-negative and fits the amount column
// exactly: at most AmountScale fractional digits and below 10^12.
func ValidAmount(d decimal.Decimal) bool {
	return !d.IsNegative() && d.LessThan(amountLimit) && d.Equal(d.Truncate(AmountScale))
}

// Transaction is one persisted income or expense event. Records are
// immutable once created. Amount, Date and Description may be absent on
// rows that were not written through the API; consumers apply their own
// placeholder for each.
type Transaction struct {
	Base
	UserID      string              `gorm:"type:uuid;not null;index" json:"user_id"`
	Amount      decimal.NullDecimal `gorm:"type:numeric(14,2)" json:"amount"`
	Type        TransactionType     `gorm:"size:16;not null" json:"type"`
	Category    string              `gorm:"size:100" json:"category"`
	Date        *time.Time          `json:"date,omitempty"`
	Description string              `gorm:"size:500" json:"description"`
}

// IsIncome reports whether the transaction adds to the balance.
func (t *Transaction) IsIncome() bool { return t.Type == TransactionTypeIncome }

// IsExpense reports whether the transaction subtracts from the balance.
func (t *Transaction) IsExpense() bool { return t.Type == TransactionTypeExpense }
