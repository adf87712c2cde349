// Package alert decides when spending has breached the session budget and
// keeps track of which breach the user has already been told about.
package alert

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Key identifies the budget alert towards the notification layer.
const Key = "budgetAlert"

// Kind is the outcome of a budget evaluation.
type Kind int

const (
	None Kind = iota
	Breach
)

func (k Kind) String() string {
	if k == Breach {
		return "breach"
	}
	return "none"
}

// Decision is the result of Evaluate. Expenses and Budget are only
// meaningful for a Breach.
type Decision struct {
	Kind     Kind
	Expenses decimal.Decimal
	Budget   decimal.Decimal
}

// Evaluate compares total expenses against the budget. A budget of zero or
// less disables alerting; otherwise expenses strictly above the budget are a
// breach.
func Evaluate(budget, totalExpenses decimal.Decimal) Decision {
	if !budget.IsPositive() {
		return Decision{Kind: None}
	}
	if totalExpenses.GreaterThan(budget) {
		return Decision{Kind: Breach, Expenses: totalExpenses, Budget: budget}
	}
	return Decision{Kind: None}
}

// IsBreach reports whether d is a breach.
func (d Decision) IsBreach() bool { return d.Kind == Breach }

// Message is the user-facing warning for a breach.
func (d Decision) Message() string {
	if !d.IsBreach() {
		return ""
	}
	return fmt.Sprintf("Budget Alert: Expenses ($%s) exceed your budget of $%s!",
		d.Expenses.StringFixed(2), d.Budget.StringFixed(2))
}

// fingerprint identifies the numbers behind a breach. Decimal values are
// compared by value so 150 and 150.00 are the same breach.
type fingerprint struct {
	expenses decimal.Decimal
	budget   decimal.Decimal
}

func (f fingerprint) equal(o fingerprint) bool {
	return f.expenses.Equal(o.expenses) && f.budget.Equal(o.budget)
}
