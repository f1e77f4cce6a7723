package fincalc

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrInvalidBudget is returned when a budget line fails basic checks.
var ErrInvalidBudget = errors.New("fincalc: invalid budget")

// BudgetLine is one labeled expense.
type BudgetLine struct {
	Label  string          `json:"label"`
	Amount decimal.Decimal `json:"amount"`
}

// BudgetSummary is the monthly cash-flow picture derived from income and
// expense lines.
type BudgetSummary struct {
	Income        decimal.Decimal `json:"income"`
	TotalExpenses decimal.Decimal `json:"totalExpenses"`
	Savings       decimal.Decimal `json:"savings"`     // income - expenses, may be negative
	SavingsRate   decimal.Decimal `json:"savingsRate"` // percent of income, 0 when income is 0
}

// SummarizeBudget folds expense lines against a monthly income.
func SummarizeBudget(income decimal.Decimal, expenses []BudgetLine) (BudgetSummary, error) {
	if income.IsNegative() {
		return BudgetSummary{}, fmt.Errorf("%w: income must be non-negative", ErrInvalidBudget)
	}

	total := decimal.Zero
	for _, line := range expenses {
		if line.Amount.IsNegative() {
			return BudgetSummary{}, fmt.Errorf("%w: expense %q must be non-negative", ErrInvalidBudget, line.Label)
		}
		total = total.Add(line.Amount)
	}

	savings := income.Sub(total)
	rate := decimal.Zero
	if income.IsPositive() {
		rate = savings.Div(income).Mul(decimal.NewFromInt(100)).Round(MoneyScale)
	}

	return BudgetSummary{
		Income:        income,
		TotalExpenses: total,
		Savings:       savings,
		SavingsRate:   rate,
	}, nil
}
