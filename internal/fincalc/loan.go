// Package fincalc implements the stateless financial calculators that ship
// alongside the position ledger: loan amortization, compound-interest
// projection, budget flow, and allocation rebalancing.
//
// None of these share state or invariants with the ledger — each is a pure
// function of its inputs.
//
// All monetary values use shopspring/decimal — never float64 for money.
// Internal transcendental math (compounding powers) uses float64, with
// results immediately converted back to decimal.
package fincalc

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidPrincipal is returned when a principal amount is not positive.
	ErrInvalidPrincipal = errors.New("fincalc: principal must be positive")

	// ErrInvalidRate is returned when an interest rate is negative.
	ErrInvalidRate = errors.New("fincalc: rate must be non-negative")

	// ErrInvalidTerm is returned when a term has no periods.
	ErrInvalidTerm = errors.New("fincalc: term must cover at least one period")

	// MoneyScale is the number of decimal places for money rounding.
	MoneyScale int32 = 2
)

// Installment is one month of an amortization schedule.
type Installment struct {
	Month     int             `json:"month"`
	Payment   decimal.Decimal `json:"payment"`
	Principal decimal.Decimal `json:"principal"`
	Interest  decimal.Decimal `json:"interest"`
	Remaining decimal.Decimal `json:"remaining"`
}

// MonthlyPayment computes the fixed monthly payment of an annuity loan:
//
//	payment = P * r / (1 - (1+r)^-n)
//
// where r is the monthly rate and n the number of months. A zero rate
// degrades to straight principal division.
func MonthlyPayment(principal, annualRatePct decimal.Decimal, months int) (decimal.Decimal, error) {
	if !principal.IsPositive() {
		return decimal.Zero, ErrInvalidPrincipal
	}
	if annualRatePct.IsNegative() {
		return decimal.Zero, ErrInvalidRate
	}
	if months < 1 {
		return decimal.Zero, ErrInvalidTerm
	}

	if annualRatePct.IsZero() {
		return principal.Div(decimal.NewFromInt(int64(months))).Round(MoneyScale), nil
	}

	p := principal.InexactFloat64()
	r := annualRatePct.InexactFloat64() / 100 / 12
	n := float64(months)

	payment := p * r / (1 - math.Pow(1+r, -n))
	return decimal.NewFromFloat(payment).Round(MoneyScale), nil
}

// AmortizationSchedule computes the full month-by-month breakdown of an
// annuity loan. Each installment splits the fixed payment into interest on
// the remaining balance and principal repayment; the final installment is
// adjusted so the balance lands exactly on zero despite rounding.
func AmortizationSchedule(principal, annualRatePct decimal.Decimal, months int) ([]Installment, error) {
	payment, err := MonthlyPayment(principal, annualRatePct, months)
	if err != nil {
		return nil, err
	}

	monthlyRate := annualRatePct.Div(decimal.NewFromInt(1200))
	remaining := principal
	schedule := make([]Installment, 0, months)

	for month := 1; month <= months; month++ {
		interest := remaining.Mul(monthlyRate).Round(MoneyScale)
		principalPart := payment.Sub(interest)

		if month == months || principalPart.GreaterThan(remaining) {
			// Final installment clears the balance exactly.
			principalPart = remaining
			payment = principalPart.Add(interest)
		}

		remaining = remaining.Sub(principalPart)
		schedule = append(schedule, Installment{
			Month:     month,
			Payment:   payment,
			Principal: principalPart,
			Interest:  interest,
			Remaining: remaining,
		})

		if remaining.IsZero() {
			break
		}
	}

	return schedule, nil
}

// TotalInterest sums the interest column of a schedule.
func TotalInterest(schedule []Installment) decimal.Decimal {
	total := decimal.Zero
	for _, in := range schedule {
		total = total.Add(in.Interest)
	}
	return total
}
