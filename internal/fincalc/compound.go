package fincalc

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned when an initial amount or contribution is negative.
var ErrInvalidAmount = errors.New("fincalc: amount must be non-negative")

// ProjectionPoint is the state of a compound-interest projection at the end
// of one year.
type ProjectionPoint struct {
	Year     int             `json:"year"`
	Invested decimal.Decimal `json:"invested"` // cumulative contributions, no growth
	Value    decimal.Decimal `json:"value"`    // compounded value
}

// CompoundProjection simulates monthly-compounded growth of an initial
// amount plus a fixed monthly contribution, returning one point per year.
// Contributions are applied at the end of each month, after that month's
// growth.
func CompoundProjection(initial, monthlyContribution, annualRatePct decimal.Decimal, years int) ([]ProjectionPoint, error) {
	if initial.IsNegative() || monthlyContribution.IsNegative() {
		return nil, ErrInvalidAmount
	}
	if annualRatePct.IsNegative() {
		return nil, ErrInvalidRate
	}
	if years < 1 {
		return nil, ErrInvalidTerm
	}

	monthlyFactor := decimal.NewFromInt(1).Add(annualRatePct.Div(decimal.NewFromInt(1200)))
	value := initial
	invested := initial
	points := make([]ProjectionPoint, 0, years)

	for year := 1; year <= years; year++ {
		for month := 0; month < 12; month++ {
			// Rounding to 8 places each step keeps the mantissa bounded over
			// long horizons without visible drift at money scale.
			value = value.Mul(monthlyFactor).Round(8)
			value = value.Add(monthlyContribution)
			invested = invested.Add(monthlyContribution)
		}
		points = append(points, ProjectionPoint{
			Year:     year,
			Invested: invested.Round(MoneyScale),
			Value:    value.Round(MoneyScale),
		})
	}

	return points, nil
}

// FutureValue returns only the final compounded value of a projection.
func FutureValue(initial, monthlyContribution, annualRatePct decimal.Decimal, years int) (decimal.Decimal, error) {
	points, err := CompoundProjection(initial, monthlyContribution, annualRatePct, years)
	if err != nil {
		return decimal.Zero, err
	}
	return points[len(points)-1].Value, nil
}
