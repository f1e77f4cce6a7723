package fincalc

import (
	"errors"
	"sort"

	"github.com/shopspring/decimal"
)

var (
	// ErrTargetSum is returned when target weights do not add up to 100%.
	ErrTargetSum = errors.New("fincalc: target weights must sum to 100")

	// ErrNegativeHolding is returned when a current holding value is negative.
	ErrNegativeHolding = errors.New("fincalc: holding values must be non-negative")
)

// Rebalancer suggests buy/sell amounts that bring a set of holdings back to
// a target allocation. Tolerance is a band in percentage points: asset
// classes whose current weight is within tolerance of their target get no
// suggestion.
type Rebalancer struct {
	Tolerance decimal.Decimal
}

// NewRebalancer creates a rebalancer with the given tolerance band.
func NewRebalancer(tolerance decimal.Decimal) *Rebalancer {
	if tolerance.IsNegative() {
		tolerance = decimal.Zero
	}
	return &Rebalancer{Tolerance: tolerance}
}

// Adjustment is one suggested trade for an asset class.
type Adjustment struct {
	Label         string          `json:"label"`
	CurrentWeight decimal.Decimal `json:"currentWeight"` // percent
	TargetWeight  decimal.Decimal `json:"targetWeight"`  // percent
	Delta         decimal.Decimal `json:"delta"`         // +buy / -sell, money
}

// Suggest compares current values per asset class against target weights
// (percent, summing to 100) and returns the adjustments outside the
// tolerance band, sorted by label for deterministic output. The sum of all
// returned and suppressed deltas is zero: rebalancing moves money, it does
// not create it.
func (r *Rebalancer) Suggest(values map[string]decimal.Decimal, targets map[string]decimal.Decimal) ([]Adjustment, error) {
	hundred := decimal.NewFromInt(100)

	targetSum := decimal.Zero
	for _, t := range targets {
		targetSum = targetSum.Add(t)
	}
	if !targetSum.Equal(hundred) {
		return nil, ErrTargetSum
	}

	total := decimal.Zero
	for _, v := range values {
		if v.IsNegative() {
			return nil, ErrNegativeHolding
		}
		total = total.Add(v)
	}
	if total.IsZero() {
		return nil, nil
	}

	labels := make([]string, 0, len(targets))
	for label := range targets {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	var adjustments []Adjustment
	for _, label := range labels {
		current := values[label]
		currentWeight := current.Div(total).Mul(hundred).Round(MoneyScale)
		targetWeight := targets[label]

		if currentWeight.Sub(targetWeight).Abs().LessThanOrEqual(r.Tolerance) {
			continue
		}

		wanted := total.Mul(targetWeight).Div(hundred).Round(MoneyScale)
		adjustments = append(adjustments, Adjustment{
			Label:         label,
			CurrentWeight: currentWeight,
			TargetWeight:  targetWeight,
			Delta:         wanted.Sub(current).Round(MoneyScale),
		})
	}

	return adjustments, nil
}
