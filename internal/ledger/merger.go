package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MVdu13/finsyamvp-sub000/internal/model"
)

// CostScale is the number of decimal places the weighted-average unit cost is
// rounded to. Value is then recomputed from the rounded unit cost, so the
// stored value can drift from the exact cumulative sum by fractions of a cent.
// That chained rounding is the documented behavior, not a bug to correct.
var CostScale int32 = 2

// Incoming describes one lot to fold into an existing position.
type Incoming struct {
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	Direction model.Direction
}

// Merge folds an incoming lot into an existing position and returns the new
// position value. The argument is never mutated — the ledger is responsible
// for replacing the stored entry.
//
// Buys recompute the quantity-weighted average unit cost:
//
//	newUnitCost = (oldQty*oldUnitCost + lotQty*lotPrice) / (oldQty + lotQty)
//
// Sells reduce the quantity and leave the unit cost untouched (average-cost
// basis does not change on disposal). Either way the lot is appended to a
// copy of the transaction history and value is recomputed from the surviving
// quantity and unit cost.
func Merge(existing model.Position, in Incoming, now time.Time) (model.Position, error) {
	if !in.Quantity.IsPositive() {
		return model.Position{}, ErrInvalidQuantity
	}
	if in.UnitPrice.IsNegative() {
		return model.Position{}, ErrValidation
	}

	merged := existing.Clone()

	switch in.Direction {
	case model.Buy:
		newQuantity := existing.Quantity.Add(in.Quantity)
		if newQuantity.IsZero() {
			return model.Position{}, ErrDivisionByZero
		}
		costBasis := existing.Quantity.Mul(existing.UnitCost).
			Add(in.Quantity.Mul(in.UnitPrice))
		merged.Quantity = newQuantity
		merged.UnitCost = costBasis.Div(newQuantity).Round(CostScale)
		merged.Value = newQuantity.Mul(merged.UnitCost)

	case model.Sell:
		newQuantity := existing.Quantity.Sub(in.Quantity)
		if newQuantity.IsNegative() {
			return model.Position{}, ErrInsufficientQuantity
		}
		merged.Quantity = newQuantity
		merged.Value = newQuantity.Mul(existing.UnitCost)

	default:
		return model.Position{}, ErrValidation
	}

	merged.Transactions = append(merged.Transactions, model.Lot{
		ID:        uuid.New().String(),
		Date:      now,
		Direction: in.Direction,
		Quantity:  in.Quantity,
		UnitPrice: in.UnitPrice,
		Total:     in.Quantity.Mul(in.UnitPrice),
	})
	merged.UpdatedAt = now

	return merged, nil
}
