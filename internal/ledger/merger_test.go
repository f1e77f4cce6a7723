package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MVdu13/finsyamvp-sub000/internal/model"
)

// d is a test helper for creating decimals from float64.
func d(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

func equityPosition(qty, unitCost float64, lots int) model.Position {
	p := model.Position{
		ID:          "pos-1",
		Kind:        model.KindEquity,
		DisplayName: "MSFT",
		Quantity:    d(qty),
		UnitCost:    d(unitCost),
		Value:       d(qty).Mul(d(unitCost)),
		CreatedAt:   time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
	}
	for i := 0; i < lots; i++ {
		p.Transactions = append(p.Transactions, model.Lot{
			ID:        "lot",
			Direction: model.Buy,
			Quantity:  d(qty),
			UnitPrice: d(unitCost),
			Total:     d(qty).Mul(d(unitCost)),
		})
	}
	return p
}

func TestMerge_BuyComputesWeightedAverage(t *testing.T) {
	existing := equityPosition(10, 100, 1)

	merged, err := Merge(existing, Incoming{
		Quantity:  d(5),
		UnitPrice: d(130),
		Direction: model.Buy,
	}, time.Now().UTC())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !merged.Quantity.Equal(d(15)) {
		t.Errorf("expected quantity 15, got %s", merged.Quantity)
	}
	if !merged.UnitCost.Equal(d(110)) {
		t.Errorf("expected unit cost 110, got %s", merged.UnitCost)
	}
	if !merged.Value.Equal(d(1650)) {
		t.Errorf("expected value 1650, got %s", merged.Value)
	}
	if len(merged.Transactions) != 2 {
		t.Errorf("expected 2 lots, got %d", len(merged.Transactions))
	}
}

func TestMerge_AppendedLotFields(t *testing.T) {
	existing := equityPosition(10, 100, 1)
	now := time.Now().UTC()

	merged, err := Merge(existing, Incoming{
		Quantity:  d(3),
		UnitPrice: d(50),
		Direction: model.Buy,
	}, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lot := merged.Transactions[len(merged.Transactions)-1]
	if lot.ID == "" {
		t.Error("expected non-empty lot id")
	}
	if !lot.Date.Equal(now) {
		t.Errorf("expected lot date %s, got %s", now, lot.Date)
	}
	if lot.Direction != model.Buy {
		t.Errorf("expected buy lot, got %s", lot.Direction)
	}
	if !lot.Total.Equal(d(150)) {
		t.Errorf("expected lot total 150, got %s", lot.Total)
	}
	if !merged.UpdatedAt.Equal(now) {
		t.Errorf("expected updatedAt %s, got %s", now, merged.UpdatedAt)
	}
}

func TestMerge_DoesNotMutateArgument(t *testing.T) {
	existing := equityPosition(10, 100, 1)

	_, err := Merge(existing, Incoming{
		Quantity:  d(5),
		UnitPrice: d(130),
		Direction: model.Buy,
	}, time.Now().UTC())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !existing.Quantity.Equal(d(10)) {
		t.Errorf("argument quantity mutated: %s", existing.Quantity)
	}
	if !existing.UnitCost.Equal(d(100)) {
		t.Errorf("argument unit cost mutated: %s", existing.UnitCost)
	}
	if len(existing.Transactions) != 1 {
		t.Errorf("argument transaction history mutated: %d lots", len(existing.Transactions))
	}
}

func TestMerge_SellPreservesUnitCost(t *testing.T) {
	existing := equityPosition(10, 100, 1)

	merged, err := Merge(existing, Incoming{
		Quantity:  d(4),
		UnitPrice: d(140),
		Direction: model.Sell,
	}, time.Now().UTC())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !merged.UnitCost.Equal(d(100)) {
		t.Errorf("sell should not change unit cost, got %s", merged.UnitCost)
	}
	if !merged.Quantity.Equal(d(6)) {
		t.Errorf("expected quantity 6, got %s", merged.Quantity)
	}
	if !merged.Value.Equal(d(600)) {
		t.Errorf("expected value 600, got %s", merged.Value)
	}
	if merged.Transactions[len(merged.Transactions)-1].Direction != model.Sell {
		t.Error("expected trailing sell lot")
	}
}

func TestMerge_SellAllToZero(t *testing.T) {
	existing := equityPosition(10, 100, 1)

	merged, err := Merge(existing, Incoming{
		Quantity:  d(10),
		UnitPrice: d(120),
		Direction: model.Sell,
	}, time.Now().UTC())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !merged.Quantity.IsZero() {
		t.Errorf("expected zero quantity, got %s", merged.Quantity)
	}
	if !merged.Value.IsZero() {
		t.Errorf("expected zero value, got %s", merged.Value)
	}
}

func TestMerge_SellBeyondHoldings(t *testing.T) {
	existing := equityPosition(10, 100, 1)

	_, err := Merge(existing, Incoming{
		Quantity:  d(11),
		UnitPrice: d(120),
		Direction: model.Sell,
	}, time.Now().UTC())
	if err != ErrInsufficientQuantity {
		t.Errorf("expected ErrInsufficientQuantity, got %v", err)
	}
}

func TestMerge_RejectsNonPositiveQuantity(t *testing.T) {
	existing := equityPosition(10, 100, 1)

	for _, qty := range []float64{0, -3} {
		_, err := Merge(existing, Incoming{
			Quantity:  d(qty),
			UnitPrice: d(100),
			Direction: model.Buy,
		}, time.Now().UTC())
		if err != ErrInvalidQuantity {
			t.Errorf("qty=%v: expected ErrInvalidQuantity, got %v", qty, err)
		}
	}
}

func TestMerge_RejectsNegativePrice(t *testing.T) {
	existing := equityPosition(10, 100, 1)

	_, err := Merge(existing, Incoming{
		Quantity:  d(1),
		UnitPrice: d(-5),
		Direction: model.Buy,
	}, time.Now().UTC())
	if err == nil {
		t.Fatal("expected error for negative unit price")
	}
}

func TestMerge_ChainedRounding(t *testing.T) {
	// 3 @ 0.3333... the average cost is rounded to CostScale before value is
	// recomputed, so value tracks the rounded cost, not the exact sum.
	existing := equityPosition(0, 0, 0)

	merged, err := Merge(existing, Incoming{
		Quantity:  d(3),
		UnitPrice: decimal.RequireFromString("33.335"),
		Direction: model.Buy,
	}, time.Now().UTC())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !merged.UnitCost.Equal(decimal.RequireFromString("33.34")) {
		t.Errorf("expected rounded unit cost 33.34, got %s", merged.UnitCost)
	}
	if !merged.Value.Equal(decimal.RequireFromString("100.02")) {
		t.Errorf("expected value 100.02 (rounded cost * quantity), got %s", merged.Value)
	}
}
