package holding_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/MVdu13/finsyamvp-sub000/internal/holding"
	"github.com/MVdu13/finsyamvp-sub000/internal/ledger"
	"github.com/MVdu13/finsyamvp-sub000/internal/model"
)

func d(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

// newTestEnv creates a test Service over a fresh ledger with a chi router.
func newTestEnv(t *testing.T) (*ledger.Ledger, chi.Router) {
	t.Helper()
	l := ledger.New()
	svc := holding.NewService(l)
	planner := holding.NewPlanner(d(1))

	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/positions", svc.ListPositions)
		r.Post("/positions", svc.AddPosition)
		r.Get("/positions/total", svc.GetTotalValue)
		r.Get("/positions/{positionID}", svc.GetPosition)
		r.Patch("/positions/{positionID}", svc.UpdatePosition)
		r.Delete("/positions/{positionID}", svc.DeletePosition)
		r.Post("/positions/{positionID}/sell", svc.SellPosition)
		r.Route("/planner", func(r chi.Router) {
			r.Post("/loan", planner.Loan)
			r.Post("/compound", planner.Compound)
			r.Post("/budget", planner.Budget)
			r.Post("/rebalance", planner.Rebalance)
		})
	})

	return l, r
}

func doJSON(t *testing.T, router chi.Router, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(method, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func addEquity(t *testing.T, router chi.Router, name, owner string, qty, price float64) model.Position {
	t.Helper()
	w := doJSON(t, router, "POST", "/api/v1/positions", holding.AddPositionRequest{
		Kind:            "equity",
		DisplayName:     name,
		OwnerAccountRef: owner,
		Quantity:        d(qty),
		UnitPrice:       d(price),
	})
	if w.Code != http.StatusCreated && w.Code != http.StatusOK {
		t.Fatalf("add failed: %d %s", w.Code, w.Body.String())
	}
	var p model.Position
	json.Unmarshal(w.Body.Bytes(), &p)
	return p
}

func TestAddPosition_CreateThenMerge(t *testing.T) {
	_, router := newTestEnv(t)

	first := addEquity(t, router, "MSFT", "pea1", 10, 100)
	if first.ID == "" {
		t.Fatal("expected assigned position id")
	}
	if !first.Value.Equal(d(1000)) {
		t.Errorf("expected value 1000, got %s", first.Value)
	}

	w := doJSON(t, router, "POST", "/api/v1/positions", holding.AddPositionRequest{
		Kind:            "equity",
		DisplayName:     "msft",
		OwnerAccountRef: "pea1",
		Quantity:        d(5),
		UnitPrice:       d(130),
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for merge, got %d: %s", w.Code, w.Body.String())
	}

	var merged model.Position
	json.Unmarshal(w.Body.Bytes(), &merged)
	if merged.ID != first.ID {
		t.Error("merge should reuse the original position id")
	}
	if !merged.Quantity.Equal(d(15)) || !merged.UnitCost.Equal(d(110)) {
		t.Errorf("unexpected merge result: qty=%s cost=%s", merged.Quantity, merged.UnitCost)
	}
	if len(merged.Transactions) != 2 {
		t.Errorf("expected 2 lots, got %d", len(merged.Transactions))
	}
}

func TestAddPosition_Validation(t *testing.T) {
	_, router := newTestEnv(t)

	w := doJSON(t, router, "POST", "/api/v1/positions", holding.AddPositionRequest{
		Kind:        "speedboat",
		DisplayName: "x",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown kind should 400, got %d", w.Code)
	}

	w = doJSON(t, router, "POST", "/api/v1/positions", holding.AddPositionRequest{
		Kind:        "equity",
		DisplayName: "MSFT",
		Quantity:    d(-1),
		UnitPrice:   d(100),
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("negative quantity should 400, got %d", w.Code)
	}

	w = doJSON(t, router, "GET", "/api/v1/positions", nil)
	var snap []model.Position
	json.Unmarshal(w.Body.Bytes(), &snap)
	if len(snap) != 0 {
		t.Errorf("rejected adds must not mutate the ledger, got %d positions", len(snap))
	}
}

func TestSellPosition(t *testing.T) {
	_, router := newTestEnv(t)
	p := addEquity(t, router, "ETH", "", 2, 1500)

	w := doJSON(t, router, "POST", "/api/v1/positions/"+p.ID+"/sell", holding.SellPositionRequest{
		Quantity:  d(0.5),
		UnitPrice: d(2400),
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var sold model.Position
	json.Unmarshal(w.Body.Bytes(), &sold)
	if !sold.Quantity.Equal(d(1.5)) || !sold.UnitCost.Equal(d(1500)) {
		t.Errorf("unexpected position after sell: qty=%s cost=%s", sold.Quantity, sold.UnitCost)
	}

	w = doJSON(t, router, "POST", "/api/v1/positions/"+p.ID+"/sell", holding.SellPositionRequest{
		Quantity:  d(10),
		UnitPrice: d(2400),
	})
	if w.Code != http.StatusConflict {
		t.Errorf("overselling should 409, got %d", w.Code)
	}

	w = doJSON(t, router, "POST", "/api/v1/positions/missing/sell", holding.SellPositionRequest{
		Quantity:  d(1),
		UnitPrice: d(1),
	})
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown id should 404, got %d", w.Code)
	}
}

func TestUpdateAndDeletePosition(t *testing.T) {
	l, router := newTestEnv(t)
	p := addEquity(t, router, "MSFT", "", 10, 100)

	name := "Microsoft"
	w := doJSON(t, router, "PATCH", "/api/v1/positions/"+p.ID, holding.UpdatePositionRequest{
		DisplayName: &name,
	})
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if l.Snapshot()[0].DisplayName != "Microsoft" {
		t.Error("update not applied")
	}

	// Unknown ids stay permissive no-ops.
	w = doJSON(t, router, "PATCH", "/api/v1/positions/missing", holding.UpdatePositionRequest{DisplayName: &name})
	if w.Code != http.StatusNoContent {
		t.Errorf("unknown-id update should still 204, got %d", w.Code)
	}

	// A negative value write is rejected and leaves the position untouched.
	bad := d(-500)
	w = doJSON(t, router, "PATCH", "/api/v1/positions/"+p.ID, holding.UpdatePositionRequest{Value: &bad})
	if w.Code != http.StatusBadRequest {
		t.Errorf("negative value should 400, got %d", w.Code)
	}
	if !l.Snapshot()[0].Value.Equal(d(1000)) {
		t.Errorf("rejected update mutated value: %s", l.Snapshot()[0].Value)
	}

	// Value on a mergeable kind is lot-derived and not editable.
	v := d(9999)
	w = doJSON(t, router, "PATCH", "/api/v1/positions/"+p.ID, holding.UpdatePositionRequest{Value: &v})
	if w.Code != http.StatusBadRequest {
		t.Errorf("equity value write should 400, got %d", w.Code)
	}

	w = doJSON(t, router, "DELETE", "/api/v1/positions/"+p.ID, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if len(l.Snapshot()) != 0 {
		t.Error("delete not applied")
	}
}

func TestGetTotalValue(t *testing.T) {
	_, router := newTestEnv(t)
	addEquity(t, router, "MSFT", "", 10, 100)
	doJSON(t, router, "POST", "/api/v1/positions", holding.AddPositionRequest{
		Kind:        "real-estate",
		DisplayName: "Apartment",
		Value:       d(250000),
	})

	w := doJSON(t, router, "GET", "/api/v1/positions/total", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp holding.TotalValueResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if !resp.TotalValue.Equal(d(251000)) {
		t.Errorf("expected total 251000, got %s", resp.TotalValue)
	}
	if resp.Positions != 2 {
		t.Errorf("expected 2 positions, got %d", resp.Positions)
	}
}

func TestPlannerEndpoints(t *testing.T) {
	_, router := newTestEnv(t)

	w := doJSON(t, router, "POST", "/api/v1/planner/loan", holding.LoanRequest{
		Principal:     d(200000),
		AnnualRatePct: d(3.5),
		Months:        240,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("loan: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var loan holding.LoanResponse
	json.Unmarshal(w.Body.Bytes(), &loan)
	if !loan.MonthlyPayment.Equal(d(1159.92)) {
		t.Errorf("expected payment 1159.92, got %s", loan.MonthlyPayment)
	}
	if len(loan.Schedule) != 240 {
		t.Errorf("expected 240 installments, got %d", len(loan.Schedule))
	}

	w = doJSON(t, router, "POST", "/api/v1/planner/compound", holding.CompoundRequest{
		Initial:       d(10000),
		AnnualRatePct: d(6),
		Years:         10,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("compound: expected 200, got %d", w.Code)
	}

	w = doJSON(t, router, "POST", "/api/v1/planner/budget", holding.BudgetRequest{
		Income:   d(3000),
		Expenses: nil,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("budget: expected 200, got %d", w.Code)
	}

	w = doJSON(t, router, "POST", "/api/v1/planner/rebalance", holding.RebalanceRequest{
		Values:  map[string]decimal.Decimal{"equity": d(8000), "bond": d(2000)},
		Targets: map[string]decimal.Decimal{"equity": d(60), "bond": d(40)},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("rebalance: expected 200, got %d", w.Code)
	}

	w = doJSON(t, router, "POST", "/api/v1/planner/loan", holding.LoanRequest{
		Principal: d(0),
		Months:    12,
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid loan should 400, got %d", w.Code)
	}
}
