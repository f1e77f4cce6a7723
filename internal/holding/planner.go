package holding

import (
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/MVdu13/finsyamvp-sub000/internal/fincalc"
)

// Planner exposes the fincalc utilities over HTTP. It holds no state; every
// request is a pure computation on its body.
type Planner struct {
	rebalancer *fincalc.Rebalancer
}

// NewPlanner creates a planner with the given rebalancing tolerance band
// (percentage points).
func NewPlanner(tolerance decimal.Decimal) *Planner {
	return &Planner{rebalancer: fincalc.NewRebalancer(tolerance)}
}

// LoanRequest is the JSON body for POST /planner/loan.
type LoanRequest struct {
	Principal     decimal.Decimal `json:"principal"`
	AnnualRatePct decimal.Decimal `json:"annualRatePct"`
	Months        int             `json:"months"`
}

// LoanResponse carries the payment plus the full schedule.
type LoanResponse struct {
	MonthlyPayment decimal.Decimal       `json:"monthlyPayment"`
	TotalInterest  decimal.Decimal       `json:"totalInterest"`
	Schedule       []fincalc.Installment `json:"schedule"`
}

// CompoundRequest is the JSON body for POST /planner/compound.
type CompoundRequest struct {
	Initial             decimal.Decimal `json:"initial"`
	MonthlyContribution decimal.Decimal `json:"monthlyContribution"`
	AnnualRatePct       decimal.Decimal `json:"annualRatePct"`
	Years               int             `json:"years"`
}

// BudgetRequest is the JSON body for POST /planner/budget.
type BudgetRequest struct {
	Income   decimal.Decimal      `json:"income"`
	Expenses []fincalc.BudgetLine `json:"expenses"`
}

// RebalanceRequest is the JSON body for POST /planner/rebalance.
type RebalanceRequest struct {
	Values  map[string]decimal.Decimal `json:"values"`  // current money per asset class
	Targets map[string]decimal.Decimal `json:"targets"` // percent per asset class, sums to 100
}

// Loan handles POST /api/v1/planner/loan
func (p *Planner) Loan(w http.ResponseWriter, r *http.Request) {
	var req LoanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	schedule, err := fincalc.AmortizationSchedule(req.Principal, req.AnnualRatePct, req.Months)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, LoanResponse{
		MonthlyPayment: schedule[0].Payment,
		TotalInterest:  fincalc.TotalInterest(schedule),
		Schedule:       schedule,
	})
}

// Compound handles POST /api/v1/planner/compound
func (p *Planner) Compound(w http.ResponseWriter, r *http.Request) {
	var req CompoundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	points, err := fincalc.CompoundProjection(req.Initial, req.MonthlyContribution, req.AnnualRatePct, req.Years)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, points)
}

// Budget handles POST /api/v1/planner/budget
func (p *Planner) Budget(w http.ResponseWriter, r *http.Request) {
	var req BudgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	summary, err := fincalc.SummarizeBudget(req.Income, req.Expenses)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// Rebalance handles POST /api/v1/planner/rebalance
func (p *Planner) Rebalance(w http.ResponseWriter, r *http.Request) {
	var req RebalanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	adjustments, err := p.rebalancer.Suggest(req.Values, req.Targets)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if adjustments == nil {
		adjustments = []fincalc.Adjustment{}
	}

	writeJSON(w, http.StatusOK, adjustments)
}
