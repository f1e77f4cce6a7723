// Package holding provides the HTTP handlers over the position ledger:
// submitting holdings, corrections, disposals, and snapshot/valuation reads.
//
// The handlers are a thin collaborator: they translate JSON to plain ledger
// calls and ledger errors to status codes. All invariants live in the ledger.
package holding

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/MVdu13/finsyamvp-sub000/internal/ledger"
	"github.com/MVdu13/finsyamvp-sub000/internal/metrics"
	"github.com/MVdu13/finsyamvp-sub000/internal/model"
)

// Service handles position operations against one ledger.
type Service struct {
	ledger *ledger.Ledger
}

// NewService creates a new holding service.
func NewService(l *ledger.Ledger) *Service {
	return &Service{ledger: l}
}

// --- Request/Response types ---

// AddPositionRequest is the JSON body for POST /positions.
type AddPositionRequest struct {
	Kind            string          `json:"kind"`
	DisplayName     string          `json:"displayName"`
	OwnerAccountRef string          `json:"ownerAccountRef,omitempty"`
	Quantity        decimal.Decimal `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unitPrice"`
	Value           decimal.Decimal `json:"value"`
	Performance     decimal.Decimal `json:"performance"`
}

// UpdatePositionRequest is the JSON body for PATCH /positions/{positionID}.
// Absent fields leave the stored value untouched.
type UpdatePositionRequest struct {
	DisplayName     *string          `json:"displayName,omitempty"`
	OwnerAccountRef *string          `json:"ownerAccountRef,omitempty"`
	Value           *decimal.Decimal `json:"value,omitempty"`
	Performance     *decimal.Decimal `json:"performance,omitempty"`
}

// SellPositionRequest is the JSON body for POST /positions/{positionID}/sell.
type SellPositionRequest struct {
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// TotalValueResponse is the JSON body for GET /positions/total.
type TotalValueResponse struct {
	TotalValue decimal.Decimal `json:"totalValue"`
	Positions  int             `json:"positions"`
}

// --- HTTP Handlers ---

// AddPosition handles POST /api/v1/positions
// Either merges the candidate into an existing position or creates a new one.
func (s *Service) AddPosition(w http.ResponseWriter, r *http.Request) {
	var req AddPositionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	kind, err := model.ParseKind(req.Kind)
	if err != nil {
		metrics.RejectedCandidates.WithLabelValues("kind").Inc()
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	p, err := s.ledger.Add(ledger.Candidate{
		Kind:            kind,
		DisplayName:     req.DisplayName,
		OwnerAccountRef: req.OwnerAccountRef,
		Quantity:        req.Quantity,
		UnitPrice:       req.UnitPrice,
		Value:           req.Value,
		Performance:     req.Performance,
	})
	if err != nil {
		writeLedgerError(w, err)
		return
	}

	outcome := "create"
	status := http.StatusCreated
	if !p.CreatedAt.Equal(p.UpdatedAt) {
		outcome = "merge"
		status = http.StatusOK
	}
	metrics.AddsTotal.WithLabelValues(outcome).Inc()
	metrics.Holdings.Set(float64(len(s.ledger.Snapshot())))

	slog.Info("position added",
		"id", p.ID,
		"kind", p.Kind,
		"name", p.DisplayName,
		"outcome", outcome,
		"quantity", p.Quantity.String(),
		"value", p.Value.String(),
	)

	writeJSON(w, status, p)
}

// ListPositions handles GET /api/v1/positions
func (s *Service) ListPositions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ledger.Snapshot())
}

// GetPosition handles GET /api/v1/positions/{positionID}
func (s *Service) GetPosition(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "positionID")

	for _, p := range s.ledger.Snapshot() {
		if p.ID == id {
			writeJSON(w, http.StatusOK, p)
			return
		}
	}
	writeError(w, "position not found", http.StatusNotFound)
}

// UpdatePosition handles PATCH /api/v1/positions/{positionID}
// Direct field correction: no identity re-resolution, no lot creation.
// Unknown ids are accepted and ignored, matching the ledger's contract.
func (s *Service) UpdatePosition(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "positionID")

	var req UpdatePositionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := s.ledger.Update(id, ledger.Update{
		DisplayName:     req.DisplayName,
		OwnerAccountRef: req.OwnerAccountRef,
		Value:           req.Value,
		Performance:     req.Performance,
	}); err != nil {
		writeLedgerError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeletePosition handles DELETE /api/v1/positions/{positionID}
func (s *Service) DeletePosition(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "positionID")

	s.ledger.Remove(id)
	metrics.RemovesTotal.Inc()
	metrics.Holdings.Set(float64(len(s.ledger.Snapshot())))

	slog.Info("position removed", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

// SellPosition handles POST /api/v1/positions/{positionID}/sell
// Records a disposal lot; unit cost is unchanged by design.
func (s *Service) SellPosition(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "positionID")

	var req SellPositionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	p, err := s.ledger.Sell(id, req.Quantity, req.UnitPrice)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	metrics.SellsTotal.Inc()

	slog.Info("position sold",
		"id", p.ID,
		"quantity", req.Quantity.String(),
		"remaining", p.Quantity.String(),
	)

	writeJSON(w, http.StatusOK, p)
}

// GetTotalValue handles GET /api/v1/positions/total
func (s *Service) GetTotalValue(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, TotalValueResponse{
		TotalValue: s.ledger.TotalValue(),
		Positions:  len(s.ledger.Snapshot()),
	})
}

// writeLedgerError maps ledger errors to HTTP status codes.
func writeLedgerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		writeError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ledger.ErrInsufficientQuantity):
		metrics.RejectedCandidates.WithLabelValues("insufficient_quantity").Inc()
		writeError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ledger.ErrInvalidQuantity):
		metrics.RejectedCandidates.WithLabelValues("invalid_quantity").Inc()
		writeError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ledger.ErrValidation):
		metrics.RejectedCandidates.WithLabelValues("validation").Inc()
		writeError(w, err.Error(), http.StatusBadRequest)
	default:
		writeError(w, err.Error(), http.StatusInternalServerError)
	}
}

// writeJSON writes a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
