// Package ledger owns the authoritative in-memory representation of a user's
// holdings. Incoming purchases of a tradable kind are folded into existing
// positions using quantity-weighted average cost accounting; every position of
// a mergeable kind carries an append-only lot history.
//
// The ledger is the single writer of its collection: collaborators receive
// read-only snapshot copies and route every mutation through Add, Sell,
// Update, or Remove. Mutations are atomic — either the whole operation
// succeeds and one notification fires, or nothing changes.
//
// All monetary values use shopspring/decimal — never float64 for money.
package ledger

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MVdu13/finsyamvp-sub000/internal/model"
)

// Candidate is a holding as reported by a collaborator (e.g., a submitted
// form). Quantity and UnitPrice drive the merge path for mergeable kinds;
// Value and Performance are taken directly for everything else.
type Candidate struct {
	Kind            model.Kind
	DisplayName     string
	OwnerAccountRef string
	Quantity        decimal.Decimal
	UnitPrice       decimal.Decimal
	Value           decimal.Decimal
	Performance     decimal.Decimal
}

// Update carries the fields an edit may overwrite. Nil pointers leave the
// stored value untouched. This is a direct correction path — no identity
// re-resolution, no lot creation.
type Update struct {
	DisplayName     *string
	OwnerAccountRef *string
	Value           *decimal.Decimal
	Performance     *decimal.Decimal
}

// SnapshotFunc receives the full post-mutation snapshot after every
// successful Add, Sell, Update, or Remove.
type SnapshotFunc func([]model.Position)

// Ledger holds the ordered collection of positions. All operations run to
// completion under one mutex, so two adds for the same logical holding are
// always merged deterministically in arrival order.
type Ledger struct {
	mu        sync.Mutex
	positions []model.Position
	subs      map[int]SnapshotFunc
	nextSub   int
}

// New creates an empty ledger.
func New() *Ledger {
	return &Ledger{subs: make(map[int]SnapshotFunc)}
}

// NewFromSnapshot rehydrates a ledger from a previously captured snapshot,
// e.g. one loaded from durable storage at startup. The input is deep-copied.
func NewFromSnapshot(positions []model.Position) *Ledger {
	l := New()
	l.positions = make([]model.Position, len(positions))
	for i, p := range positions {
		l.positions[i] = p.Clone()
	}
	return l
}

// Add validates a candidate holding and either folds it into the existing
// position with the same identity (mergeable kinds) or inserts a new
// position. Returns the stored result.
func (l *Ledger) Add(c Candidate) (model.Position, error) {
	if err := validate(c); err != nil {
		return model.Position{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now().UTC()

	if match, count := Resolve(c, l.positions); match != nil {
		if count > 1 {
			// Invariant already violated upstream; proceed with the first
			// match but make the corruption observable.
			slog.Warn("duplicate position identities in ledger",
				"kind", c.Kind,
				"display_name", c.DisplayName,
				"owner_account", c.OwnerAccountRef,
				"matches", count,
			)
		}
		if !c.Quantity.IsPositive() {
			return model.Position{}, ErrInvalidQuantity
		}
		merged, err := Merge(*match, Incoming{
			Quantity:  c.Quantity,
			UnitPrice: c.UnitPrice,
			Direction: model.Buy,
		}, now)
		if err != nil {
			return model.Position{}, err
		}
		*match = merged
		l.notify()
		return merged.Clone(), nil
	}

	p := model.Position{
		ID:              uuid.New().String(),
		Kind:            c.Kind,
		DisplayName:     c.DisplayName,
		OwnerAccountRef: c.OwnerAccountRef,
		Performance:     c.Performance,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if c.Kind.Mergeable() {
		p.Quantity = c.Quantity
		p.UnitCost = c.UnitPrice.Round(CostScale)
		p.Value = p.Quantity.Mul(p.UnitCost)
		if c.Quantity.IsPositive() {
			// Seed an opening lot so a holding created in one shot and one
			// built from additive purchases share the same history shape.
			p.Transactions = []model.Lot{{
				ID:        uuid.New().String(),
				Date:      now,
				Direction: model.Buy,
				Quantity:  c.Quantity,
				UnitPrice: c.UnitPrice,
				Total:     c.Quantity.Mul(c.UnitPrice),
			}}
		}
	} else {
		p.Value = c.Value
	}

	l.positions = append(l.positions, p)
	l.notify()
	return p.Clone(), nil
}

// Sell records a disposal lot against the position with the given id. The
// unit cost is unchanged (average-cost basis does not change on disposal);
// quantity and value shrink and the lot is appended to the history.
func (l *Ledger) Sell(id string, quantity, unitPrice decimal.Decimal) (model.Position, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := l.find(id)
	if idx < 0 {
		return model.Position{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if !l.positions[idx].Kind.Mergeable() {
		return model.Position{}, ErrValidation
	}

	merged, err := Merge(l.positions[idx], Incoming{
		Quantity:  quantity,
		UnitPrice: unitPrice,
		Direction: model.Sell,
	}, time.Now().UTC())
	if err != nil {
		return model.Position{}, err
	}

	l.positions[idx] = merged
	l.notify()
	return merged.Clone(), nil
}

// Update shallow-merges the given fields into the position matching id.
// Unknown ids are a deliberate no-op: edit callers are expected to hold a
// valid reference, and existing call sites assume no-op safety.
//
// A value write must be non-negative, and is rejected outright for mergeable
// kinds: their value is derived from quantity and unit cost and only the
// merge paths may move it.
func (l *Ledger) Update(id string, u Update) error {
	if u.Value != nil && u.Value.IsNegative() {
		return fmt.Errorf("%w: value must be non-negative", ErrValidation)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	idx := l.find(id)
	if idx < 0 {
		return nil
	}

	p := &l.positions[idx]
	if u.Value != nil && p.Kind.Mergeable() {
		return fmt.Errorf("%w: value of a %s position is derived from its lots", ErrValidation, p.Kind)
	}
	if u.DisplayName != nil {
		p.DisplayName = *u.DisplayName
	}
	if u.OwnerAccountRef != nil {
		p.OwnerAccountRef = *u.OwnerAccountRef
	}
	if u.Value != nil {
		p.Value = *u.Value
	}
	if u.Performance != nil {
		p.Performance = *u.Performance
	}
	p.UpdatedAt = time.Now().UTC()

	l.notify()
	return nil
}

// Remove deletes the position with the given id; no-op if absent. Positions
// whose ownerAccountRef pointed at the removed entry are left alone — an
// orphaned reference reads as "no containing account".
func (l *Ledger) Remove(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := l.find(id)
	if idx < 0 {
		return
	}

	l.positions = append(l.positions[:idx], l.positions[idx+1:]...)
	l.notify()
}

// Snapshot returns a deep copy of the current collection in insertion order.
func (l *Ledger) Snapshot() []model.Position {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshotLocked()
}

// TotalValue sums the value of every position.
func (l *Ledger) TotalValue() decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()

	total := decimal.Zero
	for _, p := range l.positions {
		total = total.Add(p.Value)
	}
	return total
}

// Subscribe registers a callback invoked with the updated snapshot after
// every successful mutation. Callbacks run synchronously on the mutating
// call, in registration order, while the ledger lock is held — they must not
// call back into the ledger. The returned function cancels the subscription.
func (l *Ledger) Subscribe(fn SnapshotFunc) (unsubscribe func()) {
	l.mu.Lock()
	defer l.mu.Unlock()

	id := l.nextSub
	l.nextSub++
	l.subs[id] = fn

	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.subs, id)
	}
}

// find returns the index of the position with the given id, or -1.
// Caller must hold l.mu.
func (l *Ledger) find(id string) int {
	for i := range l.positions {
		if l.positions[i].ID == id {
			return i
		}
	}
	return -1
}

// snapshotLocked deep-copies the collection. Caller must hold l.mu.
func (l *Ledger) snapshotLocked() []model.Position {
	snap := make([]model.Position, len(l.positions))
	for i, p := range l.positions {
		snap[i] = p.Clone()
	}
	return snap
}

// notify delivers the post-mutation snapshot to every subscriber, in
// registration order. Caller must hold l.mu. Each subscriber gets its own
// copy so one observer cannot corrupt what another sees.
func (l *Ledger) notify() {
	if len(l.subs) == 0 {
		return
	}
	for i := 0; i < l.nextSub; i++ {
		fn, ok := l.subs[i]
		if !ok {
			continue
		}
		fn(l.snapshotLocked())
	}
}

// validate applies the candidate shape checks that run before any identity
// matching. Failures leave the ledger untouched.
func validate(c Candidate) error {
	if _, err := model.ParseKind(string(c.Kind)); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if strings.TrimSpace(c.DisplayName) == "" {
		return fmt.Errorf("%w: display name is required", ErrValidation)
	}
	if c.Quantity.IsNegative() {
		return fmt.Errorf("%w: quantity must be non-negative", ErrValidation)
	}
	if c.Kind.Mergeable() && c.UnitPrice.IsNegative() {
		return fmt.Errorf("%w: unit price must be non-negative", ErrValidation)
	}
	if c.Value.IsNegative() {
		return fmt.Errorf("%w: value must be non-negative", ErrValidation)
	}
	return nil
}
