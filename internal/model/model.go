// Package model defines the core domain types shared across the wealth ledger.
// All monetary values use shopspring/decimal — never float64 for money.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction marks a lot as an acquisition or a disposal.
type Direction string

const (
	Buy  Direction = "buy"
	Sell Direction = "sell"
)

// Lot is an immutable record of a buy or sell event against a Position.
// Once committed to a transaction history, a lot is never modified or removed.
type Lot struct {
	ID        string          `json:"id"`
	Date      time.Time       `json:"date"`
	Direction Direction       `json:"direction"`
	Quantity  decimal.Decimal `json:"quantity"`  // always positive; direction carries the sign
	UnitPrice decimal.Decimal `json:"unitPrice"` // price per unit for this lot
	Total     decimal.Decimal `json:"total"`     // quantity * unitPrice, stored for audit convenience
}

// Position is a single holding the user owns.
//
// For mergeable kinds (equity, crypto-unit) the quantity/unitCost/value triple
// is maintained by the ledger: unitCost is the quantity-weighted average
// acquisition price and value is recomputed as quantity * unitCost on every
// merge. There is no live price feed, so cost value and current value are the
// same field. Non-mergeable kinds carry value (and optionally performance)
// directly and never accumulate transactions.
type Position struct {
	ID              string          `json:"id"`
	Kind            Kind            `json:"kind"`
	DisplayName     string          `json:"displayName"`
	OwnerAccountRef string          `json:"ownerAccountRef,omitempty"` // containing account; empty = none
	Quantity        decimal.Decimal `json:"quantity"`
	UnitCost        decimal.Decimal `json:"unitCost"`
	Value           decimal.Decimal `json:"value"`
	Performance     decimal.Decimal `json:"performance"` // signed percent, user-settable
	Transactions    []Lot           `json:"transactions,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// Clone returns a deep copy of the position. The transaction history backing
// array is copied so the caller cannot reach back into ledger-owned state.
func (p Position) Clone() Position {
	cp := p
	if p.Transactions != nil {
		cp.Transactions = make([]Lot, len(p.Transactions))
		copy(cp.Transactions, p.Transactions)
	}
	return cp
}
