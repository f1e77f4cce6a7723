package ledger

import "errors"

var (
	// ErrValidation is returned when a candidate holding fails basic
	// numeric/shape checks before any identity matching is attempted.
	ErrValidation = errors.New("ledger: invalid candidate holding")

	// ErrInvalidQuantity is returned when an incoming lot quantity is zero
	// or negative.
	ErrInvalidQuantity = errors.New("ledger: lot quantity must be positive")

	// ErrInsufficientQuantity is returned when a sell would drive the held
	// quantity negative.
	ErrInsufficientQuantity = errors.New("ledger: sell exceeds held quantity")

	// ErrDivisionByZero guards the weighted-average formula. Unreachable
	// given the merge preconditions, but checked so a corrupt state reports
	// instead of producing a garbage unit cost.
	ErrDivisionByZero = errors.New("ledger: zero quantity in average cost computation")

	// ErrNotFound is returned by Sell when no position carries the given id.
	// Update and Remove deliberately stay permissive no-ops instead.
	ErrNotFound = errors.New("ledger: position not found")
)
