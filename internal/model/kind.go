package model

import (
	"errors"
	"fmt"
)

// Kind is the closed set of holding kinds. Only equity and crypto-unit
// participate in lot merging; every other kind is stored and valued but never
// merged, so new kinds default safely to "not mergeable".
type Kind string

const (
	KindEquity            Kind = "equity"
	KindCryptoUnit        Kind = "crypto-unit"
	KindRealEstate        Kind = "real-estate"
	KindBankAccount       Kind = "bank-account"
	KindSavingsAccount    Kind = "savings-account"
	KindInvestmentAccount Kind = "investment-account-wrapper"
	KindCryptoAccount     Kind = "crypto-account-wrapper"
	KindCash              Kind = "cash"
	KindBond              Kind = "bond"
	KindCommodity         Kind = "commodity"
	KindOther             Kind = "other"
)

var validKinds = map[Kind]bool{
	KindEquity:            true,
	KindCryptoUnit:        true,
	KindRealEstate:        true,
	KindBankAccount:       true,
	KindSavingsAccount:    true,
	KindInvestmentAccount: true,
	KindCryptoAccount:     true,
	KindCash:              true,
	KindBond:              true,
	KindCommodity:         true,
	KindOther:             true,
}

// ErrInvalidKind is returned when a string is not a recognized holding kind.
var ErrInvalidKind = errors.New("model: unsupported holding kind")

// ParseKind validates a kind string against the closed set.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !validKinds[k] {
		return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
	}
	return k, nil
}

// Mergeable reports whether repeated purchases of this kind are folded into
// one aggregate position with a weighted-average unit cost.
func (k Kind) Mergeable() bool {
	return k == KindEquity || k == KindCryptoUnit
}
