package model

import "testing"

func TestParseKind(t *testing.T) {
	for _, s := range []string{"equity", "crypto-unit", "real-estate", "bank-account",
		"savings-account", "investment-account-wrapper", "crypto-account-wrapper",
		"cash", "bond", "commodity", "other"} {
		if _, err := ParseKind(s); err != nil {
			t.Errorf("ParseKind(%q) failed: %v", s, err)
		}
	}

	for _, s := range []string{"", "stock", "crypto", "EQUITY"} {
		if _, err := ParseKind(s); err == nil {
			t.Errorf("ParseKind(%q) should fail", s)
		}
	}
}

func TestKindMergeable(t *testing.T) {
	if !KindEquity.Mergeable() || !KindCryptoUnit.Mergeable() {
		t.Error("equity and crypto-unit must be mergeable")
	}
	for _, k := range []Kind{KindRealEstate, KindBankAccount, KindSavingsAccount,
		KindInvestmentAccount, KindCryptoAccount, KindCash, KindBond, KindCommodity, KindOther} {
		if k.Mergeable() {
			t.Errorf("%s must not be mergeable", k)
		}
	}
}
