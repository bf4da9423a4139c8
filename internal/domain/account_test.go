package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/nusabooks/nusabooks/internal/domain"
)

func TestSignedDelta(t *testing.T) {
	tests := []struct {
		name     string
		polarity domain.Polarity
		debit    string
		credit   string
		want     string
	}{
		{name: "debit account debited", polarity: domain.PolarityDebit, debit: "100", credit: "0", want: "100"},
		{name: "debit account credited", polarity: domain.PolarityDebit, debit: "0", credit: "100", want: "-100"},
		{name: "credit account credited", polarity: domain.PolarityCredit, debit: "0", credit: "100", want: "100"},
		{name: "credit account debited", polarity: domain.PolarityCredit, debit: "100", credit: "0", want: "-100"},
		{name: "mixed on debit account", polarity: domain.PolarityDebit, debit: "250.50", credit: "100.25", want: "150.25"},
		{name: "zero movement", polarity: domain.PolarityCredit, debit: "0", credit: "0", want: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			debit, _ := decimal.NewFromString(tt.debit)
			credit, _ := decimal.NewFromString(tt.credit)
			want, _ := decimal.NewFromString(tt.want)

			got := domain.SignedDelta(tt.polarity, debit, credit)
			if !got.Equal(want) {
				t.Errorf("SignedDelta(%s, %s, %s) = %s, want %s", tt.polarity, debit, credit, got, want)
			}
		})
	}
}

func TestPolarityValid(t *testing.T) {
	if !domain.PolarityDebit.Valid() || !domain.PolarityCredit.Valid() {
		t.Error("known polarities reported invalid")
	}

	if domain.Polarity("BOTH").Valid() {
		t.Error("unknown polarity reported valid")
	}
}
