package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Polarity is the normal-balance side of an account: a DEBIT account's
// balance grows with debits, a CREDIT account's with credits.
type Polarity string

const (
	PolarityDebit  Polarity = "DEBIT"
	PolarityCredit Polarity = "CREDIT"
)

// Valid reports whether p is a known polarity.
func (p Polarity) Valid() bool {
	return p == PolarityDebit || p == PolarityCredit
}

// Account represents one account in the chart of accounts. Polarity is
// fixed at creation and inherited by children from their parent.
type Account struct {
	ID        string
	Code      string
	Name      string
	Polarity  Polarity
	ParentID  *string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SignedDelta returns the balance movement a (debit, credit) pair causes on
// an account of the given polarity. Every balance, aging and tax computation
// goes through this single function so the sign convention cannot drift.
func SignedDelta(p Polarity, debit, credit decimal.Decimal) decimal.Decimal {
	if p == PolarityCredit {
		return credit.Sub(debit)
	}

	return debit.Sub(credit)
}
