package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MoneyScale is the fixed decimal scale every monetary amount is rounded to
// before comparison or persistence.
const MoneyScale = 2

// JournalStatus is the lifecycle state of a journal entry group.
type JournalStatus string

const (
	JournalDraft  JournalStatus = "DRAFT"
	JournalPosted JournalStatus = "POSTED"
)

// CanTransitionJournal reports whether a journal may move from one status to
// another. Posted journals are terminal.
func CanTransitionJournal(from, to JournalStatus) bool {
	return from == JournalDraft && to == JournalPosted
}

// Journal is a group of entry lines sharing one identifier and date.
// Lines are immutable once the journal is posted; only posted journals are
// visible to ledger and report computations.
type Journal struct {
	ID          string
	Date        time.Time
	Description string
	Status      JournalStatus
	Lines       []EntryLine
	CreatedAt   time.Time
	PostedAt    *time.Time
}

// EntryLine is one debit-or-credit posting against one account. Exactly one
// of Debit and Credit is non-zero.
type EntryLine struct {
	ID          string
	JournalID   string
	AccountID   string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	Description string
	LineNo      int
	Date        time.Time
	CreatedAt   time.Time
}

// Post transitions the journal to POSTED and stamps the posting time.
// Posted journals are terminal, so reposting reports ErrJournalNotDraft.
func (j *Journal) Post(at time.Time) error {
	if !CanTransitionJournal(j.Status, JournalPosted) {
		return ErrJournalNotDraft
	}

	j.Status = JournalPosted
	j.PostedAt = &at

	return nil
}

// Totals returns the summed debit and credit of all lines, rounded to
// MoneyScale.
func (j *Journal) Totals() (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	for _, l := range j.Lines {
		debit = debit.Add(l.Debit)
		credit = credit.Add(l.Credit)
	}

	return debit.Round(MoneyScale), credit.Round(MoneyScale)
}

// Validate checks the group invariant: at least two lines, each line with
// exactly one side set, and debits equal to credits at MoneyScale.
func (j *Journal) Validate() error {
	if len(j.Lines) < 2 {
		return ErrUnbalancedJournal
	}

	for _, l := range j.Lines {
		if l.Debit.IsZero() == l.Credit.IsZero() {
			return ErrUnbalancedJournal
		}

		if l.Debit.IsNegative() || l.Credit.IsNegative() {
			return ErrUnbalancedJournal
		}
	}

	debit, credit := j.Totals()
	if !debit.Equal(credit) {
		return ErrUnbalancedJournal
	}

	return nil
}
