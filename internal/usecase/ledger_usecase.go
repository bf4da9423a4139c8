package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nusabooks/nusabooks/internal/domain"
)

// LedgerUseCase computes account-level balance views from posted journals.
type LedgerUseCase struct {
	accountRepo AccountRepository
	journalRepo JournalRepository
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(accountRepo AccountRepository, journalRepo JournalRepository) *LedgerUseCase {
	return &LedgerUseCase{
		accountRepo: accountRepo,
		journalRepo: journalRepo,
	}
}

// ListAccounts returns accounts from the chart of accounts ordered by code.
func (uc *LedgerUseCase) ListAccounts(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	limit = clampPageSize(limit)
	if offset < 0 {
		offset = 0
	}

	return uc.accountRepo.List(ctx, limit, offset)
}

// LedgerLineItem is one posted line with the balance after applying it.
type LedgerLineItem struct {
	Line           *domain.EntryLine
	RunningBalance decimal.Decimal
}

// GeneralLedgerData is the balance view of one account over a date window.
type GeneralLedgerData struct {
	Account        *domain.Account
	StartDate      time.Time
	EndDate        time.Time
	OpeningBalance decimal.Decimal
	TotalDebit     decimal.Decimal
	TotalCredit    decimal.Decimal
	ClosingBalance decimal.Decimal
	LineItems      []LedgerLineItem
}

// GeneralLedger computes the opening balance from everything posted strictly
// before start, then applies each posted line within [start, end] in order.
// Balance movement follows the account's polarity via domain.SignedDelta.
func (uc *LedgerUseCase) GeneralLedger(ctx context.Context, accountID string, start, end time.Time) (*GeneralLedgerData, error) {
	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	openDebit, openCredit, err := uc.journalRepo.SumPostedBefore(ctx, accountID, start)
	if err != nil {
		return nil, err
	}

	opening := domain.SignedDelta(account.Polarity, openDebit, openCredit)

	lines, err := uc.journalRepo.ListPostedLines(ctx, accountID, start, end)
	if err != nil {
		return nil, err
	}

	data := &GeneralLedgerData{
		Account:        account,
		StartDate:      start,
		EndDate:        end,
		OpeningBalance: opening,
		TotalDebit:     decimal.Zero,
		TotalCredit:    decimal.Zero,
		LineItems:      make([]LedgerLineItem, 0, len(lines)),
	}

	running := opening
	for _, line := range lines {
		running = running.Add(domain.SignedDelta(account.Polarity, line.Debit, line.Credit))

		data.TotalDebit = data.TotalDebit.Add(line.Debit)
		data.TotalCredit = data.TotalCredit.Add(line.Credit)
		data.LineItems = append(data.LineItems, LedgerLineItem{Line: line, RunningBalance: running})
	}

	data.ClosingBalance = running

	return data, nil
}

// TrialBalanceRow is one account's posted totals as of a date.
type TrialBalanceRow struct {
	AccountID string
	Code      string
	Name      string
	Debit     decimal.Decimal
	Credit    decimal.Decimal
}

// TrialBalanceReport lists every account with posted activity plus the
// ledger-wide totals, which must be equal for a consistent ledger.
type TrialBalanceReport struct {
	AsOf        time.Time
	Rows        []TrialBalanceRow
	TotalDebit  decimal.Decimal
	TotalCredit decimal.Decimal
}

// TrialBalance aggregates posted debits and credits per account up to asOf.
func (uc *LedgerUseCase) TrialBalance(ctx context.Context, asOf time.Time) (*TrialBalanceReport, error) {
	totals, err := uc.journalRepo.SumPostedByAccount(ctx, asOf)
	if err != nil {
		return nil, err
	}

	report := &TrialBalanceReport{
		AsOf:        asOf,
		Rows:        make([]TrialBalanceRow, 0, len(totals)),
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
	}

	for _, t := range totals {
		report.Rows = append(report.Rows, TrialBalanceRow{
			AccountID: t.AccountID,
			Code:      t.Code,
			Name:      t.Name,
			Debit:     t.Debit,
			Credit:    t.Credit,
		})

		report.TotalDebit = report.TotalDebit.Add(t.Debit)
		report.TotalCredit = report.TotalCredit.Add(t.Credit)
	}

	return report, nil
}
