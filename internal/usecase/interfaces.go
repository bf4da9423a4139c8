package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nusabooks/nusabooks/internal/domain"
)

// AccountRepository defines data access for the chart of accounts.
type AccountRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Account, error)
}

// JournalRepository defines data access for journals and entry lines.
// CreateJournal persists a draft group with all of its lines; MarkPosted
// flips the group to posted. Both run inside a caller-owned transaction so a
// partial group is never observable.
type JournalRepository interface {
	CreateJournal(ctx context.Context, tx Transaction, journal *domain.Journal) error
	MarkPosted(ctx context.Context, tx Transaction, journalID string, postedAt time.Time) error
	GetByID(ctx context.Context, id string) (*domain.Journal, error)

	// SumPostedBefore returns total debit and credit of posted lines against
	// the account strictly before the cutoff.
	SumPostedBefore(ctx context.Context, accountID string, before time.Time) (debit, credit decimal.Decimal, err error)
	// SumPostedInRange returns total debit and credit of posted lines within
	// [start, end].
	SumPostedInRange(ctx context.Context, accountID string, start, end time.Time) (debit, credit decimal.Decimal, err error)
	// ListPostedLines returns posted lines within [start, end] in
	// chronological order, ties broken by insertion order.
	ListPostedLines(ctx context.Context, accountID string, start, end time.Time) ([]*domain.EntryLine, error)
	// SumPostedByAccount returns per-account posted totals up to asOf.
	SumPostedByAccount(ctx context.Context, asOf time.Time) ([]AccountTotals, error)
}

// AccountTotals is one account's posted debit/credit aggregate.
type AccountTotals struct {
	AccountID string
	Code      string
	Name      string
	Polarity  domain.Polarity
	Debit     decimal.Decimal
	Credit    decimal.Decimal
}

// TemplateRepository defines data access for posting templates.
type TemplateRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Template, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Template, error)
	// RecordUsage increments the use counter and stamps last-used time.
	// Called only after a successful, committed execution.
	RecordUsage(ctx context.Context, id string, usedAt time.Time) error
}

// ScheduleRepository defines data access for amortization schedules and
// their generated entries.
type ScheduleRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Schedule, error)
	GetEntryByID(ctx context.Context, entryID string) (*domain.ScheduleEntry, error)
	ListPendingBySchedule(ctx context.Context, scheduleID string) ([]*domain.ScheduleEntry, error)
	// ListDueForAutoPost returns pending entries of active auto-post
	// schedules whose period end is on or before asOf.
	ListDueForAutoPost(ctx context.Context, asOf time.Time) ([]*domain.ScheduleEntry, error)
	UpdateEntry(ctx context.Context, tx Transaction, entry *domain.ScheduleEntry) error
	// RecomputeCounters refreshes the schedule's posted/pending counts from
	// its entries.
	RecomputeCounters(ctx context.Context, scheduleID string) error
}

// DocumentRepository reads outstanding receivable/payable documents. The
// documents themselves are owned elsewhere; this core only ages them.
type DocumentRepository interface {
	ListOutstanding(ctx context.Context, kind domain.DocumentKind, asOf time.Time) ([]*domain.OutstandingDocument, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Retrier retries a database operation that failed with a transient
// serialization or deadlock error.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// retry runs operation through r when a retrier is configured.
func retry(ctx context.Context, r Retrier, operation func() error) error {
	if r == nil {
		return operation()
	}

	return r.Retry(ctx, operation)
}

// Cache defines caching operations for report payloads.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
