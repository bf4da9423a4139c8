package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nusabooks/nusabooks/internal/domain"
	"github.com/nusabooks/nusabooks/internal/usecase"
)

// ScheduleRepository implements usecase.ScheduleRepository.
type ScheduleRepository struct {
	pool *pgxpool.Pool
}

// NewScheduleRepository creates a new ScheduleRepository.
func NewScheduleRepository(pool *pgxpool.Pool) *ScheduleRepository {
	return &ScheduleRepository{pool: pool}
}

const scheduleColumns = `id, name, type, total_amount, periods, source_account_id, target_account_id,
	active, auto_post, posted_count, pending_count, created_at, updated_at`

const scheduleEntryColumns = `id, schedule_id, period_no, period_start, period_end, amount,
	status, journal_id, posted_at, generated_at, created_at`

// GetByID retrieves a schedule by ID.
func (r *ScheduleRepository) GetByID(ctx context.Context, id string) (*domain.Schedule, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+scheduleColumns+` FROM schedules WHERE id = $1`, id)

	schedule, err := scanSchedule(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrScheduleNotFound
		}

		return nil, err
	}

	return schedule, nil
}

// GetEntryByID retrieves a schedule entry by ID.
func (r *ScheduleRepository) GetEntryByID(ctx context.Context, entryID string) (*domain.ScheduleEntry, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+scheduleEntryColumns+` FROM schedule_entries WHERE id = $1`, entryID)

	entry, err := scanScheduleEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrScheduleEntryNotFound
		}

		return nil, err
	}

	return entry, nil
}

// ListPendingBySchedule returns pending entries of one schedule in period
// order.
func (r *ScheduleRepository) ListPendingBySchedule(ctx context.Context, scheduleID string) ([]*domain.ScheduleEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+scheduleEntryColumns+`
		 FROM schedule_entries
		 WHERE schedule_id = $1 AND status = $2
		 ORDER BY period_no`,
		scheduleID, domain.SchedulePending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectScheduleEntries(rows)
}

// ListDueForAutoPost returns pending entries of active auto-post schedules
// whose period end is on or before asOf, oldest first.
func (r *ScheduleRepository) ListDueForAutoPost(ctx context.Context, asOf time.Time) ([]*domain.ScheduleEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT e.id, e.schedule_id, e.period_no, e.period_start, e.period_end, e.amount,
		        e.status, e.journal_id, e.posted_at, e.generated_at, e.created_at
		 FROM schedule_entries e
		 JOIN schedules s ON s.id = e.schedule_id
		 WHERE e.status = $1 AND s.active AND s.auto_post AND e.period_end <= $2
		 ORDER BY e.period_end, e.period_no`,
		domain.SchedulePending, timeToPgDate(asOf))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectScheduleEntries(rows)
}

// UpdateEntry rewrites an entry's mutable fields inside the caller's
// transaction. Only pending entries can be rewritten; a concurrent post or
// skip that already claimed the entry surfaces as ErrEntryNotPending.
func (r *ScheduleRepository) UpdateEntry(ctx context.Context, tx usecase.Transaction, entry *domain.ScheduleEntry) error {
	pgxTx := tx.(*Tx).PgxTx()

	var postedAt, generatedAt pgtype.Timestamptz
	if entry.PostedAt != nil {
		postedAt = timeToPgTimestamptz(*entry.PostedAt)
	}
	if entry.GeneratedAt != nil {
		generatedAt = timeToPgTimestamptz(*entry.GeneratedAt)
	}

	tag, err := pgxTx.Exec(ctx,
		`UPDATE schedule_entries
		 SET status = $1, journal_id = $2, posted_at = $3, generated_at = $4
		 WHERE id = $5 AND status = $6`,
		entry.Status, entry.JournalID, postedAt, generatedAt, entry.ID, domain.SchedulePending)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrEntryNotPending
	}

	return nil
}

// RecomputeCounters refreshes a schedule's posted/pending counts from its
// entries.
func (r *ScheduleRepository) RecomputeCounters(ctx context.Context, scheduleID string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE schedules s SET
		   posted_count = (SELECT COUNT(*) FROM schedule_entries WHERE schedule_id = s.id AND status = $1),
		   pending_count = (SELECT COUNT(*) FROM schedule_entries WHERE schedule_id = s.id AND status = $2),
		   updated_at = NOW()
		 WHERE s.id = $3`,
		domain.SchedulePosted, domain.SchedulePending, scheduleID)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrScheduleNotFound
	}

	return nil
}

func scanSchedule(row pgx.Row) (*domain.Schedule, error) {
	var s domain.Schedule
	var total pgtype.Numeric

	err := row.Scan(&s.ID, &s.Name, &s.Type, &total, &s.Periods,
		&s.SourceAccountID, &s.TargetAccountID, &s.Active, &s.AutoPost,
		&s.PostedCount, &s.PendingCount, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}

	s.TotalAmount = numericToDecimal(total)

	return &s, nil
}

func scanScheduleEntry(row pgx.Row) (*domain.ScheduleEntry, error) {
	var e domain.ScheduleEntry
	var amount pgtype.Numeric

	err := row.Scan(&e.ID, &e.ScheduleID, &e.PeriodNo, &e.PeriodStart, &e.PeriodEnd,
		&amount, &e.Status, &e.JournalID, &e.PostedAt, &e.GeneratedAt, &e.CreatedAt)
	if err != nil {
		return nil, err
	}

	e.Amount = numericToDecimal(amount)

	return &e, nil
}

func collectScheduleEntries(rows pgx.Rows) ([]*domain.ScheduleEntry, error) {
	var entries []*domain.ScheduleEntry
	for rows.Next() {
		entry, err := scanScheduleEntry(rows)
		if err != nil {
			return nil, err
		}

		entries = append(entries, entry)
	}

	return entries, rows.Err()
}
