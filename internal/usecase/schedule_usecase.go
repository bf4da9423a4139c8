package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/nusabooks/nusabooks/internal/domain"
	"github.com/nusabooks/nusabooks/internal/infrastructure/metrics"
)

// ScheduleUseCase advances amortization/depreciation schedules by posting
// their pending entries as balanced two-line journals.
type ScheduleUseCase struct {
	txManager    TransactionManager
	scheduleRepo ScheduleRepository
	journalRepo  JournalRepository
	idGen        IDGenerator
	retrier      Retrier
	metrics      *metrics.Metrics
	logger       zerolog.Logger
}

// NewScheduleUseCase creates a new ScheduleUseCase. Retrier and metrics are
// optional; pass nil to disable them.
func NewScheduleUseCase(
	txManager TransactionManager,
	scheduleRepo ScheduleRepository,
	journalRepo JournalRepository,
	idGen IDGenerator,
	retrier Retrier,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *ScheduleUseCase {
	return &ScheduleUseCase{
		txManager:    txManager,
		scheduleRepo: scheduleRepo,
		journalRepo:  journalRepo,
		idGen:        idGen,
		retrier:      retrier,
		metrics:      m,
		logger:       logger,
	}
}

// PostEntry posts one pending schedule entry as an atomic two-line journal,
// transitions it to POSTED and refreshes the owning schedule's counters.
func (uc *ScheduleUseCase) PostEntry(ctx context.Context, entryID string) (*domain.ScheduleEntry, error) {
	entry, err := uc.scheduleRepo.GetEntryByID(ctx, entryID)
	if err != nil {
		return nil, err
	}

	if !domain.CanTransitionScheduleEntry(entry.Status, domain.SchedulePosted) {
		return nil, fmt.Errorf("%w: entry %s is %s", domain.ErrEntryNotPending, entry.ID, entry.Status)
	}

	schedule, err := uc.scheduleRepo.GetByID(ctx, entry.ScheduleID)
	if err != nil {
		return nil, err
	}

	if !schedule.Active {
		return nil, fmt.Errorf("%w: schedule %s", domain.ErrScheduleInactive, schedule.ID)
	}

	journal, err := uc.buildJournal(schedule, entry)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	now := start.UTC()

	err = retry(ctx, uc.retrier, func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		if err := uc.journalRepo.CreateJournal(ctx, tx, journal); err != nil {
			return err
		}

		if err := uc.journalRepo.MarkPosted(ctx, tx, journal.ID, now); err != nil {
			return err
		}

		entry.Status = domain.SchedulePosted
		entry.JournalID = &journal.ID
		entry.PostedAt = &now
		entry.GeneratedAt = &now

		if err := uc.scheduleRepo.UpdateEntry(ctx, tx, entry); err != nil {
			return err
		}

		return tx.Commit(ctx)
	})
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.EntriesPosted.Inc()
		uc.metrics.PostingDuration.Observe(time.Since(start).Seconds())
	}

	if err := uc.scheduleRepo.RecomputeCounters(ctx, schedule.ID); err != nil {
		uc.logger.Warn().Err(err).Str("schedule_id", schedule.ID).Msg("failed to recompute schedule counters")
	}

	return entry, nil
}

// SkipEntry marks a pending entry as skipped without posting anything.
// Skipped entries are terminal.
func (uc *ScheduleUseCase) SkipEntry(ctx context.Context, entryID string) (*domain.ScheduleEntry, error) {
	entry, err := uc.scheduleRepo.GetEntryByID(ctx, entryID)
	if err != nil {
		return nil, err
	}

	if !domain.CanTransitionScheduleEntry(entry.Status, domain.ScheduleSkipped) {
		return nil, fmt.Errorf("%w: entry %s is %s", domain.ErrEntryNotPending, entry.ID, entry.Status)
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	entry.Status = domain.ScheduleSkipped
	if err := uc.scheduleRepo.UpdateEntry(ctx, tx, entry); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.EntriesSkipped.Inc()
	}

	if err := uc.scheduleRepo.RecomputeCounters(ctx, entry.ScheduleID); err != nil {
		uc.logger.Warn().Err(err).Str("schedule_id", entry.ScheduleID).Msg("failed to recompute schedule counters")
	}

	return entry, nil
}

// PostAllPending posts every pending entry of one schedule. Each entry is an
// independently atomic posting; a failure is logged and skipped so one bad
// entry cannot block the rest.
func (uc *ScheduleUseCase) PostAllPending(ctx context.Context, scheduleID string) ([]*domain.ScheduleEntry, error) {
	if _, err := uc.scheduleRepo.GetByID(ctx, scheduleID); err != nil {
		return nil, err
	}

	pending, err := uc.scheduleRepo.ListPendingBySchedule(ctx, scheduleID)
	if err != nil {
		return nil, err
	}

	var posted []*domain.ScheduleEntry
	for _, entry := range pending {
		result, err := uc.PostEntry(ctx, entry.ID)
		if err != nil {
			uc.logger.Error().Err(err).
				Str("schedule_id", scheduleID).
				Str("entry_id", entry.ID).
				Msg("failed to post schedule entry")

			continue
		}

		posted = append(posted, result)
	}

	return posted, nil
}

// BatchResult is the tally of a batch posting run.
type BatchResult struct {
	TotalProcessed int
	SuccessCount   int
	ErrorCount     int
}

// ProcessDueAutoPost posts every auto-post-eligible entry due on or before
// asOf. Failures are counted and logged per entry, never aborting the batch
// or rolling back entries already posted.
func (uc *ScheduleUseCase) ProcessDueAutoPost(ctx context.Context, asOf time.Time) (BatchResult, error) {
	if uc.metrics != nil {
		uc.metrics.AutoPostRuns.Inc()
	}

	due, err := uc.scheduleRepo.ListDueForAutoPost(ctx, asOf)
	if err != nil {
		return BatchResult{}, err
	}

	result := BatchResult{TotalProcessed: len(due)}

	for _, entry := range due {
		if _, err := uc.PostEntry(ctx, entry.ID); err != nil {
			result.ErrorCount++
			if uc.metrics != nil {
				uc.metrics.AutoPostFailures.Inc()
			}
			uc.logger.Error().Err(err).
				Str("entry_id", entry.ID).
				Str("schedule_id", entry.ScheduleID).
				Int("period", entry.PeriodNo).
				Msg("auto-post failed for schedule entry")

			continue
		}

		result.SuccessCount++
	}

	uc.logger.Info().
		Int("total", result.TotalProcessed).
		Int("success", result.SuccessCount).
		Int("errors", result.ErrorCount).
		Time("as_of", asOf).
		Msg("auto-post batch finished")

	return result, nil
}

// buildJournal assembles the two-line recognition journal for one period.
// The debit/credit account assignment comes from the schedule-type role
// table.
func (uc *ScheduleUseCase) buildJournal(schedule *domain.Schedule, entry *domain.ScheduleEntry) (*domain.Journal, error) {
	roles, ok := domain.RolesFor(schedule.Type)
	if !ok {
		return nil, fmt.Errorf("no posting roles for schedule type %q", schedule.Type)
	}

	amount := entry.Amount.Round(domain.MoneyScale)
	now := time.Now().UTC()
	description := fmt.Sprintf("%s - period %d of %d", schedule.Name, entry.PeriodNo, schedule.Periods)

	journal := &domain.Journal{
		ID:          uc.idGen.Generate(),
		Date:        entry.PeriodEnd,
		Description: description,
		Status:      domain.JournalDraft,
		CreatedAt:   now,
	}

	journal.Lines = []domain.EntryLine{
		{
			ID:          uc.idGen.Generate(),
			JournalID:   journal.ID,
			AccountID:   schedule.AccountForRole(roles.Debit),
			Debit:       amount,
			Credit:      decimal.Zero,
			Description: description,
			LineNo:      1,
			Date:        entry.PeriodEnd,
			CreatedAt:   now,
		},
		{
			ID:          uc.idGen.Generate(),
			JournalID:   journal.ID,
			AccountID:   schedule.AccountForRole(roles.Credit),
			Debit:       decimal.Zero,
			Credit:      amount,
			Description: description,
			LineNo:      2,
			Date:        entry.PeriodEnd,
			CreatedAt:   now,
		},
	}

	if err := journal.Validate(); err != nil {
		return nil, err
	}

	return journal, nil
}
