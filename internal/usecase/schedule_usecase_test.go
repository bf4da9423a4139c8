package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/nusabooks/nusabooks/internal/domain"
	"github.com/nusabooks/nusabooks/internal/usecase"
	"github.com/nusabooks/nusabooks/internal/usecase/mocks"
)

func prepaidSchedule() *domain.Schedule {
	return &domain.Schedule{
		ID:              "sch-rent",
		Name:            "Office rent prepayment",
		Type:            domain.SchedulePrepaidExpense,
		TotalAmount:     decimal.NewFromInt(12_000),
		Periods:         12,
		SourceAccountID: "acc-prepaid-rent",
		TargetAccountID: "acc-rent-expense",
		Active:          true,
		AutoPost:        true,
	}
}

func pendingEntry(id string, period int, end time.Time) *domain.ScheduleEntry {
	return &domain.ScheduleEntry{
		ID:          id,
		ScheduleID:  "sch-rent",
		PeriodNo:    period,
		PeriodStart: end.AddDate(0, -1, 0),
		PeriodEnd:   end,
		Amount:      decimal.NewFromInt(1000),
		Status:      domain.SchedulePending,
	}
}

func newScheduleUseCase(schedRepo *mocks.MockScheduleRepository, journalRepo *mocks.MockJournalRepository) *usecase.ScheduleUseCase {
	return usecase.NewScheduleUseCase(
		mocks.NewMockTransactionManager(),
		schedRepo,
		journalRepo,
		mocks.NewMockIDGenerator(),
		nil,
		nil,
		zerolog.Nop(),
	)
}

func TestScheduleUseCase_PostEntry(t *testing.T) {
	schedRepo := mocks.NewMockScheduleRepository()
	schedRepo.AddSchedule(prepaidSchedule())
	schedRepo.AddEntry(pendingEntry("se-1", 1, time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)))
	journalRepo := mocks.NewMockJournalRepository()

	uc := newScheduleUseCase(schedRepo, journalRepo)

	entry, err := uc.PostEntry(context.Background(), "se-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if entry.Status != domain.SchedulePosted {
		t.Errorf("entry status = %s, want POSTED", entry.Status)
	}
	if entry.JournalID == nil {
		t.Fatal("journal not linked to entry")
	}
	if entry.PostedAt == nil || entry.GeneratedAt == nil {
		t.Error("posted/generated timestamps not stamped")
	}

	journal, err := journalRepo.GetByID(context.Background(), *entry.JournalID)
	if err != nil {
		t.Fatalf("posted journal not found: %v", err)
	}

	if len(journal.Lines) != 2 {
		t.Fatalf("got %d lines, want exactly 2", len(journal.Lines))
	}

	// Prepaid expense: debit the expense target, credit the prepaid source.
	debitLine, creditLine := journal.Lines[0], journal.Lines[1]
	if debitLine.AccountID != "acc-rent-expense" || !debitLine.Debit.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("debit line hit %s for %s", debitLine.AccountID, debitLine.Debit)
	}
	if creditLine.AccountID != "acc-prepaid-rent" || !creditLine.Credit.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("credit line hit %s for %s", creditLine.AccountID, creditLine.Credit)
	}

	// The persisted entry carries the same stamps as the returned one.
	stored, err := schedRepo.GetEntryByID(context.Background(), "se-1")
	if err != nil {
		t.Fatalf("stored entry not found: %v", err)
	}
	if stored.Status != domain.SchedulePosted {
		t.Errorf("stored status = %s, want POSTED", stored.Status)
	}
	if stored.JournalID == nil || *stored.JournalID != *entry.JournalID {
		t.Error("journal link not persisted")
	}
	if stored.PostedAt == nil || stored.GeneratedAt == nil {
		t.Error("posted/generated timestamps not persisted")
	}

	schedule, _ := schedRepo.GetByID(context.Background(), "sch-rent")
	if schedule.PostedCount != 1 {
		t.Errorf("posted count = %d, want 1", schedule.PostedCount)
	}
}

func TestScheduleUseCase_PostEntry_RoleAssignment(t *testing.T) {
	tests := []struct {
		scheduleType      domain.ScheduleType
		wantDebitAccount  string
		wantCreditAccount string
	}{
		{domain.SchedulePrepaidExpense, "acc-target", "acc-source"},
		{domain.ScheduleUnearnedRevenue, "acc-source", "acc-target"},
		{domain.ScheduleIntangibleAmortization, "acc-target", "acc-source"},
		{domain.ScheduleAccruedRevenue, "acc-source", "acc-target"},
	}

	for _, tt := range tests {
		t.Run(string(tt.scheduleType), func(t *testing.T) {
			schedRepo := mocks.NewMockScheduleRepository()
			schedRepo.AddSchedule(&domain.Schedule{
				ID:              "sch-1",
				Name:            "Schedule",
				Type:            tt.scheduleType,
				Periods:         1,
				SourceAccountID: "acc-source",
				TargetAccountID: "acc-target",
				Active:          true,
			})
			schedRepo.AddEntry(&domain.ScheduleEntry{
				ID:         "se-1",
				ScheduleID: "sch-1",
				PeriodNo:   1,
				PeriodEnd:  time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC),
				Amount:     decimal.NewFromInt(500),
				Status:     domain.SchedulePending,
			})
			journalRepo := mocks.NewMockJournalRepository()

			uc := newScheduleUseCase(schedRepo, journalRepo)

			entry, err := uc.PostEntry(context.Background(), "se-1")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			journal, _ := journalRepo.GetByID(context.Background(), *entry.JournalID)
			if journal.Lines[0].AccountID != tt.wantDebitAccount {
				t.Errorf("debit account = %s, want %s", journal.Lines[0].AccountID, tt.wantDebitAccount)
			}
			if journal.Lines[1].AccountID != tt.wantCreditAccount {
				t.Errorf("credit account = %s, want %s", journal.Lines[1].AccountID, tt.wantCreditAccount)
			}
		})
	}
}

func TestScheduleUseCase_PostEntry_Twice(t *testing.T) {
	schedRepo := mocks.NewMockScheduleRepository()
	schedRepo.AddSchedule(prepaidSchedule())
	schedRepo.AddEntry(pendingEntry("se-1", 1, time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)))

	uc := newScheduleUseCase(schedRepo, mocks.NewMockJournalRepository())

	if _, err := uc.PostEntry(context.Background(), "se-1"); err != nil {
		t.Fatalf("first post failed: %v", err)
	}

	_, err := uc.PostEntry(context.Background(), "se-1")
	if !errors.Is(err, domain.ErrEntryNotPending) {
		t.Errorf("second post: got %v, want ErrEntryNotPending", err)
	}

	schedule, _ := schedRepo.GetByID(context.Background(), "sch-rent")
	if schedule.PostedCount != 1 {
		t.Errorf("posted count = %d after double post attempt, want 1", schedule.PostedCount)
	}
}

func TestScheduleUseCase_PostEntry_StaleRead(t *testing.T) {
	// Two callers race on the same entry and both read it as pending. The
	// repository's pending-only update guard must reject the loser so only
	// one journal is ever committed for the period.
	periodEnd := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)

	schedRepo := mocks.NewMockScheduleRepository()
	schedRepo.AddSchedule(prepaidSchedule())
	schedRepo.AddEntry(pendingEntry("se-1", 1, periodEnd))

	schedRepo.GetEntryByIDFunc = func(ctx context.Context, entryID string) (*domain.ScheduleEntry, error) {
		return pendingEntry(entryID, 1, periodEnd), nil
	}

	txMgr := mocks.NewMockTransactionManager()
	uc := usecase.NewScheduleUseCase(
		txMgr,
		schedRepo,
		mocks.NewMockJournalRepository(),
		mocks.NewMockIDGenerator(),
		nil,
		nil,
		zerolog.Nop(),
	)

	if _, err := uc.PostEntry(context.Background(), "se-1"); err != nil {
		t.Fatalf("first post failed: %v", err)
	}

	_, err := uc.PostEntry(context.Background(), "se-1")
	if !errors.Is(err, domain.ErrEntryNotPending) {
		t.Fatalf("stale second post: got %v, want ErrEntryNotPending", err)
	}

	if len(txMgr.Transactions) != 2 {
		t.Fatalf("got %d transactions, want 2", len(txMgr.Transactions))
	}
	if !txMgr.Transactions[0].Committed {
		t.Error("winning post did not commit")
	}
	if txMgr.Transactions[1].Committed {
		t.Error("losing post must roll back, not commit")
	}
}

func TestScheduleUseCase_PostEntry_InactiveSchedule(t *testing.T) {
	schedule := prepaidSchedule()
	schedule.Active = false

	schedRepo := mocks.NewMockScheduleRepository()
	schedRepo.AddSchedule(schedule)
	schedRepo.AddEntry(pendingEntry("se-1", 1, time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)))
	journalRepo := mocks.NewMockJournalRepository()

	uc := newScheduleUseCase(schedRepo, journalRepo)

	_, err := uc.PostEntry(context.Background(), "se-1")
	if !errors.Is(err, domain.ErrScheduleInactive) {
		t.Errorf("got %v, want ErrScheduleInactive", err)
	}

	if len(journalRepo.Posted()) != 0 {
		t.Error("inactive schedule must not post")
	}
}

func TestScheduleUseCase_SkipEntry(t *testing.T) {
	schedRepo := mocks.NewMockScheduleRepository()
	schedRepo.AddSchedule(prepaidSchedule())
	schedRepo.AddEntry(pendingEntry("se-1", 1, time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)))

	uc := newScheduleUseCase(schedRepo, mocks.NewMockJournalRepository())

	entry, err := uc.SkipEntry(context.Background(), "se-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if entry.Status != domain.ScheduleSkipped {
		t.Errorf("status = %s, want SKIPPED", entry.Status)
	}

	// Skipped is terminal.
	if _, err := uc.PostEntry(context.Background(), "se-1"); !errors.Is(err, domain.ErrEntryNotPending) {
		t.Errorf("posting a skipped entry: got %v, want ErrEntryNotPending", err)
	}
}

func TestScheduleUseCase_PostAllPending_IsolatesFailures(t *testing.T) {
	schedRepo := mocks.NewMockScheduleRepository()
	schedRepo.AddSchedule(prepaidSchedule())
	for i := 1; i <= 3; i++ {
		schedRepo.AddEntry(pendingEntry("se-"+string(rune('0'+i)), i, time.Date(2026, time.Month(i), 28, 0, 0, 0, 0, time.UTC)))
	}

	// A zero-amount entry cannot form a balanced journal and must fail on
	// its own without blocking the others.
	malformed := pendingEntry("se-2", 2, time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC))
	malformed.Amount = decimal.Zero
	schedRepo.AddEntry(malformed)

	journalRepo := mocks.NewMockJournalRepository()
	uc := newScheduleUseCase(schedRepo, journalRepo)

	posted, err := uc.PostAllPending(context.Background(), "sch-rent")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(posted) != 2 {
		t.Errorf("got %d posted entries, want 2", len(posted))
	}

	// The failed entry stays pending.
	failed, _ := schedRepo.GetEntryByID(context.Background(), "se-2")
	if failed.Status != domain.SchedulePending {
		t.Errorf("failed entry status = %s, want PENDING", failed.Status)
	}
}

func TestScheduleUseCase_ProcessDueAutoPost(t *testing.T) {
	schedRepo := mocks.NewMockScheduleRepository()
	schedRepo.AddSchedule(prepaidSchedule())

	asOf := time.Date(2026, 4, 30, 0, 0, 0, 0, time.UTC)

	// Four due entries, one of which is malformed (unknown schedule type
	// triggers a per-entry failure), one entry not yet due.
	for i := 1; i <= 4; i++ {
		schedRepo.AddEntry(pendingEntry("se-"+string(rune('0'+i)), i, time.Date(2026, time.Month(i), 15, 0, 0, 0, 0, time.UTC)))
	}
	schedRepo.AddEntry(pendingEntry("se-5", 5, time.Date(2026, 5, 15, 0, 0, 0, 0, time.UTC)))

	malformed := pendingEntry("se-3", 3, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC))
	malformed.Amount = decimal.Zero
	schedRepo.AddEntry(malformed)

	journalRepo := mocks.NewMockJournalRepository()
	uc := newScheduleUseCase(schedRepo, journalRepo)

	result, err := uc.ProcessDueAutoPost(context.Background(), asOf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.TotalProcessed != 4 {
		t.Errorf("total processed = %d, want 4", result.TotalProcessed)
	}
	if result.SuccessCount != 3 {
		t.Errorf("success count = %d, want 3", result.SuccessCount)
	}
	if result.ErrorCount != 1 {
		t.Errorf("error count = %d, want 1", result.ErrorCount)
	}

	// The valid entries were all persisted despite the failure.
	posted := 0
	for _, id := range []string{"se-1", "se-2", "se-4"} {
		e, _ := schedRepo.GetEntryByID(context.Background(), id)
		if e.Status == domain.SchedulePosted {
			posted++
		}
	}
	if posted != 3 {
		t.Errorf("%d valid entries posted, want 3", posted)
	}
}
