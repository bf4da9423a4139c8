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

func salesTemplate() *domain.Template {
	return &domain.Template{
		ID:     "tpl-sales",
		Name:   "Cash sale with VAT",
		Active: true,
		Lines: []domain.TemplateLine{
			{ID: "l-1", TemplateID: "tpl-sales", AccountID: "acc-cash", Side: domain.SideDebit, Formula: "amount * 1.11", Description: "Cash received", LineNo: 1},
			{ID: "l-2", TemplateID: "tpl-sales", AccountID: "acc-revenue", Side: domain.SideCredit, Formula: "amount", LineNo: 2},
			{ID: "l-3", TemplateID: "tpl-sales", AccountID: "acc-vat-out", Side: domain.SideCredit, Formula: "amount * 0.11", Description: "Output VAT", LineNo: 3},
		},
	}
}

func validContext() usecase.ExecutionContext {
	return usecase.ExecutionContext{
		Date:        time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC),
		Amount:      decimal.NewFromInt(1_000_000),
		Description: "Invoice INV-0042",
	}
}

func newTemplateUseCase(tplRepo *mocks.MockTemplateRepository, journalRepo *mocks.MockJournalRepository, txMgr *mocks.MockTransactionManager) *usecase.TemplateUseCase {
	return usecase.NewTemplateUseCase(txMgr, tplRepo, journalRepo, mocks.NewMockIDGenerator(), nil, nil, zerolog.Nop())
}

func TestTemplateUseCase_Execute(t *testing.T) {
	tplRepo := mocks.NewMockTemplateRepository()
	tplRepo.Add(salesTemplate())
	journalRepo := mocks.NewMockJournalRepository()
	txMgr := mocks.NewMockTransactionManager()

	uc := newTemplateUseCase(tplRepo, journalRepo, txMgr)

	journal, err := uc.Execute(context.Background(), "tpl-sales", validContext())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if journal.Status != domain.JournalPosted {
		t.Errorf("journal status = %s, want POSTED", journal.Status)
	}

	if len(journal.Lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(journal.Lines))
	}

	debit, credit := journal.Totals()
	if !debit.Equal(credit) {
		t.Errorf("unbalanced journal: debit %s, credit %s", debit, credit)
	}

	want := decimal.NewFromInt(1_110_000)
	if !debit.Equal(want) {
		t.Errorf("total debit = %s, want %s", debit, want)
	}

	if len(journalRepo.Posted()) != 1 {
		t.Error("journal was not persisted as posted")
	}

	if len(txMgr.Transactions) != 1 || !txMgr.Transactions[0].Committed {
		t.Error("posting did not commit exactly one transaction")
	}

	stored, _ := tplRepo.GetByID(context.Background(), "tpl-sales")
	if stored.UseCount != 1 {
		t.Errorf("use count = %d, want 1", stored.UseCount)
	}
	if stored.LastUsedAt == nil {
		t.Error("last-used time not stamped")
	}
}

func TestTemplateUseCase_Execute_ValidationAccumulates(t *testing.T) {
	inactive := salesTemplate()
	inactive.Active = false
	inactive.Lines = inactive.Lines[:1] // single debit line

	tplRepo := mocks.NewMockTemplateRepository()
	tplRepo.Add(inactive)
	journalRepo := mocks.NewMockJournalRepository()
	txMgr := mocks.NewMockTransactionManager()

	uc := newTemplateUseCase(tplRepo, journalRepo, txMgr)

	_, err := uc.Execute(context.Background(), "tpl-sales", usecase.ExecutionContext{
		Amount: decimal.NewFromInt(-5),
	})
	if err == nil {
		t.Fatal("expected validation error")
	}

	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("error is %T, want *domain.ValidationError", err)
	}

	// inactive, <2 lines, no credit line, zero date, non-positive amount,
	// blank description
	if len(ve.Problems) != 6 {
		t.Errorf("got %d problems, want 6: %v", len(ve.Problems), ve.Problems)
	}

	if len(txMgr.Transactions) != 0 {
		t.Error("validation failure must not open a transaction")
	}

	if len(journalRepo.Posted()) != 0 {
		t.Error("validation failure must not persist anything")
	}
}

func TestTemplateUseCase_Execute_WhitespaceDescription(t *testing.T) {
	tplRepo := mocks.NewMockTemplateRepository()
	tplRepo.Add(salesTemplate())
	journalRepo := mocks.NewMockJournalRepository()
	txMgr := mocks.NewMockTransactionManager()

	uc := newTemplateUseCase(tplRepo, journalRepo, txMgr)

	ec := validContext()
	ec.Description = " \t "

	_, err := uc.Execute(context.Background(), "tpl-sales", ec)

	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("error is %T, want *domain.ValidationError", err)
	}

	if len(ve.Problems) != 1 || ve.Problems[0] != "description is required" {
		t.Errorf("problems = %v, want only the description problem", ve.Problems)
	}

	if len(journalRepo.Posted()) != 0 || len(txMgr.Transactions) != 0 {
		t.Error("whitespace-only description must not post anything")
	}
}

func TestTemplateUseCase_Execute_UnbalancedTemplate(t *testing.T) {
	asymmetric := &domain.Template{
		ID:     "tpl-bad",
		Name:   "Asymmetric",
		Active: true,
		Lines: []domain.TemplateLine{
			{AccountID: "acc-cash", Side: domain.SideDebit, Formula: "amount", LineNo: 1},
			{AccountID: "acc-revenue", Side: domain.SideCredit, Formula: "amount * 0.9", LineNo: 2},
		},
	}

	tplRepo := mocks.NewMockTemplateRepository()
	tplRepo.Add(asymmetric)
	journalRepo := mocks.NewMockJournalRepository()
	txMgr := mocks.NewMockTransactionManager()

	uc := newTemplateUseCase(tplRepo, journalRepo, txMgr)

	_, err := uc.Execute(context.Background(), "tpl-bad", validContext())
	if !errors.Is(err, domain.ErrUnbalancedTemplate) {
		t.Errorf("got %v, want ErrUnbalancedTemplate", err)
	}

	if len(journalRepo.Posted()) != 0 {
		t.Error("unbalanced expansion must not persist anything")
	}
}

func TestTemplateUseCase_Execute_FormulaError(t *testing.T) {
	broken := salesTemplate()
	broken.Lines[0].Formula = "subtotal * 2"

	tplRepo := mocks.NewMockTemplateRepository()
	tplRepo.Add(broken)

	uc := newTemplateUseCase(tplRepo, mocks.NewMockJournalRepository(), mocks.NewMockTransactionManager())

	_, err := uc.Execute(context.Background(), "tpl-sales", validContext())

	var fe *domain.FormulaError
	if !errors.As(err, &fe) {
		t.Errorf("error is %T, want *domain.FormulaError", err)
	}
}

func TestTemplateUseCase_Execute_TemplateNotFound(t *testing.T) {
	uc := newTemplateUseCase(mocks.NewMockTemplateRepository(), mocks.NewMockJournalRepository(), mocks.NewMockTransactionManager())

	_, err := uc.Execute(context.Background(), "missing", validContext())
	if !errors.Is(err, domain.ErrTemplateNotFound) {
		t.Errorf("got %v, want ErrTemplateNotFound", err)
	}
}

func TestTemplateUseCase_Execute_UsageNotRecordedOnFailure(t *testing.T) {
	tplRepo := mocks.NewMockTemplateRepository()
	tplRepo.Add(salesTemplate())
	journalRepo := mocks.NewMockJournalRepository()
	journalRepo.CreateJournalFunc = func(ctx context.Context, tx usecase.Transaction, journal *domain.Journal) error {
		return errors.New("constraint violation")
	}

	uc := newTemplateUseCase(tplRepo, journalRepo, mocks.NewMockTransactionManager())

	if _, err := uc.Execute(context.Background(), "tpl-sales", validContext()); err == nil {
		t.Fatal("expected persistence error")
	}

	stored, _ := tplRepo.GetByID(context.Background(), "tpl-sales")
	if stored.UseCount != 0 {
		t.Errorf("use count = %d after failed execution, want 0", stored.UseCount)
	}
}

func TestTemplateUseCase_Preview(t *testing.T) {
	tplRepo := mocks.NewMockTemplateRepository()
	tplRepo.Add(salesTemplate())
	journalRepo := mocks.NewMockJournalRepository()
	txMgr := mocks.NewMockTransactionManager()

	uc := newTemplateUseCase(tplRepo, journalRepo, txMgr)

	result, err := uc.Preview(context.Background(), "tpl-sales", validContext())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.Valid {
		t.Fatalf("preview invalid: %v", result.Problems)
	}

	if len(result.Lines) != 3 {
		t.Errorf("got %d lines, want 3", len(result.Lines))
	}

	if !result.TotalDebit.Equal(result.TotalCredit) {
		t.Errorf("preview unbalanced: %s vs %s", result.TotalDebit, result.TotalCredit)
	}

	if len(journalRepo.Posted()) != 0 || len(txMgr.Transactions) != 0 {
		t.Error("preview must not persist or open transactions")
	}
}

func TestTemplateUseCase_Preview_ReportsProblemsInsteadOfFailing(t *testing.T) {
	tplRepo := mocks.NewMockTemplateRepository()
	tplRepo.Add(salesTemplate())

	uc := newTemplateUseCase(tplRepo, mocks.NewMockJournalRepository(), mocks.NewMockTransactionManager())

	result, err := uc.Preview(context.Background(), "tpl-sales", usecase.ExecutionContext{
		Date:   time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC),
		Amount: decimal.Zero,
	})
	if err != nil {
		t.Fatalf("preview must not raise validation problems: %v", err)
	}

	if result.Valid {
		t.Error("preview of invalid context reported valid")
	}

	if len(result.Problems) != 2 {
		t.Errorf("got %d problems, want 2: %v", len(result.Problems), result.Problems)
	}
}

func TestTemplateUseCase_ValidateFormulas(t *testing.T) {
	broken := salesTemplate()
	broken.Lines[2].Formula = "amount / 0"

	uc := newTemplateUseCase(mocks.NewMockTemplateRepository(), mocks.NewMockJournalRepository(), mocks.NewMockTransactionManager())

	problems := uc.ValidateFormulas(broken)
	if len(problems) != 1 {
		t.Fatalf("got %d problems, want 1: %v", len(problems), problems)
	}
}

func TestTemplateUseCase_ListTemplates_DefaultsPageSize(t *testing.T) {
	tplRepo := mocks.NewMockTemplateRepository()
	var capturedLimit, capturedOffset int
	tplRepo.ListFunc = func(_ context.Context, limit, offset int) ([]*domain.Template, error) {
		capturedLimit, capturedOffset = limit, offset
		return nil, nil
	}

	uc := newTemplateUseCase(tplRepo, mocks.NewMockJournalRepository(), mocks.NewMockTransactionManager())

	if _, err := uc.ListTemplates(context.Background(), 0, -3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if capturedLimit != usecase.DefaultPageSize {
		t.Errorf("limit = %d, want default %d", capturedLimit, usecase.DefaultPageSize)
	}

	if capturedOffset != 0 {
		t.Errorf("offset = %d, want 0", capturedOffset)
	}
}
