package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/nusabooks/nusabooks/internal/domain"
	"github.com/nusabooks/nusabooks/internal/formula"
	"github.com/nusabooks/nusabooks/internal/infrastructure/metrics"
)

// TemplateUseCase expands posting templates into balanced, posted journals.
type TemplateUseCase struct {
	txManager    TransactionManager
	templateRepo TemplateRepository
	journalRepo  JournalRepository
	idGen        IDGenerator
	retrier      Retrier
	metrics      *metrics.Metrics
	logger       zerolog.Logger
}

// NewTemplateUseCase creates a new TemplateUseCase. Retrier and metrics are
// optional; pass nil to disable them.
func NewTemplateUseCase(
	txManager TransactionManager,
	templateRepo TemplateRepository,
	journalRepo JournalRepository,
	idGen IDGenerator,
	retrier Retrier,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *TemplateUseCase {
	return &TemplateUseCase{
		txManager:    txManager,
		templateRepo: templateRepo,
		journalRepo:  journalRepo,
		idGen:        idGen,
		retrier:      retrier,
		metrics:      m,
		logger:       logger,
	}
}

// ExecutionContext is the single-amount input a template is executed
// against.
type ExecutionContext struct {
	Date        time.Time
	Amount      decimal.Decimal
	Description string
}

// problems returns every shape problem with the context itself.
func (ec ExecutionContext) problems() []string {
	var problems []string

	if ec.Date.IsZero() {
		problems = append(problems, "date is required")
	}

	if ec.Amount.LessThanOrEqual(decimal.Zero) {
		problems = append(problems, "amount must be positive")
	}

	if strings.TrimSpace(ec.Description) == "" {
		problems = append(problems, "description is required")
	}

	return problems
}

// Execute expands the template against the context, validates the result and
// persists it as one posted journal. Validation accumulates every problem
// found and nothing is written until all checks pass. Template usage
// statistics are updated only after the journal is committed.
func (uc *TemplateUseCase) Execute(ctx context.Context, templateID string, ec ExecutionContext) (*domain.Journal, error) {
	start := time.Now()

	template, err := uc.templateRepo.GetByID(ctx, templateID)
	if err != nil {
		return nil, err
	}

	problems := append(template.ShapeProblems(), ec.problems()...)
	if err := domain.NewValidationError(problems); err != nil {
		uc.countExecution("invalid")
		return nil, err
	}

	journal, err := uc.buildJournal(template, ec)
	if err != nil {
		uc.countExecution("rejected")
		return nil, err
	}

	postedAt := time.Now().UTC()

	err = retry(ctx, uc.retrier, func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		if err := uc.journalRepo.CreateJournal(ctx, tx, journal); err != nil {
			return err
		}

		if err := uc.journalRepo.MarkPosted(ctx, tx, journal.ID, postedAt); err != nil {
			return err
		}

		return tx.Commit(ctx)
	})
	if err != nil {
		uc.countExecution("error")
		return nil, err
	}

	if err := journal.Post(postedAt); err != nil {
		return nil, err
	}

	uc.countExecution("success")
	if uc.metrics != nil {
		uc.metrics.TemplateDuration.Observe(time.Since(start).Seconds())
	}

	if err := uc.templateRepo.RecordUsage(ctx, template.ID, postedAt); err != nil {
		// The journal is already committed; only the usage stamp is lost.
		uc.logger.Warn().Err(err).Str("template_id", template.ID).Msg("failed to record template usage")
	}

	return journal, nil
}

// ListTemplates returns templates ordered by name.
func (uc *TemplateUseCase) ListTemplates(ctx context.Context, limit, offset int) ([]*domain.Template, error) {
	limit = clampPageSize(limit)
	if offset < 0 {
		offset = 0
	}

	return uc.templateRepo.List(ctx, limit, offset)
}

// PreviewResult is the would-be outcome of an execution, with problems
// reported as data so callers can render partial feedback.
type PreviewResult struct {
	Valid       bool
	Problems    []string
	Lines       []domain.EntryLine
	TotalDebit  decimal.Decimal
	TotalCredit decimal.Decimal
}

// Preview runs the same expansion and validation as Execute without
// persisting anything.
func (uc *TemplateUseCase) Preview(ctx context.Context, templateID string, ec ExecutionContext) (*PreviewResult, error) {
	if uc.metrics != nil {
		uc.metrics.TemplatePreviews.Inc()
	}

	template, err := uc.templateRepo.GetByID(ctx, templateID)
	if err != nil {
		return nil, err
	}

	result := &PreviewResult{
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
	}

	result.Problems = append(template.ShapeProblems(), ec.problems()...)
	if len(result.Problems) > 0 {
		return result, nil
	}

	journal, err := uc.buildJournal(template, ec)
	if err != nil {
		result.Problems = append(result.Problems, err.Error())
		return result, nil
	}

	result.Valid = true
	result.Lines = journal.Lines
	result.TotalDebit, result.TotalCredit = journal.Totals()

	return result, nil
}

// ValidateFormulas dry-runs every line formula of a template, for authoring
// flows before the template is saved.
func (uc *TemplateUseCase) ValidateFormulas(template *domain.Template) []string {
	var problems []string

	for _, line := range template.Lines {
		for _, p := range formula.Validate(line.Formula) {
			problems = append(problems, fmt.Sprintf("line %d: %s", line.LineNo, p))
		}
	}

	return problems
}

// buildJournal evaluates every line formula and assembles the draft journal,
// enforcing the balance invariant before anything can be persisted.
func (uc *TemplateUseCase) buildJournal(template *domain.Template, ec ExecutionContext) (*domain.Journal, error) {
	now := time.Now().UTC()

	journal := &domain.Journal{
		ID:          uc.idGen.Generate(),
		Date:        ec.Date,
		Description: ec.Description,
		Status:      domain.JournalDraft,
		CreatedAt:   now,
	}

	for _, line := range template.Lines {
		amount, err := formula.Evaluate(line.Formula, ec.Amount)
		if err != nil {
			return nil, err
		}

		entry := domain.EntryLine{
			ID:          uc.idGen.Generate(),
			JournalID:   journal.ID,
			AccountID:   line.AccountID,
			Debit:       decimal.Zero,
			Credit:      decimal.Zero,
			Description: lineDescription(line.Description, ec.Description),
			LineNo:      line.LineNo,
			Date:        ec.Date,
			CreatedAt:   now,
		}

		if line.Side == domain.SideDebit {
			entry.Debit = amount
		} else {
			entry.Credit = amount
		}

		journal.Lines = append(journal.Lines, entry)
	}

	debit, credit := journal.Totals()
	if !debit.Equal(credit) {
		return nil, fmt.Errorf("%w: debit %s, credit %s", domain.ErrUnbalancedTemplate, debit, credit)
	}

	return journal, nil
}

func (uc *TemplateUseCase) countExecution(status string) {
	if uc.metrics != nil {
		uc.metrics.TemplateExecutions.WithLabelValues(status).Inc()
	}
}

func lineDescription(lineDesc, ctxDesc string) string {
	if lineDesc == "" {
		return ctxDesc
	}

	return lineDesc + " - " + ctxDesc
}
