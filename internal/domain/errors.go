package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// Not-found errors
	ErrAccountNotFound       = errors.New("account not found")
	ErrTemplateNotFound      = errors.New("template not found")
	ErrScheduleNotFound      = errors.New("schedule not found")
	ErrScheduleEntryNotFound = errors.New("schedule entry not found")
	ErrJournalNotFound       = errors.New("journal not found")

	// State errors
	ErrEntryNotPending    = errors.New("schedule entry is not pending")
	ErrScheduleInactive   = errors.New("schedule is not active")
	ErrJournalNotDraft    = errors.New("journal is not in draft state")
	ErrUnbalancedTemplate = errors.New("template produced unbalanced entries")
	ErrUnbalancedJournal  = errors.New("journal debits do not equal credits")

	// Arithmetic errors
	ErrDivisionByZero = errors.New("division by zero")
)

// ValidationError accumulates every problem found in a template or execution
// context. It is always raised before any mutation.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Problems, "; ")
}

// NewValidationError returns a ValidationError, or nil when there are no
// problems.
func NewValidationError(problems []string) error {
	if len(problems) == 0 {
		return nil
	}

	return &ValidationError{Problems: problems}
}

// FormulaError reports an unparseable or semantically invalid formula,
// carrying the offending formula text.
type FormulaError struct {
	Formula string
	Cause   error
}

func (e *FormulaError) Error() string {
	return fmt.Sprintf("invalid formula %q: %v", e.Formula, e.Cause)
}

func (e *FormulaError) Unwrap() error {
	return e.Cause
}
