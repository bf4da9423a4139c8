package domain

import (
	"fmt"
	"time"
)

// Side is the posting side of a template line.
type Side string

const (
	SideDebit  Side = "DEBIT"
	SideCredit Side = "CREDIT"
)

// TemplateLine is one declarative line of a template: the account to hit,
// the side to hit it on, and the formula deriving the line amount from the
// execution amount.
type TemplateLine struct {
	ID          string
	TemplateID  string
	AccountID   string
	Side        Side
	Formula     string
	Description string
	LineNo      int
}

// Template is a reusable recipe turning one input amount into a balanced
// journal. Usage statistics are updated only after a successful execution.
type Template struct {
	ID         string
	Name       string
	Active     bool
	Lines      []TemplateLine
	UseCount   int64
	LastUsedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ShapeProblems returns every structural problem with the template: too few
// lines, a missing debit or credit side, or an inactive template. Balance is
// not provable here; it is checked after formula evaluation.
func (t *Template) ShapeProblems() []string {
	var problems []string

	if !t.Active {
		problems = append(problems, fmt.Sprintf("template %s is not active", t.Name))
	}

	if len(t.Lines) < 2 {
		problems = append(problems, "template must have at least two lines")
	}

	hasDebit, hasCredit := false, false
	for _, l := range t.Lines {
		switch l.Side {
		case SideDebit:
			hasDebit = true
		case SideCredit:
			hasCredit = true
		default:
			problems = append(problems, fmt.Sprintf("line %d has unknown side %q", l.LineNo, l.Side))
		}
	}

	if !hasDebit {
		problems = append(problems, "template must have at least one debit line")
	}

	if !hasCredit {
		problems = append(problems, "template must have at least one credit line")
	}

	return problems
}
