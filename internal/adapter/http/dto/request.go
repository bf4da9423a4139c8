package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/nusabooks/nusabooks/internal/usecase"
)

// ExecuteTemplateRequest represents a request to execute or preview a
// posting template against a single amount.
type ExecuteTemplateRequest struct {
	Date        time.Time       `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

// ToExecutionContext converts to use case input.
func (r *ExecuteTemplateRequest) ToExecutionContext() usecase.ExecutionContext {
	return usecase.ExecutionContext{
		Date:        r.Date,
		Amount:      r.Amount,
		Description: r.Description,
	}
}
