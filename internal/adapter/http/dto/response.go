package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/nusabooks/nusabooks/internal/domain"
	"github.com/nusabooks/nusabooks/internal/usecase"
)

// JournalResponse represents a journal in API responses.
type JournalResponse struct {
	ID          string               `json:"id"`
	Date        time.Time            `json:"date"`
	Description string               `json:"description"`
	Status      domain.JournalStatus `json:"status"`
	Lines       []EntryLineResponse  `json:"lines"`
	CreatedAt   time.Time            `json:"created_at"`
	PostedAt    *time.Time           `json:"posted_at,omitempty"`
}

// EntryLineResponse represents one journal line in API responses.
type EntryLineResponse struct {
	ID          string          `json:"id"`
	AccountID   string          `json:"account_id"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description"`
	LineNo      int             `json:"line_no"`
}

// JournalFromDomain converts a domain journal to a response.
func JournalFromDomain(j *domain.Journal) *JournalResponse {
	resp := &JournalResponse{
		ID:          j.ID,
		Date:        j.Date,
		Description: j.Description,
		Status:      j.Status,
		Lines:       linesFromDomain(j.Lines),
		CreatedAt:   j.CreatedAt,
		PostedAt:    j.PostedAt,
	}

	return resp
}

func linesFromDomain(lines []domain.EntryLine) []EntryLineResponse {
	result := make([]EntryLineResponse, len(lines))
	for i, l := range lines {
		result[i] = EntryLineResponse{
			ID:          l.ID,
			AccountID:   l.AccountID,
			Debit:       l.Debit,
			Credit:      l.Credit,
			Description: l.Description,
			LineNo:      l.LineNo,
		}
	}
	return result
}

// PreviewResponse represents a template preview in API responses.
type PreviewResponse struct {
	Valid       bool                `json:"valid"`
	Problems    []string            `json:"problems,omitempty"`
	Lines       []EntryLineResponse `json:"lines"`
	TotalDebit  decimal.Decimal     `json:"total_debit"`
	TotalCredit decimal.Decimal     `json:"total_credit"`
}

// PreviewFromUseCase converts a preview result to a response.
func PreviewFromUseCase(p *usecase.PreviewResult) *PreviewResponse {
	return &PreviewResponse{
		Valid:       p.Valid,
		Problems:    p.Problems,
		Lines:       linesFromDomain(p.Lines),
		TotalDebit:  p.TotalDebit,
		TotalCredit: p.TotalCredit,
	}
}

// ScheduleEntryResponse represents a schedule entry in API responses.
type ScheduleEntryResponse struct {
	ID          string                     `json:"id"`
	ScheduleID  string                     `json:"schedule_id"`
	PeriodNo    int                        `json:"period_no"`
	PeriodStart time.Time                  `json:"period_start"`
	PeriodEnd   time.Time                  `json:"period_end"`
	Amount      decimal.Decimal            `json:"amount"`
	Status      domain.ScheduleEntryStatus `json:"status"`
	JournalID   *string                    `json:"journal_id,omitempty"`
	PostedAt    *time.Time                 `json:"posted_at,omitempty"`
}

// ScheduleEntryFromDomain converts a domain schedule entry to a response.
func ScheduleEntryFromDomain(e *domain.ScheduleEntry) *ScheduleEntryResponse {
	return &ScheduleEntryResponse{
		ID:          e.ID,
		ScheduleID:  e.ScheduleID,
		PeriodNo:    e.PeriodNo,
		PeriodStart: e.PeriodStart,
		PeriodEnd:   e.PeriodEnd,
		Amount:      e.Amount,
		Status:      e.Status,
		JournalID:   e.JournalID,
		PostedAt:    e.PostedAt,
	}
}

// ScheduleEntriesFromDomain converts domain schedule entries to responses.
func ScheduleEntriesFromDomain(entries []*domain.ScheduleEntry) []*ScheduleEntryResponse {
	result := make([]*ScheduleEntryResponse, len(entries))
	for i, e := range entries {
		result[i] = ScheduleEntryFromDomain(e)
	}
	return result
}

// BatchResultResponse represents the tally of a batch posting run.
type BatchResultResponse struct {
	TotalProcessed int `json:"total_processed"`
	SuccessCount   int `json:"success_count"`
	ErrorCount     int `json:"error_count"`
}

// BatchResultFromUseCase converts a batch result to a response.
func BatchResultFromUseCase(b usecase.BatchResult) BatchResultResponse {
	return BatchResultResponse{
		TotalProcessed: b.TotalProcessed,
		SuccessCount:   b.SuccessCount,
		ErrorCount:     b.ErrorCount,
	}
}

// LedgerLineResponse is one posted line with its running balance.
type LedgerLineResponse struct {
	Line           EntryLineResponse `json:"line"`
	Date           time.Time         `json:"date"`
	RunningBalance decimal.Decimal   `json:"running_balance"`
}

// GeneralLedgerResponse represents a general ledger report in API responses.
type GeneralLedgerResponse struct {
	AccountID      string               `json:"account_id"`
	AccountCode    string               `json:"account_code"`
	AccountName    string               `json:"account_name"`
	Polarity       domain.Polarity      `json:"polarity"`
	StartDate      time.Time            `json:"start_date"`
	EndDate        time.Time            `json:"end_date"`
	OpeningBalance decimal.Decimal      `json:"opening_balance"`
	TotalDebit     decimal.Decimal      `json:"total_debit"`
	TotalCredit    decimal.Decimal      `json:"total_credit"`
	ClosingBalance decimal.Decimal      `json:"closing_balance"`
	Lines          []LedgerLineResponse `json:"lines"`
}

// GeneralLedgerFromUseCase converts ledger data to a response.
func GeneralLedgerFromUseCase(d *usecase.GeneralLedgerData) *GeneralLedgerResponse {
	lines := make([]LedgerLineResponse, len(d.LineItems))
	for i, item := range d.LineItems {
		lines[i] = LedgerLineResponse{
			Line: EntryLineResponse{
				ID:          item.Line.ID,
				AccountID:   item.Line.AccountID,
				Debit:       item.Line.Debit,
				Credit:      item.Line.Credit,
				Description: item.Line.Description,
				LineNo:      item.Line.LineNo,
			},
			Date:           item.Line.Date,
			RunningBalance: item.RunningBalance,
		}
	}

	return &GeneralLedgerResponse{
		AccountID:      d.Account.ID,
		AccountCode:    d.Account.Code,
		AccountName:    d.Account.Name,
		Polarity:       d.Account.Polarity,
		StartDate:      d.StartDate,
		EndDate:        d.EndDate,
		OpeningBalance: d.OpeningBalance,
		TotalDebit:     d.TotalDebit,
		TotalCredit:    d.TotalCredit,
		ClosingBalance: d.ClosingBalance,
		Lines:          lines,
	}
}

// TrialBalanceRowResponse is one account's posted totals.
type TrialBalanceRowResponse struct {
	AccountID string          `json:"account_id"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
}

// TrialBalanceResponse represents a trial balance report in API responses.
type TrialBalanceResponse struct {
	AsOf        time.Time                 `json:"as_of"`
	Rows        []TrialBalanceRowResponse `json:"rows"`
	TotalDebit  decimal.Decimal           `json:"total_debit"`
	TotalCredit decimal.Decimal           `json:"total_credit"`
}

// TrialBalanceFromUseCase converts a trial balance report to a response.
func TrialBalanceFromUseCase(r *usecase.TrialBalanceReport) *TrialBalanceResponse {
	rows := make([]TrialBalanceRowResponse, len(r.Rows))
	for i, row := range r.Rows {
		rows[i] = TrialBalanceRowResponse{
			AccountID: row.AccountID,
			Code:      row.Code,
			Name:      row.Name,
			Debit:     row.Debit,
			Credit:    row.Credit,
		}
	}

	return &TrialBalanceResponse{
		AsOf:        r.AsOf,
		Rows:        rows,
		TotalDebit:  r.TotalDebit,
		TotalCredit: r.TotalCredit,
	}
}

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID       string          `json:"id"`
	Code     string          `json:"code"`
	Name     string          `json:"name"`
	Polarity domain.Polarity `json:"polarity"`
	ParentID *string         `json:"parent_id,omitempty"`
	Active   bool            `json:"active"`
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = &AccountResponse{
			ID:       a.ID,
			Code:     a.Code,
			Name:     a.Name,
			Polarity: a.Polarity,
			ParentID: a.ParentID,
			Active:   a.Active,
		}
	}
	return result
}

// ListAccountsResponse represents a paginated account listing.
type ListAccountsResponse struct {
	Accounts []*AccountResponse `json:"accounts"`
	Total    int64              `json:"total"`
}

// TemplateLineResponse represents one template line in API responses.
type TemplateLineResponse struct {
	AccountID   string      `json:"account_id"`
	Side        domain.Side `json:"side"`
	Formula     string      `json:"formula"`
	Description string      `json:"description,omitempty"`
	LineNo      int         `json:"line_no"`
}

// TemplateResponse represents a posting template in API responses.
type TemplateResponse struct {
	ID         string                 `json:"id"`
	Name       string                 `json:"name"`
	Active     bool                   `json:"active"`
	Lines      []TemplateLineResponse `json:"lines"`
	UseCount   int64                  `json:"use_count"`
	LastUsedAt *time.Time             `json:"last_used_at,omitempty"`
}

// TemplateFromDomain converts a domain template to a response.
func TemplateFromDomain(t *domain.Template) *TemplateResponse {
	lines := make([]TemplateLineResponse, len(t.Lines))
	for i, l := range t.Lines {
		lines[i] = TemplateLineResponse{
			AccountID:   l.AccountID,
			Side:        l.Side,
			Formula:     l.Formula,
			Description: l.Description,
			LineNo:      l.LineNo,
		}
	}

	return &TemplateResponse{
		ID:         t.ID,
		Name:       t.Name,
		Active:     t.Active,
		Lines:      lines,
		UseCount:   t.UseCount,
		LastUsedAt: t.LastUsedAt,
	}
}

// TemplatesFromDomain converts domain templates to responses.
func TemplatesFromDomain(templates []*domain.Template) []*TemplateResponse {
	result := make([]*TemplateResponse, len(templates))
	for i, t := range templates {
		result[i] = TemplateFromDomain(t)
	}
	return result
}

// ListTemplatesResponse represents a paginated template listing.
type ListTemplatesResponse struct {
	Templates []*TemplateResponse `json:"templates"`
	Total     int64               `json:"total"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error    string   `json:"error"`
	Message  string   `json:"message,omitempty"`
	Problems []string `json:"problems,omitempty"`
}
