package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/nusabooks/nusabooks/internal/domain"
	"github.com/nusabooks/nusabooks/internal/infrastructure/metrics"
)

// ReportUseCase produces aging and tax reports from posted ledger data and
// outstanding documents.
type ReportUseCase struct {
	accountRepo  AccountRepository
	journalRepo  JournalRepository
	documentRepo DocumentRepository
	cache        Cache
	cacheTTL     time.Duration
	metrics      *metrics.Metrics
	logger       zerolog.Logger
}

// NewReportUseCase creates a new ReportUseCase. Cache and metrics are
// optional; pass nil to disable them. A non-positive cacheTTL falls back to
// ReportCacheTTL.
func NewReportUseCase(
	accountRepo AccountRepository,
	journalRepo JournalRepository,
	documentRepo DocumentRepository,
	cache Cache,
	cacheTTL time.Duration,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *ReportUseCase {
	if cacheTTL <= 0 {
		cacheTTL = ReportCacheTTL
	}

	return &ReportUseCase{
		accountRepo:  accountRepo,
		journalRepo:  journalRepo,
		documentRepo: documentRepo,
		cache:        cache,
		cacheTTL:     cacheTTL,
		metrics:      m,
		logger:       logger,
	}
}

// BucketTotals holds one amount per aging bucket plus their sum.
type BucketTotals struct {
	Current    decimal.Decimal `json:"current"`
	Days1To30  decimal.Decimal `json:"days_1_30"`
	Days31To60 decimal.Decimal `json:"days_31_60"`
	Days61To90 decimal.Decimal `json:"days_61_90"`
	Over90     decimal.Decimal `json:"over_90"`
	Total      decimal.Decimal `json:"total"`
}

func zeroBuckets() BucketTotals {
	return BucketTotals{
		Current:    decimal.Zero,
		Days1To30:  decimal.Zero,
		Days31To60: decimal.Zero,
		Days61To90: decimal.Zero,
		Over90:     decimal.Zero,
		Total:      decimal.Zero,
	}
}

func (b *BucketTotals) add(bucket domain.AgingBucket, amount decimal.Decimal) {
	switch bucket {
	case domain.BucketCurrent:
		b.Current = b.Current.Add(amount)
	case domain.Bucket1To30:
		b.Days1To30 = b.Days1To30.Add(amount)
	case domain.Bucket31To60:
		b.Days31To60 = b.Days31To60.Add(amount)
	case domain.Bucket61To90:
		b.Days61To90 = b.Days61To90.Add(amount)
	case domain.BucketOver90:
		b.Over90 = b.Over90.Add(amount)
	}

	b.Total = b.Total.Add(amount)
}

// AgingRow is one counterparty's bucketed exposure.
type AgingRow struct {
	ContactID   string       `json:"contact_id"`
	ContactCode string       `json:"contact_code"`
	ContactName string       `json:"contact_name"`
	Buckets     BucketTotals `json:"buckets"`
}

// AgingReport is the bucketed outstanding exposure for receivables or
// payables as of a date.
type AgingReport struct {
	Kind   domain.DocumentKind `json:"kind"`
	AsOf   time.Time           `json:"as_of"`
	Rows   []AgingRow          `json:"rows"`
	Totals BucketTotals        `json:"totals"`
}

// Aging groups outstanding documents by counterparty and classifies each
// strictly-positive remainder into exactly one overdue bucket. Fully paid
// documents never appear, in rows or totals.
func (uc *ReportUseCase) Aging(ctx context.Context, kind domain.DocumentKind, asOf time.Time) (*AgingReport, error) {
	start := time.Now()
	cacheKey := fmt.Sprintf("report:aging:%s:%s", kind, asOf.Format("2006-01-02"))

	if cached, ok := uc.cacheGet(ctx, cacheKey); ok {
		var report AgingReport
		if err := json.Unmarshal(cached, &report); err == nil {
			uc.countCache("hit")
			return &report, nil
		}
	}
	uc.countCache("miss")

	docs, err := uc.documentRepo.ListOutstanding(ctx, kind, asOf)
	if err != nil {
		return nil, err
	}

	rowsByContact := make(map[string]*AgingRow)

	for _, doc := range docs {
		if doc.BalanceDue.LessThanOrEqual(decimal.Zero) {
			continue
		}

		row, ok := rowsByContact[doc.ContactID]
		if !ok {
			row = &AgingRow{
				ContactID:   doc.ContactID,
				ContactCode: doc.ContactCode,
				ContactName: doc.ContactName,
				Buckets:     zeroBuckets(),
			}
			rowsByContact[doc.ContactID] = row
		}

		bucket := domain.ClassifyOverdue(domain.DaysOverdue(doc.DueDate, asOf))
		row.Buckets.add(bucket, doc.BalanceDue)
	}

	report := &AgingReport{
		Kind:   kind,
		AsOf:   asOf,
		Rows:   make([]AgingRow, 0, len(rowsByContact)),
		Totals: zeroBuckets(),
	}

	for _, row := range rowsByContact {
		report.Rows = append(report.Rows, *row)
	}

	sort.Slice(report.Rows, func(i, j int) bool {
		return report.Rows[i].ContactName < report.Rows[j].ContactName
	})

	for _, row := range report.Rows {
		report.Totals.Current = report.Totals.Current.Add(row.Buckets.Current)
		report.Totals.Days1To30 = report.Totals.Days1To30.Add(row.Buckets.Days1To30)
		report.Totals.Days31To60 = report.Totals.Days31To60.Add(row.Buckets.Days31To60)
		report.Totals.Days61To90 = report.Totals.Days61To90.Add(row.Buckets.Days61To90)
		report.Totals.Over90 = report.Totals.Over90.Add(row.Buckets.Over90)
		report.Totals.Total = report.Totals.Total.Add(row.Buckets.Total)
	}

	uc.cacheSet(ctx, cacheKey, report)
	uc.observeReport("aging", start)

	return report, nil
}

// TaxSummaryItem is one tax account's activity and signed balance over the
// period.
type TaxSummaryItem struct {
	AccountID string          `json:"account_id"`
	Code      string          `json:"code"`
	Label     string          `json:"label"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
	Balance   decimal.Decimal `json:"balance"`
}

// TaxSummaryReport is the signed position of the named tax accounts over a
// date window.
type TaxSummaryReport struct {
	StartDate    time.Time        `json:"start_date"`
	EndDate      time.Time        `json:"end_date"`
	Items        []TaxSummaryItem `json:"items"`
	TotalBalance decimal.Decimal  `json:"total_balance"`
}

// TaxSummary computes the signed balance of each named tax account over
// [start, end] using the same polarity rule as the general ledger.
func (uc *ReportUseCase) TaxSummary(ctx context.Context, accountIDs []string, start, end time.Time) (*TaxSummaryReport, error) {
	began := time.Now()

	report := &TaxSummaryReport{
		StartDate:    start,
		EndDate:      end,
		Items:        make([]TaxSummaryItem, 0, len(accountIDs)),
		TotalBalance: decimal.Zero,
	}

	for _, id := range accountIDs {
		account, err := uc.accountRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}

		debit, credit, err := uc.journalRepo.SumPostedInRange(ctx, id, start, end)
		if err != nil {
			return nil, err
		}

		balance := domain.SignedDelta(account.Polarity, debit, credit)

		report.Items = append(report.Items, TaxSummaryItem{
			AccountID: account.ID,
			Code:      account.Code,
			Label:     account.Name,
			Debit:     debit,
			Credit:    credit,
			Balance:   balance,
		})

		report.TotalBalance = report.TotalBalance.Add(balance)
	}

	uc.observeReport("tax_summary", began)

	return report, nil
}

// NetVATReport is the netted VAT position for a period. A positive net means
// an amount payable to the tax authority; a negative net is a refund
// position.
type NetVATReport struct {
	StartDate time.Time       `json:"start_date"`
	EndDate   time.Time       `json:"end_date"`
	OutputTax decimal.Decimal `json:"output_tax"`
	InputTax  decimal.Decimal `json:"input_tax"`
	Net       decimal.Decimal `json:"net"`
}

// NetVAT computes outputTax - inputTax over [start, end], each side being
// the signed polarity balance of its account.
func (uc *ReportUseCase) NetVAT(ctx context.Context, outputAccountID, inputAccountID string, start, end time.Time) (*NetVATReport, error) {
	began := time.Now()

	output, err := uc.signedBalance(ctx, outputAccountID, start, end)
	if err != nil {
		return nil, err
	}

	input, err := uc.signedBalance(ctx, inputAccountID, start, end)
	if err != nil {
		return nil, err
	}

	uc.observeReport("net_vat", began)

	return &NetVATReport{
		StartDate: start,
		EndDate:   end,
		OutputTax: output,
		InputTax:  input,
		Net:       output.Sub(input),
	}, nil
}

func (uc *ReportUseCase) signedBalance(ctx context.Context, accountID string, start, end time.Time) (decimal.Decimal, error) {
	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return decimal.Zero, err
	}

	debit, credit, err := uc.journalRepo.SumPostedInRange(ctx, accountID, start, end)
	if err != nil {
		return decimal.Zero, err
	}

	return domain.SignedDelta(account.Polarity, debit, credit), nil
}

func (uc *ReportUseCase) observeReport(name string, began time.Time) {
	if uc.metrics == nil {
		return
	}

	uc.metrics.ReportsGenerated.WithLabelValues(name).Inc()
	uc.metrics.ReportDuration.WithLabelValues(name).Observe(time.Since(began).Seconds())
}

func (uc *ReportUseCase) countCache(result string) {
	if uc.metrics != nil {
		uc.metrics.ReportCacheHits.WithLabelValues(result).Inc()
	}
}

func (uc *ReportUseCase) cacheGet(ctx context.Context, key string) ([]byte, bool) {
	if uc.cache == nil {
		return nil, false
	}

	value, err := uc.cache.Get(ctx, key)
	if err != nil || value == nil {
		return nil, false
	}

	return value, true
}

func (uc *ReportUseCase) cacheSet(ctx context.Context, key string, report any) {
	if uc.cache == nil {
		return
	}

	payload, err := json.Marshal(report)
	if err != nil {
		return
	}

	if err := uc.cache.Set(ctx, key, payload, uc.cacheTTL); err != nil {
		uc.logger.Debug().Err(err).Str("key", key).Msg("report cache write failed")
	}
}
