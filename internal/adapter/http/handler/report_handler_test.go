package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/nusabooks/nusabooks/internal/adapter/http/dto"
	"github.com/nusabooks/nusabooks/internal/domain"
	"github.com/nusabooks/nusabooks/internal/usecase"
	"github.com/nusabooks/nusabooks/internal/usecase/mocks"
)

func newReportHandler(journalRepo *mocks.MockJournalRepository, documentRepo *mocks.MockDocumentRepository) *ReportHandler {
	accountRepo := mocks.NewMockAccountRepository()
	accountRepo.Add(&domain.Account{ID: "acc-cash", Code: "1000", Name: "Cash", Polarity: domain.PolarityDebit, Active: true})

	ledgerUC := usecase.NewLedgerUseCase(accountRepo, journalRepo)
	reportUC := usecase.NewReportUseCase(accountRepo, journalRepo, documentRepo, nil, 0, nil, zerolog.Nop())

	return NewReportHandler(ledgerUC, reportUC)
}

func TestReportHandler_TrialBalance(t *testing.T) {
	journalRepo := mocks.NewMockJournalRepository()
	journalRepo.SumPostedByAccountFunc = func(ctx context.Context, asOf time.Time) ([]usecase.AccountTotals, error) {
		return []usecase.AccountTotals{
			{AccountID: "acc-cash", Code: "1000", Name: "Cash", Polarity: domain.PolarityDebit,
				Debit: decimal.NewFromInt(300), Credit: decimal.NewFromInt(100)},
			{AccountID: "acc-revenue", Code: "4000", Name: "Revenue", Polarity: domain.PolarityCredit,
				Debit: decimal.NewFromInt(100), Credit: decimal.NewFromInt(300)},
		}, nil
	}
	handler := newReportHandler(journalRepo, mocks.NewMockDocumentRepository())

	req := httptest.NewRequest(http.MethodGet, "/reports/trial-balance?as_of=2026-06-30", nil)
	rec := httptest.NewRecorder()

	handler.TrialBalance(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.TrialBalanceResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}

	if len(resp.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(resp.Rows))
	}

	if !resp.TotalDebit.Equal(resp.TotalCredit) {
		t.Fatalf("trial balance out of balance: %s vs %s", resp.TotalDebit, resp.TotalCredit)
	}
}

func TestReportHandler_GeneralLedger_MissingAccount(t *testing.T) {
	handler := newReportHandler(mocks.NewMockJournalRepository(), mocks.NewMockDocumentRepository())

	req := httptest.NewRequest(http.MethodGet, "/reports/general-ledger", nil)
	rec := httptest.NewRecorder()

	handler.GeneralLedger(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestReportHandler_GeneralLedger_UnknownAccount(t *testing.T) {
	handler := newReportHandler(mocks.NewMockJournalRepository(), mocks.NewMockDocumentRepository())

	req := httptest.NewRequest(http.MethodGet, "/reports/general-ledger?account_id=nope&start_date=2026-01-01&end_date=2026-01-31", nil)
	rec := httptest.NewRecorder()

	handler.GeneralLedger(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestReportHandler_Aging(t *testing.T) {
	documentRepo := mocks.NewMockDocumentRepository()
	documentRepo.Documents = []*domain.OutstandingDocument{
		{ID: "inv-1", Kind: domain.DocumentReceivable, ContactID: "c-1", ContactName: "PT Maju",
			DueDate:    time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
			BalanceDue: decimal.NewFromInt(500)},
	}
	handler := newReportHandler(mocks.NewMockJournalRepository(), documentRepo)

	req := httptest.NewRequest(http.MethodGet, "/reports/aging?kind=receivable&as_of=2026-06-15", nil)
	rec := httptest.NewRecorder()

	handler.Aging(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp usecase.AgingReport
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}

	if len(resp.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(resp.Rows))
	}

	// 45 days overdue lands in the 31-60 bucket.
	if !resp.Rows[0].Buckets.Days31To60.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("expected 500 in 31-60 bucket, got %s", resp.Rows[0].Buckets.Days31To60)
	}
}

func TestReportHandler_Aging_BadKind(t *testing.T) {
	handler := newReportHandler(mocks.NewMockJournalRepository(), mocks.NewMockDocumentRepository())

	req := httptest.NewRequest(http.MethodGet, "/reports/aging?kind=equity", nil)
	rec := httptest.NewRecorder()

	handler.Aging(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestReportHandler_NetVAT(t *testing.T) {
	journalRepo := mocks.NewMockJournalRepository()
	journalRepo.SumPostedInRangeFunc = func(ctx context.Context, accountID string, start, end time.Time) (decimal.Decimal, decimal.Decimal, error) {
		switch accountID {
		case "acc-vat-out":
			return decimal.NewFromInt(100), decimal.NewFromInt(1100), nil
		case "acc-vat-in":
			return decimal.NewFromInt(400), decimal.NewFromInt(0), nil
		}
		return decimal.Zero, decimal.Zero, nil
	}

	accountRepo := mocks.NewMockAccountRepository()
	accountRepo.Add(&domain.Account{ID: "acc-vat-out", Code: "2100", Name: "VAT Out", Polarity: domain.PolarityCredit, Active: true})
	accountRepo.Add(&domain.Account{ID: "acc-vat-in", Code: "1150", Name: "VAT In", Polarity: domain.PolarityDebit, Active: true})

	ledgerUC := usecase.NewLedgerUseCase(accountRepo, journalRepo)
	reportUC := usecase.NewReportUseCase(accountRepo, journalRepo, mocks.NewMockDocumentRepository(), nil, 0, nil, zerolog.Nop())
	handler := NewReportHandler(ledgerUC, reportUC)

	req := httptest.NewRequest(http.MethodGet,
		"/reports/net-vat?output_account_id=acc-vat-out&input_account_id=acc-vat-in&start_date=2026-01-01&end_date=2026-01-31", nil)
	rec := httptest.NewRecorder()

	handler.NetVAT(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp usecase.NetVATReport
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}

	// 1000 output minus 400 input leaves 600 payable.
	if !resp.Net.Equal(decimal.NewFromInt(600)) {
		t.Fatalf("expected net 600, got %s", resp.Net)
	}
}
