package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nusabooks/nusabooks/internal/adapter/http/dto"
	"github.com/nusabooks/nusabooks/internal/domain"
	"github.com/nusabooks/nusabooks/internal/usecase"
	"github.com/nusabooks/nusabooks/internal/usecase/mocks"
)

func newAccountHandler(accountRepo *mocks.MockAccountRepository) *AccountHandler {
	uc := usecase.NewLedgerUseCase(accountRepo, mocks.NewMockJournalRepository())

	return NewAccountHandler(uc)
}

func TestAccountHandler_List(t *testing.T) {
	accountRepo := mocks.NewMockAccountRepository()
	accountRepo.Add(&domain.Account{ID: "acc-cash", Code: "1000", Name: "Cash", Polarity: domain.PolarityDebit, Active: true})
	accountRepo.Add(&domain.Account{ID: "acc-revenue", Code: "4000", Name: "Revenue", Polarity: domain.PolarityCredit, Active: true})
	handler := newAccountHandler(accountRepo)

	req := httptest.NewRequest(http.MethodGet, "/accounts", nil)
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.ListAccountsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}

	if resp.Total != 2 || len(resp.Accounts) != 2 {
		t.Fatalf("expected 2 accounts, got total %d with %d entries", resp.Total, len(resp.Accounts))
	}
}

func TestAccountHandler_List_ClampsLimit(t *testing.T) {
	accountRepo := mocks.NewMockAccountRepository()
	var capturedLimit, capturedOffset int
	accountRepo.ListFunc = func(_ context.Context, limit, offset int) ([]*domain.Account, error) {
		capturedLimit, capturedOffset = limit, offset
		return nil, nil
	}
	handler := newAccountHandler(accountRepo)

	req := httptest.NewRequest(http.MethodGet, "/accounts?limit=100000&offset=-5", nil)
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	if capturedLimit != usecase.MaxPageSize {
		t.Fatalf("expected limit clamped to %d, got %d", usecase.MaxPageSize, capturedLimit)
	}

	if capturedOffset != 0 {
		t.Fatalf("expected negative offset reset to 0, got %d", capturedOffset)
	}
}

func TestAccountHandler_List_RepoError(t *testing.T) {
	accountRepo := mocks.NewMockAccountRepository()
	accountRepo.ListFunc = func(_ context.Context, _, _ int) ([]*domain.Account, error) {
		return nil, errors.New("connection reset")
	}
	handler := newAccountHandler(accountRepo)

	req := httptest.NewRequest(http.MethodGet, "/accounts", nil)
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}
