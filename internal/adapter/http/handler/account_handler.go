package handler

import (
	"net/http"

	"github.com/nusabooks/nusabooks/internal/adapter/http/dto"
	"github.com/nusabooks/nusabooks/internal/usecase"
)

// AccountHandler handles chart-of-accounts HTTP requests.
type AccountHandler struct {
	ledgerUC *usecase.LedgerUseCase
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(ledgerUC *usecase.LedgerUseCase) *AccountHandler {
	return &AccountHandler{ledgerUC: ledgerUC}
}

// List lists accounts.
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	accounts, err := h.ledgerUC.ListAccounts(r.Context(), limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list accounts", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListAccountsResponse{
		Accounts: dto.AccountsFromDomain(accounts),
		Total:    int64(len(accounts)),
	})
}
