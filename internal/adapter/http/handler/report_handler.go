package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/nusabooks/nusabooks/internal/adapter/http/dto"
	"github.com/nusabooks/nusabooks/internal/domain"
	"github.com/nusabooks/nusabooks/internal/usecase"
)

// ReportHandler handles report-related HTTP requests.
type ReportHandler struct {
	ledgerUC *usecase.LedgerUseCase
	reportUC *usecase.ReportUseCase
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(ledgerUC *usecase.LedgerUseCase, reportUC *usecase.ReportUseCase) *ReportHandler {
	return &ReportHandler{ledgerUC: ledgerUC, reportUC: reportUC}
}

// GeneralLedger returns one account's balance view over a date window.
func (h *ReportHandler) GeneralLedger(w http.ResponseWriter, r *http.Request) {
	accountID := r.URL.Query().Get("account_id")
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "missing account_id", "")
		return
	}

	start, err := parseDateQuery(r, "start_date", time.Time{})
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid start_date", err.Error())
		return
	}

	end, err := parseDateQuery(r, "end_date", time.Now())
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid end_date", err.Error())
		return
	}

	data, err := h.ledgerUC.GeneralLedger(r.Context(), accountID, start, end)
	if err != nil {
		writeDomainError(w, "failed to build general ledger", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.GeneralLedgerFromUseCase(data))
}

// TrialBalance returns per-account posted totals as of a date.
func (h *ReportHandler) TrialBalance(w http.ResponseWriter, r *http.Request) {
	asOf, err := parseDateQuery(r, "as_of", time.Now())
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid as_of date", err.Error())
		return
	}

	report, err := h.ledgerUC.TrialBalance(r.Context(), asOf)
	if err != nil {
		writeDomainError(w, "failed to build trial balance", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TrialBalanceFromUseCase(report))
}

// Aging returns the receivable or payable aging report.
func (h *ReportHandler) Aging(w http.ResponseWriter, r *http.Request) {
	var kind domain.DocumentKind
	switch r.URL.Query().Get("kind") {
	case "receivable", "":
		kind = domain.DocumentReceivable
	case "payable":
		kind = domain.DocumentPayable
	default:
		writeError(w, http.StatusBadRequest, "invalid kind", "kind must be receivable or payable")
		return
	}

	asOf, err := parseDateQuery(r, "as_of", time.Now())
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid as_of date", err.Error())
		return
	}

	report, err := h.reportUC.Aging(r.Context(), kind, asOf)
	if err != nil {
		writeDomainError(w, "failed to build aging report", err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// TaxSummary returns per-tax-account movement over a period.
func (h *ReportHandler) TaxSummary(w http.ResponseWriter, r *http.Request) {
	accountsParam := r.URL.Query().Get("account_ids")
	if accountsParam == "" {
		writeError(w, http.StatusBadRequest, "missing account_ids", "")
		return
	}
	accountIDs := strings.Split(accountsParam, ",")

	start, err := parseDateQuery(r, "start_date", time.Time{})
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid start_date", err.Error())
		return
	}

	end, err := parseDateQuery(r, "end_date", time.Now())
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid end_date", err.Error())
		return
	}

	report, err := h.reportUC.TaxSummary(r.Context(), accountIDs, start, end)
	if err != nil {
		writeDomainError(w, "failed to build tax summary", err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// NetVAT returns output tax netted against input tax for a period.
func (h *ReportHandler) NetVAT(w http.ResponseWriter, r *http.Request) {
	outputID := r.URL.Query().Get("output_account_id")
	inputID := r.URL.Query().Get("input_account_id")
	if outputID == "" || inputID == "" {
		writeError(w, http.StatusBadRequest, "missing account IDs", "output_account_id and input_account_id are required")
		return
	}

	start, err := parseDateQuery(r, "start_date", time.Time{})
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid start_date", err.Error())
		return
	}

	end, err := parseDateQuery(r, "end_date", time.Now())
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid end_date", err.Error())
		return
	}

	report, err := h.reportUC.NetVAT(r.Context(), outputID, inputID, start, end)
	if err != nil {
		writeDomainError(w, "failed to build net VAT report", err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}
