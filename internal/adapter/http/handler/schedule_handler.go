package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nusabooks/nusabooks/internal/adapter/http/dto"
	"github.com/nusabooks/nusabooks/internal/usecase"
)

// ScheduleHandler handles schedule-related HTTP requests.
type ScheduleHandler struct {
	scheduleUC *usecase.ScheduleUseCase
}

// NewScheduleHandler creates a new ScheduleHandler.
func NewScheduleHandler(scheduleUC *usecase.ScheduleUseCase) *ScheduleHandler {
	return &ScheduleHandler{scheduleUC: scheduleUC}
}

// PostEntry posts a single pending schedule entry.
func (h *ScheduleHandler) PostEntry(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing entry ID", "")
		return
	}

	entry, err := h.scheduleUC.PostEntry(r.Context(), id)
	if err != nil {
		writeDomainError(w, "failed to post schedule entry", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ScheduleEntryFromDomain(entry))
}

// SkipEntry marks a pending schedule entry as skipped.
func (h *ScheduleHandler) SkipEntry(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing entry ID", "")
		return
	}

	entry, err := h.scheduleUC.SkipEntry(r.Context(), id)
	if err != nil {
		writeDomainError(w, "failed to skip schedule entry", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ScheduleEntryFromDomain(entry))
}

// PostAllPending posts every pending entry of one schedule, continuing past
// individual failures.
func (h *ScheduleHandler) PostAllPending(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing schedule ID", "")
		return
	}

	posted, err := h.scheduleUC.PostAllPending(r.Context(), id)
	if err != nil {
		writeDomainError(w, "failed to post pending entries", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ScheduleEntriesFromDomain(posted))
}

// AutoPost runs the auto-post batch for all due entries.
func (h *ScheduleHandler) AutoPost(w http.ResponseWriter, r *http.Request) {
	asOf, err := parseDateQuery(r, "as_of", time.Now())
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid as_of date", err.Error())
		return
	}

	result, err := h.scheduleUC.ProcessDueAutoPost(r.Context(), asOf)
	if err != nil {
		writeDomainError(w, "failed to run auto-post", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BatchResultFromUseCase(result))
}
