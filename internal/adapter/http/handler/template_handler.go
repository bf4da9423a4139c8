package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nusabooks/nusabooks/internal/adapter/http/dto"
	"github.com/nusabooks/nusabooks/internal/usecase"
)

// TemplateHandler handles template-related HTTP requests.
type TemplateHandler struct {
	templateUC *usecase.TemplateUseCase
}

// NewTemplateHandler creates a new TemplateHandler.
func NewTemplateHandler(templateUC *usecase.TemplateUseCase) *TemplateHandler {
	return &TemplateHandler{templateUC: templateUC}
}

// List lists posting templates.
func (h *TemplateHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	templates, err := h.templateUC.ListTemplates(r.Context(), limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list templates", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListTemplatesResponse{
		Templates: dto.TemplatesFromDomain(templates),
		Total:     int64(len(templates)),
	})
}

// Execute expands a template against an amount and posts the resulting
// journal.
func (h *TemplateHandler) Execute(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing template ID", "")
		return
	}

	var req dto.ExecuteTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	journal, err := h.templateUC.Execute(r.Context(), id, req.ToExecutionContext())
	if err != nil {
		writeDomainError(w, "failed to execute template", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.JournalFromDomain(journal))
}

// Preview runs the same expansion as Execute without persisting anything.
func (h *TemplateHandler) Preview(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing template ID", "")
		return
	}

	var req dto.ExecuteTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	preview, err := h.templateUC.Preview(r.Context(), id, req.ToExecutionContext())
	if err != nil {
		writeDomainError(w, "failed to preview template", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.PreviewFromUseCase(preview))
}
