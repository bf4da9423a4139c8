package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/nusabooks/nusabooks/internal/adapter/http/dto"
	"github.com/nusabooks/nusabooks/internal/domain"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// writeDomainError maps a domain error to an HTTP response. Validation
// errors carry their accumulated problems so clients can render all of them
// at once.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		writeJSON(w, http.StatusUnprocessableEntity, dto.ErrorResponse{
			Error:    message,
			Message:  validationErr.Error(),
			Problems: validationErr.Problems,
		})

		return
	}

	writeError(w, mapDomainError(err), message, err.Error())
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	var formulaErr *domain.FormulaError

	switch {
	case errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, domain.ErrTemplateNotFound),
		errors.Is(err, domain.ErrScheduleNotFound),
		errors.Is(err, domain.ErrScheduleEntryNotFound),
		errors.Is(err, domain.ErrJournalNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrEntryNotPending),
		errors.Is(err, domain.ErrScheduleInactive),
		errors.Is(err, domain.ErrJournalNotDraft):
		return http.StatusConflict
	case errors.Is(err, domain.ErrUnbalancedTemplate),
		errors.Is(err, domain.ErrUnbalancedJournal),
		errors.Is(err, domain.ErrDivisionByZero),
		errors.As(err, &formulaErr):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}

// parseDateQuery parses a YYYY-MM-DD query parameter with a default value.
func parseDateQuery(r *http.Request, key string, defaultValue time.Time) (time.Time, error) {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue, nil
	}

	return time.Parse("2006-01-02", val)
}
