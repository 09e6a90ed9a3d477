package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Puppetdog/sp-calculator-sub000/internal/domain"
)

// errorResponse is the body of every non-2xx response. Description is left
// out for internal errors.
type errorResponse struct {
	Error       string              `json:"error"`
	Description string              `json:"error_description,omitempty"`
	Issues      []domain.FieldIssue `json:"issues,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps domain errors onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:       "validation_error",
			Description: err.Error(),
			Issues:      verr.Issues,
		})
	case errors.Is(err, domain.ErrValidation):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "validation_error", Description: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not_found", Description: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal_error"})
	}
}

func writeBadRequest(w http.ResponseWriter, description string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Description: description})
}
