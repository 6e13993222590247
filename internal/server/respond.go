package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ulilazmi100/micro-skill/internal/lessons"
	"github.com/ulilazmi100/micro-skill/internal/llm"
)

// errorResponse is the body of every non-2xx response.
type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	Provider  string `json:"provider,omitempty"`
	Status    int    `json:"status,omitempty"`
	Details   string `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	body := errorResponse{
		Error:     err.Error(),
		RequestID: llm.RequestIDFrom(r.Context()),
	}

	var (
		pe *llm.ProviderError
		we *llm.WrapperError
		ve *lessons.ValidationError
	)
	switch {
	case errors.As(err, &pe):
		body.Code = string(pe.Code)
		body.Provider = string(pe.Provider)
		body.Status = pe.Status
		body.Details = pe.Details
	case errors.As(err, &we):
		body.Code = string(we.Code)
		body.Provider = we.Provider
	case errors.As(err, &ve):
		body.Code = "INVALID_LESSON_SET"
	case errors.Is(err, lessons.ErrMissingJobDesc):
		body.Error = "Missing jobDesc"
	}

	if status >= http.StatusInternalServerError {
		s.log.Error("generate failed", "status", status, "code", body.Code, "error", err)
	} else {
		s.log.Debug("generate rejected", "status", status, "code", body.Code, "error", err)
	}
	respondJSON(w, status, body)
}
