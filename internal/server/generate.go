package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/ulilazmi100/micro-skill/internal/dispatch"
	"github.com/ulilazmi100/micro-skill/internal/lessons"
	"github.com/ulilazmi100/micro-skill/internal/llm"
)

const (
	actionExpansion = "fetch_expansion"
	actionHint      = "fetch_hint"
)

// generateRequest is the body of POST /api/generate. Without an action it
// asks for a full lesson set; with one it asks for a supplement to Lesson.
type generateRequest struct {
	Action      string         `json:"action" validate:"omitempty,oneof=fetch_expansion fetch_hint"`
	JobTitle    string         `json:"jobTitle"`
	SkillLevel  string         `json:"skillLevel"`
	Strengths   string         `json:"strengths"`
	Platform    string         `json:"platform"`
	JobDesc     string         `json:"jobDesc" validate:"required_without=Action"`
	Provider    string         `json:"provider" validate:"max=64"`
	LessonIndex int            `json:"lessonIndex"`
	Lesson      lessons.Lesson `json:"lesson"`
}

func (req generateRequest) profile() lessons.Profile {
	return lessons.Profile{
		JobTitle:   req.JobTitle,
		SkillLevel: req.SkillLevel,
		Strengths:  req.Strengths,
		Platform:   req.Platform,
		JobDesc:    req.JobDesc,
	}
}

type textResponse struct {
	Text     string `json:"text"`
	Provider string `json:"provider"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid JSON body", Details: err.Error()})
		return
	}
	if err := s.validate.Struct(req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: validationMessage(err)})
		return
	}

	ctx := r.Context()
	switch req.Action {
	case "":
		gen, err := s.svc.Lessons(ctx, req.profile(), req.Provider)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, gen.Parsed)

	case actionExpansion, actionHint:
		sreq := lessons.SupplementRequest{
			Profile:     req.profile(),
			Provider:    req.Provider,
			LessonIndex: req.LessonIndex,
			Lesson:      req.Lesson,
		}
		var (
			out *dispatch.PlainText
			err error
		)
		if req.Action == actionExpansion {
			out, err = s.svc.Expansion(ctx, sreq)
		} else {
			out, err = s.svc.Hint(ctx, sreq)
		}
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, textResponse{Text: out.AssistantText, Provider: out.Provider})
	}
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid request"
	}
	fe := verrs[0]
	switch fe.Field() {
	case "jobDesc":
		return "Missing jobDesc"
	case "action":
		return fmt.Sprintf("Unsupported action %q", fe.Value())
	default:
		return fmt.Sprintf("Invalid field %s", fe.Field())
	}
}

// statusFor maps an error to its HTTP status: provider-source errors are
// upstream failures, anything else is ours.
func statusFor(err error) int {
	if errors.Is(err, lessons.ErrMissingJobDesc) {
		return http.StatusBadRequest
	}
	if e, ok := llm.AsError(err); ok && e.ErrorSource() == llm.SourceProvider {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
