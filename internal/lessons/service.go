package lessons

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ulilazmi100/micro-skill/internal/dispatch"
	"github.com/ulilazmi100/micro-skill/internal/fixture"
	"github.com/ulilazmi100/micro-skill/internal/llm"
)

// ErrMissingJobDesc is returned when a structured generation has no job
// description to tailor to.
var ErrMissingJobDesc = errors.New("missing jobDesc")

// Generator is the subset of *dispatch.Dispatcher the service needs.
type Generator interface {
	Generate(ctx context.Context, req dispatch.GenerateRequest) (*dispatch.Generation, error)
	GeneratePlainText(ctx context.Context, req dispatch.PlainTextRequest) (*dispatch.PlainText, error)
	DemoMode() bool
}

// Service builds coaching prompts and sends them through a Generator.
type Service struct {
	gen Generator
	cfg Config
}

// NewService creates a lesson generation service.
func NewService(gen Generator, cfg Config) *Service {
	return &Service{gen: gen, cfg: cfg}
}

// SupplementRequest asks for a full guide or hint for one lesson of a
// previously generated set.
type SupplementRequest struct {
	Profile  Profile
	Provider string

	// LessonIndex selects the canned lesson in demo mode.
	LessonIndex int
	Lesson      Lesson
}

// Lessons generates a lesson set tailored to p. With Config.Strict the
// parsed result must pass Validate.
func (s *Service) Lessons(ctx context.Context, p Profile, provider string) (*dispatch.Generation, error) {
	if strings.TrimSpace(p.JobDesc) == "" {
		return nil, ErrMissingJobDesc
	}

	ctx = llm.WithPurpose(ctx, "lessons")
	gen, err := s.gen.Generate(ctx, dispatch.GenerateRequest{
		Provider:   provider,
		UserPrompt: BuildUserPrompt(p),
		MaxTokens:  s.cfg.LessonMaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("lesson generation: %w", err)
	}

	if s.cfg.Strict {
		if err := Validate(gen.Parsed); err != nil {
			return nil, err
		}
	}
	return gen, nil
}

// Expansion returns a plain-text full guide for one lesson.
func (s *Service) Expansion(ctx context.Context, req SupplementRequest) (*dispatch.PlainText, error) {
	if s.gen.DemoMode() {
		return demoSupplement(req.LessonIndex, fixture.KindExpansion), nil
	}

	ctx = llm.WithPurpose(ctx, "expansion")
	out, err := s.gen.GeneratePlainText(ctx, dispatch.PlainTextRequest{
		Provider:  req.Provider,
		System:    supplementSystemPrompt,
		User:      BuildExpansionPrompt(req.Profile, req.Lesson),
		MaxTokens: s.cfg.ExpansionMaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("expansion: %w", err)
	}
	return out, nil
}

// Hint returns a short plain-text hint for one lesson.
func (s *Service) Hint(ctx context.Context, req SupplementRequest) (*dispatch.PlainText, error) {
	if s.gen.DemoMode() {
		return demoSupplement(req.LessonIndex, fixture.KindHint), nil
	}

	ctx = llm.WithPurpose(ctx, "hint")
	out, err := s.gen.GeneratePlainText(ctx, dispatch.PlainTextRequest{
		Provider:  req.Provider,
		System:    supplementSystemPrompt,
		User:      BuildHintPrompt(req.Profile, req.Lesson),
		MaxTokens: s.cfg.HintMaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("hint: %w", err)
	}
	return out, nil
}

func demoSupplement(index int, kind fixture.Kind) *dispatch.PlainText {
	text := fixture.Supplement(index, kind)
	return &dispatch.PlainText{AssistantText: text, RawResponse: text, Provider: dispatch.DemoProvider}
}

// DemoMode reports whether results come from the demo fixture.
func (s *Service) DemoMode() bool {
	return s.gen.DemoMode()
}
