package lessons

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ulilazmi100/micro-skill/internal/dispatch"
	"github.com/ulilazmi100/micro-skill/internal/fixture"
	"github.com/ulilazmi100/micro-skill/internal/llm"
)

const validSetJSON = `{
	"micro_lessons": [
		{"title":"One","tip":"t","practice_task":"p","example_output":"e"},
		{"title":"Two","tip":"t","practice_task":"p","example_output":"e"},
		{"title":"Three","tip":"t","practice_task":"p","example_output":"e"},
		{"title":"Four","tip":"t","practice_task":"p","example_output":"e"},
		{"title":"Five","tip":"t","practice_task":"p","example_output":"e"}
	],
	"profile_short": "short",
	"profile_long": "long",
	"cover_message": "cover"
}`

func testProfile() Profile {
	return Profile{
		JobTitle:  "Frontend bug fix",
		Strengths: "React, testing",
		Platform:  "Upwork",
		JobDesc:   "Fix a broken checkout button",
	}
}

func newTestService(t *testing.T, cfg llm.Config, svcCfg Config, responses ...llm.MockResponse) (*Service, *llm.MockProvider) {
	t.Helper()
	mock := llm.NewMockProvider(llm.OpenAI, responses...)
	d := dispatch.New(cfg, dispatch.WithRegistry(llm.NewRegistryOf(mock)))
	return NewService(d, svcCfg), mock
}

func TestBuildUserPrompt(t *testing.T) {
	got := BuildUserPrompt(testProfile())

	assert.True(t, strings.HasPrefix(got, "GEN: Micro-lessons + Profile + Cover\nJOB_TITLE: Frontend bug fix\n"))
	assert.Contains(t, got, "SKILL_LEVEL: beginner\n")
	assert.Contains(t, got, "STRENGTHS: React, testing\n")
	assert.Contains(t, got, "PLATFORM: Upwork\n")
	assert.Contains(t, got, "JOB_DESCRIPTION: Fix a broken checkout button\nLANGUAGE: English\n")
	assert.Contains(t, got, "... (exactly 5)")

	p := testProfile()
	p.SkillLevel = "expert"
	assert.Contains(t, BuildUserPrompt(p), "SKILL_LEVEL: expert\n")
}

func TestBuildExpansionPrompt_SkipsEmptyFields(t *testing.T) {
	got := BuildExpansionPrompt(testProfile(), Lesson{Title: "Reproduce", PracticeTask: "Write steps"})

	assert.Contains(t, got, "Lesson:\nTitle: Reproduce\nPractice task: Write steps\n\nInstructions:")
	assert.NotContains(t, got, "Difficulty:")
	assert.NotContains(t, got, "Tip:")
	assert.Contains(t, got, "SKILL_LEVEL: beginner")
}

func TestBuildHintPrompt(t *testing.T) {
	got := BuildHintPrompt(testProfile(), Lesson{Title: "Reproduce", Tip: "ignored", PracticeTask: "Write steps"})

	assert.Contains(t, got, "JOB_TITLE: Frontend bug fix\nJOB_DESCRIPTION: Fix a broken checkout button\n")
	assert.Contains(t, got, "Title: Reproduce\nPractice task: Write steps")
	assert.NotContains(t, got, "ignored")
	assert.NotContains(t, got, "STRENGTHS")
}

func TestValidate(t *testing.T) {
	valid := Demo()
	require.NoError(t, Validate(valid))
	require.NoError(t, Validate(fixture.Value()))

	tests := []struct {
		name   string
		mutate func(*MicroLessonSet)
	}{
		{"four lessons", func(s *MicroLessonSet) { s.MicroLessons = s.MicroLessons[:4] }},
		{"blank title", func(s *MicroLessonSet) { s.MicroLessons[2].Title = "  " }},
		{"empty cover", func(s *MicroLessonSet) { s.CoverMessage = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := Demo()
			tt.mutate(set)
			err := Validate(set)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, "micro-lesson-set", ve.Schema)
		})
	}

	var ve *ValidationError
	require.ErrorAs(t, Validate(map[string]any{"error": "MISSING: jobDesc"}), &ve)
}

func TestDecode(t *testing.T) {
	set, err := Decode(fixture.Value())
	require.NoError(t, err)
	assert.Equal(t, Demo(), set)
	require.Len(t, set.MicroLessons, 5)
	assert.Equal(t, "Intermediate", set.MicroLessons[1].Difficulty)

	_, err = Decode([]any{"not", "an", "object"})
	assert.Error(t, err)
}

func TestService_Lessons(t *testing.T) {
	svc, mock := newTestService(t, llm.DefaultConfig(), Config{LessonMaxTokens: 900, Strict: true},
		llm.MockResponse{Text: "```json\n" + validSetJSON + "\n```"})

	gen, err := svc.Lessons(context.Background(), testProfile(), "openai")
	require.NoError(t, err)
	assert.Equal(t, "openai", gen.Provider)

	set, err := Decode(gen.Parsed)
	require.NoError(t, err)
	assert.Equal(t, "Five", set.MicroLessons[4].Title)

	require.Len(t, mock.Calls, 1)
	assert.Equal(t, dispatch.SystemPrompt, mock.Calls[0].System)
	assert.Equal(t, BuildUserPrompt(testProfile()), mock.Calls[0].User)
	assert.Equal(t, 900, mock.Calls[0].MaxTokens)
}

func TestService_LessonsStrictRejectsShape(t *testing.T) {
	svc, _ := newTestService(t, llm.DefaultConfig(), Config{Strict: true},
		llm.MockResponse{Text: `{"error":"MISSING: job title"}`})

	_, err := svc.Lessons(context.Background(), testProfile(), "")
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestService_LessonsMissingJobDesc(t *testing.T) {
	cfg := llm.DefaultConfig()
	cfg.DemoMode = true
	svc, _ := newTestService(t, cfg, DefaultConfig())

	p := testProfile()
	p.JobDesc = " "
	_, err := svc.Lessons(context.Background(), p, "")
	assert.True(t, errors.Is(err, ErrMissingJobDesc), "job description is checked before demo mode")
}

func TestService_LessonsPassesTypedErrors(t *testing.T) {
	svc, _ := newTestService(t, llm.DefaultConfig(), DefaultConfig())

	_, err := svc.Lessons(context.Background(), testProfile(), "bogus")
	assert.Equal(t, llm.CodeUnsupportedProvider, llm.CodeOf(err))
}

func TestService_Supplements(t *testing.T) {
	svc, mock := newTestService(t, llm.DefaultConfig(), DefaultConfig(),
		llm.MockResponse{Text: "Objective: reproduce."},
		llm.MockResponse{Text: "Check the console."},
	)
	req := SupplementRequest{Profile: testProfile(), Lesson: Lesson{Title: "Reproduce", PracticeTask: "Write steps"}}

	exp, err := svc.Expansion(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "Objective: reproduce.", exp.AssistantText)

	hint, err := svc.Hint(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "Check the console.", hint.AssistantText)

	require.Len(t, mock.Calls, 2)
	assert.Equal(t, supplementSystemPrompt, mock.Calls[0].System)
	assert.Equal(t, BuildExpansionPrompt(req.Profile, req.Lesson), mock.Calls[0].User)
	assert.Equal(t, 1200, mock.Calls[0].MaxTokens)
	assert.Equal(t, BuildHintPrompt(req.Profile, req.Lesson), mock.Calls[1].User)
	assert.Equal(t, 120, mock.Calls[1].MaxTokens)
}

func TestService_SupplementsDemoMode(t *testing.T) {
	cfg := llm.DefaultConfig()
	cfg.DemoMode = true
	svc, mock := newTestService(t, cfg, DefaultConfig())

	exp, err := svc.Expansion(context.Background(), SupplementRequest{LessonIndex: 3})
	require.NoError(t, err)
	assert.Equal(t, fixture.Supplement(3, fixture.KindExpansion), exp.AssistantText)
	assert.Equal(t, dispatch.DemoProvider, exp.Provider)

	hint, err := svc.Hint(context.Background(), SupplementRequest{LessonIndex: 7})
	require.NoError(t, err)
	assert.Equal(t, "Use a short checklist: Reproduce, Test, Fix, Verify.", hint.AssistantText)
	assert.Zero(t, mock.CallCount())
}
