package lessons

import (
	"encoding/json"
	"fmt"

	"github.com/ulilazmi100/micro-skill/internal/fixture"
)

// MicroLessonSet is the structured result of a lesson generation.
type MicroLessonSet struct {
	MicroLessons []Lesson `json:"micro_lessons"`
	ProfileShort string   `json:"profile_short"`
	ProfileLong  string   `json:"profile_long"`
	CoverMessage string   `json:"cover_message"`
}

// Lesson is one micro-lesson. Difficulty, Hints and FullGuide are only
// present in enriched sets such as the demo fixture.
type Lesson struct {
	Title         string   `json:"title"`
	Difficulty    string   `json:"difficulty,omitempty"`
	Tip           string   `json:"tip"`
	Hints         []string `json:"hints,omitempty"`
	PracticeTask  string   `json:"practice_task"`
	ExampleOutput string   `json:"example_output"`
	FullGuide     string   `json:"full_guide,omitempty"`
}

// Profile is the job context every prompt is built from.
type Profile struct {
	JobTitle   string `json:"jobTitle"`
	SkillLevel string `json:"skillLevel"`
	Strengths  string `json:"strengths"`
	Platform   string `json:"platform"`
	JobDesc    string `json:"jobDesc"`
}

// DefaultSkillLevel is used when a profile leaves SkillLevel empty.
const DefaultSkillLevel = "beginner"

func (p Profile) withDefaults() Profile {
	if p.SkillLevel == "" {
		p.SkillLevel = DefaultSkillLevel
	}
	return p
}

// Decode converts a parsed JSON value into a MicroLessonSet. Unknown keys
// are ignored and missing ones stay empty; use Validate to enforce shape.
func Decode(v any) (*MicroLessonSet, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode lesson set: %w", err)
	}
	var set MicroLessonSet
	if err := json.Unmarshal(b, &set); err != nil {
		return nil, fmt.Errorf("decode lesson set: %w", err)
	}
	return &set, nil
}

// Demo returns the canned lesson set served in demo mode.
func Demo() *MicroLessonSet {
	var set MicroLessonSet
	if err := json.Unmarshal(fixture.JSON(), &set); err != nil {
		panic("lessons: decode demo fixture: " + err.Error())
	}
	return &set
}
