package lessons

// Schema is a named JSON schema.
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

func nonEmptyString(description string) map[string]any {
	return map[string]any{
		"type":        "string",
		"minLength":   1,
		"pattern":     `\S`,
		"description": description,
	}
}

// MicroLessonSetSchema describes a complete generation result.
var MicroLessonSetSchema = &Schema{
	Name:        "micro-lesson-set",
	Description: "Five micro-lessons, two profile blurbs and a cover message",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"micro_lessons": map[string]any{
				"type":     "array",
				"minItems": 5,
				"maxItems": 5,
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"title":          nonEmptyString("Short lesson title"),
						"tip":            nonEmptyString("1-2 sentence tip"),
						"practice_task":  nonEmptyString("Single 8-12 word practice task"),
						"example_output": nonEmptyString("1-8 word example output"),
						"difficulty":     map[string]any{"type": "string"},
						"hints": map[string]any{
							"type":  "array",
							"items": map[string]any{"type": "string"},
						},
						"full_guide": map[string]any{"type": "string"},
					},
					"required": []any{"title", "tip", "practice_task", "example_output"},
				},
			},
			"profile_short": nonEmptyString("One sentence profile blurb"),
			"profile_long":  nonEmptyString("Two sentence profile blurb"),
			"cover_message": nonEmptyString("35-55 word cover message"),
		},
		"required": []any{"micro_lessons", "profile_short", "profile_long", "cover_message"},
	},
}
