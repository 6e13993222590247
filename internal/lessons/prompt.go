package lessons

import (
	"fmt"
	"strings"
)

// supplementSystemPrompt frames the plain-text expansion and hint calls.
const supplementSystemPrompt = `You are MicroSkill, a concise and practical micro-mentor. Return only plain text (no JSON, no code fences).`

// BuildUserPrompt renders the structured generation prompt for p.
func BuildUserPrompt(p Profile) string {
	p = p.withDefaults()

	var b strings.Builder
	b.WriteString("GEN: Micro-lessons + Profile + Cover\n")
	writeContext(&b, p)
	b.WriteString("LANGUAGE: English\n")
	b.WriteString(`
Produce output in JSON with fields:
{
 "micro_lessons": [
   {"title":"", "tip":"", "practice_task":"", "example_output":""},
   ... (exactly 5)
 ],
 "profile_short":"",
 "profile_long":"",
 "cover_message":"",
}

Constraints recap: lesson tip ≤45 words; practice_task 8–12 words; example_output ≤8 words; cover_message 35–55 words.
Tone: friendly, confident, action-focused. No fluff. Use active verbs.`)

	return b.String()
}

// BuildExpansionPrompt asks for a plain-text full guide for one lesson.
func BuildExpansionPrompt(p Profile, l Lesson) string {
	p = p.withDefaults()

	var b strings.Builder
	b.WriteString(`You are MicroSkill. Produce a concise "full guide" (plain text) for a single micro-lesson.`)
	b.WriteString("\n\nContext:\n")
	writeContext(&b, p)
	b.WriteString("\nLesson:\n")
	b.WriteString(lessonSummary(
		labeled("Title", l.Title),
		labeled("Difficulty", l.Difficulty),
		labeled("Tip", l.Tip),
		labeled("Practice task", l.PracticeTask),
		labeled("Example output", l.ExampleOutput),
	))
	b.WriteString(`

Instructions:
- Produce a readable full guide with sections: Objective, Why it matters, Steps (3-6 numbered steps), Pro tip (single short paragraph), Practice routine (3 bullet steps), Time estimate, and Example output.
- Keep the guide practical and focused; aim for ~200-500 words.
- Return only plain text (no JSON, no code fences).`)

	return b.String()
}

// BuildHintPrompt asks for a one or two sentence hint for one lesson.
func BuildHintPrompt(p Profile, l Lesson) string {
	var b strings.Builder
	b.WriteString("You are MicroSkill. Produce one short, actionable hint for the lesson below.\n\nContext:\n")
	fmt.Fprintf(&b, "JOB_TITLE: %s\n", p.JobTitle)
	fmt.Fprintf(&b, "JOB_DESCRIPTION: %s\n", p.JobDesc)
	b.WriteString("\nLesson:\n")
	b.WriteString(lessonSummary(
		labeled("Title", l.Title),
		labeled("Practice task", l.PracticeTask),
	))
	b.WriteString(`

Instructions:
- Return a concise hint: 1–2 short sentences, under 25 words.
- Focus on a tiny, immediate tip the user can apply in one focused attempt.
- Return only plain text (no JSON, no code fences).`)

	return b.String()
}

func writeContext(b *strings.Builder, p Profile) {
	fmt.Fprintf(b, "JOB_TITLE: %s\n", p.JobTitle)
	fmt.Fprintf(b, "SKILL_LEVEL: %s\n", p.SkillLevel)
	fmt.Fprintf(b, "STRENGTHS: %s\n", p.Strengths)
	fmt.Fprintf(b, "PLATFORM: %s\n", p.Platform)
	fmt.Fprintf(b, "JOB_DESCRIPTION: %s\n", p.JobDesc)
}

func labeled(label, value string) string {
	if value == "" {
		return ""
	}
	return label + ": " + value
}

// lessonSummary joins the non-empty lines.
func lessonSummary(lines ...string) string {
	kept := lines[:0]
	for _, l := range lines {
		if l != "" {
			kept = append(kept, l)
		}
	}
	return strings.Join(kept, "\n")
}
