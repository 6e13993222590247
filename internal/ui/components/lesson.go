package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/ulilazmi100/micro-skill/internal/lessons"
	"github.com/ulilazmi100/micro-skill/internal/ui/theme"
)

// LessonCard renders one micro-lesson as a bordered card.
type LessonCard struct {
	Index  int
	Lesson lessons.Lesson
	Width  int
}

// View renders the card.
func (c LessonCard) View() string {
	l := c.Lesson

	header := theme.Title.Render(fmt.Sprintf("%d. %s", c.Index+1, l.Title))
	if l.Difficulty != "" {
		header += "  " + DifficultyBadge(l.Difficulty)
	}

	lines := []string{header, ""}
	lines = append(lines, field("Tip", l.Tip))
	lines = append(lines, field("Practice", l.PracticeTask))
	lines = append(lines, field("Output", l.ExampleOutput))
	if len(l.Hints) > 0 {
		lines = append(lines, theme.Hint.Render("Hint: "+l.Hints[0]))
	}

	inner := max(c.Width-4, 20)
	return theme.Card.Width(inner).Render(strings.Join(lines, "\n"))
}

func field(label, value string) string {
	return theme.Label.Render(label+": ") + theme.Body.Render(value)
}

// DifficultyBadge colors a difficulty label by level.
func DifficultyBadge(difficulty string) string {
	style := theme.Subtitle
	switch strings.ToLower(difficulty) {
	case "beginner":
		style = theme.Beginner
	case "intermediate":
		style = theme.Intermediate
	case "experienced", "advanced":
		style = theme.Experienced
	}
	return style.Render("[" + difficulty + "]")
}

// LessonSetView renders a full lesson set: cards, profiles and cover message.
func LessonSetView(set *lessons.MicroLessonSet, width int) string {
	var parts []string
	for i, l := range set.MicroLessons {
		parts = append(parts, LessonCard{Index: i, Lesson: l, Width: width}.View())
	}

	quoteWidth := max(width-2, 20)
	parts = append(parts,
		"",
		theme.Label.Render("Profile (short)"),
		theme.Quote.Width(quoteWidth).Render(set.ProfileShort),
		theme.Label.Render("Profile (long)"),
		theme.Quote.Width(quoteWidth).Render(set.ProfileLong),
		theme.Label.Render("Cover message"),
		theme.Quote.Width(quoteWidth).Render(set.CoverMessage),
	)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
