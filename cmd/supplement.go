package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ulilazmi100/micro-skill/internal/dispatch"
	"github.com/ulilazmi100/micro-skill/internal/lessons"
	"github.com/ulilazmi100/micro-skill/internal/ui/theme"
)

var guideCmd = &cobra.Command{
	Use:   "guide",
	Short: "Expand one lesson into a full step-by-step guide",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSupplement(cmd, (*lessons.Service).Expansion)
	},
}

var hintCmd = &cobra.Command{
	Use:   "hint",
	Short: "Get a short hint for one lesson",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSupplement(cmd, (*lessons.Service).Hint)
	},
}

type supplementFunc func(*lessons.Service, context.Context, lessons.SupplementRequest) (*dispatch.PlainText, error)

func runSupplement(cmd *cobra.Command, fn supplementFunc) error {
	index, _ := cmd.Flags().GetInt("lesson-index")
	from, _ := cmd.Flags().GetString("from")
	provider, _ := cmd.Flags().GetString("provider")

	profile, err := profileFromFlags(cmd)
	if err != nil {
		return err
	}

	set := lessons.Demo()
	if from != "" {
		if set, err = readLessonSet(from); err != nil {
			return err
		}
	}
	if index < 0 || index >= len(set.MicroLessons) {
		return fmt.Errorf("--lesson-index %d out of range [0, %d)", index, len(set.MicroLessons))
	}

	a, err := newApp(cmd, lessons.DefaultConfig())
	if err != nil {
		return err
	}
	defer a.close()

	out, err := fn(a.service, cmd.Context(), lessons.SupplementRequest{
		Profile:     profile,
		Provider:    provider,
		LessonIndex: index,
		Lesson:      set.MicroLessons[index],
	})
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintln(w, theme.Title.Render(set.MicroLessons[index].Title))
	fmt.Fprintln(w)
	fmt.Fprintln(w, out.AssistantText)
	fmt.Fprintln(w, theme.Hint.Render("provider: "+out.Provider))
	return nil
}

func readLessonSet(path string) (*lessons.MicroLessonSet, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return lessons.Decode(v)
}

func init() {
	for _, c := range []*cobra.Command{guideCmd, hintCmd} {
		profileFlags(c)
		c.Flags().IntP("lesson-index", "i", 0, "Zero-based lesson index")
		c.Flags().String("from", "", "Lesson set JSON saved by generate --out (default: the demo set)")
	}
}
