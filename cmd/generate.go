package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ulilazmi100/micro-skill/internal/lessons"
	"github.com/ulilazmi100/micro-skill/internal/ui/components"
	"github.com/ulilazmi100/micro-skill/internal/ui/theme"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate micro-lessons, profile blurbs and a cover message",
	Example: `  microskill generate --job-title "Frontend fix" --job-desc @job.txt
  microskill generate --job-desc - --provider gemini --json < job.txt`,
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		strict, _ := cmd.Flags().GetBool("validate")
		out, _ := cmd.Flags().GetString("out")
		width, _ := cmd.Flags().GetInt("width")
		provider, _ := cmd.Flags().GetString("provider")

		profile, err := profileFromFlags(cmd)
		if err != nil {
			return err
		}

		svcCfg := lessons.DefaultConfig()
		svcCfg.Strict = strict
		a, err := newApp(cmd, svcCfg)
		if err != nil {
			return err
		}
		defer a.close()

		gen, err := a.service.Lessons(cmd.Context(), profile, provider)
		if err != nil {
			if errors.Is(err, lessons.ErrMissingJobDesc) {
				return fmt.Errorf("%w: pass --job-desc", err)
			}
			return err
		}

		pretty, err := json.MarshalIndent(gen.Parsed, "", "  ")
		if err != nil {
			return fmt.Errorf("encode result: %w", err)
		}
		if out != "" {
			if err := os.WriteFile(out, append(pretty, '\n'), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
		}

		w := cmd.OutOrStdout()
		if asJSON {
			fmt.Fprintln(w, string(pretty))
			return nil
		}

		if msg, ok := modelError(gen.Parsed); ok {
			return fmt.Errorf("model declined: %s", msg)
		}
		set, err := lessons.Decode(gen.Parsed)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, components.LessonSetView(set, width))
		fmt.Fprintln(w, theme.Hint.Render("provider: "+gen.Provider))
		return nil
	},
}

// modelError reports the {"error": "..."} object the system prompt asks
// models to return when input is missing.
func modelError(v any) (string, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		return "", false
	}
	msg, ok := m["error"].(string)
	return msg, ok && msg != ""
}

func init() {
	profileFlags(generateCmd)
	generateCmd.Flags().Bool("json", false, "Print the raw JSON result")
	generateCmd.Flags().Bool("validate", false, "Fail unless the result is a complete lesson set")
	generateCmd.Flags().StringP("out", "o", "", "Also save the JSON result to this file (for guide and hint --from)")
	generateCmd.Flags().Int("width", 80, "Render width")
}
