package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ulilazmi100/micro-skill/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "microskill",
	Short: "Career micro-lessons from a job description",
	Long: "MicroSkill turns a job description into five micro-lessons, two profile blurbs " +
		"and a cover message using OpenAI, Hugging Face, Gemini, Anthropic or OpenRouter.",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "Config file (yaml, toml or json); environment variables take precedence")
	pf.String("db", "", "Path to SQLite database file (overrides MICROSKILL_DB env var)")
	pf.String("log-mode", "", "Log format: dev or prod (overrides LOG_MODE env var)")
	pf.Bool("no-events", false, "Do not record provider calls in the event log")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(guideCmd)
	rootCmd.AddCommand(hintCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then MICROSKILL_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}
