package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ulilazmi100/micro-skill/internal/store"
	"github.com/ulilazmi100/micro-skill/internal/ui/components"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Inspect recorded provider calls",
}

var eventsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent provider calls",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		provider, _ := cmd.Flags().GetString("provider")
		failed, _ := cmd.Flags().GetBool("failed")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		events, err := s.EventRepo().QueryLLMCalls(cmd.Context(), store.QueryOpts{
			Limit:    limit,
			Provider: provider,
			Failed:   failed,
		})
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}

		w := cmd.OutOrStdout()
		if len(events) == 0 {
			fmt.Fprintln(w, "No provider calls recorded.")
			return nil
		}

		// Header.
		fmt.Fprintf(w, "%-5s  %-19s  %-11s  %-28s  %-10s  %-7s  %-6s  %s\n",
			"Seq", "Timestamp", "Provider", "Model", "Purpose", "Ms", "Status", "OK")
		fmt.Fprintln(w, strings.Repeat("─", 100))

		for _, e := range events {
			ok := "✓"
			if !e.Success {
				ok = "✗ " + e.ErrorCode
			}
			status := "-"
			if e.Status != 0 {
				status = strconv.Itoa(e.Status)
			}
			fmt.Fprintf(w, "%-5d  %-19s  %-11s  %-28s  %-10s  %-7d  %-6s  %s\n",
				e.Sequence,
				e.Timestamp.Local().Format("2006-01-02 15:04:05"),
				e.Provider,
				truncate(e.Model, 28),
				truncate(e.Purpose, 10),
				e.LatencyMs,
				status,
				ok,
			)
		}
		return nil
	},
}

var eventsViewCmd = &cobra.Command{
	Use:   "view <seq>",
	Short: "View one provider call",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		seq, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid sequence %q: %w", args[0], err)
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		e, err := s.EventRepo().GetLLMCall(cmd.Context(), seq)
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("event %d not found", seq)
		}
		if err != nil {
			return fmt.Errorf("get event: %w", err)
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Seq:        %d\n", e.Sequence)
		fmt.Fprintf(w, "ID:         %s\n", e.ID)
		fmt.Fprintf(w, "Time:       %s\n", e.Timestamp.Local().Format("2006-01-02 15:04:05"))
		fmt.Fprintf(w, "Request:    %s\n", orDash(e.RequestID))
		fmt.Fprintf(w, "Provider:   %s\n", e.Provider)
		fmt.Fprintf(w, "Model:      %s\n", e.Model)
		fmt.Fprintf(w, "Purpose:    %s\n", e.Purpose)
		fmt.Fprintf(w, "Chars:      %d prompt / %d response\n", e.PromptChars, e.ResponseChars)
		fmt.Fprintf(w, "Latency:    %dms\n", e.LatencyMs)
		fmt.Fprintf(w, "Success:    %v\n", e.Success)
		if e.Status != 0 {
			fmt.Fprintf(w, "Status:     %d\n", e.Status)
		}
		if e.ErrorCode != "" {
			fmt.Fprintf(w, "Error code: %s\n", e.ErrorCode)
		}
		if e.ErrorMessage != "" {
			fmt.Fprintf(w, "Error:      %s\n", e.ErrorMessage)
		}
		return nil
	},
}

var eventsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show calls, failures and latency per provider",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		stats, err := s.EventRepo().UsageByProvider(cmd.Context())
		if err != nil {
			return fmt.Errorf("query usage: %w", err)
		}

		w := cmd.OutOrStdout()
		if len(stats) == 0 {
			fmt.Fprintln(w, "No provider calls recorded yet.")
			return nil
		}

		fmt.Fprintln(w, "Usage by Provider")
		fmt.Fprintln(w, strings.Repeat("─", 72))
		fmt.Fprintf(w, "%-12s  %6s  %8s  %8s\n", "Provider", "Calls", "Failed", "Avg Ms")
		fmt.Fprintln(w, strings.Repeat("─", 72))

		var totalCalls, totalFailed int
		for _, st := range stats {
			fmt.Fprintf(w, "%-12s  %6d  %8d  %8.0f\n", st.Provider, st.Calls, st.Failures, st.AvgLatencyMs)
			totalCalls += st.Calls
			totalFailed += st.Failures
		}
		fmt.Fprintln(w, strings.Repeat("─", 72))
		fmt.Fprintf(w, "%-12s  %6d  %8d\n", "TOTAL", totalCalls, totalFailed)

		fmt.Fprintln(w)
		fmt.Fprintln(w, "Success rate")
		for _, st := range stats {
			fmt.Fprintln(w, components.NewSuccessBar(fmt.Sprintf("%-12s", st.Provider), st.Calls-st.Failures, st.Failures, 72).View())
		}
		return nil
	},
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func init() {
	eventsListCmd.Flags().IntP("limit", "n", 20, "Number of events to show")
	eventsListCmd.Flags().StringP("provider", "p", "", "Filter by provider (e.g. openai, gemini)")
	eventsListCmd.Flags().Bool("failed", false, "Only show failed calls")

	eventsCmd.AddCommand(eventsListCmd)
	eventsCmd.AddCommand(eventsViewCmd)
	eventsCmd.AddCommand(eventsStatsCmd)
}
