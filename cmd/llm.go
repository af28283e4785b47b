package cmd

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/saideep-g/blue-ninja/internal/authoring"
	"github.com/saideep-g/blue-ninja/internal/llm"
	"github.com/saideep-g/blue-ninja/internal/store"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect LLM usage and preview authored content",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent LLM events",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")

		s, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		events, err := s.EventRepo().QueryLLMEvents(cmd.Context(), store.QueryOpts{Limit: limit})
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}
		if len(events) == 0 {
			fmt.Println("No LLM events found.")
			return nil
		}

		fmt.Printf("%-5s  %-19s  %-18s  %-16s  %-28s  %-6s  %-6s  %-7s  %s\n",
			"Seq", "Timestamp", "Purpose", "Atom", "Model", "In", "Out", "Ms", "OK")
		fmt.Println(strings.Repeat(rule, 122))
		for _, e := range events {
			if purpose != "" && e.Purpose != purpose {
				continue
			}
			ok := "✓"
			if !e.Success {
				ok = "✗ " + e.ErrorMessage
			}
			model := e.Model
			if len(model) > 28 {
				model = model[:28]
			}
			atom := e.AtomID
			if atom == "" {
				atom = "-"
			}
			fmt.Printf("%-5d  %-19s  %-18s  %-16s  %-28s  %-6d  %-6d  %-7d  %s\n",
				e.Sequence,
				e.OccurredAt.Local().Format("2006-01-02 15:04:05"),
				e.Purpose,
				atom,
				model,
				e.InputTokens,
				e.OutputTokens,
				e.LatencyMs,
				ok,
			)
		}
		return nil
	},
}

// purposeUsage aggregates LLM events for one purpose.
type purposeUsage struct {
	Purpose      string
	Calls        int
	Failures     int
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
}

func summarizeUsage(events []store.LLMRequestEventRecord) []purposeUsage {
	byPurpose := map[string]*purposeUsage{}
	for _, e := range events {
		u, ok := byPurpose[e.Purpose]
		if !ok {
			u = &purposeUsage{Purpose: e.Purpose}
			byPurpose[e.Purpose] = u
		}
		u.Calls++
		if !e.Success {
			u.Failures++
		}
		u.InputTokens += e.InputTokens
		u.OutputTokens += e.OutputTokens
		u.LatencyMs += e.LatencyMs
	}
	out := make([]purposeUsage, 0, len(byPurpose))
	for _, u := range byPurpose {
		out = append(out, *u)
	}
	slices.SortFunc(out, func(a, b purposeUsage) int { return strings.Compare(a.Purpose, b.Purpose) })
	return out
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregated LLM token usage",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		events, err := s.EventRepo().QueryLLMEvents(cmd.Context(), store.QueryOpts{})
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}
		if len(events) == 0 {
			fmt.Println("No LLM usage recorded yet.")
			return nil
		}

		fmt.Printf("%-18s  %6s  %6s  %10s  %10s  %8s\n",
			"Purpose", "Calls", "Failed", "Input", "Output", "Avg Ms")
		fmt.Println(strings.Repeat(rule, 68))
		var calls, in, out int
		for _, u := range summarizeUsage(events) {
			fmt.Printf("%-18s  %6d  %6d  %10d  %10d  %8d\n",
				u.Purpose, u.Calls, u.Failures, u.InputTokens, u.OutputTokens, u.LatencyMs/int64(u.Calls))
			calls += u.Calls
			in += u.InputTokens
			out += u.OutputTokens
		}
		fmt.Println(strings.Repeat(rule, 68))
		fmt.Printf("%-18s  %6d  %6s  %10d  %10d\n", "TOTAL", calls, "", in, out)
		return nil
	},
}

var llmAuthorCmd = &cobra.Command{
	Use:   "author <atom>",
	Short: "Preview LLM-authored questions for an atom without storing them",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		count, _ := cmd.Flags().GetInt("count")

		cfg, log, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		g, err := loadCurriculum(cfg)
		if err != nil {
			return err
		}

		s, err := storeFor(cfg)
		if err != nil {
			return err
		}
		defer s.Close()

		provider, err := llm.NewProvider(cmd.Context(), cfg.LLM, s.EventRepo(), log)
		if err != nil {
			return err
		}
		acfg := authoring.DefaultConfig()
		if count > 0 {
			acfg.ItemsPerAtom = count
		}
		items, err := authoring.New(provider, g, acfg, log).Generate(cmd.Context(), args[0], nil)
		if err != nil {
			return err
		}

		for i, it := range items {
			fmt.Printf("%2d. [%s] %s\n", i+1, it.Template.DisplayName(), it.Prompt)
			printOptions(it, "      ")
			if it.Hint != "" {
				fmt.Printf("      hint: %s\n", it.Hint)
			}
		}
		return nil
	},
}

func init() {
	llmListCmd.Flags().Int("limit", 20, "Max events to show")
	llmListCmd.Flags().String("purpose", "", "Filter by purpose (e.g. content-authoring)")
	llmAuthorCmd.Flags().Int("count", 0, "Items to request (default from config)")

	llmCmd.AddCommand(llmListCmd)
	llmCmd.AddCommand(llmStatsCmd)
	llmCmd.AddCommand(llmAuthorCmd)
}
