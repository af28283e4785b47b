package cmd

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/saideep-g/blue-ninja/internal/mastery"
	"github.com/saideep-g/blue-ninja/internal/progress"
)

var streakCmd = &cobra.Command{
	Use:   "streak <learner>",
	Short: "Show a learner's streak, totals and badges",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		st, err := rt.engine.GetStreak(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if !st.Started() {
			fmt.Println("No missions completed yet.")
			return nil
		}

		fmt.Printf("Current streak:  %d day(s)\n", st.Current)
		fmt.Printf("Longest streak:  %d day(s)\n", st.Longest)
		fmt.Printf("Last mission:    %s\n", progress.DateKey(st.LastMissionDate))
		fmt.Printf("Missions:        %d\n", st.Totals.MissionsCompleted)
		fmt.Printf("Perfect days:    %d\n", st.Totals.PerfectDays)
		fmt.Printf("Points:          %d\n", st.Totals.Points)
		if len(st.Badges) > 0 {
			fmt.Println()
			for _, b := range st.Badges {
				fmt.Printf("%s %-16s  %s\n", b.Type.Icon(), b.Type.DisplayName(), b.EarnedAt.Local().Format("2006-01-02"))
			}
		}
		return nil
	},
}

var progressCmd = &cobra.Command{
	Use:   "progress <learner>",
	Short: "Show mastery per module",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		atoms, _ := cmd.Flags().GetBool("atoms")

		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		summaries, err := rt.engine.ModuleProgress(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("%-28s  %5s  %8s  %8s  %8s  %8s\n",
			"Module", "Atoms", "Mastered", "Learning", "Average", "Weighted")
		fmt.Println(strings.Repeat(rule, 78))
		for _, s := range summaries {
			title := s.Title
			if len(title) > 28 {
				title = title[:25] + "..."
			}
			fmt.Printf("%-28s  %5d  %8d  %8d  %7.0f%%  %7.0f%%\n",
				title, s.Atoms, s.ByState[mastery.StateMastered], s.ByState[mastery.StateLearning],
				s.Average*100, s.Weighted*100)
		}

		if !atoms {
			return nil
		}
		rec, err := rt.engine.Mastery(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Println()
		ids := make([]string, 0, len(rec.Scores))
		for id := range rec.Scores {
			ids = append(ids, id)
		}
		slices.Sort(ids)
		for _, id := range ids {
			fmt.Printf("%-36s  %.2f  hurdles %d\n", id, rec.Score(id), rec.HurdleCount(id))
		}
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history <learner>",
	Short: "Show recent answers and mission events",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		answers, missions, err := rt.engine.History(cmd.Context(), args[0], limit)
		if err != nil {
			return err
		}
		if len(answers) == 0 && len(missions) == 0 {
			fmt.Println("No history yet.")
			return nil
		}

		if len(missions) > 0 {
			fmt.Println("Missions")
			fmt.Println(strings.Repeat(rule, 80))
			for _, m := range missions {
				fmt.Printf("%-19s  %-16s  %-10s  %4.0f%%  %3d pts\n",
					m.OccurredAt.Local().Format("2006-01-02 15:04:05"), m.Phase, m.Action, m.Score*100, m.Points)
			}
			fmt.Println()
		}
		if len(answers) > 0 {
			fmt.Println("Answers")
			fmt.Println(strings.Repeat(rule, 80))
			for _, a := range answers {
				ok := "✓"
				if !a.Correct {
					ok = "✗"
				}
				fmt.Printf("%-19s  %s  %-32s  %.2f → %.2f  %s\n",
					a.OccurredAt.Local().Format("2006-01-02 15:04:05"), ok, a.AtomID,
					a.MasteryBefore, a.MasteryAfter, a.Misconception)
			}
		}
		return nil
	},
}

func init() {
	progressCmd.Flags().Bool("atoms", false, "Also list per-atom scores")
	historyCmd.Flags().Int("limit", 20, "Max events of each kind")
}
