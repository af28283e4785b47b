package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var answerCmd = &cobra.Command{
	Use:   "answer <mission-id> <question-id> <answer>",
	Short: "Submit an answer to a mission question",
	Long: `Submit an answer to a mission question.

Multiple-choice questions accept the option number or its text. Matching
questions take "left=right" pairs separated by semicolons.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		res, err := rt.engine.SubmitAnswer(cmd.Context(), args[0], args[1], args[2])
		if err != nil {
			return err
		}

		if res.Correct {
			fmt.Println("✓ Correct")
		} else {
			fmt.Println("✗ Not quite")
			if res.Misconception != "" {
				fmt.Println("  Misconception:", res.Misconception)
			}
		}
		fmt.Printf("Mastery %.2f → %.2f\n", res.MasteryBefore, res.MasteryAfter)

		m := res.Mission
		fmt.Printf("Mission %s: %s (%d/%d answered)\n",
			m.Phase, m.Status.DisplayName(), len(m.CompletedIDs), len(m.Questions))
		printBadges(res.Badges)
		return nil
	},
}
