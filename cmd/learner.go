package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/saideep-g/blue-ninja/internal/engine"
)

var learnerCmd = &cobra.Command{
	Use:   "learner",
	Short: "Manage learner records",
}

var learnerProfileCmd = &cobra.Command{
	Use:   "profile <learner>",
	Short: "Set a learner's display name and grade",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		grade, _ := cmd.Flags().GetInt("grade")
		if grade < 0 {
			return fmt.Errorf("--grade must be positive")
		}

		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		p := engine.Profile{Name: name, Grade: grade}
		if err := rt.engine.SetProfile(cmd.Context(), args[0], p); err != nil {
			return err
		}
		fmt.Printf("Profile saved for %s.\n", args[0])
		return nil
	},
}

var learnerMasteryCmd = &cobra.Command{
	Use:   "mastery <learner> <atom=score>...",
	Short: "Set mastery scores, e.g. after a placement test",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		scores := make(map[string]float64, len(args)-1)
		for _, arg := range args[1:] {
			atom, raw, ok := strings.Cut(arg, "=")
			if !ok {
				return fmt.Errorf("expected atom=score, got %q", arg)
			}
			score, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return fmt.Errorf("invalid score for %s: %w", atom, err)
			}
			scores[atom] = score
		}

		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		n, err := rt.engine.SetMastery(cmd.Context(), args[0], scores)
		if err != nil {
			return err
		}
		fmt.Printf("Set %d of %d scores (unknown atoms are skipped).\n", n, len(scores))
		return nil
	},
}

func init() {
	learnerProfileCmd.Flags().String("name", "", "Display name")
	learnerProfileCmd.Flags().Int("grade", 0, "Grade level (0 uses the configured default)")

	learnerCmd.AddCommand(learnerProfileCmd)
	learnerCmd.AddCommand(learnerMasteryCmd)
}
