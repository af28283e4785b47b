package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/saideep-g/blue-ninja/internal/engine"
	"github.com/saideep-g/blue-ninja/internal/progress"
)

var planCmd = &cobra.Command{
	Use:   "plan <learner>",
	Short: "Generate (or show) a learner's daily missions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dateStr, _ := cmd.Flags().GetString("date")
		templates, _ := cmd.Flags().GetStringSlice("template")
		modules, _ := cmd.Flags().GetStringSlice("module")
		regenerate, _ := cmd.Flags().GetBool("regenerate")
		questions, _ := cmd.Flags().GetBool("questions")

		var date time.Time
		if dateStr != "" {
			d, err := progress.ParseDate(dateStr)
			if err != nil {
				return fmt.Errorf("invalid --date %q: %w", dateStr, err)
			}
			date = d
		}

		var ov *engine.Overrides
		if len(templates) > 0 || len(modules) > 0 || regenerate {
			ov = &engine.Overrides{Templates: templates, Modules: modules, Regenerate: regenerate}
		}

		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		batch, err := rt.engine.GenerateDailyBatch(cmd.Context(), args[0], date, ov)
		if err != nil {
			return err
		}
		printBatch(batch)
		if questions {
			for _, m := range batch.Missions {
				fmt.Println()
				printMission(m)
			}
		}
		return nil
	},
}

func init() {
	planCmd.Flags().String("date", "", "Practice date (YYYY-MM-DD, default today)")
	planCmd.Flags().StringSlice("template", nil, "Restrict question templates (e.g. numeric_input)")
	planCmd.Flags().StringSlice("module", nil, "Restrict curriculum modules")
	planCmd.Flags().Bool("regenerate", false, "Replace an existing batch with fresh content")
	planCmd.Flags().Bool("questions", false, "Print each mission's questions")
}
