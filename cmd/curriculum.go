package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

)

var curriculumCmd = &cobra.Command{
	Use:   "curriculum",
	Short: "Browse the curriculum",
}

var curriculumListCmd = &cobra.Command{
	Use:   "list",
	Short: "List atoms in prerequisite order (optionally filtered)",
	RunE: func(cmd *cobra.Command, args []string) error {
		module, _ := cmd.Flags().GetString("module")
		subject, _ := cmd.Flags().GetString("subject")
		grade, _ := cmd.Flags().GetInt("grade")

		cfg, _, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		g, err := loadCurriculum(cfg)
		if err != nil {
			return err
		}

		switch {
		case module != "" && subject != "":
			return fmt.Errorf("use --module or --subject, not both")
		case module != "":
			if !g.HasModule(module) {
				return fmt.Errorf("no module %q", module)
			}
			g = g.Subset([]string{module})
		case subject != "":
			g = g.ForSubject(subject, grade)
		}

		fmt.Printf("%-36s  %-36s  %-20s  %s\n", "ID", "Title", "Module", "Prerequisites")
		fmt.Println(strings.Repeat(rule, 120))
		for _, a := range g.TopologicalOrder() {
			title := a.Title
			if len(title) > 36 {
				title = title[:33] + "..."
			}
			fmt.Printf("%-36s  %-36s  %-20s  %s\n",
				a.ID, title, a.ModuleID, strings.Join(a.Prerequisites, ", "))
		}

		fmt.Printf("\n%d atoms in %d modules\n", g.Len(), len(g.Modules()))
		return nil
	},
}

func init() {
	curriculumListCmd.Flags().String("module", "", "Filter by module id")
	curriculumListCmd.Flags().String("subject", "", "Filter by subject")
	curriculumListCmd.Flags().Int("grade", 0, "With --subject, filter by grade")

	curriculumCmd.AddCommand(curriculumListCmd)
}
