package cmd

import (
	"github.com/spf13/cobra"

	"github.com/saideep-g/blue-ninja/internal/config"
)

// v carries defaults, BLUENINJA_* variables and bound flags.
var v = config.New()

var rootCmd = &cobra.Command{
	Use:           "blueninja",
	Short:         "Adaptive daily practice engine",
	Long:          "Blue Ninja builds daily practice missions from a curriculum, hydrates them with questions and tracks mastery and streaks.",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Path to a config file (default ./blueninja.yaml)")
	flags.String("db", "", "SQLite path or postgres:// URL (overrides BLUENINJA_DB)")
	flags.String("cache", "", "Redis URL for the session cache (overrides BLUENINJA_CACHE_URL)")
	flags.Bool("debug", false, "Enable debug logging")

	_ = v.BindPFlag("db", flags.Lookup("db"))
	_ = v.BindPFlag("cache.url", flags.Lookup("cache"))

	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(answerCmd)
	rootCmd.AddCommand(sessionCmd)
	rootCmd.AddCommand(streakCmd)
	rootCmd.AddCommand(progressCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(learnerCmd)
	rootCmd.AddCommand(curriculumCmd)
	rootCmd.AddCommand(contentCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(daemonCmd)
	rootCmd.AddCommand(versionCmd)
}
