package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "statlab",
	Short: "Statistics tutoring backend",
	Long: "statlab serves adaptive statistics practice: recommendations from answer history,\n" +
		"graded submissions, mastery tracking and a tutoring chat.",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides STATLAB_DB env var)")
	rootCmd.PersistentFlags().String("env-file", "", "Load environment from this file instead of ./.env")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(recommendCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}
