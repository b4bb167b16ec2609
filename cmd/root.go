package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "nicodb",
	Short: "Collect niconico live program metadata into SQLite",
	Long: `Fetches program watch pages, extracts the embedded program data and stores
programs, channels and the streamer name history.
Commands: fetch, fetch-range, streamer-name, migrate.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(fetchRangeCmd)
	rootCmd.AddCommand(streamerNameCmd)
	rootCmd.AddCommand(migrateCmd)
}

// Execute runs the root command and returns the error (for main to report and exit).
func Execute() error {
	return rootCmd.Execute()
}
