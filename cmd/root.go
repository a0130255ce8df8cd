package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/studyloop/internal/store"
)

var rootCmd = &cobra.Command{
	Use:           "studyloop",
	Short:         "Spaced-repetition study tracker",
	Long:          "StudyLoop schedules reviews of the topics and concepts you study, adapting intervals to how well you recall them.",
	SilenceUsage:  true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDue(cmd, args)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides STUDYLOOP_DB env var)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default: ./studyloop.yaml or ~/.config/studyloop/studyloop.yaml)")

	rootCmd.AddCommand(itemCmd)
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(dueCmd)
	rootCmd.AddCommand(streakCmd)
	rootCmd.AddCommand(sessionCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the SQLite path using --db flag (highest priority),
// then the configured DSN, then STUDYLOOP_DB env var, then the default XDG
// path.
func resolveDBPath(cmd *cobra.Command, configured string) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if configured != "" {
		return configured, nil
	}
	return store.DefaultDBPath()
}
