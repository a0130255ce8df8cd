package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/studyloop/internal/study"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Record study sessions",
}

var sessionLogCmd = &cobra.Command{
	Use:   "log <id>",
	Short: "Log a study session and its mastery gain",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		gained, _ := cmd.Flags().GetFloat64("gained")
		minutes, _ := cmd.Flags().GetInt("minutes")
		date, _ := cmd.Flags().GetString("date")

		in := study.SessionInput{MasteryGained: gained, DurationMinutes: minutes}
		if date != "" {
			d, err := parseDate(date)
			if err != nil {
				return err
			}
			in.Date = d
		}

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		it, err := a.svc.LogSession(cmd.Context(), args[0], in)
		if err != nil {
			return err
		}
		fmt.Printf("Session logged. Mastery of %q is now %d%%\n", it.Title, it.MasteryLevel)
		return nil
	},
}

func init() {
	sessionLogCmd.Flags().Float64("gained", 0, "Mastery points gained (may be negative)")
	sessionLogCmd.Flags().Int("minutes", 0, "Session length in minutes")
	sessionLogCmd.Flags().String("date", "", "Session date (YYYY-MM-DD, default now)")

	sessionCmd.AddCommand(sessionLogCmd)
}
