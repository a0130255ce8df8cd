package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var streakCmd = &cobra.Command{
	Use:   "streak",
	Short: "Show the current review streak",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		info, err := a.svc.Streak(cmd.Context())
		if err != nil {
			return err
		}
		if info.Current == 0 {
			fmt.Println("No streak yet. Review something today to start one.")
			return nil
		}
		fmt.Printf("★ %d day streak. Next milestone: %d days (%d to go)\n",
			info.Current, info.NextMilestone, info.NextMilestone-info.Current)
		return nil
	},
}
