package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/studyloop/internal/analytics"
	"github.com/abhisek/studyloop/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show review statistics per subject",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		items, err := a.svc.List(cmd.Context(), store.ListOpts{})
		if err != nil {
			return err
		}
		sum := analytics.Summarize(items, a.svc.Now())

		fmt.Printf("%-20s  %5s  %4s  %7s  %7s  %8s  %9s  %6s\n",
			"Subject", "Items", "Due", "Reviews", "Mastery", "Interval", "Retention", "Streak")
		fmt.Println(strings.Repeat("─", 84))
		for _, s := range sum.Subjects {
			printStats(s)
		}
		fmt.Println(strings.Repeat("─", 84))
		total := sum.Total
		total.Subject = "Total"
		printStats(total)
		return nil
	},
}

func printStats(s analytics.SubjectStats) {
	fmt.Printf("%-20s  %5d  %4d  %7d  %6.0f%%  %7.1fd  %8.0f%%  %5dd\n",
		truncate(s.Subject, 20), s.Items, s.Due, s.Reviews,
		s.AverageMastery, s.AverageInterval, s.Retention*100, s.BestStreak)
}
