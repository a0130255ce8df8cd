package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/studyloop/internal/review"
	"github.com/abhisek/studyloop/internal/store"
	"github.com/abhisek/studyloop/internal/study"
)

var itemCmd = &cobra.Command{
	Use:   "item",
	Short: "Manage topics and concepts",
}

var itemAddCmd = &cobra.Command{
	Use:   "add <subject> <title>",
	Short: "Track a new topic or concept",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, _ := cmd.Flags().GetString("kind")
		mastery, _ := cmd.Flags().GetInt("mastery")
		phase, _ := cmd.Flags().GetString("phase")

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		it, err := a.svc.CreateItem(cmd.Context(), study.NewItem{
			Kind:    review.Kind(kind),
			Subject: args[0],
			Title:   args[1],
			Mastery: mastery,
			Phase:   review.Phase(phase),
		})
		if err != nil {
			return err
		}
		fmt.Printf("Added %s %q (%s)\n", it.Kind, it.Title, it.ID)
		return nil
	},
}

var itemListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tracked items",
	RunE: func(cmd *cobra.Command, args []string) error {
		subject, _ := cmd.Flags().GetString("subject")
		kind, _ := cmd.Flags().GetString("kind")

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		items, err := a.svc.List(cmd.Context(), store.ListOpts{Subject: subject, Kind: review.Kind(kind)})
		if err != nil {
			return err
		}
		printItems(items, a.svc.Now())
		return nil
	},
}

var itemShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show an item and its review history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		it, err := a.svc.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		now := a.svc.Now()

		fmt.Printf("%s  %s / %s\n", it.ID, it.Subject, it.Title)
		fmt.Printf("Kind:     %s\n", it.Kind)
		fmt.Printf("Phase:    %s\n", it.Phase)
		fmt.Printf("Mastery:  %d%%\n", it.MasteryLevel)
		fmt.Printf("Status:   %s\n", it.Status(now))
		if it.NextReview != nil {
			fmt.Printf("Next:     %s (%d days)\n", it.NextReview.Local().Format(time.DateOnly), it.DaysUntilReview(now))
		}
		if it.ExamDate != nil {
			fmt.Printf("Exam:     %s\n", it.ExamDate.Local().Format(time.DateOnly))
		}
		if len(it.Logs) == 0 {
			fmt.Println("\nNo reviews yet.")
			return nil
		}

		fmt.Printf("\n%-10s  %-9s  %8s  %s\n", "Date", "Rating", "Interval", "Calendar")
		fmt.Println(strings.Repeat("─", 44))
		for _, l := range it.Logs {
			cal := ""
			if l.AddedToCalendar {
				cal = l.CalendarEventID
			}
			fmt.Printf("%-10s  %-9s  %7dd  %s\n", l.Date.Local().Format(time.DateOnly), l.Rating, l.Interval, cal)
		}
		return nil
	},
}

var itemPhaseCmd = &cobra.Command{
	Use:   "phase <id> <initial|consolidation|mastery>",
	Short: "Move an item to a learning phase",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.svc.SetPhase(cmd.Context(), args[0], review.Phase(args[1])); err != nil {
			return err
		}
		fmt.Printf("Phase set to %s\n", args[1])
		return nil
	},
}

var itemExamCmd = &cobra.Command{
	Use:   "exam <id> [YYYY-MM-DD]",
	Short: "Set or clear the exam date for an item",
	Long:  "Set the exam date for an item. Reviews are scheduled so at least one more lands before the exam. Omit the date to clear it.",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var date *time.Time
		if len(args) == 2 {
			d, err := parseDate(args[1])
			if err != nil {
				return err
			}
			date = &d
		}

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.svc.SetExamDate(cmd.Context(), args[0], date); err != nil {
			return err
		}
		if date == nil {
			fmt.Println("Exam date cleared")
		} else {
			fmt.Printf("Exam date set to %s\n", date.Format(time.DateOnly))
		}
		return nil
	},
}

var itemRmCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"delete"},
	Short:   "Delete an item and its history",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.svc.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Println("Deleted", args[0])
		return nil
	},
}

func init() {
	itemAddCmd.Flags().String("kind", "topic", "Item kind: topic or concept")
	itemAddCmd.Flags().Int("mastery", 0, "Current mastery level (0-100)")
	itemAddCmd.Flags().String("phase", "initial", "Learning phase: initial, consolidation or mastery")

	itemListCmd.Flags().String("subject", "", "Filter by subject")
	itemListCmd.Flags().String("kind", "", "Filter by kind (topic or concept)")

	itemCmd.AddCommand(itemAddCmd)
	itemCmd.AddCommand(itemListCmd)
	itemCmd.AddCommand(itemShowCmd)
	itemCmd.AddCommand(itemPhaseCmd)
	itemCmd.AddCommand(itemExamCmd)
	itemCmd.AddCommand(itemRmCmd)
}

// printItems renders items as a table.
func printItems(items []*review.Item, now time.Time) {
	if len(items) == 0 {
		fmt.Println("No items.")
		return
	}
	fmt.Printf("%-36s  %-16s  %-30s  %7s  %-8s  %s\n",
		"ID", "Subject", "Title", "Mastery", "Status", "Next")
	fmt.Println(strings.Repeat("─", 122))
	for _, it := range items {
		next := "-"
		if it.NextReview != nil {
			next = it.NextReview.Local().Format(time.DateOnly)
		}
		fmt.Printf("%-36s  %-16s  %-30s  %6d%%  %-8s  %s\n",
			it.ID, truncate(it.Subject, 16), truncate(it.Title, 30), it.MasteryLevel, it.Status(now), next)
	}
	fmt.Printf("\n%d items\n", len(items))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

// parseDate reads a YYYY-MM-DD calendar date in local time.
func parseDate(s string) (time.Time, error) {
	d, err := time.ParseInLocation(time.DateOnly, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: use YYYY-MM-DD", s)
	}
	return d, nil
}
