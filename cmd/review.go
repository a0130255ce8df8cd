package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/studyloop/internal/review"
	"github.com/abhisek/studyloop/internal/study"
	"github.com/abhisek/studyloop/internal/ui/picker"
)

var reviewCmd = &cobra.Command{
	Use:   "review <id>",
	Short: "Record a review and schedule the next one",
	Long: `Record how well you recalled an item and schedule its next review.

Without --rating, --pass or --fail an interactive prompt opens where you can
preview the next date for each rating, pick a custom date or add a calendar
reminder before confirming.`,
	Args: cobra.ExactArgs(1),
	RunE: runReview,
}

func init() {
	addReviewFlags(reviewCmd)
}

func addReviewFlags(c *cobra.Command) {
	c.Flags().String("rating", "", "Recall rating on the configured scale (1-5 or 1-4), or pass/fail")
	c.Flags().Bool("pass", false, "Record a pass")
	c.Flags().Bool("fail", false, "Record a fail")
	c.Flags().String("date", "", "Override the next review date (YYYY-MM-DD)")
	c.Flags().Bool("calendar", false, "Add a reminder to the configured calendar")
	c.MarkFlagsMutuallyExclusive("rating", "pass", "fail")
}

func runReview(cmd *cobra.Command, args []string) error {
	id := args[0]
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	d, ok, err := decisionFromFlags(cmd, a.cfg.Scale())
	if err != nil {
		return err
	}
	if !ok {
		d, ok, err = pickDecision(cmd, a, id)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Review cancelled.")
			return nil
		}
	}

	out, err := a.svc.Review(cmd.Context(), id, d)
	if err != nil {
		var perr *study.PersistenceError
		if errors.As(err, &perr) {
			printResult(perr.Result)
			return fmt.Errorf("review not saved, try again: %w", err)
		}
		return err
	}

	printResult(out.Result)
	switch {
	case out.CalendarEvent != nil:
		fmt.Printf("Calendar reminder added (%s)\n", out.CalendarEvent.ID)
	case out.CalendarErr != nil:
		fmt.Printf("Calendar reminder failed: %v\n", out.CalendarErr)
	}
	return nil
}

// decisionFromFlags builds a decision from flags. ok is false when no
// rating flag was given.
func decisionFromFlags(cmd *cobra.Command, scale review.Scale) (study.Decision, bool, error) {
	raw, _ := cmd.Flags().GetString("rating")
	pass, _ := cmd.Flags().GetBool("pass")
	fail, _ := cmd.Flags().GetBool("fail")
	date, _ := cmd.Flags().GetString("date")
	cal, _ := cmd.Flags().GetBool("calendar")

	var d study.Decision
	switch {
	case pass:
		d.Rating = review.PassRating
	case fail:
		d.Rating = review.FailRating
	case raw != "":
		r, err := review.ParseRatingString(scale, raw)
		if err != nil {
			return d, false, err
		}
		d.Rating = r
	default:
		if date != "" || cal {
			return d, false, errors.New("--date and --calendar need --rating, --pass or --fail")
		}
		return d, false, nil
	}

	if date != "" {
		t, err := parseDate(date)
		if err != nil {
			return d, false, err
		}
		d.CustomDate = &t
	}
	d.AddToCalendar = cal
	return d, true, nil
}

func pickDecision(cmd *cobra.Command, a *app, id string) (study.Decision, bool, error) {
	ctx := cmd.Context()
	draft, it, err := a.svc.NewDraft(ctx, id)
	if err != nil {
		return study.Decision{}, false, err
	}
	streak, err := a.svc.Streak(ctx)
	if err != nil {
		return study.Decision{}, false, err
	}
	m := picker.New(it, draft, picker.Options{
		Scale:    a.cfg.Scale(),
		Now:      a.svc.Now(),
		Streak:   streak.Current,
		Calendar: a.calendarEnabled(),
	})
	return picker.Run(m)
}

func printResult(res review.Result) {
	fmt.Printf("Next review: %s (%d days)\n", res.NextDate.Local().Format("Mon Jan 2, 2006"), res.IntervalDays)
	for _, why := range res.Rationale {
		fmt.Println("  •", why)
	}
}
