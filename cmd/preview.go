package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/studyloop/internal/review"
)

var previewCmd = &cobra.Command{
	Use:   "preview <id> <rating>",
	Short: "Show the next review date a rating would give, without saving",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		r, err := review.ParseRatingString(a.cfg.Scale(), args[1])
		if err != nil {
			return err
		}
		res, err := a.svc.Preview(cmd.Context(), args[0], r)
		if err != nil {
			return err
		}
		fmt.Printf("If rated %s now:\n", r)
		printResult(res)
		return nil
	},
}
