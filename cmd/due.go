package cmd

import (
	"github.com/spf13/cobra"
)

var dueCmd = &cobra.Command{
	Use:   "due",
	Short: "List items due for review, most urgent first",
	RunE:  runDue,
}

func runDue(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	items, err := a.svc.Due(cmd.Context())
	if err != nil {
		return err
	}
	printItems(items, a.svc.Now())
	return nil
}
