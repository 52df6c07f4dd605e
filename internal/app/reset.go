package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/bookpipe/internal/catalog"
)

func newResetCmd() *cobra.Command {
	var statuses []string

	cmd := &cobra.Command{
		Use:     "reset",
		Aliases: []string{"retry"},
		Short:   "Move failed or stuck books back to pending",
		Long: `Return books to pending so the next download picks them up again.

By default both error and downloading books are reset; a book left in
downloading means an earlier run was interrupted.

Examples:
  bookpipe reset
  bookpipe reset --status error`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := parseStatuses(statuses)
			if err != nil {
				return err
			}
			n, err := store.Reset(from...)
			if err != nil {
				return err
			}
			if n == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing to reset")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Reset %d book(s) to pending\n", n)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&statuses, "status", []string{"error", "downloading"}, "Statuses to reset (repeatable)")
	return cmd
}

func parseStatuses(names []string) ([]catalog.Status, error) {
	out := make([]catalog.Status, 0, len(names))
	for _, n := range names {
		st, err := catalog.ParseStatus(n)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, nil
}
