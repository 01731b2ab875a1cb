package main

import (
	"fmt"

	"github.com/fractionaljobsuk/skillgraph/internal/events"
	"github.com/spf13/cobra"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh <jobs|user> [<user-id>]",
	Short: "Ask live views to refetch their graph and restart the layout",
	Example: `  sg refresh jobs
  sg refresh user 42`,
	GroupID: "system",
	Args:    cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		r := events.Refresh{Scope: args[0]}
		if len(args) == 2 {
			r.UserID = args[1]
		}
		if err := r.Validate(); err != nil {
			return err
		}
		got, err := apiClient.Refresh(cmd.Context(), r)
		if err != nil {
			return fmt.Errorf("publishing refresh: %w", err)
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), got)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "published %s\n", got.Topic())
		return nil
	},
}
