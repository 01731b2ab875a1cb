package main

import (
	"fmt"

	"github.com/fractionaljobsuk/skillgraph/internal/provider"
	"github.com/fractionaljobsuk/skillgraph/internal/ui"
	"github.com/spf13/cobra"
)

var rolesCmd = &cobra.Command{
	Use:     "roles",
	Short:   "List the role taxonomies",
	GroupID: "graphs",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		roles, err := apiClient.Roles(cmd.Context())
		if err != nil {
			return fmt.Errorf("listing roles: %w", err)
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), roles)
		}
		rows := make([][]string, 0, len(roles))
		for _, r := range roles {
			rows = append(rows, []string{r.Key, r.Label})
		}
		ui.Table(cmd.OutOrStdout(), []string{"KEY", "ROLE"}, rows)
		return nil
	},
}

var graphFlags sourceFlags

var graphCmd = &cobra.Command{
	Use:   "graph <source>",
	Short: "Show the nodes of a graph",
	Example: `  sg graph roles/cto
  sg graph jobs --role cfo --limit 20
  sg graph user/42 --json`,
	GroupID: "graphs",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := graphFlags.source(args)
		if err != nil {
			return err
		}
		data, err := apiClient.Graph(cmd.Context(), src)
		if err != nil {
			return fmt.Errorf("fetching %s: %w", src.Name(), err)
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), data)
		}
		printNodes(cmd.OutOrStdout(), data)
		return nil
	},
}

var statsFlags sourceFlags

var statsCmd = &cobra.Command{
	Use:   "stats <jobs|user/<id>>",
	Short: "Show summary statistics for a jobs or user graph",
	Example: `  sg stats jobs --role cmo
  sg stats user/42`,
	GroupID: "graphs",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := statsFlags.source(args)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		switch src.Kind {
		case provider.KindJobs:
			jg, err := apiClient.JobsGraph(cmd.Context(), src.Jobs)
			if err != nil {
				return fmt.Errorf("fetching jobs graph: %w", err)
			}
			if jsonOutput {
				return printJSON(w, jg.Stats)
			}
			printJobsStats(w, jg.Stats)
		case provider.KindUser:
			ug, err := apiClient.UserGraph(cmd.Context(), src.UserID)
			if err != nil {
				return fmt.Errorf("fetching user graph: %w", err)
			}
			if jsonOutput {
				return printJSON(w, ug.Stats)
			}
			printUserStats(w, ug.Stats)
		default:
			return fmt.Errorf("role taxonomies have no stats; use 'sg graph %s'", args[0])
		}
		return nil
	},
}

var viewFlags sourceFlags

var viewCmd = &cobra.Command{
	Use:     "view <source>",
	Short:   "Print the address of the interactive page for a graph",
	Example: `  sg view roles/cpo`,
	GroupID: "graphs",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := viewFlags.source(args)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), apiClient.ViewURL(src))
		return nil
	},
}

func init() {
	graphFlags.bind(graphCmd, false)
	statsFlags.bind(statsCmd, false)
	viewFlags.bind(viewCmd, false)
}
