package main

import (
	"fmt"

	"github.com/fractionaljobsuk/skillgraph/internal/client"
	"github.com/fractionaljobsuk/skillgraph/internal/ui"
	"github.com/spf13/cobra"
)

var healthGRPC bool

var healthCmd = &cobra.Command{
	Use:     "health",
	Short:   "Check the health of the skillgraph server",
	GroupID: "system",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		status, err := apiClient.Health(ctx)
		if err != nil {
			return fmt.Errorf("checking health: %w", err)
		}

		grpcStatus := ""
		if healthGRPC {
			c, err := client.NewGRPCClient(grpcAddr, authToken)
			if err != nil {
				return err
			}
			defer c.Close()
			if grpcStatus, err = c.Health(ctx); err != nil {
				return fmt.Errorf("checking gRPC health: %w", err)
			}
		}

		w := cmd.OutOrStdout()
		if jsonOutput {
			out := map[string]any{"status": status.Status, "sessions": status.Sessions}
			if grpcStatus != "" {
				out["grpc"] = grpcStatus
			}
			if err := printJSON(w, out); err != nil {
				return err
			}
		} else {
			fmt.Fprintf(w, "%s HTTP  %s (%d live sessions)\n", ui.StatusIcon(status.Status == "ok"), status.Status, status.Sessions)
			if grpcStatus != "" {
				fmt.Fprintf(w, "%s gRPC  %s\n", ui.StatusIcon(grpcStatus == "SERVING"), grpcStatus)
			}
		}

		if status.Status != "ok" {
			return fmt.Errorf("unhealthy: %s", status.Status)
		}
		if grpcStatus != "" && grpcStatus != "SERVING" {
			return fmt.Errorf("gRPC unhealthy: %s", grpcStatus)
		}
		return nil
	},
}

func init() {
	healthCmd.Flags().BoolVar(&healthGRPC, "grpc", false, "also check the gRPC health service")
}
