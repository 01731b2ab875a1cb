package main

import (
	"os"

	"github.com/fractionaljobsuk/skillgraph/internal/client"
	"github.com/fractionaljobsuk/skillgraph/internal/ui"
	"github.com/spf13/cobra"
)

var (
	httpURL    string
	grpcAddr   string
	authToken  string
	jsonOutput bool
	noColor    bool

	apiClient *client.HTTPClient
)

func defaultHTTPURL() string {
	if s := os.Getenv("SKILLGRAPH_URL"); s != "" {
		return s
	}
	if u := activeRemote().URL; u != "" {
		return u
	}
	return "http://localhost:8080"
}

func defaultGRPCAddr() string {
	if s := os.Getenv("SKILLGRAPH_SERVER"); s != "" {
		return s
	}
	if a := activeRemote().GRPCAddr; a != "" {
		return a
	}
	return "localhost:9090"
}

func defaultToken() string {
	if s := os.Getenv("SKILLGRAPH_TOKEN"); s != "" {
		return s
	}
	return activeRemote().Token
}

var rootCmd = &cobra.Command{
	Use:           "sg <command>",
	Short:         "Knowledge graph layouts for fractional roles, jobs and profiles",
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		ui.ConfigureColor(noColor)
		apiClient = client.NewHTTPClient(httpURL, authToken)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&httpURL, "url", defaultHTTPURL(), "HTTP server URL")
	rootCmd.PersistentFlags().StringVar(&grpcAddr, "server", defaultGRPCAddr(), "gRPC server address")
	rootCmd.PersistentFlags().StringVar(&authToken, "token", defaultToken(), "bearer token for write calls")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddGroup(
		&cobra.Group{ID: "graphs", Title: "Graphs:"},
		&cobra.Group{ID: "system", Title: "System:"},
	)

	cobra.EnableCommandSorting = false
	rootCmd.SetHelpFunc(colorizedHelpFunc())

	// Graphs
	rootCmd.AddCommand(rolesCmd)
	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(layoutCmd)
	rootCmd.AddCommand(viewCmd)

	// System
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(refreshCmd)
	rootCmd.AddCommand(remoteCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
