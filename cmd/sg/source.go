package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strconv"

	"github.com/fractionaljobsuk/skillgraph/internal/model"
	"github.com/fractionaljobsuk/skillgraph/internal/provider"
	"github.com/spf13/cobra"
)

// sourceFlags selects a graph: a positional source path such as "roles/cfo",
// "jobs" or "user/42", narrowed by the jobs filters, or a local JSON file.
type sourceFlags struct {
	role  string
	query string
	limit int
	file  string
}

func (f *sourceFlags) bind(cmd *cobra.Command, withFile bool) {
	cmd.Flags().StringVar(&f.role, "role", "", "jobs: only listings for this role key")
	cmd.Flags().StringVarP(&f.query, "query", "q", "", "jobs: search titles and descriptions")
	cmd.Flags().IntVar(&f.limit, "limit", 0, "jobs: maximum listings (server caps at 100)")
	if withFile {
		cmd.Flags().StringVarP(&f.file, "file", "f", "", "read GraphData JSON from a file instead of a source")
	}
}

// source resolves the positional argument.
func (f *sourceFlags) source(args []string) (provider.Source, error) {
	if len(args) == 0 {
		return provider.Source{}, fmt.Errorf("a source (roles/<key>, jobs or user/<id>) is required")
	}
	q := url.Values{}
	if f.role != "" {
		q.Set("role", f.role)
	}
	if f.query != "" {
		q.Set("q", f.query)
	}
	if f.limit > 0 {
		q.Set("limit", strconv.Itoa(f.limit))
	}
	return provider.ParseSource(args[0], q)
}

// load returns the GraphData to work on and a title for it. Role
// taxonomies are built locally; jobs and user graphs come from the server.
func (f *sourceFlags) load(ctx context.Context, args []string) (*model.GraphData, string, error) {
	if f.file != "" {
		data, err := readGraphFile(f.file)
		return data, "", err
	}
	src, err := f.source(args)
	if err != nil {
		return nil, "", err
	}
	if src.Kind == provider.KindRoles {
		rg, err := provider.Taxonomy{}.Build(src.Role)
		if err != nil {
			return nil, "", err
		}
		return rg.Graph, rg.Role.Label, nil
	}
	data, err := apiClient.Graph(ctx, src)
	return data, "", err
}

// readGraphFile accepts a bare GraphData document or any provider response
// wrapping one under "graph".
func readGraphFile(path string) (*model.GraphData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc struct {
		Graph *model.GraphData `json:"graph"`
		model.GraphData
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if doc.Graph != nil {
		return doc.Graph, nil
	}
	return &doc.GraphData, nil
}
