package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/fractionaljobsuk/skillgraph/internal/model"
	"github.com/fractionaljobsuk/skillgraph/internal/ui"
)

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// writeOutput writes data to path, or to stdout when path is "" or "-".
// Binary output is never written to a terminal.
func writeOutput(path string, data []byte, binary bool) error {
	if path == "" || path == "-" {
		if binary && ui.IsTerminal(os.Stdout) {
			return fmt.Errorf("refusing to write binary output to a terminal; use --out")
		}
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func printNodes(w io.Writer, g *model.GraphData) {
	degree := make(map[string]int, len(g.Nodes))
	for _, e := range g.Edges {
		degree[e.Source]++
		degree[e.Target]++
	}
	rows := make([][]string, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		label := n.Label
		if len(label) > 48 {
			label = label[:45] + "..."
		}
		rows = append(rows, []string{n.ID, ui.RenderType(n.Type.String()), label, strconv.Itoa(degree[n.ID])})
	}
	ui.Table(w, []string{"ID", "TYPE", "LABEL", "EDGES"}, rows)
	fmt.Fprintf(w, "\n%d nodes, %d edges\n", len(g.Nodes), len(g.Edges))
}

func printJobsStats(w io.Writer, s *model.JobsGraphStats) {
	fmt.Fprintf(w, "Jobs:       %d\n", s.TotalJobs)
	fmt.Fprintf(w, "Skills:     %d\n", s.UniqueSkills)
	fmt.Fprintf(w, "Companies:  %d\n", s.UniqueCompanies)
	if len(s.TopSkills) > 0 {
		fmt.Fprintln(w)
		rows := make([][]string, 0, len(s.TopSkills))
		for _, sc := range s.TopSkills {
			rows = append(rows, []string{sc.Skill, strconv.Itoa(sc.Count)})
		}
		ui.Table(w, []string{"TOP SKILL", "JOBS"}, rows)
	}
	if len(s.TopCompanies) > 0 {
		fmt.Fprintln(w)
		rows := make([][]string, 0, len(s.TopCompanies))
		for _, cc := range s.TopCompanies {
			rows = append(rows, []string{cc.Company, strconv.Itoa(cc.Count)})
		}
		ui.Table(w, []string{"TOP COMPANY", "JOBS"}, rows)
	}
}

func printUserStats(w io.Writer, s *model.UserGraphStats) {
	fmt.Fprintf(w, "Skills:       %d\n", s.SkillCount)
	fmt.Fprintf(w, "Companies:    %d\n", s.CompanyCount)
	fmt.Fprintf(w, "Preferences:  %d\n", s.PreferenceCount)
	fmt.Fprintf(w, "Matched jobs: %d\n", s.MatchedJobCount)
}
