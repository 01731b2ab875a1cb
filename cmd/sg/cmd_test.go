package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	skillgraphv1 "github.com/fractionaljobsuk/skillgraph/gen/skillgraph/v1"
	"github.com/fractionaljobsuk/skillgraph/internal/events"
	"github.com/fractionaljobsuk/skillgraph/internal/layout"
	"github.com/fractionaljobsuk/skillgraph/internal/provider"
	"github.com/fractionaljobsuk/skillgraph/internal/server"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// resetFlags restores every flag of cmd and its children to its default so
// package-level flag state does not leak between runs.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// runCmd executes the CLI with args and returns its standard output.
func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(append(args, "--no-color"))
	err := rootCmd.Execute()
	return out.String(), err
}

// startServer serves the HTTP API with a short tick budget and returns its URL.
func startServer(t *testing.T, pub events.Publisher) string {
	t.Helper()
	p := layout.DefaultParams()
	p.MaxTicks = 5
	p.FrameInterval = 0
	srv := server.New(provider.New(nil), server.Options{
		Params:    p,
		Publisher: pub,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	ts := httptest.NewServer(srv.NewHTTPHandler(""))
	t.Cleanup(ts.Close)
	return ts.URL
}

const pairJSON = `{"graph":{"nodes":[
	{"id":"a","type":"skill","label":"Go"},
	{"id":"b","type":"job","label":"Fractional CTO"}
],"edges":[{"source":"b","target":"a","type":"requires_skill"}]}}`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRender_RoleSVG(t *testing.T) {
	out := filepath.Join(t.TempDir(), "cfo.svg")
	if _, err := runCmd(t, "render", "roles/cfo", "--ticks", "5", "-o", out); err != nil {
		t.Fatalf("render: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	svg := string(data)
	if !strings.Contains(svg, `data-node-id="role-cfo"`) {
		t.Error("missing center node")
	}
	if !strings.Contains(svg, "<title>CFO</title>") {
		t.Error("role label should become the title")
	}
	if strings.Contains(svg, "data-panel-id") {
		t.Error("no panel without --select")
	}
}

func TestRender_Formats(t *testing.T) {
	for _, tc := range []struct {
		format string
		want   string
	}{
		{"html", "<!DOCTYPE html>"},
		{"echarts", "echarts"},
		{"json", `"ticks": 3`},
	} {
		t.Run(tc.format, func(t *testing.T) {
			out := filepath.Join(t.TempDir(), "graph."+tc.format)
			if _, err := runCmd(t, "render", "roles/cmo", "--ticks", "3", "--format", tc.format, "-o", out); err != nil {
				t.Fatalf("render: %v", err)
			}
			data, _ := os.ReadFile(out)
			if !strings.Contains(string(data), tc.want) {
				t.Errorf("%s output missing %q", tc.format, tc.want)
			}
		})
	}
}

func TestRender_SelectFromFile(t *testing.T) {
	path := writeFile(t, "pair.json", pairJSON)
	out := filepath.Join(t.TempDir(), "pair.svg")
	if _, err := runCmd(t, "render", "-f", path, "--select", "a", "--ticks", "2", "-o", out); err != nil {
		t.Fatalf("render: %v", err)
	}
	data, _ := os.ReadFile(out)
	if !strings.Contains(string(data), `data-panel-id="a"`) {
		t.Error("selected node should show its panel")
	}
}

func TestRender_Errors(t *testing.T) {
	for _, tc := range []struct {
		name string
		args []string
		want string
	}{
		{"format", []string{"render", "roles/cfo", "--format", "gif"}, `unknown format "gif"`},
		{"width", []string{"render", "roles/cfo", "--width", "0"}, "must be positive"},
		{"no source", []string{"render"}, "a source"},
		{"unknown role", []string{"render", "roles/ceo"}, "unknown role"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := runCmd(t, tc.args...)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestLayout_Local(t *testing.T) {
	path := writeFile(t, "pair.json", pairJSON)
	out, err := runCmd(t, "layout", "-f", path, "--local", "--ticks", "3", "--json")
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	var resp skillgraphv1.LayoutResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("decoding %q: %v", out, err)
	}
	if resp.Ticks != 3 || len(resp.Positions) != 2 {
		t.Fatalf("got %+v", resp)
	}
}

func TestLayout_LocalTable(t *testing.T) {
	out, err := runCmd(t, "layout", "roles/coo", "--local", "--ticks", "2")
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	if !strings.Contains(out, "role-coo") || !strings.Contains(out, "settled in 2 ticks") {
		t.Errorf("unexpected table:\n%s", out)
	}
}

func TestGraphAndRoles(t *testing.T) {
	url := startServer(t, nil)

	out, err := runCmd(t, "graph", "roles/cto", "--url", url)
	if err != nil {
		t.Fatalf("graph: %v", err)
	}
	if !strings.Contains(out, "role-cto") || !strings.Contains(out, "16 nodes, 15 edges") {
		t.Errorf("unexpected graph output:\n%s", out)
	}

	out, err = runCmd(t, "roles", "--url", url, "--json")
	if err != nil {
		t.Fatalf("roles: %v", err)
	}
	if !strings.Contains(out, `"key": "chro"`) {
		t.Errorf("unexpected roles output:\n%s", out)
	}
}

func TestGraph_ServerError(t *testing.T) {
	url := startServer(t, nil)
	_, err := runCmd(t, "graph", "jobs", "--url", url)
	if err == nil || !strings.Contains(err.Error(), "HTTP 503: database not configured") {
		t.Fatalf("expected 503, got %v", err)
	}
}

func TestStats_RolesRejected(t *testing.T) {
	_, err := runCmd(t, "stats", "roles/cfo")
	if err == nil || !strings.Contains(err.Error(), "no stats") {
		t.Fatalf("expected an error, got %v", err)
	}
}

func TestRefresh(t *testing.T) {
	bus := events.NewLocalBus()
	defer bus.Close()
	ch, cancel, err := bus.Subscribe(events.TopicRefreshAll)
	if err != nil {
		t.Fatal(err)
	}
	defer cancel()
	url := startServer(t, bus)

	out, err := runCmd(t, "refresh", "user", "42", "--url", url)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if !strings.Contains(out, "published skillgraph.refresh.user") {
		t.Errorf("unexpected output: %s", out)
	}
	r, err := events.ParseRefresh(<-ch)
	if err != nil || r.UserID != "42" {
		t.Fatalf("bus got %+v, %v", r, err)
	}

	if _, err := runCmd(t, "refresh", "user"); err == nil {
		t.Fatal("a user refresh without an id should fail")
	}
}

func TestHealth(t *testing.T) {
	url := startServer(t, nil)
	out, err := runCmd(t, "health", "--url", url)
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	if !strings.Contains(out, "HTTP  ok (0 live sessions)") {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestView(t *testing.T) {
	out, err := runCmd(t, "view", "jobs", "--role", "cfo", "--url", "http://graphs.example.com")
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if strings.TrimSpace(out) != "http://graphs.example.com/v1/view/jobs?role=cfo" {
		t.Errorf("view URL = %q", out)
	}
}

func TestReadGraphFile(t *testing.T) {
	bare := writeFile(t, "bare.json", `{"nodes":[{"id":"x","type":"fact","label":"X"}],"edges":[]}`)
	wrapped := writeFile(t, "wrapped.json", pairJSON)

	g, err := readGraphFile(bare)
	if err != nil || len(g.Nodes) != 1 || g.Nodes[0].ID != "x" {
		t.Fatalf("bare: %+v, %v", g, err)
	}
	g, err = readGraphFile(wrapped)
	if err != nil || len(g.Nodes) != 2 || len(g.Edges) != 1 {
		t.Fatalf("wrapped: %+v, %v", g, err)
	}
	if _, err := readGraphFile(writeFile(t, "bad.json", `{`)); err == nil {
		t.Fatal("expected a parse error")
	}
}

func TestColorizeHelp(t *testing.T) {
	prev := color.NoColor
	color.NoColor = false
	defer func() { color.NoColor = prev }()

	in := "Graphs:\n  render      Lay out a graph\n\nExamples:\n  sg render roles/cfo\n\nFlags:\n      --width float   canvas width (default 600)\n"
	out := colorizeHelp(in)
	if out == in {
		t.Fatal("expected styled output")
	}
	for _, s := range []string{"Graphs:", "render", "sg render roles/cfo", "float", "(default 600)"} {
		if !strings.Contains(out, s) {
			t.Errorf("styled help lost %q", s)
		}
	}
	if !strings.Contains(out, "\x1b[") {
		t.Error("no ANSI codes in styled help")
	}
}
