package main

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/fractionaljobsuk/skillgraph/internal/ui"
	"github.com/spf13/cobra"
)

// helpRule restyles every match of re in cobra's plain help text.
type helpRule struct {
	re    *regexp.Regexp
	style func(groups []string) string
}

var helpRules = []helpRule{
	// Section headers such as "Graphs:" or "Flags:".
	{regexp.MustCompile(`(?m)^([A-Z][^\n]*:)[ \t]*$`), func(g []string) string {
		return ui.RenderAccent(g[1])
	}},
	// Example invocations: indented lines starting with the binary name.
	{regexp.MustCompile(`(?m)^(\s+)(sg [^\n]*)$`), func(g []string) string {
		return g[1] + ui.RenderCommand(g[2])
	}},
	// Subcommand names in command lists.
	{regexp.MustCompile(`(?m)^(  )([a-z][\w-]*)(  +)`), func(g []string) string {
		return g[1] + ui.RenderCommand(g[2]) + g[3]
	}},
	// Flag value types.
	{regexp.MustCompile(`(--[\w-]+ )(string|int|float|duration|strings)\b`), func(g []string) string {
		return g[1] + ui.RenderMuted(g[2])
	}},
	{regexp.MustCompile(`\(default [^)]*\)`), func(g []string) string {
		return ui.RenderMuted(g[0])
	}},
}

// colorizeHelp applies helpRules in order.
func colorizeHelp(s string) string {
	for _, r := range helpRules {
		s = r.re.ReplaceAllStringFunc(s, func(m string) string {
			return r.style(r.re.FindStringSubmatch(m))
		})
	}
	return s
}

// colorizedHelpFunc prints cobra's usage text, styled when stdout takes color.
func colorizedHelpFunc() func(*cobra.Command, []string) {
	return func(cmd *cobra.Command, _ []string) {
		out := cmd.OutOrStdout()
		if !ui.ShouldUseColor() {
			_ = cmd.Usage()
			return
		}
		var buf bytes.Buffer
		cmd.SetOut(&buf)
		_ = cmd.Usage()
		cmd.SetOut(out)
		fmt.Fprint(out, colorizeHelp(strings.TrimRight(buf.String(), "\n")+"\n"))
	}
}
