package ui

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
)

var (
	Accent = color.New(color.FgHiBlue, color.Bold)
	Muted  = color.New(color.FgHiBlack)
	Good   = color.New(color.FgGreen)
	Bad    = color.New(color.FgRed)
	Warn   = color.New(color.FgYellow)
)

// typeColors mirrors the renderer palette with the nearest terminal colors.
var typeColors = map[string]*color.Color{
	"user":       color.New(color.FgMagenta, color.Bold),
	"skill":      color.New(color.FgBlue),
	"job":        color.New(color.FgGreen),
	"company":    color.New(color.FgYellow),
	"preference": color.New(color.FgHiMagenta),
	"fact":       color.New(color.FgCyan),
}

// RenderAccent returns s in the accent color.
func RenderAccent(s string) string { return Accent.Sprint(s) }

// RenderMuted returns s in the muted color.
func RenderMuted(s string) string { return Muted.Sprint(s) }

// RenderCommand returns s styled as a command name.
func RenderCommand(s string) string { return Accent.Sprint(s) }

// RenderType colors a node type name.
func RenderType(t string) string {
	if c, ok := typeColors[t]; ok {
		return c.Sprint(t)
	}
	return t
}

// StatusIcon returns a check or cross.
func StatusIcon(ok bool) string {
	if ok {
		return Good.Sprint("✓")
	}
	return Bad.Sprint("✗")
}

// ForceNoColor disables color output globally.
func ForceNoColor() {
	color.NoColor = true
}

// Table writes an aligned table. Cells may carry color codes; widths are
// computed on the visible text.
func Table(w io.Writer, headers []string, rows [][]string) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], visibleWidth(cell))
			}
		}
	}

	var head, sep strings.Builder
	for i, h := range headers {
		head.WriteString(pad(h, widths[i]))
		sep.WriteString(strings.Repeat("─", widths[i]) + "  ")
	}
	fmt.Fprintln(w, Muted.Sprint(strings.TrimRight(head.String(), " ")))
	fmt.Fprintln(w, Muted.Sprint(strings.TrimRight(sep.String(), " ")))

	for _, row := range rows {
		var line strings.Builder
		for i, cell := range row {
			if i < len(widths) {
				line.WriteString(pad(cell, widths[i]))
			}
		}
		fmt.Fprintln(w, strings.TrimRight(line.String(), " "))
	}
}

func pad(s string, width int) string {
	return s + strings.Repeat(" ", max(width-visibleWidth(s), 0)+2)
}

// visibleWidth counts runes outside ANSI escape sequences.
func visibleWidth(s string) int {
	n := 0
	inEsc := false
	for _, r := range s {
		switch {
		case inEsc:
			if r == 'm' {
				inEsc = false
			}
		case r == '\x1b':
			inEsc = true
		default:
			n++
		}
	}
	return n
}
