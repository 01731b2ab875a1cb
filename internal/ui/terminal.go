package ui

import (
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// ShouldUseColor returns true when ANSI colors should be used on stdout.
// It respects NO_COLOR, CLICOLOR_FORCE, CLICOLOR, and TTY detection.
func ShouldUseColor() bool {
	// https://no-color.org: any non-empty value disables color.
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if strings.TrimSpace(os.Getenv("CLICOLOR_FORCE")) == "1" {
		return true
	}
	if strings.TrimSpace(os.Getenv("CLICOLOR")) == "0" {
		return false
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// ConfigureColor applies ShouldUseColor to the color package. disable forces
// plain output (the --no-color flag).
func ConfigureColor(disable bool) {
	color.NoColor = disable || !ShouldUseColor()
}

// IsTerminal reports whether f is attached to a terminal. The CLI refuses to
// dump binary formats such as PNG onto one.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
