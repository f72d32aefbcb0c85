package ui

import (
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/javiermolinar/shcadule/internal/board"
)

// Color definitions for consistent styling across the UI.
var (
	// Headers: bold
	colorHeader = color.New(color.Bold)

	// Stats: green for positive metrics
	colorStats = color.New(color.FgGreen)

	// Muted: for secondary information
	colorMuted = color.New(color.FgWhite, color.Faint)

	// Warnings: yellow
	colorWarn = color.New(color.FgYellow)
)

// activityColors maps board colors to terminal colors.
var activityColors = map[board.Color]*color.Color{
	board.ColorBlue:   color.New(color.FgBlue),
	board.ColorGreen:  color.New(color.FgGreen),
	board.ColorRed:    color.New(color.FgRed),
	board.ColorYellow: color.New(color.FgYellow),
	board.ColorPurple: color.New(color.FgMagenta),
	board.ColorPink:   color.New(color.FgHiMagenta),
	board.ColorIndigo: color.New(color.FgHiBlue),
	board.ColorOrange: color.New(color.FgHiYellow),
}

// termWidth returns the terminal width, or a default if detection fails.
func termWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80 // sensible default
	}
	return width
}

// stdinIsTerminal reports whether interactive prompts can be shown.
func stdinIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// DisableColor disables all color output.
func DisableColor() {
	color.NoColor = true
}

// EnableColor enables color output (if terminal supports it).
func EnableColor() {
	color.NoColor = false
}

// formatActivity colors s with the activity's color.
func formatActivity(s string, c board.Color) string {
	if col, ok := activityColors[c]; ok {
		return col.Sprint(s)
	}
	return s
}

// formatHeader formats text as a header.
func formatHeader(s string) string {
	return colorHeader.Sprint(s)
}

// formatStats formats text for statistics.
func formatStats(s string) string {
	return colorStats.Sprint(s)
}

// formatMuted formats text as secondary/muted.
func formatMuted(s string) string {
	return colorMuted.Sprint(s)
}

// formatWarn formats a notice the user should read.
func formatWarn(s string) string {
	return colorWarn.Sprint(s)
}
