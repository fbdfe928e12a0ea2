package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/docker/go-units"
)

// Colour palette for UI elements.
//
//nolint:misspell // lipgloss uses American spelling (Color) for its API
var (
	// Status colours
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))             // Green
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true) // Red
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))            // Yellow

	// UI elements
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("255"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245")) // Grey
	valueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("255")) // White
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")) // Dark grey
	pathStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("81"))  // Cyan
	savedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("141")) // Purple
	dividerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// Symbols for output.
const (
	checkMark = "✓"
	crossMark = "✗"
	arrow     = "→"
)

// formatPath returns a styled file path.
func formatPath(path string) string {
	return pathStyle.Render(path)
}

// formatSize returns a human-readable byte count.
func formatSize(n int) string {
	return units.HumanSize(float64(n))
}

// formatSavings returns "<in> → <out> (-x%)" for a size change.
func formatSavings(in, out int) string {
	pct := 0.0
	if in > 0 {
		pct = float64(in-out) / float64(in) * 100
	}
	return fmt.Sprintf("%s %s %s %s",
		formatSize(in), arrow, formatSize(out),
		savedStyle.Render(fmt.Sprintf("(-%.1f%%)", pct)))
}

// formatSuccess returns a styled success message.
func formatSuccess(msg string) string {
	return successStyle.Render(checkMark+" ") + msg
}

// formatError returns a styled error message.
func formatError(msg string) string {
	return errorStyle.Render(crossMark+" ") + msg
}

// formatWarning returns a styled warning message.
func formatWarning(msg string) string {
	return warnStyle.Render("! ") + msg
}

// formatLabel returns a styled label (for key-value pairs).
func formatLabel(label string) string {
	return labelStyle.Render(label + ":")
}

// formatValue returns a styled value.
func formatValue(value string) string {
	return valueStyle.Render(value)
}

// formatHeader returns a styled header.
func formatHeader(text string) string {
	return headerStyle.Render(text)
}

// formatDivider returns a styled divider line.
func formatDivider(width int) string {
	return dividerStyle.Render(strings.Repeat("─", width))
}

// formatMuted returns muted/dimmed text.
func formatMuted(text string) string {
	return mutedStyle.Render(text)
}

// printStyledError prints a styled error to stderr.
func printStyledError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	_, _ = fmt.Fprintln(os.Stderr, formatError(msg))
}

// printStyledWarning prints a styled warning to stderr.
func printStyledWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	_, _ = fmt.Fprintln(os.Stderr, formatWarning(msg))
}
