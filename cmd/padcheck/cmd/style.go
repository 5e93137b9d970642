package cmd

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorCyan   = lipgloss.Color("36")
	colorGreen  = lipgloss.Color("35")
	colorYellow = lipgloss.Color("220")
	colorRed    = lipgloss.Color("167")
	colorDim    = lipgloss.Color("240")
)

var (
	styleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleError   = lipgloss.NewStyle().Foreground(colorRed)
	styleDim     = lipgloss.NewStyle().Foreground(colorDim)
)

// Substrings that mark a report line as a failure or a warning.
var (
	failureMarks = []string{
		"too close", "too narrow", "too short", "too tall", "Should be", "mm apart",
		"Failed ", " fail at ", "larger than every drill", "exceeds limits", "Error:",
	}
	warningMarks = []string{"not checked"}
)

// styleLine colours one report line by what it says.
func styleLine(line string) string {
	trimmed := strings.TrimSpace(line)
	switch {
	case strings.HasPrefix(trimmed, "*****"):
		if strings.Contains(trimmed, "DONE") {
			return styleSuccess.Render(line)
		}
		return styleTitle.Render(line)
	case containsAny(line, failureMarks):
		return styleError.Render(line)
	case containsAny(line, warningMarks):
		return styleWarning.Render(line)
	}
	return line
}

func containsAny(s string, marks []string) bool {
	for _, m := range marks {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}
