// Package style provides the colors, icons and text styles shared by the CLI.
package style

import "github.com/charmbracelet/lipgloss"

// Brand Colors.
var (
	Iris   = lipgloss.Color("#8B5CF6")
	Slate  = lipgloss.Color("#667085")
	Green  = lipgloss.Color("#22A06B")
	Red    = lipgloss.Color("#D93025")
	Yellow = lipgloss.Color("#F59E0B")
)

// Icons.
const (
	Check   = "✓"
	Cross   = "✗"
	Warning = "!"
	Tilde   = "~"
	Dot     = "●"
	Circle  = "○"
)

// Text styles used by reports.
var (
	Heading  = lipgloss.NewStyle().Bold(true).Foreground(Iris)
	Muted    = lipgloss.NewStyle().Foreground(Slate)
	Success  = lipgloss.NewStyle().Foreground(Green)
	Failure  = lipgloss.NewStyle().Foreground(Red)
	Pending  = lipgloss.NewStyle().Foreground(Yellow)
	Indented = lipgloss.NewStyle().PaddingLeft(4)
)
