package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/casedesk/cli/internal/documents"
)

var (
	colorAccent = lipgloss.Color("205")
	colorInfo   = lipgloss.Color("39")
	colorOK     = lipgloss.Color("42")
	colorWarn   = lipgloss.Color("214")
	colorError  = lipgloss.Color("196")
	colorMuted  = lipgloss.Color("241")

	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	headingStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorInfo)
	mutedStyle     = lipgloss.NewStyle().Foreground(colorMuted)
	errorStyle     = lipgloss.NewStyle().Foreground(colorError)
	successStyle   = lipgloss.NewStyle().Foreground(colorOK)
	helpStyle      = lipgloss.NewStyle().Foreground(colorMuted)
	tabStyle       = lipgloss.NewStyle().Foreground(colorMuted)
	activeTabStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230")).Background(colorAccent)
	boxStyle       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorMuted).Padding(0, 1)
	modalStyle     = lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).BorderForeground(colorWarn).Padding(1, 2)
)

// badgeStyle colors a status badge by its slug
func badgeStyle(slug string) lipgloss.Style {
	s := lipgloss.NewStyle().Bold(true)
	switch name := strings.TrimPrefix(slug, "status-badge-"); {
	case strings.Contains(name, "closed") || strings.Contains(name, "inactive"):
		return s.Foreground(colorMuted)
	case strings.Contains(name, "new") || strings.Contains(name, "intake"):
		return s.Foreground(colorInfo)
	case strings.Contains(name, "pending") || strings.Contains(name, "review") || strings.Contains(name, "hold"):
		return s.Foreground(colorWarn)
	case strings.Contains(name, "urgent"):
		return s.Foreground(colorError)
	default:
		return s.Foreground(colorOK)
	}
}

// statusLine renders the inline status of a document operation
func statusLine(st documents.Status) string {
	switch st.Kind {
	case documents.StatusInfo:
		return lipgloss.NewStyle().Foreground(colorInfo).Render(st.Text)
	case documents.StatusSuccess:
		return successStyle.Render(st.Text)
	case documents.StatusError:
		return errorStyle.Render(st.Text)
	default:
		return ""
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}
