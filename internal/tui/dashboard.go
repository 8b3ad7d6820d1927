package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/casedesk/cli/internal/listview"
)

// DashboardView shows the overview counters and the read-only feeds
type DashboardView struct {
	app    *App
	width  int
	height int
}

// NewDashboardView creates a new dashboard view
func NewDashboardView(app *App) *DashboardView {
	return &DashboardView{app: app, width: 80, height: 24}
}

// Init loads the dashboard panels
func (dv *DashboardView) Init() tea.Cmd {
	return dv.app.loadDashboard
}

// Help lists the dashboard keys
func (dv *DashboardView) Help() string {
	return "0-6 switch page • r refresh • q quit"
}

// Update handles updates
func (dv *DashboardView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		dv.width = msg.Width
		dv.height = msg.Height
	case tea.KeyMsg:
		if msg.String() == "r" {
			return dv, tea.Batch(dv.app.loadDashboard, dv.app.loadCases, dv.app.refreshDocuments)
		}
	}
	return dv, nil
}

// View renders the dashboard
func (dv *DashboardView) View() string {
	snap := dv.app.dashboard.Snapshot()
	docs := dv.app.docs.Snapshot()

	lines := []string{titleStyle.Render("Case Desk"), ""}

	o := snap.Overview
	counters := []string{
		counter("Active Cases", o.ActiveCases, snap.HasOverview),
		counter("Pending Review", o.PendingReview, snap.HasOverview),
		counter("New Clients", o.NewClients, snap.HasOverview),
		counter("Deadlines", o.UpcomingDeadlines, snap.HasOverview),
		counter("Documents", len(docs.Rows), docs.Loaded),
	}
	lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, counters...))

	if snap.HasOverview && o.ActiveCases > 0 {
		progress := float64(o.PendingReview) / float64(o.ActiveCases)
		lines = append(lines, "", mutedStyle.Render("Pending review ")+dv.renderProgressBar(progress)+
			mutedStyle.Render(fmt.Sprintf(" %.0f%%", progress*100)))
	}

	half := dv.width/2 - 2
	if half < 30 {
		half = 30
	}
	left := lipgloss.JoinVertical(lipgloss.Left,
		feedPanel("Recent Activity", snap.Activity, "No recent activity.", half),
		feedPanel("Notifications", snap.Notifications, "No notifications.", half),
	)
	right := feedPanel("Upcoming Deadlines", snap.Deadlines, "No upcoming deadlines.", half)
	lines = append(lines, "", lipgloss.JoinHorizontal(lipgloss.Top, left, right))

	for _, e := range snap.Errors {
		lines = append(lines, errorStyle.Render(e))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func counter(label string, n int, loaded bool) string {
	value := "…"
	if loaded {
		value = humanize.Comma(int64(n))
	}
	return boxStyle.Width(16).Render(mutedStyle.Render(label) + "\n" + headingStyle.Render(value))
}

func feedPanel(title string, items []listview.FeedLine, empty string, width int) string {
	lines := []string{headingStyle.Render(title)}
	if len(items) == 0 {
		lines = append(lines, mutedStyle.Render(empty))
	}
	for i, item := range items {
		if i == 8 {
			lines = append(lines, mutedStyle.Render(fmt.Sprintf("+%d more", len(items)-i)))
			break
		}
		text := item.Text
		if item.Unread {
			text = "● " + text
		}
		line := truncate(text, width-18)
		if item.When != "" {
			line += " " + mutedStyle.Render(item.When)
		}
		lines = append(lines, line)
	}
	return boxStyle.Width(width).Render(strings.Join(lines, "\n"))
}

// renderProgressBar creates a text-based progress bar
func (dv *DashboardView) renderProgressBar(progress float64) string {
	if progress > 1 {
		progress = 1
	}
	width := 30
	filled := int(progress * float64(width))
	return lipgloss.NewStyle().Foreground(colorWarn).Render(strings.Repeat("█", filled)) +
		mutedStyle.Render(strings.Repeat("░", width-filled))
}
