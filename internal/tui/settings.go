package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/casedesk/cli/config"
)

var settingLabels = []string{"API Base URL", "Your Name", "Inbox Directory", "Documents Poll", "Dashboard Poll", "Log Level"}

// SettingsView displays and allows editing settings
type SettingsView struct {
	app    *App
	inputs []textinput.Model

	editing bool
	focus   int
	message string
	failed  bool
}

// NewSettingsView creates a new settings view
func NewSettingsView(app *App) *SettingsView {
	sv := &SettingsView{app: app}
	for _, label := range settingLabels {
		ti := textinput.New()
		ti.Prompt = lipgloss.NewStyle().Width(18).Render(label + ":")
		sv.inputs = append(sv.inputs, ti)
	}
	sv.load(app.cfg)
	return sv
}

// load copies cfg into the inputs
func (sv *SettingsView) load(cfg *config.Config) {
	values := []string{
		cfg.API.BaseURL,
		cfg.User.Name,
		cfg.Paths.InboxDir,
		cfg.Polling.Documents.String(),
		cfg.Polling.Dashboard.String(),
		cfg.Log.Level,
	}
	for i, v := range values {
		sv.inputs[i].SetValue(v)
	}
}

// Init initializes the settings view
func (sv *SettingsView) Init() tea.Cmd {
	return nil
}

// Capturing reports edit mode
func (sv *SettingsView) Capturing() bool { return sv.editing }

// Modal reports edit mode
func (sv *SettingsView) Modal() bool { return sv.editing }

// Help lists the settings keys
func (sv *SettingsView) Help() string {
	if sv.editing {
		return "tab move • ctrl+s save • ctrl+r reset to defaults • esc cancel"
	}
	return "e edit"
}

// Update handles updates
func (sv *SettingsView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case configSavedMsg:
		if msg.err != nil {
			sv.message = "Error saving settings: " + msg.err.Error()
			sv.failed = true
			return sv, nil
		}
		sv.message = "Settings saved. API and polling changes apply on restart."
		sv.failed = false
		sv.editing = false
		sv.blurAll()
		return sv, nil

	case tea.KeyMsg:
		if !sv.editing {
			if msg.String() == "e" {
				sv.editing = true
				sv.message = ""
				sv.focus = 0
				return sv, sv.inputs[0].Focus()
			}
			return sv, nil
		}
		switch msg.String() {
		case "esc":
			sv.editing = false
			sv.blurAll()
			sv.load(sv.app.cfg)
			sv.message = ""
			return sv, nil
		case "tab", "down", "enter":
			sv.focus = (sv.focus + 1) % len(sv.inputs)
			return sv, sv.refocus()
		case "shift+tab", "up":
			sv.focus = (sv.focus + len(sv.inputs) - 1) % len(sv.inputs)
			return sv, sv.refocus()
		case "ctrl+s":
			return sv, sv.saveSettings()
		case "ctrl+r":
			sv.load(config.Default())
			sv.message = "Reset to defaults. Press ctrl+s to apply."
			sv.failed = false
			return sv, nil
		}
		var cmd tea.Cmd
		sv.inputs[sv.focus], cmd = sv.inputs[sv.focus].Update(msg)
		return sv, cmd
	}
	return sv, nil
}

func (sv *SettingsView) blurAll() {
	for i := range sv.inputs {
		sv.inputs[i].Blur()
	}
}

func (sv *SettingsView) refocus() tea.Cmd {
	sv.blurAll()
	return sv.inputs[sv.focus].Focus()
}

// saveSettings validates the inputs and saves them to the config file
func (sv *SettingsView) saveSettings() tea.Cmd {
	next := *sv.app.cfg
	next.API.BaseURL = strings.TrimSpace(sv.inputs[0].Value())
	next.User.Name = strings.TrimSpace(sv.inputs[1].Value())
	next.Paths.InboxDir = strings.TrimSpace(sv.inputs[2].Value())
	next.Log.Level = strings.TrimSpace(sv.inputs[5].Value())

	for i, dst := range map[int]*time.Duration{3: &next.Polling.Documents, 4: &next.Polling.Dashboard} {
		d, err := time.ParseDuration(strings.TrimSpace(sv.inputs[i].Value()))
		if err != nil {
			sv.message = fmt.Sprintf("Invalid %s: %v", strings.ToLower(settingLabels[i]), err)
			sv.failed = true
			return nil
		}
		*dst = d
	}

	if err := next.Validate(); err != nil {
		sv.message = err.Error()
		sv.failed = true
		return nil
	}

	*sv.app.cfg = next
	cfg := sv.app.cfg
	return func() tea.Msg {
		return configSavedMsg{err: cfg.Save()}
	}
}

// View renders the settings view
func (sv *SettingsView) View() string {
	lines := []string{titleStyle.Render("Settings"), ""}

	if sv.editing {
		for _, in := range sv.inputs {
			lines = append(lines, in.View())
		}
	} else {
		cfg := sv.app.cfg
		inbox := cfg.Paths.InboxDir
		if inbox == "" {
			inbox = "(disabled)"
		}
		rows := [][2]string{
			{"API Base URL", cfg.API.BaseURL},
			{"API Timeout", cfg.API.Timeout.String()},
			{"Your Name", cfg.User.Name},
			{"Inbox Directory", inbox},
			{"Documents Poll", cfg.Polling.Documents.String()},
			{"Dashboard Poll", cfg.Polling.Dashboard.String()},
			{"Log File", cfg.Log.File},
			{"Log Level", cfg.Log.Level},
			{"Config Directory", config.Dir()},
		}
		for _, r := range rows {
			lines = append(lines, mutedStyle.Render(fmt.Sprintf("%-18s", r[0]))+lipgloss.NewStyle().Foreground(colorInfo).Render(r[1]))
		}
	}

	if sv.message != "" {
		lines = append(lines, "")
		if sv.failed {
			lines = append(lines, errorStyle.Render(sv.message))
		} else {
			lines = append(lines, successStyle.Render(sv.message))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
