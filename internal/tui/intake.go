package tui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/casedesk/cli/internal/intake"
)

const (
	fieldClient = iota
	fieldOpposing
	fieldCaseType
	fieldSummary
	fieldDates
)

var manualLabels = []string{"Client Name", "Opposing Party", "Case Type", "Summary of Facts", "Key Dates"}

// IntakeView runs audio or manual case intake
type IntakeView struct {
	app    *App
	audio  textinput.Model
	fields []textinput.Model
	output viewport.Model

	manual bool
	focus  int
	notice string
	width  int
	height int
}

// NewIntakeView creates a new intake view
func NewIntakeView(app *App) *IntakeView {
	iv := &IntakeView{app: app, width: 80, height: 24}

	iv.audio = textinput.New()
	iv.audio.Prompt = "Audio file: "
	iv.audio.Placeholder = "/path/to/call-recording.mp3"

	for i, label := range manualLabels {
		ti := textinput.New()
		ti.Prompt = lipgloss.NewStyle().Width(18).Render(label + ":")
		if i == fieldDates {
			ti.Placeholder = "comma separated, e.g. 2024-03-01, 2024-04-15"
		}
		iv.fields = append(iv.fields, ti)
	}

	iv.output = viewport.New(80, 10)
	return iv
}

// Init focuses the audio path input
func (iv *IntakeView) Init() tea.Cmd {
	return iv.audio.Focus()
}

// Capturing is always true: one of the inputs has focus
func (iv *IntakeView) Capturing() bool { return true }

// Help lists the intake keys
func (iv *IntakeView) Help() string {
	if iv.manual {
		return "tab/shift+tab move • enter next • ctrl+s submit • ctrl+t audio mode"
	}
	return "enter transcribe and process • ctrl+t manual entry • pgup/pgdn scroll"
}

// Update handles updates
func (iv *IntakeView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		iv.width = msg.Width
		iv.height = msg.Height
		iv.audio.Width = iv.width - 16
		for i := range iv.fields {
			iv.fields[i].Width = iv.width - 22
		}
		iv.output.Width = iv.width
		iv.output.Height = max(3, iv.app.bodyHeight()-12)
		return iv, nil

	case intakeDoneMsg:
		if msg.err != nil {
			iv.notice = msg.err.Error()
			return iv, nil
		}
		iv.notice = ""
		iv.output.SetContent(renderIntakeResult(msg.result, iv.width))
		iv.output.GotoTop()
		if msg.result.OK() && iv.manual {
			for i := range iv.fields {
				iv.fields[i].SetValue("")
			}
		}
		return iv, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+t":
			iv.manual = !iv.manual
			iv.notice = ""
			return iv, iv.refocus()
		case "pgup", "pgdown":
			var cmd tea.Cmd
			iv.output, cmd = iv.output.Update(msg)
			return iv, cmd
		}
		if iv.manual {
			return iv, iv.updateManual(msg)
		}
		if msg.String() == "enter" {
			return iv, iv.runAudio()
		}
		var cmd tea.Cmd
		iv.audio, cmd = iv.audio.Update(msg)
		return iv, cmd
	}
	return iv, nil
}

func (iv *IntakeView) updateManual(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "tab", "down":
		iv.focus = (iv.focus + 1) % len(iv.fields)
		return iv.refocus()
	case "shift+tab", "up":
		iv.focus = (iv.focus + len(iv.fields) - 1) % len(iv.fields)
		return iv.refocus()
	case "ctrl+s":
		return iv.submitManual()
	case "enter":
		if iv.focus == len(iv.fields)-1 {
			return iv.submitManual()
		}
		iv.focus++
		return iv.refocus()
	}
	var cmd tea.Cmd
	iv.fields[iv.focus], cmd = iv.fields[iv.focus].Update(msg)
	return cmd
}

func (iv *IntakeView) refocus() tea.Cmd {
	iv.audio.Blur()
	for i := range iv.fields {
		iv.fields[i].Blur()
	}
	if !iv.manual {
		return iv.audio.Focus()
	}
	return iv.fields[iv.focus].Focus()
}

func (iv *IntakeView) runAudio() tea.Cmd {
	path := strings.TrimSpace(iv.audio.Value())
	if path == "" {
		return nil
	}
	if iv.app.pipeline.Snapshot().Busy {
		iv.notice = intake.ErrBusy.Error()
		return nil
	}
	iv.notice = ""
	iv.output.SetContent("")
	app := iv.app
	return func() tea.Msg {
		r, err := app.pipeline.Run(app.ctx, path)
		return intakeDoneMsg{result: r, err: err}
	}
}

func (iv *IntakeView) submitManual() tea.Cmd {
	form := intake.ManualForm{
		ClientName:     iv.fields[fieldClient].Value(),
		OpposingParty:  iv.fields[fieldOpposing].Value(),
		CaseType:       iv.fields[fieldCaseType].Value(),
		SummaryOfFacts: iv.fields[fieldSummary].Value(),
		KeyDates:       iv.fields[fieldDates].Value(),
	}
	if err := form.Validate(); err != nil {
		iv.notice = err.Error()
		return nil
	}
	iv.notice = ""
	app := iv.app
	return func() tea.Msg {
		r, err := app.pipeline.SubmitManual(app.ctx, form)
		if errors.Is(err, intake.ErrBusy) {
			return intakeDoneMsg{err: err}
		}
		return intakeDoneMsg{result: r, err: err}
	}
}

func renderIntakeResult(r intake.Result, width int) string {
	wrap := lipgloss.NewStyle().Width(width - 2)
	var b strings.Builder
	if r.Transcript != "" {
		b.WriteString(headingStyle.Render("Transcript") + "\n" + wrap.Render(r.Transcript) + "\n\n")
	}
	if r.OK() {
		b.WriteString(headingStyle.Render("Extracted Intake") + "\n" + r.IntakeJSON() + "\n")
	} else if r.Failed == intake.ProcessingIntake {
		b.WriteString(errorStyle.Render("Case intake failed; the transcript above was kept.") + "\n")
	}
	return b.String()
}

// View renders the intake view
func (iv *IntakeView) View() string {
	snap := iv.app.pipeline.Snapshot()

	mode := "Audio Intake"
	if iv.manual {
		mode = "Manual Intake"
	}
	lines := []string{titleStyle.Render(mode), ""}

	if iv.manual {
		for _, f := range iv.fields {
			lines = append(lines, f.View())
		}
	} else {
		lines = append(lines, iv.audio.View())
	}
	lines = append(lines, "")

	switch {
	case snap.Busy:
		lines = append(lines, iv.app.spinner.View()+" "+lipgloss.NewStyle().Foreground(colorInfo).Render(snap.Status))
	case snap.Last != nil && snap.Last.OK():
		lines = append(lines, successStyle.Render(snap.Status))
	case snap.Last != nil:
		lines = append(lines, errorStyle.Render(snap.Status))
	}
	if iv.notice != "" {
		lines = append(lines, errorStyle.Render(iv.notice))
	}

	lines = append(lines, "", iv.output.View())
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
