package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/casedesk/cli/internal/chat"
	"github.com/casedesk/cli/internal/documents"
)

// ChatView handles the agent conversation and document attachments
type ChatView struct {
	app      *App
	messages viewport.Model
	input    textarea.Model
	attach   textinput.Model

	attaching bool
	notice    string
	width     int
	height    int
}

// NewChatView creates a new chat view
func NewChatView(app *App) *ChatView {
	cv := &ChatView{app: app, width: 80, height: 24}

	cv.input = textarea.New()
	cv.input.ShowLineNumbers = false
	cv.input.SetHeight(3)
	cv.input.KeyMap.InsertNewline.SetKeys("alt+enter", "ctrl+j")
	cv.input.Focus()

	cv.attach = textinput.New()
	cv.attach.Prompt = "Attach file: "
	cv.attach.Placeholder = "/path/to/document.pdf"

	cv.messages = viewport.New(80, 10)
	cv.resize()
	return cv
}

// Init initializes the chat view
func (cv *ChatView) Init() tea.Cmd {
	return textarea.Blink
}

// Capturing is always true: the input owns the keyboard
func (cv *ChatView) Capturing() bool { return true }

// Modal reports an open attach prompt
func (cv *ChatView) Modal() bool { return cv.attaching }

// Help lists the chat keys
func (cv *ChatView) Help() string {
	if cv.attaching {
		return "enter attach • esc cancel"
	}
	return "enter send/upload • alt+enter newline • ctrl+o attach • ctrl+x clear files • pgup/pgdn scroll"
}

// Update handles updates
func (cv *ChatView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		cv.width = msg.Width
		cv.height = msg.Height
		cv.resize()
		return cv, nil

	case agentAnswerMsg:
		cv.app.session.Complete(msg.pending, msg.answer, msg.err)
		cv.render()
		return cv, nil

	case documentsChangedMsg:
		cv.render()
		return cv, nil

	case tea.KeyMsg:
		if cv.attaching {
			return cv, cv.updateAttach(msg)
		}
		snap := cv.app.docs.Snapshot()
		switch msg.String() {
		case "enter":
			return cv, cv.submit()
		case "ctrl+o":
			if snap.Busy {
				cv.notice = errorStyle.Render(documents.ErrBusy.Error())
				return cv, nil
			}
			cv.attaching = true
			cv.attach.SetValue("")
			cv.input.Blur()
			return cv, cv.attach.Focus()
		case "ctrl+x":
			if err := cv.app.docs.ClearSelection(); err != nil {
				cv.notice = errorStyle.Render(err.Error())
				return cv, nil
			}
			cv.notice = ""
			return cv, nil
		case "pgup", "pgdown":
			var cmd tea.Cmd
			cv.messages, cmd = cv.messages.Update(msg)
			return cv, cmd
		}
		// text input is locked while files are selected or uploading
		if snap.UploadMode || snap.Busy {
			return cv, nil
		}
	}

	var cmd tea.Cmd
	cv.input, cmd = cv.input.Update(msg)
	return cv, cmd
}

func (cv *ChatView) updateAttach(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		cv.closeAttach()
		return nil
	case "enter":
		path := strings.TrimSpace(cv.attach.Value())
		cv.closeAttach()
		if path == "" {
			return nil
		}
		info, err := cv.app.docs.AddFile(path)
		if err != nil {
			cv.notice = errorStyle.Render(err.Error())
			return nil
		}
		cv.notice = ""
		if info.Pages > 0 {
			cv.notice = mutedStyle.Render(fmt.Sprintf("%s: %d pages", info.Name, info.Pages))
		}
		return nil
	}
	var cmd tea.Cmd
	cv.attach, cmd = cv.attach.Update(msg)
	return cmd
}

func (cv *ChatView) closeAttach() {
	cv.attaching = false
	cv.attach.Blur()
	cv.input.Focus()
}

// submit uploads the selection when there is one, otherwise sends the query
func (cv *ChatView) submit() tea.Cmd {
	if cv.app.docs.Busy() {
		cv.notice = errorStyle.Render(documents.ErrBusy.Error())
		return nil
	}
	if cv.app.docs.HasSelection() {
		if cv.app.session.Busy() {
			cv.notice = errorStyle.Render(chat.ErrBusy.Error())
			return nil
		}
		return cv.upload()
	}

	p, err := cv.app.session.Begin(cv.input.Value())
	switch {
	case errors.Is(err, chat.ErrEmptyQuery):
		return nil
	case err != nil:
		cv.notice = errorStyle.Render(err.Error())
		return nil
	}
	cv.input.Reset()
	cv.notice = ""
	cv.render()

	app := cv.app
	return func() tea.Msg {
		answer, err := app.session.Run(app.ctx, p)
		return agentAnswerMsg{pending: p, answer: answer, err: err}
	}
}

// upload locks the selection now and sends it on a command
func (cv *ChatView) upload() tea.Cmd {
	app := cv.app
	run, err := app.docs.StartUpload()
	if err != nil {
		cv.notice = errorStyle.Render(err.Error())
		return nil
	}
	cv.input.Reset()
	cv.notice = ""
	return func() tea.Msg {
		_, err := run(app.ctx)
		return documentsChangedMsg{err: err}
	}
}

// takeDraft moves a stored draft, such as a summarize request, into the input
func (cv *ChatView) takeDraft() tea.Cmd {
	if d := cv.app.session.TakeDraft(); d != "" {
		cv.input.SetValue(d)
	}
	cv.render()
	return cv.input.Focus()
}

func (cv *ChatView) resize() {
	cv.input.SetWidth(cv.width - 2)
	cv.attach.Width = cv.width - 16
	cv.messages.Width = cv.width
	h := cv.app.bodyHeight() - cv.input.Height() - 4
	if h < 3 {
		h = 3
	}
	cv.messages.Height = h
	cv.render()
}

// render rebuilds the transcript from the session
func (cv *ChatView) render() {
	var blocks []string
	for _, e := range cv.app.session.Entries() {
		var label string
		if e.Author == chat.AuthorHuman {
			label = lipgloss.NewStyle().Bold(true).Foreground(colorInfo).Render(e.Author.String() + ":")
			blocks = append(blocks, label+" "+e.Text)
			continue
		}
		label = titleStyle.Render(e.Author.String() + ":")
		if e.Failed {
			blocks = append(blocks, label+" "+errorStyle.Render(e.Text))
			continue
		}
		blocks = append(blocks, label+"\n"+cv.app.renderer.Render(e.Text, cv.width-2))
	}
	cv.messages.SetContent(strings.Join(blocks, "\n\n"))
	cv.messages.GotoBottom()
}

// View renders the chat view
func (cv *ChatView) View() string {
	snap := cv.app.docs.Snapshot()
	cv.input.Placeholder = snap.Placeholder

	lines := []string{cv.messages.View(), ""}

	if cv.app.session.Busy() {
		lines = append(lines, cv.app.spinner.View()+" Agent is thinking...")
	} else if snap.Busy {
		lines = append(lines, cv.app.spinner.View()+" "+statusLine(snap.Status))
	} else if snap.UploadMode {
		lines = append(lines, successStyle.Render("Attached: ")+snap.Names)
	} else {
		lines = append(lines, "")
	}
	if cv.notice != "" {
		lines = append(lines, cv.notice)
	}

	if cv.attaching {
		lines = append(lines, cv.attach.View())
	} else {
		lines = append(lines, cv.input.View())
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
