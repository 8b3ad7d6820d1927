package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/casedesk/cli/internal/chat"
	"github.com/casedesk/cli/internal/documents"
)

// DocumentsView lists the indexed documents and manages uploads
type DocumentsView struct {
	app   *App
	table table.Model
	path  textinput.Model

	adding     bool
	confirming string // filename awaiting a y/n answer
	notice     string
	width      int
	height     int
}

// NewDocumentsView creates a new documents view
func NewDocumentsView(app *App) *DocumentsView {
	dv := &DocumentsView{app: app, width: 80, height: 24}

	dv.table = table.New(
		table.WithColumns(dv.columns()),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	dv.path = textinput.New()
	dv.path.Prompt = "Add file: "
	dv.path.Placeholder = "/path/to/document.pdf"
	return dv
}

func (dv *DocumentsView) columns() []table.Column {
	name := dv.width - 48
	if name < 20 {
		name = 20
	}
	return []table.Column{
		{Title: "Filename", Width: name},
		{Title: "Chunks", Width: 7},
		{Title: "Indexed At", Width: 20},
		{Title: "Age", Width: 14},
	}
}

// Init loads the inventory
func (dv *DocumentsView) Init() tea.Cmd {
	return dv.app.refreshDocuments
}

// Capturing reports an open prompt
func (dv *DocumentsView) Capturing() bool { return dv.adding || dv.confirming != "" }

// Modal reports an open prompt
func (dv *DocumentsView) Modal() bool { return dv.Capturing() }

// Help lists the document keys
func (dv *DocumentsView) Help() string {
	switch {
	case dv.confirming != "":
		return "y delete • n/esc keep"
	case dv.adding:
		return "enter add • esc cancel"
	}
	return "a add file • u upload • c clear selection • d delete • r refresh"
}

// Update handles updates
func (dv *DocumentsView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		dv.width = msg.Width
		dv.height = msg.Height
		dv.table.SetColumns(dv.columns())
		dv.table.SetHeight(max(3, dv.app.bodyHeight()-8))
		return dv, nil

	case documentsChangedMsg:
		dv.syncRows()
		return dv, nil

	case tea.KeyMsg:
		if dv.confirming != "" {
			return dv, dv.answer(msg.String())
		}
		if dv.adding {
			return dv, dv.updatePath(msg)
		}
		switch msg.String() {
		case "a":
			dv.adding = true
			dv.path.SetValue("")
			return dv, dv.path.Focus()
		case "u":
			return dv, dv.upload()
		case "c":
			if err := dv.app.docs.ClearSelection(); err != nil {
				dv.notice = err.Error()
				return dv, nil
			}
			dv.notice = ""
			return dv, nil
		case "d", "delete":
			if row := dv.table.SelectedRow(); row != nil {
				dv.confirming = row[0]
			}
			return dv, nil
		case "r":
			return dv, dv.app.refreshDocuments
		}
	}

	var cmd tea.Cmd
	dv.table, cmd = dv.table.Update(msg)
	return dv, cmd
}

func (dv *DocumentsView) updatePath(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		dv.adding = false
		dv.path.Blur()
		return nil
	case "enter":
		dv.adding = false
		dv.path.Blur()
		if p := strings.TrimSpace(dv.path.Value()); p != "" {
			if _, err := dv.app.docs.AddFile(p); err != nil {
				dv.app.session.Note(fmt.Sprintf("Could not attach %s: %v", p, err), true)
			}
		}
		return nil
	}
	var cmd tea.Cmd
	dv.path, cmd = dv.path.Update(msg)
	return cmd
}

// answer resolves the delete prompt; only "y" sends a request
func (dv *DocumentsView) answer(key string) tea.Cmd {
	filename := dv.confirming
	var yes bool
	switch key {
	case "y", "Y":
		yes = true
	case "n", "N", "esc":
	default:
		return nil
	}
	dv.confirming = ""

	app := dv.app
	confirm := documents.ConfirmFunc(func(string) bool { return yes })
	if !yes {
		app.docs.Delete(app.ctx, filename, confirm)
		return nil
	}
	return func() tea.Msg {
		_, err := app.docs.Delete(app.ctx, filename, confirm)
		return documentsChangedMsg{err: err}
	}
}

func (dv *DocumentsView) upload() tea.Cmd {
	app := dv.app
	if !app.docs.HasSelection() {
		return nil
	}
	if app.session.Busy() {
		dv.notice = chat.ErrBusy.Error()
		return nil
	}
	run, err := app.docs.StartUpload()
	if errors.Is(err, documents.ErrNoFiles) {
		return nil
	}
	if err != nil {
		dv.notice = err.Error()
		return nil
	}
	dv.notice = ""
	return func() tea.Msg {
		_, err := run(app.ctx)
		return documentsChangedMsg{err: err}
	}
}

func (dv *DocumentsView) syncRows() {
	snap := dv.app.docs.Snapshot()
	rows := make([]table.Row, 0, len(snap.Rows))
	for _, r := range snap.Rows {
		rows = append(rows, table.Row{r.Filename, strconv.Itoa(r.Chunks), r.IndexedAt, r.Age})
	}
	dv.table.SetRows(rows)
	if dv.table.Cursor() >= len(rows) && len(rows) > 0 {
		dv.table.SetCursor(len(rows) - 1)
	}
}

// View renders the documents view
func (dv *DocumentsView) View() string {
	snap := dv.app.docs.Snapshot()
	lines := []string{titleStyle.Render("Knowledge Base"), ""}

	switch {
	case snap.ListError != "":
		lines = append(lines, errorStyle.Render(snap.ListError))
	case snap.Empty:
		lines = append(lines, mutedStyle.Render(snap.EmptyText))
	case !snap.Loaded:
		lines = append(lines, dv.app.spinner.View()+" Loading documents...")
	default:
		lines = append(lines, dv.table.View())
	}
	lines = append(lines, "")

	if snap.UploadMode {
		var names []string
		var size int64
		for _, f := range snap.Selection {
			label := f.Name
			if f.Pages > 0 {
				label = fmt.Sprintf("%s (%d pages)", f.Name, f.Pages)
			}
			names = append(names, label)
			size += f.Size
		}
		lines = append(lines, headingStyle.Render(fmt.Sprintf("Selected (%s):", humanize.Bytes(uint64(size))))+" "+strings.Join(names, ", "))
		lines = append(lines, mutedStyle.Render(snap.Placeholder))
	}

	if st := statusLine(snap.Status); st != "" {
		if snap.Busy {
			st = dv.app.spinner.View() + " " + st
		}
		lines = append(lines, st)
	}

	if dv.notice != "" {
		lines = append(lines, errorStyle.Render(dv.notice))
	}
	if dv.adding {
		lines = append(lines, dv.path.View())
	}

	body := lipgloss.JoinVertical(lipgloss.Left, lines...)
	if dv.confirming != "" {
		prompt := modalStyle.Render(documents.DeletePrompt(dv.confirming) + "\n\n" + helpStyle.Render("y / n"))
		body = lipgloss.JoinVertical(lipgloss.Left, body, "", prompt)
	}
	return body
}
