package tui

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ClientsView is the searchable client table
type ClientsView struct {
	app    *App
	table  table.Model
	search textinput.Model

	searching bool
	width     int
	height    int
}

// NewClientsView creates a new clients view
func NewClientsView(app *App) *ClientsView {
	cv := &ClientsView{app: app, width: 80, height: 24}
	cv.table = table.New(
		table.WithColumns(cv.columns()),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	cv.search = textinput.New()
	cv.search.Prompt = "/ "
	cv.search.Placeholder = "Search clients"
	return cv
}

func (cv *ClientsView) columns() []table.Column {
	w := (cv.width - 36) / 2
	if w < 16 {
		w = 16
	}
	return []table.Column{
		{Title: "Name", Width: w},
		{Title: "Email", Width: w},
		{Title: "Cases", Width: 6},
		{Title: "Last Activity", Width: 14},
		{Title: "Status", Width: 10},
	}
}

// Init loads the clients
func (cv *ClientsView) Init() tea.Cmd {
	return cv.app.loadClients
}

// Capturing reports an active search box
func (cv *ClientsView) Capturing() bool { return cv.searching }

// Modal reports an active search box
func (cv *ClientsView) Modal() bool { return cv.searching }

// Help lists the client keys
func (cv *ClientsView) Help() string {
	if cv.searching {
		return "enter done • esc clear search"
	}
	return "/ search • r refresh"
}

// Update handles updates
func (cv *ClientsView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		cv.width = msg.Width
		cv.height = msg.Height
		cv.table.SetColumns(cv.columns())
		cv.table.SetHeight(max(3, cv.app.bodyHeight()-6))
		return cv, nil

	case clientsLoadedMsg:
		cv.syncRows()
		return cv, nil

	case tea.KeyMsg:
		if cv.searching {
			switch msg.String() {
			case "esc":
				cv.search.SetValue("")
				fallthrough
			case "enter":
				cv.searching = false
				cv.search.Blur()
				cv.app.clients.List().Search(cv.search.Value())
				cv.syncRows()
				return cv, nil
			}
			var cmd tea.Cmd
			cv.search, cmd = cv.search.Update(msg)
			cv.app.clients.List().Search(cv.search.Value())
			cv.syncRows()
			return cv, cmd
		}
		switch msg.String() {
		case "/":
			cv.searching = true
			return cv, cv.search.Focus()
		case "r":
			return cv, cv.app.loadClients
		}
	}

	var cmd tea.Cmd
	cv.table, cmd = cv.table.Update(msg)
	return cv, cmd
}

func (cv *ClientsView) syncRows() {
	visible := cv.app.clients.List().Visible()
	rows := make([]table.Row, 0, len(visible))
	for _, c := range visible {
		rows = append(rows, table.Row{c.Name, c.ContactEmail, strconv.Itoa(c.NumCases), c.LastActivityDisplay, c.Status})
	}
	cv.table.SetRows(rows)
	if cv.table.Cursor() >= len(rows) && len(rows) > 0 {
		cv.table.SetCursor(len(rows) - 1)
	}
}

// View renders the clients view
func (cv *ClientsView) View() string {
	list := cv.app.clients.List()
	lines := []string{titleStyle.Render("Clients") + mutedStyle.Render(fmt.Sprintf("  %d of %d", len(cv.table.Rows()), list.Len()))}
	if cv.searching || cv.search.Value() != "" {
		lines = append(lines, cv.search.View())
	} else {
		lines = append(lines, "")
	}
	if err := cv.app.clients.Err(); err != nil {
		lines = append(lines, errorStyle.Render("Error loading clients: "+err.Error()))
	}
	lines = append(lines, cv.table.View())
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
