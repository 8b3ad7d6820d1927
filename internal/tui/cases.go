package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/casedesk/cli/internal/listview"
)

// CasesView is the searchable case table with a detail panel
type CasesView struct {
	app     *App
	table   table.Model
	search  textinput.Model
	detail  viewport.Model
	visible []listview.Case

	searching  bool
	showDetail bool
	detailCase string
	notice     string
	width      int
	height     int
}

// NewCasesView creates a new cases view
func NewCasesView(app *App) *CasesView {
	cv := &CasesView{app: app, width: 80, height: 24}

	cv.table = table.New(
		table.WithColumns(cv.columns()),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	cv.search = textinput.New()
	cv.search.Prompt = "/ "
	cv.search.Placeholder = "Search cases"

	cv.detail = viewport.New(80, 10)
	return cv
}

func (cv *CasesView) columns() []table.Column {
	w := (cv.width - 14) / 6
	if w < 10 {
		w = 10
	}
	return []table.Column{
		{Title: "Case", Width: w + 4},
		{Title: "Client", Width: w},
		{Title: "Type", Width: w},
		{Title: "Status", Width: w - 2},
		{Title: "Assigned To", Width: w - 2},
		{Title: "Last Updated", Width: 20},
	}
}

// Init loads the cases
func (cv *CasesView) Init() tea.Cmd {
	return cv.app.loadCases
}

// Capturing reports an active search box
func (cv *CasesView) Capturing() bool { return cv.searching }

// Modal reports an active search box or detail panel
func (cv *CasesView) Modal() bool { return cv.searching || cv.showDetail }

// Help lists the case keys
func (cv *CasesView) Help() string {
	if cv.searching {
		return "enter done • esc clear search"
	}
	if cv.showDetail {
		return "s summarize in chat • ↑/↓ scroll • esc close"
	}
	return "/ search • f filter • enter details • s summarize • r refresh"
}

// Update handles updates
func (cv *CasesView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		cv.width = msg.Width
		cv.height = msg.Height
		cv.table.SetColumns(cv.columns())
		cv.table.SetHeight(max(3, cv.app.bodyHeight()-8))
		cv.detail.Width = cv.width
		cv.detail.Height = max(3, cv.app.bodyHeight()-6)
		return cv, nil

	case casesLoadedMsg, intakeDoneMsg:
		// a successful intake has already reloaded the list
		cv.syncRows()
		if cv.showDetail {
			cv.openDetail(cv.detailCase)
		}
		return cv, nil

	case tea.KeyMsg:
		if cv.searching {
			return cv, cv.updateSearch(msg)
		}
		if cv.showDetail {
			switch msg.String() {
			case "esc":
				cv.showDetail = false
				return cv, nil
			case "s":
				return cv, cv.summarize(cv.detailCase)
			}
			var cmd tea.Cmd
			cv.detail, cmd = cv.detail.Update(msg)
			return cv, cmd
		}
		switch msg.String() {
		case "/":
			cv.searching = true
			return cv, cv.search.Focus()
		case "f":
			cv.cycleFilter()
			return cv, nil
		case "enter":
			if c, ok := cv.selected(); ok {
				cv.openDetail(c.CaseID)
			}
			return cv, nil
		case "s":
			if c, ok := cv.selected(); ok {
				return cv, cv.summarize(c.CaseID)
			}
			return cv, nil
		case "r":
			return cv, cv.app.loadCases
		}
	}

	var cmd tea.Cmd
	cv.table, cmd = cv.table.Update(msg)
	return cv, cmd
}

func (cv *CasesView) updateSearch(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		cv.search.SetValue("")
		fallthrough
	case "enter":
		cv.searching = false
		cv.search.Blur()
		cv.app.cases.List().Search(cv.search.Value())
		cv.syncRows()
		return nil
	}
	var cmd tea.Cmd
	cv.search, cmd = cv.search.Update(msg)
	cv.app.cases.List().Search(cv.search.Value())
	cv.syncRows()
	return cmd
}

func (cv *CasesView) cycleFilter() {
	list := cv.app.cases.List()
	filters := list.Filters()
	next := filters[0]
	for i, f := range filters {
		if f == list.Filter() {
			next = filters[(i+1)%len(filters)]
			break
		}
	}
	list.SetFilter(next)
	cv.syncRows()
}

func (cv *CasesView) selected() (listview.Case, bool) {
	i := cv.table.Cursor()
	if i < 0 || i >= len(cv.visible) {
		return listview.Case{}, false
	}
	return cv.visible[i], true
}

// summarize hands the transcript to the chat page as a draft
func (cv *CasesView) summarize(caseID string) tea.Cmd {
	c, ok := cv.app.cases.List().Find(caseID)
	if !ok {
		return nil
	}
	q, err := listview.SummarizeQuery(c)
	if err != nil {
		cv.notice = listview.NoTranscriptText
		return nil
	}
	cv.notice = ""
	cv.app.session.SetDraft(q)
	return func() tea.Msg { return switchPageMsg{page: pageChat} }
}

func (cv *CasesView) syncRows() {
	cv.visible = cv.app.cases.List().Visible()
	rows := make([]table.Row, 0, len(cv.visible))
	for _, c := range cv.visible {
		name := c.CaseName
		if name == "" {
			name = c.CaseID
		}
		rows = append(rows, table.Row{name, c.ClientName, c.Type, c.Status, orUnassigned(c.AssignedTo), c.LastUpdatedDisplay})
	}
	cv.table.SetRows(rows)
	if cv.table.Cursor() >= len(rows) && len(rows) > 0 {
		cv.table.SetCursor(len(rows) - 1)
	}
}

func (cv *CasesView) openDetail(caseID string) {
	c, ok := cv.app.cases.List().Find(caseID)
	if !ok {
		cv.showDetail = false
		return
	}
	cv.showDetail = true
	cv.detailCase = caseID
	cv.detail.SetContent(renderCaseDetail(listview.NewCaseDetail(c), cv.width))
	cv.detail.GotoTop()
}

func renderCaseDetail(d listview.CaseDetail, width int) string {
	field := func(label, value string) string {
		return mutedStyle.Render(fmt.Sprintf("%-14s", label)) + value
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("Case "+d.CaseID) + "  " + badgeStyle(d.StatusSlug).Render(d.Status) + "\n\n")
	for _, f := range [][2]string{
		{"Client", d.ClientName},
		{"Type", d.Type},
		{"Assigned To", d.AssignedTo},
		{"Phone", d.Phone},
		{"Created", d.Created},
		{"Last Updated", d.LastUpdated},
		{"Call ID", d.CallID},
	} {
		b.WriteString(field(f[0], f[1]) + "\n")
	}

	wrap := lipgloss.NewStyle().Width(width - 2)
	b.WriteString("\n" + headingStyle.Render("Summary") + "\n" + wrap.Render(d.Summary) + "\n")
	b.WriteString("\n" + headingStyle.Render("Structured Intake") + "\n" + d.StructuredIntake + "\n")
	b.WriteString("\n" + headingStyle.Render("Full Transcript") + "\n" + wrap.Render(d.Transcript) + "\n")
	b.WriteString("\n" + headingStyle.Render("Follow-up Notes") + "\n")
	if d.NotesEmpty != "" {
		b.WriteString(mutedStyle.Render(d.NotesEmpty) + "\n")
	}
	for _, n := range d.Notes {
		b.WriteString(lipgloss.NewStyle().Bold(true).Render(n.When+":") + " " + n.Summary + "\n")
		if n.Excerpt != "" {
			b.WriteString(mutedStyle.Render(wrap.Render(n.Excerpt)) + "\n")
		}
	}
	return b.String()
}

func orUnassigned(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Unassigned"
	}
	return s
}

// View renders the cases view
func (cv *CasesView) View() string {
	if cv.showDetail {
		lines := []string{cv.detail.View()}
		if cv.notice != "" {
			lines = append(lines, errorStyle.Render(cv.notice))
		}
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	list := cv.app.cases.List()
	var filters []string
	for _, f := range list.Filters() {
		label := " " + f + " "
		if f == list.Filter() {
			filters = append(filters, activeTabStyle.Render(label))
		} else {
			filters = append(filters, tabStyle.Render(label))
		}
	}

	header := titleStyle.Render("Cases") + "  " + lipgloss.JoinHorizontal(lipgloss.Top, filters...) +
		mutedStyle.Render(fmt.Sprintf("  %d of %d", len(cv.visible), list.Len()))
	lines := []string{header}
	if cv.searching || cv.search.Value() != "" {
		lines = append(lines, cv.search.View())
	} else {
		lines = append(lines, "")
	}

	if err := cv.app.cases.Err(); err != nil {
		lines = append(lines, errorStyle.Render("Error loading cases: "+err.Error()))
	}
	if list.Len() == 0 && cv.app.cases.LoadedAt().IsZero() && cv.app.cases.Err() == nil {
		lines = append(lines, cv.app.spinner.View()+" Loading cases...")
	} else {
		lines = append(lines, cv.table.View())
	}
	if cv.notice != "" {
		lines = append(lines, errorStyle.Render(cv.notice))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
