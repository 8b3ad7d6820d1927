package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/casedesk/cli/config"
	"github.com/casedesk/cli/internal/api"
	"github.com/casedesk/cli/internal/chat"
	"github.com/casedesk/cli/internal/documents"
	"github.com/casedesk/cli/internal/intake"
	"github.com/casedesk/cli/internal/listview"
	"github.com/casedesk/cli/internal/logger"
)

type page int

const (
	pageDashboard page = iota
	pageChat
	pageDocuments
	pageCases
	pageClients
	pageIntake
	pageSettings
)

var pageNames = []string{"Dashboard", "Chat", "Documents", "Cases", "Clients", "Intake", "Settings"}

// view is one page of the application
type view interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (tea.Model, tea.Cmd)
	View() string
	Help() string
}

// typing views receive number keys instead of page switching
type typing interface {
	Capturing() bool
}

// modal views handle esc themselves while a prompt is open
type modal interface {
	Modal() bool
}

// App represents the main TUI application
type App struct {
	cfg    *config.Config
	logger *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc

	client    *api.Client
	session   *chat.Session
	renderer  *chat.Renderer
	docs      *documents.Manager
	pipeline  *intake.Pipeline
	cases     *listview.Loader[listview.Case]
	clients   *listview.Loader[listview.Client]
	dashboard *listview.Dashboard
	inbox     *documents.Inbox
	program   *tea.Program

	spinner spinner.Model
	page    page
	width   int
	height  int

	// Views
	dashboardView *DashboardView
	chatView      *ChatView
	documentsView *DocumentsView
	casesView     *CasesView
	clientsView   *ClientsView
	intakeView    *IntakeView
	settingsView  *SettingsView
}

// NewApp creates a new TUI application
func NewApp(cfg *config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())

	client := api.NewClient(cfg.API.BaseURL, cfg.API.Timeout, logger.Module(log, "api"))
	session := chat.NewSession(client, logger.Module(log, "chat"))

	app := &App{
		cfg:       cfg,
		logger:    log,
		ctx:       ctx,
		cancel:    cancel,
		client:    client,
		session:   session,
		renderer:  chat.NewRenderer("dark"),
		docs:      documents.NewManager(client, logger.Module(log, "documents"), session.Note),
		cases:     listview.NewLoader("cases", listview.FetchCases(client), listview.NewCaseList(cfg.User.Name), logger.Module(log, "cases")),
		clients:   listview.NewLoader("clients", listview.FetchClients(client), listview.NewClientList(), logger.Module(log, "clients")),
		dashboard: listview.NewDashboard(client, logger.Module(log, "dashboard")),
		width:     80,
		height:    24,
	}
	// a finished intake creates a case, so reload the case list
	app.pipeline = intake.NewPipeline(client, logger.Module(log, "intake"), func() {
		app.cases.Load(app.ctx)
	})

	if cfg.Paths.InboxDir != "" {
		inbox, err := documents.NewInbox(cfg.Paths.InboxDir, 0, app.inboxFile, logger.Module(log, "inbox"))
		if err != nil {
			cancel()
			return nil, fmt.Errorf("failed to start inbox: %w", err)
		}
		app.inbox = inbox
	}

	app.spinner = spinner.New()
	app.spinner.Spinner = spinner.Dot
	app.spinner.Style = lipgloss.NewStyle().Foreground(colorAccent)

	// Initialize views
	app.dashboardView = NewDashboardView(app)
	app.chatView = NewChatView(app)
	app.documentsView = NewDocumentsView(app)
	app.casesView = NewCasesView(app)
	app.clientsView = NewClientsView(app)
	app.intakeView = NewIntakeView(app)
	app.settingsView = NewSettingsView(app)

	return app, nil
}

// inboxFile runs on the inbox goroutine
func (a *App) inboxFile(path string) {
	if a.program != nil {
		a.program.Send(inboxFileMsg{path: path})
	}
}

func (a *App) views() []view {
	return []view{a.dashboardView, a.chatView, a.documentsView, a.casesView, a.clientsView, a.intakeView, a.settingsView}
}

func (a *App) current() view {
	return a.views()[a.page]
}

// Init starts the pollers and loads every page once
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.spinner.Tick, documentsTick(a.cfg.Polling.Documents), dashboardTick(a.cfg.Polling.Dashboard)}
	for _, v := range a.views() {
		cmds = append(cmds, v.Init())
	}
	return tea.Batch(cmds...)
}

// Update routes messages: global keys first, then the shared results, then
// the current page
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		var cmds []tea.Cmd
		for _, v := range a.views() {
			_, cmd := v.Update(msg)
			cmds = append(cmds, cmd)
		}
		return a, tea.Batch(cmds...)

	case tea.KeyMsg:
		if cmd, handled := a.handleGlobalKey(msg); handled {
			return a, cmd
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case switchPageMsg:
		return a, a.switchTo(msg.page)

	case documentsTickMsg:
		return a, tea.Batch(a.refreshDocuments, documentsTick(a.cfg.Polling.Documents))

	case dashboardTickMsg:
		return a, tea.Batch(a.loadDashboard, a.loadCases, a.loadClients, dashboardTick(a.cfg.Polling.Dashboard))

	case inboxFileMsg:
		if _, err := a.docs.AddFile(msg.path); err != nil {
			a.session.Note(fmt.Sprintf("Could not attach %s: %v", msg.path, err), true)
		} else {
			a.logger.Info("inbox file attached", zap.String("path", msg.path))
		}
		return a, nil

	case documentsChangedMsg, casesLoadedMsg, clientsLoadedMsg, dashboardLoadedMsg, agentAnswerMsg, intakeDoneMsg:
		// results may concern pages other than the current one
		var cmds []tea.Cmd
		for _, v := range a.views() {
			_, cmd := v.Update(msg)
			cmds = append(cmds, cmd)
		}
		return a, tea.Batch(cmds...)
	}

	_, cmd := a.current().Update(msg)
	return a, cmd
}

// handleGlobalKey handles quit, back and page switching
func (a *App) handleGlobalKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch msg.String() {
	case "ctrl+c":
		a.cancel()
		return tea.Quit, true
	case "esc":
		if m, ok := a.current().(modal); ok && m.Modal() {
			return nil, false
		}
		if a.page == pageDashboard {
			return nil, true
		}
		return a.switchTo(pageDashboard), true
	}

	// Don't intercept keys while the user is typing
	if t, ok := a.current().(typing); ok && t.Capturing() {
		return nil, false
	}

	switch s := msg.String(); s {
	case "0", "1", "2", "3", "4", "5", "6":
		return a.switchTo(page(s[0] - '0')), true
	case "q":
		a.cancel()
		return tea.Quit, true
	}
	return nil, false
}

func (a *App) switchTo(p page) tea.Cmd {
	if int(p) >= len(pageNames) {
		return nil
	}
	a.page = p
	if p == pageChat {
		return a.chatView.takeDraft()
	}
	return nil
}

// View renders the tab bar, the current page and its help line
func (a *App) View() string {
	var tabs []string
	for i, name := range pageNames {
		label := fmt.Sprintf(" %d %s ", i, name)
		if page(i) == a.page {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, tabStyle.Render(label))
		}
	}
	header := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)

	help := helpStyle.Render(strings.Join([]string{a.current().Help(), "esc back", "ctrl+c quit"}, " • "))
	return lipgloss.JoinVertical(lipgloss.Left, header, "", a.current().View(), "", help)
}

// bodyHeight is what a page has below the tabs and above the help line
func (a *App) bodyHeight() int {
	h := a.height - 4
	if h < 5 {
		h = 5
	}
	return h
}

// Run starts the TUI application
func (a *App) Run() error {
	defer a.cancel()

	a.program = tea.NewProgram(a, tea.WithAltScreen())
	if a.inbox != nil {
		go a.inbox.Run(a.ctx)
	}
	_, err := a.program.Run()
	return err
}

// Commands shared by several pages

func (a *App) refreshDocuments() tea.Msg {
	return documentsChangedMsg{err: a.docs.Refresh(a.ctx)}
}

func (a *App) loadCases() tea.Msg {
	return casesLoadedMsg{err: a.cases.Load(a.ctx)}
}

func (a *App) loadClients() tea.Msg {
	return clientsLoadedMsg{err: a.clients.Load(a.ctx)}
}

func (a *App) loadDashboard() tea.Msg {
	return dashboardLoadedMsg{err: a.dashboard.Load(a.ctx)}
}

func documentsTick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return documentsTickMsg{} })
}

func dashboardTick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return dashboardTickMsg{} })
}
