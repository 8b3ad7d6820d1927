package tui

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casedesk/cli/config"
)

type backend struct {
	lists   atomic.Int32
	deletes atomic.Int32
	queries atomic.Int32
	uploads atomic.Int32

	// hold, when set, keeps uploads open until it is closed
	hold chan struct{}

	mu   sync.Mutex
	hits map[string]int
}

func (b *backend) hit(path string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.hits == nil {
		b.hits = make(map[string]int)
	}
	b.hits[path]++
}

func (b *backend) count(path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits[path]
}

func (b *backend) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			b.hit(r.URL.Path)
		}
		switch {
		case r.URL.Path == "/api/rag-documents" && r.Method == http.MethodGet:
			b.lists.Add(1)
			w.Write([]byte(`[{"filename":"lease.pdf","num_chunks":3,"indexed_at":"2024-05-01T10:00:00Z"}]`))
		case r.Method == http.MethodDelete:
			b.deletes.Add(1)
			w.Write([]byte(`{"message":"Document 'lease.pdf' deleted."}`))
		case r.URL.Path == "/process-rag-documents":
			b.uploads.Add(1)
			if b.hold != nil {
				select {
				case <-b.hold:
				case <-r.Context().Done():
					return
				}
			}
			w.Write([]byte(`{"message":"Processed 1 documents."}`))
		case r.URL.Path == "/api/cases":
			w.Write([]byte(`[{"case_id":"C-1","case_name":"Roe v. Acme","status":"Open","assigned_to":"Alex","caller_phone_number":"555-0100","full_transcript":"Caller: my deposit"},
				{"case_id":"C-2","case_name":"Doe Estate","status":"New","assigned_to":""}]`))
		case r.URL.Path == "/api/dashboard/overview":
			w.Write([]byte(`{"active_cases":2,"pending_review":1,"new_clients":0,"upcoming_deadlines":0}`))
		case r.URL.Path == "/agent-query":
			b.queries.Add(1)
			w.Write([]byte(`{"answer":"Here is what I found."}`))
		default:
			w.Write([]byte(`[]`))
		}
	}
}

func newTestApp(t *testing.T) (*App, *backend) {
	t.Helper()
	return newTestAppWith(t, &backend{})
}

func newTestAppWith(t *testing.T, b *backend) (*App, *backend) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	server := httptest.NewServer(b.handler())
	t.Cleanup(server.Close)

	cfg := config.Default()
	cfg.API.BaseURL = server.URL
	cfg.Polling.Documents = time.Millisecond
	cfg.Polling.Dashboard = time.Millisecond
	app, err := NewApp(cfg, nil)
	require.NoError(t, err)
	t.Cleanup(app.cancel)
	return app, b
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+o":
		return tea.KeyMsg{Type: tea.KeyCtrlO}
	case "ctrl+x":
		return tea.KeyMsg{Type: tea.KeyCtrlX}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// run executes cmd and feeds its message back, as the program loop would
func run(t *testing.T, a *App, cmd tea.Cmd) {
	t.Helper()
	require.NotNil(t, cmd)
	if msg := cmd(); msg != nil {
		a.Update(msg)
	}
}

// runBatch executes every command of a batch and feeds back their results.
// Tick messages are dropped so the pollers do not re-arm.
func runBatch(t *testing.T, a *App, cmd tea.Cmd) {
	t.Helper()
	require.NotNil(t, cmd)
	msg := cmd()
	batch, ok := msg.(tea.BatchMsg)
	if !ok {
		batch = tea.BatchMsg{func() tea.Msg { return msg }}
	}
	for _, c := range batch {
		if c == nil {
			continue
		}
		switch m := c().(type) {
		case nil, documentsTickMsg, dashboardTickMsg:
		default:
			a.Update(m)
		}
	}
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	return p
}

func TestPageKeys(t *testing.T) {
	a, _ := newTestApp(t)

	a.Update(key("3"))
	assert.Equal(t, pageCases, a.page)

	a.Update(key("esc"))
	assert.Equal(t, pageDashboard, a.page)

	a.Update(key("1"))
	require.Equal(t, pageChat, a.page)

	// the chat input owns the keyboard
	a.Update(key("3"))
	assert.Equal(t, pageChat, a.page)
	assert.Equal(t, "3", a.chatView.input.Value())

	a.Update(key("esc"))
	assert.Equal(t, pageDashboard, a.page)
}

func TestSummarizeMovesDraftIntoChat(t *testing.T) {
	a, _ := newTestApp(t)
	run(t, a, a.loadCases)

	a.Update(key("3"))
	require.Len(t, a.casesView.visible, 2)

	_, cmd := a.Update(key("s"))
	run(t, a, cmd)

	assert.Equal(t, pageChat, a.page)
	assert.Equal(t, "Please summarize the call transcript for case ID C-1 from phone number 555-0100:\n\nCaller: my deposit",
		a.chatView.input.Value())
}

func TestSummarizeWithoutTranscriptStays(t *testing.T) {
	a, _ := newTestApp(t)
	run(t, a, a.loadCases)

	a.Update(key("3"))
	a.Update(tea.KeyMsg{Type: tea.KeyDown})
	_, cmd := a.Update(key("s"))

	assert.Nil(t, cmd)
	assert.Equal(t, pageCases, a.page)
	assert.Equal(t, "Full transcript not available for this case.", a.casesView.notice)
}

func TestCaseFilterKey(t *testing.T) {
	a, _ := newTestApp(t)
	run(t, a, a.loadCases)
	a.Update(key("3"))

	a.Update(key("f"))
	assert.Equal(t, "my", a.cases.List().Filter())
	require.Len(t, a.casesView.visible, 1)
	assert.Equal(t, "C-1", a.casesView.visible[0].CaseID)

	a.Update(key("f"))
	assert.Equal(t, "unassigned", a.cases.List().Filter())
	require.Len(t, a.casesView.visible, 1)
	assert.Equal(t, "C-2", a.casesView.visible[0].CaseID)
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	a, b := newTestApp(t)
	run(t, a, a.refreshDocuments)
	require.EqualValues(t, 1, b.lists.Load())

	a.Update(key("2"))
	a.Update(key("d"))
	require.Equal(t, "lease.pdf", a.documentsView.confirming)

	// number keys answer nothing while the prompt is open
	a.Update(key("3"))
	assert.Equal(t, pageDocuments, a.page)

	_, cmd := a.Update(key("n"))
	assert.Nil(t, cmd)
	assert.Empty(t, a.documentsView.confirming)
	assert.Zero(t, b.deletes.Load())
	assert.EqualValues(t, 1, b.lists.Load())

	a.Update(key("d"))
	_, cmd = a.Update(key("y"))
	run(t, a, cmd)
	assert.EqualValues(t, 1, b.deletes.Load())
	assert.EqualValues(t, 2, b.lists.Load())
}

func TestChatRoundTrip(t *testing.T) {
	a, b := newTestApp(t)
	a.Update(key("1"))
	a.chatView.input.SetValue("What is my filing deadline?")

	_, cmd := a.Update(key("enter"))
	assert.True(t, a.session.Busy())
	assert.Empty(t, a.chatView.input.Value())

	run(t, a, cmd)
	assert.False(t, a.session.Busy())
	assert.EqualValues(t, 1, b.queries.Load())
	require.Len(t, a.session.History(), 2)
	assert.Equal(t, "Here is what I found.", a.session.History()[1].Content)
}

func TestPollingTicksRefresh(t *testing.T) {
	a, b := newTestApp(t)

	_, cmd := a.Update(documentsTickMsg{})
	runBatch(t, a, cmd)
	assert.Equal(t, 1, b.count("/api/rag-documents"))
	assert.Zero(t, b.count("/api/cases"))

	_, cmd = a.Update(dashboardTickMsg{})
	runBatch(t, a, cmd)
	for _, path := range []string{
		"/api/cases",
		"/api/clients",
		"/api/dashboard/overview",
		"/api/dashboard/activity",
		"/api/dashboard/deadlines",
		"/api/dashboard/notifications",
	} {
		assert.Equal(t, 1, b.count(path), path)
	}
	assert.Equal(t, 1, b.count("/api/rag-documents"))
	require.Len(t, a.casesView.visible, 2)
	assert.True(t, a.dashboard.Snapshot().HasOverview)
}

func TestUploadLocksChatControls(t *testing.T) {
	a, b := newTestAppWith(t, &backend{hold: make(chan struct{})})
	a.Update(key("1"))

	a.Update(key("ctrl+o"))
	require.True(t, a.chatView.attaching)
	a.chatView.attach.SetValue(writeTemp(t, "retainer.txt", "retainer"))
	a.Update(key("enter"))
	require.True(t, a.docs.HasSelection())

	// files are selected: typing goes nowhere
	a.Update(key("typed"))
	assert.Empty(t, a.chatView.input.Value())

	_, cmd := a.Update(key("enter"))
	require.NotNil(t, cmd)
	require.True(t, a.docs.Busy())

	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()
	require.Eventually(t, func() bool { return b.uploads.Load() == 1 }, 2*time.Second, 5*time.Millisecond)

	a.Update(key("ctrl+x"))
	assert.True(t, a.docs.HasSelection())
	a.Update(key("ctrl+o"))
	assert.False(t, a.chatView.attaching)

	a.chatView.input.SetValue("What is my filing deadline?")
	_, cmd = a.Update(key("enter"))
	assert.Nil(t, cmd)
	assert.False(t, a.session.Busy())

	close(b.hold)
	a.Update(<-done)

	assert.False(t, a.docs.Busy())
	assert.False(t, a.docs.HasSelection())
	assert.EqualValues(t, 1, b.uploads.Load())
	assert.Zero(t, b.queries.Load())
}

func TestQueryInFlightBlocksUpload(t *testing.T) {
	a, b := newTestApp(t)
	a.Update(key("1"))

	a.chatView.input.SetValue("Summarize the lease")
	_, query := a.Update(key("enter"))
	require.True(t, a.session.Busy())

	_, err := a.docs.AddFile(writeTemp(t, "memo.txt", "memo"))
	require.NoError(t, err)

	_, cmd := a.Update(key("enter"))
	assert.Nil(t, cmd)
	assert.False(t, a.docs.Busy())
	assert.True(t, a.docs.HasSelection())

	run(t, a, query)
	assert.Zero(t, b.uploads.Load())

	_, cmd = a.Update(key("enter"))
	run(t, a, cmd)
	assert.EqualValues(t, 1, b.uploads.Load())
	assert.False(t, a.docs.HasSelection())
}
