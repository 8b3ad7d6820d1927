package listview

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casedesk/cli/internal/api"
)

func TestDashboardLoadAndSnapshot(t *testing.T) {
	var failActivity atomic.Bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/dashboard/overview":
			w.Write([]byte(`{"active_cases":12,"pending_review":3,"new_clients":2,"upcoming_deadlines":4}`))
		case "/api/dashboard/activity":
			if failActivity.Load() {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.Write([]byte(`[{"type":"case_created","description":"New case opened","case_id":"C-1","timestamp":"2024-05-01T10:00:00Z"}]`))
		case "/api/dashboard/deadlines":
			w.Write([]byte(`[{"case_id":"C-1","title":"File answer","due_date":"2024-05-04T10:00:00Z"}]`))
		case "/api/dashboard/notifications":
			w.Write([]byte(`[{"message":"Intake ready","created_at":"2024-05-01T09:00:00Z","read":false}]`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	d := NewDashboard(api.NewClient(server.URL, 5*time.Second, nil), nil)
	d.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }

	require.NoError(t, d.Load(context.Background()))
	v := d.Snapshot()
	assert.True(t, v.HasOverview)
	assert.Equal(t, 12, v.Overview.ActiveCases)
	require.Len(t, v.Activity, 1)
	assert.Equal(t, "New case opened (case C-1)", v.Activity[0].Text)
	assert.Equal(t, "2 hours ago", v.Activity[0].When)
	require.Len(t, v.Deadlines, 1)
	assert.Equal(t, "C-1: File answer", v.Deadlines[0].Text)
	assert.Equal(t, "2 days from now", v.Deadlines[0].When)
	require.Len(t, v.Notifications, 1)
	assert.True(t, v.Notifications[0].Unread)
	assert.Empty(t, v.Errors)

	failActivity.Store(true)
	err := d.Load(context.Background())
	require.Error(t, err)
	v = d.Snapshot()
	require.Len(t, v.Activity, 1, "previous activity kept")
	require.Len(t, v.Errors, 1)
	assert.Equal(t, "Error loading activity: HTTP error! status: 503", v.Errors[0])
}
