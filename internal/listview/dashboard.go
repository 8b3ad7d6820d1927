package listview

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/casedesk/cli/internal/api"
	"github.com/casedesk/cli/internal/seq"
)

// FeedSource is the API behind the dashboard panels
type FeedSource interface {
	Overview(ctx context.Context) (*api.Overview, error)
	Activity(ctx context.Context) ([]api.ActivityItem, error)
	Deadlines(ctx context.Context) ([]api.Deadline, error)
	Notifications(ctx context.Context) ([]api.Notification, error)
}

// FeedLine is one read-only dashboard line
type FeedLine struct {
	Text   string
	When   string
	Unread bool
}

// DashboardView is what the dashboard page renders
type DashboardView struct {
	Overview      api.Overview
	HasOverview   bool
	Activity      []FeedLine
	Deadlines     []FeedLine
	Notifications []FeedLine
	Errors        []string
}

type feeds struct {
	overview      *api.Overview
	activity      []api.ActivityItem
	deadlines     []api.Deadline
	notifications []api.Notification
	errs          map[string]error
}

// Dashboard keeps the four read-only dashboard panels
type Dashboard struct {
	src    FeedSource
	logger *zap.Logger
	now    func() time.Time
	guard  seq.Guard

	mu   sync.Mutex
	data feeds
}

// NewDashboard creates a dashboard over src
func NewDashboard(src FeedSource, logger *zap.Logger) *Dashboard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dashboard{src: src, logger: logger, now: time.Now}
}

// Load fetches every panel one after another. A failed panel keeps its
// previous contents; the first error is returned.
func (d *Dashboard) Load(ctx context.Context) error {
	ticket := d.guard.Next()

	d.mu.Lock()
	next := d.data
	d.mu.Unlock()
	next.errs = make(map[string]error)

	if o, err := d.src.Overview(ctx); err != nil {
		next.errs["overview"] = err
	} else {
		next.overview = o
	}
	if items, err := d.src.Activity(ctx); err != nil {
		next.errs["activity"] = err
	} else {
		next.activity = items
	}
	if items, err := d.src.Deadlines(ctx); err != nil {
		next.errs["deadlines"] = err
	} else {
		next.deadlines = items
	}
	if items, err := d.src.Notifications(ctx); err != nil {
		next.errs["notifications"] = err
	} else {
		next.notifications = items
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.guard.Accept(ticket) {
		return nil
	}
	d.data = next
	for _, panel := range panels {
		if err := next.errs[panel]; err != nil {
			d.logger.Warn("dashboard panel failed", zap.String("panel", panel), zap.Error(err))
			return fmt.Errorf("failed to load %s: %w", panel, err)
		}
	}
	return nil
}

var panels = []string{"overview", "activity", "deadlines", "notifications"}

// Snapshot renders the panels with times relative to now
func (d *Dashboard) Snapshot() DashboardView {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	var v DashboardView
	if d.data.overview != nil {
		v.Overview = *d.data.overview
		v.HasOverview = true
	}
	for _, a := range d.data.activity {
		text := a.Description
		if a.CaseID != "" {
			text = fmt.Sprintf("%s (case %s)", text, a.CaseID)
		}
		v.Activity = append(v.Activity, FeedLine{Text: text, When: relative(a.Timestamp, now)})
	}
	for _, dl := range d.data.deadlines {
		text := dl.Title
		if dl.CaseID != "" {
			text = fmt.Sprintf("%s: %s", dl.CaseID, dl.Title)
		}
		v.Deadlines = append(v.Deadlines, FeedLine{Text: text, When: relative(dl.DueDate, now)})
	}
	for _, n := range d.data.notifications {
		v.Notifications = append(v.Notifications, FeedLine{Text: n.Message, When: relative(n.CreatedAt, now), Unread: !n.Read})
	}
	for _, panel := range panels {
		if err := d.data.errs[panel]; err != nil {
			v.Errors = append(v.Errors, fmt.Sprintf("Error loading %s: %v", panel, err))
		}
	}
	return v
}

func relative(t api.Time, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	return humanize.RelTime(t.Time, now, "ago", "from now")
}
