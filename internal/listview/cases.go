package listview

import (
	"context"
	"strings"

	"github.com/casedesk/cli/internal/api"
)

const (
	dateTimeLayout = "Jan 2, 2006 3:04 PM"
	dateLayout     = "Jan 2, 2006"
	unassigned     = "Unassigned"
)

// Case is a case record with its display fields
type Case struct {
	api.CaseRecord
	CreatedAtDisplay   string
	LastUpdatedDisplay string
	StatusSlug         string
}

// NewCase derives the display fields for rec
func NewCase(rec api.CaseRecord) Case {
	return Case{
		CaseRecord:         rec,
		CreatedAtDisplay:   formatTime(rec.CreatedAt, dateTimeLayout),
		LastUpdatedDisplay: formatTime(rec.LastUpdated, dateTimeLayout),
		StatusSlug:         StatusSlug(rec.Status),
	}
}

// Key is the case ID
func (c Case) Key() string { return c.CaseID }

// SearchValues are the visible table columns
func (c Case) SearchValues() []string {
	return []string{c.CaseID, c.CaseName, c.ClientName, c.Type, c.Status, c.AssignedTo, c.LastUpdatedDisplay}
}

// IsUnassigned reports a case nobody owns
func (c Case) IsUnassigned() bool {
	a := strings.TrimSpace(c.AssignedTo)
	return a == "" || a == unassigned
}

// CaseFilters returns the "my" and "unassigned" filters for user
func CaseFilters(user string) map[string]Filter[Case] {
	return map[string]Filter[Case]{
		"my":         func(c Case) bool { return user != "" && c.AssignedTo == user },
		"unassigned": func(c Case) bool { return c.IsUnassigned() },
	}
}

// NewCaseList creates a case list filtered relative to user
func NewCaseList(user string) *List[Case] {
	return NewList[Case](CaseFilters(user))
}

// CaseSource is the API call behind the case list
type CaseSource interface {
	ListCases(ctx context.Context) ([]api.CaseRecord, error)
}

// FetchCases adapts src to a FetchFunc
func FetchCases(src CaseSource) FetchFunc[Case] {
	return func(ctx context.Context) ([]Case, error) {
		recs, err := src.ListCases(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]Case, len(recs))
		for i, r := range recs {
			out[i] = NewCase(r)
		}
		return out, nil
	}
}

// StatusSlug is the badge class for a status, e.g. "In Progress" becomes
// "status-badge-in-progress"
func StatusSlug(status string) string {
	s := strings.ToLower(strings.TrimSpace(status))
	s = strings.Join(strings.Fields(s), "-")
	if s == "" {
		s = "unknown"
	}
	return "status-badge-" + s
}

func formatTime(t api.Time, layout string) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.Local().Format(layout)
}
