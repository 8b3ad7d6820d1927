package listview

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoTranscript is returned when a case cannot be summarized
var ErrNoTranscript = errors.New("case has no transcript")

// NoTranscriptText is shown instead of a summarize prompt
const NoTranscriptText = "Full transcript not available for this case."

// NoteLine is one rendered follow-up note
type NoteLine struct {
	When    string
	Summary string
	Excerpt string
}

// CaseDetail is the side panel for one case
type CaseDetail struct {
	CaseID           string
	Status           string
	StatusSlug       string
	AssignedTo       string
	ClientName       string
	Phone            string
	Type             string
	Created          string
	LastUpdated      string
	CallID           string
	Summary          string
	StructuredIntake string
	Transcript       string
	Notes            []NoteLine
	NotesEmpty       string
}

// NewCaseDetail fills the panel with defaults for missing values
func NewCaseDetail(c Case) CaseDetail {
	d := CaseDetail{
		CaseID:           orDefault(c.CaseID, "N/A"),
		Status:           orDefault(c.Status, "N/A"),
		StatusSlug:       c.StatusSlug,
		AssignedTo:       orDefault(c.AssignedTo, unassigned),
		ClientName:       orDefault(c.ClientName, "N/A"),
		Phone:            orDefault(c.CallerPhoneNumber, "N/A"),
		Type:             orDefault(c.Type, "N/A"),
		Created:          c.CreatedAtDisplay,
		LastUpdated:      c.LastUpdatedDisplay,
		CallID:           orDefault(c.VapiCallID, "N/A"),
		Summary:          orDefault(c.CallSummary, "No summary available."),
		StructuredIntake: indentJSON(c.StructuredIntake),
		Transcript:       orDefault(c.FullTranscript, "No full transcript available."),
	}
	for _, n := range c.FollowUpNotes {
		d.Notes = append(d.Notes, NoteLine{
			When:    formatTime(n.Timestamp, dateTimeLayout),
			Summary: n.Summary,
			Excerpt: excerpt(n.Transcript, 150),
		})
	}
	if len(d.Notes) == 0 {
		d.NotesEmpty = "No follow-up notes."
	}
	return d
}

// SummarizeQuery is the chat prompt asking the agent to summarize c's call
func SummarizeQuery(c Case) (string, error) {
	if strings.TrimSpace(c.FullTranscript) == "" {
		return "", ErrNoTranscript
	}
	return fmt.Sprintf("Please summarize the call transcript for case ID %s from phone number %s:\n\n%s",
		c.CaseID, c.CallerPhoneNumber, c.FullTranscript), nil
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func indentJSON(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return "No structured intake data."
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}

func excerpt(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
