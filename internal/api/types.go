package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Role identifies the author of a chat turn
type Role string

const (
	RoleHuman Role = "human"
	RoleAI    Role = "ai"
)

// ChatTurn is one entry of the conversation history sent with every query
type ChatTurn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Time decodes the backend's timestamps, which may lack a zone offset.
// Naive timestamps are read as local time.
type Time struct {
	time.Time
}

var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// UnmarshalJSON accepts RFC 3339, naive ISO timestamps, null and ""
func (t *Time) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("failed to decode timestamp: %w", err)
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	if parsed, err := time.Parse(time.RFC3339Nano, s); err == nil {
		t.Time = parsed
		return nil
	}
	for _, layout := range naiveLayouts {
		if parsed, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", s)
}

// MarshalJSON writes RFC 3339, or null for the zero time
func (t Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.Format(time.RFC3339Nano))
}

// IndexedDocument is one entry of the knowledge-base inventory
type IndexedDocument struct {
	Filename  string `json:"filename"`
	NumChunks int    `json:"num_chunks"`
	IndexedAt Time   `json:"indexed_at"`
}

// FollowUpNote is a server-side note attached to a case
type FollowUpNote struct {
	Timestamp  Time   `json:"timestamp"`
	Summary    string `json:"summary"`
	Transcript string `json:"transcript"`
}

// CaseRecord is a case as returned by /api/cases
type CaseRecord struct {
	CaseID            string          `json:"case_id"`
	CaseName          string          `json:"case_name"`
	ClientName        string          `json:"client_name"`
	Type              string          `json:"type"`
	Status            string          `json:"status"`
	AssignedTo        string          `json:"assigned_to"`
	CallerPhoneNumber string          `json:"caller_phone_number"`
	StructuredIntake  json.RawMessage `json:"structured_intake"`
	CallSummary       string          `json:"call_summary"`
	FullTranscript    string          `json:"full_transcript"`
	FollowUpNotes     []FollowUpNote  `json:"follow_up_notes"`
	CreatedAt         Time            `json:"created_at"`
	LastUpdated       Time            `json:"last_updated"`
	VapiCallID        string          `json:"vapi_call_id"`
}

// ClientRecord is a client as returned by /api/clients
type ClientRecord struct {
	ClientID       string `json:"client_id"`
	Name           string `json:"name"`
	ContactEmail   string `json:"contact_email"`
	NumCases       int    `json:"num_cases"`
	LastActivityAt Time   `json:"last_activity_at"`
	Status         string `json:"status"`
}

// CaseIntake holds the fields extracted from free text by /case-intake
type CaseIntake struct {
	ClientName     string   `json:"client_name"`
	OpposingParty  string   `json:"opposing_party"`
	CaseType       string   `json:"case_type"`
	SummaryOfFacts string   `json:"summary_of_facts"`
	KeyDates       []string `json:"key_dates"`
}

// IntakeResult carries the decoded intake and the raw body, which may hold
// fields beyond CaseIntake
type IntakeResult struct {
	CaseIntake
	Raw json.RawMessage `json:"-"`
}

// Overview holds the dashboard counters
type Overview struct {
	ActiveCases       int `json:"active_cases"`
	PendingReview     int `json:"pending_review"`
	NewClients        int `json:"new_clients"`
	UpcomingDeadlines int `json:"upcoming_deadlines"`
}

// ActivityItem is one line of the dashboard activity feed
type ActivityItem struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	CaseID      string `json:"case_id"`
	Timestamp   Time   `json:"timestamp"`
}

// Deadline is an upcoming case deadline
type Deadline struct {
	CaseID  string `json:"case_id"`
	Title   string `json:"title"`
	DueDate Time   `json:"due_date"`
}

// Notification is a dashboard notification
type Notification struct {
	Message   string `json:"message"`
	CreatedAt Time   `json:"created_at"`
	Read      bool   `json:"read"`
}
