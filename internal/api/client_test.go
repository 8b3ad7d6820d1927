package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL, 5*time.Second, nil)
}

func TestAgentQuerySendsTextAndHistory(t *testing.T) {
	var got agentQueryRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/agent-query", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"answer":"Statute of limitations is two years."}`))
	})

	history := []ChatTurn{{Role: RoleHuman, Content: "hi"}, {Role: RoleAI, Content: "hello"}}
	answer, err := client.AgentQuery(context.Background(), "How long do I have?", history)
	require.NoError(t, err)
	assert.Equal(t, "Statute of limitations is two years.", answer)
	assert.Equal(t, "How long do I have?", got.Text)
	assert.Equal(t, history, got.History)
}

func TestAgentQueryNilHistoryIsEmptyArray(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(body), `"history":[]`)
		w.Write([]byte(`{"answer":"ok"}`))
	})

	_, err := client.AgentQuery(context.Background(), "q", nil)
	require.NoError(t, err)
}

func TestAgentQueryStatusErrorUsesErrorField(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"agent unavailable"}`))
	})

	_, err := client.AgentQuery(context.Background(), "q", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStatus))

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, "agent unavailable", apiErr.Message)
}

func TestAgentQueryMissingAnswerIsMalformed(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":"wrong field"}`))
	})

	_, err := client.AgentQuery(context.Background(), "q", nil)
	assert.True(t, errors.Is(err, ErrMalformed))
}

func TestUndecodableBodyIsMalformed(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>oops</html>`))
	})

	_, err := client.ListCases(context.Background())
	assert.True(t, errors.Is(err, ErrMalformed))
}

func TestTransportError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client := NewClient(url, time.Second, nil)
	_, err := client.AgentQuery(context.Background(), "q", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTransport))
	assert.False(t, errors.Is(err, ErrStatus))
}

func TestPayloadMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"error field", `{"error":"boom"}`, "boom"},
		{"detail field", `{"detail":"No documents provided"}`, "No documents provided"},
		{"structured detail", `{"detail":[{"loc":["body","text"],"msg":"field required"}]}`, `[{"loc":["body","text"],"msg":"field required"}]`},
		{"empty error falls through to detail", `{"error":"","detail":"later"}`, "later"},
		{"not json", `Internal Server Error`, "HTTP error! status: 502"},
		{"no known field", `{"message":"x"}`, "HTTP error! status: 502"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, payloadMessage(502, []byte(tt.body)))
		})
	}
}

func TestUploadDocumentsMultipart(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/process-rag-documents", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		files := r.MultipartForm.File["documents"]
		require.Len(t, files, 2)
		assert.Equal(t, "brief.pdf", files[0].Filename)
		assert.Equal(t, "notes.txt", files[1].Filename)
		w.Write([]byte(`{"message":"Indexed 2 documents."}`))
	})

	msg, err := client.UploadDocuments(context.Background(), []FilePart{
		{Name: "brief.pdf", Reader: strings.NewReader("%PDF-1.4")},
		{Name: "notes.txt", Reader: strings.NewReader("notes")},
	})
	require.NoError(t, err)
	assert.Equal(t, "Indexed 2 documents.", msg)
}

func TestUploadDocumentsDetailError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"detail":"Unsupported file type"}`))
	})

	_, err := client.UploadDocuments(context.Background(), []FilePart{{Name: "a.exe", Reader: strings.NewReader("x")}})
	require.Error(t, err)
	assert.Equal(t, "Unsupported file type", err.Error())
}

func TestListDocumentsDecodesNaiveTimestamps(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/rag-documents", r.URL.Path)
		w.Write([]byte(`[{"filename":"lease.pdf","num_chunks":12,"indexed_at":"2024-05-01T10:30:00.123456"},
			{"filename":"nda.docx","num_chunks":null,"indexed_at":"2024-05-02T08:00:00Z"}]`))
	})

	docs, err := client.ListDocuments(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "lease.pdf", docs[0].Filename)
	assert.Equal(t, 12, docs[0].NumChunks)
	assert.Equal(t, 10, docs[0].IndexedAt.Hour())
	assert.Equal(t, 0, docs[1].NumChunks)
	assert.Equal(t, time.UTC, docs[1].IndexedAt.Location())
}

func TestDeleteDocumentEscapesFilename(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/rag-documents/Smith%20v.%20Jones%2Fdraft.pdf", r.URL.EscapedPath())
		w.Write([]byte(`{"message":"Deleted."}`))
	})

	msg, err := client.DeleteDocument(context.Background(), "Smith v. Jones/draft.pdf")
	require.NoError(t, err)
	assert.Equal(t, "Deleted.", msg)
}

func TestTranscribeAudio(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transcribe-audio", r.URL.Path)
		file, header, err := r.FormFile("audio_file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "call.mp3", header.Filename)
		w.Write([]byte(`{"text":"My landlord kept my deposit."}`))
	})

	text, err := client.TranscribeAudio(context.Background(), FilePart{Name: "call.mp3", Reader: strings.NewReader("ID3")})
	require.NoError(t, err)
	assert.Equal(t, "My landlord kept my deposit.", text)
}

func TestCaseIntakeKeepsRawBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req intakeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "transcript", req.Text)
		w.Write([]byte(`{"client_name":"Jane Roe","case_type":"Landlord Dispute","key_dates":["01/02/2024"],"case_id":"C-9"}`))
	})

	result, err := client.CaseIntake(context.Background(), "transcript")
	require.NoError(t, err)
	assert.Equal(t, "Jane Roe", result.ClientName)
	assert.Equal(t, []string{"01/02/2024"}, result.KeyDates)
	assert.Contains(t, string(result.Raw), `"case_id":"C-9"`)
}

func TestListCasesAndClients(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/cases":
			w.Write([]byte(`[{"case_id":"C-1","status":"Pending Review","assigned_to":null,
				"structured_intake":{"client_name":"Jane"},
				"follow_up_notes":[{"timestamp":"2024-05-03T09:00:00","summary":"Called back","transcript":"..."}],
				"created_at":"2024-05-01T10:00:00"}]`))
		case "/api/clients":
			w.Write([]byte(`[{"name":"Jane Roe","contact_email":"jane@example.com","num_cases":2,"last_activity_at":"2024-05-04T00:00:00","status":"Active"}]`))
		default:
			http.NotFound(w, r)
		}
	})

	cases, err := client.ListCases(context.Background())
	require.NoError(t, err)
	require.Len(t, cases, 1)
	assert.Equal(t, "", cases[0].AssignedTo)
	assert.Len(t, cases[0].FollowUpNotes, 1)
	assert.JSONEq(t, `{"client_name":"Jane"}`, string(cases[0].StructuredIntake))

	clients, err := client.ListClients(context.Background())
	require.NoError(t, err)
	require.Len(t, clients, 1)
	assert.Equal(t, 2, clients[0].NumCases)
}

func TestDashboardEndpoints(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/dashboard/overview":
			w.Write([]byte(`{"active_cases":4,"pending_review":2,"new_clients":1,"upcoming_deadlines":3}`))
		case "/api/dashboard/activity":
			w.Write([]byte(`[{"type":"case_created","description":"New case C-2","case_id":"C-2","timestamp":"2024-05-05T12:00:00"}]`))
		case "/api/dashboard/deadlines":
			w.Write([]byte(`[{"case_id":"C-1","title":"File response","due_date":"2024-06-01"}]`))
		case "/api/dashboard/notifications":
			w.Write([]byte(`[{"message":"Deadline tomorrow","created_at":"2024-05-31T08:00:00","read":false}]`))
		default:
			http.NotFound(w, r)
		}
	})
	ctx := context.Background()

	o, err := client.Overview(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, o.ActiveCases)

	activity, err := client.Activity(ctx)
	require.NoError(t, err)
	assert.Equal(t, "C-2", activity[0].CaseID)

	deadlines, err := client.Deadlines(ctx)
	require.NoError(t, err)
	assert.Equal(t, 6, int(deadlines[0].DueDate.Month()))

	notes, err := client.Notifications(ctx)
	require.NoError(t, err)
	assert.False(t, notes[0].Read)
}

func TestTimeUnmarshal(t *testing.T) {
	var v struct {
		A Time `json:"a"`
		B Time `json:"b"`
		C Time `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":null,"b":"","c":"2024-01-02T03:04:05+02:00"}`), &v))
	assert.True(t, v.A.IsZero())
	assert.True(t, v.B.IsZero())
	assert.Equal(t, 3, v.C.Hour())

	assert.Error(t, json.Unmarshal([]byte(`{"a":"yesterday"}`), &v))
}
