// Package documents manages the knowledge-base upload flow and the indexed
// document inventory.
package documents

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/casedesk/cli/internal/api"
	"github.com/casedesk/cli/internal/seq"
)

var (
	// ErrNoFiles is returned by Upload with an empty selection; no request is made
	ErrNoFiles = errors.New("no files selected")
	// ErrBusy is returned while an upload or delete is running
	ErrBusy = errors.New("another document operation is in progress")
	// ErrCancelled is returned when a delete is not confirmed
	ErrCancelled = errors.New("cancelled")
)

const (
	emptyText            = "No documents currently indexed. Upload some!"
	defaultUploadMessage = "Documents processed successfully!"
)

// Backend is the subset of the API the manager needs
type Backend interface {
	UploadDocuments(ctx context.Context, files []api.FilePart) (string, error)
	ListDocuments(ctx context.Context) ([]api.IndexedDocument, error)
	DeleteDocument(ctx context.Context, filename string) (string, error)
}

// Confirmer approves destructive actions
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer
type ConfirmFunc func(prompt string) bool

// Confirm calls f
func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// StatusKind colors the inline status line
type StatusKind int

const (
	StatusNone StatusKind = iota
	StatusInfo
	StatusSuccess
	StatusError
)

// Status is the inline status line under the document panel
type Status struct {
	Text string
	Kind StatusKind
}

// Row is one rendered inventory line
type Row struct {
	Filename  string
	Chunks    int
	IndexedAt string
	Age       string
}

// View is everything the document panel renders
type View struct {
	Rows        []Row
	Empty       bool
	EmptyText   string
	ListError   string
	Loaded      bool
	Status      Status
	Busy        bool
	Selection   []FileInfo
	UploadMode  bool
	Names       string
	Placeholder string
}

// Manager owns the upload selection and the inventory. Uploads and deletes
// are exclusive; refreshes may overlap them and are ordered by a seq.Guard.
type Manager struct {
	backend Backend
	logger  *zap.Logger
	notify  func(text string, failed bool)
	now     func() time.Time

	mu      sync.Mutex
	sel     Selection
	docs    []api.IndexedDocument
	loaded  bool
	listErr string
	status  Status
	busy    bool
	guard   seq.Guard
}

// NewManager creates a manager. notify, when set, receives the same outcome
// text shown in the status line so it can be echoed to the chat transcript.
func NewManager(backend Backend, logger *zap.Logger, notify func(text string, failed bool)) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notify == nil {
		notify = func(string, bool) {}
	}
	return &Manager{
		backend: backend,
		logger:  logger,
		notify:  notify,
		now:     time.Now,
	}
}

// AddFile describes path and adds it to the selection
func (m *Manager) AddFile(path string) (FileInfo, error) {
	info, err := Describe(path)
	if err != nil {
		return FileInfo{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.busy {
		return FileInfo{}, ErrBusy
	}
	m.sel.Add(info)
	return info, nil
}

// ClearSelection drops the pending files and returns to query mode. The
// selection is locked while an upload or delete runs.
func (m *Manager) ClearSelection() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.busy {
		return ErrBusy
	}
	m.sel.Clear()
	m.status = Status{}
	return nil
}

// Busy reports a running upload or delete
func (m *Manager) Busy() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.busy
}

// HasSelection reports whether the panel is in upload mode
func (m *Manager) HasSelection() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sel.Len() > 0
}

// Upload sends the selected files in one request. Whatever the outcome the
// selection is cleared and the inventory refreshed once.
func (m *Manager) Upload(ctx context.Context) (string, error) {
	run, err := m.StartUpload()
	if err != nil {
		return "", err
	}
	return run(ctx)
}

// StartUpload marks the manager busy and returns the request step. Callers
// that run the request on another goroutine use it so the selection is
// locked before they return.
func (m *Manager) StartUpload() (func(ctx context.Context) (string, error), error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sel.Len() == 0 {
		return nil, ErrNoFiles
	}
	if m.busy {
		return nil, ErrBusy
	}
	files := m.sel.Files()
	m.busy = true
	m.status = Status{Text: "Uploading and processing documents...", Kind: StatusInfo}
	return func(ctx context.Context) (string, error) {
		return m.finishUpload(ctx, files)
	}, nil
}

func (m *Manager) finishUpload(ctx context.Context, files []FileInfo) (string, error) {
	msg, err := m.send(ctx, files)

	m.mu.Lock()
	m.busy = false
	m.sel.Clear()
	if err != nil {
		m.status = Status{Text: "Error: " + err.Error(), Kind: StatusError}
	} else {
		if msg == "" {
			msg = defaultUploadMessage
		}
		m.status = Status{Text: msg, Kind: StatusSuccess}
	}
	m.mu.Unlock()

	if err != nil {
		m.logger.Warn("upload failed", zap.Int("files", len(files)), zap.Error(err))
		m.notify(fmt.Sprintf("An error occurred while updating my knowledge base: %v", err), true)
	} else {
		m.logger.Info("upload done", zap.Int("files", len(files)))
		m.notify(msg, false)
	}

	m.Refresh(ctx)
	return msg, err
}

// send opens every file and posts the batch
func (m *Manager) send(ctx context.Context, files []FileInfo) (string, error) {
	parts := make([]api.FilePart, 0, len(files))
	var closers []io.Closer
	defer func() {
		for _, c := range closers {
			c.Close()
		}
	}()
	for _, f := range files {
		fh, err := os.Open(f.Path)
		if err != nil {
			return "", fmt.Errorf("failed to open %s: %w", f.Name, err)
		}
		closers = append(closers, fh)
		parts = append(parts, api.FilePart{Name: f.Name, Reader: fh})
	}
	return m.backend.UploadDocuments(ctx, parts)
}

// Refresh replaces the inventory with a fresh fetch. A response older than
// one already applied is dropped.
func (m *Manager) Refresh(ctx context.Context) error {
	ticket := m.guard.Next()
	docs, err := m.backend.ListDocuments(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.guard.Accept(ticket) {
		m.logger.Debug("dropping stale document list", zap.Uint64("ticket", ticket))
		return nil
	}
	if err != nil {
		m.docs = nil
		m.listErr = "Error loading documents: " + err.Error()
		return err
	}
	m.docs = docs
	m.listErr = ""
	m.loaded = true
	return nil
}

// DeletePrompt is the confirmation question for filename
func DeletePrompt(filename string) string {
	return fmt.Sprintf("Are you sure you want to delete %q? This cannot be undone.", filename)
}

// Delete removes filename after confirmation, then refreshes once whatever
// the outcome.
func (m *Manager) Delete(ctx context.Context, filename string, confirm Confirmer) (string, error) {
	if confirm == nil || !confirm.Confirm(DeletePrompt(filename)) {
		return "", ErrCancelled
	}

	m.mu.Lock()
	if m.busy {
		m.mu.Unlock()
		return "", ErrBusy
	}
	m.busy = true
	m.status = Status{Text: fmt.Sprintf("Deleting %q...", filename), Kind: StatusInfo}
	m.mu.Unlock()

	msg, err := m.backend.DeleteDocument(ctx, filename)

	m.mu.Lock()
	m.busy = false
	if err != nil {
		m.status = Status{Text: fmt.Sprintf("Error deleting %q: %v", filename, err), Kind: StatusError}
	} else {
		m.status = Status{Text: msg, Kind: StatusSuccess}
	}
	m.mu.Unlock()

	if err != nil {
		m.logger.Warn("delete failed", zap.String("filename", filename), zap.Error(err))
		m.notify(fmt.Sprintf("An error occurred while deleting %q: %v", filename, err), true)
	} else {
		m.logger.Info("document deleted", zap.String("filename", filename))
		m.notify(msg, false)
	}

	m.Refresh(ctx)
	return msg, err
}

// Snapshot derives the panel view from current state
func (m *Manager) Snapshot() View {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	v := View{
		Loaded:      m.loaded,
		ListError:   m.listErr,
		Status:      m.status,
		Busy:        m.busy,
		Selection:   m.sel.Files(),
		UploadMode:  m.sel.Len() > 0,
		Names:       m.sel.Names(),
		Placeholder: m.sel.Placeholder(),
	}
	for _, d := range m.docs {
		row := Row{Filename: d.Filename, Chunks: d.NumChunks}
		if !d.IndexedAt.IsZero() {
			local := d.IndexedAt.Local()
			row.IndexedAt = local.Format("Jan 2, 2006 3:04 PM")
			row.Age = humanize.RelTime(local, now, "ago", "from now")
		}
		v.Rows = append(v.Rows, row)
	}
	if m.listErr == "" && m.loaded && len(v.Rows) == 0 {
		v.Empty = true
		v.EmptyText = emptyText
	}
	return v
}

// Filenames returns the inventory keys in display order
func (m *Manager) Filenames() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.docs))
	for i, d := range m.docs {
		out[i] = d.Filename
	}
	return out
}
