package documents

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Inbox watches a directory and reports files dropped into it once they
// have stopped changing for the debounce period.
type Inbox struct {
	dir      string
	watcher  *fsnotify.Watcher
	debounce time.Duration
	onFile   func(path string)
	logger   *zap.Logger

	mu      sync.Mutex
	pending map[string]time.Time
}

// NewInbox creates an inbox watcher for dir
func NewInbox(dir string, debounce time.Duration, onFile func(path string), logger *zap.Logger) (*Inbox, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create inbox directory: %w", err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	return &Inbox{
		dir:      dir,
		watcher:  watcher,
		debounce: debounce,
		onFile:   onFile,
		logger:   logger,
		pending:  make(map[string]time.Time),
	}, nil
}

// Run processes events until ctx is done, then closes the watcher
func (in *Inbox) Run(ctx context.Context) {
	defer in.watcher.Close()

	ticker := time.NewTicker(in.debounce / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-in.watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) {
				in.touch(event.Name)
			}
			if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				in.forget(event.Name)
			}
		case err, ok := <-in.watcher.Errors:
			if !ok {
				return
			}
			in.logger.Warn("inbox watcher error", zap.Error(err))
		case now := <-ticker.C:
			for _, path := range in.ready(now) {
				in.onFile(path)
			}
		}
	}
}

func (in *Inbox) touch(path string) {
	base := filepath.Base(path)
	// editors and downloaders write temp files first
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") || strings.HasSuffix(base, ".part") {
		return
	}
	in.mu.Lock()
	in.pending[path] = time.Now()
	in.mu.Unlock()
}

func (in *Inbox) forget(path string) {
	in.mu.Lock()
	delete(in.pending, path)
	in.mu.Unlock()
}

// ready returns files quiet for at least the debounce period
func (in *Inbox) ready(now time.Time) []string {
	in.mu.Lock()
	defer in.mu.Unlock()
	var out []string
	for path, last := range in.pending {
		if now.Sub(last) < in.debounce {
			continue
		}
		delete(in.pending, path)
		if st, err := os.Stat(path); err == nil && !st.IsDir() {
			out = append(out, path)
		}
	}
	return out
}
