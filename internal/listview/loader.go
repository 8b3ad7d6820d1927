package listview

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/casedesk/cli/internal/seq"
)

// FetchFunc retrieves a full dataset
type FetchFunc[T Record] func(ctx context.Context) ([]T, error)

// Loader fills a List from a fetch function. Overlapping loads are ordered by
// a seq.Guard so a slow response never replaces a newer one.
type Loader[T Record] struct {
	name   string
	fetch  FetchFunc[T]
	list   *List[T]
	logger *zap.Logger
	guard  seq.Guard

	mu       sync.Mutex
	err      error
	loadedAt time.Time
}

// NewLoader creates a loader for list
func NewLoader[T Record](name string, fetch FetchFunc[T], list *List[T], logger *zap.Logger) *Loader[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader[T]{name: name, fetch: fetch, list: list, logger: logger}
}

// List returns the list the loader fills
func (l *Loader[T]) List() *List[T] {
	return l.list
}

// Load fetches and, if still the freshest response, replaces the dataset.
// On error the previous rows stay and the error is kept for display.
func (l *Loader[T]) Load(ctx context.Context) error {
	ticket := l.guard.Next()
	items, err := l.fetch(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.guard.Accept(ticket) {
		l.logger.Debug("dropping stale response", zap.String("list", l.name), zap.Uint64("ticket", ticket))
		return nil
	}
	if err != nil {
		l.err = err
		l.logger.Warn("load failed", zap.String("list", l.name), zap.Error(err))
		return err
	}
	l.list.Replace(items)
	l.err = nil
	l.loadedAt = time.Now()
	l.logger.Debug("loaded", zap.String("list", l.name), zap.Int("rows", len(items)))
	return nil
}

// Err returns the error of the last applied load
func (l *Loader[T]) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

// LoadedAt returns when the dataset was last replaced
func (l *Loader[T]) LoadedAt() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loadedAt
}
