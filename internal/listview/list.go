// Package listview holds the client-side list state behind the case, client
// and dashboard views: search and filters run over the last fetched dataset.
package listview

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Record is one row of a list
type Record interface {
	// Key is unique within a dataset
	Key() string
	// SearchValues are the columns matched by Search
	SearchValues() []string
}

// Filter selects rows by attribute
type Filter[T Record] func(T) bool

// FilterAll is the filter every list starts with
const FilterAll = "all"

// List is an in-memory table with search and named filters. A fetch always
// replaces the whole dataset.
type List[T Record] struct {
	mu      sync.RWMutex
	items   []T
	query   string
	filters map[string]Filter[T]
	filter  string
}

// NewList creates a list with the given named filters; "all" is always present
func NewList[T Record](filters map[string]Filter[T]) *List[T] {
	fs := map[string]Filter[T]{FilterAll: func(T) bool { return true }}
	for name, f := range filters {
		fs[name] = f
	}
	return &List[T]{filters: fs, filter: FilterAll}
}

// Replace swaps in a freshly fetched dataset. Search and filter carry over.
func (l *List[T]) Replace(items []T) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = append([]T(nil), items...)
}

// Search sets the case-insensitive text query; "" clears it
func (l *List[T]) Search(q string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.query = strings.ToLower(strings.TrimSpace(q))
}

// Query returns the current search text
func (l *List[T]) Query() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.query
}

// SetFilter selects a named filter
func (l *List[T]) SetFilter(name string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.filters[name]; !ok {
		return fmt.Errorf("unknown filter %q", name)
	}
	l.filter = name
	return nil
}

// Filter returns the active filter name
func (l *List[T]) Filter() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.filter
}

// Filters returns the filter names, "all" first
func (l *List[T]) Filters() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	names := make([]string, 0, len(l.filters))
	for name := range l.filters {
		if name != FilterAll {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return append([]string{FilterAll}, names...)
}

// Visible returns the rows passing both the filter and the search
func (l *List[T]) Visible() []T {
	l.mu.RLock()
	defer l.mu.RUnlock()
	keep := l.filters[l.filter]
	out := make([]T, 0, len(l.items))
	for _, item := range l.items {
		if !keep(item) {
			continue
		}
		if l.query != "" && !matches(item, l.query) {
			continue
		}
		out = append(out, item)
	}
	return out
}

func matches(item Record, query string) bool {
	for _, v := range item.SearchValues() {
		if strings.Contains(strings.ToLower(v), query) {
			return true
		}
	}
	return false
}

// Find looks a row up by key in the last fetched dataset
func (l *List[T]) Find(key string) (T, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, item := range l.items {
		if item.Key() == key {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// Len returns the size of the whole dataset
func (l *List[T]) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items)
}
