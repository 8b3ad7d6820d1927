// Package chat holds the agent conversation: the visible transcript, the
// acknowledged history and the strictly sequential query flow.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
)

const welcomeMessage = "Hello! How can I assist you with your legal queries today? " +
	"You can ask questions or attach documents to expand my knowledge base."

var (
	// ErrEmptyQuery is returned for blank input; no request is made
	ErrEmptyQuery = errors.New("query is empty")
	// ErrBusy is returned while a query is in flight
	ErrBusy = errors.New("a request is already in progress")
)

// Querier sends one query with its history to the agent
type Querier interface {
	AgentQuery(ctx context.Context, text string, history []Turn) (string, error)
}

// Pending is a query that has been started but not completed
type Pending struct {
	Text    string
	History []Turn
}

// Session owns the transcript, the history and the busy flag. All mutation
// goes through its methods.
type Session struct {
	mu      sync.Mutex
	querier Querier
	logger  *zap.Logger

	history History
	log     Log
	pending *Pending
	draft   string
}

// NewSession creates a session seeded with the welcome message
func NewSession(querier Querier, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Session{querier: querier, logger: logger}
	s.log.append(AuthorAgent, welcomeMessage, false)
	return s
}

// Begin validates text, marks the session busy and shows the question in the
// transcript. The history is captured as it stands now.
func (s *Session) Begin(text string) (*Pending, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyQuery
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending != nil {
		return nil, ErrBusy
	}

	p := &Pending{Text: text, History: s.history.Snapshot()}
	s.pending = p
	s.log.append(AuthorHuman, text, false)
	return p, nil
}

// Complete finishes p. On success both turns join the history; on failure the
// history is untouched and an apology goes to the transcript.
func (s *Session) Complete(p *Pending, answer string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p == nil || s.pending != p {
		return
	}
	s.pending = nil

	if err != nil {
		s.logger.Warn("agent query failed", zap.Error(err), zap.Int("history_len", len(p.History)))
		s.log.append(AuthorAgent, fmt.Sprintf(
			"Sorry, I'm having trouble connecting to the agent right now. Please try again later. (Error: %v)", err), true)
		return
	}

	s.history.commit(p.Text, answer)
	s.log.append(AuthorAgent, answer, false)
	s.logger.Info("agent query answered", zap.Int("history_len", s.history.Len()))
}

// Submit runs one full round trip
func (s *Session) Submit(ctx context.Context, text string) (string, error) {
	p, err := s.Begin(text)
	if err != nil {
		return "", err
	}
	answer, err := s.querier.AgentQuery(ctx, p.Text, p.History)
	s.Complete(p, answer, err)
	if err != nil {
		return "", err
	}
	return answer, nil
}

// Run performs the network half of a started query. It does not touch
// session state, so it is safe to call off the UI goroutine.
func (s *Session) Run(ctx context.Context, p *Pending) (string, error) {
	return s.querier.AgentQuery(ctx, p.Text, p.History)
}

// Note appends an agent-authored status line
func (s *Session) Note(text string, failed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log.append(AuthorAgent, text, failed)
}

// Busy reports whether a query is in flight
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

// History returns the acknowledged turns
func (s *Session) History() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Snapshot()
}

// Entries returns the visible transcript
func (s *Session) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.log.Entries()
}

// SetDraft stores a query to prefill the input once
func (s *Session) SetDraft(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = text
}

// TakeDraft returns and clears the stored draft
func (s *Session) TakeDraft() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.draft
	s.draft = ""
	return d
}
