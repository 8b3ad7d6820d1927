package chat

import (
	"time"

	"github.com/google/uuid"
)

// Author of a transcript entry
type Author int

const (
	AuthorHuman Author = iota
	AuthorAgent
)

func (a Author) String() string {
	if a == AuthorHuman {
		return "You"
	}
	return "Agent"
}

// Entry is one line of the visible transcript
type Entry struct {
	ID     uuid.UUID
	Author Author
	Text   string
	At     time.Time
	Failed bool
}

// Log is the append-only visible transcript
type Log struct {
	entries []Entry
}

func (l *Log) append(author Author, text string, failed bool) Entry {
	e := Entry{
		ID:     uuid.New(),
		Author: author,
		Text:   text,
		At:     time.Now(),
		Failed: failed,
	}
	l.entries = append(l.entries, e)
	return e
}

// Entries returns a copy of the transcript
func (l *Log) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}
