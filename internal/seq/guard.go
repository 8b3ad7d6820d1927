// Package seq keeps a slow response from overwriting a fresher one.
package seq

import "sync"

// Guard hands out increasing tickets and accepts a ticket only if it is
// newer than every ticket accepted so far.
type Guard struct {
	mu       sync.Mutex
	issued   uint64
	accepted uint64
}

// Next issues the ticket for a request about to be sent
func (g *Guard) Next() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.issued++
	return g.issued
}

// Accept reports whether the response for ticket may be applied, and if so
// records it as the newest applied response.
func (g *Guard) Accept(ticket uint64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if ticket <= g.accepted {
		return false
	}
	g.accepted = ticket
	return true
}

// Latest returns the newest accepted ticket
func (g *Guard) Latest() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.accepted
}
