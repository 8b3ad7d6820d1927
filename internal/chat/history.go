package chat

import "github.com/casedesk/cli/internal/api"

// Turn is one acknowledged exchange half
type Turn = api.ChatTurn

// History is the ordered list of acknowledged turns. Turns are only ever
// appended in human/ai pairs, after the answer has arrived.
type History struct {
	turns []Turn
}

// Snapshot returns a copy safe to send or keep
func (h *History) Snapshot() []Turn {
	out := make([]Turn, len(h.turns))
	copy(out, h.turns)
	return out
}

// Len returns the number of turns
func (h *History) Len() int {
	return len(h.turns)
}

func (h *History) commit(question, answer string) {
	h.turns = append(h.turns,
		Turn{Role: api.RoleHuman, Content: question},
		Turn{Role: api.RoleAI, Content: answer},
	)
}
