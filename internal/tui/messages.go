package tui

import (
	"github.com/casedesk/cli/internal/chat"
	"github.com/casedesk/cli/internal/intake"
)

type switchPageMsg struct {
	page page
}

type documentsTickMsg struct{}

type dashboardTickMsg struct{}

type inboxFileMsg struct {
	path string
}

// documentsChangedMsg follows any refresh, upload or delete
type documentsChangedMsg struct {
	err error
}

type casesLoadedMsg struct {
	err error
}

type clientsLoadedMsg struct {
	err error
}

type dashboardLoadedMsg struct {
	err error
}

type agentAnswerMsg struct {
	pending *chat.Pending
	answer  string
	err     error
}

type intakeDoneMsg struct {
	result intake.Result
	err    error
}

type configSavedMsg struct {
	err error
}
