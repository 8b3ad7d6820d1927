package api

import (
	"context"
	"net/http"
)

type agentQueryRequest struct {
	Text    string     `json:"text"`
	History []ChatTurn `json:"history"`
}

type agentQueryResponse struct {
	Answer *string `json:"answer"`
}

// AgentQuery sends one question with the prior conversation and returns the answer
func (c *Client) AgentQuery(ctx context.Context, text string, history []ChatTurn) (string, error) {
	if history == nil {
		history = []ChatTurn{}
	}
	var resp agentQueryResponse
	if err := c.doJSON(ctx, http.MethodPost, "/agent-query", agentQueryRequest{Text: text, History: history}, &resp); err != nil {
		return "", err
	}
	if resp.Answer == nil {
		return "", missingField("POST /agent-query", "answer")
	}
	return *resp.Answer, nil
}
