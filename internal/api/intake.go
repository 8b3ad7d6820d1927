package api

import (
	"context"
	"encoding/json"
	"net/http"
)

type transcribeResponse struct {
	Text *string `json:"text"`
}

type intakeRequest struct {
	Text string `json:"text"`
}

// TranscribeAudio uploads one audio file and returns its transcript
func (c *Client) TranscribeAudio(ctx context.Context, file FilePart) (string, error) {
	var resp transcribeResponse
	if err := c.doMultipart(ctx, "/transcribe-audio", "audio_file", []FilePart{file}, &resp); err != nil {
		return "", err
	}
	if resp.Text == nil {
		return "", missingField("POST /transcribe-audio", "text")
	}
	return *resp.Text, nil
}

// CaseIntake extracts structured case facts from free text
func (c *Client) CaseIntake(ctx context.Context, text string) (*IntakeResult, error) {
	var raw json.RawMessage
	if err := c.doJSON(ctx, http.MethodPost, "/case-intake", intakeRequest{Text: text}, &raw); err != nil {
		return nil, err
	}
	result := &IntakeResult{Raw: raw}
	if err := json.Unmarshal(raw, &result.CaseIntake); err != nil {
		return nil, &Error{Kind: KindMalformed, Op: "POST /case-intake", Message: "failed to decode intake", Cause: err}
	}
	return result, nil
}
