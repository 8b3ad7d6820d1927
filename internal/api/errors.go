package api

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ErrorKind classifies a failed backend call
type ErrorKind int

const (
	// KindTransport means no response was received
	KindTransport ErrorKind = iota + 1
	// KindStatus means the backend answered with a non-2xx status
	KindStatus
	// KindMalformed means a 2xx body could not be decoded or lacked a field
	KindMalformed
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindStatus:
		return "status"
	case KindMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// Error is returned by every Client method
type Error struct {
	Kind    ErrorKind
	Op      string // e.g. "POST /agent-query"
	Status  int
	Message string
	Cause   error
}

// Sentinels for errors.Is checks.
var (
	ErrTransport = &Error{Kind: KindTransport}
	ErrStatus    = &Error{Kind: KindStatus}
	ErrMalformed = &Error{Kind: KindMalformed}
)

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches sentinels by kind
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Status == 0 && t.Message == "" && t.Kind == e.Kind
}

// statusError builds a KindStatus error from the response body. The backend
// reports failures in either an "error" or a "detail" field.
func statusError(op string, status int, body []byte) *Error {
	return &Error{
		Kind:    KindStatus,
		Op:      op,
		Status:  status,
		Message: payloadMessage(status, body),
	}
}

func payloadMessage(status int, body []byte) string {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err == nil {
		for _, key := range []string{"error", "detail"} {
			raw, ok := payload[key]
			if !ok || string(raw) == "null" {
				continue
			}
			var s string
			if err := json.Unmarshal(raw, &s); err == nil {
				if s != "" {
					return s
				}
				continue
			}
			// validation errors come back as structured detail
			return strings.TrimSpace(string(raw))
		}
	}
	return fmt.Sprintf("HTTP error! status: %d", status)
}
