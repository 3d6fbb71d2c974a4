package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// AuthError reports a 401 from any endpoint. The client fires its
// eviction hook before returning one, so by the time a caller sees this
// error the session has already been cleared locally.
type AuthError struct {
	Endpoint string
	Detail   string
}

func (e *AuthError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("unauthorized: %s", e.Endpoint)
}

// ValidationError is a non-401 4xx with a structured body. Detail carries
// the backend's message and is safe to surface inline to the user.
type ValidationError struct {
	Status int
	Detail string
}

func (e *ValidationError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("request rejected (%d)", e.Status)
}

// ServerError is a 5xx. Transient; the flow halts at the current step and
// retry is manual.
type ServerError struct {
	Status   int
	Endpoint string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error %d: %s", e.Status, e.Endpoint)
}

// NetworkError wraps a transport failure (DNS, refused connection,
// timeout). Treated the same as a ServerError by the flows.
type NetworkError struct {
	Endpoint string
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %s: %v", e.Endpoint, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// errorBody is the structured error payload the backend sends. detail is
// either a plain string or a list of field errors with msg entries.
type errorBody struct {
	Detail  json.RawMessage `json:"detail"`
	Message string          `json:"message"`
}

// extractDetail pulls a human-readable message out of a structured error
// body. Priority: detail string, detail list messages, message field, "".
func extractDetail(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return ""
	}

	if len(eb.Detail) > 0 {
		var s string
		if err := json.Unmarshal(eb.Detail, &s); err == nil {
			return s
		}
		var fields []struct {
			Msg string `json:"msg"`
		}
		if err := json.Unmarshal(eb.Detail, &fields); err == nil {
			msgs := make([]string, 0, len(fields))
			for _, f := range fields {
				if f.Msg != "" {
					msgs = append(msgs, f.Msg)
				}
			}
			if len(msgs) > 0 {
				return strings.Join(msgs, "; ")
			}
		}
	}

	return eb.Message
}

// classify maps a non-2xx response to the error taxonomy.
func classify(status int, endpoint string, body []byte) error {
	switch {
	case status == http.StatusUnauthorized:
		return &AuthError{Endpoint: endpoint, Detail: extractDetail(body)}
	case status >= 400 && status < 500:
		return &ValidationError{Status: status, Detail: extractDetail(body)}
	default:
		return &ServerError{Status: status, Endpoint: endpoint}
	}
}
