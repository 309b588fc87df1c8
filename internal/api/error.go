package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorBody mirrors the backend's error envelope. Validation failures
// come back with a messages array; older endpoints only fill message
// or error.
type ErrorBody struct {
	Success  *bool    `json:"success,omitempty"`
	Message  string   `json:"message,omitempty"`
	Messages []string `json:"messages,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// APIError is the structured {status, data} error every request failure
// resolves to. Status 0 means the request never completed (transport
// failure); callers branch on Status for everything else.
type APIError struct {
	Status int
	Data   ErrorBody
}

func (e *APIError) Error() string {
	msg := e.Data.Message
	if msg == "" && len(e.Data.Messages) > 0 {
		msg = strings.Join(e.Data.Messages, "; ")
	}
	if msg == "" {
		msg = e.Data.Error
	}
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if e.Status == 0 {
		return fmt.Sprintf("api: request failed: %s", msg)
	}
	return fmt.Sprintf("api: %d: %s", e.Status, msg)
}

// IsStatus reports whether err is an *APIError with the given HTTP status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// IsTransport reports whether err is a transport-level failure (the
// request never produced an HTTP status).
func IsTransport(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == 0
}
