package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"
)

var (
	// ErrRefreshFailed is returned to every caller waiting on a token refresh that failed
	ErrRefreshFailed = errors.New("session expired, please log in again")

	errRefreshAborted = errors.New("token refresh aborted")
)

// APIError is a non-2xx backend response
type APIError struct {
	StatusCode int
	// Message is the backend's message field, passed through unchanged
	Message string
	Body    []byte
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("backend returned %d", e.StatusCode)
}

// IsUnauthorized reports whether the backend rejected the credentials
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

func newAPIError(resp *Response) *APIError {
	msg := gjson.GetBytes(resp.Body, "message").String()
	if msg == "" {
		msg = gjson.GetBytes(resp.Body, "error").String()
	}
	return &APIError{StatusCode: resp.StatusCode, Message: msg, Body: resp.Body}
}

// UserMessage returns the text to show a customer for err: the backend's message
// when it sent one, otherwise fallback
func UserMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
