package api

import (
	"fmt"
	"net/http"
	"strings"
)

const unknownErrorMessage = "An unknown error occurred"

// Error is the normalized failure handed to OnError. Fields carries the
// backend's error body with keys in the console's convention, when there
// was one.
type Error struct {
	Status  int
	Message string
	Fields  map[string]any
	Err     error
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("api: %d: %s", e.Status, e.Message)
	}
	return "api: " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Unauthorized reports whether the backend rejected the session. Both 401
// and 403 end the console session.
func (e *Error) Unauthorized() bool {
	return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
}

// FieldErrors returns the per-field messages of a validation failure,
// flattening list values to their first entry.
func (e *Error) FieldErrors() map[string]string {
	out := map[string]string{}
	for key, value := range e.Fields {
		switch key {
		case "message", "detail", "error", "nonFieldErrors":
			continue
		}
		switch typed := value.(type) {
		case string:
			out[key] = typed
		case []any:
			if len(typed) > 0 {
				out[key] = fmt.Sprint(typed[0])
			}
		}
	}
	return out
}

// newTransportError synthesizes an Error for failures that carry no body
func newTransportError(err error) *Error {
	message := unknownErrorMessage
	if err != nil && strings.TrimSpace(err.Error()) != "" {
		message = err.Error()
	}
	return &Error{Message: message, Fields: map[string]any{"message": message}, Err: err}
}

// messageFrom picks the most descriptive message from a normalized error body
func messageFrom(fields map[string]any, status int) string {
	for _, key := range []string{"message", "detail", "error"} {
		if text, ok := fields[key].(string); ok && text != "" {
			return text
		}
	}
	if list, ok := fields["nonFieldErrors"].([]any); ok && len(list) > 0 {
		return fmt.Sprint(list[0])
	}
	if status > 0 {
		return fmt.Sprintf("request failed with status code %d", status)
	}
	return unknownErrorMessage
}

// asError converts any error into an *Error
func asError(err error) *Error {
	if err == nil {
		return nil
	}
	if apiErr, ok := err.(*Error); ok {
		return apiErr
	}
	return newTransportError(err)
}
