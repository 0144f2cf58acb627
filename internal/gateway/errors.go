package gateway

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// APIError is the single error shape for every failed call: transport
// failures, non-success statuses and undecodable bodies.
type APIError struct {
	// Status is the HTTP status code, or 0 when the server was never reached.
	Status int
	// Message is the human-readable text shown to the operator.
	Message string
	// Body is the raw response text, if any.
	Body string
	// Err is the transport cause for Status == 0.
	Err error
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Transport reports whether the request never produced an HTTP response.
func (e *APIError) Transport() bool {
	return e.Status == 0
}

// errorMessage picks the message for a failed response: the payload's
// "detail" field, then its "error" field, then "HTTP <status>".
func errorMessage(status int, payload any) string {
	if obj, ok := payload.(map[string]any); ok {
		if msg, ok := truthyText(obj["detail"]); ok {
			return msg
		}
		if msg, ok := truthyText(obj["error"]); ok {
			return msg
		}
	}
	return fmt.Sprintf("HTTP %d", status)
}

// truthyText renders a non-empty field value as text. Empty strings, null,
// false and zero count as absent. Structured values (e.g. a list of
// validation errors) are rendered as compact JSON.
func truthyText(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, t != ""
	case bool:
		if !t {
			return "", false
		}
	case float64:
		if t == 0 {
			return "", false
		}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", false
	}
	return string(b), true
}

func success(status int) bool {
	return status >= http.StatusOK && status < http.StatusMultipleChoices
}
