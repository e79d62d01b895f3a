package transport

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Kind categorizes a failed call.
type Kind int

const (
	KindUnknown Kind = iota
	// KindInvalidInput is a local pre-flight failure; no request was sent.
	KindInvalidInput
	KindBadRequest
	KindAuthFailed
	KindAccessDenied
	KindNotFound
	KindRateLimited
	KindServerError
	KindUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindBadRequest:
		return "bad_request"
	case KindAuthFailed:
		return "auth_failed"
	case KindAccessDenied:
		return "access_denied"
	case KindNotFound:
		return "not_found"
	case KindRateLimited:
		return "rate_limited"
	case KindServerError:
		return "server_error"
	case KindUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

const (
	defaultAPIMessage        = "Unknown API error"
	defaultValidationMessage = "Validation failed"
)

// KindForStatus maps an HTTP status code to its error category.
func KindForStatus(status int) Kind {
	switch status {
	case http.StatusBadRequest:
		return KindBadRequest
	case http.StatusUnauthorized:
		return KindAuthFailed
	case http.StatusForbidden:
		return KindAccessDenied
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusTooManyRequests:
		return KindRateLimited
	case http.StatusInternalServerError:
		return KindServerError
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return KindUnavailable
	default:
		return KindUnknown
	}
}

// APIError is returned for every non-2xx response other than 400.
type APIError struct {
	StatusCode int
	APIMessage string
	// Payload is the decoded error body when it was a JSON object.
	Payload map[string]any
	kind    Kind
}

func (e *APIError) Kind() Kind {
	if e == nil {
		return KindUnknown
	}
	return e.kind
}

func (e *APIError) Error() string {
	if e == nil {
		return "barikoi api error"
	}
	return formatAPIMessage(e.StatusCode, e.APIMessage)
}

func formatAPIMessage(status int, msg string) string {
	switch KindForStatus(status) {
	case KindBadRequest:
		return fmt.Sprintf("Bad Request: %s. Please check your input parameters.", msg)
	case KindAuthFailed:
		return fmt.Sprintf("Authentication Failed: %s. Please verify your API key is correct.", msg)
	case KindAccessDenied:
		return fmt.Sprintf("Access Denied: %s. Your API key does not have permission for this operation.", msg)
	case KindNotFound:
		return fmt.Sprintf("Not Found: %s. The requested resource or endpoint does not exist.", msg)
	case KindRateLimited:
		return fmt.Sprintf("Rate Limit Exceeded: %s. Please reduce the number of requests or try again later.", msg)
	case KindServerError:
		return fmt.Sprintf("Server Error: %s. The Barikoi API is experiencing issues. Please try again later.", msg)
	case KindUnavailable:
		return fmt.Sprintf("Service Unavailable: %s. The Barikoi API is temporarily unavailable. Please try again later.", msg)
	default:
		return fmt.Sprintf("API Error (%d): %s", status, msg)
	}
}

// ValidationError reports input the caller must fix. It is produced either
// locally, before any request is sent (StatusCode 0 or the structured 400 of
// the routing validators), or from an upstream 400 response.
type ValidationError struct {
	StatusCode int
	// Code is a machine readable reason such as "too_many_waypoints".
	Code    string
	Message string
	// Details carries structured context, e.g. supported_profiles.
	Details map[string]any
	Payload map[string]any
	fields  map[string][]string
	remote  bool
}

// NewValidationError builds a local validation failure.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NewRequestError builds a structured local failure that mirrors the shape of
// a 400 payload: status, error code, message and any extra details.
func NewRequestError(code, message string, details map[string]any) *ValidationError {
	return &ValidationError{
		StatusCode: http.StatusBadRequest,
		Code:       code,
		Message:    message,
		Details:    details,
	}
}

// Remote reports whether the error came back from the API.
func (e *ValidationError) Remote() bool {
	return e != nil && e.remote
}

func (e *ValidationError) Kind() Kind {
	if e.Remote() {
		return KindBadRequest
	}
	return KindInvalidInput
}

// ValidationErrors returns the per-field errors of an upstream 400, keyed by
// field name. It is empty for local failures.
func (e *ValidationError) ValidationErrors() map[string][]string {
	if e == nil || len(e.fields) == 0 {
		return map[string][]string{}
	}
	out := make(map[string][]string, len(e.fields))
	for k, v := range e.fields {
		out[k] = append([]string(nil), v...)
	}
	return out
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "validation error"
	}
	if !e.remote {
		return e.Message
	}
	var b strings.Builder
	b.WriteString(formatAPIMessage(http.StatusBadRequest, e.Message))
	if len(e.fields) > 0 {
		b.WriteString("\nDetails:")
		keys := make([]string, 0, len(e.fields))
		for k := range e.fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			b.WriteString("\n  - ")
			b.WriteString(k)
			b.WriteString(": ")
			b.WriteString(strings.Join(e.fields[k], ", "))
		}
	}
	return b.String()
}

// classify turns a non-2xx response into the matching error value.
func classify(status int, payload map[string]any) error {
	if status == http.StatusBadRequest {
		msg := messageFrom(payload, defaultValidationMessage)
		return &ValidationError{
			StatusCode: status,
			Message:    msg,
			Payload:    payload,
			fields:     fieldErrors(payload["errors"]),
			remote:     true,
		}
	}
	return &APIError{
		StatusCode: status,
		APIMessage: messageFrom(payload, defaultAPIMessage),
		Payload:    payload,
		kind:       KindForStatus(status),
	}
}

func messageFrom(payload map[string]any, fallback string) string {
	if msg, ok := payload["message"].(string); ok && strings.TrimSpace(msg) != "" {
		return strings.TrimSpace(msg)
	}
	return fallback
}

// fieldErrors accepts {"field": ["a", "b"]} as well as {"field": "a"}.
func fieldErrors(raw any) map[string][]string {
	obj, ok := raw.(map[string]any)
	if !ok || len(obj) == 0 {
		return nil
	}
	out := make(map[string][]string, len(obj))
	for field, value := range obj {
		switch typed := value.(type) {
		case []any:
			list := make([]string, 0, len(typed))
			for _, item := range typed {
				list = append(list, fmt.Sprint(item))
			}
			out[field] = list
		case string:
			out[field] = []string{typed}
		default:
			out[field] = []string{fmt.Sprint(typed)}
		}
	}
	return out
}

// KindOf extracts the category of err, looking through wrapping.
func KindOf(err error) Kind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind()
	}
	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return valErr.Kind()
	}
	return KindUnknown
}

// IsValidation reports whether err is a local or upstream validation failure.
func IsValidation(err error) bool {
	var valErr *ValidationError
	return errors.As(err, &valErr)
}
