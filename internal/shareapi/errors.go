// Package shareapi provides an HTTP client for the document-management
// backend's share-link API, with automatic retry, error classification,
// and structured error-envelope parsing.
package shareapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Sentinel errors for classification. Use errors.Is(err, shareapi.ErrAccessDenied).
var (
	// ErrLinkInvalid means the share token is unknown, revoked, or expired.
	// Terminal: nothing else can be done with the link.
	ErrLinkInvalid = errors.New("shareapi: share link invalid or expired")

	// ErrAccessDenied means the server refused the viewer's email or OTP.
	// Recoverable: the viewer can correct their input and retry.
	ErrAccessDenied = errors.New("shareapi: access denied")

	ErrBadRequest  = errors.New("shareapi: bad request")
	ErrNotFound    = errors.New("shareapi: not found")
	ErrThrottled   = errors.New("shareapi: throttled")
	ErrServerError = errors.New("shareapi: server error")

	// ErrNetwork means the request never got an HTTP response: DNS, dial,
	// or transport failure after retries were exhausted.
	ErrNetwork = errors.New("shareapi: network failure")
)

// APIError wraps a sentinel error with the HTTP status code, the error kind
// reported by the server envelope, and a user-facing message.
type APIError struct {
	StatusCode int
	RequestID  string
	Kind       string
	Message    string
	Err        error // sentinel, for errors.Is()
}

func (e *APIError) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("shareapi: HTTP %d (request-id: %s): %s", e.StatusCode, e.RequestID, e.Message)
	}

	return fmt.Sprintf("shareapi: HTTP %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// UserMessage returns the server-provided message verbatim, suitable for
// surfacing inline. Falls back to a generic message when the server sent
// nothing parseable.
func UserMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}

	return "request failed, please try again"
}

// classifyStatus maps an HTTP status code to a sentinel error.
// Returns nil for 2xx success codes.
func classifyStatus(code int) error {
	switch code {
	case http.StatusBadRequest:
		return ErrBadRequest
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrAccessDenied
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusGone:
		return ErrLinkInvalid
	case http.StatusTooManyRequests:
		return ErrThrottled
	default:
		if code >= http.StatusInternalServerError {
			return ErrServerError
		}

		return nil
	}
}

// isRetryable reports whether the given HTTP status code should be retried.
func isRetryable(code int) bool {
	switch code {
	case http.StatusRequestTimeout,
		http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

// errorEnvelope is the structured error contract with the backend: a fixed
// {kind, message} pair on every non-2xx JSON response.
type errorEnvelope struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`

	// Legacy fields still emitted by older backend deployments. The shim in
	// parseErrorBody reads these when the structured pair is absent.
	Detail json.RawMessage `json:"detail"`
	Error  string          `json:"error"`
}

// parseErrorBody extracts a (kind, message) pair from a non-2xx response
// body. The structured {kind, message} envelope is the contract; everything
// past it is a compatibility shim for older deployments that nested
// stringified JSON inside `detail`, and is a candidate for removal once
// those are gone. Falls back to the raw body text when nothing parses.
func parseErrorBody(body []byte) (kind, message string) {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return "", ""
	}

	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return "", trimmed
	}

	if env.Message != "" {
		return env.Kind, env.Message
	}

	if env.Error != "" {
		return env.Kind, env.Error
	}

	if msg := legacyDetailMessage(env.Detail); msg != "" {
		return env.Kind, msg
	}

	return env.Kind, trimmed
}

// legacyDetailMessage unwraps the old `detail` field: either a plain string,
// an object with a `message` field, or a string containing stringified JSON
// one level deep. Deeper nesting is not chased.
func legacyDetailMessage(detail json.RawMessage) string {
	if len(detail) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(detail, &s); err == nil {
		// A string detail may itself be stringified JSON.
		var inner struct {
			Message string `json:"message"`
			Detail  string `json:"detail"`
		}
		if json.Unmarshal([]byte(s), &inner) == nil {
			if inner.Message != "" {
				return inner.Message
			}

			if inner.Detail != "" {
				return inner.Detail
			}
		}

		return s
	}

	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(detail, &obj); err == nil && obj.Message != "" {
		return obj.Message
	}

	return ""
}
