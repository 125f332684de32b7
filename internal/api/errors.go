package api

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ErrorKind classifies publish failures that need distinct user guidance.
type ErrorKind string

const (
	ErrorKindGeneric        ErrorKind = "generic"
	ErrorKindSessionExpired ErrorKind = "session_expired"
	ErrorKindCaptcha        ErrorKind = "captcha"
	ErrorKindPhotoInvalid   ErrorKind = "photo_invalid"
)

// PublishError is a failed publish call with a classified kind.
// The service is expected to send a structured `reason` field; when it does
// not, the kind is inferred from the error prose as a fallback.
type PublishError struct {
	Kind       ErrorKind
	StatusCode int
	Detail     string
}

func (e *PublishError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("publish failed (status %d)", e.StatusCode)
	}
	return fmt.Sprintf("publish failed (status %d): %s", e.StatusCode, e.Detail)
}

// Guidance returns a user-facing hint for the failure kind.
func (e *PublishError) Guidance() string {
	switch e.Kind {
	case ErrorKindSessionExpired:
		return "Your marketplace session has expired. Sign in again and retry."
	case ErrorKindCaptcha:
		return "The marketplace presented a verification challenge. Complete it in your browser, then retry."
	case ErrorKindPhotoInvalid:
		return "One or more photos were rejected by the marketplace. Review the listing photos and retry."
	default:
		return "Publishing failed. Please try again."
	}
}

func parsePublishError(statusCode int, body []byte) *PublishError {
	var payload struct {
		Detail string `json:"detail"`
		Reason string `json:"reason"`
	}
	// Body may not be JSON at all; fall back to the raw text.
	if err := json.Unmarshal(body, &payload); err != nil {
		payload.Detail = strings.TrimSpace(string(body))
	}
	if payload.Detail == "" {
		payload.Detail = strings.TrimSpace(string(body))
	}

	kind := kindFromReason(payload.Reason)
	if kind == ErrorKindGeneric {
		kind = classifyDetail(payload.Detail)
	}

	return &PublishError{
		Kind:       kind,
		StatusCode: statusCode,
		Detail:     payload.Detail,
	}
}

func kindFromReason(reason string) ErrorKind {
	switch reason {
	case "session_expired":
		return ErrorKindSessionExpired
	case "captcha":
		return ErrorKindCaptcha
	case "photo_invalid":
		return ErrorKindPhotoInvalid
	default:
		return ErrorKindGeneric
	}
}

// classifyDetail infers a kind from server prose. Substring matching is a
// stopgap for responses that predate the structured reason field.
func classifyDetail(detail string) ErrorKind {
	lower := strings.ToLower(detail)
	switch {
	case strings.Contains(lower, "session") && (strings.Contains(lower, "expired") || strings.Contains(lower, "invalid")):
		return ErrorKindSessionExpired
	case strings.Contains(lower, "captcha") || strings.Contains(lower, "verification"):
		return ErrorKindCaptcha
	case strings.Contains(lower, "photo") || strings.Contains(lower, "image"):
		return ErrorKindPhotoInvalid
	default:
		return ErrorKindGeneric
	}
}
