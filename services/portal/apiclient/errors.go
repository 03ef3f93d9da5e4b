package apiclient

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	apperrors "carenest/shared/errors"
)

// APIError is a failed call. StatusCode is zero when no response arrived.
type APIError struct {
	StatusCode int
	// Message is the server's "error" field, else its "detail" field.
	Message string
	// FieldError is the first field-level message of a validation response.
	FieldError string
	Body       []byte
	Cause      error
}

func (e *APIError) Error() string {
	switch {
	case e.Cause != nil && e.StatusCode == 0:
		return fmt.Sprintf("api request failed: %v", e.Cause)
	case e.Message != "":
		return fmt.Sprintf("api returned %d: %s", e.StatusCode, e.Message)
	default:
		return fmt.Sprintf("api returned %d", e.StatusCode)
	}
}

func (e *APIError) Unwrap() error { return e.Cause }

func newAPIError(status int, body []byte) *APIError {
	e := &APIError{StatusCode: status, Body: body}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(body, &top); err == nil {
		e.Message = stringField(top, "error")
		if e.Message == "" {
			e.Message = stringField(top, "detail")
		}
	}
	e.FieldError = firstFieldError(body)
	return e
}

func stringField(m map[string]json.RawMessage, key string) string {
	raw, ok := m[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// firstFieldError walks the top-level object in document order and returns
// the first string found, either directly or as the first element of a list.
func firstFieldError(body []byte) string {
	dec := json.NewDecoder(bytes.NewReader(body))
	tok, err := dec.Token()
	if err != nil || tok != json.Delim('{') {
		return ""
	}
	for dec.More() {
		if _, err := dec.Token(); err != nil {
			return ""
		}
		var v json.RawMessage
		if err := dec.Decode(&v); err != nil {
			return ""
		}
		var s string
		if json.Unmarshal(v, &s) == nil && s != "" {
			return s
		}
		var list []any
		if json.Unmarshal(v, &list) == nil {
			for _, item := range list {
				if s, ok := item.(string); ok && s != "" {
					return s
				}
			}
		}
	}
	return ""
}

// MessageOr returns the server message carried by err, or fallback.
func MessageOr(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// FieldErrorOr returns the first field error carried by err, or fallback.
func FieldErrorOr(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.FieldError != "" {
		return apiErr.FieldError
	}
	return fallback
}

// ToAppError converts a client failure into the shared error taxonomy.
func ToAppError(err error, message string) *apperrors.AppError {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return apperrors.NewInternalError(message, err)
	}
	msg := MessageOr(err, message)
	switch apiErr.StatusCode {
	case http.StatusNotFound:
		e := apperrors.NewNotFoundError(msg)
		e.Cause = err
		return e
	case http.StatusUnauthorized:
		e := apperrors.NewUnauthorizedError(msg)
		e.Cause = err
		return e
	case http.StatusForbidden:
		e := apperrors.NewForbiddenError(msg)
		e.Cause = err
		return e
	default:
		return apperrors.NewUpstreamError(msg, apiErr.StatusCode, err)
	}
}
