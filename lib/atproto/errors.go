// Copyright 2026 The bskyctl Authors
// SPDX-License-Identifier: Apache-2.0

package atproto

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Error represents a non-2xx XRPC response. The PDS returns a JSON
// body with a machine-readable error name and a human message; both
// are kept so callers can classify without parsing text.
type Error struct {
	// StatusCode is the HTTP response status code.
	StatusCode int

	// Code is the XRPC error name (e.g. "RateLimitExceeded",
	// "ExpiredToken"). Empty when the body was not structured.
	Code string

	// Message is the human-readable description.
	Message string
}

func (err *Error) Error() string {
	switch {
	case err.Code != "" && err.Message != "":
		return fmt.Sprintf("atproto: HTTP %d: %s: %s", err.StatusCode, err.Code, err.Message)
	case err.Code != "":
		return fmt.Sprintf("atproto: HTTP %d: %s", err.StatusCode, err.Code)
	default:
		return fmt.Sprintf("atproto: HTTP %d: %s", err.StatusCode, err.Message)
	}
}

// parseError builds an *Error from a status code and response body.
// Unstructured bodies become the message verbatim.
func parseError(statusCode int, body []byte) *Error {
	apiError := &Error{StatusCode: statusCode}

	var wireError struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &wireError) == nil && (wireError.Error != "" || wireError.Message != "") {
		apiError.Code = wireError.Error
		apiError.Message = wireError.Message
	} else {
		apiError.Message = string(body)
	}
	return apiError
}

// IsRateLimited reports whether err is the PDS telling us to slow
// down.
func IsRateLimited(err error) bool {
	var apiError *Error
	if !errors.As(err, &apiError) {
		return false
	}
	return apiError.StatusCode == 429 || apiError.Code == "RateLimitExceeded"
}

// IsConflict reports whether err means the target state already holds,
// such as following an account twice.
func IsConflict(err error) bool {
	var apiError *Error
	if !errors.As(err, &apiError) {
		return false
	}
	switch apiError.Code {
	case "AlreadyExists", "DuplicateRecord", "RecordAlreadyExists":
		return true
	}
	return apiError.StatusCode == 409
}

// IsNotFound reports whether err is a missing actor or record.
func IsNotFound(err error) bool {
	var apiError *Error
	if !errors.As(err, &apiError) {
		return false
	}
	switch apiError.Code {
	case "NotFound", "RecordNotFound", "ActorNotFound":
		return true
	}
	return apiError.StatusCode == 404
}

// IsExpiredToken reports whether err is an access token past its
// lifetime. The client refreshes and replays these internally; callers
// only see one when the refresh itself failed.
func IsExpiredToken(err error) bool {
	var apiError *Error
	return errors.As(err, &apiError) && apiError.Code == "ExpiredToken"
}

// IsAuthFailed reports whether err means the credentials or session
// are no good and a fresh login is needed.
func IsAuthFailed(err error) bool {
	var apiError *Error
	if !errors.As(err, &apiError) {
		return false
	}
	switch apiError.Code {
	case "AuthenticationRequired", "InvalidToken":
		return true
	}
	return apiError.StatusCode == 401
}
