// Copyright 2026 The bskyctl Authors
// SPDX-License-Identifier: Apache-2.0

package atproto

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorString(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{
			name:     "code and message",
			err:      &Error{StatusCode: 400, Code: "ExpiredToken", Message: "Token has expired"},
			expected: "atproto: HTTP 400: ExpiredToken: Token has expired",
		},
		{
			name:     "code only",
			err:      &Error{StatusCode: 429, Code: "RateLimitExceeded"},
			expected: "atproto: HTTP 429: RateLimitExceeded",
		},
		{
			name:     "message only",
			err:      &Error{StatusCode: 502, Message: "upstream gone"},
			expected: "atproto: HTTP 502: upstream gone",
		},
		{
			name:     "neither",
			err:      &Error{StatusCode: 500},
			expected: "atproto: HTTP 500: ",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := test.err.Error(); got != test.expected {
				t.Errorf("got %q, want %q", got, test.expected)
			}
		})
	}
}

func TestParseError(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		body       string
		expected   Error
	}{
		{
			name:       "structured body",
			statusCode: 400,
			body:       `{"error":"InvalidRequest","message":"bad cursor"}`,
			expected:   Error{StatusCode: 400, Code: "InvalidRequest", Message: "bad cursor"},
		},
		{
			name:       "unstructured body",
			statusCode: 502,
			body:       "Bad Gateway",
			expected:   Error{StatusCode: 502, Message: "Bad Gateway"},
		},
		{
			name:       "empty body",
			statusCode: 500,
			body:       "",
			expected:   Error{StatusCode: 500},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := parseError(test.statusCode, []byte(test.body))
			if *got != test.expected {
				t.Errorf("got %+v, want %+v", *got, test.expected)
			}
		})
	}
}

func TestErrorPredicates(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		predicate func(error) bool
		expected  bool
	}{
		{"rate limited by status", &Error{StatusCode: 429}, IsRateLimited, true},
		{"rate limited by code", &Error{StatusCode: 400, Code: "RateLimitExceeded"}, IsRateLimited, true},
		{"not rate limited", &Error{StatusCode: 400, Code: "InvalidRequest"}, IsRateLimited, false},
		{"conflict by status", &Error{StatusCode: 409}, IsConflict, true},
		{"conflict AlreadyExists", &Error{StatusCode: 400, Code: "AlreadyExists"}, IsConflict, true},
		{"conflict DuplicateRecord", &Error{StatusCode: 400, Code: "DuplicateRecord"}, IsConflict, true},
		{"conflict RecordAlreadyExists", &Error{StatusCode: 400, Code: "RecordAlreadyExists"}, IsConflict, true},
		{"not conflict", &Error{StatusCode: 404}, IsConflict, false},
		{"not found by status", &Error{StatusCode: 404}, IsNotFound, true},
		{"not found ActorNotFound", &Error{StatusCode: 400, Code: "ActorNotFound"}, IsNotFound, true},
		{"not found RecordNotFound", &Error{StatusCode: 400, Code: "RecordNotFound"}, IsNotFound, true},
		{"expired token", &Error{StatusCode: 400, Code: "ExpiredToken"}, IsExpiredToken, true},
		{"expired token needs code", &Error{StatusCode: 401}, IsExpiredToken, false},
		{"auth failed by status", &Error{StatusCode: 401}, IsAuthFailed, true},
		{"auth failed AuthenticationRequired", &Error{StatusCode: 400, Code: "AuthenticationRequired"}, IsAuthFailed, true},
		{"auth failed InvalidToken", &Error{StatusCode: 400, Code: "InvalidToken"}, IsAuthFailed, true},
		{"plain error is nothing", errors.New("boom"), IsRateLimited, false},
		{"nil error is nothing", nil, IsNotFound, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := test.predicate(test.err); got != test.expected {
				t.Errorf("got %v, want %v", got, test.expected)
			}
		})
	}
}

func TestErrorPredicatesSeeThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("following alice: %w", &Error{StatusCode: 400, Code: "DuplicateRecord"})
	if !IsConflict(wrapped) {
		t.Errorf("IsConflict should match through %%w wrapping: %v", wrapped)
	}
	doubleWrapped := fmt.Errorf("batch item: %w", wrapped)
	if !IsConflict(doubleWrapped) {
		t.Errorf("IsConflict should match through double wrapping: %v", doubleWrapped)
	}
}
