// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2025 Daniel Schmidt

package rexster

import (
	"errors"
	"fmt"
	"testing"
)

// TestErrorFormatting tests error message construction
func TestErrorFormatting(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "message only",
			err:  &Error{Code: CodeConnection, Message: "connection refused"},
			want: "rexster: connection refused",
		},
		{
			name: "op and message",
			err:  &Error{Code: CodeNotFound, Op: "get vertex", Message: "vertex not found"},
			want: "rexster: get vertex failed: vertex not found",
		},
		{
			name: "status code appended",
			err:  &Error{Code: CodeNotFound, Op: "get vertex", StatusCode: 404, Message: "vertex not found"},
			want: "rexster: get vertex failed: vertex not found (status: 404)",
		},
		{
			name: "attempts appended when retried",
			err:  &Error{Code: CodeServerError, Op: "get vertex", StatusCode: 503, Message: "overloaded", Attempts: 3},
			want: "rexster: get vertex failed: overloaded (status: 503) (attempts: 3)",
		},
		{
			name: "single attempt not appended",
			err:  &Error{Code: CodeServerError, Op: "get vertex", StatusCode: 503, Message: "overloaded", Attempts: 1},
			want: "rexster: get vertex failed: overloaded (status: 503)",
		},
		{
			name: "falls back to wrapped error message",
			err:  &Error{Code: CodeConnection, err: fmt.Errorf("dial tcp: connection refused")},
			want: "rexster: dial tcp: connection refused",
		},
		{
			name: "falls back to code when nothing else",
			err:  &Error{Code: CodeIndeterminate},
			want: "rexster: indeterminate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Expected error %q, got %q", tt.want, got)
			}
		})
	}
}

// TestErrorSentinelMatching tests errors.Is matching by code
func TestErrorSentinelMatching(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel *Error
		want     bool
	}{
		{
			name:     "not found matches ErrNotFound",
			err:      &Error{Code: CodeNotFound, Op: "get vertex", StatusCode: 404},
			sentinel: ErrNotFound,
			want:     true,
		},
		{
			name:     "not found does not match ErrBadRequest",
			err:      &Error{Code: CodeNotFound, Op: "get vertex", StatusCode: 404},
			sentinel: ErrBadRequest,
			want:     false,
		},
		{
			name:     "server error matches ErrServerError",
			err:      &Error{Code: CodeServerError, StatusCode: 503},
			sentinel: ErrServerError,
			want:     true,
		},
		{
			name:     "wrapped error matches through fmt.Errorf",
			err:      fmt.Errorf("operation context: %w", &Error{Code: CodeTimeout}),
			sentinel: ErrTimeout,
			want:     true,
		},
		{
			name:     "indeterminate matches only itself",
			err:      &Error{Code: CodeIndeterminate, Op: "create vertex"},
			sentinel: ErrConnection,
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(tt.err, tt.sentinel); got != tt.want {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.sentinel, got, tt.want)
			}
		})
	}
}

// TestErrorUnwrapChain tests that wrapped causes stay reachable
func TestErrorUnwrapChain(t *testing.T) {
	inner := &Error{Code: CodeServerError, StatusCode: 503, Message: "overloaded"}
	outer := &Error{
		Code:     CodeRetriesExhausted,
		Op:       "get vertex",
		Message:  "retry budget exhausted after 4 attempts",
		Attempts: 4,
		err:      inner,
	}

	// Both the outer and the inner code must match
	if !errors.Is(outer, ErrRetriesExhausted) {
		t.Error("Expected outer error to match ErrRetriesExhausted")
	}
	if !errors.Is(outer, ErrServerError) {
		t.Error("Expected wrapped cause to match ErrServerError")
	}
	if errors.Is(outer, ErrNotFound) {
		t.Error("Did not expect match against ErrNotFound")
	}

	// Unwrap exposes the cause directly
	if unwrapped := errors.Unwrap(outer); unwrapped != inner {
		t.Errorf("Expected Unwrap to return the inner error, got %v", unwrapped)
	}
}

// TestErrorAs tests errors.As extraction of structured fields
func TestErrorAs(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", &Error{
		Code:       CodeScriptExecution,
		Op:         "gremlin",
		StatusCode: 500,
		Message:    "javax.script.ScriptException: missing method",
	})

	var e *Error
	if !errors.As(err, &e) {
		t.Fatal("Expected errors.As to find *Error in chain")
	}
	if e.Code != CodeScriptExecution {
		t.Errorf("Expected code %q, got %q", CodeScriptExecution, e.Code)
	}
	if e.StatusCode != 500 {
		t.Errorf("Expected status 500, got %d", e.StatusCode)
	}
	if e.Message != "javax.script.ScriptException: missing method" {
		t.Errorf("Server message not preserved: %q", e.Message)
	}
}

// TestErrorTransient tests transient classification per code
func TestErrorTransient(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want bool
	}{
		{CodeConnection, true},
		{CodeTimeout, true},
		{CodeServerError, true},
		{CodeNotFound, false},
		{CodeIndexNotFound, false},
		{CodeBadRequest, false},
		{CodeMalformedResponse, false},
		{CodeUnsupportedPropertyType, false},
		{CodeScriptExecution, false},
		{CodeIndeterminate, false},
		{CodeRetriesExhausted, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			err := &Error{Code: tt.code}
			if got := err.Transient(); got != tt.want {
				t.Errorf("(%s).Transient() = %v, want %v", tt.code, got, tt.want)
			}
		})
	}
}

// TestIsTransientStatus tests the 5xx boundary
func TestIsTransientStatus(t *testing.T) {
	tests := []struct {
		status int
		want   bool
	}{
		{200, false},
		{400, false},
		{404, false},
		{499, false},
		{500, true},
		{502, true},
		{503, true},
		{599, true},
		{600, false},
	}

	for _, tt := range tests {
		if got := isTransientStatus(tt.status); got != tt.want {
			t.Errorf("isTransientStatus(%d) = %v, want %v", tt.status, got, tt.want)
		}
	}
}

// TestStampOp tests operation attribution on errors
func TestStampOp(t *testing.T) {
	// Fills in a missing op
	err := &Error{Code: CodeMalformedResponse, Message: "element is not an object"}
	stamped := stampOp(err, "get vertex")

	var e *Error
	if !errors.As(stamped, &e) {
		t.Fatal("Expected *Error after stamping")
	}
	if e.Op != "get vertex" {
		t.Errorf("Expected op to be stamped, got %q", e.Op)
	}

	// Does not overwrite an existing op
	err2 := &Error{Code: CodeBadRequest, Op: "create edge", Message: "label cannot be empty"}
	_ = stampOp(err2, "other op")
	if err2.Op != "create edge" {
		t.Errorf("Expected existing op to be preserved, got %q", err2.Op)
	}

	// Passes through non-Error values untouched
	plain := fmt.Errorf("plain error")
	if got := stampOp(plain, "op"); got != plain {
		t.Errorf("Expected plain error to pass through, got %v", got)
	}
}
