// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2025 Daniel Schmidt

package rexster

import (
	"errors"
	"fmt"
)

// ErrorCode classifies a client error into one of the failure categories
// callers are expected to branch on.
type ErrorCode string

const (
	// CodeConnection indicates a connection-level failure (connection
	// refused, connection reset, DNS failure) before or during transfer.
	CodeConnection ErrorCode = "connection_error"

	// CodeTimeout indicates the attempt deadline elapsed before a
	// response was received.
	CodeTimeout ErrorCode = "request_timeout"

	// CodeMalformedResponse indicates the server responded but the body
	// could not be decoded into the expected structure.
	CodeMalformedResponse ErrorCode = "malformed_response"

	// CodeUnsupportedPropertyType indicates a property value of a type
	// that cannot be represented on the wire.
	CodeUnsupportedPropertyType ErrorCode = "unsupported_property_type"

	// CodeNotFound indicates the server returned 404 for a vertex or
	// edge identifier.
	CodeNotFound ErrorCode = "not_found"

	// CodeIndexNotFound indicates the server returned 404 for a named
	// index. Distinct from an existing index with no matches, which is
	// an empty result, not an error.
	CodeIndexNotFound ErrorCode = "index_not_found"

	// CodeBadRequest indicates the server rejected the request (400 and
	// other non-retryable 4xx statuses).
	CodeBadRequest ErrorCode = "bad_request"

	// CodeServerError indicates a 5xx response. Transient: idempotent
	// operations are retried.
	CodeServerError ErrorCode = "server_error"

	// CodeScriptExecution indicates a Gremlin script failed server-side
	// (syntax error, runtime exception). The server message is preserved.
	CodeScriptExecution ErrorCode = "script_error"

	// CodeIndeterminate indicates a non-idempotent request may have
	// reached the server but its response was lost. The operation may or
	// may not have been executed; the caller must decide how to recover.
	CodeIndeterminate ErrorCode = "indeterminate"

	// CodeRetriesExhausted indicates the retry budget was spent on
	// transient failures without a success. The last underlying failure
	// is available via errors.Unwrap.
	CodeRetriesExhausted ErrorCode = "retries_exhausted"
)

// Sentinel errors for errors.Is matching. Each matches any *Error
// carrying the same code, regardless of operation or message.
//
// Example:
//
//	_, err := client.GetVertex(ctx, "99")
//	if errors.Is(err, rexster.ErrNotFound) {
//	    // vertex does not exist
//	}
var (
	ErrConnection              = &Error{Code: CodeConnection}
	ErrTimeout                 = &Error{Code: CodeTimeout}
	ErrMalformedResponse       = &Error{Code: CodeMalformedResponse}
	ErrUnsupportedPropertyType = &Error{Code: CodeUnsupportedPropertyType}
	ErrNotFound                = &Error{Code: CodeNotFound}
	ErrIndexNotFound           = &Error{Code: CodeIndexNotFound}
	ErrBadRequest              = &Error{Code: CodeBadRequest}
	ErrServerError             = &Error{Code: CodeServerError}
	ErrScriptExecution         = &Error{Code: CodeScriptExecution}
	ErrIndeterminate           = &Error{Code: CodeIndeterminate}
	ErrRetriesExhausted        = &Error{Code: CodeRetriesExhausted}
)

// transientCodes lists the error codes that may succeed on retry.
//
// These failures are typically caused by temporary conditions:
//   - connection refused/reset (server restarting, load balancer churn)
//   - request timeout (slow network, momentary overload)
//   - HTTP 5xx (server-side fault that may clear)
//
// 4xx statuses are intentionally excluded: they indicate the request
// itself is wrong and will fail identically on retry.
var transientCodes = map[ErrorCode]bool{
	CodeConnection:  true,
	CodeTimeout:     true,
	CodeServerError: true,
}

// Error is the structured error returned by all client operations.
//
// Code is the failure category, Op names the operation that failed
// (e.g. "get vertex"), StatusCode is the HTTP status (0 for failures
// that never produced a response), Message preserves the server-reported
// message verbatim when one was available, and Attempts counts how many
// times the request was sent.
type Error struct {
	// Code is the failure category
	Code ErrorCode

	// Op is the operation name that failed
	Op string

	// StatusCode is the HTTP response status, 0 if no response was received
	StatusCode int

	// Message is the human-readable error message. For server-reported
	// failures this is the server's message, preserved verbatim.
	Message string

	// Attempts is the number of times the request was sent
	Attempts int

	// err is the wrapped cause, if any
	err error
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.err != nil {
		msg = e.err.Error()
	}
	if msg == "" {
		msg = string(e.Code)
	}

	var s string
	if e.Op != "" {
		s = fmt.Sprintf("rexster: %s failed: %s", e.Op, msg)
	} else {
		s = fmt.Sprintf("rexster: %s", msg)
	}
	if e.StatusCode > 0 {
		s += fmt.Sprintf(" (status: %d)", e.StatusCode)
	}
	if e.Attempts > 1 {
		s += fmt.Sprintf(" (attempts: %d)", e.Attempts)
	}
	return s
}

// Unwrap returns the wrapped cause, enabling errors.Is/errors.As
// traversal through the full failure chain.
func (e *Error) Unwrap() error {
	return e.err
}

// Is reports whether target matches this error. Two *Error values match
// when they carry the same code, so errors.Is(err, ErrNotFound) works no
// matter which operation produced err.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// Transient reports whether the failure may succeed on retry. The client
// retries transient failures automatically for idempotent operations only.
func (e *Error) Transient() bool {
	return transientCodes[e.Code]
}

// isTransientStatus reports whether an HTTP status code indicates a
// failure that may clear on retry. Only 5xx qualifies.
func isTransientStatus(status int) bool {
	return status >= 500 && status <= 599
}

// stampOp attributes an error to an operation. Errors produced outside
// the request path (encoding, decoding) carry no operation name; the
// operation that surfaced them fills it in.
func stampOp(err error, op string) error {
	var e *Error
	if errors.As(err, &e) && e.Op == "" {
		e.Op = op
	}
	return err
}
