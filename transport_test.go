// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2025 Daniel Schmidt

package rexster

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/http/httptrace"
	"strings"
	"testing"
	"time"
)

// newTestClient starts an httptest server around handler and returns a
// client pointed at it. Backoff delays are shrunk so retry tests finish
// in milliseconds. Caller options are applied last and win.
func newTestClient(t *testing.T, handler http.Handler, opts ...func(*Client)) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	defaults := []func(*Client){
		BackoffMinDelay(1 * time.Millisecond),
		BackoffMaxDelay(5 * time.Millisecond),
	}
	client, err := NewClient(srv.URL, "social", append(defaults, opts...)...)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return client
}

const markoVertexJSON = `{"results":{"_id":"1","_type":"vertex","name":"marko","age":29},"version":"2.5.0","queryTime":0.35}`

// TestRequestHeaders tests the headers sent with every request
func TestRequestHeaders(t *testing.T) {
	var got http.Header
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.Write([]byte(markoVertexJSON))
	}))

	_, err := client.GetVertex(context.Background(), "1")
	if err != nil {
		t.Fatalf("GetVertex failed: %v", err)
	}

	if accept := got.Get("Accept"); accept != "application/json" {
		t.Errorf("Expected Accept 'application/json', got %q", accept)
	}
	if ua := got.Get("User-Agent"); ua != "go-rexster" {
		t.Errorf("Expected User-Agent 'go-rexster', got %q", ua)
	}
	if id := got.Get("X-Request-Id"); id == "" {
		t.Error("Expected X-Request-Id header to be set")
	}
	// GET carries no body, so no Content-Type
	if ct := got.Get("Content-Type"); ct != "" {
		t.Errorf("Expected no Content-Type on GET, got %q", ct)
	}
	if auth := got.Get("Authorization"); auth != "" {
		t.Errorf("Expected no Authorization header without credentials, got %q", auth)
	}
}

// TestRequestHeadersWithBody tests Content-Type on requests with a body
func TestRequestHeadersWithBody(t *testing.T) {
	var got http.Header
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.Write([]byte(markoVertexJSON))
	}))

	_, err := client.CreateVertex(context.Background(), map[string]any{"name": "marko"})
	if err != nil {
		t.Fatalf("CreateVertex failed: %v", err)
	}

	if ct := got.Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("Expected Content-Type 'application/json; charset=utf-8', got %q", ct)
	}
}

// TestCustomUserAgent tests the UserAgent option
func TestCustomUserAgent(t *testing.T) {
	var got string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.UserAgent()
		w.Write([]byte(markoVertexJSON))
	}), UserAgent("graph-loader/1.2"))

	_, err := client.GetVertex(context.Background(), "1")
	if err != nil {
		t.Fatalf("GetVertex failed: %v", err)
	}
	if got != "graph-loader/1.2" {
		t.Errorf("Expected User-Agent 'graph-loader/1.2', got %q", got)
	}
}

// TestBasicAuth tests that credentials are sent as HTTP basic auth
func TestBasicAuth(t *testing.T) {
	var user, pass string
	var ok bool
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok = r.BasicAuth()
		w.Write([]byte(markoVertexJSON))
	}), Username("admin"), Password("secret"))

	_, err := client.GetVertex(context.Background(), "1")
	if err != nil {
		t.Fatalf("GetVertex failed: %v", err)
	}

	if !ok {
		t.Fatal("Expected basic auth header to be present")
	}
	if user != "admin" || pass != "secret" {
		t.Errorf("Expected credentials admin/secret, got %s/%s", user, pass)
	}
}

// TestStatusErrorMapping tests HTTP status to error code mapping
func TestStatusErrorMapping(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantErr     error
		wantMsg     string
		description string
	}{
		{
			name:        "404 not found",
			status:      http.StatusNotFound,
			body:        `{"message":"Vertex with [99] cannot be found."}`,
			wantErr:     ErrNotFound,
			wantMsg:     "Vertex with [99] cannot be found.",
			description: "404 should map to not found with server message preserved",
		},
		{
			name:        "400 bad request",
			status:      http.StatusBadRequest,
			body:        `{"message":"missing required parameter"}`,
			wantErr:     ErrBadRequest,
			wantMsg:     "missing required parameter",
			description: "400 should map to bad request",
		},
		{
			name:        "409 conflict",
			status:      http.StatusConflict,
			body:        `{"error":"element already exists"}`,
			wantErr:     ErrBadRequest,
			wantMsg:     "element already exists",
			description: "Other 4xx should map to bad request, reading the error field",
		},
		{
			name:        "500 server error",
			status:      http.StatusInternalServerError,
			body:        `{"message":"transaction failed"}`,
			wantErr:     ErrServerError,
			wantMsg:     "transaction failed",
			description: "500 should map to server error",
		},
		{
			name:        "503 unavailable",
			status:      http.StatusServiceUnavailable,
			body:        ``,
			wantErr:     ErrServerError,
			wantMsg:     "HTTP 503 Service Unavailable",
			description: "Empty body should fall back to the status line",
		},
		{
			name:        "404 html body",
			status:      http.StatusNotFound,
			body:        `<html><body>Not Found</body></html>`,
			wantErr:     ErrNotFound,
			wantMsg:     "HTTP 404 Not Found",
			description: "Non-JSON body should fall back to the status line",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}), MaxRetries(0))

			_, err := client.GetVertex(context.Background(), "99")
			if err == nil {
				t.Fatalf("%s: expected error, got nil", tt.description)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("%s: expected errors.Is(err, %v), got: %v", tt.description, tt.wantErr, err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("%s: expected error containing %q, got: %v", tt.description, tt.wantMsg, err)
			}

			var rexErr *Error
			if !errors.As(err, &rexErr) {
				t.Fatalf("%s: expected *Error, got %T", tt.description, err)
			}
			if rexErr.StatusCode != tt.status {
				t.Errorf("%s: expected StatusCode %d, got %d", tt.description, tt.status, rexErr.StatusCode)
			}
		})
	}
}

// TestErrorIncludesOperation tests that errors name the failing operation
func TestErrorIncludesOperation(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"Vertex with [99] cannot be found."}`))
	}))

	_, err := client.GetVertex(context.Background(), "99")
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if !strings.Contains(err.Error(), "get vertex") {
		t.Errorf("Expected error to name the operation, got: %v", err)
	}
	if !strings.Contains(err.Error(), "(status: 404)") {
		t.Errorf("Expected error to include the status, got: %v", err)
	}
}

// TestRequestQueryEncoding tests that query parameters are URL-encoded
func TestRequestQueryEncoding(t *testing.T) {
	var gotQuery string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"results":[]}`))
	}))

	_, err := client.Lookup(context.Background(), "people", "full name", "marko röd")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}

	if !strings.Contains(gotQuery, "key=full+name") {
		t.Errorf("Expected encoded key in query, got %q", gotQuery)
	}
	if !strings.Contains(gotQuery, "value=marko+r%C3%B6d") {
		t.Errorf("Expected encoded value in query, got %q", gotQuery)
	}
}

// TestConnectionReuse tests that keep-alive connections are pooled across requests
func TestConnectionReuse(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(markoVertexJSON))
	}))

	reused := false
	trace := &httptrace.ClientTrace{
		GotConn: func(info httptrace.GotConnInfo) {
			reused = info.Reused
		},
	}
	ctx := httptrace.WithClientTrace(context.Background(), trace)

	if _, err := client.GetVertex(ctx, "1"); err != nil {
		t.Fatalf("first GetVertex failed: %v", err)
	}
	if reused {
		t.Error("First request should open a fresh connection")
	}

	if _, err := client.GetVertex(ctx, "1"); err != nil {
		t.Fatalf("second GetVertex failed: %v", err)
	}
	if !reused {
		t.Error("Second request should reuse the pooled connection")
	}
}

// TestCloseIdleConnections tests that the client stays usable after closing idle connections
func TestCloseIdleConnections(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(markoVertexJSON))
	}))

	if _, err := client.GetVertex(context.Background(), "1"); err != nil {
		t.Fatalf("GetVertex failed: %v", err)
	}

	client.CloseIdleConnections()

	reused := false
	trace := &httptrace.ClientTrace{
		GotConn: func(info httptrace.GotConnInfo) {
			reused = info.Reused
		},
	}
	ctx := httptrace.WithClientTrace(context.Background(), trace)

	if _, err := client.GetVertex(ctx, "1"); err != nil {
		t.Fatalf("GetVertex after CloseIdleConnections failed: %v", err)
	}
	if reused {
		t.Error("Request after CloseIdleConnections should open a fresh connection")
	}
}
