// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2025 Daniel Schmidt

package rexster

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// Default client configuration values
const (
	DefaultMaxRetries         = 3
	DefaultBackoffMinDelay    = 1 * time.Second
	DefaultBackoffMaxDelay    = 60 * time.Second
	DefaultBackoffDelayFactor = 2
	DefaultConnectTimeout     = 30 * time.Second
	DefaultRequestTimeout     = 15 * time.Second
	DefaultPageSize           = 100
	DefaultUserAgent          = "go-rexster"
)

// Client represents a REST client for a single named graph on a Rexster
// server.
//
// The client is stateless after construction and safe for concurrent use.
// Connections are pooled and kept alive by the underlying HTTP transport,
// so no connect/disconnect lifecycle is exposed.
type Client struct {
	httpClient *http.Client

	// BaseURL is the server base URL, e.g. "http://localhost:8182"
	BaseURL string

	// Graph is the name of the graph all operations address
	Graph string

	username string // unexported for security
	password string // unexported for security

	userAgent string

	// Timeout configuration
	ConnectTimeout time.Duration
	RequestTimeout time.Duration

	// Retry configuration
	MaxRetries         int
	BackoffMinDelay    time.Duration
	BackoffMaxDelay    time.Duration
	BackoffDelayFactor float64

	// PageSize is the window size used by GremlinStream pagination
	PageSize int

	// Scripts is the named Gremlin script library used by the traversal
	// helpers. Callers may register their own scripts on it.
	Scripts *Scripts

	paths graphPaths

	// Logging configuration
	logger Logger
}

// NewClient creates a new Rexster client for one graph with the specified
// base URL and options.
//
// No request is sent at construction time; the first operation opens a
// connection, which the transport then keeps alive and reuses.
//
// Example:
//
//	client, err := rexster.NewClient(
//	    "http://localhost:8182",
//	    "social",
//	    rexster.Username("admin"),
//	    rexster.Password("secret"),
//	    rexster.MaxRetries(5),
//	)
//	if err != nil {
//	    log.Fatal(err)  // Configuration error
//	}
//
//	vertex, err := client.GetVertex(ctx, "1")
//
// Returns a configured Client or an error if configuration validation fails.
func NewClient(baseURL, graph string, opts ...func(*Client)) (*Client, error) {
	// Create client with default values
	client := &Client{
		BaseURL:            strings.TrimRight(baseURL, "/"),
		Graph:              graph,
		ConnectTimeout:     DefaultConnectTimeout,
		RequestTimeout:     DefaultRequestTimeout,
		MaxRetries:         DefaultMaxRetries,
		BackoffMinDelay:    DefaultBackoffMinDelay,
		BackoffMaxDelay:    DefaultBackoffMaxDelay,
		BackoffDelayFactor: DefaultBackoffDelayFactor,
		PageSize:           DefaultPageSize,
		userAgent:          DefaultUserAgent,
		Scripts:            NewScripts(),
		logger:             &NoOpLogger{},
	}

	// Apply functional options
	for _, opt := range opts {
		opt(client)
	}

	// Validate configuration
	if err := client.validateConfig(); err != nil {
		return nil, err
	}

	client.paths = graphPaths{graph: client.Graph}

	// Build the pooled HTTP transport unless the caller supplied one
	if client.httpClient == nil {
		client.httpClient = &http.Client{
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   client.ConnectTimeout,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}

	client.logger.Info("rexster client created",
		"url", client.BaseURL,
		"graph", client.Graph)

	return client, nil
}

// HasCredentials returns true if credentials are configured
//
// This method only indicates if credentials exist without exposing
// the actual values.
func (c *Client) HasCredentials() bool {
	return c.username != "" || c.password != ""
}

// CloseIdleConnections closes keep-alive connections sitting idle in the
// underlying HTTP transport. The client remains usable afterwards; new
// requests open fresh connections.
//
// Call this when a client goes quiet for a long period and you want to
// release sockets held for reuse.
func (c *Client) CloseIdleConnections() {
	c.httpClient.CloseIdleConnections()
}

// validateConfig validates client configuration
//
// Validates:
//   - Base URL is a valid http or https URL with a host
//   - Graph name is not empty
//   - Positive timeouts (ConnectTimeout, RequestTimeout > 0)
//   - Positive retry params (MaxRetries >= 0, BackoffMinDelay > 0, BackoffMaxDelay > BackoffMinDelay)
//   - BackoffDelayFactor >= 1.0
//   - PageSize > 0
//
// Returns an error if validation fails.
func (c *Client) validateConfig() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return fmt.Errorf("server URL cannot be empty")
	}

	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid server URL %q: %w", c.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("server URL scheme must be http or https, got: %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("server URL must include a host, got: %q", c.BaseURL)
	}

	if strings.TrimSpace(c.Graph) == "" {
		return fmt.Errorf("graph name cannot be empty")
	}

	// Validate timeouts are positive
	if c.ConnectTimeout <= 0 {
		return fmt.Errorf("connect timeout must be positive, got: %v", c.ConnectTimeout)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got: %v", c.RequestTimeout)
	}

	// Validate retry parameters
	if c.MaxRetries < 0 {
		return fmt.Errorf("max retries must be non-negative, got: %d", c.MaxRetries)
	}
	if c.BackoffMinDelay <= 0 {
		return fmt.Errorf("backoff min delay must be positive, got: %v", c.BackoffMinDelay)
	}
	if c.BackoffMaxDelay <= c.BackoffMinDelay {
		return fmt.Errorf("backoff max delay (%v) must be greater than min delay (%v)",
			c.BackoffMaxDelay, c.BackoffMinDelay)
	}
	if c.BackoffDelayFactor < 1.0 {
		return fmt.Errorf("backoff delay factor must be >= 1.0, got: %f", c.BackoffDelayFactor)
	}

	if c.PageSize <= 0 {
		return fmt.Errorf("page size must be positive, got: %d", c.PageSize)
	}

	// Warn on credentials over an unencrypted connection
	if c.HasCredentials() && u.Scheme == "http" {
		c.logger.Warn("credentials configured on an unencrypted connection",
			"url", c.BaseURL,
			"recommendation", "use https in production")
	}

	return nil
}

// Backoff calculates the backoff delay for retry attempt using exponential backoff with jitter
//
// The formula is: delay = min(minDelay * (factor ^ attempt) + jitter, maxDelay)
// where jitter is a cryptographically secure random value in [0, delay * 0.1].
//
// Security Note: Uses crypto/rand for jitter to prevent timing attack predictability.
// If crypto/rand fails, falls back to timestamp-based jitter to prevent thundering herd.
// Timestamp-based jitter is not cryptographically secure but provides sufficient randomness
// for retry dispersal.
//
// Parameters:
//   - attempt: The retry attempt number (0-indexed)
//
// Returns the duration to wait before retrying.
func (c *Client) Backoff(attempt int) time.Duration {
	// Calculate base delay: minDelay * (factor ^ attempt)
	delay := float64(c.BackoffMinDelay) * math.Pow(c.BackoffDelayFactor, float64(attempt))

	// Check for overflow and cap at max delay
	if math.IsInf(delay, 1) || delay > float64(c.BackoffMaxDelay) {
		delay = float64(c.BackoffMaxDelay)
	}

	baseDelay := delay // Store base delay for logging

	// Add cryptographically secure jitter (0-10% of delay) to prevent thundering herd
	jitterMax := int64(delay * 0.1)
	var jitterVal int64
	if jitterMax > 0 {
		var jitterBytes [8]byte
		if _, err := rand.Read(jitterBytes[:]); err == nil {
			// Convert bytes to int64, masking to prevent overflow
			// Mask off sign bit to ensure positive value within int64 range
			//nolint:gosec // G115: False positive - explicitly masked to prevent overflow
			jitterVal = int64(binary.BigEndian.Uint64(jitterBytes[:]) & 0x7FFFFFFFFFFFFFFF)
			jitterVal = jitterVal % jitterMax
			delay += float64(jitterVal)
		} else {
			// Fallback to timestamp-based jitter if crypto/rand fails
			// This is not cryptographically secure but prevents thundering herd
			timestamp := time.Now().UnixNano()
			jitterVal = (timestamp%jitterMax + jitterMax) % jitterMax // Ensure positive
			delay += float64(jitterVal)

			c.logger.Warn("crypto/rand failed, using timestamp-based jitter",
				"error", err.Error(),
				"attempt", attempt,
				"jitter_ms", time.Duration(jitterVal).Milliseconds())
		}
	}

	finalDelay := time.Duration(delay)

	// Log backoff calculation at Debug level
	c.logger.Debug("Backoff calculated",
		"attempt", attempt,
		"base_delay_ms", time.Duration(baseDelay).Milliseconds(),
		"jitter_ms", time.Duration(jitterVal).Milliseconds(),
		"final_delay_ms", finalDelay.Milliseconds())

	return finalDelay
}

// calculateTotalTimeout calculates the total timeout budget for a retried
// request
//
// The budget covers every attempt plus the backoff delays between them,
// so a request that keeps timing out cannot accumulate unbounded wall
// time.
//
// Formula: perAttempt * (MaxRetries + 1) + sum(Backoff(0), ..., Backoff(MaxRetries - 1))
//
// Example:
//
//	perAttempt = 15s
//	MaxRetries = 3
//	BackoffMinDelay = 1s
//	BackoffDelayFactor = 2.0
//
//	Backoff delays between attempts: 1s, 2s, 4s
//
//	Total budget = 4 x 15s + 1s + 2s + 4s = 67s
//
// Returns the total timeout duration for all retry attempts.
func (c *Client) calculateTotalTimeout(perAttempt time.Duration) time.Duration {
	totalBackoff := time.Duration(0)
	for attempt := 0; attempt < c.MaxRetries; attempt++ {
		totalBackoff += c.Backoff(attempt)
	}
	return perAttempt*time.Duration(c.MaxRetries+1) + totalBackoff
}

// checkContextCancellation checks if context is canceled or deadline exceeded
//
// This is a non-blocking check that immediately returns if the context is canceled
// or deadline has exceeded. Used before retry attempts to avoid wasted work.
//
// Returns context.Canceled if context is canceled, context.DeadlineExceeded if
// deadline exceeded, or nil if context is still valid.
func checkContextCancellation(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err() // context.Canceled or context.DeadlineExceeded
	default:
		return nil
	}
}

// createAttemptContext creates a new context for a single attempt with timeout
//
// Timeout priority model:
//  1. Request-specific timeout (req.Timeout > 0) - highest priority
//  2. Client default timeout (c.RequestTimeout) - fallback
//
// A deadline already present on ctx (caller deadline or the total retry
// budget) always caps the attempt in addition: the effective deadline is
// the earlier of the two.
//
// CRITICAL: Caller MUST call the returned cancel function after the attempt
// completes to prevent goroutine leaks.
func (c *Client) createAttemptContext(ctx context.Context, req *Req) (context.Context, context.CancelFunc) {
	if req.Timeout > 0 {
		c.logger.Debug("applying request-specific timeout",
			"timeout", req.Timeout.String(),
			"source", "request",
			"op", req.op)
		return context.WithTimeout(ctx, req.Timeout)
	}

	c.logger.Debug("applying client default timeout",
		"timeout", c.RequestTimeout.String(),
		"source", "client",
		"op", req.op)
	return context.WithTimeout(ctx, c.RequestTimeout)
}

// do executes a request with per-attempt timeouts and, for idempotent
// requests, automatic retries with exponential backoff.
//
// A request moves from built to sent exactly once for non-idempotent
// requests. Idempotent requests that fail with a transient error (timeout,
// connection failure, 5xx) back off and are sent again until they succeed,
// fail terminally, or exhaust the retry budget.
func (c *Client) do(ctx context.Context, req *Req) (Res, error) {
	// Check context cancellation before any work
	if err := checkContextCancellation(ctx); err != nil {
		return Res{}, fmt.Errorf("%s: %w", req.op, err)
	}

	maxAttempts := 1
	if req.idempotent {
		maxAttempts = c.MaxRetries + 1
	}

	perAttempt := c.RequestTimeout
	if req.Timeout > 0 {
		perAttempt = req.Timeout
	}

	// Apply parent context timeout for the total retry budget
	if maxAttempts > 1 {
		totalTimeout := c.calculateTotalTimeout(perAttempt)
		c.logger.Debug("applying total timeout budget",
			"totalTimeout", totalTimeout.String(),
			"requestTimeout", perAttempt.String(),
			"maxRetries", c.MaxRetries,
			"op", req.op)

		var parentCancel context.CancelFunc
		ctx, parentCancel = context.WithTimeout(ctx, totalTimeout)
		defer parentCancel()
	}

	c.logger.Debug("rexster request",
		"op", req.op,
		"method", req.method,
		"path", req.path,
		"idempotent", req.idempotent,
		"request_id", req.id)

	var lastRes Res
	var lastErr *Error

	for attempt := 0; attempt < maxAttempts; attempt++ {
		// Check parent context cancellation before attempt
		if err := checkContextCancellation(ctx); err != nil {
			c.logger.Debug("operation canceled",
				"op", req.op,
				"attempt", attempt,
				"error", err.Error())
			return Res{}, fmt.Errorf("%s: %w", req.op, err)
		}

		// Create attempt-specific context with timeout
		attemptCtx, attemptCancel := c.createAttemptContext(ctx, req)

		res, attemptErr := c.send(attemptCtx, req)

		// Clean up attempt context immediately to prevent goroutine leak
		attemptCancel()
		if attemptErr == nil {
			if attempt > 0 {
				c.logger.Info("request succeeded after retry",
					"op", req.op,
					"attempts", attempt+1,
					"request_id", req.id)
			}
			return res, nil
		}

		attemptErr.Op = req.op
		attemptErr.Attempts = attempt + 1
		lastRes = res
		lastErr = attemptErr

		// Non-transient error, non-idempotent request, or no retries remaining
		if !req.idempotent || !attemptErr.Transient() || attempt == maxAttempts-1 {
			break
		}

		backoff := c.Backoff(attempt)
		c.logger.Warn("transient error, retrying",
			"op", req.op,
			"attempt", attempt+1,
			"max_retries", c.MaxRetries,
			"backoff", backoff,
			"request_id", req.id,
			"error", attemptErr.Error())

		// Sleep with context cancellation awareness
		select {
		case <-time.After(backoff):
			// Backoff complete, continue to next attempt
		case <-ctx.Done():
			c.logger.Debug("operation canceled during backoff",
				"op", req.op,
				"attempt", attempt+1)
			return Res{}, fmt.Errorf("%s: context canceled during backoff: %w", req.op, ctx.Err())
		}
	}

	// The whole retry budget was spent on transient failures
	if req.idempotent && maxAttempts > 1 && lastErr.Transient() && lastErr.Attempts == maxAttempts {
		lastErr = &Error{
			Code:       CodeRetriesExhausted,
			Op:         req.op,
			StatusCode: lastErr.StatusCode,
			Message:    fmt.Sprintf("retry budget exhausted after %d attempts", lastErr.Attempts),
			Attempts:   lastErr.Attempts,
			err:        lastErr,
		}
	}

	c.logger.Error("rexster request failed",
		"op", req.op,
		"code", string(lastErr.Code),
		"status", lastErr.StatusCode,
		"attempts", lastErr.Attempts,
		"request_id", req.id,
		"error", lastErr.Error())

	return lastRes, lastErr
}

// send performs a single HTTP exchange. Network failures are classified
// by whether the request may have reached the server; HTTP error statuses
// are mapped to their error codes.
func (c *Client) send(ctx context.Context, req *Req) (Res, *Error) {
	u := c.BaseURL + req.path
	if len(req.query) > 0 {
		u += "?" + req.query.Encode()
	}

	var bodyReader io.Reader
	if req.body != "" {
		bodyReader = strings.NewReader(req.body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, u, bodyReader)
	if err != nil {
		return Res{}, &Error{Code: CodeBadRequest, Message: fmt.Sprintf("failed to create request: %s", err)}
	}

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.Header.Set("X-Request-Id", req.id)
	if req.body != "" {
		httpReq.Header.Set("Content-Type", "application/json; charset=utf-8")
	}
	if c.HasCredentials() {
		httpReq.SetBasicAuth(c.username, c.password)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Res{}, c.classifyNetworkError(req, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		// The response started but could not be read fully
		return Res{}, c.classifyNetworkError(req, err)
	}

	res := Res{StatusCode: resp.StatusCode, body: string(body)}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		c.logger.Debug("rexster response",
			"op", req.op,
			"status", resp.StatusCode,
			"bytes", len(body),
			"request_id", req.id)
		return res, nil
	}

	return res, statusError(resp.StatusCode, res.body)
}

// classifyNetworkError maps a transport failure onto the error taxonomy.
//
// The critical distinction is whether the request may have reached the
// server. A dial failure provably happened before anything was sent, so
// it is a connection error for every request. After the request is on the
// wire, a lost response means an idempotent request can simply be retried,
// while a non-idempotent one is indeterminate: the server may or may not
// have executed it, and sending it again could duplicate the effect.
func (c *Client) classifyNetworkError(req *Req, err error) *Error {
	timeout := errors.Is(err, context.DeadlineExceeded)
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		timeout = true
	}

	sent := true
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		sent = false
	}

	switch {
	case !sent:
		return &Error{Code: CodeConnection, Message: err.Error(), err: err}
	case !req.idempotent:
		return &Error{Code: CodeIndeterminate, Message: err.Error(), err: err}
	case timeout:
		return &Error{Code: CodeTimeout, Message: err.Error(), err: err}
	default:
		return &Error{Code: CodeConnection, Message: err.Error(), err: err}
	}
}

// statusError maps an HTTP error status onto the error taxonomy,
// preserving the server-reported message verbatim when one is present.
func statusError(status int, body string) *Error {
	msg := serverMessage(body)
	if msg == "" {
		msg = fmt.Sprintf("HTTP %d %s", status, http.StatusText(status))
	}

	var code ErrorCode
	switch {
	case status == http.StatusNotFound:
		code = CodeNotFound
	case isTransientStatus(status):
		code = CodeServerError
	default:
		code = CodeBadRequest
	}

	return &Error{Code: code, StatusCode: status, Message: msg}
}

// serverMessage extracts the error message of a server error body.
// Rexster reports failures as {"message": "..."} or {"error": "..."}.
func serverMessage(body string) string {
	if m := gjson.Get(body, "message"); m.Type == gjson.String {
		return m.Str
	}
	if m := gjson.Get(body, "error"); m.Type == gjson.String {
		return m.Str
	}
	return ""
}
