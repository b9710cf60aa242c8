// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2025 Daniel Schmidt

package rexster

import (
	"net/http"
	"time"
)

// Client configuration options using the functional options pattern

// Username sets the username for HTTP basic authentication
func Username(username string) func(*Client) {
	return func(c *Client) {
		c.username = username
	}
}

// Password sets the password for HTTP basic authentication
func Password(password string) func(*Client) {
	return func(c *Client) {
		c.password = password
	}
}

// UserAgent sets the User-Agent header sent with every request
// (default: "go-rexster")
func UserAgent(userAgent string) func(*Client) {
	return func(c *Client) {
		if userAgent != "" {
			c.userAgent = userAgent
		}
	}
}

// HTTPClient replaces the client's HTTP transport
//
// By default the client builds a pooled transport with the configured
// connect timeout and keep-alive connection reuse. Supply your own
// *http.Client to control proxies, TLS configuration, or connection
// pooling. When set, the ConnectTimeout option has no effect.
//
// Example:
//
//	hc := &http.Client{Transport: customTransport}
//	client, _ := rexster.NewClient("https://db.example.com:8182", "social",
//	    rexster.HTTPClient(hc))
func HTTPClient(httpClient *http.Client) func(*Client) {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// ConnectTimeout sets the connection dial timeout (default: 30s)
func ConnectTimeout(duration time.Duration) func(*Client) {
	return func(c *Client) {
		c.ConnectTimeout = duration
	}
}

// RequestTimeout sets the per-attempt request timeout (default: 15s)
//
// Each attempt of a request is subject to this timeout individually; the
// retry budget for idempotent requests spans all attempts plus backoff.
func RequestTimeout(duration time.Duration) func(*Client) {
	return func(c *Client) {
		c.RequestTimeout = duration
	}
}

// MaxRetries sets the maximum number of retry attempts for transient
// errors on idempotent requests (default: 3)
//
// Non-idempotent requests (vertex/edge creation, script execution) are
// never retried regardless of this setting.
func MaxRetries(retries int) func(*Client) {
	return func(c *Client) {
		c.MaxRetries = retries
	}
}

// BackoffMinDelay sets the minimum backoff delay (default: 1s)
func BackoffMinDelay(duration time.Duration) func(*Client) {
	return func(c *Client) {
		c.BackoffMinDelay = duration
	}
}

// BackoffMaxDelay sets the maximum backoff delay (default: 60s)
func BackoffMaxDelay(duration time.Duration) func(*Client) {
	return func(c *Client) {
		c.BackoffMaxDelay = duration
	}
}

// BackoffDelayFactor sets the backoff multiplication factor (default: 2.0)
func BackoffDelayFactor(factor float64) func(*Client) {
	return func(c *Client) {
		c.BackoffDelayFactor = factor
	}
}

// PageSize sets the window size used by GremlinStream pagination
// (default: 100)
func PageSize(size int) func(*Client) {
	return func(c *Client) {
		c.PageSize = size
	}
}

// WithLogger configures a custom logger for the client
//
// By default, the client uses NoOpLogger which discards all log messages.
// Use this option to enable logging with DefaultLogger or a custom logger.
//
// Example (DefaultLogger):
//
//	logger := rexster.NewDefaultLogger(rexster.LogLevelInfo)
//	client, _ := rexster.NewClient("http://localhost:8182", "social",
//	    rexster.WithLogger(logger))
//
// Example (Custom Logger):
//
//	type SlogAdapter struct {
//	    logger *slog.Logger
//	}
//
//	func (s *SlogAdapter) Debug(msg string, keysAndValues ...any) {
//	    s.logger.Debug(msg, keysAndValues...)
//	}
//	// ... implement Info, Warn, Error
//
//	client, _ := rexster.NewClient("http://localhost:8182", "social",
//	    rexster.WithLogger(&SlogAdapter{logger: slog.Default()}))
func WithLogger(logger Logger) func(*Client) {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Request modifiers for individual operations

// Timeout returns a request modifier that sets a custom per-attempt
// timeout for the operation.
//
// This timeout takes precedence over the client's RequestTimeout. A
// deadline already present on the context still caps the attempt.
//
// Example:
//
//	// Lookup with 30 second timeout
//	elems, err := client.Lookup(ctx, "people", "name", "marko",
//	    rexster.Timeout(30*time.Second))
//
//	// Long-running script
//	res, err := client.Gremlin(ctx, script, bindings,
//	    rexster.Timeout(2*time.Minute))
func Timeout(duration time.Duration) func(*Req) {
	return func(req *Req) {
		req.Timeout = duration
	}
}
