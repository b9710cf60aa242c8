// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2025 Daniel Schmidt

package rexster

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Environment variables read by NewClientFromEnv.
const (
	EnvURL             = "REXSTER_URL"
	EnvGraph           = "REXSTER_GRAPH"
	EnvUsername        = "REXSTER_USERNAME"
	EnvPassword        = "REXSTER_PASSWORD"
	EnvRequestTimeout  = "REXSTER_REQUEST_TIMEOUT"
	EnvConnectTimeout  = "REXSTER_CONNECT_TIMEOUT"
	EnvMaxRetries      = "REXSTER_MAX_RETRIES"
	EnvBackoffMinDelay = "REXSTER_BACKOFF_MIN_DELAY"
)

// LoadEnv loads environment variables from a .env file, searching up the
// directory tree. Variables already set in the environment are not
// overridden. A missing .env file is not an error.
func LoadEnv() error {
	dir, err := os.Getwd()
	if err != nil {
		return err
	}

	for {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			return godotenv.Load(envPath)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break // Reached filesystem root
		}
		dir = parent
	}

	// Not found is fine
	return nil
}

// NewClientFromEnv builds a client from REXSTER_* environment variables,
// loading a .env file first if one is found.
//
// Recognized variables:
//
//	REXSTER_URL                server base URL (required)
//	REXSTER_GRAPH              graph name (required)
//	REXSTER_USERNAME           basic auth username
//	REXSTER_PASSWORD           basic auth password
//	REXSTER_REQUEST_TIMEOUT    per-attempt timeout, Go duration ("10s")
//	REXSTER_CONNECT_TIMEOUT    dial timeout, Go duration
//	REXSTER_MAX_RETRIES        retry attempts for idempotent requests
//	REXSTER_BACKOFF_MIN_DELAY  first backoff delay, Go duration
//
// Options passed to this function are applied after the environment, so
// explicit options win over environment values.
func NewClientFromEnv(opts ...func(*Client)) (*Client, error) {
	if err := LoadEnv(); err != nil {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	envOpts := []func(*Client){}

	if v := os.Getenv(EnvUsername); v != "" {
		envOpts = append(envOpts, Username(v))
	}
	if v := os.Getenv(EnvPassword); v != "" {
		envOpts = append(envOpts, Password(v))
	}
	if v := os.Getenv(EnvRequestTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", EnvRequestTimeout, err)
		}
		envOpts = append(envOpts, RequestTimeout(d))
	}
	if v := os.Getenv(EnvConnectTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", EnvConnectTimeout, err)
		}
		envOpts = append(envOpts, ConnectTimeout(d))
	}
	if v := os.Getenv(EnvMaxRetries); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", EnvMaxRetries, err)
		}
		envOpts = append(envOpts, MaxRetries(n))
	}
	if v := os.Getenv(EnvBackoffMinDelay); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", EnvBackoffMinDelay, err)
		}
		envOpts = append(envOpts, BackoffMinDelay(d))
	}

	// Explicit options override the environment
	envOpts = append(envOpts, opts...)

	return NewClient(os.Getenv(EnvURL), os.Getenv(EnvGraph), envOpts...)
}
