// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2025 Daniel Schmidt

package rexster

import (
	"net/url"
	"time"

	"github.com/google/uuid"
)

// Req wraps a single REST request under construction. Operation methods
// fill in the method, path and body; request modifiers adjust
// per-request behavior.
//
// Example for a request-specific timeout:
//
//	res, err := client.GetVertex(ctx, "1", rexster.Timeout(5*time.Second))
type Req struct {
	// Timeout is a request-specific attempt timeout. Zero means the
	// client default applies.
	Timeout time.Duration

	method string
	path   string
	query  url.Values
	body   string

	// op names the operation for logs and errors, e.g. "get vertex".
	op string

	// idempotent marks requests that are safe to send more than once.
	// Only these participate in automatic retries.
	idempotent bool

	// id correlates all attempts of this request in logs and on the
	// wire (X-Request-Id).
	id string
}

func newReq(op, method, path string, idempotent bool) *Req {
	return &Req{
		method:     method,
		path:       path,
		query:      url.Values{},
		op:         op,
		idempotent: idempotent,
		id:         uuid.NewString(),
	}
}

func (r *Req) apply(mods []func(*Req)) {
	for _, mod := range mods {
		if mod != nil {
			mod(r)
		}
	}
}
