// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2025 Daniel Schmidt

package rexster

import (
	"context"
	"net/http"
)

// CreateVertex creates a new vertex with the given properties and returns
// it with its server-assigned id.
//
// Creation is not idempotent: the request is sent exactly once, never
// retried. If the response is lost after the request may have reached the
// server, the returned error is ErrIndeterminate and the caller decides
// whether to query for the vertex or create it again.
//
// Property values may be strings, bools, integer and float types, []any,
// or map[string]any. Nil values are omitted. Unsupported types are
// rejected with ErrUnsupportedPropertyType before anything is sent.
//
// Example:
//
//	vertex, err := client.CreateVertex(ctx, map[string]any{
//	    "name": "marko",
//	    "age":  29,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(vertex.ID)
func (c *Client) CreateVertex(ctx context.Context, props map[string]any, mods ...func(*Req)) (Element, error) {
	const op = "create vertex"

	body, err := encodeProperties(props)
	if err != nil {
		return Element{}, stampOp(err, op)
	}

	req := newReq(op, http.MethodPost, c.paths.vertices(), false)
	req.body = body
	req.apply(mods)

	res, err := c.do(ctx, req)
	if err != nil {
		return Element{}, err
	}

	elem, err := res.Element()
	if err != nil {
		return Element{}, stampOp(err, op)
	}
	return elem, nil
}

// GetVertex retrieves a vertex by id.
//
// Returns ErrNotFound if no vertex with the id exists. Transient failures
// are retried automatically.
func (c *Client) GetVertex(ctx context.Context, id string, mods ...func(*Req)) (Element, error) {
	const op = "get vertex"

	if id == "" {
		return Element{}, &Error{Code: CodeBadRequest, Op: op, Message: "vertex id cannot be empty"}
	}

	req := newReq(op, http.MethodGet, c.paths.vertex(id), true)
	req.apply(mods)

	res, err := c.do(ctx, req)
	if err != nil {
		return Element{}, err
	}

	elem, err := res.Element()
	if err != nil {
		return Element{}, stampOp(err, op)
	}
	return elem, nil
}

// UpdateVertex sets the given properties on an existing vertex and
// returns the updated vertex.
//
// The update is idempotent (applying it twice leaves the same state), so
// transient failures are retried automatically.
func (c *Client) UpdateVertex(ctx context.Context, id string, props map[string]any, mods ...func(*Req)) (Element, error) {
	const op = "update vertex"

	if id == "" {
		return Element{}, &Error{Code: CodeBadRequest, Op: op, Message: "vertex id cannot be empty"}
	}

	body, err := encodeProperties(props)
	if err != nil {
		return Element{}, stampOp(err, op)
	}

	req := newReq(op, http.MethodPut, c.paths.vertex(id), true)
	req.body = body
	req.apply(mods)

	res, err := c.do(ctx, req)
	if err != nil {
		return Element{}, err
	}

	elem, err := res.Element()
	if err != nil {
		return Element{}, stampOp(err, op)
	}
	return elem, nil
}

// DeleteVertex deletes a vertex by id. The server removes its incident
// edges as well.
//
// Deletion by id is idempotent, so transient failures are retried
// automatically. Returns ErrNotFound if no vertex with the id exists.
func (c *Client) DeleteVertex(ctx context.Context, id string, mods ...func(*Req)) error {
	const op = "delete vertex"

	if id == "" {
		return &Error{Code: CodeBadRequest, Op: op, Message: "vertex id cannot be empty"}
	}

	req := newReq(op, http.MethodDelete, c.paths.vertex(id), true)
	req.apply(mods)

	_, err := c.do(ctx, req)
	return err
}

// Vertices lists all vertices of the graph.
//
// This fetches the full list in one response; use GremlinStream for
// graphs too large to hold in memory.
func (c *Client) Vertices(ctx context.Context, mods ...func(*Req)) ([]Element, error) {
	const op = "list vertices"

	req := newReq(op, http.MethodGet, c.paths.vertices(), true)
	req.apply(mods)

	res, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}

	elems, err := res.Elements()
	if err != nil {
		return nil, stampOp(err, op)
	}
	return elems, nil
}
