// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2025 Daniel Schmidt

package rexster

import (
	"context"
	"net/http"
)

// CreateEdge creates a labeled edge from the vertex outV to the vertex
// inV and returns it with its server-assigned id.
//
// Like vertex creation, this is not idempotent and is sent exactly once.
// A lost response after the request may have reached the server returns
// ErrIndeterminate.
//
// The label is required; endpoints and label travel as query parameters,
// properties as the request body.
//
// Example:
//
//	edge, err := client.CreateEdge(ctx, "1", "knows", "2", map[string]any{
//	    "weight": 0.5,
//	})
func (c *Client) CreateEdge(ctx context.Context, outV, label, inV string, props map[string]any, mods ...func(*Req)) (Element, error) {
	const op = "create edge"

	if outV == "" || inV == "" {
		return Element{}, &Error{Code: CodeBadRequest, Op: op, Message: "edge endpoints cannot be empty"}
	}
	if label == "" {
		return Element{}, &Error{Code: CodeBadRequest, Op: op, Message: "edge label cannot be empty"}
	}

	body, err := encodeProperties(props)
	if err != nil {
		return Element{}, stampOp(err, op)
	}

	req := newReq(op, http.MethodPost, c.paths.edges(), false)
	req.query.Set("_outV", outV)
	req.query.Set("_label", label)
	req.query.Set("_inV", inV)
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

// GetEdge retrieves an edge by id.
//
// Returns ErrNotFound if no edge with the id exists. Transient failures
// are retried automatically.
func (c *Client) GetEdge(ctx context.Context, id string, mods ...func(*Req)) (Element, error) {
	const op = "get edge"

	if id == "" {
		return Element{}, &Error{Code: CodeBadRequest, Op: op, Message: "edge id cannot be empty"}
	}

	req := newReq(op, http.MethodGet, c.paths.edge(id), true)
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

// UpdateEdge sets the given properties on an existing edge and returns
// the updated edge. The endpoints and label of an edge cannot change.
//
// The update is idempotent, so transient failures are retried
// automatically.
func (c *Client) UpdateEdge(ctx context.Context, id string, props map[string]any, mods ...func(*Req)) (Element, error) {
	const op = "update edge"

	if id == "" {
		return Element{}, &Error{Code: CodeBadRequest, Op: op, Message: "edge id cannot be empty"}
	}

	body, err := encodeProperties(props)
	if err != nil {
		return Element{}, stampOp(err, op)
	}

	req := newReq(op, http.MethodPut, c.paths.edge(id), true)
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

// DeleteEdge deletes an edge by id.
//
// Deletion by id is idempotent, so transient failures are retried
// automatically. Returns ErrNotFound if no edge with the id exists.
func (c *Client) DeleteEdge(ctx context.Context, id string, mods ...func(*Req)) error {
	const op = "delete edge"

	if id == "" {
		return &Error{Code: CodeBadRequest, Op: op, Message: "edge id cannot be empty"}
	}

	req := newReq(op, http.MethodDelete, c.paths.edge(id), true)
	req.apply(mods)

	_, err := c.do(ctx, req)
	return err
}

// Edges lists all edges of the graph.
//
// This fetches the full list in one response; use GremlinStream for
// graphs too large to hold in memory.
func (c *Client) Edges(ctx context.Context, mods ...func(*Req)) ([]Element, error) {
	const op = "list edges"

	req := newReq(op, http.MethodGet, c.paths.edges(), true)
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
