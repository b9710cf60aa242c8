// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2025 Daniel Schmidt

package rexster

import (
	"context"
	"errors"
	"net/http"

	"github.com/tidwall/gjson"
)

// Index describes a named element index on the server.
type Index struct {
	// Name is the index name
	Name string
	// Class is the element class the index covers ("vertex" or "edge")
	Class string
	// Type is the index type as reported by the server, e.g. "manual"
	Type string
}

// Lookup returns the elements the named index holds under the given
// key/value pair.
//
// An existing index with no matches returns an empty slice and no error.
// Only a missing index is an error: ErrIndexNotFound. The two cases are
// never conflated.
//
// Example:
//
//	elems, err := client.Lookup(ctx, "people", "name", "marko")
//	if errors.Is(err, rexster.ErrIndexNotFound) {
//	    // the index itself does not exist
//	}
//	for _, elem := range elems {
//	    fmt.Println(elem.ID)
//	}
func (c *Client) Lookup(ctx context.Context, index, key, value string, mods ...func(*Req)) ([]Element, error) {
	const op = "index lookup"

	if index == "" {
		return nil, &Error{Code: CodeBadRequest, Op: op, Message: "index name cannot be empty"}
	}
	if key == "" {
		return nil, &Error{Code: CodeBadRequest, Op: op, Message: "lookup key cannot be empty"}
	}

	req := newReq(op, http.MethodGet, c.paths.index(index), true)
	req.query.Set("key", key)
	req.query.Set("value", value)
	req.apply(mods)

	res, err := c.do(ctx, req)
	if err != nil {
		return nil, indexError(err)
	}

	elems, err := res.Elements()
	if err != nil {
		return nil, stampOp(err, op)
	}
	return elems, nil
}

// Indices lists the indices of the graph.
func (c *Client) Indices(ctx context.Context, mods ...func(*Req)) ([]Index, error) {
	const op = "list indices"

	req := newReq(op, http.MethodGet, c.paths.indices(), true)
	req.apply(mods)

	res, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}

	results := res.Results()
	if !results.IsArray() {
		return nil, stampOp(malformed("index list is not a list: %s", snippet(res.JSON())), op)
	}

	indices := []Index{}
	results.ForEach(func(_, item gjson.Result) bool {
		indices = append(indices, decodeIndex(item))
		return true
	})
	return indices, nil
}

// CreateIndex creates a manual index over the given element class.
//
// Index creation is not idempotent and is sent exactly once.
func (c *Client) CreateIndex(ctx context.Context, name string, class ElementType, mods ...func(*Req)) (Index, error) {
	const op = "create index"

	if name == "" {
		return Index{}, &Error{Code: CodeBadRequest, Op: op, Message: "index name cannot be empty"}
	}
	if class != TypeVertex && class != TypeEdge {
		return Index{}, &Error{Code: CodeBadRequest, Op: op, Message: "index class must be vertex or edge"}
	}

	req := newReq(op, http.MethodPost, c.paths.index(name), false)
	req.query.Set("class", string(class))
	req.apply(mods)

	res, err := c.do(ctx, req)
	if err != nil {
		return Index{}, err
	}

	results := res.Results()
	if !results.IsObject() {
		return Index{}, stampOp(malformed("index payload is not an object: %s", snippet(res.JSON())), op)
	}
	return decodeIndex(results), nil
}

// DeleteIndex drops the named index. The elements it referenced are not
// touched.
//
// Dropping by name is idempotent, so transient failures are retried.
// Returns ErrIndexNotFound if the index does not exist.
func (c *Client) DeleteIndex(ctx context.Context, name string, mods ...func(*Req)) error {
	const op = "delete index"

	if name == "" {
		return &Error{Code: CodeBadRequest, Op: op, Message: "index name cannot be empty"}
	}

	req := newReq(op, http.MethodDelete, c.paths.index(name), true)
	req.apply(mods)

	_, err := c.do(ctx, req)
	return indexError(err)
}

// AddToIndex files an element into the named index under a key/value
// pair.
//
// Filing the same element under the same pair twice leaves the same
// state, so the request is idempotent and retried on transient failure.
func (c *Client) AddToIndex(ctx context.Context, index, key, value, id string, mods ...func(*Req)) error {
	const op = "index add"

	if index == "" {
		return &Error{Code: CodeBadRequest, Op: op, Message: "index name cannot be empty"}
	}
	if key == "" {
		return &Error{Code: CodeBadRequest, Op: op, Message: "index key cannot be empty"}
	}
	if id == "" {
		return &Error{Code: CodeBadRequest, Op: op, Message: "element id cannot be empty"}
	}

	req := newReq(op, http.MethodPut, c.paths.index(index), true)
	req.query.Set("key", key)
	req.query.Set("value", value)
	req.query.Set("id", id)
	req.apply(mods)

	_, err := c.do(ctx, req)
	return indexError(err)
}

// RemoveFromIndex removes an element's entry under a key/value pair from
// the named index.
//
// Removal is idempotent, so transient failures are retried.
func (c *Client) RemoveFromIndex(ctx context.Context, index, key, value, id string, mods ...func(*Req)) error {
	const op = "index remove"

	if index == "" {
		return &Error{Code: CodeBadRequest, Op: op, Message: "index name cannot be empty"}
	}
	if key == "" {
		return &Error{Code: CodeBadRequest, Op: op, Message: "index key cannot be empty"}
	}
	if id == "" {
		return &Error{Code: CodeBadRequest, Op: op, Message: "element id cannot be empty"}
	}

	req := newReq(op, http.MethodDelete, c.paths.index(index), true)
	req.query.Set("key", key)
	req.query.Set("value", value)
	req.query.Set("id", id)
	req.apply(mods)

	_, err := c.do(ctx, req)
	return indexError(err)
}

func decodeIndex(res gjson.Result) Index {
	return Index{
		Name:  res.Get("name").String(),
		Class: res.Get("class").String(),
		Type:  res.Get("type").String(),
	}
}

// indexError re-kinds a 404 on an index path as ErrIndexNotFound: the
// name addressed no index. Everything else passes through, including
// successful lookups with zero matches, which are not errors at all.
func indexError(err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) && e.Code == CodeNotFound {
		return &Error{
			Code:       CodeIndexNotFound,
			Op:         e.Op,
			StatusCode: e.StatusCode,
			Message:    e.Message,
			Attempts:   e.Attempts,
			err:        e,
		}
	}
	return err
}
