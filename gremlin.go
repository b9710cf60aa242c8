// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2025 Daniel Schmidt

package rexster

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/tidwall/gjson"
)

// Gremlin executes a Gremlin script on the server and returns the raw
// response.
//
// Bindings are passed to the server as a separate params field of the
// request and are never spliced into the script text, so binding values
// cannot change the meaning of the script. Refer to bindings by name:
//
//	res, err := client.Gremlin(ctx, "g.v(x).out()", map[string]any{"x": 1})
//
// Script execution is not idempotent (a script may mutate the graph), so
// the request is sent exactly once and never retried. Server-side script
// failures return ErrScriptExecution with the server's message preserved.
//
// Use GremlinStream to consume large result sets lazily.
func (c *Client) Gremlin(ctx context.Context, script string, bindings map[string]any, mods ...func(*Req)) (Res, error) {
	req, err := c.gremlinReq(script, bindings)
	if err != nil {
		return Res{}, err
	}
	req.apply(mods)

	res, err := c.do(ctx, req)
	if err != nil {
		return res, scriptError(err)
	}
	return res, nil
}

// gremlinReq builds the script execution request shared by Gremlin and
// GremlinStream.
func (c *Client) gremlinReq(script string, bindings map[string]any) (*Req, error) {
	const op = "gremlin"

	if strings.TrimSpace(script) == "" {
		return nil, &Error{Code: CodeBadRequest, Op: op, Message: "script cannot be empty"}
	}

	body := Body{}.Set("script", script)
	if len(bindings) > 0 {
		params, err := encodeBindings(bindings)
		if err != nil {
			return nil, stampOp(err, op)
		}
		body = body.SetRaw("params", params)
	}

	payload, err := body.String()
	if err != nil {
		return nil, &Error{Code: CodeBadRequest, Op: op, Message: err.Error()}
	}

	req := newReq(op, http.MethodPost, c.paths.gremlin(), false)
	req.body = payload
	return req, nil
}

// scriptError re-kinds server-reported failures of a script request as
// script errors. The server answers a failing script with a 5xx or 400
// status and a message describing the failure; that message is what the
// caller needs, preserved verbatim. Transport failures (timeout,
// connection, indeterminate) keep their own codes.
func scriptError(err error) error {
	var e *Error
	if !errors.As(err, &e) {
		return err
	}
	if e.StatusCode == 0 || (e.Code != CodeServerError && e.Code != CodeBadRequest) {
		return err
	}
	return &Error{
		Code:       CodeScriptExecution,
		Op:         e.Op,
		StatusCode: e.StatusCode,
		Message:    e.Message,
		Attempts:   e.Attempts,
		err:        e,
	}
}

// GremlinStream prepares a lazy stream over a script's results.
//
// Nothing is sent until the stream is iterated; pages of PageSize results
// are then fetched on demand using the server's result paging. The stream
// is forward-only and single-use: items are consumed in server order and
// a consumed stream cannot be restarted. Create a new stream to run the
// script again.
//
// Example:
//
//	stream := client.GremlinStream("g.v(x).out()", map[string]any{"x": 1})
//	for elem, err := range stream.Elements(ctx) {
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(elem.ID)
//	}
func (c *Client) GremlinStream(script string, bindings map[string]any, mods ...func(*Req)) *ResultStream {
	return &ResultStream{
		c:        c,
		script:   script,
		bindings: bindings,
		mods:     mods,
		pageSize: c.PageSize,
	}
}

// ResultStream is a forward-only sequence of script results, fetched
// page by page as it is consumed.
//
// A ResultStream is not safe for concurrent use.
type ResultStream struct {
	c        *Client
	script   string
	bindings map[string]any
	mods     []func(*Req)
	pageSize int

	offset int
	buf    []gjson.Result
	done   bool
	err    error
}

// Results iterates the stream's items in server order.
//
// The first iteration sends the script; further pages are fetched as the
// previous ones are consumed. On failure the error is yielded once and
// the stream terminates.
func (s *ResultStream) Results(ctx context.Context) iter.Seq2[Result, error] {
	return func(yield func(Result, error) bool) {
		for {
			item, ok, err := s.next(ctx)
			if err != nil {
				yield(Result{}, err)
				return
			}
			if !ok {
				return
			}
			if !yield(item, nil) {
				return
			}
		}
	}
}

// Elements iterates the stream's items decoded as graph elements. Items
// that are not well-formed elements terminate the stream with
// ErrMalformedResponse.
func (s *ResultStream) Elements(ctx context.Context) iter.Seq2[Element, error] {
	return func(yield func(Element, error) bool) {
		for item, err := range s.Results(ctx) {
			if err != nil {
				yield(Element{}, err)
				return
			}
			elem, err := item.Element()
			if err != nil {
				yield(Element{}, stampOp(err, "gremlin"))
				return
			}
			if !yield(elem, nil) {
				return
			}
		}
	}
}

// next returns the next buffered item, fetching the next page when the
// buffer is empty. Errors are sticky: a failed stream stays failed.
func (s *ResultStream) next(ctx context.Context) (Result, bool, error) {
	if s.err != nil {
		return Result{}, false, s.err
	}
	if len(s.buf) == 0 && !s.done {
		if err := s.fetch(ctx); err != nil {
			s.err = err
			s.done = true
			return Result{}, false, err
		}
	}
	if len(s.buf) == 0 {
		return Result{}, false, nil
	}
	item := s.buf[0]
	s.buf = s.buf[1:]
	return Result{raw: item}, true, nil
}

// fetch retrieves the next result window. A window shorter than the page
// size means the results are exhausted.
func (s *ResultStream) fetch(ctx context.Context) error {
	req, err := s.c.gremlinReq(s.script, s.bindings)
	if err != nil {
		return err
	}
	req.apply(s.mods)
	req.query.Set("rexster.offset.start", strconv.Itoa(s.offset))
	req.query.Set("rexster.offset.end", strconv.Itoa(s.offset+s.pageSize))

	res, err := s.c.do(ctx, req)
	if err != nil {
		return scriptError(err)
	}

	parsed := gjson.Parse(res.JSON())
	var results gjson.Result
	switch {
	case parsed.IsArray():
		results = parsed
	case parsed.IsObject():
		results = parsed.Get("results")
		if !results.Exists() {
			return stampOp(malformed("script response has no results field: %s", snippet(res.JSON())), "gremlin")
		}
	default:
		return stampOp(malformed("script response is neither a list nor an object: %s", snippet(res.JSON())), "gremlin")
	}

	switch {
	case results.Type == gjson.Null:
		s.done = true
	case results.IsArray():
		items := results.Array()
		s.buf = items
		s.offset += len(items)
		if len(items) < s.pageSize {
			s.done = true
		}
	default:
		// a single scalar or object result cannot paginate
		s.buf = []gjson.Result{results}
		s.done = true
	}
	return nil
}

// Scripts is a registry of named Gremlin scripts. The client seeds it
// with the traversal scripts used by OutV, InE and the other traversal
// helpers; callers may register their own.
//
// Scripts refer to their inputs as bindings (here _id and label), never
// by splicing values into the text.
//
// Example:
//
//	client.Scripts.Register("friends_of_friends",
//	    "g.v(_id).out('knows').out('knows').dedup()")
//	script, _ := client.Scripts.Get("friends_of_friends")
//	res, err := client.Gremlin(ctx, script, map[string]any{"_id": 1})
type Scripts struct {
	mu      sync.RWMutex
	scripts map[string]string
}

// defaultScripts are the traversal scripts seeded into every client.
// The label binding is optional: scripts branch on null rather than
// relying on string interpolation. The in step is spelled inE.outV
// because in is a reserved word in Groovy.
var defaultScripts = map[string]string{
	"outE":  "label == null ? g.v(_id).outE() : g.v(_id).outE(label)",
	"inE":   "label == null ? g.v(_id).inE() : g.v(_id).inE(label)",
	"bothE": "label == null ? g.v(_id).bothE() : g.v(_id).bothE(label)",
	"outV":  "label == null ? g.v(_id).out() : g.v(_id).out(label)",
	"inV":   "label == null ? g.v(_id).inE.outV : g.v(_id).inE(label).outV",
	"bothV": "label == null ? g.v(_id).both() : g.v(_id).both(label)",
}

// NewScripts returns a script registry seeded with the default traversal
// scripts.
func NewScripts() *Scripts {
	s := &Scripts{scripts: make(map[string]string, len(defaultScripts))}
	for name, script := range defaultScripts {
		s.scripts[name] = script
	}
	return s
}

// Get returns the script registered under name.
func (s *Scripts) Get(name string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	script, ok := s.scripts[name]
	return script, ok
}

// Register adds or replaces a named script.
func (s *Scripts) Register(name, script string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scripts[name] = script
}

// Names returns the registered script names, sorted.
func (s *Scripts) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.scripts))
	for name := range s.scripts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Traversal helpers. Each runs the corresponding script from the
// client's script library as a lazy stream. The label narrows the
// traversal to edges with that label; an empty label traverses all.

// OutV streams the out-adjacent vertices of a vertex.
func (c *Client) OutV(id, label string, mods ...func(*Req)) *ResultStream {
	return c.traversal("outV", id, label, mods)
}

// InV streams the in-adjacent vertices of a vertex.
func (c *Client) InV(id, label string, mods ...func(*Req)) *ResultStream {
	return c.traversal("inV", id, label, mods)
}

// BothV streams the adjacent vertices of a vertex in both directions.
func (c *Client) BothV(id, label string, mods ...func(*Req)) *ResultStream {
	return c.traversal("bothV", id, label, mods)
}

// OutE streams the outgoing edges of a vertex.
func (c *Client) OutE(id, label string, mods ...func(*Req)) *ResultStream {
	return c.traversal("outE", id, label, mods)
}

// InE streams the incoming edges of a vertex.
func (c *Client) InE(id, label string, mods ...func(*Req)) *ResultStream {
	return c.traversal("inE", id, label, mods)
}

// BothE streams the incident edges of a vertex in both directions.
func (c *Client) BothE(id, label string, mods ...func(*Req)) *ResultStream {
	return c.traversal("bothE", id, label, mods)
}

func (c *Client) traversal(name, id, label string, mods []func(*Req)) *ResultStream {
	if id == "" {
		return failedStream(&Error{Code: CodeBadRequest, Op: "gremlin", Message: "vertex id cannot be empty"})
	}
	script, ok := c.Scripts.Get(name)
	if !ok {
		return failedStream(&Error{Code: CodeBadRequest, Op: "gremlin", Message: fmt.Sprintf("script %q is not registered", name)})
	}

	bindings := map[string]any{"_id": idBinding(id)}
	if label == "" {
		bindings["label"] = nil
	} else {
		bindings["label"] = label
	}
	return c.GremlinStream(script, bindings, mods...)
}

// failedStream returns a stream that yields only err. The failure
// surfaces on iteration like any other stream error.
func failedStream(err error) *ResultStream {
	return &ResultStream{err: err, done: true}
}

// idBinding converts an element id into its script binding. Numeric ids
// bind as numbers so that g.v(_id) matches how the server issued them.
func idBinding(id string) any {
	if i, err := strconv.ParseInt(id, 10, 64); err == nil {
		return i
	}
	return id
}
