// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2025 Daniel Schmidt

package rexster

import (
	"fmt"

	"github.com/tidwall/gjson"
)

// ElementType identifies the kind of a graph element.
type ElementType string

const (
	TypeVertex ElementType = "vertex"
	TypeEdge   ElementType = "edge"
)

// Element is a vertex or edge returned by the server.
type Element struct {
	// ID is the server-assigned identifier, preserved exactly as received.
	// Servers are free to use numbers or strings, so the wire token is
	// kept rather than coerced.
	ID string
	// Type discriminates vertices from edges.
	Type ElementType
	// Properties holds the element's user properties.
	Properties Properties
	// OutV is the id of the source vertex. Edges only.
	OutV string
	// InV is the id of the target vertex. Edges only.
	InV string
	// Label is the edge label. Edges only, never empty for an edge.
	Label string
}

// IsVertex reports whether the element is a vertex.
func (e Element) IsVertex() bool {
	return e.Type == TypeVertex
}

// IsEdge reports whether the element is an edge.
func (e Element) IsEdge() bool {
	return e.Type == TypeEdge
}

// decodeElement validates and decodes a single element object. Anything
// that does not carry an id and a known type is rejected as malformed
// rather than returned half-empty.
func decodeElement(res gjson.Result) (Element, error) {
	if !res.IsObject() {
		return Element{}, malformed("element is not an object: %s", res.Raw)
	}

	id, err := idToken(res.Get("_id"))
	if err != nil {
		return Element{}, malformed("element _id: %s", err)
	}

	typ := res.Get("_type")
	if typ.Type != gjson.String {
		return Element{}, malformed("element %s has no _type", id)
	}

	elem := Element{
		ID:         id,
		Type:       ElementType(typ.Str),
		Properties: decodeProperties(res),
	}

	switch elem.Type {
	case TypeVertex:
		return elem, nil
	case TypeEdge:
		elem.OutV, err = idToken(res.Get("_outV"))
		if err != nil {
			return Element{}, malformed("edge %s _outV: %s", id, err)
		}
		elem.InV, err = idToken(res.Get("_inV"))
		if err != nil {
			return Element{}, malformed("edge %s _inV: %s", id, err)
		}
		label := res.Get("_label")
		if label.Type != gjson.String || label.Str == "" {
			return Element{}, malformed("edge %s has no _label", id)
		}
		elem.Label = label.Str
		return elem, nil
	default:
		return Element{}, malformed("element %s has unknown _type %q", id, typ.Str)
	}
}

// idToken extracts an element id, keeping the exact wire token for
// numeric ids so they round-trip without float conversion.
func idToken(res gjson.Result) (string, error) {
	switch res.Type {
	case gjson.String:
		if res.Str == "" {
			return "", fmt.Errorf("id is empty")
		}
		return res.Str, nil
	case gjson.Number:
		return res.Raw, nil
	default:
		if !res.Exists() {
			return "", fmt.Errorf("id is missing")
		}
		return "", fmt.Errorf("id %s is neither a string nor a number", res.Raw)
	}
}

// decodeElements decodes a response body holding one or more elements.
// The server answers some requests with a bare JSON list and others with
// a {"results": ...} envelope; both forms decode identically. A results
// field holding a single object decodes as a one-element list, null as
// an empty one.
func decodeElements(body string) ([]Element, error) {
	parsed := gjson.Parse(body)

	var list gjson.Result
	switch {
	case parsed.IsArray():
		list = parsed
	case parsed.IsObject():
		results := parsed.Get("results")
		switch {
		case !results.Exists():
			return nil, malformed("response has no results field: %s", snippet(body))
		case results.Type == gjson.Null:
			return []Element{}, nil
		case results.IsArray():
			list = results
		case results.IsObject():
			elem, err := decodeElement(results)
			if err != nil {
				return nil, err
			}
			return []Element{elem}, nil
		default:
			return nil, malformed("results is neither a list nor an object: %s", snippet(results.Raw))
		}
	default:
		return nil, malformed("response is neither a list nor an object: %s", snippet(body))
	}

	elems := make([]Element, 0, len(list.Array()))
	var decodeErr error
	list.ForEach(func(_, item gjson.Result) bool {
		elem, err := decodeElement(item)
		if err != nil {
			decodeErr = err
			return false
		}
		elems = append(elems, elem)
		return true
	})
	if decodeErr != nil {
		return nil, decodeErr
	}
	return elems, nil
}

func malformed(format string, args ...any) *Error {
	return &Error{Code: CodeMalformedResponse, Message: fmt.Sprintf(format, args...)}
}

// snippet truncates a body for error messages.
func snippet(s string) string {
	const max = 120
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
