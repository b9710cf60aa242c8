// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2025 Daniel Schmidt

package rexster

import (
	"github.com/tidwall/gjson"
)

// Res wraps a REST response.
type Res struct {
	// StatusCode is the HTTP response status code.
	StatusCode int

	body string
}

// JSON returns the raw response body.
func (r Res) JSON() string {
	return r.body
}

// GetValue queries the response body with a gjson path and returns the
// result. See https://github.com/tidwall/gjson for the path syntax.
//
// Returns gjson.Result which can be converted to specific types:
//   - result.String() for string values
//   - result.Int() for integer values
//   - result.Bool() for boolean values
//   - result.Array() for array values
//
// Example:
//
//	res, err := client.Gremlin(ctx, "g.V.count()", nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	count := res.GetValue("results.0").Int()
func (r Res) GetValue(path string) gjson.Result {
	if r.body == "" {
		return gjson.Result{}
	}
	return gjson.Get(r.body, path)
}

// Results returns the payload of the response: the results field when
// the body is an envelope object carrying one, the whole body otherwise.
func (r Res) Results() gjson.Result {
	parsed := gjson.Parse(r.body)
	if parsed.IsObject() {
		if results := parsed.Get("results"); results.Exists() {
			return results
		}
	}
	return parsed
}

// Element decodes the response as a single element.
func (r Res) Element() (Element, error) {
	elems, err := r.Elements()
	if err != nil {
		return Element{}, err
	}
	if len(elems) != 1 {
		return Element{}, malformed("expected a single element, got %d", len(elems))
	}
	return elems[0], nil
}

// Elements decodes the response as a list of elements. Bare JSON lists
// and {"results": ...} envelopes decode identically.
func (r Res) Elements() ([]Element, error) {
	return decodeElements(r.body)
}

// Message returns the server-reported message of an error body, or ""
// when the body carries none.
func (r Res) Message() string {
	return serverMessage(r.body)
}

// Result is a single item produced by a Gremlin script: a graph element,
// a scalar, or any other JSON value.
type Result struct {
	raw gjson.Result
}

// Raw returns the item's raw JSON.
func (r Result) Raw() string {
	return r.raw.Raw
}

// GetValue queries the item with a gjson path.
func (r Result) GetValue(path string) gjson.Result {
	return r.raw.Get(path)
}

// Element decodes the item as a graph element. Items that are not
// well-formed elements are rejected as malformed.
func (r Result) Element() (Element, error) {
	return decodeElement(r.raw)
}

// Value decodes the item as a property value.
func (r Result) Value() Value {
	return decodeValue(r.raw)
}
