// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2025 Daniel Schmidt

package rexster

import (
	"fmt"

	"github.com/tidwall/sjson"
)

// Body provides a fluent interface for building JSON payloads using
// sjson for path-based manipulation.
//
// The Body builder tracks errors internally to enable method chaining
// while providing error checking through String() or Err() methods.
//
// Example:
//
//	body := rexster.Body{}.
//	    Set("name", "marko").
//	    Set("age", 29)
//
//	value, err := body.String()
//	if err != nil {
//	    log.Fatal(err)
//	}
type Body struct {
	// str contains the JSON string being built
	str string
	// err tracks the first error encountered during building
	err error
}

// Set sets a value at the specified JSON path and returns a new Body.
//
// The path uses dot notation for nested fields (e.g., "address.city").
// The value can be any type that sjson supports (string, number, bool, etc.).
//
// If an error occurs, the error is stored and returned by String() or Err().
// Once an error occurs, all subsequent operations are no-ops that preserve
// the error.
//
// Example:
//
//	body := rexster.Body{}.
//	    Set("name", "marko").
//	    Set("active", true).
//	    Set("age", 29)
//	json, err := body.String()
func (b Body) Set(path string, value any) Body {
	if b.err != nil {
		return b
	}

	result, err := sjson.Set(b.str, path, value)
	if err != nil {
		return Body{str: b.str, err: fmt.Errorf("Set(%q): %w", path, err)}
	}
	return Body{str: result, err: nil}
}

// SetRaw sets pre-encoded JSON at the specified path and returns a new
// Body. Use this to splice in payloads that are already valid JSON, such
// as an encoded property map or script bindings.
//
// Example:
//
//	body := rexster.Body{}.
//	    Set("script", "g.v(x).out()").
//	    SetRaw("params", `{"x":1}`)
func (b Body) SetRaw(path string, raw string) Body {
	if b.err != nil {
		return b
	}

	result, err := sjson.SetRaw(b.str, path, raw)
	if err != nil {
		return Body{str: b.str, err: fmt.Errorf("SetRaw(%q): %w", path, err)}
	}
	return Body{str: result, err: nil}
}

// Delete removes a value at the specified JSON path and returns a new Body.
//
// If an error occurs, the error is stored and returned by String() or Err().
//
// Example:
//
//	body := rexster.Body{}.
//	    Set("name", "marko").
//	    Set("note", "temp").
//	    Delete("note")
//	json, err := body.String()
func (b Body) Delete(path string) Body {
	if b.err != nil {
		return b
	}

	result, err := sjson.Delete(b.str, path)
	if err != nil {
		return Body{str: b.str, err: fmt.Errorf("Delete(%q): %w", path, err)}
	}
	return Body{str: result, err: nil}
}

// String returns the JSON string representation and any error encountered
// during building.
//
// Example:
//
//	body := rexster.Body{}.Set("name", "marko")
//	json, err := body.String()
//	if err != nil {
//	    log.Fatal(err)
//	}
func (b Body) String() (string, error) {
	return b.str, b.err
}

// Err returns any error that occurred during the building process.
//
// This method allows checking for errors without retrieving the string value.
func (b Body) Err() error {
	return b.err
}

// Res returns the JSON string for further processing with gjson.
//
// If an error occurred during building, this returns an empty string.
// Use Err() or String() to check for errors.
//
// Example:
//
//	body := rexster.Body{}.Set("name", "marko")
//	if body.Err() == nil {
//	    name := gjson.Get(body.Res(), "name").String()
//	}
func (b Body) Res() string {
	if b.err != nil {
		return ""
	}
	return b.str
}

// Bytes returns the JSON byte slice representation and any error
// encountered during building.
func (b Body) Bytes() ([]byte, error) {
	if b.err != nil {
		return nil, b.err
	}
	return []byte(b.str), nil
}
