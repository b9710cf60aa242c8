// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2025 Daniel Schmidt

// Package rexster provides a simple, fluent API for working with graph
// databases exposed through the Rexster REST protocol.
//
// The library provides a high-level client for one named graph that handles
// connection reuse, element encoding and decoding, error classification,
// and automatic retry of idempotent requests with exponential backoff.
//
// # Quick Start
//
// Create a client and perform basic operations:
//
//	client, err := rexster.NewClient(
//	    "http://localhost:8182",
//	    "social",
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ctx := context.Background()
//	marko, err := client.CreateVertex(ctx, map[string]any{
//	    "name": "marko",
//	    "age":  29,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("created vertex", marko.ID)
//	fmt.Println("age:", marko.Properties["age"].Int())
//
// # Properties
//
// Property values round-trip with their types intact: integers stay
// integers and floats stay floats across create and read. Supported value
// types are strings, bools, integer and float types, []any, and
// map[string]any. Nil values are omitted, unsupported types are rejected
// with ErrUnsupportedPropertyType before anything is sent.
//
// # Gremlin
//
// Scripts execute server-side with bindings passed out of band, never
// interpolated into the script text:
//
//	res, err := client.Gremlin(ctx, "g.v(x).out()", map[string]any{"x": 1})
//
// Large result sets stream lazily, fetching pages on demand:
//
//	stream := client.GremlinStream("g.V", nil)
//	for elem, err := range stream.Elements(ctx) {
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(elem.ID)
//	}
//
// # Error Handling
//
// Every failure carries an error code matched with errors.Is:
//
//	_, err := client.GetVertex(ctx, "99")
//	if errors.Is(err, rexster.ErrNotFound) {
//	    // vertex does not exist
//	}
//
// Transient failures (timeouts, connection errors, 5xx) of idempotent
// requests are retried automatically with exponential backoff:
//
//	client, err := rexster.NewClient(
//	    "http://localhost:8182",
//	    "social",
//	    rexster.MaxRetries(5),
//	    rexster.BackoffMinDelay(1*time.Second),
//	    rexster.BackoffMaxDelay(60*time.Second),
//	)
//
// Requests that create elements or execute scripts are never retried; if
// such a response is lost in transit the error is ErrIndeterminate and
// recovery is the caller's decision.
//
// # Thread Safety
//
// The Client is stateless after construction and safe for concurrent use.
// A ResultStream is a single consumer's cursor and is not.
//
// # Supported Operations
//
//   - CreateVertex, GetVertex, UpdateVertex, DeleteVertex, Vertices
//   - CreateEdge, GetEdge, UpdateEdge, DeleteEdge, Edges
//   - Gremlin, GremlinStream, and the traversal helpers (OutV, InE, ...)
//   - Lookup, Indices, CreateIndex, DeleteIndex, AddToIndex, RemoveFromIndex
//
// # References
//
//   - Rexster REST API: https://github.com/tinkerpop/rexster/wiki/Basic-REST-API
//   - Gremlin: https://github.com/tinkerpop/gremlin/wiki
//   - gjson: https://github.com/tidwall/gjson
//   - sjson: https://github.com/tidwall/sjson
package rexster
