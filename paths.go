// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2025 Daniel Schmidt

package rexster

import "net/url"

// graphPaths builds resource paths for a single named graph. The graph
// name is fixed at client construction and every URL the client issues
// is produced here; no other component assembles path strings.
type graphPaths struct {
	graph string
}

// root returns the graph's base path, e.g. "/graphs/social".
func (p graphPaths) root() string {
	return "/graphs/" + escapeSegment(p.graph)
}

func (p graphPaths) vertices() string {
	return p.root() + "/vertices"
}

func (p graphPaths) vertex(id string) string {
	return p.vertices() + "/" + escapeSegment(id)
}

func (p graphPaths) edges() string {
	return p.root() + "/edges"
}

func (p graphPaths) edge(id string) string {
	return p.edges() + "/" + escapeSegment(id)
}

func (p graphPaths) indices() string {
	return p.root() + "/indices"
}

func (p graphPaths) index(name string) string {
	return p.indices() + "/" + escapeSegment(name)
}

func (p graphPaths) gremlin() string {
	return p.root() + "/tp/gremlin"
}

// escapeSegment percent-encodes a value for use as a single URL path
// segment. Ids like "foo/bar" and graph names containing spaces must
// address the intended resource, not change the path structure.
func escapeSegment(s string) string {
	return url.PathEscape(s)
}
