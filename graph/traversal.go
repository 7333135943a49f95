// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package graph

import (
	"context"
	"slices"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var traversalTracer = otel.Tracer("knowledgegraph.traversal")

// Visitor is invoked once per visited node with its depth from the start.
// Returning false prunes further expansion from that node only; siblings
// and other branches continue.
type Visitor func(node *Node, depth int) bool

// Traverser provides read-only walk and navigation primitives over a graph.
//
// Thread Safety: safe to use concurrently provided no concurrent
// mutation of the underlying graph occurs.
type Traverser struct {
	graph     *Graph
	analytics *Analytics
}

// NewTraverser creates a traverser for the given graph.
// Returns nil when the graph is nil.
func NewTraverser(g *Graph) *Traverser {
	if g == nil {
		return nil
	}
	return &Traverser{graph: g, analytics: NewAnalytics(g)}
}

// BFS walks outgoing edges breadth-first from start, invoking visit for
// each node with its hop depth.
//
// Description:
//
//	Visits start at depth 0, then each unvisited outgoing neighbor in
//	sorted order per level. A false return from visit stops expansion
//	from that node; already-queued nodes still run.
//
// Outputs:
//
//	[]string - UIDs in visit order; nil when start is unknown.
func (t *Traverser) BFS(ctx context.Context, start string, visit Visitor) []string {
	_, span := traversalTracer.Start(ctx, "Traverser.BFS",
		trace.WithAttributes(attribute.String("start", start)),
	)
	defer span.End()

	if !t.graph.HasNode(start) {
		span.AddEvent("start_missing")
		return nil
	}

	type item struct {
		uid   string
		depth int
	}
	visited := map[string]struct{}{start: {}}
	queue := []item{{uid: start}}
	var order []string

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		order = append(order, cur.uid)

		node, _ := t.graph.GetNode(cur.uid)
		if visit != nil && !visit(node, cur.depth) {
			continue
		}

		for _, next := range t.graph.Neighbors(cur.uid) {
			if _, seen := visited[next]; seen {
				continue
			}
			visited[next] = struct{}{}
			queue = append(queue, item{uid: next, depth: cur.depth + 1})
		}
	}

	span.SetAttributes(attribute.Int("visited", len(order)))
	return order
}

// DFS walks outgoing edges depth-first from start, invoking visit for
// each node with its hop depth.
//
// Description:
//
//	Explicit-stack pre-order traversal. Neighbors are pushed in reverse
//	sorted order so the smallest UID is explored first, matching the
//	recursive formulation. A false return from visit prunes that node's
//	subtree.
//
// Outputs:
//
//	[]string - UIDs in visit order; nil when start is unknown.
func (t *Traverser) DFS(ctx context.Context, start string, visit Visitor) []string {
	_, span := traversalTracer.Start(ctx, "Traverser.DFS",
		trace.WithAttributes(attribute.String("start", start)),
	)
	defer span.End()

	if !t.graph.HasNode(start) {
		span.AddEvent("start_missing")
		return nil
	}

	type item struct {
		uid   string
		depth int
	}
	visited := make(map[string]struct{})
	stack := []item{{uid: start}}
	var order []string

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if _, seen := visited[cur.uid]; seen {
			continue
		}
		visited[cur.uid] = struct{}{}
		order = append(order, cur.uid)

		node, _ := t.graph.GetNode(cur.uid)
		if visit != nil && !visit(node, cur.depth) {
			continue
		}

		neighbors := t.graph.Neighbors(cur.uid)
		for i := len(neighbors) - 1; i >= 0; i-- {
			if _, seen := visited[neighbors[i]]; !seen {
				stack = append(stack, item{uid: neighbors[i], depth: cur.depth + 1})
			}
		}
	}

	span.SetAttributes(attribute.Int("visited", len(order)))
	return order
}

// ConnectedComponent returns every node reachable from start when edge
// direction is ignored.
//
// Outputs:
//
//	[]string - sorted member UIDs; nil when start is unknown.
func (t *Traverser) ConnectedComponent(ctx context.Context, start string) []string {
	_, span := traversalTracer.Start(ctx, "Traverser.ConnectedComponent",
		trace.WithAttributes(attribute.String("start", start)),
	)
	defer span.End()

	if !t.graph.HasNode(start) {
		return nil
	}

	visited := make(map[string]struct{})
	members := t.analytics.undirectedComponent(start, visited)
	slices.Sort(members)

	span.SetAttributes(attribute.Int("size", len(members)))
	return members
}

// Neighborhood returns the minimum hop distance to every node within
// radius hops of center.
//
// Description:
//
//	BFS over outgoing edges, optionally also following incoming edges.
//	The center maps to distance 0.
//
// Outputs:
//
//	map[string]int - UID to hop distance; nil when center is unknown or
//	                 radius < 0.
func (t *Traverser) Neighborhood(ctx context.Context, center string, radius int, includeIncoming bool) map[string]int {
	_, span := traversalTracer.Start(ctx, "Traverser.Neighborhood",
		trace.WithAttributes(
			attribute.String("center", center),
			attribute.Int("radius", radius),
			attribute.Bool("include_incoming", includeIncoming),
		),
	)
	defer span.End()

	if radius < 0 || !t.graph.HasNode(center) {
		return nil
	}

	dist := map[string]int{center: 0}
	queue := []string{center}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if dist[cur] >= radius {
			continue
		}

		neighbors := t.graph.Neighbors(cur)
		if includeIncoming {
			neighbors = append(neighbors, t.graph.IncomingNeighbors(cur)...)
		}
		for _, next := range neighbors {
			if _, seen := dist[next]; seen {
				continue
			}
			dist[next] = dist[cur] + 1
			queue = append(queue, next)
		}
	}

	span.SetAttributes(attribute.Int("size", len(dist)))
	return dist
}
