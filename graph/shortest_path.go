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
	"container/heap"
	"context"
	"math"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// edgeCost converts an edge weight into a traversal cost.
//
// Strong edges are cheap: cost = 1/weight. A zero (or negative) weight
// yields +Inf, making the edge untraversable for weighted algorithms.
func edgeCost(weight float64) float64 {
	if weight <= 0 {
		return math.Inf(1)
	}
	return 1 / weight
}

// distEntry is a priority-queue item for Dijkstra.
type distEntry struct {
	uid  string
	dist float64
}

// distHeap is a min-heap over distEntry with UID tie-break for
// deterministic settle order.
type distHeap []distEntry

func (h distHeap) Len() int { return len(h) }
func (h distHeap) Less(i, j int) bool {
	if h[i].dist != h[j].dist {
		return h[i].dist < h[j].dist
	}
	return h[i].uid < h[j].uid
}
func (h distHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *distHeap) Push(x any)        { *h = append(*h, x.(distEntry)) }
func (h *distHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// ShortestPath returns the minimum-cost path between two nodes.
//
// Description:
//
//	Dijkstra over outgoing edges with per-edge cost 1/weight, so strong
//	relationships are preferred. Edges with zero weight are skipped.
//	When parallel edges exist between a pair, the cheapest is used.
//
// Outputs:
//
//	[]string - UIDs from start to end inclusive; [start] when
//	           start == end (no search); nil when either UID is unknown
//	           or no path exists.
func (a *Analytics) ShortestPath(ctx context.Context, start, end string) []string {
	_, span := analyticsTracer.Start(ctx, "Analytics.ShortestPath",
		trace.WithAttributes(
			attribute.String("start", start),
			attribute.String("end", end),
		),
	)
	defer span.End()

	if !a.graph.HasNode(start) || !a.graph.HasNode(end) {
		span.AddEvent("endpoint_missing")
		return nil
	}
	if start == end {
		return []string{start}
	}

	path, _ := a.dijkstra(start, end)
	if path == nil {
		span.AddEvent("unreachable")
	}
	return path
}

// dijkstra runs a single-source search, stopping early when target is
// settled. target may be empty to compute distances to every reachable
// node; the returned map then holds the final distances.
func (a *Analytics) dijkstra(source, target string) ([]string, map[string]float64) {
	dist := map[string]float64{source: 0}
	prev := make(map[string]string)
	settled := make(map[string]struct{})

	pq := &distHeap{{uid: source, dist: 0}}
	heap.Init(pq)

	for pq.Len() > 0 {
		cur := heap.Pop(pq).(distEntry)
		if _, done := settled[cur.uid]; done {
			continue
		}
		settled[cur.uid] = struct{}{}

		if target != "" && cur.uid == target {
			break
		}

		for _, e := range a.graph.EdgesFrom(cur.uid) {
			cost := edgeCost(e.Weight)
			if math.IsInf(cost, 1) {
				continue
			}
			alt := cur.dist + cost
			if old, seen := dist[e.Target]; !seen || alt < old {
				dist[e.Target] = alt
				prev[e.Target] = cur.uid
				heap.Push(pq, distEntry{uid: e.Target, dist: alt})
			}
		}
	}

	if target == "" {
		return nil, dist
	}
	if _, reached := settled[target]; !reached {
		return nil, dist
	}

	// Reconstruct.
	path := []string{target}
	for cur := target; cur != source; {
		cur = prev[cur]
		path = append(path, cur)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, dist
}

// AllPaths enumerates every simple path from start to end with at most
// maxLength edges.
//
// Description:
//
//	Exhaustive DFS with an explicit stack, so deep graphs cannot blow
//	the call stack. The result is exponential in the worst case; callers
//	must keep maxLength small.
//
// Outputs:
//
//	[][]string - each path as a UID sequence including both endpoints;
//	             empty when either UID is unknown or maxLength < 1.
func (a *Analytics) AllPaths(ctx context.Context, start, end string, maxLength int) [][]string {
	_, span := analyticsTracer.Start(ctx, "Analytics.AllPaths",
		trace.WithAttributes(
			attribute.String("start", start),
			attribute.String("end", end),
			attribute.Int("max_length", maxLength),
		),
	)
	defer span.End()

	if maxLength < 1 || !a.graph.HasNode(start) || !a.graph.HasNode(end) {
		return nil
	}

	type frame struct {
		uid       string
		neighbors []string
		next      int
	}

	var out [][]string
	onPath := map[string]struct{}{start: {}}
	stack := []frame{{uid: start, neighbors: a.graph.Neighbors(start)}}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]

		if top.uid == end && len(stack) > 1 {
			path := make([]string, len(stack))
			for i, f := range stack {
				path[i] = f.uid
			}
			out = append(out, path)
			delete(onPath, top.uid)
			stack = stack[:len(stack)-1]
			continue
		}

		advanced := false
		for top.next < len(top.neighbors) && !advanced {
			next := top.neighbors[top.next]
			top.next++

			if _, visiting := onPath[next]; visiting {
				continue
			}
			if len(stack) > maxLength {
				continue // adding another edge would exceed the bound
			}
			onPath[next] = struct{}{}
			stack = append(stack, frame{uid: next, neighbors: a.graph.Neighbors(next)})
			advanced = true
		}

		if !advanced {
			delete(onPath, top.uid)
			stack = stack[:len(stack)-1]
		}
	}

	span.SetAttributes(attribute.Int("paths_found", len(out)))
	return out
}
