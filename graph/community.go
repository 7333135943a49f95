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
	"log/slog"
	"slices"
	"sort"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// =============================================================================
// Community and Cluster Detection
// =============================================================================

// minClusterDensity is the directed-density floor for a candidate
// neighborhood to count as a cluster.
const minClusterDensity = 0.3

// Community is a weakly connected component of the graph.
type Community struct {
	// ID is the community index, assigned in order of the smallest
	// member UID so repeated runs produce identical IDs.
	ID int

	// Members are the node UIDs in the community, sorted.
	Members []string
}

// Cluster is a densely connected node neighborhood.
type Cluster struct {
	// Nodes are the member UIDs, sorted.
	Nodes []string

	// Density is internalEdges / (|C| · (|C|−1)) over directed edges.
	Density float64
}

// FindCommunities partitions the graph into weakly connected components.
//
// Description:
//
//	BFS over the undirected closure (outgoing and incoming edges alike).
//	Every node lands in exactly one community, singletons included.
//	Components are discovered in sorted-UID order, so community IDs are
//	stable for a given graph.
//
// Outputs:
//
//	[]Community - sorted by member count descending, then by smallest
//	              member UID; empty for an empty graph.
//
// Complexity: O(V + E).
func (a *Analytics) FindCommunities(ctx context.Context) []Community {
	_, span := analyticsTracer.Start(ctx, "Analytics.FindCommunities",
		trace.WithAttributes(attribute.Int("node_count", a.graph.NodeCount())),
	)
	defer span.End()

	visited := make(map[string]struct{}, a.graph.NodeCount())
	var communities []Community

	for _, uid := range a.graph.NodeIDs() {
		if _, seen := visited[uid]; seen {
			continue
		}

		members := a.undirectedComponent(uid, visited)
		slices.Sort(members)
		communities = append(communities, Community{Members: members})
	}

	sort.Slice(communities, func(i, j int) bool {
		if len(communities[i].Members) != len(communities[j].Members) {
			return len(communities[i].Members) > len(communities[j].Members)
		}
		return communities[i].Members[0] < communities[j].Members[0]
	})
	for i := range communities {
		communities[i].ID = i
	}

	span.SetAttributes(attribute.Int("community_count", len(communities)))
	return communities
}

// undirectedComponent collects every node reachable from start when edge
// direction is ignored, marking each in visited.
func (a *Analytics) undirectedComponent(start string, visited map[string]struct{}) []string {
	visited[start] = struct{}{}
	members := []string{start}
	queue := []string{start}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		neighbors := a.graph.Neighbors(cur)
		neighbors = append(neighbors, a.graph.IncomingNeighbors(cur)...)
		for _, next := range neighbors {
			if _, seen := visited[next]; seen {
				continue
			}
			visited[next] = struct{}{}
			members = append(members, next)
			queue = append(queue, next)
		}
	}
	return members
}

// DetectClusters finds densely connected neighborhoods.
//
// Description:
//
//	For each unprocessed node (sorted-UID order), forms a candidate set
//	of the node plus its outgoing 1-hop and 2-hop neighbors, then keeps
//	the candidate when its directed density internal/(|C|·(|C|−1))
//	exceeds 0.3 and it has at least minSize members. Accepted members
//	are marked processed, so clusters never overlap.
//
//	A fully connected group reports density 1.0. The seed-order greedy
//	assignment means results are a heuristic partition, not a global
//	optimum.
//
// Inputs:
//
//   - minSize: minimum member count; values < 2 are raised to 2.
//
// Outputs:
//
//	[]Cluster - sorted by size descending, then by smallest member UID.
//
// Complexity: O(V · E) worst case.
func (a *Analytics) DetectClusters(ctx context.Context, minSize int) []Cluster {
	_, span := analyticsTracer.Start(ctx, "Analytics.DetectClusters",
		trace.WithAttributes(
			attribute.Int("node_count", a.graph.NodeCount()),
			attribute.Int("min_size", minSize),
		),
	)
	defer span.End()

	if minSize < 2 {
		minSize = 2
	}

	processed := make(map[string]struct{}, a.graph.NodeCount())
	var clusters []Cluster

	for _, uid := range a.graph.NodeIDs() {
		if _, done := processed[uid]; done {
			continue
		}

		candidate := map[string]struct{}{uid: {}}
		for _, hop1 := range a.graph.Neighbors(uid) {
			candidate[hop1] = struct{}{}
			for _, hop2 := range a.graph.Neighbors(hop1) {
				candidate[hop2] = struct{}{}
			}
		}
		if len(candidate) < minSize {
			continue
		}

		density := a.directedDensity(candidate)
		if density <= minClusterDensity {
			continue
		}

		members := make([]string, 0, len(candidate))
		for member := range candidate {
			processed[member] = struct{}{}
			members = append(members, member)
		}
		slices.Sort(members)
		clusters = append(clusters, Cluster{Nodes: members, Density: density})
	}

	sort.Slice(clusters, func(i, j int) bool {
		if len(clusters[i].Nodes) != len(clusters[j].Nodes) {
			return len(clusters[i].Nodes) > len(clusters[j].Nodes)
		}
		return clusters[i].Nodes[0] < clusters[j].Nodes[0]
	})

	slog.Debug("cluster detection completed",
		slog.Int("clusters", len(clusters)),
		slog.Int("min_size", minSize),
	)
	span.SetAttributes(attribute.Int("cluster_count", len(clusters)))
	return clusters
}

// directedDensity computes internalEdges / (|C|·(|C|−1)) for the node set,
// counting distinct directed adjacency slots only.
func (a *Analytics) directedDensity(members map[string]struct{}) float64 {
	n := len(members)
	if n < 2 {
		return 0
	}

	internal := 0
	for member := range members {
		for _, target := range a.graph.Neighbors(member) {
			if _, in := members[target]; in {
				internal++
			}
		}
	}
	return float64(internal) / (float64(n) * float64(n-1))
}
