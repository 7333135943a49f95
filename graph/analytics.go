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

import "go.opentelemetry.io/otel"

var analyticsTracer = otel.Tracer("knowledgegraph.analytics")

// Analytics provides read-only analytical queries over a graph snapshot.
//
// Description:
//
//	Analytics never mutates the graph. Provided no concurrent mutation
//	occurs, its methods are safe to run concurrently with each other.
//	None of the algorithms are incremental: any graph mutation
//	invalidates previously computed centrality or PageRank values.
//
// Performance:
//
//	| Operation            | Complexity                |
//	|----------------------|---------------------------|
//	| ShortestPath         | O((V + E) log V)          |
//	| AllPaths             | exponential (bounded)     |
//	| DegreeCentrality     | O(V + E)                  |
//	| BetweennessCentrality| O(V · E)                  |
//	| ClosenessCentrality  | O(V² log V)               |
//	| PageRank             | O(k · E)                  |
//	| FindCommunities      | O(V + E)                  |
//	| DetectClusters       | O(V · E)                  |
//	| FindKnowledgeGaps    | O(V²) pairs               |
//
//	The quadratic operations are intended for moderate-sized graphs;
//	callers bound cost through the option parameters, not timeouts.
type Analytics struct {
	graph *Graph
}

// NewAnalytics creates an analytics instance for the given graph.
// Returns nil when the graph is nil.
func NewAnalytics(g *Graph) *Analytics {
	if g == nil {
		return nil
	}
	return &Analytics{graph: g}
}
