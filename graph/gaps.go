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
	"sort"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// =============================================================================
// Knowledge Gaps and Importance Ranking
// =============================================================================

// disconnectedGapDistance stands in for the hop distance between nodes
// with no connecting path, keeping gap scores finite.
const disconnectedGapDistance = 10.0

// gapNeighborNorm divides the common-neighbor count in the gap score.
const gapNeighborNorm = 10.0

// KnowledgeGap flags a node pair that looks related but is not linked.
type KnowledgeGap struct {
	// NodeA and NodeB are the pair endpoints, NodeA < NodeB.
	NodeA string
	NodeB string

	// Score is the gap strength; higher means a more plausible link.
	Score float64

	// CommonNeighbors is the number of shared undirected neighbors.
	CommonNeighbors int

	// Distance is the directed hop distance from NodeA to NodeB, or 10
	// when no directed path exists.
	Distance float64
}

// CentralConcept is a node ranked by blended centrality.
type CentralConcept struct {
	UID         string
	Score       float64
	Degree      float64
	Betweenness float64
	PageRank    float64
}

// NodeImportance bundles every importance signal for one node.
type NodeImportance struct {
	Node *NodeRecord `json:"node"`

	DegreeCentrality      float64 `json:"degree_centrality"`
	BetweennessCentrality float64 `json:"betweenness_centrality"`
	ClosenessCentrality   float64 `json:"closeness_centrality"`
	PageRank              float64 `json:"pagerank"`

	// RawDegree is out-degree plus in-degree, unnormalized.
	RawDegree int `json:"raw_degree"`

	// CommunityID identifies the weakly connected component the node
	// belongs to, matching FindCommunities output.
	CommunityID int `json:"community_id"`
}

// FindKnowledgeGaps flags unlinked node pairs that likely should be linked.
//
// Description:
//
//	Considers every unordered pair with no direct edge in either
//	direction, at least one common undirected neighbor, and directed
//	hop distance greater than 2 (unreachable pairs count as distance
//	10). Scores each as
//
//	    avg(pagerank_a, pagerank_b) · (commonNeighbors/10) · (1/distance)
//
//	and returns pairs scoring at or above minImportance.
//
// Outputs:
//
//	[]KnowledgeGap - sorted by score descending, then by (NodeA, NodeB).
//
// Complexity: O(V²) pairs plus O(V·(V+E)) distance sweeps.
func (a *Analytics) FindKnowledgeGaps(ctx context.Context, minImportance float64) []KnowledgeGap {
	ctx, span := analyticsTracer.Start(ctx, "Analytics.FindKnowledgeGaps",
		trace.WithAttributes(
			attribute.Int("node_count", a.graph.NodeCount()),
			attribute.Float64("min_importance", minImportance),
		),
	)
	defer span.End()

	ids := a.graph.NodeIDs()
	if len(ids) < 2 {
		return nil
	}

	ranks := a.PageRank(ctx, nil).Scores

	// Undirected neighbor sets, reused for common-neighbor counting.
	neighborSets := make(map[string]map[string]struct{}, len(ids))
	for _, uid := range ids {
		set := make(map[string]struct{})
		for _, n := range a.graph.Neighbors(uid) {
			set[n] = struct{}{}
		}
		for _, n := range a.graph.IncomingNeighbors(uid) {
			set[n] = struct{}{}
		}
		neighborSets[uid] = set
	}

	var gaps []KnowledgeGap
	for i, idA := range ids {
		distances := a.directedHopDistances(idA)

		for _, idB := range ids[i+1:] {
			if a.graph.HasEdgeBetween(idA, idB) || a.graph.HasEdgeBetween(idB, idA) {
				continue
			}

			common := countCommon(neighborSets[idA], neighborSets[idB])
			if common == 0 {
				continue
			}

			dist := disconnectedGapDistance
			if hops, ok := distances[idB]; ok {
				dist = float64(hops)
			}
			if dist <= 2 {
				continue
			}

			score := (ranks[idA] + ranks[idB]) / 2 *
				(float64(common) / gapNeighborNorm) * (1 / dist)
			if score < minImportance {
				continue
			}

			gaps = append(gaps, KnowledgeGap{
				NodeA:           idA,
				NodeB:           idB,
				Score:           score,
				CommonNeighbors: common,
				Distance:        dist,
			})
		}
	}

	sort.Slice(gaps, func(i, j int) bool {
		if gaps[i].Score != gaps[j].Score {
			return gaps[i].Score > gaps[j].Score
		}
		if gaps[i].NodeA != gaps[j].NodeA {
			return gaps[i].NodeA < gaps[j].NodeA
		}
		return gaps[i].NodeB < gaps[j].NodeB
	})

	slog.Debug("knowledge gap scan completed",
		slog.Int("gaps", len(gaps)),
		slog.Float64("min_importance", minImportance),
	)
	span.SetAttributes(attribute.Int("gap_count", len(gaps)))
	return gaps
}

// directedHopDistances BFS-computes hop counts from start over outgoing
// edges.
func (a *Analytics) directedHopDistances(start string) map[string]int {
	dist := map[string]int{start: 0}
	queue := []string{start}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for _, next := range a.graph.Neighbors(cur) {
			if _, seen := dist[next]; seen {
				continue
			}
			dist[next] = dist[cur] + 1
			queue = append(queue, next)
		}
	}
	return dist
}

func countCommon(a, b map[string]struct{}) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	count := 0
	for k := range a {
		if _, in := b[k]; in {
			count++
		}
	}
	return count
}

// FindCentralConcepts ranks nodes by a blended centrality score.
//
// Description:
//
//	score = 0.3·degreeCentrality + 0.4·normalizedBetweenness +
//	0.3·pagerank. Returns the topN highest, sorted descending with UID
//	tie-break.
func (a *Analytics) FindCentralConcepts(ctx context.Context, topN int) []CentralConcept {
	ctx, span := analyticsTracer.Start(ctx, "Analytics.FindCentralConcepts",
		trace.WithAttributes(attribute.Int("top_n", topN)),
	)
	defer span.End()

	if topN <= 0 {
		return nil
	}

	degree := a.DegreeCentrality(ctx)
	betweenness := a.BetweennessCentrality(ctx, true)
	ranks := a.PageRank(ctx, nil).Scores

	concepts := make([]CentralConcept, 0, len(degree))
	for _, uid := range a.graph.NodeIDs() {
		c := CentralConcept{
			UID:         uid,
			Degree:      degree[uid],
			Betweenness: betweenness[uid],
			PageRank:    ranks[uid],
		}
		c.Score = 0.3*c.Degree + 0.4*c.Betweenness + 0.3*c.PageRank
		concepts = append(concepts, c)
	}

	sort.Slice(concepts, func(i, j int) bool {
		if concepts[i].Score != concepts[j].Score {
			return concepts[i].Score > concepts[j].Score
		}
		return concepts[i].UID < concepts[j].UID
	})

	if topN < len(concepts) {
		concepts = concepts[:topN]
	}
	span.SetAttributes(attribute.Int("returned", len(concepts)))
	return concepts
}

// AnalyzeNodeImportance bundles every importance signal for one node.
//
// Description:
//
//	Computes all four centrality measures, the raw degree, and the
//	weakly-connected-component ID for the node, plus its serialized
//	record. All measures are recomputed over the current graph; this is
//	an expensive call on large graphs.
//
// Outputs:
//
//	*NodeImportance - nil when the UID is unknown.
func (a *Analytics) AnalyzeNodeImportance(ctx context.Context, uid string) *NodeImportance {
	ctx, span := analyticsTracer.Start(ctx, "Analytics.AnalyzeNodeImportance",
		trace.WithAttributes(attribute.String("uid", uid)),
	)
	defer span.End()

	node, ok := a.graph.GetNode(uid)
	if !ok {
		span.AddEvent("node_missing")
		return nil
	}

	communityID := -1
	for _, community := range a.FindCommunities(ctx) {
		i := sort.SearchStrings(community.Members, uid)
		if i < len(community.Members) && community.Members[i] == uid {
			communityID = community.ID
			break
		}
	}

	record := NewNodeRecord(node)
	return &NodeImportance{
		Node:                  &record,
		DegreeCentrality:      a.DegreeCentrality(ctx)[uid],
		BetweennessCentrality: a.BetweennessCentrality(ctx, true)[uid],
		ClosenessCentrality:   a.ClosenessCentrality(ctx)[uid],
		PageRank:              a.PageRank(ctx, nil).Scores[uid],
		RawDegree:             a.graph.OutDegree(uid) + a.graph.InDegree(uid),
		CommunityID:           communityID,
	}
}
