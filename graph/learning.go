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
	"fmt"
	"log/slog"
	"math"
	"sort"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// =============================================================================
// Learning Paths and Topic Navigation
// =============================================================================

const (
	// maxLearningPathLength bounds the edge count of candidate learning
	// paths; the enumeration underneath is exponential.
	maxLearningPathLength = 10

	// topicDecayFactor shrinks relevance per hop during topic exploration.
	topicDecayFactor = 0.7

	// maxTopicDepth bounds topic exploration.
	maxTopicDepth = 3
)

// learningRelTypes are the edge kinds a learning path may follow.
var learningRelTypes = []RelType{RelPrerequisiteOf, RelBuildsOn}

// nextNodeMultipliers bias next-node suggestions by relationship kind.
var nextNodeMultipliers = map[RelType]float64{
	RelBuildsOn:       1.5,
	RelPrerequisiteOf: 1.3,
	RelRelatedTo:      1.0,
}

// TopicNode is a node discovered during topic exploration.
type TopicNode struct {
	UID string

	// Relevance decays by 0.7 per hop, scaled by the traversed edge weight.
	Relevance float64

	// Depth is the hop distance from the topic node.
	Depth int
}

// NextNode is a suggested follow-up node with its ranking rationale.
type NextNode struct {
	UID     string
	Score   float64
	RelType RelType
	Reason  string
}

// KnowledgeCluster summarizes one connected region of the graph.
type KnowledgeCluster struct {
	// Members are the node UIDs in the cluster, sorted.
	Members []string

	// Density is internalEdges / (|C|·(|C|−1)) over directed edges.
	Density float64

	// CentralNode is the member with the highest total degree.
	CentralNode string
}

// LearningPath finds the best prerequisite-ordered path between two nodes.
//
// Description:
//
//	Enumerates simple paths from start to goal restricted to
//	prerequisite_of and builds_on edges, scores each as
//	(Σ edge weights)/nodeCount, and returns the highest-scoring path.
//	Ties break toward the lexicographically smaller path.
//
// Outputs:
//
//	[]string - UIDs from start to goal; nil when either UID is unknown
//	           or no learning path exists.
func (t *Traverser) LearningPath(ctx context.Context, start, goal string) []string {
	_, span := traversalTracer.Start(ctx, "Traverser.LearningPath",
		trace.WithAttributes(
			attribute.String("start", start),
			attribute.String("goal", goal),
		),
	)
	defer span.End()

	if !t.graph.HasNode(start) || !t.graph.HasNode(goal) {
		span.AddEvent("endpoint_missing")
		return nil
	}

	paths := t.typedPaths(start, goal, learningRelTypes, maxLearningPathLength)
	if len(paths) == 0 {
		span.AddEvent("no_path")
		return nil
	}

	var best []string
	bestScore := math.Inf(-1)
	for _, path := range paths {
		score := t.pathScore(path)
		if score > bestScore || (score == bestScore && lessPath(path, best)) {
			best = path
			bestScore = score
		}
	}

	slog.Debug("learning path selected",
		slog.String("start", start),
		slog.String("goal", goal),
		slog.Int("candidates", len(paths)),
		slog.Float64("score", bestScore),
	)
	span.SetAttributes(attribute.Int("candidates", len(paths)))
	return best
}

// typedPaths enumerates simple paths following only the given edge kinds,
// bounded by maxLength edges. Explicit stack; the caller bounds cost.
func (t *Traverser) typedPaths(start, goal string, types []RelType, maxLength int) [][]string {
	type frame struct {
		uid       string
		neighbors []string
		next      int
	}

	var out [][]string
	onPath := map[string]struct{}{start: {}}
	stack := []frame{{uid: start, neighbors: t.typedNeighbors(start, types)}}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]

		if top.uid == goal && len(stack) > 1 {
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
				continue
			}
			onPath[next] = struct{}{}
			stack = append(stack, frame{uid: next, neighbors: t.typedNeighbors(next, types)})
			advanced = true
		}

		if !advanced {
			delete(onPath, top.uid)
			stack = stack[:len(stack)-1]
		}
	}
	return out
}

// typedNeighbors returns distinct outgoing neighbors over the given edge
// kinds, sorted.
func (t *Traverser) typedNeighbors(uid string, types []RelType) []string {
	set := make(map[string]struct{})
	for _, e := range t.graph.EdgesFrom(uid, types...) {
		set[e.Target] = struct{}{}
	}
	return sortedSetKeys(set)
}

// pathScore is the summed weight of the path's best typed edges divided
// by the node count.
func (t *Traverser) pathScore(path []string) float64 {
	if len(path) == 0 {
		return 0
	}
	total := 0.0
	for i := 0; i+1 < len(path); i++ {
		best := 0.0
		for _, rel := range learningRelTypes {
			if e, ok := t.graph.GetEdge(path[i], path[i+1], rel); ok && e.Weight > best {
				best = e.Weight
			}
		}
		total += best
	}
	return total / float64(len(path))
}

func lessPath(a, b []string) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

// ExploreTopic discovers the most relevant nodes around a topic.
//
// Description:
//
//	Breadth-first expansion from topic over outgoing edges. A node
//	discovered at depth d through an edge of weight w gets relevance
//	0.7^d · w; re-discovery keeps the higher relevance but never
//	re-expands. Exploration stops at depth 3 or after visiting
//	2·maxNodes nodes, whichever comes first.
//
// Outputs:
//
//	[]TopicNode - up to maxNodes entries sorted by relevance descending
//	              with UID tie-break; the topic itself is excluded.
func (t *Traverser) ExploreTopic(ctx context.Context, topic string, maxNodes int) []TopicNode {
	_, span := traversalTracer.Start(ctx, "Traverser.ExploreTopic",
		trace.WithAttributes(
			attribute.String("topic", topic),
			attribute.Int("max_nodes", maxNodes),
		),
	)
	defer span.End()

	if maxNodes <= 0 || !t.graph.HasNode(topic) {
		return nil
	}

	type item struct {
		uid   string
		depth int
	}
	relevance := make(map[string]float64)
	depths := make(map[string]int)
	expanded := map[string]struct{}{topic: {}}
	queue := []item{{uid: topic}}
	visitBudget := 2 * maxNodes
	visitedCount := 0

	for len(queue) > 0 && visitedCount < visitBudget {
		cur := queue[0]
		queue = queue[1:]
		visitedCount++

		if cur.depth >= maxTopicDepth {
			continue
		}

		decay := math.Pow(topicDecayFactor, float64(cur.depth+1))
		for _, e := range t.graph.EdgesFrom(cur.uid) {
			if e.Target == topic {
				continue
			}
			score := decay * e.Weight
			if old, seen := relevance[e.Target]; !seen || score > old {
				relevance[e.Target] = score
				depths[e.Target] = cur.depth + 1
			}
			if _, done := expanded[e.Target]; !done {
				expanded[e.Target] = struct{}{}
				queue = append(queue, item{uid: e.Target, depth: cur.depth + 1})
			}
		}
	}

	out := make([]TopicNode, 0, len(relevance))
	for uid, score := range relevance {
		out = append(out, TopicNode{UID: uid, Relevance: score, Depth: depths[uid]})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Relevance != out[j].Relevance {
			return out[i].Relevance > out[j].Relevance
		}
		return out[i].UID < out[j].UID
	})
	if maxNodes < len(out) {
		out = out[:maxNodes]
	}

	span.SetAttributes(attribute.Int("returned", len(out)))
	return out
}

// BreadcrumbPath returns a root-to-target trail for navigation display.
//
// Description:
//
//	With an explicit root, returns ShortestPath(root, target). Without
//	one, walks backward via incoming edges collecting ancestors that
//	have no incoming edges themselves, picks the ancestor with the most
//	outgoing connections (UID tie-break) as the inferred root, and
//	returns the shortest path from it. A target with no zero-incoming
//	ancestor (cycles all the way up) yields just [target].
//
// Outputs:
//
//	[]string - UIDs root..target; nil when target is unknown or the
//	           explicit root has no path to it.
func (t *Traverser) BreadcrumbPath(ctx context.Context, target, root string) []string {
	ctx, span := traversalTracer.Start(ctx, "Traverser.BreadcrumbPath",
		trace.WithAttributes(
			attribute.String("target", target),
			attribute.String("root", root),
		),
	)
	defer span.End()

	if !t.graph.HasNode(target) {
		span.AddEvent("target_missing")
		return nil
	}

	if root == "" {
		root = t.inferRoot(target)
		if root == "" {
			return []string{target}
		}
	}
	return t.analytics.ShortestPath(ctx, root, target)
}

// inferRoot walks incoming edges upward from target and returns the
// zero-incoming ancestor with the most outgoing connections.
func (t *Traverser) inferRoot(target string) string {
	visited := map[string]struct{}{target: {}}
	queue := []string{target}
	var roots []string

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		parents := t.graph.IncomingNeighbors(cur)
		if len(parents) == 0 && cur != target {
			roots = append(roots, cur)
			continue
		}
		for _, parent := range parents {
			if _, seen := visited[parent]; seen {
				continue
			}
			visited[parent] = struct{}{}
			queue = append(queue, parent)
		}
	}

	best := ""
	bestDegree := -1
	for _, r := range roots {
		deg := t.graph.OutDegree(r)
		if deg > bestDegree || (deg == bestDegree && r < best) {
			best = r
			bestDegree = deg
		}
	}
	return best
}

// SuggestNextNodes ranks unvisited outgoing neighbors of current as
// follow-up candidates.
//
// Description:
//
//	Each unvisited direct neighbor is scored edge weight × type
//	multiplier (builds_on ×1.5, prerequisite_of ×1.3, everything else
//	×1.0); when parallel edges exist the best-scoring one wins. Each
//	suggestion carries a human-readable reason.
//
// Outputs:
//
//	[]NextNode - up to limit entries sorted by score descending with
//	             UID tie-break; nil when current is unknown.
func (t *Traverser) SuggestNextNodes(ctx context.Context, current string, visited []string, limit int) []NextNode {
	_, span := traversalTracer.Start(ctx, "Traverser.SuggestNextNodes",
		trace.WithAttributes(
			attribute.String("current", current),
			attribute.Int("limit", limit),
		),
	)
	defer span.End()

	if limit <= 0 || !t.graph.HasNode(current) {
		return nil
	}

	seen := make(map[string]struct{}, len(visited)+1)
	seen[current] = struct{}{}
	for _, uid := range visited {
		seen[uid] = struct{}{}
	}

	best := make(map[string]NextNode)
	for _, e := range t.graph.EdgesFrom(current) {
		if _, skip := seen[e.Target]; skip {
			continue
		}

		multiplier := 1.0
		if m, ok := nextNodeMultipliers[e.Type]; ok {
			multiplier = m
		}
		score := e.Weight * multiplier

		if prev, ok := best[e.Target]; !ok || score > prev.Score {
			best[e.Target] = NextNode{
				UID:     e.Target,
				Score:   score,
				RelType: e.Type,
				Reason:  nextNodeReason(e.Type),
			}
		}
	}

	out := make([]NextNode, 0, len(best))
	for _, n := range best {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].UID < out[j].UID
	})
	if limit < len(out) {
		out = out[:limit]
	}

	span.SetAttributes(attribute.Int("returned", len(out)))
	return out
}

func nextNodeReason(rel RelType) string {
	switch rel {
	case RelBuildsOn:
		return "builds on what you just covered"
	case RelPrerequisiteOf:
		return "unlocks material that depends on it"
	case RelRelatedTo:
		return "related to the current topic"
	default:
		return fmt.Sprintf("connected via %s", rel)
	}
}

// FindKnowledgeClusters summarizes the graph's connected regions.
//
// Description:
//
//	Computes weakly connected components and reports each with at least
//	minSize members: its size, directed-edge density, and the member
//	with the highest total degree as the central node.
//
// Outputs:
//
//	[]KnowledgeCluster - sorted by size descending, then by smallest
//	                     member UID.
func (t *Traverser) FindKnowledgeClusters(ctx context.Context, minSize int) []KnowledgeCluster {
	ctx, span := traversalTracer.Start(ctx, "Traverser.FindKnowledgeClusters",
		trace.WithAttributes(attribute.Int("min_size", minSize)),
	)
	defer span.End()

	if minSize < 1 {
		minSize = 1
	}

	var clusters []KnowledgeCluster
	for _, community := range t.analytics.FindCommunities(ctx) {
		if len(community.Members) < minSize {
			continue
		}

		memberSet := make(map[string]struct{}, len(community.Members))
		for _, uid := range community.Members {
			memberSet[uid] = struct{}{}
		}

		central := ""
		centralDegree := -1
		for _, uid := range community.Members {
			deg := t.graph.OutDegree(uid) + t.graph.InDegree(uid)
			if deg > centralDegree || (deg == centralDegree && uid < central) {
				central = uid
				centralDegree = deg
			}
		}

		clusters = append(clusters, KnowledgeCluster{
			Members:     community.Members,
			Density:     t.analytics.directedDensity(memberSet),
			CentralNode: central,
		})
	}

	sort.Slice(clusters, func(i, j int) bool {
		if len(clusters[i].Members) != len(clusters[j].Members) {
			return len(clusters[i].Members) > len(clusters[j].Members)
		}
		return clusters[i].Members[0] < clusters[j].Members[0]
	})

	span.SetAttributes(attribute.Int("cluster_count", len(clusters)))
	return clusters
}
