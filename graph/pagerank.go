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
	"math"
	"sort"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// =============================================================================
// PageRank
// =============================================================================

// PageRank configuration constants.
const (
	// DefaultDampingFactor is the probability of following a link (vs random jump).
	// Standard value from the original PageRank paper.
	DefaultDampingFactor = 0.85

	// DefaultMaxIterations is the maximum iterations before stopping.
	DefaultMaxIterations = 100

	// DefaultConvergence is the threshold for convergence detection.
	// Power iteration stops when the total score change < this value.
	DefaultConvergence = 1e-6
)

// PageRankOptions configures the PageRank algorithm.
type PageRankOptions struct {
	// DampingFactor is the probability of following a link (vs random jump).
	// Must be in [0, 1]. Default: 0.85
	DampingFactor float64

	// MaxIterations is the maximum iterations before stopping.
	// Must be > 0. Default: 100
	MaxIterations int

	// Convergence is the threshold for convergence detection.
	// Must be > 0. Default: 1e-6
	Convergence float64
}

// Validate checks options and applies defaults for invalid values.
func (o *PageRankOptions) Validate() {
	if o.DampingFactor < 0 || o.DampingFactor > 1 {
		o.DampingFactor = DefaultDampingFactor
	}
	if o.MaxIterations <= 0 {
		o.MaxIterations = DefaultMaxIterations
	}
	if o.Convergence <= 0 {
		o.Convergence = DefaultConvergence
	}
}

// DefaultPageRankOptions returns sensible defaults.
func DefaultPageRankOptions() *PageRankOptions {
	return &PageRankOptions{
		DampingFactor: DefaultDampingFactor,
		MaxIterations: DefaultMaxIterations,
		Convergence:   DefaultConvergence,
	}
}

// PageRankResult contains the output of PageRank computation.
type PageRankResult struct {
	// Scores maps node UID to PageRank score.
	// Scores sum to approximately 1.0.
	Scores map[string]float64

	// Iterations is the actual number of iterations performed.
	Iterations int

	// Converged indicates whether the algorithm converged before MaxIterations.
	Converged bool

	// TotalDiff is the final summed score difference (useful for debugging).
	TotalDiff float64
}

// RankedNode pairs a node with its PageRank score and position.
type RankedNode struct {
	// Node is the graph node.
	Node *Node

	// Score is the PageRank score.
	Score float64

	// Rank is the position in the ranking (1-indexed).
	Rank int
}

// PageRank computes PageRank scores for all nodes in the graph.
//
// Description:
//
//	Uses power iteration to compute the PageRank score of each node,
//	which represents its importance based on the importance of nodes
//	linking to it (transitive importance). Link structure only; edge
//	weights do not participate.
//
//	Sink nodes (no outgoing edges) have their rank redistributed evenly
//	across all nodes each iteration, preventing rank "leakage" from the
//	graph.
//
// Inputs:
//
//   - ctx: Context for cancellation. Must not be nil.
//   - opts: Configuration options. If nil, defaults are used.
//
// Outputs:
//
//   - *PageRankResult: Scores for all nodes, iteration count, convergence
//     status. Returns an empty converged result for an empty graph.
//
// Example:
//
//	opts := graph.DefaultPageRankOptions()
//	result := analytics.PageRank(ctx, opts)
//	if result.Converged {
//	    fmt.Printf("Converged in %d iterations\n", result.Iterations)
//	}
//
// Thread Safety: Safe absent concurrent mutation of the graph.
//
// Complexity: O(k × E) where k = iterations to converge (~20 typical).
func (a *Analytics) PageRank(ctx context.Context, opts *PageRankOptions) *PageRankResult {
	ctx, span := analyticsTracer.Start(ctx, "Analytics.PageRank",
		trace.WithAttributes(
			attribute.Int("node_count", a.graph.NodeCount()),
			attribute.Int("edge_count", a.graph.EdgeCount()),
		),
	)
	defer span.End()

	N := float64(a.graph.NodeCount())
	if N == 0 {
		span.AddEvent("empty_graph")
		return &PageRankResult{
			Scores:    make(map[string]float64),
			Converged: true,
		}
	}

	if opts == nil {
		opts = DefaultPageRankOptions()
	} else {
		opts.Validate()
	}

	span.SetAttributes(
		attribute.Float64("damping_factor", opts.DampingFactor),
		attribute.Int("max_iterations", opts.MaxIterations),
		attribute.Float64("convergence_threshold", opts.Convergence),
	)

	d := opts.DampingFactor
	ids := a.graph.NodeIDs()

	// Pre-allocate two maps and swap instead of reallocating.
	scores := make(map[string]float64, len(ids))
	newScores := make(map[string]float64, len(ids))

	initial := 1.0 / N
	for _, id := range ids {
		scores[id] = initial
	}

	// Identify sink nodes and cache out-degrees up front.
	sinkNodes := make([]string, 0)
	outDegree := make(map[string]int, len(ids))
	for _, id := range ids {
		deg := a.graph.OutDegree(id)
		outDegree[id] = deg
		if deg == 0 {
			sinkNodes = append(sinkNodes, id)
		}
	}

	span.SetAttributes(attribute.Int("sink_node_count", len(sinkNodes)))

	var iterations int
	var converged bool
	var totalDiff float64

	for iter := 0; iter < opts.MaxIterations; iter++ {
		if ctx.Err() != nil {
			span.AddEvent("cancelled", trace.WithAttributes(
				attribute.Int("iterations_completed", iter),
			))
			return &PageRankResult{
				Scores:     scores,
				Iterations: iter,
				Converged:  false,
				TotalDiff:  totalDiff,
			}
		}

		totalDiff = 0.0

		// Sink rank is redistributed evenly.
		sinkContribution := 0.0
		for _, sinkID := range sinkNodes {
			sinkContribution += scores[sinkID]
		}
		sinkContribution = d * sinkContribution / N

		for _, id := range ids {
			newScore := (1-d)/N + sinkContribution

			for _, from := range a.graph.IncomingNeighbors(id) {
				if deg := outDegree[from]; deg > 0 {
					newScore += d * scores[from] / float64(deg)
				}
			}

			newScores[id] = newScore
			totalDiff += math.Abs(newScore - scores[id])
		}

		scores, newScores = newScores, scores
		iterations = iter + 1

		if totalDiff < opts.Convergence {
			converged = true
			break
		}
	}

	slog.Debug("PageRank completed",
		slog.Int("iterations", iterations),
		slog.Bool("converged", converged),
		slog.Float64("total_diff", totalDiff),
		slog.Int("node_count", int(N)),
	)

	span.SetAttributes(
		attribute.Int("iterations", iterations),
		attribute.Bool("converged", converged),
		attribute.Float64("total_diff", totalDiff),
	)

	return &PageRankResult{
		Scores:     scores,
		Iterations: iterations,
		Converged:  converged,
		TotalDiff:  totalDiff,
	}
}

// PageRankTop returns the top-k nodes by PageRank score.
//
// Description:
//
//	Computes PageRank for all nodes and returns the top-k ranked nodes,
//	sorted by score descending with UID tie-break for deterministic
//	ordering.
//
// Thread Safety: Safe absent concurrent mutation of the graph.
func (a *Analytics) PageRankTop(ctx context.Context, k int, opts *PageRankOptions) []RankedNode {
	ctx, span := analyticsTracer.Start(ctx, "Analytics.PageRankTop",
		trace.WithAttributes(attribute.Int("k", k)),
	)
	defer span.End()

	if k <= 0 {
		return []RankedNode{}
	}

	result := a.PageRank(ctx, opts)

	type scoredNode struct {
		UID   string
		Score float64
	}
	nodeList := make([]scoredNode, 0, len(result.Scores))
	for uid, score := range result.Scores {
		nodeList = append(nodeList, scoredNode{UID: uid, Score: score})
	}

	sort.Slice(nodeList, func(i, j int) bool {
		if nodeList[i].Score != nodeList[j].Score {
			return nodeList[i].Score > nodeList[j].Score
		}
		return nodeList[i].UID < nodeList[j].UID
	})

	if k > len(nodeList) {
		k = len(nodeList)
	}

	topK := make([]RankedNode, k)
	for i := 0; i < k; i++ {
		node, _ := a.graph.GetNode(nodeList[i].UID)
		topK[i] = RankedNode{
			Node:  node,
			Score: nodeList[i].Score,
			Rank:  i + 1,
		}
	}

	span.SetAttributes(
		attribute.Int("returned", len(topK)),
		attribute.Bool("converged", result.Converged),
		attribute.Int("iterations", result.Iterations),
	)

	return topK
}
