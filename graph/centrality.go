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
	"runtime"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// maxClosenessWorkers caps the goroutines used for per-node closeness
// computation. The work is memory-bound; more workers stop helping.
const maxClosenessWorkers = 8

// DegreeCentrality returns the normalized degree for every node.
//
// Description:
//
//	For each node: (outDegree + inDegree) / (2·(N−1)), using distinct
//	adjacency slots. Zero for graphs with a single node.
//
// Complexity: O(V + E).
func (a *Analytics) DegreeCentrality(ctx context.Context) map[string]float64 {
	_, span := analyticsTracer.Start(ctx, "Analytics.DegreeCentrality",
		trace.WithAttributes(attribute.Int("node_count", a.graph.NodeCount())),
	)
	defer span.End()

	n := a.graph.NodeCount()
	out := make(map[string]float64, n)
	if n <= 1 {
		for uid := range a.graph.Nodes() {
			out[uid] = 0
		}
		return out
	}

	norm := 2 * float64(n-1)
	for uid := range a.graph.Nodes() {
		out[uid] = float64(a.graph.OutDegree(uid)+a.graph.InDegree(uid)) / norm
	}
	return out
}

// BetweennessCentrality returns how often each node sits on shortest paths
// between other node pairs.
//
// Description:
//
//	Brandes' algorithm over unweighted outgoing adjacency: one BFS per
//	source with predecessor lists and path counts (sigma), followed by
//	reverse-order dependency accumulation. With normalize, scores are
//	scaled by 1/((N−1)(N−2)) for N > 2.
//
// Complexity: O(V·E) time, O(V + E) space per source.
func (a *Analytics) BetweennessCentrality(ctx context.Context, normalize bool) map[string]float64 {
	_, span := analyticsTracer.Start(ctx, "Analytics.BetweennessCentrality",
		trace.WithAttributes(
			attribute.Int("node_count", a.graph.NodeCount()),
			attribute.Bool("normalize", normalize),
		),
	)
	defer span.End()

	ids := a.graph.NodeIDs()
	centrality := make(map[string]float64, len(ids))
	for _, uid := range ids {
		centrality[uid] = 0
	}

	for _, source := range ids {
		// BFS phase.
		var order []string
		pred := make(map[string][]string)
		sigma := map[string]float64{source: 1}
		dist := map[string]int{source: 0}

		queue := []string{source}
		for len(queue) > 0 {
			v := queue[0]
			queue = queue[1:]
			order = append(order, v)

			for _, w := range a.graph.Neighbors(v) {
				if _, seen := dist[w]; !seen {
					dist[w] = dist[v] + 1
					queue = append(queue, w)
				}
				if dist[w] == dist[v]+1 {
					sigma[w] += sigma[v]
					pred[w] = append(pred[w], v)
				}
			}
		}

		// Accumulation phase, reverse BFS order.
		delta := make(map[string]float64)
		for i := len(order) - 1; i >= 0; i-- {
			w := order[i]
			for _, v := range pred[w] {
				delta[v] += sigma[v] / sigma[w] * (1 + delta[w])
			}
			if w != source {
				centrality[w] += delta[w]
			}
		}
	}

	if normalize {
		n := len(ids)
		if n > 2 {
			scale := 1 / (float64(n-1) * float64(n-2))
			for uid := range centrality {
				centrality[uid] *= scale
			}
		}
	}

	slog.Debug("betweenness centrality computed",
		slog.Int("node_count", len(ids)),
		slog.Bool("normalized", normalize),
	)
	return centrality
}

// ClosenessCentrality returns reachability-weighted closeness per node.
//
// Description:
//
//	For each node, runs a weighted single-source shortest-path sweep
//	(cost 1/weight) and computes reachableCount/totalDistance; zero when
//	nothing is reachable. The per-node sweeps are independent and run in
//	parallel across a bounded worker pool — safe because the computation
//	is read-only.
//
// Complexity: O(V² log V) total.
func (a *Analytics) ClosenessCentrality(ctx context.Context) map[string]float64 {
	ctx, span := analyticsTracer.Start(ctx, "Analytics.ClosenessCentrality",
		trace.WithAttributes(attribute.Int("node_count", a.graph.NodeCount())),
	)
	defer span.End()

	ids := a.graph.NodeIDs()
	out := make(map[string]float64, len(ids))
	var mu sync.Mutex

	workers := runtime.NumCPU()
	if workers > maxClosenessWorkers {
		workers = maxClosenessWorkers
	}

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(workers)

	for _, uid := range ids {
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			_, dist := a.dijkstra(uid, "")
			reachable := 0
			total := 0.0
			for other, d := range dist {
				if other == uid {
					continue
				}
				reachable++
				total += d
			}

			score := 0.0
			if reachable > 0 && total > 0 {
				score = float64(reachable) / total
			}

			mu.Lock()
			out[uid] = score
			mu.Unlock()
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		span.AddEvent("cancelled")
		return out
	}
	return out
}
