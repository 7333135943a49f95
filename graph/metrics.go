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
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// Package-level meter for graph operations.
var meter = otel.Meter("knowledgegraph.graph")

// Mutation counters. Kept as atomics so the hot path never allocates;
// exported to OpenTelemetry through observable counters.
var (
	nodesAdded   atomic.Int64
	nodesRemoved atomic.Int64
	edgesAdded   atomic.Int64
	edgesRemoved atomic.Int64

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics registers the observable instruments. Safe to call multiple
// times; registration happens once.
func initMetrics() error {
	metricsOnce.Do(func() {
		register := func(name, desc string, src *atomic.Int64) {
			if metricsErr != nil {
				return
			}
			_, metricsErr = meter.Int64ObservableCounter(
				name,
				metric.WithDescription(desc),
				metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
					o.Observe(src.Load())
					return nil
				}),
			)
		}

		register("graph_nodes_added_total", "Total nodes added to graphs", &nodesAdded)
		register("graph_nodes_removed_total", "Total nodes removed from graphs", &nodesRemoved)
		register("graph_edges_added_total", "Total edges added to graphs", &edgesAdded)
		register("graph_edges_removed_total", "Total edges removed from graphs", &edgesRemoved)
	})
	return metricsErr
}
